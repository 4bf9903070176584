package market

import "math/big"

// CreateOrder escrows the asset and records a fixed-price order. The caller
// becomes the entry owner.
func (e *Engine) CreateOrder(caller [20]byte, contract [20]byte, assetID *big.Int, quantity uint64, price *big.Int) (*Entry, error) {
	var created *Entry
	err := e.run(func() error {
		if price == nil || price.Sign() <= 0 {
			return ErrInvalidAmount
		}
		entry := &Entry{
			Kind:          KindOrder,
			AssetContract: contract,
			AssetID:       cloneBigInt(assetID),
			Quantity:      quantity,
			Creator:       caller,
			CreatedAt:     e.now(),
			Price:         cloneBigInt(price),
		}
		stored, err := e.createEntry(entry)
		if err != nil {
			return err
		}
		created = stored
		e.emit(NewOrderCreatedEvent(stored))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// RemoveOrder cancels an order and returns the asset to its owner. Owner-only.
func (e *Engine) RemoveOrder(caller [20]byte, id [32]byte) error {
	return e.run(func() error {
		entry, err := e.loadEntry(id, KindOrder)
		if err != nil {
			return err
		}
		if caller != entry.Creator {
			return ErrUnauthorized
		}
		if err := e.deleteEntry(id); err != nil {
			return err
		}
		if err := e.custodian.TransferOut(entry.AssetContract, entry.AssetID, entry.Quantity, entry.Creator); err != nil {
			return wrapTransfer("return asset", err)
		}
		e.emit(NewOrderRemovedEvent(entry))
		return nil
	})
}

// BuyOrder purchases an order at its exact price. The entry is erased before
// any outbound transfer, then the asset is released to the buyer and the sale
// amount is split between royalty receiver, fee sink and seller.
func (e *Engine) BuyOrder(caller [20]byte, id [32]byte, payment *big.Int) error {
	return e.run(func() error {
		entry, err := e.loadEntry(id, KindOrder)
		if err != nil {
			return err
		}
		if payment == nil || payment.Cmp(entry.Price) != 0 {
			return ErrInvalidAmount
		}
		if err := e.deleteEntry(id); err != nil {
			return err
		}
		if err := e.vault.Deposit(caller, entry.Price); err != nil {
			return wrapTransfer("collect payment", err)
		}
		if err := e.custodian.TransferOut(entry.AssetContract, entry.AssetID, entry.Quantity, caller); err != nil {
			return wrapTransfer("deliver asset", err)
		}
		breakdown, err := e.settle(entry, entry.Price)
		if err != nil {
			return err
		}
		e.emit(NewOrderCompletedEvent(entry, caller, breakdown))
		return nil
	})
}
