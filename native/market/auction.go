package market

import "math/big"

// CreateAuction escrows the asset and opens a time-boxed auction ending at the
// supplied deadline. The deadline is fixed at creation; there is no extension
// mechanic. Access gated like listings.
func (e *Engine) CreateAuction(caller, origin [20]byte, contract [20]byte, assetID *big.Int, quantity uint64, endsAt int64) (*Entry, error) {
	var created *Entry
	err := e.run(func() error {
		owner, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		if endsAt <= e.now() {
			return ErrTiming
		}
		entry := &Entry{
			Kind:          KindAuction,
			AssetContract: contract,
			AssetID:       cloneBigInt(assetID),
			Quantity:      quantity,
			Creator:       owner,
			CreatedAt:     e.now(),
			EndsAt:        endsAt,
		}
		stored, err := e.createEntry(entry)
		if err != nil {
			return err
		}
		created = stored
		e.emit(NewAuctionCreatedEvent(stored))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// BidOnAuction records a new bid, accepted strictly before the deadline and
// only when it strictly exceeds the current bid. The superseded bidder is
// refunded under the same skip rule as listing offers.
func (e *Engine) BidOnAuction(caller, origin [20]byte, id [32]byte, amount *big.Int) error {
	return e.run(func() error {
		bidder, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		entry, err := e.loadEntry(id, KindAuction)
		if err != nil {
			return err
		}
		if e.now() >= entry.EndsAt {
			return ErrTiming
		}
		if amount == nil || amount.Sign() <= 0 || amount.Cmp(entry.CurrentBid) <= 0 {
			return ErrInvalidAmount
		}
		if err := e.vault.Deposit(bidder, amount); err != nil {
			return wrapTransfer("collect bid", err)
		}
		prevBidder := entry.Bidder
		prevAmount := cloneBigInt(entry.CurrentBid)
		entry.CurrentBid = new(big.Int).Set(amount)
		entry.Bidder = bidder
		if err := e.state.EntryPut(entry); err != nil {
			return err
		}
		if err := e.refundClaim(entry, prevBidder, prevAmount); err != nil {
			return err
		}
		e.emit(NewBidPlacedEvent(entry))
		return nil
	})
}

// ClaimAuction finalises an ended auction. Callable by anyone, strictly after
// the deadline and only while the entry still exists, which guards against a
// double claim: the entry is erased as the first terminal action. With a
// winning bid the asset goes to the bidder (skip rule applies) and the bid is
// split between royalty receiver, fee sink and seller; with no bids the asset
// returns to the owner.
func (e *Engine) ClaimAuction(caller [20]byte, id [32]byte) error {
	return e.run(func() error {
		entry, err := e.loadEntry(id, KindAuction)
		if err != nil {
			return err
		}
		if e.now() <= entry.EndsAt {
			return ErrTiming
		}
		if err := e.deleteEntry(id); err != nil {
			return err
		}
		if entry.CurrentBid.Sign() == 0 {
			if err := e.custodian.TransferOut(entry.AssetContract, entry.AssetID, entry.Quantity, entry.Creator); err != nil {
				return wrapTransfer("return asset", err)
			}
			e.emit(NewAuctionClaimedEvent(entry, Breakdown{}))
			return nil
		}
		if err := e.releaseAsset(entry, entry.Bidder); err != nil {
			return err
		}
		breakdown, err := e.settle(entry, entry.CurrentBid)
		if err != nil {
			return err
		}
		e.emit(NewAuctionClaimedEvent(entry, breakdown))
		return nil
	})
}
