package market

import "math/big"

// CreateListing escrows the asset and records an open-offer listing. Access
// gated: a direct caller lists for itself, an approved intermediary lists on
// behalf of the origin identity, which becomes the entry owner.
func (e *Engine) CreateListing(caller, origin [20]byte, contract [20]byte, assetID *big.Int, quantity uint64) (*Entry, error) {
	var created *Entry
	err := e.run(func() error {
		owner, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		entry := &Entry{
			Kind:          KindListing,
			AssetContract: contract,
			AssetID:       cloneBigInt(assetID),
			Quantity:      quantity,
			Creator:       owner,
			CreatedAt:     e.now(),
		}
		stored, err := e.createEntry(entry)
		if err != nil {
			return err
		}
		created = stored
		e.emit(NewListingCreatedEvent(stored))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// PlaceOffer records a new monetary claim on a listing. The offer must
// strictly exceed the current one; its funds are pulled into the vault and the
// superseded claimant is refunded, unless disallowed to receive, in which case
// the refund is skipped and the previous funds stay in the vault.
func (e *Engine) PlaceOffer(caller, origin [20]byte, id [32]byte, amount *big.Int) error {
	return e.run(func() error {
		offeror, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		entry, err := e.loadEntry(id, KindListing)
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 || amount.Cmp(entry.CurrentOffer) <= 0 {
			return ErrInvalidAmount
		}
		if err := e.vault.Deposit(offeror, amount); err != nil {
			return wrapTransfer("collect offer", err)
		}
		prevOfferor := entry.Offeror
		prevAmount := cloneBigInt(entry.CurrentOffer)
		entry.CurrentOffer = new(big.Int).Set(amount)
		entry.Offeror = offeror
		entry.OfferPlacedAt = e.now()
		if err := e.state.EntryPut(entry); err != nil {
			return err
		}
		// Refund runs after the entry is updated so a reentrant caller
		// observes the new claim.
		if err := e.refundClaim(entry, prevOfferor, prevAmount); err != nil {
			return err
		}
		e.emit(NewOfferPlacedEvent(entry))
		return nil
	})
}

// WithdrawOffer returns the current claim to its claimant once the cooling-off
// window has elapsed. Only the claimant of the offer that is still current may
// withdraw; claim state is zeroed before the refund is issued.
func (e *Engine) WithdrawOffer(caller [20]byte, id [32]byte) error {
	return e.run(func() error {
		entry, err := e.loadEntry(id, KindListing)
		if err != nil {
			return err
		}
		if entry.CurrentOffer.Sign() == 0 {
			return ErrNoOffer
		}
		if caller != entry.Offeror {
			return ErrUnauthorized
		}
		if e.now() < entry.OfferPlacedAt+offerCooldownSecs {
			return ErrTiming
		}
		claimant := entry.Offeror
		amount := cloneBigInt(entry.CurrentOffer)
		entry.CurrentOffer = big.NewInt(0)
		entry.Offeror = [20]byte{}
		entry.OfferPlacedAt = 0
		if err := e.state.EntryPut(entry); err != nil {
			return err
		}
		if err := e.vault.Withdraw(claimant, amount); err != nil {
			return wrapTransfer("withdraw offer", err)
		}
		e.emit(NewOfferWithdrawnEvent(entry, claimant, amount))
		return nil
	})
}

// RemoveListing cancels a listing, refunds the current claimant (skip rule
// applies) and returns the asset to its owner. Owner-only, access gated.
func (e *Engine) RemoveListing(caller, origin [20]byte, id [32]byte) error {
	return e.run(func() error {
		owner, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		entry, err := e.loadEntry(id, KindListing)
		if err != nil {
			return err
		}
		if owner != entry.Creator {
			return ErrUnauthorized
		}
		if err := e.deleteEntry(id); err != nil {
			return err
		}
		if err := e.refundClaim(entry, entry.Offeror, entry.CurrentOffer); err != nil {
			return err
		}
		if err := e.custodian.TransferOut(entry.AssetContract, entry.AssetID, entry.Quantity, entry.Creator); err != nil {
			return wrapTransfer("return asset", err)
		}
		e.emit(NewListingRemovedEvent(entry))
		return nil
	})
}

// AcceptListingOffer settles the listing at the current offer. Owner-only,
// access gated, and requires an outstanding claim. The entry is erased first,
// then the asset is released to the claimant (skipped if the claimant is
// disallowed to receive, stranding the asset in escrow) and the sale amount is
// split between royalty receiver, fee sink and seller.
func (e *Engine) AcceptListingOffer(caller, origin [20]byte, id [32]byte) error {
	return e.run(func() error {
		owner, err := e.resolveOrigin(caller, origin)
		if err != nil {
			return err
		}
		entry, err := e.loadEntry(id, KindListing)
		if err != nil {
			return err
		}
		if owner != entry.Creator {
			return ErrUnauthorized
		}
		if entry.CurrentOffer.Sign() == 0 {
			return ErrNoOffer
		}
		if err := e.deleteEntry(id); err != nil {
			return err
		}
		if err := e.releaseAsset(entry, entry.Offeror); err != nil {
			return err
		}
		breakdown, err := e.settle(entry, entry.CurrentOffer)
		if err != nil {
			return err
		}
		e.emit(NewListingCompletedEvent(entry, breakdown))
		return nil
	})
}
