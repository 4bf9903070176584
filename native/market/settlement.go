package market

import (
	"fmt"
	"math/big"
)

// Breakdown is the computed three-way split of a sale amount.
type Breakdown struct {
	SellerProceeds  *big.Int
	FeeAmount       *big.Int
	RoyaltyAmount   *big.Int
	RoyaltyReceiver [20]byte
}

// computeSettlement splits the sale amount into royalty, fee and seller legs.
// Royalty is resolved first from the registry, the fee is multiply-then-divide
// over the configured rate, and the seller receives the integer remainder, so
// the three legs always sum to the sale amount.
func (e *Engine) computeSettlement(entry *Entry, saleAmount *big.Int) (Breakdown, error) {
	if saleAmount == nil || saleAmount.Sign() <= 0 {
		return Breakdown{}, ErrInvalidAmount
	}
	b := Breakdown{
		RoyaltyAmount: big.NewInt(0),
	}
	if e.royalties != nil && e.royalties.SupportsRoyalty(entry.AssetContract) {
		receiver, amount := e.royalties.RoyaltyInfo(entry.AssetContract, entry.AssetID, saleAmount)
		if amount != nil && amount.Sign() > 0 {
			if amount.Cmp(saleAmount) > 0 {
				return Breakdown{}, fmt.Errorf("market: royalty %s exceeds sale amount %s", amount, saleAmount)
			}
			b.RoyaltyAmount = new(big.Int).Set(amount)
			b.RoyaltyReceiver = receiver
		}
	}
	b.FeeAmount = e.feePolicy.Apply(saleAmount)
	b.SellerProceeds = new(big.Int).Sub(saleAmount, b.FeeAmount)
	b.SellerProceeds.Sub(b.SellerProceeds, b.RoyaltyAmount)
	if b.SellerProceeds.Sign() < 0 {
		return Breakdown{}, fmt.Errorf("market: fee and royalty exceed sale amount %s", saleAmount)
	}
	return b, nil
}

// settle computes the split and executes the payouts in royalty, fee, seller
// order, skipping zero-valued legs. Callers must have erased the entry and
// released the asset before invoking settle; a failing leg aborts the whole
// operation via the enclosing snapshot.
func (e *Engine) settle(entry *Entry, saleAmount *big.Int) (Breakdown, error) {
	b, err := e.computeSettlement(entry, saleAmount)
	if err != nil {
		return Breakdown{}, err
	}
	if b.RoyaltyAmount.Sign() > 0 {
		if err := e.vault.Withdraw(b.RoyaltyReceiver, b.RoyaltyAmount); err != nil {
			return Breakdown{}, wrapTransfer("royalty payout", err)
		}
	}
	if b.FeeAmount.Sign() > 0 {
		if err := e.vault.Withdraw(e.feePolicy.Destination, b.FeeAmount); err != nil {
			return Breakdown{}, wrapTransfer("fee payout", err)
		}
	}
	if b.SellerProceeds.Sign() > 0 {
		if err := e.vault.Withdraw(entry.Creator, b.SellerProceeds); err != nil {
			return Breakdown{}, wrapTransfer("seller payout", err)
		}
	}
	settlements.WithLabelValues(entry.Kind.String()).Inc()
	return b, nil
}
