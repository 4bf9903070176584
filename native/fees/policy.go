package fees

import (
	"fmt"
	"math/big"
)

const (
	// MaxRateBps caps the protocol fee at 7.5% of the sale amount.
	MaxRateBps uint32 = 750
	// DefaultRateBps is the fee applied when no explicit rate is configured,
	// 5% of the sale amount.
	DefaultRateBps uint32 = 500

	rateDenominator int64 = 10_000
)

// Policy captures the marketplace fee configuration read by every settlement.
// It is owned by the settlement engine and mutated only through the engine's
// administrative surface.
type Policy struct {
	RateBps     uint32
	Destination [20]byte
}

// DefaultPolicy returns a policy at the default rate routed to the supplied
// destination.
func DefaultPolicy(destination [20]byte) Policy {
	return Policy{RateBps: DefaultRateBps, Destination: destination}
}

// ValidateRate rejects fee rates above the protocol cap.
func ValidateRate(rate uint32) error {
	if rate > MaxRateBps {
		return fmt.Errorf("fees: rate %d exceeds cap %d", rate, MaxRateBps)
	}
	return nil
}

// Clone returns a copy of the policy.
func (p Policy) Clone() Policy {
	return Policy{RateBps: p.RateBps, Destination: p.Destination}
}

// Apply computes the fee owed on the supplied sale amount. The multiply is
// performed before the divide; changing the order changes the truncation and
// therefore the split, so callers must not reorder it.
func (p Policy) Apply(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 || p.RateBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(amount, big.NewInt(int64(p.RateBps)))
	return fee.Div(fee, big.NewInt(rateDenominator))
}
