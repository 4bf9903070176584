package market

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks callers that are not the entry owner, claimant or
	// admin the operation requires, or that fail access-gate classification.
	ErrUnauthorized = errors.New("market: unauthorized caller")
	// ErrInvalidAmount marks payment mismatches and bids or offers that do not
	// strictly exceed the current claim.
	ErrInvalidAmount = errors.New("market: invalid amount")
	// ErrTiming marks bids after the auction deadline, claims before it, and
	// offer withdrawals inside the cooling-off window.
	ErrTiming = errors.New("market: timing constraint not met")
	// ErrNotFound marks operations against a nonexistent or already settled
	// entry.
	ErrNotFound = errors.New("market: entry not found")
	// ErrNoOffer marks listing acceptance with no outstanding claim.
	ErrNoOffer = errors.New("market: no outstanding offer")
	// ErrTransferFailed wraps custodian or vault failures; the enclosing
	// operation aborts with no partial effect.
	ErrTransferFailed = errors.New("market: transfer failed")

	errNilState     = errors.New("market engine: state not configured")
	errNilCustodian = errors.New("market engine: asset custodian not configured")
	errNilVault     = errors.New("market engine: fund vault not configured")
	errIDCollision  = errors.New("market engine: entry identifier collision")
)

func wrapTransfer(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransferFailed, context, err)
}
