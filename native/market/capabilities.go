package market

import "math/big"

// Classification is the access-gate verdict for a caller identity.
type Classification uint8

const (
	// ClassDirect identifies an end-user acting for itself.
	ClassDirect Classification = iota
	// ClassIntermediary identifies an approved proxy acting on behalf of an
	// origin identity.
	ClassIntermediary
	// ClassDisallowed identifies callers rejected by gated operations and
	// recipients that must not receive refunds or asset releases.
	ClassDisallowed
)

// AccessGate classifies caller identities. Implementations decide how callers
// are recognised in their execution environment (allowlist, capability token).
type AccessGate interface {
	Classify(addr [20]byte) Classification
}

// AssetCustodian moves escrowed assets in and out of market custody. Each
// transfer either fully succeeds or fails; there is no partial transfer.
type AssetCustodian interface {
	TransferIn(contract [20]byte, assetID *big.Int, quantity uint64, from [20]byte) error
	TransferOut(contract [20]byte, assetID *big.Int, quantity uint64, to [20]byte) error
}

// RoyaltyRegistry resolves optional per-contract royalty declarations.
type RoyaltyRegistry interface {
	SupportsRoyalty(contract [20]byte) bool
	RoyaltyInfo(contract [20]byte, assetID *big.Int, saleAmount *big.Int) ([20]byte, *big.Int)
}

// FundVault holds bid, offer and sale funds in trust. Deposit pulls funds from
// an identity into the vault; Withdraw pays out from the vault.
type FundVault interface {
	Deposit(from [20]byte, amount *big.Int) error
	Withdraw(to [20]byte, amount *big.Int) error
}
