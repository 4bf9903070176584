package market

import "math/big"

// RoyaltyConfig declares a royalty schedule for one asset contract: a receiver
// and a rate applied to the sale amount.
type RoyaltyConfig struct {
	Receiver [20]byte
	RateBps  uint32
}

// StaticRoyalties is a table-backed RoyaltyRegistry for deployments where
// royalty schedules are configured rather than discovered from the asset
// contracts themselves.
type StaticRoyalties struct {
	contracts map[[20]byte]RoyaltyConfig
}

// NewStaticRoyalties builds a registry from per-contract schedules.
func NewStaticRoyalties(contracts map[[20]byte]RoyaltyConfig) *StaticRoyalties {
	registry := &StaticRoyalties{contracts: make(map[[20]byte]RoyaltyConfig, len(contracts))}
	for contract, cfg := range contracts {
		registry.contracts[contract] = cfg
	}
	return registry
}

// SupportsRoyalty implements RoyaltyRegistry.
func (r *StaticRoyalties) SupportsRoyalty(contract [20]byte) bool {
	if r == nil {
		return false
	}
	cfg, ok := r.contracts[contract]
	return ok && cfg.RateBps > 0
}

// RoyaltyInfo implements RoyaltyRegistry. The amount is multiply-then-divide
// over the configured rate, matching the fee rounding discipline.
func (r *StaticRoyalties) RoyaltyInfo(contract [20]byte, _ *big.Int, saleAmount *big.Int) ([20]byte, *big.Int) {
	cfg, ok := r.contracts[contract]
	if !ok || cfg.RateBps == 0 || saleAmount == nil || saleAmount.Sign() <= 0 {
		return [20]byte{}, big.NewInt(0)
	}
	amount := new(big.Int).Mul(saleAmount, big.NewInt(int64(cfg.RateBps)))
	amount.Div(amount, big.NewInt(10_000))
	return cfg.Receiver, amount
}
