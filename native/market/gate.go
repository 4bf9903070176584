package market

// StaticGate is an allowlist-backed AccessGate: listed intermediaries classify
// as approved proxies, listed disallowed identities are rejected by gated
// operations and skipped as refund or release recipients, everyone else is a
// direct end-user.
type StaticGate struct {
	intermediaries map[[20]byte]struct{}
	disallowed     map[[20]byte]struct{}
}

// NewStaticGate builds a gate from explicit identity lists.
func NewStaticGate(intermediaries, disallowed [][20]byte) *StaticGate {
	gate := &StaticGate{
		intermediaries: make(map[[20]byte]struct{}, len(intermediaries)),
		disallowed:     make(map[[20]byte]struct{}, len(disallowed)),
	}
	for _, addr := range intermediaries {
		gate.intermediaries[addr] = struct{}{}
	}
	for _, addr := range disallowed {
		gate.disallowed[addr] = struct{}{}
	}
	return gate
}

// Classify implements AccessGate.
func (g *StaticGate) Classify(addr [20]byte) Classification {
	if g == nil {
		return ClassDirect
	}
	if _, ok := g.disallowed[addr]; ok {
		return ClassDisallowed
	}
	if _, ok := g.intermediaries[addr]; ok {
		return ClassIntermediary
	}
	return ClassDirect
}

// SetDisallowed adds or removes an identity from the disallowed set. The
// classification of an identity can change between claim placement and
// refund, which is what triggers the refund-skip policy.
func (g *StaticGate) SetDisallowed(addr [20]byte, disallowed bool) {
	if g == nil {
		return
	}
	if disallowed {
		g.disallowed[addr] = struct{}{}
		return
	}
	delete(g.disallowed, addr)
}
