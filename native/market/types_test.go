package market

import (
	"math/big"
	"testing"
)

func TestComputeEntryIDDeterministic(t *testing.T) {
	entry := &Entry{
		Kind:          KindOrder,
		AssetContract: newTestAddress(0xC0),
		AssetID:       big.NewInt(7),
		Quantity:      1,
		Creator:       newTestAddress(0x01),
		CreatedAt:     1_700_000_000,
		Price:         big.NewInt(100),
	}
	if ComputeEntryID(entry) != ComputeEntryID(entry.Clone()) {
		t.Fatalf("identical entries must derive identical ids")
	}
}

func TestComputeEntryIDVariesWithFields(t *testing.T) {
	base := &Entry{
		Kind:          KindOrder,
		AssetContract: newTestAddress(0xC0),
		AssetID:       big.NewInt(7),
		Quantity:      1,
		Creator:       newTestAddress(0x01),
		CreatedAt:     1_700_000_000,
		Price:         big.NewInt(100),
	}
	baseID := ComputeEntryID(base)

	variants := []func(*Entry){
		func(e *Entry) { e.Kind = KindListing },
		func(e *Entry) { e.AssetID = big.NewInt(8) },
		func(e *Entry) { e.Creator = newTestAddress(0x02) },
		func(e *Entry) { e.CreatedAt++ },
		func(e *Entry) { e.Price = big.NewInt(101) },
		func(e *Entry) { e.Quantity = 2 },
	}
	for i, mutate := range variants {
		variant := base.Clone()
		mutate(variant)
		if ComputeEntryID(variant) == baseID {
			t.Fatalf("variant %d must derive a distinct id", i)
		}
	}
}

func TestComputeEntryIDAuctionDeadlineSalts(t *testing.T) {
	auction := &Entry{
		Kind:          KindAuction,
		AssetContract: newTestAddress(0xC0),
		AssetID:       big.NewInt(7),
		Quantity:      1,
		Creator:       newTestAddress(0x01),
		CreatedAt:     1_700_000_000,
		EndsAt:        1_700_000_100,
	}
	later := auction.Clone()
	later.EndsAt++
	if ComputeEntryID(auction) == ComputeEntryID(later) {
		t.Fatalf("auction deadline must participate in the id")
	}
}

func TestSanitizeEntry(t *testing.T) {
	if _, err := SanitizeEntry(nil); err == nil {
		t.Fatalf("nil entry must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: Kind(9), AssetID: big.NewInt(1)}); err == nil {
		t.Fatalf("invalid kind must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: KindOrder, AssetID: big.NewInt(1)}); err == nil {
		t.Fatalf("order without price must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: KindAuction, AssetID: big.NewInt(1), CurrentBid: big.NewInt(0)}); err == nil {
		t.Fatalf("auction without deadline must be rejected")
	}
	sanitized, err := SanitizeEntry(&Entry{Kind: KindListing, AssetID: big.NewInt(1)})
	if err != nil {
		t.Fatalf("sanitize listing: %v", err)
	}
	if sanitized.Quantity != 1 {
		t.Fatalf("quantity must default to 1, got %d", sanitized.Quantity)
	}
	if sanitized.CurrentOffer == nil || sanitized.CurrentOffer.Sign() != 0 {
		t.Fatalf("offer must normalise to zero")
	}
}

func TestSanitizeEntryBoundsValues(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 300)
	limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	if _, err := SanitizeEntry(&Entry{Kind: KindListing, AssetID: huge}); err == nil {
		t.Fatalf("asset id above 256 bits must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: KindOrder, AssetID: big.NewInt(1), Price: huge}); err == nil {
		t.Fatalf("price above 256 bits must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: KindListing, AssetID: big.NewInt(1), CurrentOffer: huge}); err == nil {
		t.Fatalf("offer above 256 bits must be rejected")
	}
	if _, err := SanitizeEntry(&Entry{Kind: KindAuction, AssetID: big.NewInt(1), CurrentBid: huge, EndsAt: 10}); err == nil {
		t.Fatalf("bid above 256 bits must be rejected")
	}
	// The full 256-bit range stays representable.
	sanitized, err := SanitizeEntry(&Entry{Kind: KindOrder, AssetID: limit, Price: limit})
	if err != nil {
		t.Fatalf("sanitize at the 256-bit limit: %v", err)
	}
	ComputeEntryID(sanitized)
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{KindOrder: "order", KindListing: "listing", KindAuction: "auction"} {
		if kind.String() != want {
			t.Fatalf("kind %d = %q, want %q", kind, kind.String(), want)
		}
	}
	if Kind(0).Valid() || Kind(4).Valid() {
		t.Fatalf("out-of-range kinds must be invalid")
	}
}
