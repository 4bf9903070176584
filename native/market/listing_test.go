package market

import (
	"errors"
	"math/big"
	"testing"
)

func setupListing(t *testing.T) (*Engine, *mockState, *capturingEmitter, *testClock, *Entry, [20]byte) {
	t.Helper()
	engine, state, emitter, clock := newTestEngine(t)
	owner := newTestAddress(0x01)
	contract := newTestAddress(0xC0)
	assetID := big.NewInt(7)
	state.mint(contract, assetID, owner, 1)
	entry, err := engine.CreateListing(owner, owner, contract, assetID, 1)
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return engine, state, emitter, clock, entry, owner
}

func TestPlaceOfferRequiresStrictIncrease(t *testing.T) {
	engine, state, _, _, entry, _ := setupListing(t)
	first := newTestAddress(0x02)
	second := newTestAddress(0x03)
	state.fund(first, 100)
	state.fund(second, 100)

	if err := engine.PlaceOffer(first, first, entry.ID, big.NewInt(50)); err != nil {
		t.Fatalf("first offer: %v", err)
	}
	if err := engine.PlaceOffer(second, second, entry.ID, big.NewInt(30)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("lower offer: expected ErrInvalidAmount, got %v", err)
	}
	if err := engine.PlaceOffer(second, second, entry.ID, big.NewInt(50)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("equal offer: expected ErrInvalidAmount, got %v", err)
	}
	if err := engine.PlaceOffer(second, second, entry.ID, big.NewInt(60)); err != nil {
		t.Fatalf("higher offer: %v", err)
	}
	// The superseded claimant is made whole, the new claim is custodied.
	if got := state.balance(first); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("first offeror balance = %s, want 100 after refund", got)
	}
	if got := state.balance(second); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("second offeror balance = %s, want 40", got)
	}
	stored, err := state.EntryGet(entry.ID)
	if err != nil {
		t.Fatalf("listing missing: %v", err)
	}
	if stored.Offeror != second || stored.CurrentOffer.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("claim not replaced: %x %s", stored.Offeror, stored.CurrentOffer)
	}
}

func TestPlaceOfferSkipsRefundForDisallowedClaimant(t *testing.T) {
	engine, state, _, _, entry, _ := setupListing(t)
	first := newTestAddress(0x02)
	second := newTestAddress(0x03)
	state.fund(first, 100)
	state.fund(second, 100)
	gate := NewStaticGate(nil, nil)
	engine.SetAccessGate(gate)

	if err := engine.PlaceOffer(first, first, entry.ID, big.NewInt(50)); err != nil {
		t.Fatalf("first offer: %v", err)
	}
	gate.SetDisallowed(first, true)
	if err := engine.PlaceOffer(second, second, entry.ID, big.NewInt(60)); err != nil {
		t.Fatalf("second offer: %v", err)
	}
	// Refund deliberately skipped: the first claimant's funds stay in the
	// vault rather than blocking the new claim.
	if got := state.balance(first); got.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("disallowed claimant balance = %s, want 50", got)
	}
	if got := state.balance(state.vault); got.Cmp(big.NewInt(110)) != 0 {
		t.Fatalf("vault balance = %s, want 110 (60 live + 50 stranded)", got)
	}
}

func TestWithdrawOfferCoolingOff(t *testing.T) {
	engine, state, emitter, clock, entry, _ := setupListing(t)
	offeror := newTestAddress(0x02)
	state.fund(offeror, 100)

	if err := engine.PlaceOffer(offeror, offeror, entry.ID, big.NewInt(50)); err != nil {
		t.Fatalf("place offer: %v", err)
	}
	clock.now += 3600 // 1 hour
	if err := engine.WithdrawOffer(offeror, entry.ID); !errors.Is(err, ErrTiming) {
		t.Fatalf("expected ErrTiming inside cooldown, got %v", err)
	}
	clock.now += 48 * 3600 // 49 hours total
	if err := engine.WithdrawOffer(offeror, entry.ID); err != nil {
		t.Fatalf("withdraw offer: %v", err)
	}
	if got := state.balance(offeror); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("offeror balance = %s, want 100 after withdrawal", got)
	}
	stored, err := state.EntryGet(entry.ID)
	if err != nil {
		t.Fatalf("listing missing: %v", err)
	}
	if stored.CurrentOffer.Sign() != 0 || stored.Offeror != ([20]byte{}) || stored.OfferPlacedAt != 0 {
		t.Fatalf("claim state not zeroed: %+v", stored)
	}
	if emitter.lastType() != EventTypeOfferWithdrawn {
		t.Fatalf("unexpected event %q", emitter.lastType())
	}
	if err := engine.WithdrawOffer(offeror, entry.ID); !errors.Is(err, ErrNoOffer) {
		t.Fatalf("expected ErrNoOffer after withdrawal, got %v", err)
	}
}

func TestWithdrawOfferClaimantOnly(t *testing.T) {
	engine, state, _, clock, entry, _ := setupListing(t)
	offeror := newTestAddress(0x02)
	stranger := newTestAddress(0x03)
	state.fund(offeror, 100)

	if err := engine.PlaceOffer(offeror, offeror, entry.ID, big.NewInt(50)); err != nil {
		t.Fatalf("place offer: %v", err)
	}
	clock.now += 50 * 3600
	if err := engine.WithdrawOffer(stranger, entry.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemoveListingRefundsClaimant(t *testing.T) {
	engine, state, _, _, entry, owner := setupListing(t)
	offeror := newTestAddress(0x02)
	state.fund(offeror, 100)

	if err := engine.PlaceOffer(offeror, offeror, entry.ID, big.NewInt(50)); err != nil {
		t.Fatalf("place offer: %v", err)
	}
	if err := engine.RemoveListing(newTestAddress(0x04), newTestAddress(0x04), entry.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := engine.RemoveListing(owner, owner, entry.ID); err != nil {
		t.Fatalf("remove listing: %v", err)
	}
	if got := state.balance(offeror); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("claimant balance = %s, want 100 after refund", got)
	}
	if got := state.holdings[holdingID(entry.AssetContract, entry.AssetID, owner)]; got != 1 {
		t.Fatalf("asset not returned to owner")
	}
	if _, err := state.EntryGet(entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entry must be erased, got %v", err)
	}
}

func TestAcceptListingOfferSettles(t *testing.T) {
	engine, state, emitter, _, entry, owner := setupListing(t)
	offeror := newTestAddress(0x02)
	state.fund(offeror, 100)

	if err := engine.AcceptListingOffer(owner, owner, entry.ID); !errors.Is(err, ErrNoOffer) {
		t.Fatalf("expected ErrNoOffer without a claim, got %v", err)
	}
	if err := engine.PlaceOffer(offeror, offeror, entry.ID, big.NewInt(60)); err != nil {
		t.Fatalf("place offer: %v", err)
	}
	if err := engine.AcceptListingOffer(owner, owner, entry.ID); err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	if got := state.balance(owner); got.Cmp(big.NewInt(57)) != 0 {
		t.Fatalf("seller proceeds = %s, want 57 (60 - 5%% fee)", got)
	}
	if got := state.balance(newTestAddress(0xFE)); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("fee sink = %s, want 3", got)
	}
	if got := state.holdings[holdingID(entry.AssetContract, entry.AssetID, offeror)]; got != 1 {
		t.Fatalf("asset not delivered to claimant")
	}
	if emitter.lastType() != EventTypeListingCompleted {
		t.Fatalf("unexpected event %q", emitter.lastType())
	}
}

func TestAcceptListingOfferSkipsReleaseForDisallowedClaimant(t *testing.T) {
	engine, state, _, _, entry, owner := setupListing(t)
	offeror := newTestAddress(0x02)
	state.fund(offeror, 100)
	gate := NewStaticGate(nil, nil)
	engine.SetAccessGate(gate)

	if err := engine.PlaceOffer(offeror, offeror, entry.ID, big.NewInt(60)); err != nil {
		t.Fatalf("place offer: %v", err)
	}
	gate.SetDisallowed(offeror, true)
	if err := engine.AcceptListingOffer(owner, owner, entry.ID); err != nil {
		t.Fatalf("accept offer: %v", err)
	}
	// Asset release skipped: the unit stays in escrow custody even though the
	// entry is gone. Settlement still pays out.
	if got := state.escrowed(entry.AssetContract, entry.AssetID); got != 1 {
		t.Fatalf("asset must stay in escrow for disallowed claimant")
	}
	if got := state.balance(owner); got.Cmp(big.NewInt(57)) != 0 {
		t.Fatalf("seller proceeds = %s, want 57", got)
	}
	if _, err := state.EntryGet(entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entry must be erased, got %v", err)
	}
}

func TestListingAccessGate(t *testing.T) {
	engine, state, _, _ := newTestEngine(t)
	owner := newTestAddress(0x01)
	proxy := newTestAddress(0x05)
	banned := newTestAddress(0x06)
	contract := newTestAddress(0xC0)
	assetID := big.NewInt(9)
	state.mint(contract, assetID, owner, 1)
	engine.SetAccessGate(NewStaticGate([][20]byte{proxy}, [][20]byte{banned}))

	if _, err := engine.CreateListing(banned, banned, contract, assetID, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("disallowed caller: expected ErrUnauthorized, got %v", err)
	}
	// A direct caller cannot attribute the listing to someone else.
	stranger := newTestAddress(0x07)
	if _, err := engine.CreateListing(stranger, owner, contract, assetID, 1); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-intermediary proxying: expected ErrUnauthorized, got %v", err)
	}
	// An approved intermediary escrows under the origin identity.
	entry, err := engine.CreateListing(proxy, owner, contract, assetID, 1)
	if err != nil {
		t.Fatalf("intermediary create: %v", err)
	}
	if entry.Creator != owner {
		t.Fatalf("entry attributed to %x, want origin %x", entry.Creator, owner)
	}
}
