package market

import (
	"encoding/binary"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Kind discriminates the three sale mechanisms supported by the marketplace.
type Kind uint8

const (
	KindOrder Kind = iota + 1
	KindListing
	KindAuction
)

// Valid reports whether the kind value is within the supported range.
func (k Kind) Valid() bool {
	switch k {
	case KindOrder, KindListing, KindAuction:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindOrder:
		return "order"
	case KindListing:
		return "listing"
	case KindAuction:
		return "auction"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Entry is a ledger record representing one asset unit held in escrow under a
// sale mechanism. An entry exists in the ledger iff the asset it references is
// currently escrowed; terminal operations erase the entry before any outbound
// transfer. The identifier is the keccak256 hash of the entry contents, the
// creator identity and the creation timestamp, so identifiers cannot be forced
// to collide without replaying the exact creation.
type Entry struct {
	ID            [32]byte
	Kind          Kind
	AssetContract [20]byte
	AssetID       *big.Int
	Quantity      uint64
	Creator       [20]byte
	CreatedAt     int64

	// Order: fixed sale price, immutable once set.
	Price *big.Int

	// Listing: current best offer and its claimant.
	CurrentOffer  *big.Int
	Offeror       [20]byte
	OfferPlacedAt int64

	// Auction: current best bid, its claimant and the bidding deadline.
	CurrentBid *big.Int
	Bidder     [20]byte
	EndsAt     int64
}

// Clone returns a deep copy of the entry so callers can safely mutate the copy
// without affecting the stored instance.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	clone := *e
	clone.AssetID = cloneBigInt(e.AssetID)
	clone.Price = cloneBigInt(e.Price)
	clone.CurrentOffer = cloneBigInt(e.CurrentOffer)
	clone.CurrentBid = cloneBigInt(e.CurrentBid)
	return &clone
}

// maxValueBits bounds asset ids and monetary amounts to the 256-bit range the
// canonical fixed-width encoding can represent. Anything wider would overflow
// the FillBytes buffers in ComputeEntryID.
const maxValueBits = 256

// SanitizeEntry validates and normalises the supplied entry, returning a
// cloned instance with non-nil amount fields. The original is not mutated.
// Asset ids and amounts above 256 bits are rejected so the identifier and
// storage key encodings stay total.
func SanitizeEntry(e *Entry) (*Entry, error) {
	if e == nil {
		return nil, fmt.Errorf("market: nil entry")
	}
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("market: invalid entry kind %d", e.Kind)
	}
	clone := e.Clone()
	if clone.Quantity == 0 {
		clone.Quantity = 1
	}
	if clone.AssetID.Sign() < 0 {
		return nil, fmt.Errorf("market: asset id must be non-negative")
	}
	if clone.AssetID.BitLen() > maxValueBits {
		return nil, fmt.Errorf("market: asset id exceeds %d bits", maxValueBits)
	}
	switch clone.Kind {
	case KindOrder:
		if clone.Price.Sign() <= 0 {
			return nil, fmt.Errorf("market: order price must be positive")
		}
		if clone.Price.BitLen() > maxValueBits {
			return nil, fmt.Errorf("market: order price exceeds %d bits", maxValueBits)
		}
	case KindListing:
		if clone.CurrentOffer.Sign() < 0 {
			return nil, fmt.Errorf("market: offer must be non-negative")
		}
		if clone.CurrentOffer.BitLen() > maxValueBits {
			return nil, fmt.Errorf("market: offer exceeds %d bits", maxValueBits)
		}
	case KindAuction:
		if clone.CurrentBid.Sign() < 0 {
			return nil, fmt.Errorf("market: bid must be non-negative")
		}
		if clone.CurrentBid.BitLen() > maxValueBits {
			return nil, fmt.Errorf("market: bid exceeds %d bits", maxValueBits)
		}
		if clone.EndsAt <= 0 {
			return nil, fmt.Errorf("market: auction deadline not set")
		}
	}
	return clone, nil
}

// ComputeEntryID derives the deterministic identifier for an entry from a
// canonical fixed-width encoding of its immutable fields. For orders the price
// participates in the hash, for auctions the deadline.
func ComputeEntryID(e *Entry) [32]byte {
	buf := make([]byte, 0, 1+20+32+8+20+8+32)
	buf = append(buf, byte(e.Kind))
	buf = append(buf, e.AssetContract[:]...)
	var assetID [32]byte
	if e.AssetID != nil {
		e.AssetID.FillBytes(assetID[:])
	}
	buf = append(buf, assetID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, e.Quantity)
	buf = append(buf, e.Creator[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.CreatedAt))
	switch e.Kind {
	case KindOrder:
		var price [32]byte
		if e.Price != nil {
			e.Price.FillBytes(price[:])
		}
		buf = append(buf, price[:]...)
	case KindAuction:
		buf = binary.BigEndian.AppendUint64(buf, uint64(e.EndsAt))
	}
	return ethcrypto.Keccak256Hash(buf)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
