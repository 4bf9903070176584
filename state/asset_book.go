package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"nftmarket/storage"
)

// AssetBook is the default asset custodian: per-identity holdings of
// (contract, asset id) pairs tracked in state, with escrowed units held under
// a dedicated escrow identity. Holdings mutate through the MarketState
// journal and revert with the enclosing engine call.
type AssetBook struct {
	state  *MarketState
	escrow [20]byte
}

// NewAssetBook binds an escrow identity over the supplied state.
func NewAssetBook(state *MarketState, escrow [20]byte) *AssetBook {
	return &AssetBook{state: state, escrow: escrow}
}

// TransferIn pulls units from the identity into escrow custody.
func (b *AssetBook) TransferIn(contract [20]byte, assetID *big.Int, quantity uint64, from [20]byte) error {
	return b.move(contract, assetID, quantity, from, b.escrow)
}

// TransferOut releases escrowed units to the identity.
func (b *AssetBook) TransferOut(contract [20]byte, assetID *big.Int, quantity uint64, to [20]byte) error {
	return b.move(contract, assetID, quantity, b.escrow, to)
}

// Holding reports how many units of the asset the identity holds.
func (b *AssetBook) Holding(contract [20]byte, assetID *big.Int, owner [20]byte) (uint64, error) {
	key, err := holdingKey(contract, assetID, owner)
	if err != nil {
		return 0, err
	}
	return b.holding(key)
}

// Escrowed reports how many units of the asset sit in escrow custody.
func (b *AssetBook) Escrowed(contract [20]byte, assetID *big.Int) (uint64, error) {
	key, err := holdingKey(contract, assetID, b.escrow)
	if err != nil {
		return 0, err
	}
	return b.holding(key)
}

// Mint assigns units to an identity. Bootstrap and test helper.
func (b *AssetBook) Mint(contract [20]byte, assetID *big.Int, owner [20]byte, quantity uint64) error {
	if quantity == 0 {
		return fmt.Errorf("state: mint quantity must be positive")
	}
	key, err := holdingKey(contract, assetID, owner)
	if err != nil {
		return err
	}
	current, err := b.holding(key)
	if err != nil {
		return err
	}
	return b.putHolding(key, current+quantity)
}

func (b *AssetBook) move(contract [20]byte, assetID *big.Int, quantity uint64, from, to [20]byte) error {
	if quantity == 0 {
		return fmt.Errorf("state: transfer quantity must be positive")
	}
	// Same hazard as Vault.transfer: both holdings are read before either
	// write, so a self-move would duplicate units. Skip it.
	if from == to {
		return nil
	}
	fromKey, err := holdingKey(contract, assetID, from)
	if err != nil {
		return err
	}
	fromHolding, err := b.holding(fromKey)
	if err != nil {
		return err
	}
	if fromHolding < quantity {
		return fmt.Errorf("state: insufficient asset holding")
	}
	toKey, err := holdingKey(contract, assetID, to)
	if err != nil {
		return err
	}
	toHolding, err := b.holding(toKey)
	if err != nil {
		return err
	}
	if err := b.putHolding(fromKey, fromHolding-quantity); err != nil {
		return err
	}
	return b.putHolding(toKey, toHolding+quantity)
}

func (b *AssetBook) holding(key []byte) (uint64, error) {
	raw, err := b.state.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var quantity uint64
	if err := json.Unmarshal(raw, &quantity); err != nil {
		return 0, err
	}
	return quantity, nil
}

func (b *AssetBook) putHolding(key []byte, quantity uint64) error {
	if quantity == 0 {
		return b.state.delete(key)
	}
	encoded, err := json.Marshal(quantity)
	if err != nil {
		return err
	}
	return b.state.set(key, encoded)
}

// holdingKey encodes the asset id into a fixed 32-byte slot; ids outside the
// 256-bit range cannot be keyed and are rejected rather than crashing
// FillBytes.
func holdingKey(contract [20]byte, assetID *big.Int, owner [20]byte) ([]byte, error) {
	var id [32]byte
	if assetID != nil {
		if assetID.Sign() < 0 || assetID.BitLen() > 256 {
			return nil, fmt.Errorf("state: asset id out of range")
		}
		assetID.FillBytes(id[:])
	}
	key := make([]byte, 0, len(assetPrefix)+20+32+20)
	key = append(key, assetPrefix...)
	key = append(key, contract[:]...)
	key = append(key, id[:]...)
	key = append(key, owner[:]...)
	return key, nil
}
