package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"nftmarket/core/types"
	"nftmarket/native/market"
	"nftmarket/storage"
)

var (
	entryPrefix   = []byte("market/entry/")
	accountPrefix = []byte("market/account/")
	assetPrefix   = []byte("market/asset/")
)

// journalEntry records the previous value of a key so a revert can restore it.
type journalEntry struct {
	key     []byte
	prev    []byte
	existed bool
}

// MarketState is the engine state backend: entries, accounts and asset
// holdings JSON-encoded over a storage.Database, with a write journal giving
// Snapshot/RevertToSnapshot semantics. Every mutation inside an engine call is
// rolled back as a whole when the call fails. Calls are expected to execute
// sequentially; the type is not safe for concurrent mutation.
type MarketState struct {
	db      storage.Database
	journal []journalEntry
}

// NewMarketState wraps the supplied database.
func NewMarketState(db storage.Database) *MarketState {
	return &MarketState{db: db}
}

// Snapshot returns a revision token for the current journal position.
func (s *MarketState) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every write made after the supplied revision.
func (s *MarketState) RevertToSnapshot(revision int) {
	if revision < 0 || revision > len(s.journal) {
		return
	}
	for i := len(s.journal) - 1; i >= revision; i-- {
		entry := s.journal[i]
		if entry.existed {
			_ = s.db.Put(entry.key, entry.prev)
		} else {
			_ = s.db.Delete(entry.key)
		}
	}
	s.journal = s.journal[:revision]
}

// DiscardJournal forgets recorded history, typically after a block or batch
// boundary when earlier revisions can no longer be reverted to.
func (s *MarketState) DiscardJournal() {
	s.journal = s.journal[:0]
}

func (s *MarketState) record(key []byte) error {
	prev, err := s.db.Get(key)
	switch {
	case err == nil:
		s.journal = append(s.journal, journalEntry{key: append([]byte(nil), key...), prev: prev, existed: true})
	case errors.Is(err, storage.ErrNotFound):
		s.journal = append(s.journal, journalEntry{key: append([]byte(nil), key...)})
	default:
		return err
	}
	return nil
}

func (s *MarketState) set(key, value []byte) error {
	if err := s.record(key); err != nil {
		return err
	}
	return s.db.Put(key, value)
}

func (s *MarketState) delete(key []byte) error {
	if err := s.record(key); err != nil {
		return err
	}
	return s.db.Delete(key)
}

func entryKey(id [32]byte) []byte {
	return append(append([]byte(nil), entryPrefix...), id[:]...)
}

func accountKey(addr [20]byte) []byte {
	return append(append([]byte(nil), accountPrefix...), addr[:]...)
}

// EntryPut validates and persists the entry.
func (s *MarketState) EntryPut(e *market.Entry) error {
	sanitized, err := market.SanitizeEntry(e)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return err
	}
	return s.set(entryKey(sanitized.ID), encoded)
}

// EntryGet loads the entry under the identifier. An absent entry surfaces as
// market.ErrNotFound; any other error is a backend failure.
func (s *MarketState) EntryGet(id [32]byte) (*market.Entry, error) {
	raw, err := s.db.Get(entryKey(id))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, market.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry := new(market.Entry)
	if err := json.Unmarshal(raw, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// EntryDelete erases the entry. Deleting an absent entry is not an error.
func (s *MarketState) EntryDelete(id [32]byte) error {
	return s.delete(entryKey(id))
}

// GetAccount loads the fund account for the identity, defaulting to a zero
// balance when absent.
func (s *MarketState) GetAccount(addr [20]byte) (*types.Account, error) {
	raw, err := s.db.Get(accountKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return (&types.Account{}).Clone(), nil
	}
	if err != nil {
		return nil, err
	}
	account := new(types.Account)
	if err := json.Unmarshal(raw, account); err != nil {
		return nil, err
	}
	return account.Clone(), nil
}

// PutAccount persists the fund account for the identity.
func (s *MarketState) PutAccount(addr [20]byte, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	encoded, err := json.Marshal(account.Clone())
	if err != nil {
		return err
	}
	return s.set(accountKey(addr), encoded)
}
