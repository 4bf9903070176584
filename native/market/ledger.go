package market

import "errors"

// createEntry computes the deterministic identifier, inserts the entry into
// the ledger and only after successful insertion pulls the asset from the
// originating identity into escrow. An identifier collision is a hard failure;
// the timestamp and identity salt make it practically impossible absent an
// intentional replay.
func (e *Engine) createEntry(entry *Entry) (*Entry, error) {
	sanitized, err := SanitizeEntry(entry)
	if err != nil {
		return nil, err
	}
	id := ComputeEntryID(sanitized)
	if _, err := e.state.EntryGet(id); err == nil {
		return nil, errIDCollision
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	sanitized.ID = id
	if err := e.state.EntryPut(sanitized); err != nil {
		return nil, err
	}
	if err := e.custodian.TransferIn(sanitized.AssetContract, sanitized.AssetID, sanitized.Quantity, sanitized.Creator); err != nil {
		return nil, wrapTransfer("escrow asset", err)
	}
	return sanitized, nil
}

// loadEntry fetches the entry and checks its kind. A missing entry or a kind
// mismatch both surface as ErrNotFound: the identifier does not name a live
// entry of the requested mechanism. Backend failures pass through untouched.
func (e *Engine) loadEntry(id [32]byte, kind Kind) (*Entry, error) {
	entry, err := e.state.EntryGet(id)
	if err != nil {
		return nil, err
	}
	if entry.Kind != kind {
		return nil, ErrNotFound
	}
	return entry, nil
}

// deleteEntry erases the record from the ledger. Pure state deletion with no
// side effects; terminal operations invoke it before any outbound transfer so
// a reentrant call observes the post-settlement ledger.
func (e *Engine) deleteEntry(id [32]byte) error {
	return e.state.EntryDelete(id)
}
