package market

import (
	"encoding/hex"
	"log/slog"
	"math/big"
	"time"

	"nftmarket/core/events"
	"nftmarket/core/types"
	nativecommon "nftmarket/native/common"
	"nftmarket/native/fees"
)

const (
	marketModuleName = "market"

	// offerCooldownSecs is the cooling-off window after which a listing offer
	// becomes withdrawable by its claimant.
	offerCooldownSecs int64 = 48 * 60 * 60
)

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// engineState is the ledger surface the engine drives. EntryGet reports an
// absent entry as ErrNotFound; any other error is a backend failure and
// aborts the enclosing operation.
type engineState interface {
	EntryPut(*Entry) error
	EntryGet(id [32]byte) (*Entry, error)
	EntryDelete(id [32]byte) error
	Snapshot() int
	RevertToSnapshot(revision int)
}

// Engine wires the marketplace escrow ledger and settlement logic with the
// external capabilities: state, asset custodian, fund vault, royalty registry
// and access gate. All state-mutating operations run inside a state snapshot
// and revert as a whole on error.
type Engine struct {
	state     engineState
	custodian AssetCustodian
	vault     FundVault
	royalties RoyaltyRegistry
	gate      AccessGate
	emitter   events.Emitter
	pauses    nativecommon.PauseView
	logger    *slog.Logger
	feePolicy fees.Policy
	admin     [20]byte
	nowFn     func() int64
}

// NewEngine creates a marketplace engine with a no-op emitter and the default
// fee policy. Callers configure the backends via the Set helpers.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		feePolicy: fees.Policy{RateBps: fees.DefaultRateBps},
		nowFn:     func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetCustodian configures the asset custodian moving escrowed tokens.
func (e *Engine) SetCustodian(c AssetCustodian) { e.custodian = c }

// SetVault configures the fund vault holding bid, offer and sale funds.
func (e *Engine) SetVault(v FundVault) { e.vault = v }

// SetRoyaltyRegistry configures the optional royalty lookup. A nil registry
// disables royalties.
func (e *Engine) SetRoyaltyRegistry(r RoyaltyRegistry) { e.royalties = r }

// SetAccessGate configures caller classification. A nil gate treats every
// caller as a direct end-user.
func (e *Engine) SetAccessGate(g AccessGate) { e.gate = g }

// SetAdmin configures the identity allowed to mutate the fee policy.
func (e *Engine) SetAdmin(addr [20]byte) { e.admin = addr }

// SetFeePolicy replaces the fee policy wholesale, typically at bootstrap from
// configuration. Runtime mutation goes through ChangeFee/ChangeFeeDestination.
func (e *Engine) SetFeePolicy(p fees.Policy) error {
	if err := fees.ValidateRate(p.RateBps); err != nil {
		return err
	}
	e.feePolicy = p.Clone()
	return nil
}

// FeePolicy returns a copy of the active fee policy.
func (e *Engine) FeePolicy() fees.Policy { return e.feePolicy.Clone() }

// SetPauses configures the administrative pause view.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetLogger configures structured logging for settlement and refund-skip
// decisions. A nil logger disables logging.
func (e *Engine) SetLogger(logger *slog.Logger) { e.logger = logger }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ensureBackends() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.custodian == nil {
		return errNilCustodian
	}
	if e.vault == nil {
		return errNilVault
	}
	return nil
}

// run executes fn inside a state snapshot, reverting every mutation made by
// the call when fn errs. This provides the all-or-nothing guarantee on a
// non-transactional substrate.
func (e *Engine) run(fn func() error) error {
	if err := e.ensureBackends(); err != nil {
		return err
	}
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	revision := e.state.Snapshot()
	if err := fn(); err != nil {
		e.state.RevertToSnapshot(revision)
		return err
	}
	return nil
}

// resolveOrigin applies the access gate to a (caller, origin) pair. A caller
// acting for itself must not classify as disallowed; a caller acting for a
// different origin must classify as an approved intermediary, and the
// operation is attributed to the origin identity.
func (e *Engine) resolveOrigin(caller, origin [20]byte) ([20]byte, error) {
	if origin == ([20]byte{}) {
		origin = caller
	}
	if e.gate == nil {
		return origin, nil
	}
	class := e.gate.Classify(caller)
	if class == ClassDisallowed {
		return [20]byte{}, ErrUnauthorized
	}
	if caller != origin && class != ClassIntermediary {
		return [20]byte{}, ErrUnauthorized
	}
	return origin, nil
}

// canReceive reports whether outbound funds or assets may be sent to the
// identity. Disallowed recipients are skipped rather than blocking the
// enclosing operation; the skipped value stays in custody.
func (e *Engine) canReceive(addr [20]byte) bool {
	if e.gate == nil {
		return true
	}
	return e.gate.Classify(addr) != ClassDisallowed
}

// refundClaim pays a superseded or withdrawn claim back to its claimant. When
// the claimant is no longer allowed to receive funds the refund is skipped and
// the funds stay in the vault; this is a deliberate policy, not a failure.
func (e *Engine) refundClaim(entry *Entry, claimant [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if !e.canReceive(claimant) {
		e.logSkip("refund", entry, claimant, amount)
		refundSkips.WithLabelValues(entry.Kind.String()).Inc()
		return nil
	}
	if err := e.vault.Withdraw(claimant, amount); err != nil {
		return wrapTransfer("refund claimant", err)
	}
	return nil
}

// releaseAsset hands the escrowed asset to the recipient. Disallowed
// recipients are skipped and the asset stays in escrow; the entry is already
// erased at this point, so the asset is stranded. Same policy as refundClaim.
func (e *Engine) releaseAsset(entry *Entry, to [20]byte) error {
	if !e.canReceive(to) {
		e.logSkip("release", entry, to, nil)
		releaseSkips.WithLabelValues(entry.Kind.String()).Inc()
		return nil
	}
	if err := e.custodian.TransferOut(entry.AssetContract, entry.AssetID, entry.Quantity, to); err != nil {
		return wrapTransfer("asset release", err)
	}
	return nil
}

func (e *Engine) logSkip(action string, entry *Entry, recipient [20]byte, amount *big.Int) {
	if e.logger == nil {
		return
	}
	attrs := []any{
		"action", action,
		"entry", hex.EncodeToString(entry.ID[:]),
		"kind", entry.Kind.String(),
		"recipient", hex.EncodeToString(recipient[:]),
	}
	if amount != nil {
		attrs = append(attrs, "amount", amount.String())
	}
	e.logger.Warn("transfer skipped for disallowed recipient", attrs...)
}

// ChangeFee updates the fee rate. Restricted to the administrative identity;
// rates above the protocol cap are rejected.
func (e *Engine) ChangeFee(caller [20]byte, rate uint32) error {
	if e == nil || caller != e.admin || e.admin == ([20]byte{}) {
		return ErrUnauthorized
	}
	if err := fees.ValidateRate(rate); err != nil {
		return err
	}
	e.feePolicy.RateBps = rate
	return nil
}

// ChangeFeeDestination updates the fee sink. Restricted to the administrative
// identity.
func (e *Engine) ChangeFeeDestination(caller [20]byte, destination [20]byte) error {
	if e == nil || caller != e.admin || e.admin == ([20]byte{}) {
		return ErrUnauthorized
	}
	e.feePolicy.Destination = destination
	return nil
}

// Entry returns a copy of the stored entry. Absence surfaces as ErrNotFound,
// distinct from backend failures.
func (e *Engine) Entry(id [32]byte) (*Entry, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	entry, err := e.state.EntryGet(id)
	if err != nil {
		return nil, err
	}
	return entry.Clone(), nil
}
