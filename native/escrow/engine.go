package escrow

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"fixpay/core/events"
	"fixpay/core/types"
	"fixpay/observability"
)

var (
	errNilState  = errors.New("escrow engine: state not configured")
	errNilLedger = errors.New("escrow engine: ledger not configured")
)

// DefaultVault is the custodial principal that holds escrowed value between
// creation and settlement. Rounding residue from share disbursement stays
// here.
const DefaultVault = "escrow-vault"

// Ledger is the external value-transfer collaborator. A transfer is atomic:
// it either fully succeeds or fully fails, never partially.
type Ledger interface {
	Transfer(amount *big.Int, from, to string) error
}

// HeightSource exposes the monotonically non-decreasing counter used as the
// timeout clock.
type HeightSource interface {
	CurrentHeight() uint64
}

type engineState interface {
	EscrowPut(*Escrow) error
	EscrowGet(id uint64) (*Escrow, bool)
	SharesPut(id uint64, shares []PaymentShare) error
	SharesGet(id uint64) ([]PaymentShare, bool)
	DisputePut(id uint64, dispute *Dispute) error
	DisputeGet(id uint64) (*Dispute, bool)
	AuditAppend(id uint64, entry AuditEntry) error
	AuditList(id uint64) []AuditEntry
	EscrowCounter() uint64
	SetEscrowCounter(uint64) error
	Owner() string
	SetOwner(string) error
	Paused() bool
	SetPaused(bool) error
	DisputeOracle() string
	SetDisputeOracle(string) error
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// Engine wires the escrow state machine to external state, the value
// ledger, the height clock and event emitters. It is the sole writer of
// escrow records and the only component that requests transfers; the
// execution environment serializes calls, so no internal locking happens
// here.
type Engine struct {
	state    engineState
	ledger   Ledger
	emitter  events.Emitter
	heightFn func() uint64
	vault    string
	logger   *slog.Logger
	metrics  *observability.EscrowMetrics
}

// NewEngine creates an escrow engine with a no-op emitter, the default
// custodial vault and a zero height source. Callers wire collaborators via
// the Set* methods before use.
func NewEngine() *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		heightFn: func() uint64 { return 0 },
		vault:    DefaultVault,
		metrics:  observability.Escrow(),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the value-transfer collaborator.
func (e *Engine) SetLedger(ledger Ledger) { e.ledger = ledger }

// SetVault overrides the custodial principal holding escrowed funds.
func (e *Engine) SetVault(vault string) {
	if strings.TrimSpace(vault) != "" {
		e.vault = vault
	}
}

// SetHeightSource wires the timeout clock.
func (e *Engine) SetHeightSource(src HeightSource) {
	if src == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = src.CurrentHeight
}

// SetHeightFunc overrides the height source directly. Primarily intended
// for tests to provide deterministic heights.
func (e *Engine) SetHeightFunc(height func() uint64) {
	if height == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = height
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetLogger attaches a structured logger for accepted actions.
func (e *Engine) SetLogger(logger *slog.Logger) { e.logger = logger }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) height() uint64 {
	if e == nil || e.heightFn == nil {
		return 0
	}
	return e.heightFn()
}

func (e *Engine) record(op string, err error) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.RecordOp(op, err)
}

func (e *Engine) recordValue(op string, amount *big.Int) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.RecordValue(op, amount)
}

func (e *Engine) logAccepted(action string, id uint64, caller string) {
	if e == nil || e.logger == nil {
		return
	}
	e.logger.Info("escrow action accepted", "action", action, "escrow", id, "caller", caller)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func (e *Engine) loadEscrow(id uint64) (*Escrow, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	esc, ok := e.state.EscrowGet(id)
	if !ok {
		return nil, ErrEscrowNotFound
	}
	return esc, nil
}

func (e *Engine) storeEscrow(esc *Escrow) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.EscrowPut(esc)
}

func (e *Engine) transfer(amount *big.Int, from, to string) error {
	if e == nil || e.ledger == nil {
		return errNilLedger
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if err := e.ledger.Transfer(amt, from, to); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

func (e *Engine) appendAudit(id uint64, action, actor, details string) error {
	return e.state.AuditAppend(id, AuditEntry{
		Action:  action,
		Actor:   actor,
		Height:  e.height(),
		Details: details,
	})
}

// Initialize records the contract owner and the initial dispute oracle.
// Ownership is set exactly once for the lifetime of the deployment.
func (e *Engine) Initialize(owner, oracle string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if strings.TrimSpace(owner) == "" {
		return fmt.Errorf("%w: owner required", ErrInvalidRequest)
	}
	if e.state.Owner() != "" {
		return fmt.Errorf("%w: already initialised", ErrInvalidRequest)
	}
	if err := e.state.SetOwner(owner); err != nil {
		return err
	}
	if strings.TrimSpace(oracle) != "" {
		return e.state.SetDisputeOracle(oracle)
	}
	return nil
}

// Create opens a new escrow: it validates the terms, pulls the amount from
// the caller into the custodial vault and persists the record in the active
// state. The caller becomes the payer. Transfer failure aborts the whole
// operation with no state change.
func (e *Engine) Create(caller, requestID, payee string, amount *big.Int, timeoutDelay uint64, metadata string, shares []PaymentShare) (id uint64, err error) {
	defer func() { e.record("create", err) }()
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := requireNotPaused(e.state.Paused()); err != nil {
		return 0, err
	}
	if strings.TrimSpace(caller) == "" || strings.TrimSpace(payee) == "" {
		return 0, fmt.Errorf("%w: payer and payee required", ErrInvalidRequest)
	}
	amt := cloneBigInt(amount)
	if amt.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if len(metadata) > MaxMetadataLen {
		return 0, ErrInvalidMetadata
	}
	if len(shares) > 0 {
		if err := ValidateShares(shares); err != nil {
			return 0, err
		}
	}
	if err := e.transfer(amt, caller, e.vault); err != nil {
		return 0, err
	}
	height := e.height()
	id = e.state.EscrowCounter()
	esc := &Escrow{
		ID:            id,
		RequestID:     requestID,
		Payer:         caller,
		Payee:         payee,
		Amount:        amt,
		CreateHeight:  height,
		TimeoutHeight: height + timeoutDelay,
		Metadata:      metadata,
	}
	if err := e.storeEscrow(esc); err != nil {
		return 0, err
	}
	if len(shares) > 0 {
		if err := e.state.SharesPut(id, clonePaymentShares(shares)); err != nil {
			return 0, err
		}
	}
	if err := e.state.SetEscrowCounter(id + 1); err != nil {
		return 0, err
	}
	if err := e.appendAudit(id, AuditEscrowCreated, caller, requestID); err != nil {
		return 0, err
	}
	e.emit(NewCreatedEvent(esc))
	e.recordValue("create", amt)
	e.logAccepted(AuditEscrowCreated, id, caller)
	return id, nil
}

// Release disburses the escrowed amount to the share table (defaulting to
// 100% payee) and settles the escrow. Only the payee may release, only
// within the timeout window, and never while a dispute is active. A failed
// disbursement leaves the escrow untouched in the active state; the caller
// decides whether to resubmit.
func (e *Engine) Release(caller string, id uint64) (err error) {
	defer func() { e.record("release", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireNotPaused(e.state.Paused()); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Terminal() {
		return ErrEscrowTerminal
	}
	if e.height() > esc.TimeoutHeight {
		return ErrEscrowExpired
	}
	if esc.Disputed {
		return ErrDisputeActive
	}
	if err := requireRole(caller, esc.Payee); err != nil {
		return err
	}
	if err := e.disburse(esc); err != nil {
		return err
	}
	esc.Released = true
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendAudit(id, AuditEscrowReleased, caller, ""); err != nil {
		return err
	}
	e.emit(NewReleasedEvent(esc))
	e.recordValue("release", esc.Amount)
	e.logAccepted(AuditEscrowReleased, id, caller)
	return nil
}

// Refund returns the full escrowed amount to the payer and settles the
// escrow. Only the payer may refund; there is no timeout check, so a payer
// can still reclaim after the release window has expired.
func (e *Engine) Refund(caller string, id uint64) (err error) {
	defer func() { e.record("refund", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireNotPaused(e.state.Paused()); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Terminal() {
		return ErrEscrowTerminal
	}
	if esc.Disputed {
		return ErrDisputeActive
	}
	if err := requireRole(caller, esc.Payer); err != nil {
		return err
	}
	if err := e.transfer(esc.Amount, e.vault, esc.Payer); err != nil {
		return err
	}
	esc.Refunded = true
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendAudit(id, AuditEscrowRefunded, caller, ""); err != nil {
		return err
	}
	e.emit(NewRefundedEvent(esc))
	e.recordValue("refund", esc.Amount)
	e.logAccepted(AuditEscrowRefunded, id, caller)
	return nil
}

// Dispute flags the escrow as contested. Only the payer or payee may raise
// a dispute, and only one may be active at a time.
func (e *Engine) Dispute(caller string, id uint64, reason string) (err error) {
	defer func() { e.record("dispute", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireNotPaused(e.state.Paused()); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	if esc.Terminal() {
		return ErrEscrowTerminal
	}
	if esc.Disputed {
		return ErrDisputeActive
	}
	if err := requireParty(caller, esc); err != nil {
		return err
	}
	if len(reason) > MaxDisputeReasonLen {
		return fmt.Errorf("%w: dispute reason exceeds %d bytes", ErrInvalidRequest, MaxDisputeReasonLen)
	}
	dispute := &Dispute{Initiator: caller, Reason: reason}
	if err := e.state.DisputePut(id, dispute); err != nil {
		return err
	}
	esc.Disputed = true
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendAudit(id, AuditDisputeInitiated, caller, reason); err != nil {
		return err
	}
	e.emit(NewDisputedEvent(esc, dispute))
	e.logAccepted(AuditDisputeInitiated, id, caller)
	return nil
}

// Resolve settles a disputed escrow according to the oracle-determined
// outcome: a full refund to the payer, or a disbursement to the share
// table. This is the only path by which a disputed escrow reaches a
// terminal state.
func (e *Engine) Resolve(caller string, id uint64, resolution string, refundToPayer bool) (err error) {
	defer func() { e.record("resolve", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireNotPaused(e.state.Paused()); err != nil {
		return err
	}
	esc, err := e.loadEscrow(id)
	if err != nil {
		return err
	}
	dispute, ok := e.state.DisputeGet(id)
	if !ok || dispute.Resolved || !esc.Disputed {
		return ErrNoDispute
	}
	if err := requireRole(caller, e.state.DisputeOracle()); err != nil {
		return err
	}
	if len(resolution) > MaxDisputeReasonLen {
		return fmt.Errorf("%w: resolution exceeds %d bytes", ErrInvalidRequest, MaxDisputeReasonLen)
	}
	outcome := "release"
	if refundToPayer {
		outcome = "refund"
		if err := e.transfer(esc.Amount, e.vault, esc.Payer); err != nil {
			return err
		}
		esc.Refunded = true
	} else {
		if err := e.disburse(esc); err != nil {
			return err
		}
		esc.Released = true
	}
	esc.Disputed = false
	dispute.Resolved = true
	dispute.Resolution = resolution
	dispute.ResolveHeight = e.height()
	if err := e.state.DisputePut(id, dispute); err != nil {
		return err
	}
	if err := e.storeEscrow(esc); err != nil {
		return err
	}
	if err := e.appendAudit(id, AuditDisputeResolved, caller, resolution); err != nil {
		return err
	}
	e.emit(NewResolvedEvent(esc, dispute, outcome))
	e.recordValue("resolve", esc.Amount)
	e.logAccepted(AuditDisputeResolved, id, caller)
	return nil
}

// disburse pays the share table (defaulting to 100% payee) out of the
// vault in share order. If any leg fails, completed legs are compensated
// back to the vault so a partial payout is never observable.
func (e *Engine) disburse(esc *Escrow) error {
	if e.ledger == nil {
		return errNilLedger
	}
	shares, ok := e.state.SharesGet(esc.ID)
	if !ok || len(shares) == 0 {
		shares = []PaymentShare{{Recipient: esc.Payee, Percentage: 100}}
	}
	payouts := splitAmount(esc.Amount, shares)
	completed := make([]payout, 0, len(payouts))
	for _, p := range payouts {
		if p.Amount.Sign() == 0 {
			continue
		}
		if err := e.ledger.Transfer(p.Amount, e.vault, p.Recipient); err != nil {
			for i := len(completed) - 1; i >= 0; i-- {
				if undoErr := e.ledger.Transfer(completed[i].Amount, completed[i].Recipient, e.vault); undoErr != nil {
					return fmt.Errorf("%w: %v (compensation failed: %v)", ErrTransferFailed, err, undoErr)
				}
			}
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		completed = append(completed, p)
	}
	return nil
}

// Pause halts all escrow-mutating operations. Owner-only; administrative
// operations themselves remain available while paused.
func (e *Engine) Pause(caller string) (err error) {
	defer func() { e.record("pause", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireOwner(caller, e.state.Owner()); err != nil {
		return err
	}
	if e.state.Paused() {
		return nil
	}
	if err := e.state.SetPaused(true); err != nil {
		return err
	}
	e.emit(NewPausedEvent(caller))
	return nil
}

// Unpause lifts a pause. Owner-only.
func (e *Engine) Unpause(caller string) (err error) {
	defer func() { e.record("unpause", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireOwner(caller, e.state.Owner()); err != nil {
		return err
	}
	if !e.state.Paused() {
		return nil
	}
	if err := e.state.SetPaused(false); err != nil {
		return err
	}
	e.emit(NewUnpausedEvent(caller))
	return nil
}

// SetOracle reassigns the dispute oracle. Owner-only; takes effect for all
// subsequent resolutions.
func (e *Engine) SetOracle(caller, oracle string) (err error) {
	defer func() { e.record("set_oracle", err) }()
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := requireOwner(caller, e.state.Owner()); err != nil {
		return err
	}
	if strings.TrimSpace(oracle) == "" {
		return fmt.Errorf("%w: oracle required", ErrInvalidRequest)
	}
	if err := e.state.SetDisputeOracle(oracle); err != nil {
		return err
	}
	e.emit(NewOracleUpdatedEvent(caller, oracle))
	return nil
}

// --- read-only accessors ---

// GetEscrow returns a clone of the escrow record, or false when absent.
func (e *Engine) GetEscrow(id uint64) (*Escrow, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	return e.state.EscrowGet(id)
}

// GetPaymentShares returns the share table attached at creation, or false
// when the escrow defaults to 100% payee.
func (e *Engine) GetPaymentShares(id uint64) ([]PaymentShare, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	return e.state.SharesGet(id)
}

// GetDispute returns the dispute record (active or resolved), or false when
// the escrow was never contested.
func (e *Engine) GetDispute(id uint64) (*Dispute, bool) {
	if e == nil || e.state == nil {
		return nil, false
	}
	return e.state.DisputeGet(id)
}

// GetAuditLog returns the bounded per-escrow history of accepted actions,
// oldest first. An unknown id yields an empty log.
func (e *Engine) GetAuditLog(id uint64) []AuditEntry {
	if e == nil || e.state == nil {
		return nil
	}
	return e.state.AuditList(id)
}

// IsPaused reports whether mutating operations are currently gated.
func (e *Engine) IsPaused() bool {
	if e == nil || e.state == nil {
		return false
	}
	return e.state.Paused()
}

// Owner returns the contract owner principal.
func (e *Engine) Owner() string {
	if e == nil || e.state == nil {
		return ""
	}
	return e.state.Owner()
}

// Oracle returns the current dispute oracle principal.
func (e *Engine) Oracle() string {
	if e == nil || e.state == nil {
		return ""
	}
	return e.state.DisputeOracle()
}

// EscrowCount returns the number of escrows ever created.
func (e *Engine) EscrowCount() uint64 {
	if e == nil || e.state == nil {
		return 0
	}
	return e.state.EscrowCounter()
}
