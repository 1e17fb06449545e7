package escrow

import (
	"strconv"

	"fixpay/core/types"
)

const (
	EventTypeEscrowCreated  = "escrow.created"
	EventTypeEscrowReleased = "escrow.released"
	EventTypeEscrowRefunded = "escrow.refunded"
	EventTypeEscrowDisputed = "escrow.disputed"
	EventTypeEscrowResolved = "escrow.resolved"
	EventTypePaused         = "escrow.paused"
	EventTypeUnpaused       = "escrow.unpaused"
	EventTypeOracleUpdated  = "escrow.oracle_updated"
)

// NewCreatedEvent returns the canonical event payload for a newly created
// escrow.
func NewCreatedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowCreated, e) }

// NewReleasedEvent returns the canonical event payload for a disbursement
// to the payee side of the share table.
func NewReleasedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowReleased, e) }

// NewRefundedEvent returns the canonical event payload for a refund to the
// payer.
func NewRefundedEvent(e *Escrow) *types.Event { return newEscrowEvent(EventTypeEscrowRefunded, e) }

// NewDisputedEvent returns the canonical event payload emitted when a
// principal contests an escrow.
func NewDisputedEvent(e *Escrow, d *Dispute) *types.Event {
	evt := newEscrowEvent(EventTypeEscrowDisputed, e)
	if d != nil {
		evt.Attributes["initiator"] = d.Initiator
		if d.Reason != "" {
			evt.Attributes["disputeReason"] = d.Reason
		}
	}
	return evt
}

// NewResolvedEvent returns the canonical event payload emitted when the
// oracle settles a dispute.
func NewResolvedEvent(e *Escrow, d *Dispute, outcome string) *types.Event {
	evt := newEscrowEvent(EventTypeEscrowResolved, e)
	evt.Attributes["outcome"] = outcome
	if d != nil {
		evt.Attributes["resolution"] = d.Resolution
		evt.Attributes["resolveHeight"] = strconv.FormatUint(d.ResolveHeight, 10)
	}
	return evt
}

// NewPausedEvent reports the owner halting all mutating operations.
func NewPausedEvent(owner string) *types.Event {
	return &types.Event{Type: EventTypePaused, Attributes: map[string]string{"owner": owner}}
}

// NewUnpausedEvent reports the owner lifting a pause.
func NewUnpausedEvent(owner string) *types.Event {
	return &types.Event{Type: EventTypeUnpaused, Attributes: map[string]string{"owner": owner}}
}

// NewOracleUpdatedEvent reports an oracle reassignment.
func NewOracleUpdatedEvent(owner, oracle string) *types.Event {
	return &types.Event{Type: EventTypeOracleUpdated, Attributes: map[string]string{
		"owner":  owner,
		"oracle": oracle,
	}}
}

func newEscrowEvent(eventType string, e *Escrow) *types.Event {
	attrs := make(map[string]string)
	if e == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(e.ID, 10)
	attrs["requestId"] = e.RequestID
	attrs["payer"] = e.Payer
	attrs["payee"] = e.Payee
	if e.Amount != nil {
		attrs["amount"] = e.Amount.String()
	}
	attrs["createHeight"] = strconv.FormatUint(e.CreateHeight, 10)
	attrs["timeoutHeight"] = strconv.FormatUint(e.TimeoutHeight, 10)
	attrs["status"] = e.Status()
	return &types.Event{Type: eventType, Attributes: attrs}
}
