package escrow

import "errors"

// Every mutating operation validates its preconditions before any side
// effect and reports a failure as exactly one of these kinds, optionally
// wrapped with context. Callers match with errors.Is.
var (
	ErrUnauthorized      = errors.New("escrow engine: unauthorized caller")
	ErrInvalidAmount     = errors.New("escrow engine: amount must be positive")
	ErrInvalidRequest    = errors.New("escrow engine: invalid request")
	ErrEscrowNotFound    = errors.New("escrow engine: escrow not found")
	ErrEscrowTerminal    = errors.New("escrow engine: escrow already settled")
	ErrEscrowExpired     = errors.New("escrow engine: release window expired")
	ErrDisputeActive     = errors.New("escrow engine: dispute active")
	ErrNoDispute         = errors.New("escrow engine: no active dispute")
	ErrInvalidPercentage = errors.New("escrow engine: share percentages must sum to 100")
	ErrPaused            = errors.New("escrow engine: paused")
	ErrInvalidMetadata   = errors.New("escrow engine: metadata out of bounds")
	ErrTransferFailed    = errors.New("escrow engine: transfer failed")
)
