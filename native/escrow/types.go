package escrow

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// MaxPaymentShares bounds the share table attached to an escrow.
	MaxPaymentShares = 5
	// MaxMetadataLen bounds the free-text metadata stored per escrow.
	MaxMetadataLen = 256
	// MaxDisputeReasonLen bounds the free text recorded with a dispute and
	// with a resolution.
	MaxDisputeReasonLen = 256
)

// Escrow captures the immutable terms and runtime flags of a single
// custodial hold managed by the engine. Identifiers are allocated from a
// monotonic counter; payer, payee, amount and the height window never change
// after creation.
type Escrow struct {
	ID            uint64
	RequestID     string
	Payer         string
	Payee         string
	Amount        *big.Int
	Released      bool
	Refunded      bool
	Disputed      bool
	CreateHeight  uint64
	TimeoutHeight uint64
	Metadata      string
}

// Terminal reports whether the escrow has reached a final settlement. A
// terminal escrow admits no further mutation.
func (e *Escrow) Terminal() bool {
	if e == nil {
		return false
	}
	return e.Released || e.Refunded
}

// Status renders the lifecycle position as a stable label for events and
// logs.
func (e *Escrow) Status() string {
	switch {
	case e == nil:
		return ""
	case e.Released:
		return "released"
	case e.Refunded:
		return "refunded"
	case e.Disputed:
		return "disputed"
	default:
		return "active"
	}
}

// Clone returns a deep copy of the escrow object so callers can safely
// mutate the copy without affecting the stored instance.
func (e *Escrow) Clone() *Escrow {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Amount != nil {
		clone.Amount = new(big.Int).Set(e.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}

// SanitizeEscrow validates the supplied escrow record and returns a cloned
// instance with a non-nil amount field. The function does not mutate the
// original value.
func SanitizeEscrow(e *Escrow) (*Escrow, error) {
	if e == nil {
		return nil, fmt.Errorf("escrow: nil escrow")
	}
	clone := e.Clone()
	if strings.TrimSpace(clone.Payer) == "" {
		return nil, fmt.Errorf("escrow: payer required")
	}
	if strings.TrimSpace(clone.Payee) == "" {
		return nil, fmt.Errorf("escrow: payee required")
	}
	if clone.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("escrow: amount must be positive")
	}
	if len(clone.Metadata) > MaxMetadataLen {
		return nil, fmt.Errorf("escrow: metadata exceeds %d bytes", MaxMetadataLen)
	}
	if clone.TimeoutHeight < clone.CreateHeight {
		return nil, fmt.Errorf("escrow: timeout height precedes creation height")
	}
	if clone.Released && clone.Refunded {
		return nil, fmt.Errorf("escrow: released and refunded are mutually exclusive")
	}
	return clone, nil
}

// PaymentShare assigns a recipient a whole percentage of the escrowed
// amount at disbursement time.
type PaymentShare struct {
	Recipient  string
	Percentage uint32
}

// Dispute records a contest raised by one of the principals. At most one
// unresolved dispute exists per escrow; a resolved dispute is retained as
// history.
type Dispute struct {
	Initiator     string
	Reason        string
	Resolved      bool
	Resolution    string
	ResolveHeight uint64
}

// Clone returns a copy of the dispute record.
func (d *Dispute) Clone() *Dispute {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
