package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"fixpay/native/escrow"
	"fixpay/storage"
)

// Manager persists the settlement core's state over a generic key-value
// database. Records are JSON-encoded; amounts travel as decimal strings so
// the on-disk form stays stable across integer widths. The Manager is the
// engine's only state backend and performs no business validation beyond
// record sanitisation.
type Manager struct {
	db storage.Database
}

// NewManager wraps the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

type escrowRecord struct {
	ID            uint64 `json:"id"`
	RequestID     string `json:"requestId"`
	Payer         string `json:"payer"`
	Payee         string `json:"payee"`
	Amount        string `json:"amount"`
	Released      bool   `json:"released"`
	Refunded      bool   `json:"refunded"`
	Disputed      bool   `json:"disputed"`
	CreateHeight  uint64 `json:"createHeight"`
	TimeoutHeight uint64 `json:"timeoutHeight"`
	Metadata      string `json:"metadata,omitempty"`
}

type shareRecord struct {
	Recipient  string `json:"recipient"`
	Percentage uint32 `json:"percentage"`
}

type disputeRecord struct {
	Initiator     string `json:"initiator"`
	Reason        string `json:"reason,omitempty"`
	Resolved      bool   `json:"resolved"`
	Resolution    string `json:"resolution,omitempty"`
	ResolveHeight uint64 `json:"resolveHeight,omitempty"`
}

type auditRecord struct {
	Action  string `json:"action"`
	Actor   string `json:"actor"`
	Height  uint64 `json:"height"`
	Details string `json:"details,omitempty"`
}

// EscrowPut sanitises and stores an escrow record.
func (m *Manager) EscrowPut(esc *escrow.Escrow) error {
	sanitized, err := escrow.SanitizeEscrow(esc)
	if err != nil {
		return err
	}
	record := escrowRecord{
		ID:            sanitized.ID,
		RequestID:     sanitized.RequestID,
		Payer:         sanitized.Payer,
		Payee:         sanitized.Payee,
		Amount:        sanitized.Amount.String(),
		Released:      sanitized.Released,
		Refunded:      sanitized.Refunded,
		Disputed:      sanitized.Disputed,
		CreateHeight:  sanitized.CreateHeight,
		TimeoutHeight: sanitized.TimeoutHeight,
		Metadata:      sanitized.Metadata,
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return m.db.Put(keyFor(escrowPrefix, sanitized.ID), encoded)
}

// EscrowGet loads an escrow by id. Absent or undecodable records report
// false.
func (m *Manager) EscrowGet(id uint64) (*escrow.Escrow, bool) {
	data, err := m.db.Get(keyFor(escrowPrefix, id))
	if err != nil {
		return nil, false
	}
	var record escrowRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	amount, ok := new(big.Int).SetString(record.Amount, 10)
	if !ok {
		return nil, false
	}
	return &escrow.Escrow{
		ID:            record.ID,
		RequestID:     record.RequestID,
		Payer:         record.Payer,
		Payee:         record.Payee,
		Amount:        amount,
		Released:      record.Released,
		Refunded:      record.Refunded,
		Disputed:      record.Disputed,
		CreateHeight:  record.CreateHeight,
		TimeoutHeight: record.TimeoutHeight,
		Metadata:      record.Metadata,
	}, true
}

// SharesPut stores the payment share table attached to an escrow.
func (m *Manager) SharesPut(id uint64, shares []escrow.PaymentShare) error {
	if err := escrow.ValidateShares(shares); err != nil {
		return err
	}
	records := make([]shareRecord, 0, len(shares))
	for _, share := range shares {
		records = append(records, shareRecord{Recipient: share.Recipient, Percentage: share.Percentage})
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return m.db.Put(keyFor(sharesPrefix, id), encoded)
}

// SharesGet loads the share table, reporting false when the escrow uses the
// default payout.
func (m *Manager) SharesGet(id uint64) ([]escrow.PaymentShare, bool) {
	data, err := m.db.Get(keyFor(sharesPrefix, id))
	if err != nil {
		return nil, false
	}
	var records []shareRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	shares := make([]escrow.PaymentShare, 0, len(records))
	for _, record := range records {
		shares = append(shares, escrow.PaymentShare{Recipient: record.Recipient, Percentage: record.Percentage})
	}
	return shares, true
}

// DisputePut stores the dispute record for an escrow.
func (m *Manager) DisputePut(id uint64, dispute *escrow.Dispute) error {
	if dispute == nil {
		return fmt.Errorf("state: nil dispute")
	}
	encoded, err := json.Marshal(disputeRecord{
		Initiator:     dispute.Initiator,
		Reason:        dispute.Reason,
		Resolved:      dispute.Resolved,
		Resolution:    dispute.Resolution,
		ResolveHeight: dispute.ResolveHeight,
	})
	if err != nil {
		return err
	}
	return m.db.Put(keyFor(disputePrefix, id), encoded)
}

// DisputeGet loads the dispute record, reporting false when the escrow was
// never contested.
func (m *Manager) DisputeGet(id uint64) (*escrow.Dispute, bool) {
	data, err := m.db.Get(keyFor(disputePrefix, id))
	if err != nil {
		return nil, false
	}
	var record disputeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &escrow.Dispute{
		Initiator:     record.Initiator,
		Reason:        record.Reason,
		Resolved:      record.Resolved,
		Resolution:    record.Resolution,
		ResolveHeight: record.ResolveHeight,
	}, true
}

// AuditAppend adds one entry to the escrow's history, evicting the oldest
// entries beyond the capacity bound.
func (m *Manager) AuditAppend(id uint64, entry escrow.AuditEntry) error {
	entries := m.AuditList(id)
	entries = append(entries, entry)
	entries = escrow.BoundAuditLog(entries)
	records := make([]auditRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, auditRecord{Action: e.Action, Actor: e.Actor, Height: e.Height, Details: e.Details})
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return m.db.Put(keyFor(auditPrefix, id), encoded)
}

// AuditList returns the bounded history for an escrow, oldest first.
func (m *Manager) AuditList(id uint64) []escrow.AuditEntry {
	data, err := m.db.Get(keyFor(auditPrefix, id))
	if err != nil {
		return nil
	}
	var records []auditRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	entries := make([]escrow.AuditEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, escrow.AuditEntry{Action: record.Action, Actor: record.Actor, Height: record.Height, Details: record.Details})
	}
	return entries
}

// EscrowCounter returns the next escrow id (equivalently, the number of
// escrows ever created).
func (m *Manager) EscrowCounter() uint64 {
	data, err := m.db.Get(counterKey)
	if err != nil || len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// SetEscrowCounter persists the monotonic escrow counter.
func (m *Manager) SetEscrowCounter(value uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return m.db.Put(counterKey, buf[:])
}

// Owner returns the contract owner, empty when uninitialised.
func (m *Manager) Owner() string {
	data, err := m.db.Get(ownerKey)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetOwner persists the contract owner principal.
func (m *Manager) SetOwner(owner string) error {
	return m.db.Put(ownerKey, []byte(owner))
}

// Paused reports the process-wide pause flag.
func (m *Manager) Paused() bool {
	data, err := m.db.Get(pausedKey)
	if err != nil {
		return false
	}
	return len(data) == 1 && data[0] == 1
}

// SetPaused persists the pause flag.
func (m *Manager) SetPaused(paused bool) error {
	value := []byte{0}
	if paused {
		value[0] = 1
	}
	return m.db.Put(pausedKey, value)
}

// DisputeOracle returns the oracle principal, empty when unassigned.
func (m *Manager) DisputeOracle() string {
	data, err := m.db.Get(oracleKey)
	if err != nil {
		return ""
	}
	return string(data)
}

// SetDisputeOracle persists the oracle principal.
func (m *Manager) SetDisputeOracle(oracle string) error {
	return m.db.Put(oracleKey, []byte(oracle))
}
