package escrow

// MaxAuditEntries caps the per-escrow audit history. Once the cap is
// reached the oldest entries are evicted first; callers needing the full
// record must archive externally (see the archive package).
const MaxAuditEntries = 64

// Audit actions recorded against an escrow. Entries are written only when
// an operation succeeds, so the log reads as a history of accepted actions.
const (
	AuditEscrowCreated    = "escrow-created"
	AuditEscrowReleased   = "escrow-released"
	AuditEscrowRefunded   = "escrow-refunded"
	AuditDisputeInitiated = "dispute-initiated"
	AuditDisputeResolved  = "dispute-resolved"
)

// AuditEntry is an immutable record of one accepted action.
type AuditEntry struct {
	Action  string
	Actor   string
	Height  uint64
	Details string
}

// BoundAuditLog applies the FIFO eviction rule, returning the newest
// MaxAuditEntries entries in order.
func BoundAuditLog(entries []AuditEntry) []AuditEntry {
	if len(entries) <= MaxAuditEntries {
		return entries
	}
	return entries[len(entries)-MaxAuditEntries:]
}
