package state_test

import (
	"math/big"
	"testing"

	"fixpay/core/state"
	escrowpkg "fixpay/native/escrow"
	"fixpay/storage"
)

func newManager(t *testing.T) *state.Manager {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return state.NewManager(db)
}

func TestEscrowRoundTrip(t *testing.T) {
	mgr := newManager(t)
	amount := big.NewInt(1_000_000)
	esc := &escrowpkg.Escrow{
		ID:            3,
		RequestID:     "req-3",
		Payer:         "payer-3",
		Payee:         "payee-3",
		Amount:        amount,
		Disputed:      true,
		CreateHeight:  40,
		TimeoutHeight: 52,
		Metadata:      "engine swap",
	}
	if err := mgr.EscrowPut(esc); err != nil {
		t.Fatalf("EscrowPut: %v", err)
	}

	stored, ok := mgr.EscrowGet(3)
	if !ok {
		t.Fatalf("EscrowGet: expected escrow to exist")
	}
	if stored.Amount == nil || stored.Amount.Cmp(amount) != 0 {
		t.Fatalf("unexpected amount: %v", stored.Amount)
	}
	if stored.Amount == amount {
		t.Fatalf("EscrowGet should not alias the stored amount pointer")
	}
	if stored.RequestID != "req-3" || !stored.Disputed || stored.TimeoutHeight != 52 {
		t.Fatalf("unexpected record: %+v", stored)
	}

	if _, ok := mgr.EscrowGet(99); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestEscrowPutRejectsInvalidRecords(t *testing.T) {
	mgr := newManager(t)
	if err := mgr.EscrowPut(&escrowpkg.Escrow{ID: 1, Payer: "p", Payee: "q", Amount: big.NewInt(0)}); err == nil {
		t.Fatalf("expected sanitisation failure for zero amount")
	}
	if err := mgr.EscrowPut(nil); err == nil {
		t.Fatalf("expected sanitisation failure for nil escrow")
	}
}

func TestSharesAndDisputeRoundTrip(t *testing.T) {
	mgr := newManager(t)
	shares := []escrowpkg.PaymentShare{
		{Recipient: "payee", Percentage: 75},
		{Recipient: "parts", Percentage: 25},
	}
	if err := mgr.SharesPut(5, shares); err != nil {
		t.Fatalf("SharesPut: %v", err)
	}
	stored, ok := mgr.SharesGet(5)
	if !ok || len(stored) != 2 || stored[1].Percentage != 25 {
		t.Fatalf("unexpected shares: %+v", stored)
	}
	if _, ok := mgr.SharesGet(6); ok {
		t.Fatalf("expected miss for default-payout escrow")
	}
	if err := mgr.SharesPut(7, []escrowpkg.PaymentShare{{Recipient: "x", Percentage: 10}}); err == nil {
		t.Fatalf("expected share validation failure")
	}

	dispute := &escrowpkg.Dispute{Initiator: "payer", Reason: "leaks"}
	if err := mgr.DisputePut(5, dispute); err != nil {
		t.Fatalf("DisputePut: %v", err)
	}
	dispute.Resolved = true
	dispute.Resolution = "refund"
	dispute.ResolveHeight = 90
	if err := mgr.DisputePut(5, dispute); err != nil {
		t.Fatalf("DisputePut update: %v", err)
	}
	storedDispute, ok := mgr.DisputeGet(5)
	if !ok || !storedDispute.Resolved || storedDispute.ResolveHeight != 90 {
		t.Fatalf("unexpected dispute: %+v", storedDispute)
	}
}

func TestAuditAppendEvictsOldest(t *testing.T) {
	mgr := newManager(t)
	for i := 0; i < escrowpkg.MaxAuditEntries+5; i++ {
		entry := escrowpkg.AuditEntry{Action: escrowpkg.AuditEscrowCreated, Actor: "payer", Height: uint64(i)}
		if err := mgr.AuditAppend(1, entry); err != nil {
			t.Fatalf("AuditAppend: %v", err)
		}
	}
	list := mgr.AuditList(1)
	if len(list) != escrowpkg.MaxAuditEntries {
		t.Fatalf("expected bounded list, got %d entries", len(list))
	}
	if list[0].Height != 5 {
		t.Fatalf("expected oldest entries evicted, first height %d", list[0].Height)
	}
	if mgr.AuditList(2) != nil {
		t.Fatalf("expected empty history for unknown id")
	}
}

func TestScalars(t *testing.T) {
	mgr := newManager(t)
	if mgr.Owner() != "" || mgr.DisputeOracle() != "" || mgr.Paused() || mgr.EscrowCounter() != 0 {
		t.Fatalf("expected zero-valued scalars on fresh state")
	}
	if err := mgr.SetOwner("owner"); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	if err := mgr.SetDisputeOracle("oracle"); err != nil {
		t.Fatalf("SetDisputeOracle: %v", err)
	}
	if err := mgr.SetPaused(true); err != nil {
		t.Fatalf("SetPaused: %v", err)
	}
	if err := mgr.SetEscrowCounter(17); err != nil {
		t.Fatalf("SetEscrowCounter: %v", err)
	}
	if mgr.Owner() != "owner" || mgr.DisputeOracle() != "oracle" || !mgr.Paused() || mgr.EscrowCounter() != 17 {
		t.Fatalf("scalar round trip failed")
	}
	if err := mgr.SetPaused(false); err != nil {
		t.Fatalf("SetPaused off: %v", err)
	}
	if mgr.Paused() {
		t.Fatalf("expected unpaused")
	}
}
