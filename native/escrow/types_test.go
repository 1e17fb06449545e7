package escrow

import (
	"math/big"
	"strings"
	"testing"
)

func validEscrow() *Escrow {
	return &Escrow{
		ID:            7,
		RequestID:     "req-7",
		Payer:         "payer-7",
		Payee:         "payee-7",
		Amount:        big.NewInt(250),
		CreateHeight:  10,
		TimeoutHeight: 20,
		Metadata:      "windshield replacement",
	}
}

func TestSanitizeEscrow(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Escrow)
		wantErr bool
	}{
		{"valid", func(*Escrow) {}, false},
		{"missing payer", func(e *Escrow) { e.Payer = " " }, true},
		{"missing payee", func(e *Escrow) { e.Payee = "" }, true},
		{"nil amount", func(e *Escrow) { e.Amount = nil }, true},
		{"zero amount", func(e *Escrow) { e.Amount = big.NewInt(0) }, true},
		{"oversized metadata", func(e *Escrow) { e.Metadata = strings.Repeat("m", MaxMetadataLen+1) }, true},
		{"inverted window", func(e *Escrow) { e.TimeoutHeight = e.CreateHeight - 1 }, true},
		{"both terminal flags", func(e *Escrow) { e.Released = true; e.Refunded = true }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			esc := validEscrow()
			tc.mutate(esc)
			_, err := SanitizeEscrow(esc)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCloneIsolatesAmount(t *testing.T) {
	esc := validEscrow()
	clone := esc.Clone()
	clone.Amount.SetInt64(1)
	clone.Released = true
	if esc.Amount.String() != "250" {
		t.Fatalf("clone aliases amount: %s", esc.Amount)
	}
	if esc.Released {
		t.Fatalf("clone aliases flags")
	}
}

func TestStatusLabels(t *testing.T) {
	esc := validEscrow()
	if esc.Status() != "active" {
		t.Fatalf("expected active, got %s", esc.Status())
	}
	esc.Disputed = true
	if esc.Status() != "disputed" {
		t.Fatalf("expected disputed, got %s", esc.Status())
	}
	esc.Disputed = false
	esc.Released = true
	if esc.Status() != "released" || !esc.Terminal() {
		t.Fatalf("expected released terminal state")
	}
}

func TestBoundAuditLogEvictsOldest(t *testing.T) {
	entries := make([]AuditEntry, 0, MaxAuditEntries+9)
	for i := 0; i < MaxAuditEntries+9; i++ {
		entries = append(entries, AuditEntry{Action: AuditEscrowCreated, Height: uint64(i)})
	}
	bounded := BoundAuditLog(entries)
	if len(bounded) != MaxAuditEntries {
		t.Fatalf("expected %d entries, got %d", MaxAuditEntries, len(bounded))
	}
	if bounded[0].Height != 9 {
		t.Fatalf("expected oldest entries evicted, first height %d", bounded[0].Height)
	}
	if bounded[len(bounded)-1].Height != uint64(MaxAuditEntries+8) {
		t.Fatalf("expected newest entry retained")
	}
}
