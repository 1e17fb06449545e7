package escrow

import (
	"errors"
	"math/big"
	"testing"
)

func TestValidateShares(t *testing.T) {
	cases := []struct {
		name    string
		shares  []PaymentShare
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", []PaymentShare{}, true},
		{"single full", []PaymentShare{{Recipient: "a", Percentage: 100}}, false},
		{"two way", []PaymentShare{{Recipient: "a", Percentage: 70}, {Recipient: "b", Percentage: 30}}, false},
		{"sums to 50", []PaymentShare{{Recipient: "a", Percentage: 50}}, true},
		{"sums to 120", []PaymentShare{{Recipient: "a", Percentage: 60}, {Recipient: "b", Percentage: 60}}, true},
		{"blank recipient", []PaymentShare{{Recipient: " ", Percentage: 100}}, true},
		{"zero entry allowed", []PaymentShare{{Recipient: "a", Percentage: 0}, {Recipient: "b", Percentage: 100}}, false},
		{"max entries", []PaymentShare{
			{Recipient: "a", Percentage: 20}, {Recipient: "b", Percentage: 20}, {Recipient: "c", Percentage: 20},
			{Recipient: "d", Percentage: 20}, {Recipient: "e", Percentage: 20},
		}, false},
		{"too many entries", []PaymentShare{
			{Recipient: "a", Percentage: 20}, {Recipient: "b", Percentage: 20}, {Recipient: "c", Percentage: 20},
			{Recipient: "d", Percentage: 20}, {Recipient: "e", Percentage: 10}, {Recipient: "f", Percentage: 10},
		}, true},
		{"overflow guard", []PaymentShare{{Recipient: "a", Percentage: 4_000_000_000}, {Recipient: "b", Percentage: 100}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateShares(tc.shares)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPercentage) {
					t.Fatalf("expected ErrInvalidPercentage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSplitAmountFloors(t *testing.T) {
	shares := []PaymentShare{
		{Recipient: "a", Percentage: 33},
		{Recipient: "b", Percentage: 33},
		{Recipient: "c", Percentage: 34},
	}
	payouts := splitAmount(big.NewInt(100), shares)
	want := []string{"33", "33", "34"}
	for i, p := range payouts {
		if p.Amount.String() != want[i] {
			t.Fatalf("leg %d: expected %s, got %s", i, want[i], p.Amount)
		}
	}

	// 99 * 33 / 100 floors to 32; the residue is not redistributed.
	payouts = splitAmount(big.NewInt(99), shares)
	sum := big.NewInt(0)
	for _, p := range payouts {
		sum.Add(sum, p.Amount)
	}
	if sum.String() != "97" {
		t.Fatalf("expected floored sum 97, got %s", sum)
	}
}
