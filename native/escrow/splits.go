package escrow

import (
	"math/big"
	"strings"
)

var percentBase = big.NewInt(100)

// ValidateShares checks a payment share table against the creation rules: a
// present table must be non-empty, carry at most MaxPaymentShares entries,
// name every recipient, and sum to exactly 100.
func ValidateShares(shares []PaymentShare) error {
	if len(shares) == 0 || len(shares) > MaxPaymentShares {
		return ErrInvalidPercentage
	}
	var sum uint64
	for _, share := range shares {
		if strings.TrimSpace(share.Recipient) == "" {
			return ErrInvalidPercentage
		}
		sum += uint64(share.Percentage)
		if sum > 100 {
			return ErrInvalidPercentage
		}
	}
	if sum != 100 {
		return ErrInvalidPercentage
	}
	return nil
}

// payout is one computed leg of a disbursement.
type payout struct {
	Recipient string
	Amount    *big.Int
}

// splitAmount computes each recipient's cut as floor(amount*pct/100).
// Integer division may leave a small remainder unassigned; that residue
// stays with the custodial vault rather than being redistributed.
func splitAmount(amount *big.Int, shares []PaymentShare) []payout {
	payouts := make([]payout, 0, len(shares))
	for _, share := range shares {
		cut := new(big.Int).Mul(amount, new(big.Int).SetUint64(uint64(share.Percentage)))
		cut.Div(cut, percentBase)
		payouts = append(payouts, payout{Recipient: share.Recipient, Amount: cut})
	}
	return payouts
}

// clonePaymentShares copies a share table so stored state never aliases
// caller slices.
func clonePaymentShares(shares []PaymentShare) []PaymentShare {
	if shares == nil {
		return nil
	}
	return append([]PaymentShare(nil), shares...)
}
