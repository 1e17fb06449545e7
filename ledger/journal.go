package ledger

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// JournalEntry records one applied transfer. Rows are written inside the
// same transaction as the balance movement, so the journal never disagrees
// with the balances.
type JournalEntry struct {
	ID     string    `json:"id"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Amount string    `json:"amount"`
	At     time.Time `json:"at"`
}

func appendJournal(bucket *bolt.Bucket, from, to string, amount *big.Int) error {
	entry := JournalEntry{
		ID:     uuid.NewString(),
		From:   from,
		To:     to,
		Amount: amount.String(),
		At:     time.Now().UTC(),
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(entry.ID), encoded)
}

// Journal returns every applied transfer. Ordering follows the bolt key
// order of the uuid identifiers, not application time; callers that need
// chronology sort on At.
func (l *BoltLedger) Journal() ([]JournalEntry, error) {
	var entries []JournalEntry
	err := l.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketJournal).ForEach(func(_, value []byte) error {
			var entry JournalEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
