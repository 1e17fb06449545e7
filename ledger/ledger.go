package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketBalances = []byte("balances")
	bucketJournal  = []byte("journal")

	// ErrInsufficientFunds is returned when the source account cannot cover
	// the transfer. The transaction rolls back; no balance changes.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

// BoltLedger is a value-transfer backend over a bolt database. Every
// transfer runs inside a single read-write transaction, so it either fully
// succeeds or fully fails; partial movement is impossible. Each applied
// transfer also leaves a journal row.
type BoltLedger struct {
	db *bolt.DB
}

// Open creates or opens the ledger database at path.
func Open(path string) (*BoltLedger, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketBalances, bucketJournal} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltLedger{db: db}, nil
}

// Close releases the underlying database.
func (l *BoltLedger) Close() error {
	return l.db.Close()
}

// Transfer moves amount from one holder to another atomically.
func (l *BoltLedger) Transfer(amount *big.Int, from, to string) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("ledger: transfer amount must be positive")
	}
	if from == "" || to == "" {
		return fmt.Errorf("ledger: transfer requires two holders")
	}
	if from == to {
		return nil
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		balances := tx.Bucket(bucketBalances)
		fromBal := readBalance(balances, from)
		if fromBal.Cmp(amount) < 0 {
			return ErrInsufficientFunds
		}
		toBal := readBalance(balances, to)
		if err := writeBalance(balances, from, new(big.Int).Sub(fromBal, amount)); err != nil {
			return err
		}
		if err := writeBalance(balances, to, new(big.Int).Add(toBal, amount)); err != nil {
			return err
		}
		return appendJournal(tx.Bucket(bucketJournal), from, to, amount)
	})
}

// Mint credits freshly issued value to an account. Intended for funding
// payers in tests and local deployments; production holders are funded by
// an upstream system.
func (l *BoltLedger) Mint(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("ledger: mint amount must be positive")
	}
	if account == "" {
		return fmt.Errorf("ledger: mint requires an account")
	}
	return l.db.Update(func(tx *bolt.Tx) error {
		balances := tx.Bucket(bucketBalances)
		current := readBalance(balances, account)
		return writeBalance(balances, account, new(big.Int).Add(current, amount))
	})
}

// Balance returns the current holding of an account; unknown accounts hold
// zero.
func (l *BoltLedger) Balance(account string) (*big.Int, error) {
	balance := big.NewInt(0)
	err := l.db.View(func(tx *bolt.Tx) error {
		balance = readBalance(tx.Bucket(bucketBalances), account)
		return nil
	})
	return balance, err
}

func readBalance(bucket *bolt.Bucket, account string) *big.Int {
	data := bucket.Get([]byte(account))
	if len(data) == 0 {
		return big.NewInt(0)
	}
	value, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return big.NewInt(0)
	}
	return value
}

func writeBalance(bucket *bolt.Bucket, account string, value *big.Int) error {
	return bucket.Put([]byte(account), []byte(value.String()))
}
