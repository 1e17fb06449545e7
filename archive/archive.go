package archive

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fixpay/core/events"
	"fixpay/core/types"
)

// ActionRecord is one archived escrow event. The in-core audit log is
// FIFO-bounded, so this table is the supported home for full history.
type ActionRecord struct {
	ID         uint      `gorm:"primaryKey"`
	EscrowID   uint64    `gorm:"index"`
	EventType  string    `gorm:"size:64;index"`
	Payer      string    `gorm:"size:128"`
	Payee      string    `gorm:"size:128"`
	Amount     string    `gorm:"size:80"`
	Status     string    `gorm:"size:32"`
	Attributes string    `gorm:"type:text"`
	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// Store mirrors accepted escrow events into a sqlite table. It satisfies
// events.Emitter, so it plugs straight into the engine; emit failures are
// swallowed because archiving must never veto a settlement that already
// happened.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the archive database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ActionRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Emit implements events.Emitter.
func (s *Store) Emit(evt events.Event) {
	payload, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	event := payload.Event()
	if event == nil {
		return
	}
	record := ActionRecord{
		EventType:  event.Type,
		Payer:      event.Attributes["payer"],
		Payee:      event.Attributes["payee"],
		Amount:     event.Attributes["amount"],
		Status:     event.Attributes["status"],
		Attributes: flatten(event.Attributes),
	}
	if raw, ok := event.Attributes["id"]; ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			record.EscrowID = id
		}
	}
	s.db.Create(&record)
}

// History returns every archived action for an escrow in insertion order.
func (s *Store) History(escrowID uint64) ([]ActionRecord, error) {
	var records []ActionRecord
	err := s.db.Where("escrow_id = ?", escrowID).Order("id asc").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func flatten(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// Count reports the total number of archived actions.
func (s *Store) Count() (int64, error) {
	var total int64
	err := s.db.Model(&ActionRecord{}).Count(&total).Error
	return total, err
}
