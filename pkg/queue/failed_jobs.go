package queue

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"
)

// FailedMessage is a message that exhausted its retries.
type FailedMessage struct {
	Message  Message
	Error    string
	Attempts int
	FailedAt time.Time
}

// FailureStore keeps failed messages for inspection.
type FailureStore interface {
	Record(ctx context.Context, f FailedMessage) error
	List(ctx context.Context) ([]FailedMessage, error)
}

// ── In-memory ────────────────────────────────────────────────────────────────

type MemoryFailures struct {
	mu     sync.Mutex
	failed []FailedMessage
}

func NewMemoryFailures() *MemoryFailures { return &MemoryFailures{} }

func (s *MemoryFailures) Record(_ context.Context, f FailedMessage) error {
	s.mu.Lock()
	s.failed = append(s.failed, f)
	s.mu.Unlock()
	return nil
}

func (s *MemoryFailures) List(context.Context) ([]FailedMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.failed), nil
}

// ── GORM ─────────────────────────────────────────────────────────────────────

// FailedMessageRecord is the table row for GormFailures.
type FailedMessageRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	MessageID string    `gorm:"size:36;not null;index"`
	Kind      string    `gorm:"size:64;not null;index"`
	Body      string    `gorm:"type:text;not null"`
	Error     string    `gorm:"type:text"`
	Attempts  int       `gorm:"not null;default:0"`
	FailedAt  time.Time `gorm:"not null"`
}

func (FailedMessageRecord) TableName() string { return "storefront_failed_messages" }

// GormFailures persists failed messages next to the record table.
type GormFailures struct {
	db *gorm.DB
}

// NewGormFailures migrates the failed-messages table.
func NewGormFailures(ctx context.Context, db *gorm.DB) (*GormFailures, error) {
	if err := db.WithContext(ctx).AutoMigrate(&FailedMessageRecord{}); err != nil {
		return nil, fmt.Errorf("queue: migrate failed messages: %w", err)
	}
	return &GormFailures{db: db}, nil
}

func (s *GormFailures) Record(ctx context.Context, f FailedMessage) error {
	rec := FailedMessageRecord{
		MessageID: f.Message.ID,
		Kind:      f.Message.Kind,
		Body:      f.Message.Body,
		Error:     f.Error,
		Attempts:  f.Attempts,
		FailedAt:  f.FailedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("queue: persist failed message %s: %w", f.Message.ID, err)
	}
	return nil
}

func (s *GormFailures) List(ctx context.Context) ([]FailedMessage, error) {
	var recs []FailedMessageRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("queue: list failed messages: %w", err)
	}
	out := make([]FailedMessage, len(recs))
	for i, r := range recs {
		out[i] = FailedMessage{
			Message:  Message{ID: r.MessageID, Kind: r.Kind, Body: r.Body},
			Error:    r.Error,
			Attempts: r.Attempts,
			FailedAt: r.FailedAt,
		}
	}
	return out, nil
}
