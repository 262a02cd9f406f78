// Package record is the entity store consumed by the ledger and services.
//
// Entities are addressed by (partition, row) and carry an opaque concurrency
// token. Writes say explicitly whether the token must match:
//
//	store.Replace(ctx, e, record.IfMatch(e.ETag))   // conflict-checked
//	store.Replace(ctx, e, record.Unconditional())   // last writer wins
//
// Three backends are provided: an in-process map (NewMemory), a SQL table via
// gorm (NewGorm) and a NATS JetStream key-value bucket (NewNATS).
package record

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"
)

var (
	// ErrNotFound is returned when no entity exists at (partition, row).
	ErrNotFound = errors.New("record: entity not found")

	// ErrDuplicateKey is returned by Insert when the row already exists.
	ErrDuplicateKey = errors.New("record: duplicate key")

	// ErrTokenMismatch is returned by an IfMatch write whose token is stale.
	ErrTokenMismatch = errors.New("record: concurrency token mismatch")

	// ErrUnavailable wraps transport or backend failures.
	ErrUnavailable = errors.New("record: store unavailable")
)

// Entity is one stored row. Data holds the JSON-encoded attributes.
type Entity struct {
	Partition string
	Row       string
	ETag      string
	Timestamp time.Time
	Data      []byte
}

// Predicate filters entities during a Scan. A nil predicate matches all.
type Predicate func(Entity) bool

// WriteMode selects how Replace treats the concurrency token.
type WriteMode struct {
	token         string
	unconditional bool
}

// IfMatch requires the stored token to equal token.
func IfMatch(token string) WriteMode { return WriteMode{token: token} }

// Unconditional overwrites regardless of the stored token.
func Unconditional() WriteMode { return WriteMode{unconditional: true} }

// IsUnconditional reports whether the token check is bypassed.
func (m WriteMode) IsUnconditional() bool { return m.unconditional }

// Token returns the expected token for IfMatch writes.
func (m WriteMode) Token() string { return m.token }

func (m WriteMode) String() string {
	if m.unconditional {
		return "unconditional"
	}
	return "if-match"
}

// Store is the narrow contract every backend implements.
type Store interface {
	Get(ctx context.Context, partition, row string) (Entity, error)
	Scan(ctx context.Context, partition string, pred Predicate) iter.Seq2[Entity, error]
	Insert(ctx context.Context, e Entity) (Entity, error)
	Replace(ctx context.Context, e Entity, mode WriteMode) (Entity, error)
	Delete(ctx context.Context, partition, row string) error
	Ping(ctx context.Context) error
}

// Collect drains a Scan into a slice, stopping at the first error.
func Collect(seq iter.Seq2[Entity, error]) ([]Entity, error) {
	var out []Entity
	for e, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// blankKey reports a lookup that can never match a stored entity.
func blankKey(partition, row string) error {
	if partition == "" || row == "" {
		return fmt.Errorf("%s/%s: %w", partition, row, ErrNotFound)
	}
	return nil
}

func checkKeys(partition, row string) error {
	if partition == "" || row == "" {
		return errors.New("record: partition and row are required")
	}
	return nil
}
