package record

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Memory is an in-process Store. Tokens are monotonically increasing
// counters; Scan yields a snapshot ordered by row key.
type Memory struct {
	mu      sync.RWMutex
	rows    map[string]map[string]Entity
	version uint64
	now     func() time.Time

	// Writes counts successful Insert/Replace/Delete calls. Tests use it to
	// assert that a rejected operation left the store untouched.
	Writes int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]map[string]Entity), now: time.Now}
}

func (m *Memory) nextToken() string {
	m.version++
	return strconv.FormatUint(m.version, 10)
}

func (m *Memory) Get(ctx context.Context, partition, row string) (Entity, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.rows[partition][row]
	if !ok {
		return Entity{}, fmt.Errorf("%s/%s: %w", partition, row, ErrNotFound)
	}
	return clone(e), nil
}

func (m *Memory) Scan(ctx context.Context, partition string, pred Predicate) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		m.mu.RLock()
		keys := make([]string, 0, len(m.rows[partition]))
		for k := range m.rows[partition] {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		snapshot := make([]Entity, 0, len(keys))
		for _, k := range keys {
			snapshot = append(snapshot, clone(m.rows[partition][k]))
		}
		m.mu.RUnlock()

		for _, e := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(Entity{}, fmt.Errorf("%w: %v", ErrUnavailable, err))
				return
			}
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) Insert(ctx context.Context, e Entity) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	part, ok := m.rows[e.Partition]
	if !ok {
		part = make(map[string]Entity)
		m.rows[e.Partition] = part
	}
	if _, exists := part[e.Row]; exists {
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrDuplicateKey)
	}
	e.ETag = m.nextToken()
	e.Timestamp = m.now().UTC()
	part[e.Row] = clone(e)
	m.Writes++
	return e, nil
}

func (m *Memory) Replace(ctx context.Context, e Entity, mode WriteMode) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[e.Partition][e.Row]
	if !ok {
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrNotFound)
	}
	if !mode.IsUnconditional() && cur.ETag != mode.Token() {
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrTokenMismatch)
	}
	e.ETag = m.nextToken()
	e.Timestamp = m.now().UTC()
	m.rows[e.Partition][e.Row] = clone(e)
	m.Writes++
	return e, nil
}

func (m *Memory) Delete(ctx context.Context, partition, row string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[partition][row]; !ok {
		return fmt.Errorf("%s/%s: %w", partition, row, ErrNotFound)
	}
	delete(m.rows[partition], row)
	m.Writes++
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func clone(e Entity) Entity {
	e.Data = slices.Clone(e.Data)
	return e
}
