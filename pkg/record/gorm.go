package record

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// row is the single table backing every partition.
type row struct {
	PartKey   string    `gorm:"column:part_key;primaryKey;size:64"`
	RowKey    string    `gorm:"column:row_key;primaryKey;size:64"`
	ETag      string    `gorm:"column:etag;size:36;not null"`
	Data      string    `gorm:"column:data;type:text"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (row) TableName() string { return "records" }

func (r row) entity() Entity {
	return Entity{
		Partition: r.PartKey,
		Row:       r.RowKey,
		ETag:      r.ETag,
		Timestamp: r.UpdatedAt,
		Data:      []byte(r.Data),
	}
}

// Gorm stores entities in one SQL table keyed by (part_key, row_key).
// Tokens are random UUIDs regenerated on every write.
type Gorm struct {
	db *gorm.DB
}

// NewGorm migrates the records table and returns the store.
func NewGorm(ctx context.Context, db *gorm.DB) (*Gorm, error) {
	if err := db.WithContext(ctx).AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("record/gorm: migrate: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Get(ctx context.Context, partition, rowKey string) (Entity, error) {
	if err := blankKey(partition, rowKey); err != nil {
		return Entity{}, err
	}
	var r row
	err := g.db.WithContext(ctx).
		Where("part_key = ? AND row_key = ?", partition, rowKey).
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entity{}, fmt.Errorf("%s/%s: %w", partition, rowKey, ErrNotFound)
	}
	if err != nil {
		return Entity{}, unavailable("get", err)
	}
	return r.entity(), nil
}

// Scan streams rows through a cursor; nothing is materialised up front.
// The cursor holds a pool connection until the loop ends, so callers that
// write while iterating should Collect first.
func (g *Gorm) Scan(ctx context.Context, partition string, pred Predicate) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		tx := g.db.WithContext(ctx).Model(&row{}).
			Where("part_key = ?", partition).
			Order("row_key")
		rows, err := tx.Rows()
		if err != nil {
			yield(Entity{}, unavailable("scan", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r row
			if err := g.db.ScanRows(rows, &r); err != nil {
				yield(Entity{}, unavailable("scan", err))
				return
			}
			e := r.entity()
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entity{}, unavailable("scan", err))
		}
	}
}

func (g *Gorm) Insert(ctx context.Context, e Entity) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	r := row{
		PartKey:   e.Partition,
		RowKey:    e.Row,
		ETag:      uuid.NewString(),
		Data:      string(e.Data),
		UpdatedAt: time.Now().UTC(),
	}
	res := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&r)
	if res.Error != nil {
		return Entity{}, unavailable("insert", res.Error)
	}
	if res.RowsAffected == 0 {
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrDuplicateKey)
	}
	return r.entity(), nil
}

func (g *Gorm) Replace(ctx context.Context, e Entity, mode WriteMode) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	next := row{
		PartKey:   e.Partition,
		RowKey:    e.Row,
		ETag:      uuid.NewString(),
		Data:      string(e.Data),
		UpdatedAt: time.Now().UTC(),
	}

	q := g.db.WithContext(ctx).Model(&row{}).
		Where("part_key = ? AND row_key = ?", e.Partition, e.Row)
	if !mode.IsUnconditional() {
		q = q.Where("etag = ?", mode.Token())
	}
	res := q.Updates(map[string]any{
		"etag":       next.ETag,
		"data":       next.Data,
		"updated_at": next.UpdatedAt,
	})
	if res.Error != nil {
		return Entity{}, unavailable("replace", res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from a stale token.
		if _, err := g.Get(ctx, e.Partition, e.Row); err != nil {
			return Entity{}, err
		}
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrTokenMismatch)
	}
	return next.entity(), nil
}

func (g *Gorm) Delete(ctx context.Context, partition, rowKey string) error {
	res := g.db.WithContext(ctx).
		Where("part_key = ? AND row_key = ?", partition, rowKey).
		Delete(&row{})
	if res.Error != nil {
		return unavailable("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", partition, rowKey, ErrNotFound)
	}
	return nil
}

func (g *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return unavailable("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
