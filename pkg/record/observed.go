package record

import (
	"context"
	"iter"
	"time"
)

// Observer receives the outcome of every store call.
type Observer func(op string, err error, d time.Duration)

type observed struct {
	next    Store
	observe Observer
}

// Observe decorates s so each call is reported to fn.
func Observe(s Store, fn Observer) Store {
	return &observed{next: s, observe: fn}
}

func (o *observed) Get(ctx context.Context, partition, row string) (Entity, error) {
	start := time.Now()
	e, err := o.next.Get(ctx, partition, row)
	o.observe("get", err, time.Since(start))
	return e, err
}

func (o *observed) Scan(ctx context.Context, partition string, pred Predicate) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		start := time.Now()
		var scanErr error
		defer func() { o.observe("scan", scanErr, time.Since(start)) }()
		for e, err := range o.next.Scan(ctx, partition, pred) {
			if err != nil {
				scanErr = err
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

func (o *observed) Insert(ctx context.Context, e Entity) (Entity, error) {
	start := time.Now()
	out, err := o.next.Insert(ctx, e)
	o.observe("insert", err, time.Since(start))
	return out, err
}

func (o *observed) Replace(ctx context.Context, e Entity, mode WriteMode) (Entity, error) {
	start := time.Now()
	out, err := o.next.Replace(ctx, e, mode)
	o.observe("replace", err, time.Since(start))
	return out, err
}

func (o *observed) Delete(ctx context.Context, partition, row string) error {
	start := time.Now()
	err := o.next.Delete(ctx, partition, row)
	o.observe("delete", err, time.Since(start))
	return err
}

func (o *observed) Ping(ctx context.Context) error {
	start := time.Now()
	err := o.next.Ping(ctx)
	o.observe("ping", err, time.Since(start))
	return err
}
