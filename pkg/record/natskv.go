package record

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATS stores entities in a JetStream key-value bucket under the key
// "<partition>.<row>". The per-key revision is the concurrency token, so
// IfMatch writes map directly onto kv.Update.
type NATS struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// DialNATS connects to url and opens (or creates) bucket.
func DialNATS(ctx context.Context, url, bucket string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("storefront-records"))
	if err != nil {
		return nil, unavailable("connect", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, unavailable("jetstream", err)
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "storefront records",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, unavailable("bucket", err)
	}
	return &NATS{nc: nc, kv: kv}, nil
}

// NewNATS wraps an already opened bucket.
func NewNATS(kv jetstream.KeyValue) *NATS {
	return &NATS{kv: kv}
}

// Close drains the connection opened by DialNATS.
func (n *NATS) Close() {
	if n.nc != nil {
		n.nc.Close()
	}
}

func natsKey(partition, row string) string { return partition + "." + row }

func (n *NATS) entity(entry jetstream.KeyValueEntry) Entity {
	partition, row, _ := strings.Cut(entry.Key(), ".")
	return Entity{
		Partition: partition,
		Row:       row,
		ETag:      strconv.FormatUint(entry.Revision(), 10),
		Timestamp: entry.Created().UTC(),
		Data:      entry.Value(),
	}
}

func (n *NATS) Get(ctx context.Context, partition, row string) (Entity, error) {
	if err := blankKey(partition, row); err != nil {
		return Entity{}, err
	}
	entry, err := n.kv.Get(ctx, natsKey(partition, row))
	if err != nil {
		if isMissing(err) {
			return Entity{}, fmt.Errorf("%s/%s: %w", partition, row, ErrNotFound)
		}
		return Entity{}, unavailable("get", err)
	}
	return n.entity(entry), nil
}

func (n *NATS) Scan(ctx context.Context, partition string, pred Predicate) iter.Seq2[Entity, error] {
	return func(yield func(Entity, error) bool) {
		lister, err := n.kv.ListKeysFiltered(ctx, partition+".>")
		if err != nil {
			if errors.Is(err, jetstream.ErrNoKeysFound) {
				return
			}
			yield(Entity{}, unavailable("scan", err))
			return
		}
		var keys []string
		for key := range lister.Keys() {
			keys = append(keys, key)
		}
		_ = lister.Stop()
		slices.Sort(keys)

		for _, key := range keys {
			entry, err := n.kv.Get(ctx, key)
			if err != nil {
				if isMissing(err) {
					continue // deleted between list and get
				}
				yield(Entity{}, unavailable("scan", err))
				return
			}
			e := n.entity(entry)
			if pred != nil && !pred(e) {
				continue
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (n *NATS) Insert(ctx context.Context, e Entity) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	if _, err := n.kv.Create(ctx, natsKey(e.Partition, e.Row), e.Data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrDuplicateKey)
		}
		return Entity{}, unavailable("insert", err)
	}
	return n.Get(ctx, e.Partition, e.Row)
}

func (n *NATS) Replace(ctx context.Context, e Entity, mode WriteMode) (Entity, error) {
	if err := checkKeys(e.Partition, e.Row); err != nil {
		return Entity{}, err
	}
	cur, err := n.Get(ctx, e.Partition, e.Row)
	if err != nil {
		return Entity{}, err
	}

	token := cur.ETag
	if !mode.IsUnconditional() {
		token = mode.Token()
	}
	rev, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrTokenMismatch)
	}

	if mode.IsUnconditional() {
		_, err = n.kv.Put(ctx, natsKey(e.Partition, e.Row), e.Data)
	} else {
		_, err = n.kv.Update(ctx, natsKey(e.Partition, e.Row), e.Data, rev)
	}
	if err != nil {
		if isWrongRevision(err) {
			return Entity{}, fmt.Errorf("%s/%s: %w", e.Partition, e.Row, ErrTokenMismatch)
		}
		return Entity{}, unavailable("replace", err)
	}
	return n.Get(ctx, e.Partition, e.Row)
}

func (n *NATS) Delete(ctx context.Context, partition, row string) error {
	if _, err := n.Get(ctx, partition, row); err != nil {
		return err
	}
	if err := n.kv.Delete(ctx, natsKey(partition, row)); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

func (n *NATS) Ping(ctx context.Context) error {
	if n.nc != nil && !n.nc.IsConnected() {
		return unavailable("ping", nats.ErrConnectionClosed)
	}
	if _, err := n.kv.Status(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}

func isWrongRevision(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}
