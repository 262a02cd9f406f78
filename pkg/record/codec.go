package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// Meta is embedded by models to carry the store-managed fields.
type Meta struct {
	ETag      string    `json:"-"`
	Timestamp time.Time `json:"-"`
}

// Stamp copies the store-managed fields of e into m.
func (m *Meta) Stamp(e Entity) {
	m.ETag = e.ETag
	m.Timestamp = e.Timestamp
}

// Encode marshals v as the attribute document of (partition, row).
func Encode(partition, row string, v any) (Entity, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Entity{}, fmt.Errorf("record: encode %s/%s: %w", partition, row, err)
	}
	return Entity{Partition: partition, Row: row, Data: data}, nil
}

// Decode unmarshals the attribute document of e into v.
func Decode(e Entity, v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("record: decode %s/%s: %w", e.Partition, e.Row, err)
	}
	return nil
}
