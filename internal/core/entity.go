package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entity is a flat key/value record as held by a wide-column table store.
// It carries two distinguished key fields, an optional storage-assigned
// timestamp, and a set of named scalar properties.
type Entity struct {
	// PartitionKey is the partition the entity lives in.
	PartitionKey string

	// RowKey identifies the entity within its partition.
	RowKey string

	timestamp *time.Time
	props     map[string]interface{}
	order     []string
}

// NewEntity creates an empty entity with the given keys.
func NewEntity(partitionKey, rowKey string) *Entity {
	return &Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		props:        make(map[string]interface{}),
	}
}

// Timestamp returns the last update time assigned by the storage layer,
// or nil if the entity was never persisted.
func (e *Entity) Timestamp() *time.Time {
	if e.timestamp == nil {
		return nil
	}
	ts := *e.timestamp
	return &ts
}

// SetTimestamp records the storage-assigned update time. Only wire decoders
// and storage adapters call this; the mappers never do.
func (e *Entity) SetTimestamp(ts time.Time) {
	e.timestamp = &ts
}

// Set stores a property value. Setting an existing name replaces the value
// and keeps its original position in Keys.
func (e *Entity) Set(name string, value interface{}) {
	if e.props == nil {
		e.props = make(map[string]interface{})
	}
	if _, exists := e.props[name]; !exists {
		e.order = append(e.order, name)
	}
	e.props[name] = value
}

// Get returns the raw property value and whether it is present.
func (e *Entity) Get(name string) (interface{}, bool) {
	v, ok := e.props[name]
	return v, ok
}

// Has reports whether a property with the given name is present.
func (e *Entity) Has(name string) bool {
	_, ok := e.props[name]
	return ok
}

// Remove deletes a property. Removing a missing name is a no-op.
func (e *Entity) Remove(name string) {
	if _, ok := e.props[name]; !ok {
		return
	}
	delete(e.props, name)
	for i, k := range e.order {
		if k == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Keys returns the property names in insertion order.
func (e *Entity) Keys() []string {
	keys := make([]string, len(e.order))
	copy(keys, e.order)
	return keys
}

// Len returns the number of properties.
func (e *Entity) Len() int {
	return len(e.props)
}

// Properties returns a copy of the property map.
func (e *Entity) Properties() map[string]interface{} {
	out := make(map[string]interface{}, len(e.props))
	for k, v := range e.props {
		out[k] = v
	}
	return out
}

// GetString returns a text property.
func (e *Entity) GetString(name string) (string, error) {
	v, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q holds %T, not string", name, v)
	}
	return s, nil
}

// GetBool returns a boolean property.
func (e *Entity) GetBool(name string) (bool, error) {
	v, err := e.lookup(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("property %q holds %T, not bool", name, v)
	}
	return b, nil
}

// GetBinary returns a byte sequence property.
func (e *Entity) GetBinary(name string) ([]byte, error) {
	v, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("property %q holds %T, not []byte", name, v)
	}
	return b, nil
}

// GetInt32 returns an integer property, widening smaller widths and
// narrowing 64-bit values that fit.
func (e *Entity) GetInt32(name string) (int32, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	i, err := toInt32(v)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", name, err)
	}
	return i, nil
}

// GetInt64 returns an integer property widened to 64 bits.
func (e *Entity) GetInt64(name string) (int64, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", name, err)
	}
	return i, nil
}

// GetDouble returns a floating point property. Integer values are widened.
func (e *Entity) GetDouble(name string) (float64, error) {
	v, err := e.lookup(name)
	if err != nil {
		return 0, err
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("property %q: %w", name, err)
	}
	return f, nil
}

// GetDateTime returns a date/time property. Text values in RFC 3339 form
// are parsed.
func (e *Entity) GetDateTime(name string) (time.Time, error) {
	v, err := e.lookup(name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := toTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("property %q: %w", name, err)
	}
	return t, nil
}

// GetGUID returns a unique identifier property. Text and 16-byte values
// are parsed.
func (e *Entity) GetGUID(name string) (uuid.UUID, error) {
	v, err := e.lookup(name)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := toGUID(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("property %q: %w", name, err)
	}
	return id, nil
}

func (e *Entity) lookup(name string) (interface{}, error) {
	v, ok := e.props[name]
	if !ok {
		return nil, fmt.Errorf("property %q not found", name)
	}
	if v == nil {
		return nil, fmt.Errorf("property %q is null", name)
	}
	return v, nil
}
