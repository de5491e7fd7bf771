package tableentity

import (
	"github.com/rzpsarthak13/tableentity/internal/codec"
	"github.com/rzpsarthak13/tableentity/internal/core"
)

// Entity is the flat key/value representation produced by ToEntity.
type Entity = core.Entity

// Kind is the storage kind of an entity property value.
type Kind = core.Kind

// JSONOptions controls the JSON encoding of complex fields.
type JSONOptions = codec.Options

// ConfigurationError reports a designator or converter that does not fit
// the record type.
type ConfigurationError = core.ConfigurationError

// FormatError reports key text or JSON that cannot be converted to the
// declared field type.
type FormatError = core.FormatError

var (
	// ErrConfiguration matches every ConfigurationError via errors.Is.
	ErrConfiguration = core.ErrConfiguration

	// ErrFormat matches every FormatError via errors.Is.
	ErrFormat = core.ErrFormat
)

// JSONSuffix is appended to a field name for JSON-encoded properties.
const JSONSuffix = core.JSONSuffix

// NewEntity creates an empty entity with the given keys.
func NewEntity(partitionKey, rowKey string) *Entity {
	return core.NewEntity(partitionKey, rowKey)
}

// Classify returns the storage kind a value would be written as.
func Classify(v interface{}) Kind {
	return core.Classify(v)
}

// SetDefaultJSONOptions replaces the process-wide JSON options used by calls
// that do not pass their own. nil restores the built-in default, which
// omits zero-valued fields and read-only fields. Call it during program
// initialisation only.
func SetDefaultJSONOptions(opts *JSONOptions) {
	codec.SetDefaultOptions(opts)
}

// DefaultJSONOptions returns the current process-wide JSON options.
func DefaultJSONOptions() JSONOptions {
	return codec.DefaultOptions()
}
