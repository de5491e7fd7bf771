package codec

import "sync"

// Options controls how complex field values are rendered as JSON.
type Options struct {
	// OmitDefault drops struct fields holding their type's zero value.
	OmitDefault bool `yaml:"omit_default" json:"omit_default"`

	// OmitNull drops struct fields holding a nil pointer, interface, map or
	// slice. Implied by OmitDefault.
	OmitNull bool `yaml:"omit_null" json:"omit_null"`

	// IgnoreReadOnly drops struct fields tagged `table:",readonly"`.
	IgnoreReadOnly bool `yaml:"ignore_read_only" json:"ignore_read_only"`

	// DisallowUnknownFields makes decoding fail on object keys that match no
	// field of the target type.
	DisallowUnknownFields bool `yaml:"disallow_unknown_fields" json:"disallow_unknown_fields"`
}

// BuiltinDefaults returns the options in effect before any call to
// SetDefaultOptions, and after SetDefaultOptions(nil).
func BuiltinDefaults() Options {
	return Options{
		OmitDefault:    true,
		IgnoreReadOnly: true,
	}
}

var (
	defaultMu      sync.RWMutex
	defaultOptions = BuiltinDefaults()
)

// SetDefaultOptions replaces the process-wide options used when a call does
// not supply its own. nil restores BuiltinDefaults. Intended for program
// initialisation; calls already in flight may observe either value.
func SetDefaultOptions(opts *Options) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if opts == nil {
		defaultOptions = BuiltinDefaults()
		return
	}
	defaultOptions = *opts
}

// DefaultOptions returns a copy of the current process-wide options.
func DefaultOptions() Options {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultOptions
}

// Resolve returns a codec for opts, or for the process-wide default when
// opts is nil. The default is read at call time.
func Resolve(opts *Options) *JSONCodec {
	if opts == nil {
		return New(DefaultOptions())
	}
	return New(*opts)
}
