package kvstore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/rzpsarthak13/tableentity/internal/registry"
)

// OData metadata levels, as accepted by the Azure Table service.
const (
	MetadataNone    = "none"
	MetadataMinimal = "minimal"
	MetadataFull    = "full"
)

// Edm type names used in "<Name>@odata.type" annotations.
const (
	EdmBinary   = "Edm.Binary"
	EdmBoolean  = "Edm.Boolean"
	EdmDateTime = "Edm.DateTime"
	EdmDouble   = "Edm.Double"
	EdmGuid     = "Edm.Guid"
	EdmInt32    = "Edm.Int32"
	EdmInt64    = "Edm.Int64"
	EdmString   = "Edm.String"
)

const (
	odataPartitionKey = "PartitionKey"
	odataRowKey       = "RowKey"
	odataTimestamp    = "Timestamp"
	odataTypeSuffix   = "@odata.type"
)

// ODataFormat renders entities as Azure Table service JSON payloads.
type ODataFormat struct {
	metadata string
	indent   bool
}

// NewODataFormat creates an OData format. An empty metadata level means
// minimal metadata.
func NewODataFormat(metadata string, indent bool) (*ODataFormat, error) {
	if metadata == "" {
		metadata = MetadataMinimal
	}
	switch metadata {
	case MetadataNone, MetadataMinimal, MetadataFull:
	default:
		return nil, fmt.Errorf("unknown OData metadata level: %s", metadata)
	}
	return &ODataFormat{metadata: metadata, indent: indent}, nil
}

// Type returns the format identifier.
func (f *ODataFormat) Type() string {
	return "odata"
}

// Marshal renders e as a JSON object. Properties keep their entity order
// and are annotated with their Edm type as the metadata level requires.
func (f *ODataFormat) Marshal(e *core.Entity) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("entity cannot be nil")
	}
	log.Printf("[ODATA] Marshal entity PartitionKey=%s RowKey=%s (%d properties)", e.PartitionKey, e.RowKey, e.Len())

	w := &objectWriter{}
	w.field(odataPartitionKey, e.PartitionKey)
	w.field(odataRowKey, e.RowKey)
	if ts := e.Timestamp(); ts != nil {
		if f.metadata == MetadataFull {
			w.field(odataTimestamp+odataTypeSuffix, EdmDateTime)
		}
		w.field(odataTimestamp, formatDateTime(*ts))
	}

	for _, name := range e.Keys() {
		// Timestamp is assigned by the service and never written.
		if name == odataTimestamp {
			continue
		}
		if err := checkPropertyName(name, odataPartitionKey, odataRowKey); err != nil {
			return nil, err
		}
		raw, _ := e.Get(name)
		value, edm, err := f.wireValue(name, raw)
		if err != nil {
			return nil, err
		}
		if edm != "" {
			w.field(name+odataTypeSuffix, edm)
		}
		w.field(name, value)
	}

	out, err := w.close()
	if err != nil {
		return nil, err
	}
	if !f.indent {
		return out, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent payload: %w", err)
	}
	return buf.Bytes(), nil
}

// wireValue returns the JSON value for a property and the annotation to
// emit with it, if any.
func (f *ODataFormat) wireValue(name string, raw interface{}) (interface{}, string, error) {
	v, kind, err := storageValue(name, raw)
	if err != nil {
		return nil, "", err
	}

	var value interface{}
	var edm string
	required := true
	switch kind {
	case core.KindNull:
		return nil, "", nil
	case core.KindBool:
		value, edm, required = v, EdmBoolean, false
	case core.KindInt32:
		value, edm, required = v, EdmInt32, false
	case core.KindInt64:
		value, edm = strconv.FormatInt(v.(int64), 10), EdmInt64
	case core.KindDouble:
		value, edm = formatDouble(v.(float64)), EdmDouble
	case core.KindString:
		value, edm, required = v, EdmString, false
	case core.KindBinary:
		value, edm = base64.StdEncoding.EncodeToString(v.([]byte)), EdmBinary
	case core.KindDateTime:
		value, edm = formatDateTime(v.(time.Time)), EdmDateTime
	case core.KindGUID:
		value, edm = v.(uuid.UUID).String(), EdmGuid
	}

	switch {
	case f.metadata == MetadataNone:
		edm = ""
	case f.metadata == MetadataMinimal && !required:
		edm = ""
	}
	return value, edm, nil
}

// Unmarshal parses an OData entity payload. Annotations may precede or
// follow the property they describe; service metadata entries are ignored.
func (f *ODataFormat) Unmarshal(data []byte) (*core.Entity, error) {
	pairs, err := readObject(data)
	if err != nil {
		return nil, err
	}

	annotations := make(map[string]string)
	for _, p := range pairs {
		if name, ok := strings.CutSuffix(p.name, odataTypeSuffix); ok && name != "" {
			var edm string
			if err := json.Unmarshal(p.value, &edm); err != nil {
				return nil, core.NewFormatError(name, string(p.value), fmt.Errorf("type annotation must be a string"))
			}
			annotations[name] = edm
		}
	}

	e := core.NewEntity("", "")
	var sawPartition, sawRow bool
	for _, p := range pairs {
		switch {
		case strings.Contains(p.name, "@"), strings.HasPrefix(p.name, "odata."):
			continue
		case p.name == odataPartitionKey:
			if err := json.Unmarshal(p.value, &e.PartitionKey); err != nil {
				return nil, core.NewFormatError(p.name, string(p.value), err)
			}
			sawPartition = true
		case p.name == odataRowKey:
			if err := json.Unmarshal(p.value, &e.RowKey); err != nil {
				return nil, core.NewFormatError(p.name, string(p.value), err)
			}
			sawRow = true
		case p.name == odataTimestamp:
			var text string
			if err := json.Unmarshal(p.value, &text); err != nil {
				return nil, core.NewFormatError(p.name, string(p.value), err)
			}
			ts, err := time.Parse(time.RFC3339Nano, text)
			if err != nil {
				return nil, core.NewFormatError(p.name, text, err)
			}
			e.SetTimestamp(ts)
		default:
			value, err := parseEdmValue(p.value, annotations[p.name])
			if err != nil {
				return nil, core.NewFormatError(p.name, string(p.value), err)
			}
			e.Set(p.name, value)
		}
	}
	if !sawPartition || !sawRow {
		return nil, fmt.Errorf("payload is missing %s or %s", odataPartitionKey, odataRowKey)
	}

	log.Printf("[ODATA] Unmarshalled entity PartitionKey=%s RowKey=%s (%d properties)", e.PartitionKey, e.RowKey, e.Len())
	return e, nil
}

// parseEdmValue decodes one property value. Without an annotation, numbers
// are Int32 when integral and in range, otherwise Double.
func parseEdmValue(raw json.RawMessage, edm string) (interface{}, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	switch edm {
	case "":
		return inferValue(raw)
	case EdmString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case EdmBoolean:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case EdmInt32:
		var n int32
		err := json.Unmarshal(raw, &n)
		return n, err
	case EdmInt64:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			var n int64
			if err := json.Unmarshal(raw, &n); err != nil {
				return nil, err
			}
			return n, nil
		}
		return strconv.ParseInt(s, 10, 64)
	case EdmDouble:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return parseDouble(s)
		}
		var n float64
		err := json.Unmarshal(raw, &n)
		return n, err
	case EdmDateTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return time.Parse(time.RFC3339Nano, s)
	case EdmGuid:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return uuid.Parse(s)
	case EdmBinary:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(s)
	}
	return nil, fmt.Errorf("unsupported type annotation %s", edm)
}

func inferValue(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case string, bool:
		return x, nil
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 32); err == nil {
			return int32(n), nil
		}
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return n, nil
		}
		return x.Float64()
	}
	return nil, fmt.Errorf("unsupported JSON value %s", raw)
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDouble(f float64) interface{} {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

func parseDouble(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, 64)
}

type pair struct {
	name  string
	value json.RawMessage
}

// readObject reads a JSON object keeping member order.
func readObject(data []byte) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("payload must be a JSON object")
	}

	var pairs []pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse payload: %w", err)
		}
		name := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to parse value of %s: %w", name, err)
		}
		pairs = append(pairs, pair{name: name, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return pairs, nil
}

// objectWriter writes a JSON object with members in insertion order.
type objectWriter struct {
	buf bytes.Buffer
	err error
	n   int
}

func (w *objectWriter) field(name string, value interface{}) {
	if w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	w.n++

	key, err := json.Marshal(name)
	if err != nil {
		w.err = err
		return
	}
	val, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("failed to encode %s: %w", name, err)
		return
	}
	w.buf.Write(key)
	w.buf.WriteByte(':')
	w.buf.Write(val)
}

func (w *objectWriter) close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// ODataFormatFactory creates OData formats.
type ODataFormatFactory struct{}

// Create creates an OData format from config.
func (f *ODataFormatFactory) Create(config FormatConfig) (EntityFormat, error) {
	format, err := NewODataFormat(config.Metadata, config.Indent)
	if err != nil {
		return nil, err
	}
	return format, nil
}

// Type returns the type identifier for this factory.
func (f *ODataFormatFactory) Type() string {
	return "odata"
}

// Validate validates the OData-specific configuration.
func (f *ODataFormatFactory) Validate(config FormatConfig) error {
	if config.Type != "odata" {
		return fmt.Errorf("invalid type for OData factory: %s", config.Type)
	}
	_, err := NewODataFormat(config.Metadata, config.Indent)
	return err
}

// ODataConfigValidator implements the ConfigValidator interface for OData.
type ODataConfigValidator struct{}

// Type returns the type identifier for this validator.
func (v *ODataConfigValidator) Type() string {
	return "odata"
}

// Validate validates the OData-specific configuration in the internal config.
func (v *ODataConfigValidator) Validate(config *registry.InternalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.Format.Type != "odata" {
		return fmt.Errorf("invalid type for OData validator: %s", config.Format.Type)
	}
	switch config.Format.ODataConfig.Metadata {
	case "", MetadataNone, MetadataMinimal, MetadataFull:
		return nil
	}
	return fmt.Errorf("odata_config.metadata must be 'none', 'minimal', or 'full', got: %s", config.Format.ODataConfig.Metadata)
}

func init() {
	RegisterFactory(&ODataFormatFactory{})
	registry.RegisterValidator(&ODataConfigValidator{})
}
