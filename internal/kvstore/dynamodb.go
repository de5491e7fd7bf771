package kvstore

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/rzpsarthak13/tableentity/internal/registry"
)

// Default DynamoDB attribute names for the entity keys and timestamp.
const (
	DefaultPartitionKeyAttr = "PartitionKey"
	DefaultRowKeyAttr       = "RowKey"
	DefaultTimestampAttr    = "Timestamp"
)

// typeSuffix marks the attribute carrying the entity kind of a property
// that DynamoDB cannot tell apart from another kind on its own.
const typeSuffix = "@type"

// DynamoDBFormat maps entities to DynamoDB items.
//
// Int32, bool, string, binary and null properties map onto the matching
// DynamoDB types. Int64 and Double are stored as numbers and DateTime and
// GUID as strings, each with a "<Name>@type" attribute naming the kind.
type DynamoDBFormat struct {
	partitionKeyAttr string
	rowKeyAttr       string
	timestampAttr    string
	tableName        string
	indent           bool
}

// NewDynamoDBFormat creates a DynamoDB format. Empty attribute names take
// their defaults.
func NewDynamoDBFormat(config FormatConfig) (*DynamoDBFormat, error) {
	f := &DynamoDBFormat{
		partitionKeyAttr: orDefault(config.PartitionKeyAttr, DefaultPartitionKeyAttr),
		rowKeyAttr:       orDefault(config.RowKeyAttr, DefaultRowKeyAttr),
		timestampAttr:    orDefault(config.TimestampAttr, DefaultTimestampAttr),
		tableName:        config.TableName,
		indent:           config.Indent,
	}
	if err := validateAttrNames(f.partitionKeyAttr, f.rowKeyAttr, f.timestampAttr); err != nil {
		return nil, err
	}
	return f, nil
}

// Type returns the format identifier.
func (f *DynamoDBFormat) Type() string {
	return "dynamodb"
}

// ToItem converts e into a DynamoDB item.
func (f *DynamoDBFormat) ToItem(e *core.Entity) (map[string]types.AttributeValue, error) {
	if e == nil {
		return nil, fmt.Errorf("entity cannot be nil")
	}

	item := make(map[string]types.AttributeValue, e.Len()+3)
	item[f.partitionKeyAttr] = &types.AttributeValueMemberS{Value: e.PartitionKey}
	item[f.rowKeyAttr] = &types.AttributeValueMemberS{Value: e.RowKey}
	if ts := e.Timestamp(); ts != nil {
		item[f.timestampAttr] = &types.AttributeValueMemberS{Value: formatDateTime(*ts)}
	}

	for _, name := range e.Keys() {
		// The timestamp attribute belongs to the store.
		if name == f.timestampAttr {
			continue
		}
		if err := checkPropertyName(name, f.partitionKeyAttr, f.rowKeyAttr); err != nil {
			return nil, err
		}
		raw, _ := e.Get(name)
		v, kind, err := storageValue(name, raw)
		if err != nil {
			return nil, err
		}

		av, err := f.attributeValue(kind, v)
		if err != nil {
			return nil, core.NewFormatError(name, "", err)
		}
		item[name] = av

		switch kind {
		case core.KindInt64, core.KindDouble, core.KindDateTime, core.KindGUID:
			item[name+typeSuffix] = &types.AttributeValueMemberS{Value: kind.String()}
		}
	}

	log.Printf("[DYNAMODB] Converted entity PartitionKey=%s RowKey=%s to item (%d attributes)", e.PartitionKey, e.RowKey, len(item))
	return item, nil
}

func (f *DynamoDBFormat) attributeValue(kind core.Kind, v interface{}) (types.AttributeValue, error) {
	switch kind {
	case core.KindNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case core.KindDouble:
		if x := v.(float64); math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("DynamoDB numbers cannot hold %v", x)
		}
	case core.KindString:
		return &types.AttributeValueMemberS{Value: v.(string)}, nil
	case core.KindBinary:
		return &types.AttributeValueMemberB{Value: v.([]byte)}, nil
	case core.KindDateTime:
		return &types.AttributeValueMemberS{Value: formatDateTime(v.(time.Time))}, nil
	case core.KindGUID:
		return &types.AttributeValueMemberS{Value: v.(uuid.UUID).String()}, nil
	}
	return attributevalue.Marshal(v)
}

// FromItem converts a DynamoDB item into an entity. Properties are added in
// attribute name order since items carry no ordering.
func (f *DynamoDBFormat) FromItem(item map[string]types.AttributeValue) (*core.Entity, error) {
	pk, err := f.keyAttr(item, f.partitionKeyAttr)
	if err != nil {
		return nil, err
	}
	rk, err := f.keyAttr(item, f.rowKeyAttr)
	if err != nil {
		return nil, err
	}

	e := core.NewEntity(pk, rk)
	if av, ok := item[f.timestampAttr]; ok {
		var text string
		if err := attributevalue.Unmarshal(av, &text); err != nil {
			return nil, core.NewFormatError(f.timestampAttr, "", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, core.NewFormatError(f.timestampAttr, text, err)
		}
		e.SetTimestamp(ts)
	}

	names := make([]string, 0, len(item))
	for name := range item {
		switch {
		case name == f.partitionKeyAttr, name == f.rowKeyAttr, name == f.timestampAttr:
		case strings.HasSuffix(name, typeSuffix):
		default:
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		kind, err := annotatedKind(item, name)
		if err != nil {
			return nil, err
		}
		value, err := propertyValue(item[name], kind)
		if err != nil {
			return nil, core.NewFormatError(name, "", err)
		}
		e.Set(name, value)
	}
	return e, nil
}

func (f *DynamoDBFormat) keyAttr(item map[string]types.AttributeValue, name string) (string, error) {
	av, ok := item[name]
	if !ok {
		return "", fmt.Errorf("item is missing key attribute %s", name)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", core.NewFormatError(name, "", fmt.Errorf("key attribute must be a string, got %T", av))
	}
	return s.Value, nil
}

// annotatedKind returns the kind recorded for name, or KindNull when the
// item carries no annotation.
func annotatedKind(item map[string]types.AttributeValue, name string) (core.Kind, error) {
	av, ok := item[name+typeSuffix]
	if !ok {
		return core.KindNull, nil
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return 0, core.NewFormatError(name+typeSuffix, "", fmt.Errorf("type annotation must be a string"))
	}
	for _, k := range []core.Kind{core.KindInt64, core.KindDouble, core.KindDateTime, core.KindGUID} {
		if s.Value == k.String() {
			return k, nil
		}
	}
	return 0, core.NewFormatError(name+typeSuffix, s.Value, fmt.Errorf("unknown kind"))
}

// propertyValue decodes one attribute. annotated is KindNull for attributes
// without an annotation, whose kind follows from the attribute type alone.
func propertyValue(av types.AttributeValue, annotated core.Kind) (interface{}, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberBOOL:
		return v.Value, nil
	case *types.AttributeValueMemberB:
		return v.Value, nil
	case *types.AttributeValueMemberS:
		switch annotated {
		case core.KindDateTime:
			return time.Parse(time.RFC3339Nano, v.Value)
		case core.KindGUID:
			return uuid.Parse(v.Value)
		case core.KindNull:
			return v.Value, nil
		}
	case *types.AttributeValueMemberN:
		switch annotated {
		case core.KindInt64:
			var n int64
			err := attributevalue.Unmarshal(v, &n)
			return n, err
		case core.KindDouble:
			var n float64
			err := attributevalue.Unmarshal(v, &n)
			return n, err
		case core.KindNull:
			if n, err := strconv.ParseInt(v.Value, 10, 32); err == nil {
				return int32(n), nil
			}
			if n, err := strconv.ParseInt(v.Value, 10, 64); err == nil {
				return n, nil
			}
			var n float64
			err := attributevalue.Unmarshal(v, &n)
			return n, err
		}
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", av)
	}
	return nil, fmt.Errorf("attribute type %T does not hold kind %s", av, annotated)
}

// Marshal renders e as an item in DynamoDB JSON.
func (f *DynamoDBFormat) Marshal(e *core.Entity) ([]byte, error) {
	item, err := f.ToItem(e)
	if err != nil {
		return nil, err
	}
	return MarshalItemJSON(item, f.indent)
}

// Unmarshal parses an item in DynamoDB JSON into an entity.
func (f *DynamoDBFormat) Unmarshal(data []byte) (*core.Entity, error) {
	item, err := UnmarshalItemJSON(data)
	if err != nil {
		return nil, err
	}
	return f.FromItem(item)
}

// PutItemInput builds the PutItem request that would store e in the
// configured table.
func (f *DynamoDBFormat) PutItemInput(e *core.Entity) (*dynamodb.PutItemInput, error) {
	if f.tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}
	item, err := f.ToItem(e)
	if err != nil {
		return nil, err
	}
	return &dynamodb.PutItemInput{
		TableName: aws.String(f.tableName),
		Item:      item,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validateAttrNames(names ...string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.Contains(n, "@") {
			return fmt.Errorf("attribute name %q cannot contain '@'", n)
		}
		if seen[n] {
			return fmt.Errorf("attribute name %q is used more than once", n)
		}
		seen[n] = true
	}
	return nil
}

// DynamoDBFormatFactory creates DynamoDB formats.
type DynamoDBFormatFactory struct{}

// Create creates a DynamoDB format from config.
func (f *DynamoDBFormatFactory) Create(config FormatConfig) (EntityFormat, error) {
	format, err := NewDynamoDBFormat(config)
	if err != nil {
		return nil, err
	}
	return format, nil
}

// Type returns the type identifier for this factory.
func (f *DynamoDBFormatFactory) Type() string {
	return "dynamodb"
}

// Validate validates the DynamoDB-specific configuration.
func (f *DynamoDBFormatFactory) Validate(config FormatConfig) error {
	if config.Type != "dynamodb" {
		return fmt.Errorf("invalid type for DynamoDB factory: %s", config.Type)
	}
	return validateAttrNames(
		orDefault(config.PartitionKeyAttr, DefaultPartitionKeyAttr),
		orDefault(config.RowKeyAttr, DefaultRowKeyAttr),
		orDefault(config.TimestampAttr, DefaultTimestampAttr),
	)
}

// DynamoDBConfigValidator implements the ConfigValidator interface for DynamoDB.
type DynamoDBConfigValidator struct{}

// Type returns the type identifier for this validator.
func (v *DynamoDBConfigValidator) Type() string {
	return "dynamodb"
}

// Validate validates the DynamoDB-specific configuration in the internal config.
func (v *DynamoDBConfigValidator) Validate(config *registry.InternalConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.Format.Type != "dynamodb" {
		return fmt.Errorf("invalid type for DynamoDB validator: %s", config.Format.Type)
	}

	dynamoConfig := config.Format.DynamoDBConfig
	return validateAttrNames(
		orDefault(dynamoConfig.PartitionKeyAttr, DefaultPartitionKeyAttr),
		orDefault(dynamoConfig.RowKeyAttr, DefaultRowKeyAttr),
		orDefault(dynamoConfig.TimestampAttr, DefaultTimestampAttr),
	)
}

func init() {
	RegisterFactory(&DynamoDBFormatFactory{})
	registry.RegisterValidator(&DynamoDBConfigValidator{})
}
