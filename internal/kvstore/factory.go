package kvstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/rzpsarthak13/tableentity/internal/registry"
)

// EntityFormat renders entities in the payload shape of one table store.
type EntityFormat interface {
	// Type returns the format identifier (e.g., "odata", "dynamodb").
	Type() string

	// Marshal renders the entity, including its keys and timestamp.
	Marshal(e *core.Entity) ([]byte, error)

	// Unmarshal parses a payload produced by the store back into an entity.
	Unmarshal(data []byte) (*core.Entity, error)
}

// FormatFactory is the Strategy interface for creating entity formats.
// Each store format implements this interface and registers itself from
// init().
type FormatFactory interface {
	// Create creates a new format instance based on the provided configuration.
	Create(config FormatConfig) (EntityFormat, error)

	// Type returns the type identifier for this factory.
	Type() string

	// Validate validates the configuration specific to this format.
	Validate(config FormatConfig) error
}

// FormatConfig represents the configuration needed to create a format.
type FormatConfig struct {
	Type   string
	Indent bool

	// OData-specific fields
	Metadata string

	// DynamoDB-specific fields
	PartitionKeyAttr string
	RowKeyAttr       string
	TimestampAttr    string
	TableName        string
}

// NewFormatConfig builds a FormatConfig from loaded configuration.
func NewFormatConfig(cfg *registry.InternalConfig) FormatConfig {
	f := cfg.Format
	return FormatConfig{
		Type:             f.Type,
		Indent:           f.Indent,
		Metadata:         f.ODataConfig.Metadata,
		PartitionKeyAttr: f.DynamoDBConfig.PartitionKeyAttr,
		RowKeyAttr:       f.DynamoDBConfig.RowKeyAttr,
		TimestampAttr:    f.DynamoDBConfig.TimestampAttr,
		TableName:        f.DynamoDBConfig.TableName,
	}
}

var (
	// factoryRegistry stores all registered format factories.
	factoryRegistry = make(map[string]FormatFactory)

	// registryMutex protects the registries from concurrent access.
	registryMutex sync.RWMutex
)

// RegisterFactory registers a format factory.
// This is called automatically by each implementation's init() function.
func RegisterFactory(factory FormatFactory) {
	if factory == nil {
		panic("factory cannot be nil")
	}
	if factory.Type() == "" {
		panic("factory type cannot be empty")
	}

	registryMutex.Lock()
	defer registryMutex.Unlock()

	if _, exists := factoryRegistry[factory.Type()]; exists {
		panic(fmt.Sprintf("factory for type %q is already registered", factory.Type()))
	}

	factoryRegistry[factory.Type()] = factory
}

// Create creates a format instance using the appropriate factory based on config.Type.
func Create(config FormatConfig) (EntityFormat, error) {
	if config.Type == "" {
		return nil, fmt.Errorf("format type is required")
	}

	registryMutex.RLock()
	factory, exists := factoryRegistry[config.Type]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported entity format: %s", config.Type)
	}

	if err := factory.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", config.Type, err)
	}

	return factory.Create(config)
}

// GetRegisteredTypes returns all registered format types in sorted order.
func GetRegisteredTypes() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]string, 0, len(factoryRegistry))
	for t := range factoryRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsTypeRegistered checks if a format type is registered.
func IsTypeRegistered(formatType string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	_, exists := factoryRegistry[formatType]
	return exists
}
