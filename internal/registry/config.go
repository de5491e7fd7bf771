package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rzpsarthak13/tableentity/internal/codec"
	"gopkg.in/yaml.v3"
)

// ConfigValidator is the Strategy interface for validating configuration.
// Each wire format provides its own validator for its format-specific
// settings.
type ConfigValidator interface {
	// Validate validates the format-specific part of the configuration.
	Validate(config *InternalConfig) error

	// Type returns the type identifier for this validator (e.g., "odata", "dynamodb").
	Type() string
}

var (
	// validatorRegistry stores all registered config validators.
	validatorRegistry = make(map[string]ConfigValidator)

	// validatorRegistryMutex protects the validator registry from concurrent access.
	validatorRegistryMutex sync.RWMutex
)

// ValidationStrategyRegistry provides methods to register and retrieve config validators.
type ValidationStrategyRegistry struct{}

// Register registers a config validator.
// Panics if validator is nil, type is empty, or type is already registered.
func (r *ValidationStrategyRegistry) Register(validator ConfigValidator) {
	if validator == nil {
		panic("validator cannot be nil")
	}
	if validator.Type() == "" {
		panic("validator type cannot be empty")
	}

	validatorRegistryMutex.Lock()
	defer validatorRegistryMutex.Unlock()

	if _, exists := validatorRegistry[validator.Type()]; exists {
		panic(fmt.Sprintf("validator for type %q is already registered", validator.Type()))
	}

	validatorRegistry[validator.Type()] = validator
}

// Get retrieves a validator by type.
func (r *ValidationStrategyRegistry) Get(validatorType string) (ConfigValidator, bool) {
	validatorRegistryMutex.RLock()
	defer validatorRegistryMutex.RUnlock()

	validator, exists := validatorRegistry[validatorType]
	return validator, exists
}

// RegisterValidator registers a validator with the default registry.
// This is the preferred way to register validators from init() functions.
func RegisterValidator(validator ConfigValidator) {
	defaultValidationRegistry.Register(validator)
}

// GetValidator retrieves a validator by type from the default registry.
func GetValidator(validatorType string) (ConfigValidator, bool) {
	return defaultValidationRegistry.Get(validatorType)
}

var defaultValidationRegistry = &ValidationStrategyRegistry{}

// ConfigManager handles loading and managing configuration from various sources.
type ConfigManager struct {
	config *InternalConfig
}

// NewConfigManager creates a new configuration manager with default configuration.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config: defaultInternalConfig(),
	}
}

func defaultInternalConfig() *InternalConfig {
	return &InternalConfig{
		JSON: codec.BuiltinDefaults(),
		Format: InternalFormatConfig{
			Type: "odata",
			ODataConfig: InternalODataConfig{
				Metadata: "minimal",
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML or JSON file.
// The file format is determined by the file extension (.yaml, .yml, or .json).
func (cm *ConfigManager) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		return cm.LoadFromYAML(data)
	case ".json":
		return cm.LoadFromJSON(data)
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}
}

// LoadFromYAML loads configuration from YAML data.
func (cm *ConfigManager) LoadFromYAML(data []byte) error {
	config := defaultInternalConfig()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	return cm.install(config, "YAML")
}

// LoadFromJSON loads configuration from JSON data.
func (cm *ConfigManager) LoadFromJSON(data []byte) error {
	config := defaultInternalConfig()
	if len(data) > 0 {
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}
	return cm.install(config, "JSON")
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables follow the pattern: TABLEENTITY_<SECTION>_<KEY>
// Examples:
//   - TABLEENTITY_JSON_OMIT_DEFAULT=false
//   - TABLEENTITY_JSON_OMIT_NULL=true
//   - TABLEENTITY_FORMAT_TYPE=dynamodb
//   - TABLEENTITY_FORMAT_DYNAMODB_TABLE_NAME=employees
func (cm *ConfigManager) LoadFromEnv() error {
	config := defaultInternalConfig()

	// JSON options
	envBool("TABLEENTITY_JSON_OMIT_DEFAULT", &config.JSON.OmitDefault)
	envBool("TABLEENTITY_JSON_OMIT_NULL", &config.JSON.OmitNull)
	envBool("TABLEENTITY_JSON_IGNORE_READ_ONLY", &config.JSON.IgnoreReadOnly)
	envBool("TABLEENTITY_JSON_DISALLOW_UNKNOWN_FIELDS", &config.JSON.DisallowUnknownFields)

	// Format configuration
	if val := os.Getenv("TABLEENTITY_FORMAT_TYPE"); val != "" {
		config.Format.Type = val
	}
	envBool("TABLEENTITY_FORMAT_INDENT", &config.Format.Indent)
	if val := os.Getenv("TABLEENTITY_FORMAT_ODATA_METADATA"); val != "" {
		config.Format.ODataConfig.Metadata = val
	}
	if val := os.Getenv("TABLEENTITY_FORMAT_DYNAMODB_TABLE_NAME"); val != "" {
		config.Format.DynamoDBConfig.TableName = val
	}
	if val := os.Getenv("TABLEENTITY_FORMAT_DYNAMODB_PARTITION_KEY_ATTR"); val != "" {
		config.Format.DynamoDBConfig.PartitionKeyAttr = val
	}
	if val := os.Getenv("TABLEENTITY_FORMAT_DYNAMODB_ROW_KEY_ATTR"); val != "" {
		config.Format.DynamoDBConfig.RowKeyAttr = val
	}
	if val := os.Getenv("TABLEENTITY_FORMAT_DYNAMODB_TIMESTAMP_ATTR"); val != "" {
		config.Format.DynamoDBConfig.TimestampAttr = val
	}

	return cm.install(config, "environment")
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		*dst = val == "true" || val == "1"
	}
}

func (cm *ConfigManager) install(config *InternalConfig, source string) error {
	if err := cm.validateConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cm.config = config
	log.Printf("[CONFIG] Loaded configuration from %s (format: %s)", source, config.Format.Type)
	return nil
}

// GetConfig returns the current internal configuration.
func (cm *ConfigManager) GetConfig() *InternalConfig {
	return cm.config
}

// Apply installs the configured JSON options as the process-wide default.
// Call it during program initialisation only.
func (cm *ConfigManager) Apply() {
	opts := cm.config.JSON
	codec.SetDefaultOptions(&opts)
	log.Printf("[CONFIG] Default JSON options: omit_default=%t omit_null=%t ignore_read_only=%t disallow_unknown_fields=%t",
		opts.OmitDefault, opts.OmitNull, opts.IgnoreReadOnly, opts.DisallowUnknownFields)
}

// validateConfig validates the configuration and returns an error if invalid.
func (cm *ConfigManager) validateConfig(config *InternalConfig) error {
	if config.Format.Type == "" {
		return fmt.Errorf("format.type is required")
	}

	validator, exists := GetValidator(config.Format.Type)
	if !exists {
		return fmt.Errorf("unsupported entity format: %s", config.Format.Type)
	}

	if err := validator.Validate(config); err != nil {
		return fmt.Errorf("format validation failed: %w", err)
	}

	return nil
}
