package registry

import (
	"github.com/rzpsarthak13/tableentity/internal/codec"
)

// InternalConfig represents the internal configuration structure.
type InternalConfig struct {
	// JSON holds the process-wide options for structured-text fields.
	JSON codec.Options `yaml:"json" json:"json"`

	// Format selects and configures the entity wire format.
	Format InternalFormatConfig `yaml:"format" json:"format"`
}

// InternalFormatConfig contains configuration for the entity wire format.
// Supports multiple table stores (OData, DynamoDB, etc.) through a
// plugin-based architecture.
type InternalFormatConfig struct {
	Type           string                 `yaml:"type" json:"type"`
	Indent         bool                   `yaml:"indent,omitempty" json:"indent,omitempty"`
	ODataConfig    InternalODataConfig    `yaml:"odata_config,omitempty" json:"odata_config,omitempty"`
	DynamoDBConfig InternalDynamoDBConfig `yaml:"dynamodb_config,omitempty" json:"dynamodb_config,omitempty"`
}

// InternalODataConfig contains OData-specific configuration.
type InternalODataConfig struct {
	// Metadata is the annotation level: none, minimal or full.
	Metadata string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// InternalDynamoDBConfig contains DynamoDB-specific configuration.
type InternalDynamoDBConfig struct {
	TableName        string `yaml:"table_name,omitempty" json:"table_name,omitempty"`
	PartitionKeyAttr string `yaml:"partition_key_attr,omitempty" json:"partition_key_attr,omitempty"`
	RowKeyAttr       string `yaml:"row_key_attr,omitempty" json:"row_key_attr,omitempty"`
	TimestampAttr    string `yaml:"timestamp_attr,omitempty" json:"timestamp_attr,omitempty"`
}
