package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rzpsarthak13/tableentity/internal/codec"
	"github.com/rzpsarthak13/tableentity/internal/kvstore"
	"github.com/rzpsarthak13/tableentity/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cm := registry.NewConfigManager()
	cfg := cm.GetConfig()
	assert.Equal(t, codec.BuiltinDefaults(), cfg.JSON)
	assert.Equal(t, "odata", cfg.Format.Type)
}

func TestLoadFromYAML(t *testing.T) {
	data := []byte(`
json:
  omit_default: false
  omit_null: true
  ignore_read_only: true
format:
  type: dynamodb
  indent: true
  dynamodb_config:
    table_name: employees
    partition_key_attr: pk
    row_key_attr: sk
`)
	cm := registry.NewConfigManager()
	require.NoError(t, cm.LoadFromYAML(data))

	cfg := cm.GetConfig()
	assert.Equal(t, codec.Options{OmitNull: true, IgnoreReadOnly: true}, cfg.JSON)
	assert.Equal(t, "dynamodb", cfg.Format.Type)
	assert.True(t, cfg.Format.Indent)
	assert.Equal(t, "employees", cfg.Format.DynamoDBConfig.TableName)

	fc := kvstore.NewFormatConfig(cfg)
	assert.Equal(t, kvstore.FormatConfig{
		Type:             "dynamodb",
		Indent:           true,
		Metadata:         "minimal",
		PartitionKeyAttr: "pk",
		RowKeyAttr:       "sk",
		TableName:        "employees",
	}, fc)
}

func TestLoadFromJSON(t *testing.T) {
	cm := registry.NewConfigManager()
	require.NoError(t, cm.LoadFromJSON([]byte(`{"format":{"type":"odata","odata_config":{"metadata":"full"}}}`)))
	assert.Equal(t, "full", cm.GetConfig().Format.ODataConfig.Metadata)
	assert.Equal(t, codec.BuiltinDefaults(), cm.GetConfig().JSON)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown format", "format:\n  type: redis\n"},
		{"empty format", "format:\n  type: \"\"\n"},
		{"bad metadata", "format:\n  type: odata\n  odata_config:\n    metadata: verbose\n"},
		{"duplicate attributes", "format:\n  type: dynamodb\n  dynamodb_config:\n    row_key_attr: PartitionKey\n"},
		{"malformed", "format: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := registry.NewConfigManager()
			assert.Error(t, cm.LoadFromYAML([]byte(tt.yaml)))
			assert.Equal(t, "odata", cm.GetConfig().Format.Type, "failed loads keep the previous config")
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("format:\n  type: dynamodb\n"), 0o600))
	txtPath := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(""), 0o600))

	cm := registry.NewConfigManager()
	require.NoError(t, cm.LoadFromFile(yamlPath))
	assert.Equal(t, "dynamodb", cm.GetConfig().Format.Type)

	assert.Error(t, cm.LoadFromFile(txtPath))
	assert.Error(t, cm.LoadFromFile(filepath.Join(dir, "missing.yaml")))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TABLEENTITY_JSON_OMIT_DEFAULT", "false")
	t.Setenv("TABLEENTITY_JSON_DISALLOW_UNKNOWN_FIELDS", "1")
	t.Setenv("TABLEENTITY_FORMAT_TYPE", "dynamodb")
	t.Setenv("TABLEENTITY_FORMAT_DYNAMODB_TABLE_NAME", "employees")
	t.Setenv("TABLEENTITY_FORMAT_DYNAMODB_TIMESTAMP_ATTR", "updated_at")

	cm := registry.NewConfigManager()
	require.NoError(t, cm.LoadFromEnv())

	cfg := cm.GetConfig()
	assert.Equal(t, codec.Options{IgnoreReadOnly: true, DisallowUnknownFields: true}, cfg.JSON)
	assert.Equal(t, "dynamodb", cfg.Format.Type)
	assert.Equal(t, "employees", cfg.Format.DynamoDBConfig.TableName)
	assert.Equal(t, "updated_at", cfg.Format.DynamoDBConfig.TimestampAttr)
}

func TestApplyInstallsDefaultJSONOptions(t *testing.T) {
	t.Cleanup(func() { codec.SetDefaultOptions(nil) })

	cm := registry.NewConfigManager()
	require.NoError(t, cm.LoadFromYAML([]byte("json:\n  omit_default: false\n  omit_null: true\n")))
	cm.Apply()
	assert.Equal(t, codec.Options{OmitNull: true, IgnoreReadOnly: true}, codec.DefaultOptions())
}

func TestValidatorRegistry(t *testing.T) {
	v, ok := registry.GetValidator("dynamodb")
	require.True(t, ok)
	assert.Equal(t, "dynamodb", v.Type())

	_, ok = registry.GetValidator("redis")
	assert.False(t, ok)

	assert.Panics(t, func() { registry.RegisterValidator(nil) })
	assert.Panics(t, func() { registry.RegisterValidator(&kvstore.ODataConfigValidator{}) })
}
