package kvstore

import (
	"errors"
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	"github.com/rzpsarthak13/tableentity/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamoDBToItem(t *testing.T) {
	f, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb", PartitionKeyAttr: "pk", RowKeyAttr: "sk"})
	require.NoError(t, err)

	item, err := f.ToItem(sampleEntity())
	require.NoError(t, err)

	assert.Equal(t, &types.AttributeValueMemberS{Value: "Microsoft"}, item["pk"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "42"}, item["sk"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2024-01-02T03:04:05.0000006Z"}, item["Timestamp"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "37"}, item["Age"])
	assert.NotContains(t, item, "Age@type")
	assert.Equal(t, &types.AttributeValueMemberN{Value: "9007199254740993"}, item["Serial"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Int64"}, item["Serial@type"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Double"}, item["Salary@type"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, item["Active"])
	assert.Equal(t, &types.AttributeValueMemberB{Value: []byte{0xde, 0xad}}, item["Photo"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "GUID"}, item["ExternalID@type"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "DateTime"}, item["HireDate@type"])
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, item["Manager"])
}

func TestDynamoDBRoundTrip(t *testing.T) {
	f, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb", Indent: true})
	require.NoError(t, err)

	out, err := f.Marshal(sampleEntity())
	require.NoError(t, err)
	back, err := f.Unmarshal(out)
	require.NoError(t, err)

	assert.Equal(t, "Microsoft", back.PartitionKey)
	assert.Equal(t, "42", back.RowKey)
	require.NotNil(t, back.Timestamp())
	assert.True(t, sampleEntity().Timestamp().Equal(*back.Timestamp()))
	if diff := cmp.Diff(normalised(), back.Properties()); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
}

func TestDynamoDBFromItemInference(t *testing.T) {
	f, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb"})
	require.NoError(t, err)

	e, err := f.FromItem(map[string]types.AttributeValue{
		"PartitionKey": &types.AttributeValueMemberS{Value: "p"},
		"RowKey":       &types.AttributeValueMemberS{Value: "r"},
		"b":            &types.AttributeValueMemberN{Value: "5000000000"},
		"a":            &types.AttributeValueMemberN{Value: "12"},
		"c":            &types.AttributeValueMemberN{Value: "1.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, e.Keys())

	a, _ := e.Get("a")
	assert.Equal(t, int32(12), a)
	b, _ := e.Get("b")
	assert.Equal(t, int64(5000000000), b)
	c, _ := e.Get("c")
	assert.Equal(t, 1.5, c)
}

func TestDynamoDBErrors(t *testing.T) {
	_, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb", PartitionKeyAttr: "id", RowKeyAttr: "id"})
	assert.Error(t, err)

	f, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb"})
	require.NoError(t, err)

	e := core.NewEntity("p", "r")
	e.Set("Ratio", math.Inf(1))
	_, err = f.ToItem(e)
	assert.True(t, errors.Is(err, core.ErrFormat))

	e = core.NewEntity("p", "r")
	e.Set("PartitionKey", "clash")
	_, err = f.ToItem(e)
	assert.True(t, errors.Is(err, core.ErrFormat))

	items := []map[string]types.AttributeValue{
		{"RowKey": &types.AttributeValueMemberS{Value: "r"}},
		{"PartitionKey": &types.AttributeValueMemberN{Value: "1"}, "RowKey": &types.AttributeValueMemberS{Value: "r"}},
		{
			"PartitionKey": &types.AttributeValueMemberS{Value: "p"},
			"RowKey":       &types.AttributeValueMemberS{Value: "r"},
			"Tags":         &types.AttributeValueMemberSS{Value: []string{"a"}},
		},
		{
			"PartitionKey": &types.AttributeValueMemberS{Value: "p"},
			"RowKey":       &types.AttributeValueMemberS{Value: "r"},
			"Id":           &types.AttributeValueMemberN{Value: "1"},
			"Id@type":      &types.AttributeValueMemberS{Value: "GUID"},
		},
		{
			"PartitionKey": &types.AttributeValueMemberS{Value: "p"},
			"RowKey":       &types.AttributeValueMemberS{Value: "r"},
			"Id":           &types.AttributeValueMemberS{Value: "x"},
			"Id@type":      &types.AttributeValueMemberS{Value: "Decimal"},
		},
	}
	for i, item := range items {
		_, err := f.FromItem(item)
		assert.Error(t, err, "item %d", i)
	}
}

func TestDynamoDBPutItemInput(t *testing.T) {
	f, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb", TableName: "employees"})
	require.NoError(t, err)

	input, err := f.PutItemInput(sampleEntity())
	require.NoError(t, err)
	assert.Equal(t, "employees", aws.ToString(input.TableName))
	assert.Contains(t, input.Item, "PartitionKey")

	out, err := MarshalPutItemJSON(input, false)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"TableName":"employees"`)

	noTable, err := NewDynamoDBFormat(FormatConfig{Type: "dynamodb"})
	require.NoError(t, err)
	_, err = noTable.PutItemInput(sampleEntity())
	assert.Error(t, err)
}
