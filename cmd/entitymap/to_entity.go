package main

import (
	"encoding/json"
	"fmt"

	"github.com/rzpsarthak13/tableentity/internal/kvstore"
	"github.com/rzpsarthak13/tableentity/pkg/tableentity"
	"github.com/spf13/cobra"
)

var (
	partitionField string
	rowField       string
	ignoredFields  []string
	putItem        bool
)

var toEntityCmd = &cobra.Command{
	Use:   "to-entity",
	Short: "Convert an Employee JSON document to an entity payload",
	Long:  "Read an Employee as JSON and print it as an entity in the configured wire format. Complex fields are stored as JSON text under <Name>Json.",
	Args:  cobra.NoArgs,
	RunE:  runToEntity,
}

func init() {
	toEntityCmd.Flags().StringVarP(&inputPath, "input", "i", "", "employee JSON file (default: stdin)")
	toEntityCmd.Flags().StringVar(&partitionField, "partition-field", "Company", "field holding the partition key")
	toEntityCmd.Flags().StringVar(&rowField, "row-field", "ID", "field holding the row key")
	toEntityCmd.Flags().StringSliceVar(&ignoredFields, "ignore", nil, "fields to leave out of the entity")
	toEntityCmd.Flags().BoolVar(&putItem, "put-item", false, "print a DynamoDB PutItem request instead of the bare item")
}

func runToEntity(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	var emp Employee
	if err := json.Unmarshal(data, &emp); err != nil {
		return fmt.Errorf("failed to parse employee: %w", err)
	}

	entity, err := tableentity.ToEntityByFieldsWithOptions(emp, partitionField, rowField, employeeOptions(ignoredFields))
	if err != nil {
		return fmt.Errorf("failed to convert employee: %w", err)
	}

	format, config, err := loadFormat()
	if err != nil {
		return err
	}

	if putItem {
		dynamo, ok := format.(*kvstore.DynamoDBFormat)
		if !ok {
			return fmt.Errorf("--put-item requires the dynamodb format, got %s", format.Type())
		}
		input, err := dynamo.PutItemInput(entity)
		if err != nil {
			return err
		}
		out, err := kvstore.MarshalPutItemJSON(input, config.Indent)
		if err != nil {
			return err
		}
		return writeOutput(cmd, out)
	}

	out, err := format.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to render entity: %w", err)
	}
	return writeOutput(cmd, out)
}
