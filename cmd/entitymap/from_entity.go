package main

import (
	"encoding/json"
	"fmt"

	"github.com/rzpsarthak13/tableentity/pkg/tableentity"
	"github.com/spf13/cobra"
)

var fromEntityCmd = &cobra.Command{
	Use:   "from-entity",
	Short: "Convert an entity payload back to an Employee JSON document",
	Long:  "Read an entity in the configured wire format and print the Employee it describes. Keys are written back into the key fields.",
	Args:  cobra.NoArgs,
	RunE:  runFromEntity,
}

func init() {
	fromEntityCmd.Flags().StringVarP(&inputPath, "input", "i", "", "entity payload file (default: stdin)")
	fromEntityCmd.Flags().StringVar(&partitionField, "partition-field", "Company", "field receiving the partition key, empty to skip")
	fromEntityCmd.Flags().StringVar(&rowField, "row-field", "ID", "field receiving the row key, empty to skip")
}

func runFromEntity(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	format, _, err := loadFormat()
	if err != nil {
		return err
	}
	entity, err := format.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("failed to parse entity: %w", err)
	}

	emp, err := tableentity.FromEntityByFieldsWithOptions(entity, partitionField, rowField, employeeOptions(nil))
	if err != nil {
		return fmt.Errorf("failed to convert entity: %w", err)
	}

	out, err := json.MarshalIndent(emp, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, out)
}
