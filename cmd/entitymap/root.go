package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rzpsarthak13/tableentity/internal/kvstore"
	"github.com/rzpsarthak13/tableentity/internal/registry"
	"github.com/spf13/cobra"
)

var (
	configPath string
	formatType string
	inputPath  string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:               "entitymap",
	Short:             "Table entity mapping tools",
	Long:              "Convert Employee records to table store entity payloads (OData or DynamoDB) and back.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file (default: TABLEENTITY_* environment)")
	rootCmd.PersistentFlags().StringVarP(&formatType, "format", "f", "", "entity wire format, overrides the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log component activity to stderr")

	rootCmd.AddCommand(toEntityCmd)
	rootCmd.AddCommand(fromEntityCmd)
	rootCmd.AddCommand(formatsCmd)
}

var configMgr *registry.ConfigManager

// setup configures logging, loads configuration and installs the default
// JSON options before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	configMgr = registry.NewConfigManager()
	var err error
	if configPath != "" {
		err = configMgr.LoadFromFile(configPath)
	} else {
		err = configMgr.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	configMgr.Apply()
	return nil
}

// loadFormat creates the configured wire format, honouring --format.
func loadFormat() (kvstore.EntityFormat, kvstore.FormatConfig, error) {
	config := kvstore.NewFormatConfig(configMgr.GetConfig())
	if formatType != "" {
		config.Type = formatType
	}
	format, err := kvstore.Create(config)
	if err != nil {
		return nil, config, err
	}
	log.Printf("[ENTITYMAP] Using %s entity format", config.Type)
	return format, config, nil
}

// readInput reads --input, or stdin when it is empty or "-".
func readInput(cmd *cobra.Command) ([]byte, error) {
	if inputPath == "" || inputPath == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(inputPath)
}

func writeOutput(cmd *cobra.Command, data []byte) error {
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}
