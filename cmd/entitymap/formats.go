package main

import (
	"fmt"

	"github.com/rzpsarthak13/tableentity/internal/kvstore"
	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the registered entity wire formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range kvstore.GetRegisteredTypes() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
				return err
			}
		}
		return nil
	},
}
