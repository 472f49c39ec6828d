package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	agenthandler "fieldforce/internal/agent/handler"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the agent capture form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(agenthandler.CaptureFormSchema())
		},
	}
}
