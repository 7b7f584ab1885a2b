package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	orgID  string
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an organization's dataset snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.orgID, "org", "", "Organization ID (required)")
	f.StringVarP(&exportFlags.output, "output", "o", "", "Output file (default stdout)")

	_ = exportCmd.MarkFlagRequired("org")
}

func runExport(cmd *cobra.Command, _ []string) error {
	if _, err := uuid.Parse(exportFlags.orgID); err != nil {
		return fmt.Errorf("--org must be a UUID: %w", err)
	}

	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	snap, err := svc.jtbd.Export(cmd.Context(), exportFlags.orgID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(cmd, exportFlags.output, append(data, '\n'))
}
