package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

var templateFlags struct {
	format string
	output string
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the survey import template",
	Args:  cobra.NoArgs,
	RunE:  runTemplate,
}

func init() {
	f := templateCmd.Flags()
	f.StringVar(&templateFlags.format, "format", "csv", "Template format: csv or xlsx")
	f.StringVarP(&templateFlags.output, "output", "o", "", "Output file (default stdout)")
}

func runTemplate(cmd *cobra.Command, _ []string) error {
	var data []byte
	switch templateFlags.format {
	case "csv":
		data = surveyimport.Template()
	case "xlsx":
		var err error
		if data, err = surveyimport.TemplateXLSX(); err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q (want csv or xlsx)", templateFlags.format)
	}
	return writeOutput(cmd, templateFlags.output, data)
}
