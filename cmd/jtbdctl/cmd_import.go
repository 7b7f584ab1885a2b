package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

var importFlags struct {
	file        string
	orgID       string
	lang        string
	code        string
	name        string
	date        string
	description string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Preview, gate and commit a survey upload",
	Long: "import matches the file like preview does and, when no row has errors,\n" +
		"commits the valid rows under the given survey. The result is printed as JSON.",
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVarP(&importFlags.file, "file", "f", "", "CSV, XLSX or XLS file (required)")
	f.StringVar(&importFlags.orgID, "org", "", "Organization ID (required)")
	f.StringVar(&importFlags.lang, "lang", "en", "Language for file errors: en or pt-BR")
	f.StringVar(&importFlags.code, "code", "", "Survey code (required)")
	f.StringVar(&importFlags.name, "name", "", "Survey name (required)")
	f.StringVar(&importFlags.date, "date", "", "Survey date, YYYY-MM-DD (required)")
	f.StringVar(&importFlags.description, "description", "", "Survey description")

	for _, name := range []string{"file", "org", "code", "name", "date"} {
		_ = importCmd.MarkFlagRequired(name)
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	meta := surveyimport.SurveyMetadata{
		Code:        importFlags.code,
		Name:        importFlags.name,
		Date:        importFlags.date,
		Description: importFlags.description,
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	if _, err := uuid.Parse(importFlags.orgID); err != nil {
		return fmt.Errorf("--org must be a UUID: %w", err)
	}

	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	rows, err := analyzeFile(cmd, svc, importFlags.file, importFlags.orgID, importFlags.lang)
	if err != nil {
		return err
	}

	result, err := svc.imports.CommitRows(cmd.Context(), importFlags.orgID, meta, rows)
	var gate *importer.NotCommittableError
	if errors.As(err, &gate) {
		printRows(cmd.ErrOrStderr(), gate.Summary.Rows)
		printSummary(cmd.ErrOrStderr(), gate.Summary)
		return err
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Message)
	}
	return nil
}
