package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

var previewFlags struct {
	file  string
	orgID string
	lang  string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Match an upload against the catalog without writing anything",
	Args:  cobra.NoArgs,
	RunE:  runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.StringVarP(&previewFlags.file, "file", "f", "", "CSV, XLSX or XLS file (required)")
	f.StringVar(&previewFlags.orgID, "org", "", "Organization ID (required)")
	f.StringVar(&previewFlags.lang, "lang", "en", "Language for file errors: en or pt-BR")

	_ = previewCmd.MarkFlagRequired("file")
	_ = previewCmd.MarkFlagRequired("org")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if _, err := uuid.Parse(previewFlags.orgID); err != nil {
		return fmt.Errorf("--org must be a UUID: %w", err)
	}
	svc, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	rows, err := analyzeFile(cmd, svc, previewFlags.file, previewFlags.orgID, previewFlags.lang)
	if err != nil {
		return err
	}
	summary := surveyimport.Summarize(rows)
	printRows(cmd.OutOrStdout(), summary.Rows)
	printSummary(cmd.OutOrStdout(), summary)
	return nil
}

// analyzeFile runs decode, parse and match for path. File-level errors are
// rendered in lang.
func analyzeFile(cmd *cobra.Command, svc *services, path, orgID, lang string) ([]surveyimport.MatchedRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	rows, err := svc.imports.Analyze(cmd.Context(), orgID, filepath.Base(path), data)
	if surveyimport.IsFileError(err) {
		return nil, fmt.Errorf("%s", surveyimport.Message(err, surveyimport.MatchLocale(lang)))
	}
	return rows, err
}

func printRows(w io.Writer, rows []surveyimport.MatchedRow) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tOUTCOME\tMATCH\tIMP\tSAT\tOPP\tISSUES")
	for _, r := range rows {
		target := r.OutcomeSlug
		if target == "" {
			target = r.OutcomeName
		}
		if target == "" {
			target = r.RawOutcome
		}
		match := string(r.MatchType)
		if r.MatchScore != nil {
			match = fmt.Sprintf("%s (%.2f)", match, *r.MatchScore)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.RowIndex, target, match,
			formatNumber(r.Importance), formatNumber(r.Satisfaction), formatNumber(r.OpportunityScore),
			strings.Join(r.Issues, "; "))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s surveyimport.PreviewSummary) {
	fmt.Fprintf(w, "\n%d rows: %d valid, %d with warnings, %d with errors\n",
		s.TotalRows, s.ValidRowCount, s.WarningRowCount, s.ErrorRowCount)
	if s.CanCommit() {
		fmt.Fprintln(w, "Ready to import.")
	} else {
		fmt.Fprintln(w, "Not importable until every error row is fixed.")
	}
}

func formatNumber(n surveyimport.Number) string {
	if n.IsNaN() {
		return "-"
	}
	return fmt.Sprintf("%.2f", float64(n))
}
