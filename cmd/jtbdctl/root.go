package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/cobra"

	"github.com/ignite/jtbd-explorer/internal/config"
	"github.com/ignite/jtbd-explorer/internal/pkg/distlock"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
	"github.com/ignite/jtbd-explorer/internal/repository/postgres"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	verbose    bool
}

var rootCmd = &cobra.Command{
	Use:   "jtbdctl",
	Short: "Operator tools for JTBD survey data",
	Long:  "jtbdctl previews and imports ODI survey spreadsheets and exports\norganization datasets using the server's database settings.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		if rootFlags.verbose {
			logger.SetLevel(logger.DEBUG)
		} else {
			logger.SetLevel(logger.WARN)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "config/config.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services is what the database-backed commands need.
type services struct {
	db      *sql.DB
	imports *importer.Service
	jtbd    *jtbd.Service
}

func (s *services) Close() error { return s.db.Close() }

func openServices(ctx context.Context) (*services, error) {
	cfg, err := config.LoadFromEnv(rootFlags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	catalog := postgres.NewCatalogRepo(db)
	return &services{
		db: db,
		imports: importer.NewService(catalog, postgres.NewImportRepo(db),
			importer.NewMemorySessionStore(time.Hour), nil,
			distlock.NewFactory(nil, db, cfg.Import.LockTTL())),
		jtbd: jtbd.NewService(postgres.NewHierarchyRepo(db), catalog),
	}, nil
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
