package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"content-hub/internal/config"
	"content-hub/internal/logger"
)

// app carries what every subcommand needs once the root command has run its
// PersistentPreRunE.
type app struct {
	configPath string
	logMode    string
	verbose    bool

	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "contenthub",
		Short: "Unified view over remote, static and discovered course content",
		Long: `contenthub merges three content sources into one deduplicated view:

  1. the remote store (Supabase REST or direct Postgres)
  2. the static content file (first existing candidate path)
  3. content files discovered in sibling app directories

When the same id appears in several sources the remote copy wins, then the
static file, then discovery.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.logMode != "" {
				cfg.LogMode = a.logMode
			}
			log, err := logger.New(cfg.LogMode, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (or set CONTENT_HUB_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&a.logMode, "log-mode", "", "dev or prod (default from LOG_MODE)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newAppsCmd(a))
	rootCmd.AddCommand(newAppCmd(a))
	rootCmd.AddCommand(newSourcesCmd(a))
	rootCmd.AddCommand(newConflictsCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
