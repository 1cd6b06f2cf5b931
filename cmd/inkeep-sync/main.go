package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inkeep/agents-sub000/internal/compare"
	"github.com/inkeep/agents-sub000/internal/config"
	"github.com/inkeep/agents-sub000/internal/journal"
	"github.com/inkeep/agents-sub000/internal/oracle"
	"github.com/inkeep/agents-sub000/internal/remote"
	"github.com/inkeep/agents-sub000/internal/syncer"
)

var (
	// Global flags
	configPath string
	projectID  string
	projectDir string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "inkeep-sync",
	Short: "inkeep-sync - pull a remote agent project into its local source tree",
	Long: `inkeep-sync reconciles a declarative agent project, as the management API
describes it, with the Go declaration files in your working tree.

Changed components are regenerated from their canonical form; files you have
edited are updated through a merge model, and every candidate tree is
validated by evaluating it in a sandbox and comparing the result against the
remote definition before anything is written to your tree.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if cfg.Logging.Format == "text" {
			zcfg = zap.NewDevelopmentConfig()
		}
		if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// syncCmd runs one full synchronization.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the local tree with the remote project definition",
	RunE:  runSync,
}

// statusCmd reports pending changes without writing anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what a sync would change, without writing",
	RunE:  runStatus,
}

// historyCmd lists past sync runs from the journal.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs for this project",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "inkeep.sync.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&projectID, "project", "", "Project identifier to sync (required)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "d", ".", "Project source tree root")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("project")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

// buildSyncer wires the remote client, the merge oracle, and the journal.
// The journal is optional: a failure to open it degrades to a warning.
func buildSyncer(cmd *cobra.Command, needOracle bool) (*syncer.Syncer, *journal.Journal, error) {
	client := remote.NewClient(cfg.API.BaseURL, cfg.API.APIKey, cfg.GetAPITimeout(), logger)

	var orc oracle.Oracle
	if needOracle {
		var err error
		orc, err = oracle.NewGemini(cmd.Context(), oracle.GeminiConfig{
			APIKey:  cfg.Oracle.APIKey,
			Model:   cfg.Oracle.Model,
			Timeout: cfg.GetOracleTimeout(),
		}, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	var jnl *journal.Journal
	var recorder syncer.Recorder
	if needOracle {
		var err error
		jnl, err = journal.Open(stateDir())
		if err != nil {
			logger.Warn("journal unavailable; runs will not be recorded", zap.Error(err))
		} else {
			recorder = jnl
		}
	}

	s := syncer.New(client, orc, recorder, logger, syncer.Config{
		ProjectID:   projectID,
		Root:        projectDir,
		MaxAttempts: cfg.Sync.MaxAttempts,
		Compare:     compare.Options{VolatilePaths: cfg.Sync.VolatilePaths},
	})
	return s, jnl, nil
}

func stateDir() string {
	dir := cfg.Sync.StateDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectDir, dir)
	}
	return dir
}

func runSync(cmd *cobra.Command, args []string) error {
	s, jnl, err := buildSyncer(cmd, true)
	if err != nil {
		return err
	}
	if jnl != nil {
		defer jnl.Close()
	}

	outcome, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}

	if outcome.UpToDate {
		fmt.Println("Already up to date.")
	} else {
		fmt.Printf("Promoted %d file(s) in %d attempt(s):\n", len(outcome.PromotedFiles), outcome.Attempts)
		for _, f := range outcome.PromotedFiles {
			fmt.Printf("  %s\n", f)
		}
	}
	for _, cred := range outcome.PendingCredentials {
		fmt.Printf("Pending credential %q: fill in its local configuration before running the project.\n", cred)
	}
	for _, key := range outcome.DeletedComponents {
		fmt.Printf("Removed remotely: %s (delete its local declaration when ready).\n", key)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, _, err := buildSyncer(cmd, false)
	if err != nil {
		return err
	}

	report, err := s.Status(cmd.Context())
	if err != nil {
		return err
	}

	if report.UpToDate {
		fmt.Println("Up to date.")
		return nil
	}
	for _, c := range report.Changes {
		fmt.Printf("  %-8s %s\n", c.Action, c.Key)
	}
	for _, c := range report.Deleted {
		fmt.Printf("  %-8s %s (local only)\n", c.Action, c.Key)
	}
	for _, w := range report.Warnings {
		fmt.Printf("  warning: %s (%s)\n", w.Path, w.Reason)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	jnl, err := journal.Open(stateDir())
	if err != nil {
		return err
	}
	defer jnl.Close()

	records, err := jnl.History(cmd.Context(), projectID, historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, rec := range records {
		line := fmt.Sprintf("%s  %-10s attempts=%d", rec.StartedAt.Format("2006-01-02 15:04:05"), rec.Result, rec.Attempts)
		if len(rec.PromotedFiles) > 0 {
			line += fmt.Sprintf(" files=%d", len(rec.PromotedFiles))
		}
		if rec.Error != "" {
			line += " error=" + rec.Error
		}
		fmt.Println(line)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
