package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/synapsespectre/internal/advisor"
	"github.com/ppiankov/synapsespectre/internal/config"
	"github.com/ppiankov/synapsespectre/internal/database"
	"github.com/ppiankov/synapsespectre/internal/logging"
	"github.com/ppiankov/synapsespectre/internal/reporter"
	"github.com/ppiankov/synapsespectre/internal/synapse"
	"github.com/spf13/cobra"
)

// envDatabaseURI overrides the connection derived from homeserver.yaml.
const envDatabaseURI = "SYNAPSESPECTRE_DATABASE_URI"

func newCheckCmd() *cobra.Command {
	defaults := config.DefaultConfig()
	var (
		format      string
		masConfig   string
		timeout     time.Duration
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "check <homeserver.yaml>",
		Short: "Assess whether a Synapse deployment can be migrated to MAS",
		Long: `Reads the Synapse configuration and database without modifying them and reports
findings as errors (migration blocked), warnings (manual steps needed) and infos.

Exit status: 0 no errors, 1 migration blocked, 2 the analysis could not run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getwd: %w", err)
			}
			toolCfg, err := loadToolConfig(cwd)
			if err != nil {
				return fmt.Errorf("load %s: %w", config.FileName, err)
			}
			flags := cmd.Flags()
			if !flags.Changed("format") {
				format = toolCfg.Defaults.Format
			}
			if !flags.Changed("timeout") {
				timeout = toolCfg.TimeoutDuration()
			}
			if !flags.Changed("concurrency") && toolCfg.Defaults.Concurrency > 0 {
				concurrency = toolCfg.Defaults.Concurrency
			}
			if !flags.Changed("mas-config") {
				masConfig = toolCfg.MASConfig
			}
			if !flags.Changed("log-level") && toolCfg.Defaults.LogLevel != "" {
				logLevel = toolCfg.Defaults.LogLevel
			}
			if !flags.Changed("log-format") && toolCfg.Defaults.LogFormat != "" {
				logFormat = toolCfg.Defaults.LogFormat
			}

			if err := validateFormat(format, reporter.Formats...); err != nil {
				return err
			}
			if concurrency < 1 {
				return fmt.Errorf("invalid --concurrency %d (must be >= 1)", concurrency)
			}
			logger, err := logging.New(logLevel, logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			path := args[0]
			syn, err := loadSynapseConfig(path)
			if err != nil {
				return err
			}
			logger.Debug("loaded synapse config", "path", path, "server_name", syn.ServerName, "engine", syn.Database.Name)

			checks := advisor.DefaultChecks()
			if masConfig != "" {
				m, err := loadMASConfig(masConfig)
				if err != nil {
					return err
				}
				checks = append(checks, advisor.MASChecks(m)...)
			}

			dbCfg, err := databaseConfig(syn, toolCfg)
			if err != nil {
				return err
			}
			dbCfg.MaxOpenConns = max(concurrency, toolCfg.Database.MaxConnections)

			db, err := openReader(ctx, dbCfg)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer func() { _ = db.Close() }()
			logger.Debug("connected to database", "driver", dbCfg.Driver)

			collector := advisor.NewCollector()
			engine := advisor.NewEngine(checks, concurrency, logger)
			if err := engine.Run(ctx, syn, db, collector); err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			logger.Debug("analysis finished", "checks", len(checks))

			report := reporter.NewReport(collector)
			report.Metadata = reporter.Metadata{
				Version:        version,
				Command:        "check",
				ServerName:     syn.ServerName,
				DatabaseEngine: syn.Database.Name,
				ConfigPath:     path,
				Checks:         len(checks),
			}

			if reporter.Format(format) == reporter.FormatLog {
				reporter.Log(ctx, findingsLogger(logger, cmd), &report)
			} else if err := reporter.Write(cmd.OutOrStdout(), &report, reporter.Format(format)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if code := advisor.ExitCode(report.Outcome); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", defaults.Defaults.Format, "output format: log, text, json or sarif")
	cmd.Flags().StringVar(&masConfig, "mas-config", "", "path to a MAS config.yaml to cross-check against")
	cmd.Flags().DurationVar(&timeout, "timeout", defaults.TimeoutDuration(), "overall analysis timeout")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaults.Defaults.Concurrency, "number of checks run in parallel")

	return cmd
}

// findingsLogger returns logger, or one floored at INFO when --log-level
// would hide warning and info findings.
func findingsLogger(logger *slog.Logger, cmd *cobra.Command) *slog.Logger {
	if lvl, err := logging.ParseLevel(logLevel); err != nil || lvl <= slog.LevelInfo {
		return logger
	}
	l, err := logging.New(logging.INFO, logFormat, cmd.ErrOrStderr())
	if err != nil {
		return logger
	}
	return l
}

// databaseConfig picks the connection: env var, then tool config, then homeserver.yaml.
func databaseConfig(syn *synapse.Config, toolCfg config.Config) (database.Config, error) {
	if uri := os.Getenv(envDatabaseURI); uri != "" {
		return database.ConfigFromURI(uri)
	}
	if toolCfg.Database.URI != "" {
		return database.ConfigFromURI(toolCfg.Database.URI)
	}
	return syn.DatabaseConfig()
}
