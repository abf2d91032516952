package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trade-journal-lab/internal/config"
	"trade-journal-lab/internal/csvimport"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/logger"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/pnl"
)

// app holds state shared by all subcommands, set up before any of them runs.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics

	// Persistent flags
	envFile          string
	logLevel         string
	profilePath      string
	normalizeMarkets bool
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade journal statistics and CSV import",
		Long: `journal imports trading-journal spreadsheets exported as CSV and computes
win rates, break-even aware statistics and account risk metrics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Path to a .env file (default: ./.env, then ../.env)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&a.profilePath, "profile", "", "Mapping profile YAML (overrides MAPPING_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&a.normalizeMarkets, "normalize-markets", false, "Rewrite market symbols like eur/usd to EURUSD")

	// Add subcommands
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

func (a *app) setup() error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(level, cfg.LogFormat, os.Stderr)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = observability.NewMetrics(cfg.MetricsNamespace, a.registry)

	if a.profilePath == "" {
		a.profilePath = cfg.MappingProfile
	}
	return nil
}

// profile loads the configured mapping profile.
func (a *app) profile() (*config.Profile, error) {
	if a.profilePath == "" {
		return nil, fmt.Errorf("a mapping profile is required (--profile or MAPPING_PROFILE)")
	}
	p, err := config.LoadProfile(a.profilePath)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("profile", p.Name).Int("columns", len(p.Columns)).Msg("mapping profile loaded")
	return p, nil
}

// importDefaults merges profile defaults with the environment, then applies a
// --balance override when set.
func (a *app) importDefaults(p *config.Profile, balance float64) domain.ImportDefaults {
	d := p.ImportDefaults(a.cfg.ImportDefaults())
	if balance > 0 {
		d.AccountBalance = &balance
	}
	return d
}

func (a *app) parser() *csvimport.Parser {
	if a.normalizeMarkets {
		return csvimport.NewParser(pnl.Default, csvimport.WithMarketNormalizer(domain.NormalizeMarket))
	}
	return csvimport.NewParser(pnl.Default)
}

func readFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--file is required")
	}
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
