package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trade-journal-lab/internal/api"
	"trade-journal-lab/internal/config"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/journal"
	"trade-journal-lab/internal/reporting"
	"trade-journal-lab/internal/stats"
)

// newCheckCmd creates the check command
func newCheckCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a CSV file against a mapping profile without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			csvText, err := readFile(file)
			if err != nil {
				return err
			}
			p, err := a.profile()
			if err != nil {
				return err
			}

			res := a.parser().Parse(csvText, p.Mapping(), a.importDefaults(p, 0))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d valid rows, %d errors\n", len(res.Rows), len(res.Errors))
			if len(res.Errors) == 0 {
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROW\tFIELD\tMESSAGE")
			for _, e := range res.Errors {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Row, e.Field, e.Message)
			}
			tw.Flush()

			return fmt.Errorf("%d validation errors", len(res.Errors))
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file to check (- for stdin)")

	return cmd
}

// statsOptions are the flags of the stats command.
type statsOptions struct {
	file         string
	account      string
	balance      float64
	executedOnly bool
	format       string
	out          string
	snapshot     bool
	sessionStart string
	sessionEnd   string
	step         int
}

// newStatsCmd creates the stats command
func newStatsCmd(a *app) *cobra.Command {
	var o statsOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compute statistics from a CSV file or a stored account",
		Long: `Compute category win rates and account risk metrics.
With --file the CSV is parsed in memory; with --account trades are loaded from Postgres.
Example: journal stats --file trades.csv --profile broker.yaml --balance 10000 --format md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (o.file == "") == (o.account == "") {
				return fmt.Errorf("exactly one of --file or --account is required")
			}
			return runStats(cmd.Context(), a, o, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.file, "file", "", "CSV file to analyze (- for stdin)")
	cmd.Flags().StringVar(&o.account, "account", "", "Stored account to analyze")
	cmd.Flags().Float64Var(&o.balance, "balance", 0, "Account balance (default: profile or ACCOUNT_BALANCE)")
	cmd.Flags().BoolVar(&o.executedOnly, "executed-only", false, "Ignore trades marked as not executed")
	cmd.Flags().StringVar(&o.format, "format", "md", "Output format: md, csv or json")
	cmd.Flags().StringVar(&o.out, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&o.snapshot, "snapshot", false, "Store the group rows in ClickHouse (requires --account)")
	cmd.Flags().StringVar(&o.sessionStart, "session-start", "", "Bucket trades from this time (HH:MM) when the profile has no intervals")
	cmd.Flags().StringVar(&o.sessionEnd, "session-end", "", "Bucket trades up to this time (HH:MM)")
	cmd.Flags().IntVar(&o.step, "step", 60, "Bucket length in minutes for --session-start/--session-end")

	return cmd
}

func runStats(ctx context.Context, a *app, o statsOptions, stdout io.Writer) error {
	render, err := renderer(o.format)
	if err != nil {
		return err
	}

	// The profile is optional for stored accounts; it only adds intervals and defaults
	var p *config.Profile
	if o.file != "" || a.profilePath != "" {
		if p, err = a.profile(); err != nil {
			return err
		}
	} else {
		p = &config.Profile{}
	}
	defaults := a.importDefaults(p, o.balance)

	intervals := p.Intervals
	if len(intervals) == 0 && o.sessionStart != "" {
		intervals, err = stats.SessionIntervals(o.sessionStart, o.sessionEnd, o.step)
		if err != nil {
			return err
		}
	}

	req := journal.ReportRequest{
		AccountID:    o.account,
		ExecutedOnly: o.executedOnly,
		Intervals:    intervals,
	}
	if defaults.AccountBalance != nil {
		req.AccountBalance = *defaults.AccountBalance
	}

	var report *reporting.Report
	if o.file != "" {
		if o.snapshot {
			return fmt.Errorf("--snapshot requires --account")
		}
		csvText, err := readFile(o.file)
		if err != nil {
			return err
		}
		res := a.parser().Parse(csvText, p.Mapping(), defaults)
		if len(res.Errors) > 0 {
			a.log.Warn().Int("errors", len(res.Errors)).Msg("rows skipped, run check for details")
		}

		trades := make([]domain.Trade, len(res.Rows))
		for i, row := range res.Rows {
			trades[i] = domain.Trade{ParsedTrade: row}
		}
		analyzer := journal.NewAnalyzer(journal.AnalyzerOptions{Metrics: a.metrics, Logger: a.log})
		report = analyzer.Analyze(trades, req)
	} else {
		s, cleanup, err := a.openStores(ctx, false, false)
		if err != nil {
			return err
		}
		defer cleanup()

		analyzer := journal.NewAnalyzer(journal.AnalyzerOptions{
			Trades:    s.trades,
			Snapshots: s.snapshots,
			Metrics:   a.metrics,
			Logger:    a.log,
		})
		if report, err = analyzer.BuildReport(ctx, req); err != nil {
			return err
		}
		if o.snapshot {
			n, err := analyzer.SaveSnapshot(ctx, report)
			if err != nil {
				return err
			}
			a.log.Info().Int("rows", n).Msg("snapshot stored")
		}
	}

	out := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return render(out, report)
}

// renderer returns the writer for a report format.
func renderer(format string) (func(io.Writer, *reporting.Report) error, error) {
	switch format {
	case "md", "markdown":
		return func(w io.Writer, r *reporting.Report) error {
			_, err := io.WriteString(w, reporting.RenderMarkdown(r))
			return err
		}, nil
	case "csv":
		return func(w io.Writer, r *reporting.Report) error {
			_, err := io.WriteString(w, reporting.RenderCSV(r))
			return err
		}, nil
	case "json":
		return func(w io.Writer, r *reporting.Report) error {
			b, err := reporting.RenderJSON(r)
			if err != nil {
				return err
			}
			_, err = w.Write(append(b, '\n'))
			return err
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected md, csv or json)", format)
	}
}

// newImportCmd creates the import command
func newImportCmd(a *app) *cobra.Command {
	var file, account, user string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV file into a stored account",
		Long: `Parse a CSV file and store its valid rows in Postgres.
Rows already imported into the account are skipped, so re-running an import is safe.
Example: journal import --file trades.csv --account acc-1 --profile broker.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvText, err := readFile(file)
			if err != nil {
				return err
			}
			p, err := a.profile()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, cleanup, err := a.openStores(ctx, false, true)
			if err != nil {
				return err
			}
			defer cleanup()

			importer := journal.NewImporter(journal.ImporterOptions{
				Store:   s.trades,
				Parser:  a.parser(),
				Metrics: a.metrics,
				Logger:  a.log,
			})
			summary, importErr := importer.Import(ctx, journal.ImportRequest{
				UserID:    user,
				AccountID: account,
				CSV:       csvText,
				Mapping:   p.Mapping(),
				Defaults:  a.importDefaults(p, 0),
			})
			if summary != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			}
			return importErr
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file to import (- for stdin)")
	cmd.Flags().StringVar(&account, "account", "", "Account the trades belong to")
	cmd.Flags().StringVar(&user, "user", "", "User who owns the trades")
	cmd.MarkFlagRequired("account")

	return cmd
}

// newMigrateCmd creates the migrate command
func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := a.openStores(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			cleanup()
			return nil
		},
	}
}

// newServeCmd creates the serve command
func newServeCmd(a *app) *cobra.Command {
	var addr string
	var useMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import and statistics HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			p, err := a.profile()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, cleanup, err := a.openStores(ctx, useMemory, true)
			if err != nil {
				return err
			}
			defer cleanup()

			router := api.NewRouter(api.Options{
				Importer: journal.NewImporter(journal.ImporterOptions{
					Store:   s.trades,
					Parser:  a.parser(),
					Metrics: a.metrics,
					Logger:  a.log,
				}),
				Analyzer: journal.NewAnalyzer(journal.AnalyzerOptions{
					Trades:    s.trades,
					Snapshots: s.snapshots,
					Metrics:   a.metrics,
					Logger:    a.log,
				}),
				Profile:  p,
				Defaults: a.cfg.ImportDefaults(),
				Metrics:  a.metrics,
				Gatherer: a.registry,
				Logger:   a.log,
			})

			return serve(ctx, a, addr, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default: HTTP_ADDR)")
	cmd.Flags().BoolVar(&useMemory, "use-memory", false, "Use in-memory storage instead of PostgreSQL")

	return cmd
}

// serve runs the server until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, a *app, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info().Msg("shutdown complete")
	return nil
}
