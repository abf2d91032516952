// Package journal wires the pure import and statistics core to storage, logging and metrics.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trade-journal-lab/internal/csvimport"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/storage"
)

var (
	// ErrImportFailed is returned when a file is unreadable or a row cannot be stored.
	ErrImportFailed = errors.New("import failed")

	// ErrNoTrades is returned when an account holds no trades to analyze.
	ErrNoTrades = errors.New("no trades")
)

// ImportRequest is one CSV file to import into an account.
type ImportRequest struct {
	UserID    string
	AccountID string
	CSV       string
	Mapping   domain.Mapping
	Defaults  domain.ImportDefaults
}

// ImportSummary reports what an import did.
type ImportSummary struct {
	Imported   int               `json:"imported"`
	Duplicates int               `json:"duplicates"`
	Rejected   int               `json:"rejected"` // rows dropped for validation errors
	Errors     []domain.RowError `json:"errors"`
	TradeIDs   []string          `json:"trade_ids"`
}

// ImporterOptions for creating Importer.
type ImporterOptions struct {
	Store   storage.TradeStore
	Parser  *csvimport.Parser
	Metrics *observability.Metrics // optional
	Logger  zerolog.Logger
}

// Importer parses CSV files and persists the valid rows.
// Re-importing a file is idempotent: rows are keyed by their fingerprint within the account.
type Importer struct {
	store   storage.TradeStore
	parser  *csvimport.Parser
	metrics *observability.Metrics
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// NewImporter creates a new Importer.
func NewImporter(opts ImporterOptions) *Importer {
	return &Importer{
		store:   opts.Store,
		parser:  opts.Parser,
		metrics: opts.Metrics,
		log:     opts.Logger.With().Str("component", "importer").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (i *Importer) WithClock(now func() time.Time) *Importer {
	i.now = now
	return i
}

// WithIDGenerator sets the function that assigns trade IDs.
func (i *Importer) WithIDGenerator(newID func() string) *Importer {
	i.newID = newID
	return i
}

// Import parses req.CSV and stores every valid row that the account does not hold yet.
// Validation errors are returned in the summary, not as an error.
// A file-level parse failure or a storage failure returns ErrImportFailed
// together with the summary collected so far.
func (i *Importer) Import(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	start := i.now()
	if req.AccountID == "" {
		return nil, fmt.Errorf("%w: account id is required", storage.ErrInvalidInput)
	}
	log := i.log.With().Str("account_id", req.AccountID).Logger()

	result := i.parser.Parse(req.CSV, req.Mapping, req.Defaults)
	summary := &ImportSummary{
		Errors:   result.Errors,
		Rejected: rejectedRows(result.Errors),
		TradeIDs: []string{},
	}
	for _, e := range result.Errors {
		log.Debug().Int("row", e.Row).Str("field", string(e.Field)).Msg(e.Message)
		if i.metrics != nil {
			i.metrics.RecordRowError(string(e.Field))
		}
	}

	if fileErr, ok := fileError(result.Errors); ok {
		log.Warn().Str("reason", fileErr.Message).Msg("import rejected")
		i.record(observability.StatusFileError, summary, start)
		return summary, fmt.Errorf("%w: %s", ErrImportFailed, fileErr.Message)
	}

	importedAt := i.now().UnixMilli()
	occurrences := make(map[string]int, len(result.Rows))
	for _, row := range result.Rows {
		base := idhash.ComputeTradeFingerprint(req.AccountID, row)
		fp := idhash.ComputeOccurrenceFingerprint(base, occurrences[base])
		occurrences[base]++

		exists, err := i.store.ExistsFingerprint(ctx, req.AccountID, fp)
		if err != nil {
			i.record(observability.StatusFailed, summary, start)
			return summary, fmt.Errorf("%w: check fingerprint: %w", ErrImportFailed, err)
		}
		if exists {
			summary.Duplicates++
			continue
		}

		trade := &domain.Trade{
			ID:          i.newID(),
			UserID:      req.UserID,
			AccountID:   req.AccountID,
			Fingerprint: fp,
			ImportedAt:  importedAt,
			ParsedTrade: row,
		}
		if err := i.store.Insert(ctx, trade); err != nil {
			// Lost a race with a concurrent import of the same row
			if errors.Is(err, storage.ErrDuplicateKey) {
				summary.Duplicates++
				continue
			}
			i.record(observability.StatusFailed, summary, start)
			return summary, fmt.Errorf("%w: insert trade: %w", ErrImportFailed, err)
		}
		summary.Imported++
		summary.TradeIDs = append(summary.TradeIDs, trade.ID)
	}

	log.Info().
		Int("rows", len(result.Rows)).
		Int("imported", summary.Imported).
		Int("duplicates", summary.Duplicates).
		Int("errors", len(summary.Errors)).
		Msg("import finished")
	i.record(observability.StatusOK, summary, start)

	return summary, nil
}

func (i *Importer) record(status string, s *ImportSummary, start time.Time) {
	if i.metrics == nil {
		return
	}
	end := i.now()
	i.metrics.RecordImport(status, s.Imported, s.Duplicates, s.Rejected, end.Sub(start).Seconds(), end.Unix())
}

// fileError returns the file-level error, if the parser produced one.
func fileError(errs []domain.RowError) (domain.RowError, bool) {
	for _, e := range errs {
		if e.Field == domain.FieldFile {
			return e, true
		}
	}
	return domain.RowError{}, false
}

// rejectedRows counts distinct rows with at least one error.
func rejectedRows(errs []domain.RowError) int {
	rows := make(map[int]struct{}, len(errs))
	for _, e := range errs {
		if e.Row > 0 {
			rows[e.Row] = struct{}{}
		}
	}
	return len(rows)
}
