package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/csvimport"
	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/pnl"
	"trade-journal-lab/internal/storage"
	"trade-journal-lab/internal/storage/memory"
)

const journalCSV = "Date;Market;Outcome;Risk;RR;BE\n" +
	"2024-01-08;EURUSD;Win;1;2;no\n" +
	"2024-01-08;EURUSD;Win;1;2;no\n" +
	"2024-01-09;GBPUSD;Lose;1;2;\n" +
	"2024-13-45;NAS100;Win;1;2;\n"

var journalMapping = domain.Mapping{
	"Date":    domain.FieldTradeDate,
	"Market":  domain.FieldMarket,
	"Outcome": domain.FieldTradeOutcome,
	"Risk":    domain.FieldRiskPerTrade,
	"RR":      domain.FieldRiskRewardRatio,
	"BE":      domain.FieldBreakEven,
}

func f64(v float64) *float64 { return &v }

func fixedClock() time.Time {
	return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("trade-%d", n)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newTestImporter(store storage.TradeStore, m *observability.Metrics, log zerolog.Logger) *Importer {
	return NewImporter(ImporterOptions{
		Store:   store,
		Parser:  csvimport.NewParser(pnl.Default),
		Metrics: m,
		Logger:  log,
	}).WithClock(fixedClock).WithIDGenerator(sequentialIDs())
}

func importRequest(csv string) ImportRequest {
	return ImportRequest{
		UserID:    "user-1",
		AccountID: "acc-1",
		CSV:       csv,
		Mapping:   journalMapping,
		Defaults:  domain.ImportDefaults{AccountBalance: f64(10000)},
	}
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeStore()
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	imp := newTestImporter(store, m, zerolog.Nop())

	summary, err := imp.Import(ctx, importRequest(journalCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 1, summary.Rejected)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 5, summary.Errors[0].Row)
	assert.Equal(t, domain.FieldTradeDate, summary.Errors[0].Field)
	assert.Equal(t, []string{"trade-1", "trade-2", "trade-3"}, summary.TradeIDs)

	stored, err := store.GetByAccount(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, stored, 3)

	first := stored[0]
	assert.Equal(t, "user-1", first.UserID)
	assert.Equal(t, fixedClock().UnixMilli(), first.ImportedAt)
	assert.NotEmpty(t, first.Fingerprint)
	require.NotNil(t, first.CalculatedProfit)
	assert.Equal(t, 200.0, *first.CalculatedProfit)

	// Identical rows are kept apart
	assert.NotEqual(t, stored[0].Fingerprint, stored[1].Fingerprint)

	assert.Equal(t, 1.0, counterValue(t, m.ImportRunsTotal.WithLabelValues(observability.StatusOK)))
	assert.Equal(t, 3.0, counterValue(t, m.ImportRowsTotal.WithLabelValues("imported")))
	assert.Equal(t, 1.0, counterValue(t, m.ImportRowsTotal.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, counterValue(t, m.ImportRowErrorsTotal.WithLabelValues("trade_date")))
}

func TestImporter_ReimportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeStore()
	imp := newTestImporter(store, nil, zerolog.Nop())

	_, err := imp.Import(ctx, importRequest(journalCSV))
	require.NoError(t, err)

	again, err := imp.Import(ctx, importRequest(journalCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 3, again.Duplicates)
	assert.Empty(t, again.TradeIDs)

	// A third copy of the row is new
	extra := journalCSV + "2024-01-08;EURUSD;Win;1;2;no\n"
	third, err := imp.Import(ctx, importRequest(extra))
	require.NoError(t, err)
	assert.Equal(t, 1, third.Imported)
	assert.Equal(t, 3, third.Duplicates)

	stored, err := store.GetByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestImporter_SameFileOtherAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTradeStore()
	imp := newTestImporter(store, nil, zerolog.Nop())

	_, err := imp.Import(ctx, importRequest(journalCSV))
	require.NoError(t, err)

	req := importRequest(journalCSV)
	req.AccountID = "acc-2"
	summary, err := imp.Import(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Imported)
}

func TestImporter_FileError(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	imp := newTestImporter(memory.NewTradeStore(), m, zerolog.Nop())

	summary, err := imp.Import(context.Background(), importRequest("Date;Market\n"))
	assert.ErrorIs(t, err, ErrImportFailed)
	require.NotNil(t, summary)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, domain.FieldFile, summary.Errors[0].Field)
	assert.Equal(t, 0, summary.Rejected)

	assert.Equal(t, 1.0, counterValue(t, m.ImportRunsTotal.WithLabelValues(observability.StatusFileError)))
}

func TestImporter_MissingAccount(t *testing.T) {
	imp := newTestImporter(memory.NewTradeStore(), nil, zerolog.Nop())

	req := importRequest(journalCSV)
	req.AccountID = ""
	_, err := imp.Import(context.Background(), req)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

type failingStore struct {
	storage.TradeStore
	err error
}

func (s *failingStore) Insert(context.Context, *domain.Trade) error {
	return s.err
}

func TestImporter_StoreFailure(t *testing.T) {
	dbErr := errors.New("connection reset")
	store := &failingStore{TradeStore: memory.NewTradeStore(), err: dbErr}
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	imp := newTestImporter(store, m, zerolog.Nop())

	summary, err := imp.Import(context.Background(), importRequest(journalCSV))
	assert.ErrorIs(t, err, ErrImportFailed)
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, 0, summary.Imported)

	assert.Equal(t, 1.0, counterValue(t, m.ImportRunsTotal.WithLabelValues(observability.StatusFailed)))
}

func TestImporter_InsertRaceCountsAsDuplicate(t *testing.T) {
	store := &failingStore{TradeStore: memory.NewTradeStore(), err: storage.ErrDuplicateKey}
	imp := newTestImporter(store, nil, zerolog.Nop())

	summary, err := imp.Import(context.Background(), importRequest(journalCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 3, summary.Duplicates)
}

func TestImporter_Logging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	imp := newTestImporter(memory.NewTradeStore(), nil, log)

	_, err := imp.Import(context.Background(), importRequest(journalCSV))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"importer"`)
	assert.Contains(t, out, `"account_id":"acc-1"`)
	assert.Contains(t, out, `"field":"trade_date"`)
	assert.Contains(t, out, `"message":"import finished"`)
	assert.Contains(t, out, `"imported":3`)
}
