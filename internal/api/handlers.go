package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trade-journal-lab/internal/journal"
	"trade-journal-lab/internal/reporting"
	"trade-journal-lab/internal/storage"
)

// UserHeader optionally carries the id of the user who owns the imported trades.
const UserHeader = "X-User-ID"

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.sendJSONError(w, "CSV exceeds upload limit", http.StatusRequestEntityTooLarge)
			return
		}
		h.sendJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	summary, err := h.importer.Import(r.Context(), journal.ImportRequest{
		UserID:    r.Header.Get(UserHeader),
		AccountID: accountID,
		CSV:       string(body),
		Mapping:   h.profile.Mapping(),
		Defaults:  h.defaults,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, summary)
	case errors.Is(err, journal.ErrImportFailed) && isFileError(summary):
		writeJSON(w, http.StatusUnprocessableEntity, summary)
	case errors.Is(err, storage.ErrInvalidInput):
		h.sendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Str("account_id", accountID).Msg("import failed")
		h.sendJSONError(w, "import failed", http.StatusInternalServerError)
	}
}

func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	q := r.URL.Query()

	balance := 0.0
	if h.defaults.AccountBalance != nil {
		balance = *h.defaults.AccountBalance
	}
	if raw := q.Get("balance"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.sendJSONError(w, "invalid balance", http.StatusBadRequest)
			return
		}
		balance = v
	}

	executedOnly := false
	if raw := q.Get("executed_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.sendJSONError(w, "invalid executed_only", http.StatusBadRequest)
			return
		}
		executedOnly = v
	}

	report, err := h.analyzer.BuildReport(r.Context(), journal.ReportRequest{
		AccountID:      accountID,
		AccountBalance: balance,
		ExecutedOnly:   executedOnly,
		Intervals:      h.profile.Intervals,
	})
	if err != nil {
		if errors.Is(err, journal.ErrNoTrades) {
			h.sendJSONError(w, "account has no trades", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("account_id", accountID).Msg("build report failed")
		h.sendJSONError(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	if q.Get("snapshot") == "true" {
		if _, err := h.analyzer.SaveSnapshot(r.Context(), report); err != nil {
			if errors.Is(err, journal.ErrSnapshotsDisabled) {
				h.sendJSONError(w, "snapshots are not configured", http.StatusNotImplemented)
				return
			}
			h.log.Error().Err(err).Str("account_id", accountID).Msg("save snapshot failed")
			h.sendJSONError(w, "failed to save snapshot", http.StatusInternalServerError)
			return
		}
	}

	switch strings.ToLower(q.Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, report)
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, reporting.RenderMarkdown(report))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, reporting.RenderCSV(report))
	default:
		h.sendJSONError(w, "unknown format", http.StatusBadRequest)
	}
}

func (h *handler) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	dimension := chi.URLParam(r, "dimension")

	rows, err := h.analyzer.LatestSnapshot(r.Context(), accountID, dimension)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, rows)
	case errors.Is(err, storage.ErrNotFound):
		h.sendJSONError(w, "no snapshot", http.StatusNotFound)
	case errors.Is(err, journal.ErrSnapshotsDisabled):
		h.sendJSONError(w, "snapshots are not configured", http.StatusNotImplemented)
	default:
		h.log.Error().Err(err).Str("account_id", accountID).Msg("load snapshot failed")
		h.sendJSONError(w, "failed to load snapshot", http.StatusInternalServerError)
	}
}

// isFileError reports whether the import stopped on an unreadable file rather than a store failure.
func isFileError(s *journal.ImportSummary) bool {
	return s != nil && len(s.Errors) == 1 && s.Errors[0].Row == 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *handler) sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	h.log.Warn().Str("reason", message).Int("status", statusCode).Msg("sending JSON error to client")
	writeJSON(w, statusCode, map[string]string{"error": message})
}
