package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartledger/internal/core"
	"smartledger/internal/log"
)

// requireOwner resolves the authenticated owner or rejects the request.
// The engine never runs without an owner scope.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := ownerID(r)
	if owner == "" {
		writeError(w, http.StatusUnauthorized, "missing owner identity")
		return "", false
	}
	return owner, true
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.listEntries(w, r, owner)
	case http.MethodPost:
		s.createEntry(w, r, owner)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request, owner string) {
	filter, err := parseFilter(owner, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.ledger.ListEntries(r.Context(), filter)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List entries failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request, owner string) {
	entry, err := parseEntryBody(r, owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	id, err := s.ledger.CreateEntry(r.Context(), entry)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create entry failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}

	entry.ID = id
	writeJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateEntry(w, r, owner, id)
	case http.MethodDelete:
		s.deleteEntry(w, r, owner, id)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request, owner string, id int64) {
	entry, err := parseEntryBody(r, owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	entry.ID = id

	updated, err := s.ledger.UpdateEntry(r.Context(), entry)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Update entry failed",
			log.FieldOwnerID, owner,
			log.FieldEntryID, id,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request, owner string, id int64) {
	if err := s.ledger.DeleteEntry(r.Context(), id, owner); err != nil {
		s.logger.ErrorContext(r.Context(), "Delete entry failed",
			log.FieldOwnerID, owner,
			log.FieldEntryID, id,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChartSummary(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	start, end := chartRange(r.URL.Query())

	summary, err := s.ledger.Summary(r.Context(), owner, start, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  summary.TotalIncome.Decimal(),
		TotalExpense: summary.TotalExpense.Decimal(),
	})
}

func (s *Server) handleChartBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	start, end := chartRange(r.URL.Query())

	breakdown, err := s.ledger.ExpenseBreakdown(r.Context(), owner, start, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := make([]categoryAmountResponse, len(breakdown))
	for i, ca := range breakdown {
		resp[i] = categoryAmountResponse{Category: ca.Category, Amount: ca.Amount.Decimal()}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChartTrend(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	start, end := chartRange(r.URL.Query())

	trend, err := s.ledger.Trend(r.Context(), owner, start, end)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	resp := make([]trendBucketResponse, len(trend))
	for i, b := range trend {
		resp[i] = trendBucketResponse{
			Bucket:  b.Key,
			Income:  b.Income.Decimal(),
			Expense: b.Expense.Decimal(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.exportBackup(w, r, owner)
	case http.MethodPost:
		s.importBackup(w, r, owner)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) exportBackup(w http.ResponseWriter, r *http.Request, owner string) {
	doc, err := s.ledger.Export(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger-backup.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) importBackup(w http.ResponseWriter, r *http.Request, owner string) {
	doc, err := readImportBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported, err := s.ledger.Import(r.Context(), owner, doc)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Import rejected",
			log.FieldOwnerID, owner,
			log.FieldError, err)
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": core.SuggestedCategories})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
		"rate_limiter": map[string]any{
			"active_clients": s.rateLimiter.activeClients(),
		},
	})
}
