// Package http exposes the ledger engine as a JSON API. The presentation
// layer is a separate collaborator; these handlers only translate requests
// into engine calls and engine results into JSON.
//
// This file builds the JSON responses and maps engine errors onto HTTP
// status codes.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartledger/internal/backup"
	"smartledger/internal/core"
)

type errorBody struct {
	Error string `json:"error"`
}

type entryResponse struct {
	ID            int64  `json:"id"`
	Kind          string `json:"kind"`
	Category      string `json:"category"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Note          string `json:"note"`
	AttachmentRef string `json:"attachmentRef,omitempty"`
}

type summaryResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type trendBucketResponse struct {
	Bucket  string `json:"bucket"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func toEntryResponse(e core.Entry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		Kind:          string(e.Kind),
		Category:      e.Category,
		Amount:        e.Amount.Decimal(),
		Date:          e.Date,
		Note:          e.Note,
		AttachmentRef: e.AttachmentRef,
	}
}

// writeJSON sends v with the given status. Encoding failures are ignored;
// the status line has already been written by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeEngineError translates an engine error into a response. Validation
// and format errors are the caller's fault; everything else is a storage
// failure surfaced as 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errMalformedBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backup.ErrFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backup.ErrEmptyPayload):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyOwner,
		core.ErrInvalidKind,
		core.ErrEmptyCategory,
		core.ErrInvalidAmount,
		core.ErrInvalidDate,
		core.ErrInvalidOrder,
		core.ErrInvalidEntryID,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
