package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cleared-dev/ledgerbook/internal/accounts"
	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/logging"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps err to a status, logs server errors and writes the response.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := mapError(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func mapError(err error) int {
	switch {
	case errors.Is(err, book.ErrAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, accounts.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrUnknownAccount),
		errors.Is(err, model.ErrInvalidAmount),
		errors.Is(err, model.ErrUnbalanced),
		errors.Is(err, book.ErrNothingPosted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
