package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerbook/internal/ledger"
	"github.com/cleared-dev/ledgerbook/internal/model"
)

type chartAccount struct {
	Name  string            `json:"name"`
	Type  model.AccountType `json:"type"`
	Title string            `json:"title"`
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.book.Chart()
	names := c.Names()
	out := make([]chartAccount, 0, len(names))
	for _, n := range names {
		t, _ := c.AccountType(n)
		out = append(out, chartAccount{Name: n, Type: t, Title: c.Title(n)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBalances(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.book.Balances())
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txns := s.book.Transactions()
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

type postEntriesRequest struct {
	Title   string        `json:"title"`
	Entries []model.Entry `json:"entries"`
}

type rejectedEntry struct {
	Index int         `json:"index"`
	Entry model.Entry `json:"entry"`
	Error string      `json:"error"`
}

type postEntriesResponse struct {
	Transaction model.Transaction `json:"transaction"`
	Rejected    []rejectedEntry   `json:"rejected"`
}

// postEntries records a batch. Valid entries are kept even when others
// are rejected; the rejects are listed in the response.
func (s *Server) postEntries(w http.ResponseWriter, r *http.Request) {
	var req postEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "no entries")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.book.PostBatch(r.Context(), req.Title, req.Entries)
	var be *ledger.BatchError
	if err != nil && (txn.ID == "" || !errors.As(err, &be)) {
		fail(w, r, err)
		return
	}
	resp := postEntriesResponse{Transaction: txn, Rejected: []rejectedEntry{}}
	if be != nil {
		for _, rej := range be.Rejected {
			resp.Rejected = append(resp.Rejected, rejectedEntry{Index: rej.Index, Entry: rej.Entry, Error: rej.Err.Error()})
		}
	}
	s.changed(r.Context(), fmt.Sprintf("post: %s %s", txn.ID, txn.Title))
	writeJSON(w, http.StatusCreated, resp)
}

type postCompoundRequest struct {
	Title string `json:"title"`
	model.CompoundEntry
}

func (s *Server) postCompound(w http.ResponseWriter, r *http.Request) {
	var req postCompoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.book.PostCompound(r.Context(), req.Title, req.CompoundEntry)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.changed(r.Context(), fmt.Sprintf("post: %s %s", txn.ID, txn.Title))
	writeJSON(w, http.StatusCreated, txn)
}

type postOperationRequest struct {
	Title  string          `json:"title"`
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) postOperation(w http.ResponseWriter, r *http.Request) {
	var req postOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.book.PostOperation(r.Context(), req.Title, chi.URLParam(r, "name"), req.Amount)
	if err != nil {
		fail(w, r, err)
		return
	}
	s.changed(r.Context(), fmt.Sprintf("post: %s %s", txn.ID, txn.Title))
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) closePeriod(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.book.Close(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if txn.ID == "" {
		writeJSON(w, http.StatusOK, txn)
		return
	}
	s.changed(r.Context(), fmt.Sprintf("close: %s", txn.ID))
	writeJSON(w, http.StatusCreated, txn)
}
