package server

import "net/http"

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.book.TrialBalance())
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, err := s.book.BalanceSheet()
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) incomeStatement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	is, err := s.book.IncomeStatement()
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, is)
}
