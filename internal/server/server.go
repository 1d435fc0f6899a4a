// Package server exposes a book over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/ledgerbook/internal/book"
	"github.com/cleared-dev/ledgerbook/internal/logging"
)

// ChangeHook runs after a mutation has been recorded, with a one-line
// description of the change.
type ChangeHook func(ctx context.Context, message string)

// Server serves one book. Every handler touching the book holds mu, since
// a Book is not safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	book     *book.Book
	router   chi.Router
	addr     string
	logger   *slog.Logger
	onChange ChangeHook
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithChangeHook registers a hook called after each recorded mutation.
func WithChangeHook(h ChangeHook) Option {
	return func(s *Server) { s.onChange = h }
}

func New(b *book.Book, addr string, opts ...Option) *Server {
	r := chi.NewRouter()
	s := &Server{book: b, router: r, addr: addr, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/chart", s.getChart)
		r.Get("/balances", s.getBalances)

		r.Get("/transactions", s.listTransactions)
		r.Post("/entries", s.postEntries)
		r.Post("/compound", s.postCompound)
		r.Post("/operations/{name}", s.postOperation)
		r.Post("/close", s.closePeriod)

		r.Get("/reports/trial-balance", s.trialBalance)
		r.Get("/reports/balance-sheet", s.balanceSheet)
		r.Get("/reports/income-statement", s.incomeStatement)
	})
	return s
}

// requestLogger attaches a request-scoped logger and logs each request
// when it completes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), l)))
		l.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) changed(ctx context.Context, message string) {
	if s.onChange != nil {
		s.onChange(ctx, message)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("ledgerbook server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}
