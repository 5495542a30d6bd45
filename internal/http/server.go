// Package http serves the calendario JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"calendario/internal/calendar"
	"calendario/internal/core"
	applog "calendario/internal/log"
	"calendario/internal/middleware/trace"

	"github.com/google/uuid"
)

// ExpenseAPI is implemented by *services.ExpenseService.
type ExpenseAPI interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeactivateExpense(ctx context.Context, id uuid.UUID) error
	GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
}

// CalendarAPI is implemented by *services.CalendarService.
type CalendarAPI interface {
	Month(ctx context.Context, p calendar.Period) (core.MonthOverview, error)
	Year(ctx context.Context, year int) ([]core.MonthOverview, error)
}

// ReadyCheck reports whether dependencies are usable; nil means always ready.
type ReadyCheck func(ctx context.Context) error

type Server struct {
	http.Server
	expenses ExpenseAPI
	calendar CalendarAPI
	ready    ReadyCheck
	logger   *applog.Logger
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, logger *applog.Logger, expenses ExpenseAPI, cal CalendarAPI, ready ReadyCheck) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		expenses: expenses,
		calendar: cal,
		ready:    ready,
		logger:   logger,
		tracer:   trace.NewMiddleware(logger, clientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/calendar/{year}", s.handleYear)
	mux.HandleFunc("GET /api/calendar/{year}/{month}", s.handleMonth)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.tracer.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server; later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
