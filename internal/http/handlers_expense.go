package http

import (
	"net/http"

	applog "calendario/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.ListExpenses(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := decodeExpense(w, r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}

	created, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	s.logger.WithComponent(applog.ComponentExpense).InfoContext(r.Context(), "Expense created",
		applog.NewFields().
			WithExpense(created.ID.String(), created.Name, created.Category,
				created.Amount.StringFixed(2), string(created.PaymentFrequency)).
			WithOperation(applog.OpCreate).
			ToSlice()...)

	w.Header().Set("Location", "/api/expenses/"+created.ID.String())
	writeJSON(w, http.StatusCreated, newExpenseResponse(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, applog.OpParse, err)
		return
	}
	if err := s.expenses.DeactivateExpense(r.Context(), id); err != nil {
		s.writeError(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
