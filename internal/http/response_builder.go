package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"calendario/internal/core"
	applog "calendario/internal/log"
	"calendario/internal/middleware/trace"
	"calendario/internal/services"
)

type expenseResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	Amount           string `json:"amount"`
	OriginalAmount   string `json:"original_amount,omitempty"`
	OriginalCurrency string `json:"original_currency,omitempty"`
	ExchangeRate     string `json:"exchange_rate,omitempty"`
	Type             string `json:"type"`
	StartDate        string `json:"start_date"`
	PaymentFrequency string `json:"payment_frequency"`
	Installments     int    `json:"installments"`
	DueDay           int    `json:"due_day,omitempty"`
	Important        bool   `json:"important"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:               e.ID.String(),
		Name:             e.Name,
		Category:         e.Category,
		Amount:           core.FormatAmount(e.Amount),
		OriginalCurrency: e.OriginalCurrency,
		Type:             string(e.Type),
		StartDate:        e.StartDate.String(),
		PaymentFrequency: string(e.PaymentFrequency),
		Installments:     e.Installments,
		DueDay:           e.DueDay,
		Important:        e.Important,
	}
	if !e.OriginalAmount.IsZero() {
		resp.OriginalAmount = core.FormatAmount(e.OriginalAmount)
	}
	if !e.ExchangeRate.IsZero() {
		resp.ExchangeRate = e.ExchangeRate.String()
	}
	return resp
}

type categoryResponse struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type paymentResponse struct {
	ExpenseID    string `json:"expense_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Type         string `json:"type"`
	Number       int    `json:"number"`
	Installments int    `json:"installments"`
	Remaining    int    `json:"remaining"`
	Amount       string `json:"amount"`
	DueDate      string `json:"due_date"`
	Important    bool   `json:"important"`
}

type overviewResponse struct {
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Total      string             `json:"total"`
	ByCategory []categoryResponse `json:"by_category"`
	Items      []paymentResponse  `json:"items"`
}

func newOverviewResponse(ov core.MonthOverview) overviewResponse {
	resp := overviewResponse{
		Year:       ov.Year,
		Month:      ov.Month,
		Total:      core.FormatAmount(ov.Total),
		ByCategory: make([]categoryResponse, 0, len(ov.ByCategory)),
		Items:      make([]paymentResponse, 0, len(ov.Items)),
	}
	for _, c := range ov.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryResponse{Name: c.Name, Amount: core.FormatAmount(c.Amount)})
	}
	for _, it := range ov.Items {
		resp.Items = append(resp.Items, paymentResponse{
			ExpenseID:    it.ExpenseID.String(),
			Name:         it.Name,
			Category:     it.Category,
			Type:         string(it.Type),
			Number:       it.Number,
			Installments: it.Installments,
			Remaining:    it.Remaining,
			Amount:       core.FormatAmount(it.Amount),
			DueDate:      it.DueDate.String(),
			Important:    it.Important,
		})
	}
	return resp
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var validationErrors = []error{
	core.ErrEmptyName,
	core.ErrNameTooLong,
	core.ErrEmptyCategory,
	core.ErrInvalidAmount,
	core.ErrInvalidStartDate,
	core.ErrInvalidType,
	core.ErrInvalidFrequency,
	core.ErrNegativeInstallments,
	core.ErrInvalidDueDay,
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody), errors.Is(err, errBadPath), errors.Is(err, services.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrExpenseNotFound):
		return http.StatusNotFound
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err with its mapped status. Internal errors are logged
// and their message is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		fields := applog.NewFields().WithRequestID(trace.GetRequestID(r.Context()))
		applog.NewStructuredLogger(s.logger).LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, fields)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
