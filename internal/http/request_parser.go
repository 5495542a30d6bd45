package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"calendario/internal/calendar"
	"calendario/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 64 << 10

var (
	errMalformedBody = errors.New("malformed request body")
	errBadPath       = errors.New("invalid path parameter")
)

// flexAmount accepts a JSON number or a string such as "12,50".
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = flexAmount(n.String())
	return nil
}

// expenseRequest is the JSON body of POST /api/expenses.
type expenseRequest struct {
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Amount           flexAmount `json:"amount"`
	OriginalAmount   flexAmount `json:"original_amount"`
	OriginalCurrency string     `json:"original_currency"`
	ExchangeRate     flexAmount `json:"exchange_rate"`
	Type             string     `json:"type"`
	StartDate        string     `json:"start_date"`
	PaymentFrequency string     `json:"payment_frequency"`
	Installments     int        `json:"installments"`
	DueDay           int        `json:"due_day"`
	Important        bool       `json:"important"`
}

// decodeExpense reads and converts the request body. Syntax errors wrap
// errMalformedBody; bad field values wrap the matching core sentinel.
func decodeExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req expenseRequest
	if err := dec.Decode(&req); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.Expense{}, fmt.Errorf("%w: trailing data", errMalformedBody)
	}
	return req.toExpense()
}

func (req expenseRequest) toExpense() (core.Expense, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.Expense{}, err
	}

	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %q", core.ErrInvalidStartDate, req.StartDate)
	}

	e := core.Expense{
		Name:             sanitizeInput(req.Name),
		Category:         sanitizeInput(req.Category),
		Amount:           amount,
		OriginalCurrency: strings.ToUpper(sanitizeInput(req.OriginalCurrency)),
		Type:             core.ExpenseType(strings.ToUpper(strings.TrimSpace(req.Type))),
		StartDate:        start,
		PaymentFrequency: core.Frequency(strings.ToUpper(strings.TrimSpace(req.PaymentFrequency))),
		Installments:     req.Installments,
		DueDay:           req.DueDay,
		Important:        req.Important,
	}

	if req.OriginalAmount != "" {
		if e.OriginalAmount, err = core.ParseAmount(string(req.OriginalAmount)); err != nil {
			return core.Expense{}, fmt.Errorf("original amount: %w", err)
		}
	}
	if req.ExchangeRate != "" {
		rate, err := decimal.NewFromString(strings.TrimSpace(string(req.ExchangeRate)))
		if err != nil || !rate.IsPositive() {
			return core.Expense{}, fmt.Errorf("exchange rate: %w", core.ErrInvalidAmount)
		}
		e.ExchangeRate = rate
	}
	return e, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id", errBadPath)
	}
	return id, nil
}

func pathYear(r *http.Request) (int, error) {
	y, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("%w: year must be 1-9999", errBadPath)
	}
	return y, nil
}

// pathPeriod parses {year}/{month} with a 1-12 month.
func pathPeriod(r *http.Request) (calendar.Period, error) {
	y, err := pathYear(r)
	if err != nil {
		return calendar.Period{}, err
	}
	m, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || m < 1 || m > 12 {
		return calendar.Period{}, fmt.Errorf("%w: month must be 1-12", errBadPath)
	}
	return calendar.Period{Year: y, MonthIndex: m - 1}, nil
}
