package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"tally/internal/core"
	"tally/internal/editor"
	"tally/internal/gateway"
)

// draftRequest is the wire form of an editor draft. Amount accepts a
// JSON number or a quoted decimal string.
type draftRequest struct {
	Date          core.Date  `json:"date"`
	Amount        core.Money `json:"amount"`
	Kind          core.Kind  `json:"kind"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	Counterparty  string     `json:"counterparty"`
	PaymentMethod string     `json:"paymentMethod"`
	PaymentDetail string     `json:"paymentDetail"`
	AccountUsed   string     `json:"accountUsed"`
}

func (d draftRequest) draft() editor.Draft {
	return editor.Draft{
		Date:          d.Date,
		Amount:        d.Amount,
		Kind:          d.Kind,
		Category:      d.Category,
		Description:   d.Description,
		Counterparty:  d.Counterparty,
		PaymentMethod: d.PaymentMethod,
		PaymentDetail: d.PaymentDetail,
		AccountUsed:   d.AccountUsed,
	}
}

func decodeDraft(r *http.Request) (editor.Draft, error) {
	var req draftRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return editor.Draft{}, fmt.Errorf("decode request body: %w", err)
	}
	return req.draft(), nil
}

// criteriaFromQuery maps the filter query parameters onto a Criteria.
// Amount bounds pass through as raw strings; the filter treats
// unparsable bounds as absent. Malformed dates are a caller error.
func criteriaFromQuery(query url.Values) (core.Criteria, error) {
	criteria := core.Criteria{
		Search:               query.Get("search"),
		Period:               query.Get("period"),
		Category:             query.Get("category"),
		CounterpartyContains: query.Get("counterparty"),
		Kind:                 core.Kind(query.Get("kind")),
		MinAmount:            query.Get("minAmount"),
		MaxAmount:            query.Get("maxAmount"),
	}
	if raw := query.Get("dateFrom"); raw != "" {
		from, err := core.ParseDate(raw)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("dateFrom: %w", err)
		}
		criteria.DateFrom = from
	}
	if raw := query.Get("dateTo"); raw != "" {
		to, err := core.ParseDate(raw)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("dateTo: %w", err)
		}
		criteria.DateTo = to
	}
	return criteria, nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// statusForError maps domain failures onto HTTP statuses: rejected
// input is 422, a missing record is 404, everything else is a server
// fault.
func statusForError(err error) int {
	switch {
	case core.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
