package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tally/internal/auth"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
)

// mutationResponse pairs the affected record with the reloaded view so
// clients never need a follow-up fetch after a write.
type mutationResponse struct {
	Transaction core.Transaction `json:"transaction"`
	services.View
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ownerID := auth.OwnerFromContext(r.Context())
	view := s.service.View(r.Context(), ownerID, criteria, time.Now())
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ownerID := auth.OwnerFromContext(r.Context())
	totals, stale := s.service.Summary(r.Context(), ownerID, criteria, time.Now())
	respondJSON(w, http.StatusOK, struct {
		Totals core.Totals `json:"totals"`
		Stale  bool        `json:"stale,omitempty"`
	}{Totals: totals, Stale: stale})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeDraft(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ownerID := auth.OwnerFromContext(r.Context())
	tx, view, err := s.service.Create(r.Context(), ownerID, draft)
	if err != nil {
		s.logMutationFailure(r, "create failed", err)
		respondError(w, statusForError(err), err)
		return
	}
	respondJSON(w, http.StatusCreated, mutationResponse{Transaction: tx, View: view})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	draft, err := decodeDraft(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ownerID := auth.OwnerFromContext(r.Context())
	tx, view, err := s.service.Update(r.Context(), ownerID, id, draft)
	if err != nil {
		s.logMutationFailure(r, "update failed", err)
		respondError(w, statusForError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, mutationResponse{Transaction: tx, View: view})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := recordID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	ownerID := auth.OwnerFromContext(r.Context())
	view, err := s.service.Delete(r.Context(), ownerID, id)
	if err != nil {
		s.logMutationFailure(r, "delete failed", err)
		respondError(w, statusForError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		Categories []string `json:"categories"`
	}{Categories: core.Categories()})
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		PaymentMethods []string `json:"paymentMethods"`
	}{PaymentMethods: core.PaymentMethods()})
}

func recordID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (s *Server) logMutationFailure(r *http.Request, msg string, err error) {
	s.logger.WarnContext(r.Context(), msg,
		log.FieldPath, r.URL.Path,
		log.FieldOwnerID, auth.OwnerFromContext(r.Context()),
		log.FieldError, err)
}
