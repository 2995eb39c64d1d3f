package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"fjacquet/expense-categorizer/internal/apperror"
	"fjacquet/expense-categorizer/internal/categorizer"
	"fjacquet/expense-categorizer/internal/ledger"
	"fjacquet/expense-categorizer/internal/logging"
	"fjacquet/expense-categorizer/internal/models"
)

const (
	maxBodyBytes         = 1 << 20
	internalErrorMessage = "Internal error"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// writeError maps err to a status code. Unexpected failures are logged and
// answered without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperror.ValidationError
	var nf *apperror.NotFoundError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	default:
		s.logger.WithError(err).WithFields(
			logging.Field{Key: logging.FieldMethod, Value: r.Method},
			logging.Field{Key: logging.FieldPath, Value: r.URL.Path},
		).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
	}
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.resolver.Resolve(r.Context(), categorizer.Request{UserID: req.UserID, RawText: req.RawText})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newClassifyResponse(result))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decode(w, r, &req) {
		return
	}
	expense, err := s.ledger.Save(r.Context(), ledger.SaveRequest{
		UserID:   req.UserID,
		Amount:   req.Amount,
		Category: req.Category,
		RawText:  req.RawText,
		Date:     req.Date,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{OK: true, ExpenseID: expense.ID})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decode(w, r, &req) {
		return
	}
	items, err := s.ledger.List(r.Context(), models.ExpenseQuery{
		UserID:   req.UserID,
		Start:    req.Start,
		End:      req.End,
		Category: req.Category,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: newExpenseDTOs(items)})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.ledger.Edit(r.Context(), req.ExpenseID, req.update()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.ledger.Delete(r.Context(), req.ExpenseID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	var req monthlyRequest
	if !decode(w, r, &req) {
		return
	}
	summary, err := s.ledger.MonthlySummary(r.Context(), req.UserID, req.Month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMonthlyResponse(summary))
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decode(w, r, &req) {
		return
	}
	summary, err := s.ledger.CategorySummary(r.Context(), req.UserID, req.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{
		Items: newExpenseDTOs(summary.Items),
		Total: summary.Total.InexactFloat64(),
	})
}
