package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentapply/internal/session"
	"rentapply/internal/storage"
	"rentapply/internal/workflow"
	"rentapply/pkg/types"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}

	resp := errorResponse{Error: workflow.UserMessage(err)}

	var verr *workflow.ValidationError
	var pverr *workflow.PaymentValidationError
	switch {
	case errors.As(err, &verr):
		resp.Fields = verr.Fields
	case errors.As(err, &pverr):
		resp.Fields = map[string]string{pverr.Field: pverr.Message}
	}

	s.writeJSON(w, status, resp)
}

func (s *Service) badRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func errorStatus(err error) int {
	var verr *workflow.ValidationError
	var pverr *workflow.PaymentValidationError
	var berr *workflow.BackendError
	var perr *workflow.ProcessorError

	switch {
	case errors.As(err, &verr), errors.As(err, &pverr), errors.Is(err, workflow.ErrAgreementRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrInFlight),
		errors.Is(err, session.ErrLocked),
		errors.Is(err, workflow.ErrApplicationBound),
		errors.Is(err, workflow.ErrAlreadyApplied),
		errors.Is(err, workflow.ErrAlreadyPaid),
		errors.Is(err, types.ErrDuplicateApplication):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrMissingContext),
		errors.Is(err, workflow.ErrNoApplication),
		errors.Is(err, workflow.ErrNoFiles),
		errors.Is(err, workflow.ErrUnknownCategory),
		errors.Is(err, workflow.ErrInvalidStep),
		errors.Is(err, workflow.ErrNoContract):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, types.ErrPropertyNotFound),
		errors.Is(err, types.ErrApplicationNotFound),
		errors.Is(err, types.ErrContractNotFound),
		errors.Is(err, types.ErrDocumentNotFound),
		errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.As(err, &berr), errors.As(err, &perr), errors.Is(err, workflow.ErrMissingClientSecret):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
