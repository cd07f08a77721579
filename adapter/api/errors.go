package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	"github.com/casetrack/casetrack/internal/docrequest"
	invDomain "github.com/casetrack/casetrack/internal/investigation/domain"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
)

// errorResponse is the JSON body for rejected requests. ActualState is only
// set for stale-state conflicts so clients can refresh and retry.
type errorResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	ActualState string `json:"actual_state,omitempty"`
}

// writeError writes a plain JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// respondError maps application errors to HTTP responses. Lifecycle
// rejections map by kind; domain sentinels get their conventional codes;
// anything else is a 500 with the detail kept out of the response.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var le *lifecycle.Error
	if errors.As(err, &le) {
		switch le.Kind {
		case lifecycle.KindCaseNotFound:
			writeError(w, http.StatusNotFound, le.Message)
		case lifecycle.KindStaleState:
			writeJSON(w, http.StatusConflict, errorResponse{
				Error:       "stale_state",
				Message:     le.Message,
				ActualState: le.ActualState.String(),
			})
		case lifecycle.KindInvalidEdge:
			writeJSON(w, http.StatusConflict, errorResponse{
				Error:   "invalid_transition",
				Message: le.Message,
			})
		case lifecycle.KindUnauthorized:
			writeError(w, http.StatusForbidden, le.Message)
		case lifecycle.KindPreconditionFailed:
			writeError(w, http.StatusUnprocessableEntity, le.Message)
		case lifecycle.KindDownstreamFailure:
			logger.Error("downstream failure", "error", err)
			writeError(w, http.StatusBadGateway, le.Message)
		default:
			logger.Error("unclassified lifecycle error", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	switch {
	case errors.Is(err, casefile.ErrCaseNotFound),
		errors.Is(err, courtDomain.ErrSubmissionNotFound),
		errors.Is(err, reopenDomain.ErrRequestNotFound),
		errors.Is(err, invDomain.ErrRecordNotFound),
		errors.Is(err, docrequest.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, courtDomain.ErrNoPendingSubmission),
		errors.Is(err, courtDomain.ErrSubmissionSettled),
		errors.Is(err, reopenDomain.ErrRequestDecided),
		errors.Is(err, reopenDomain.ErrPendingExists),
		errors.Is(err, docrequest.ErrAlreadyHandled):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, reopenDomain.ErrEmptyPoliceReason),
		errors.Is(err, invDomain.ErrEmptyTitle),
		errors.Is(err, invDomain.ErrEmptyName),
		errors.Is(err, docrequest.ErrEmptyDocType),
		errors.Is(err, docrequest.ErrEmptyFileURL),
		errors.Is(err, docrequest.ErrEmptyRejectNote):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
