package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/planner"
)

const (
	CodeValidation    = "validation"
	CodeConflict      = "conflict"
	CodeStateConflict = "state_conflict"
	CodeUpstream      = "upstream_error"
	CodeInternal      = "internal"
)

type successEnvelope struct {
	Data any `json:"data"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// errBadRequest marks client payload problems that never reach the planner.
type errBadRequest struct {
	msg     string
	details any
}

func (e *errBadRequest) Error() string { return e.msg }

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successEnvelope{Data: data})
}

func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	status, payload := classify(err)
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"error_code": payload.Code, "status": status})
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}
	writeJSON(w, status, errorEnvelope{Error: payload})
}

func classify(err error) (int, apiError) {
	var bad *errBadRequest
	if errors.As(err, &bad) {
		return http.StatusBadRequest, apiError{Code: CodeValidation, Message: bad.msg, Details: bad.details}
	}

	msg := planner.UserMessage(err)

	var verr *inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, apiError{Code: CodeValidation, Message: msg, Details: verr.Fields}
	case errors.Is(err, inventory.ErrInvalidInput):
		return http.StatusBadRequest, apiError{Code: CodeValidation, Message: msg}
	case errors.Is(err, planner.ErrBusy):
		return http.StatusConflict, apiError{Code: CodeConflict, Message: msg}
	case errors.Is(err, planner.ErrNoInventoryPlan), errors.Is(err, planner.ErrNoShoppingPlan):
		return http.StatusConflict, apiError{Code: CodeStateConflict, Message: msg}
	case llm.KindOf(err) != "":
		return http.StatusBadGateway, apiError{Code: CodeUpstream, Message: msg}
	}
	return http.StatusInternalServerError, apiError{Code: CodeInternal, Message: msg}
}

func decodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return &errBadRequest{msg: "invalid request body", details: map[string]any{"error": err.Error()}}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
