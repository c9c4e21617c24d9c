package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "clubhouse/pkg/errors"
)

const HeaderTotalCount = "X-Total-Count"

type ErrorResponse struct {
	Code    string         `json:"code"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err using the status of the AppError it wraps. Anything
// that is not an AppError is reported as a generic internal error.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperrors.AsAppError(err)
	resp := ErrorResponse{
		Code:    appErr.Code,
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		resp = ErrorResponse{Code: apperrors.CodeInternal, Error: "Internal server error"}
	}
	_ = WriteJSON(w, appErr.StatusCode(), resp)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteList writes items as a bare array and reports the unpaginated total in
// the X-Total-Count header.
func WriteList(w http.ResponseWriter, items any, totalCount int64) error {
	w.Header().Set(HeaderTotalCount, strconv.FormatInt(totalCount, 10))
	return WriteJSON(w, http.StatusOK, items)
}
