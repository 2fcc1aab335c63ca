package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/target/sla-summary/internal/errors"
)

// StatusForError maps an application error code to its HTTP status.
func StatusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError writes err as a JSON error body keyed by its application
// error code. Internal errors get a generic message so storage details stay
// out of responses.
func WriteAppError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeInternal)
	}
	if status == http.StatusInternalServerError {
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New("internal error")})
		return
	}
	WriteError(w, ErrorParams{Code: status, ErrCode: code, Field: apperrors.GetField(err), Err: err})
}
