package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/barrace/pkg/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidDataset,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidIndex, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeStatus(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "request body too large")
		return
	}

	code := errors.GetCode(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "err", err)
		writeStatus(w, status, string(errors.ErrCodeInternal), "internal error")
		return
	}
	writeStatus(w, status, string(code), errors.UserMessage(err))
}

func writeStatus(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
