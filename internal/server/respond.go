package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// maxBodyBytes bounds request bodies. Analysis images arrive inline as
// base64 data URIs, so the limit sits above integrations.MaxImageBytes.
const maxBodyBytes = 32 << 20

type errorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err to a status and writes an errorResponse. Errors
// without a code are reported as INTERNAL_ERROR and their text is logged,
// not returned.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.GetCode(err)
	msg := errs.UserMessage(err)
	if code == "" {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		code, msg = errs.ErrCodeInternal, "internal error"
	}
	writeJSON(w, statusFor(code), errorResponse{Code: code, Message: msg})
}

func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidField, errs.ErrCodeInvalidValue, errs.ErrCodeInvalidImage:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound, errs.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errs.ErrCodeFlowInFlight:
		return http.StatusConflict
	case errs.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errs.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errs.ErrCodeNetwork:
		return http.StatusBadGateway
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errs.ErrCodeSessionLimit:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON body into v. An empty body is allowed when
// optional is set and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
