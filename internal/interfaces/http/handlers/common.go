// Package handlers implements the HTTP handlers of the continuity API.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/pkg/errors"
)

// maxJSONBody bounds small JSON request bodies (filters, document input,
// geocode queries).  Uploads and zones use their own limits.
const maxJSONBody = 64 << 10

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps an error to its status code and JSON body.  Server-side
// failures are logged and their message replaced by the code's default.
func writeAppError(w http.ResponseWriter, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	if appErr, ok := errors.AsAppError(err); ok && status < http.StatusInternalServerError {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", logging.String("code", string(code)), logging.Err(err))
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeBadRequest, "malformed JSON body")
	}
	return nil
}

// readBody reads at most limit bytes.  Larger bodies are rejected rather
// than truncated.
func readBody(r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "request body could not be read")
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeBadRequest, "request body too large").
			WithDetail(fmt.Sprintf("limit is %d bytes", limit))
	}
	return data, nil
}

// writeFile sends a download with its file name in Content-Disposition.
func writeFile(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

//Personal.AI order the ending
