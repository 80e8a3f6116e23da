// Package respond writes the uniform JSON envelope shared by every route:
// {success:true, data:...} on success, {success:false, error, message} on
// failure.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"slackbridge/internal/apperr"
)

// Writer renders responses. Debug controls whether error bodies carry the
// underlying error details; it must stay off in production.
type Writer struct {
	Debug  bool
	Logger *slog.Logger
}

// New creates a response writer.
func New(debug bool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Debug: debug, Logger: logger}
}

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool        `json:"success"`
	Error   apperr.Code `json:"error"`
	Message string      `json:"message"`
	Details string      `json:"details,omitempty"`
}

// JSON writes an arbitrary body with the given status.
func (wr *Writer) JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		wr.Logger.Error("writing response", "err", err)
	}
}

// Success writes a 200 success envelope around data.
func (wr *Writer) Success(w http.ResponseWriter, data any) {
	wr.JSON(w, http.StatusOK, successBody{Success: true, Data: data})
}

// Error normalizes any failure into the error envelope, mapping its
// taxonomy code to a status.
func (wr *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	status := apperr.Status(ae.Code)

	wr.Logger.Error("request failed",
		"code", ae.Code,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)

	body := errorBody{Error: ae.Code, Message: ae.Message}
	if wr.Debug && ae.Err != nil {
		body.Details = ae.Err.Error()
	}
	wr.JSON(w, status, body)
}
