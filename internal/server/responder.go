package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Responder writes JSON bodies and error envelopes. Server errors hide their
// message behind an error id unless DebugMode is set; client errors always
// explain themselves.
type Responder struct {
	DebugMode bool
	Logger    *slog.Logger
}

type errorBody struct {
	Error   string `json:"error"`
	ErrorID string `json:"error_id"`
}

// RespondAndLogError responds 500 and logs err at error level.
func (rr *Responder) RespondAndLogError(w http.ResponseWriter, r *http.Request, err error) {
	rr.RespondAndLogCustom(w, r, err, slog.LevelError, http.StatusInternalServerError)
}

// RespondAndLogCustom responds with status and logs err at lvl.
func (rr *Responder) RespondAndLogCustom(w http.ResponseWriter, r *http.Request, err error, lvl slog.Level, status int) {
	errID := uuid.NewString()
	rr.logger().LogAttrs(r.Context(), lvl, err.Error(),
		slog.String("err_id", errID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status))
	rr.renderError(w, r, status, err.Error(), errID)
}

// SendJSON writes data with the given status.
func (rr *Responder) SendJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		rr.RespondAndLogError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(bs)
}

func (rr *Responder) renderError(w http.ResponseWriter, r *http.Request, status int, message, errID string) {
	body := errorBody{ErrorID: errID}
	if rr.DebugMode || status < http.StatusInternalServerError {
		first, size := utf8.DecodeRuneInString(message)
		body.Error = string(unicode.ToUpper(first)) + message[size:]
	} else {
		body.Error = "Unknown error occurred while processing your request. Error ID: " + errID
	}

	bs, err := json.Marshal(body)
	if err == nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		rr.logger().ErrorContext(r.Context(), "cannot marshal error response body", slog.Any("error", err))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		bs = []byte("unknown error")
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(bs)
}

func (rr *Responder) logger() *slog.Logger {
	if rr.Logger == nil {
		return slog.Default()
	}
	return rr.Logger
}
