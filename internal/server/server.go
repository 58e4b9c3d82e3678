package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/form"
)

// maxBookBody caps a POST /api/books body.
const maxBookBody = 64 << 10

// Options configure the HTTP handler.
type Options struct {
	Courier   courier.Courier
	Metrics   *Metrics // nil creates a fresh set
	Logger    *slog.Logger
	DebugMode bool
}

// Handler returns the shelfd router:
//
//	POST /api/books        add a book, 201 with the stored resource
//	GET  /api/books        every book, normalized by id
//	GET  /api/suggestions  the fixed suggestions, normalized by index
//	GET  /api/health       liveness
//	GET  /metrics          Prometheus metrics
func Handler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	rr := &Responder{DebugMode: opts.DebugMode, Logger: logger}
	c := opts.Courier

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			rr.SendJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/books", func(w http.ResponseWriter, r *http.Request) {
			var book struct {
				Title  string `json:"title"`
				Author string `json:"author"`
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBookBody)
			if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
				status := http.StatusBadRequest
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				rr.RespondAndLogCustom(w, r, fmt.Errorf("decode book: %w", err), slog.LevelWarn, status)
				return
			}
			values := form.Serialize(form.BookFields(book.Title, book.Author))
			if err := values.Validate(); err != nil {
				rr.RespondAndLogCustom(w, r, err, slog.LevelWarn, http.StatusBadRequest)
				return
			}

			created, err := c.Post(r.Context(), values.Book())
			if err != nil {
				rr.RespondAndLogError(w, r, err)
				return
			}
			rr.SendJSON(w, r, http.StatusCreated, created)
		})

		r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
			books, err := c.FetchAll(r.Context())
			if err != nil {
				rr.RespondAndLogError(w, r, err)
				return
			}
			metrics.SetBooks(books.Len())
			rr.SendJSON(w, r, http.StatusOK, books)
		})

		r.Get("/suggestions", func(w http.ResponseWriter, r *http.Request) {
			suggestions, err := c.Suggest(r.Context())
			if err != nil {
				rr.RespondAndLogError(w, r, err)
				return
			}
			rr.SendJSON(w, r, http.StatusOK, suggestions)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
