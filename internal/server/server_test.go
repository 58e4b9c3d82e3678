package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/shelf"
)

func newTestServer(t *testing.T, c courier.Courier) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	if c == nil {
		c = courier.NewSimulated(courier.SimulatedOptions{Latency: -1})
	}
	var logs bytes.Buffer
	srv := httptest.NewServer(Handler(Options{
		Courier: c,
		Logger:  slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}))
	t.Cleanup(srv.Close)
	return srv, &logs
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestPostBook_CreatesWithSequentialIDs(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for i, title := range []string{"Dune", "Emma"} {
		resp := postJSON(t, srv.URL+"/api/books", `{"title":"`+title+`","author":"x"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		got := decode[shelf.BookResource](t, resp)
		if got.ID != i || got.Title != title {
			t.Fatalf("created = %+v, want id %d title %s", got, i, title)
		}
	}

	resp, err := http.Get(srv.URL + "/api/books")
	if err != nil {
		t.Fatalf("GET /api/books: %v", err)
	}
	defer resp.Body.Close()
	books := decode[shelf.Normalized](t, resp)
	if books.Len() != 2 || books.ByID[1].Title != "Emma" {
		t.Fatalf("books = %+v, want Dune and Emma", books)
	}
}

func TestPostBook_RejectsBadInput(t *testing.T) {
	srv, logs := newTestServer(t, nil)

	tests := []struct {
		name     string
		body     string
		wantText string
	}{
		{name: "malformed json", body: `{"title":`, wantText: "Decode book"},
		{name: "empty author", body: `{"title":"Dune","author":"  "}`, wantText: "Missing form field value: author"},
		{name: "empty title", body: `{"author":"Herbert"}`, wantText: "Missing form field value: title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/books", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			body := decode[errorBody](t, resp)
			if !strings.HasPrefix(body.Error, tt.wantText) {
				t.Fatalf("error = %q, want prefix %q", body.Error, tt.wantText)
			}
			if body.ErrorID == "" {
				t.Fatalf("error_id is empty")
			}
		})
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Fatalf("validation failures not logged at warn: %s", logs.String())
	}
}

func TestPostBook_RejectsOversizedBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body := `{"title":"` + strings.Repeat("a", maxBookBody) + `","author":"x"}`
	resp := postJSON(t, srv.URL+"/api/books", body)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", resp.StatusCode)
	}
	if got := decode[errorBody](t, resp); got.ErrorID == "" {
		t.Fatalf("error_id is empty")
	}

	list, err := http.Get(srv.URL + "/api/books")
	if err != nil {
		t.Fatalf("GET /api/books: %v", err)
	}
	defer func() { _ = list.Body.Close() }()
	if books := decode[shelf.Normalized](t, list); len(books.IDs) != 0 {
		t.Fatalf("books = %v, want none stored", books.IDs)
	}
}

type failingCourier struct{ courier.Courier }

func (failingCourier) FetchAll(context.Context) (shelf.Normalized, error) {
	return shelf.Normalized{}, errors.New("database on fire")
}

func TestFetchFailure_HidesMessageBehindErrorID(t *testing.T) {
	srv, logs := newTestServer(t, failingCourier{courier.NewSimulated(courier.SimulatedOptions{Latency: -1})})

	resp, err := http.Get(srv.URL + "/api/books")
	if err != nil {
		t.Fatalf("GET /api/books: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body := decode[errorBody](t, resp)
	if strings.Contains(body.Error, "fire") || !strings.Contains(body.Error, body.ErrorID) {
		t.Fatalf("error body = %+v, want generic message carrying the id", body)
	}
	if !strings.Contains(logs.String(), "database on fire") || !strings.Contains(logs.String(), body.ErrorID) {
		t.Fatalf("logs missing error or id: %s", logs.String())
	}
}

func TestResponder_DebugModeEchoesServerErrors(t *testing.T) {
	rr := &Responder{DebugMode: true, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rr.RespondAndLogError(rec, req, errors.New("boom"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Boom" {
		t.Fatalf("error = %q, want Boom", body.Error)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestSuggestionsAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/suggestions")
	if err != nil {
		t.Fatalf("GET /api/suggestions: %v", err)
	}
	defer resp.Body.Close()
	got := decode[shelf.Normalized](t, resp)
	if got.Len() != 2 || got.ByID[0].Title != "Software Theory" || got.ByID[1].Author != "Scott Rosenberg" {
		t.Fatalf("suggestions = %+v", got)
	}

	health, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", health.StatusCode)
	}
}

func TestMetricsExposeRouteCounters(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	postJSON(t, srv.URL+"/api/books", `{"title":"Dune","author":"Herbert"}`)
	list, err := http.Get(srv.URL + "/api/books")
	if err != nil {
		t.Fatalf("GET /api/books: %v", err)
	}
	_ = list.Body.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)

	for _, want := range []string{
		`shelfd_requests_total{code="201",route="/api/books"} 1`,
		`shelfd_requests_total{code="200",route="/api/books"} 1`,
		`shelfd_books_total 1`,
		`shelfd_request_duration_seconds_count{route="/api/books"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("metrics missing %q:\n%s", want, text)
		}
	}
}

func TestClientAgainstServer(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	client, err := courier.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	created, err := client.Post(ctx, shelf.Book{Title: "Dune", Author: "Herbert"})
	if err != nil || created.ID != 0 {
		t.Fatalf("Post = %+v, %v; want id 0", created, err)
	}
	books, err := client.FetchAll(ctx)
	if err != nil || books.ByID[0].Author != "Herbert" {
		t.Fatalf("FetchAll = %+v, %v", books, err)
	}
	if _, err := client.Post(ctx, shelf.Book{Title: "Dune"}); err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("Post without author error = %v, want status 400", err)
	}
}
