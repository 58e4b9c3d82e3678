package app

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/form"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/server"
	"github.com/five82/shelf/internal/shelf"
)

type env struct {
	dir     string
	logPath string
	out     *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	return &env{dir: dir, logPath: filepath.Join(dir, "logs", "shelf.log"), out: &bytes.Buffer{}}
}

func (e *env) options(overrides ...string) Options {
	return Options{
		ConfigPath: filepath.Join(e.dir, "config.toml"),
		PrefsPath:  filepath.Join(e.dir, "prefs.toml"),
		Overrides:  append([]string{"log.file=" + e.logPath, "log.level=debug", "courier.latency=0s"}, overrides...),
		Headless:   true,
		Output:     e.out,
	}
}

func TestRun_HeadlessSubmitPrintsLists(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Title = "Dune"
	opts.Author = "Herbert"

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := e.out.String()
	for _, want := range []string{
		"status: HAS_DATA",
		"0  Dune by Herbert",
		"0  Software Theory by Frederica Frabetti",
		"1  Dreaming in Code by Scott Rosenberg",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	logs, err := os.ReadFile(e.logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logs), "action complete") {
		t.Fatalf("log file missing action record:\n%s", logs)
	}
}

func TestRun_HeadlessWithoutBookPrintsEmptyLists(t *testing.T) {
	e := newEnv(t)
	if err := Run(context.Background(), e.options()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := e.out.String()
	if !strings.Contains(out, "status: IDLE") || strings.Count(out, "(none)") != 2 {
		t.Fatalf("output = %q, want idle status and two empty lists", out)
	}
}

func TestRun_HeadlessMissingAuthor(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Title = "Dune"

	err := Run(context.Background(), opts)
	if !errors.Is(err, form.ErrMissingField) {
		t.Fatalf("Run error = %v, want ErrMissingField", err)
	}
	if e.out.Len() != 0 {
		t.Fatalf("output = %q, want nothing printed", e.out.String())
	}
	logs, _ := os.ReadFile(e.logPath)
	if !strings.Contains(string(logs), "level=WARN") {
		t.Fatalf("missing warn diagnostic:\n%s", logs)
	}
}

func TestRun_HeadlessInspect(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Title = "Dune"
	opts.Author = "Herbert"
	opts.Inspect = "books.byId.0.title"

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(e.out.String()); got != "Dune" {
		t.Fatalf("inspect output = %q, want Dune", got)
	}

	e.out.Reset()
	opts.Inspect = "books.byId.9"
	if err := Run(context.Background(), opts); err == nil {
		t.Fatalf("inspect of a missing path succeeded")
	}
}

func TestRun_HeadlessInspectRejectsUnknownCollection(t *testing.T) {
	e := newEnv(t)
	opts := e.options()
	opts.Inspect = "authors.byId.0"

	err := Run(context.Background(), opts)
	if !errors.Is(err, shelf.ErrUnknownCollection) {
		t.Fatalf("Run error = %v, want ErrUnknownCollection", err)
	}
	if e.out.Len() != 0 {
		t.Fatalf("output = %q, want nothing printed", e.out.String())
	}
}

func TestRun_HTTPCourier(t *testing.T) {
	srv := httptest.NewServer(server.Handler(server.Options{
		Courier: courier.NewSimulated(courier.SimulatedOptions{Latency: -1}),
		Logger:  logging.Discard(),
	}))
	defer srv.Close()

	e := newEnv(t)
	opts := e.options("courier.mode=http", "courier.url="+srv.URL)
	opts.Title = "Emma"
	opts.Author = "Austen"

	if err := Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out := e.out.String(); !strings.Contains(out, "0  Emma by Austen") || !strings.Contains(out, "Software Theory") {
		t.Fatalf("output = %q", out)
	}
}

func TestRun_HTTPCourierUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	e := newEnv(t)
	err := Run(context.Background(), e.options("courier.mode=http", "courier.url="+url))
	if err == nil || !strings.Contains(err.Error(), "shelfd not reachable") {
		t.Fatalf("Run error = %v, want unreachable", err)
	}
}

func TestRun_BadOverride(t *testing.T) {
	e := newEnv(t)
	err := Run(context.Background(), e.options("courier.nope=1"))
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want config failure", err)
	}
}
