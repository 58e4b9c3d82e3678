package conductor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

// recordingCourier wraps a courier and records call order.
type recordingCourier struct {
	inner courier.Courier

	mu    sync.Mutex
	calls []string

	postErr    error
	suggestErr error
}

func (r *recordingCourier) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recordingCourier) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingCourier) Post(ctx context.Context, b shelf.Book) (shelf.BookResource, error) {
	r.record("post")
	if r.postErr != nil {
		return shelf.BookResource{}, r.postErr
	}
	return r.inner.Post(ctx, b)
}

func (r *recordingCourier) FetchAll(ctx context.Context) (shelf.Normalized, error) {
	r.record("fetchAll")
	return r.inner.FetchAll(ctx)
}

func (r *recordingCourier) Suggest(ctx context.Context) (shelf.Normalized, error) {
	r.record("suggest")
	if r.suggestErr != nil {
		return shelf.Normalized{}, r.suggestErr
	}
	return r.inner.Suggest(ctx)
}

// emptyFetchCourier stores nothing, so FetchAll is always empty.
type emptyFetchCourier struct{ recordingCourier }

func (e *emptyFetchCourier) FetchAll(ctx context.Context) (shelf.Normalized, error) {
	e.record("fetchAll")
	return shelf.NewNormalized(), nil
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestConductor(t *testing.T) (*Conductor, *recordingCourier, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	rc := &recordingCourier{inner: courier.NewSimulated(courier.SimulatedOptions{
		Latency: -1,
		Logger:  quietLogger(&logs),
	})}
	return New(rc, Options{Logger: quietLogger(&logs)}), rc, &logs
}

func TestSubmitForm_Scenario(t *testing.T) {
	c, rc, _ := newTestConductor(t)

	if got := c.Store().FindAll(shelf.CollectionBooks); len(got) != 0 {
		t.Fatalf("fresh store books = %#v, want empty", got)
	}

	if err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}

	wantCalls := []string{"post", "fetchAll", "suggest"}
	if got := rc.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Fatalf("courier calls = %v, want %v", got, wantCalls)
	}

	books := c.Store().FindAll(shelf.CollectionBooks)
	want := map[int]shelf.BookResource{0: {ID: 0, Title: "Dune", Author: "Herbert"}}
	if !reflect.DeepEqual(books, want) {
		t.Fatalf("books = %#v, want %#v", books, want)
	}

	suggestions := c.Store().FindAll(shelf.CollectionSuggestedBooks)
	wantSuggestions := map[int]shelf.BookResource{}
	for idx, b := range courier.Suggestions() {
		wantSuggestions[idx] = b.WithID(idx)
	}
	if !reflect.DeepEqual(suggestions, wantSuggestions) {
		t.Fatalf("suggestions = %#v, want %#v", suggestions, wantSuggestions)
	}

	if c.Status() != StatusHasData {
		t.Fatalf("status = %v, want HAS_DATA", c.Status())
	}
}

func TestSubmitForm_StatusSequenceWithSuggestions(t *testing.T) {
	var seen []Status
	rc := &recordingCourier{inner: courier.NewSimulated(courier.SimulatedOptions{Latency: -1})}
	var logs bytes.Buffer
	c := New(rc, Options{
		Logger:   quietLogger(&logs),
		OnStatus: func(_, to Status) { seen = append(seen, to) },
	})

	if err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}

	want := []Status{StatusWaiting, StatusSuccess, StatusWaiting, StatusSuccess, StatusHasData}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("status sequence = %v, want %v", seen, want)
	}
	if got := c.History(); !reflect.DeepEqual(got, append([]Status{StatusIdle}, want...)) {
		t.Fatalf("history = %v, want IDLE then %v", got, want)
	}
	if strings.Contains(logs.String(), "status transition rejected") {
		t.Fatalf("unexpected rejected transition in logs: %s", logs.String())
	}
}

func TestSubmitForm_SkipsSuggestionsWhenFetchIsEmpty(t *testing.T) {
	ec := &emptyFetchCourier{recordingCourier{inner: courier.NewSimulated(courier.SimulatedOptions{Latency: -1})}}
	var seen []Status
	var logs bytes.Buffer
	c := New(ec, Options{
		Logger:   quietLogger(&logs),
		OnStatus: func(_, to Status) { seen = append(seen, to) },
	})

	if err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}

	if got := ec.Calls(); !reflect.DeepEqual(got, []string{"post", "fetchAll"}) {
		t.Fatalf("courier calls = %v, want [post fetchAll]", got)
	}
	want := []Status{StatusWaiting, StatusSuccess, StatusHasData}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("status sequence = %v, want %v", seen, want)
	}
	if got := c.Store().FindAll(shelf.CollectionSuggestedBooks); len(got) != 0 {
		t.Fatalf("suggestions = %#v, want none", got)
	}
}

func TestSubmitForm_RepeatedSubmitsCycleFromHasData(t *testing.T) {
	c, _, logs := newTestConductor(t)
	ctx := context.Background()

	for _, title := range []string{"Dune", "Emma"} {
		if err := c.SubmitForm(ctx, shelf.Book{Title: title, Author: "x"}); err != nil {
			t.Fatalf("SubmitForm(%s) returned error: %v", title, err)
		}
		if c.Status() != StatusHasData {
			t.Fatalf("status after %s = %v, want HAS_DATA", title, c.Status())
		}
	}

	books := c.Store().FindAll(shelf.CollectionBooks)
	if len(books) != 2 || books[1].Title != "Emma" {
		t.Fatalf("books = %#v, want Dune and Emma", books)
	}
	if ids := c.Store().Snapshot().Books.IDs; !reflect.DeepEqual(ids, []int{0, 1}) {
		t.Fatalf("book ids = %v, want [0 1]", ids)
	}
	if strings.Contains(logs.String(), "status transition rejected") {
		t.Fatalf("unexpected rejected transition in logs: %s", logs.String())
	}
}

func TestSubmitForm_PostFailureIsReturnedAndLeavesWaiting(t *testing.T) {
	c, rc, _ := newTestConductor(t)
	boom := errors.New("backend down")
	rc.postErr = boom

	err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"})
	if !errors.Is(err, boom) {
		t.Fatalf("SubmitForm error = %v, want wrapped backend down", err)
	}
	if !strings.Contains(err.Error(), "post book") {
		t.Fatalf("SubmitForm error = %q, want it to mention post book", err)
	}
	if c.Status() != StatusWaiting {
		t.Fatalf("status = %v, want WAITING after post failure", c.Status())
	}
	if got := rc.Calls(); !reflect.DeepEqual(got, []string{"post"}) {
		t.Fatalf("courier calls = %v, want only post", got)
	}
}

func TestSubmitForm_SuggestFailureKeepsBooksUnwritten(t *testing.T) {
	c, rc, _ := newTestConductor(t)
	rc.suggestErr = errors.New("no suggestions")

	err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"})
	if err == nil || !strings.Contains(err.Error(), "fetch suggestions") {
		t.Fatalf("SubmitForm error = %v, want fetch suggestions failure", err)
	}
	if got := c.Store().FindAll(shelf.CollectionBooks); len(got) != 0 {
		t.Fatalf("books = %#v, want none written after failure", got)
	}
}

func TestDispatch_UnrecognizedActionPanics(t *testing.T) {
	c, rc, _ := newTestConductor(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("Dispatch with unknown action did not panic")
		}
		if len(rc.Calls()) != 0 {
			t.Fatalf("courier was called for an unknown action: %v", rc.Calls())
		}
	}()
	_ = c.Dispatch(context.Background(), Action{Type: "DELETE_EVERYTHING"})
}

func TestDispatcher_BindsActionType(t *testing.T) {
	c, rc, _ := newTestConductor(t)
	submit := c.Dispatcher(ActionSubmitForm)
	if err := submit(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("bound dispatch returned error: %v", err)
	}
	if len(rc.Calls()) != 3 {
		t.Fatalf("courier calls = %v, want post, fetchAll, suggest", rc.Calls())
	}
}

func TestDispatch_LogsRunIDAndElapsed(t *testing.T) {
	c, _, logs := newTestConductor(t)
	if err := c.SubmitForm(context.Background(), shelf.Book{Title: "Dune", Author: "Herbert"}); err != nil {
		t.Fatalf("SubmitForm returned error: %v", err)
	}
	out := logs.String()
	for _, want := range []string{"action complete", "run_id=", "elapsed=", "action=SUBMIT_FORM"} {
		if !strings.Contains(out, want) {
			t.Fatalf("logs missing %q:\n%s", want, out)
		}
	}
}

func TestNew_SeedsInitialSnapshot(t *testing.T) {
	snap := state.EmptySnapshot()
	snap.Books = shelf.NormalizeBooks([]shelf.BookResource{{ID: 4, Title: "Seed"}})

	var logs bytes.Buffer
	c := New(courier.NewSimulated(courier.SimulatedOptions{Latency: -1}), Options{
		Initial: &snap,
		Logger:  quietLogger(&logs),
	})
	if got := c.Store().FindAll(shelf.CollectionBooks)[4].Title; got != "Seed" {
		t.Fatalf("seeded book title = %q, want Seed", got)
	}
	if c.Status() != StatusIdle {
		t.Fatalf("initial status = %v, want IDLE", c.Status())
	}
}
