package conductor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

// ActionType names a user action the conductor understands.
type ActionType string

// ActionSubmitForm adds a book and refreshes the lists.
const ActionSubmitForm ActionType = "SUBMIT_FORM"

// Action is a dispatched user action.
type Action struct {
	Type    ActionType
	Payload shelf.Book
}

// Options configure a Conductor.
type Options struct {
	Initial  *state.Snapshot // nil starts with an empty store
	Logger   *slog.Logger
	OnStatus func(from, to Status) // called after every applied transition
}

// Conductor owns the store and the status machine and runs user actions
// against a courier. It is the only writer of either.
type Conductor struct {
	store   *state.Store
	machine *Machine
	courier courier.Courier
	logger  *slog.Logger
}

// New builds a conductor around c.
func New(c courier.Courier, opts Options) *Conductor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	initial := state.EmptySnapshot()
	if opts.Initial != nil {
		initial = *opts.Initial
	}
	return &Conductor{
		store:   state.Create(initial, logger),
		machine: NewMachine(logger, opts.OnStatus),
		courier: c,
		logger:  logger,
	}
}

// Store returns the model for reading.
func (c *Conductor) Store() *state.Store {
	return c.store
}

// Status returns the current status.
func (c *Conductor) Status() Status {
	return c.machine.Current()
}

// History returns the statuses visited so far, oldest first.
func (c *Conductor) History() []Status {
	return c.machine.History()
}

// SubmitForm dispatches ActionSubmitForm with book as the payload.
func (c *Conductor) SubmitForm(ctx context.Context, book shelf.Book) error {
	return c.Dispatch(ctx, Action{Type: ActionSubmitForm, Payload: book})
}

// Dispatcher binds an action type, returning a function that dispatches it
// with a payload.
func (c *Conductor) Dispatcher(t ActionType) func(context.Context, shelf.Book) error {
	return func(ctx context.Context, payload shelf.Book) error {
		return c.Dispatch(ctx, Action{Type: t, Payload: payload})
	}
}

// Dispatch runs action to completion. Courier failures are returned and leave
// the status where the failure happened. An unrecognized action type is a
// programming error and panics.
func (c *Conductor) Dispatch(ctx context.Context, action Action) error {
	switch action.Type {
	case ActionSubmitForm:
		logger := c.logger.With(
			slog.String("action", string(action.Type)),
			slog.String("run_id", uuid.NewString()))
		start := time.Now()
		err := c.processEntityCreate(ctx, logger, action.Payload)
		attrs := []any{slog.Duration("elapsed", time.Since(start)), slog.String("status", c.Status().String())}
		if err != nil {
			logger.Error("action failed", append(attrs, slog.Any("error", err))...)
			return err
		}
		logger.Info("action complete", attrs...)
		return nil
	default:
		panic(fmt.Sprintf("conductor: unrecognized action %q", action.Type))
	}
}

func (c *Conductor) processEntityCreate(ctx context.Context, logger *slog.Logger, payload shelf.Book) error {
	c.machine.Request(StatusWaiting)
	created, err := c.courier.Post(ctx, payload)
	if err != nil {
		return fmt.Errorf("post book: %w", err)
	}
	logger.Debug("book posted", slog.Int("id", created.ID))
	c.machine.Request(StatusSuccess)

	books, err := c.courier.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch books: %w", err)
	}

	if len(books.IDs) > 0 {
		c.machine.Request(StatusWaiting)
		suggestions, err := c.courier.Suggest(ctx)
		if err != nil {
			return fmt.Errorf("fetch suggestions: %w", err)
		}
		c.machine.Request(StatusSuccess)
		c.store.UpdateAll(shelf.CollectionSuggestedBooks, suggestions)
	}

	c.store.UpdateAll(shelf.CollectionBooks, books)
	c.machine.Request(StatusHasData)
	return nil
}
