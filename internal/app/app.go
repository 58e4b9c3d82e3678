package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/conductor"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/courier"
	"github.com/five82/shelf/internal/form"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/ui"
)

const availabilityTimeout = 3 * time.Second

// Options configure a shelf run.
type Options struct {
	ConfigPath string
	PrefsPath  string   // empty uses default ~/.config/shelf/prefs.toml
	Overrides  []string // "section.key=value", applied after the config file

	// Headless skips the TUI. When Title or Author is set the book is
	// submitted first; the resulting lists are then printed to Output.
	Headless bool
	Title    string
	Author   string
	Inspect  string    // dot path into the store, printed instead of the lists
	Output   io.Writer // nil uses os.Stdout
}

// Run boots shelf until the UI exits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logFile,
	})
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed", slog.Any("error", err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	backend, err := buildCourier(ctx, cfg.Courier, logger)
	if err != nil {
		return err
	}
	if p, ok := backend.(pinger); ok {
		StartHealthPoller(ctx, p, defaultHealthInterval, logger)
	}

	c := conductor.New(backend, conductor.Options{Logger: logger})
	logger.Info("shelf starting",
		slog.String("courier", cfg.Courier.Mode),
		slog.Bool("headless", opts.Headless))

	if opts.Headless {
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		return runHeadless(ctx, c, opts, out, logger)
	}

	err = ui.Run(ui.Options{
		Context:   ctx,
		Conductor: c,
		Logger:    logger,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.Log.File,
	})
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func buildCourier(ctx context.Context, cfg config.CourierConfig, logger *slog.Logger) (courier.Courier, error) {
	switch cfg.Mode {
	case config.ModeHTTP:
		client, err := courier.NewClient(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("init shelfd client: %w", err)
		}
		if err := ensureAvailable(ctx, client, cfg.URL); err != nil {
			return nil, err
		}
		return client, nil
	default:
		latency := cfg.LatencyDuration()
		if latency == 0 {
			latency = -1
		}
		return courier.NewSimulated(courier.SimulatedOptions{Latency: latency, Logger: logger}), nil
	}
}

func ensureAvailable(ctx context.Context, p pinger, addr string) error {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("shelfd not reachable at %s: %w", addr, err)
	}
	return nil
}

func runHeadless(ctx context.Context, c *conductor.Conductor, opts Options, out io.Writer, logger *slog.Logger) error {
	if opts.Title != "" || opts.Author != "" {
		values := form.Serialize(form.BookFields(opts.Title, opts.Author))
		if err := values.Validate(); err != nil {
			logger.Warn(form.ErrMissingField.Error(), slog.Any("error", err))
			return err
		}
		if err := c.SubmitForm(ctx, values.Book()); err != nil {
			return fmt.Errorf("submit book: %w", err)
		}
	}

	if opts.Inspect != "" {
		root, _, _ := strings.Cut(opts.Inspect, ".")
		if _, err := shelf.ParseCollection(root); err != nil {
			return fmt.Errorf("inspect %s: %w", opts.Inspect, err)
		}
		value, err := c.Store().Lookup(opts.Inspect)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", opts.Inspect, err)
		}
		return printValue(out, value)
	}

	snap := c.Store().Snapshot()
	fmt.Fprintf(out, "status: %s\n", c.Status())
	printList(out, "books", snap.Books)
	printList(out, "suggestions", snap.SuggestedBooks)
	return nil
}

func printList(out io.Writer, heading string, n shelf.Normalized) {
	fmt.Fprintf(out, "%s:\n", heading)
	if n.Len() == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	for _, b := range n.Values() {
		fmt.Fprintf(out, "  %d  %s by %s\n", b.ID, b.Title, b.Author)
	}
}

func printValue(out io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(out, s)
		return err
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
