package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/five82/shelf/internal/app"
)

// overrideFlags collects repeated -set values.
type overrideFlags []string

func (o *overrideFlags) String() string {
	return strings.Join(*o, ",")
}

func (o *overrideFlags) Set(value string) error {
	*o = append(*o, value)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var overrides overrideFlags
	configPath := flag.String("config", "", "config path (optional, defaults to ~/.config/shelf/config.toml)")
	prefsPath := flag.String("prefs", "", "prefs path (optional, defaults to ~/.config/shelf/prefs.toml)")
	flag.Var(&overrides, "set", "override a config value as section.key=value (repeatable)")
	headless := flag.Bool("headless", false, "skip the TUI and print the lists")
	title := flag.String("title", "", "headless: title of a book to add")
	author := flag.String("author", "", "headless: author of a book to add")
	inspect := flag.String("inspect", "", "headless: print a store value by dot path, e.g. books.byId.0.title")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		Overrides:  overrides,
		Headless:   *headless,
		Title:      *title,
		Author:     *author,
		Inspect:    *inspect,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "shelf: %v\n", err)
		return 1
	}
	return 0
}
