// Package app is the composition root for the shelf client.
//
// Run wires the pieces together in order:
//
//  1. config.Load reads ~/.config/shelf/config.toml and applies -set overrides
//  2. logging.OpenFile and logging.Setup send slog output to the log file,
//     keeping the terminal free for the TUI
//  3. prefs.Load picks up the saved theme
//  4. buildCourier returns an in-process Simulated backend, or an HTTP
//     client for shelfd after a 3 second availability check
//  5. conductor.New owns the store and the status machine
//  6. ui.Run starts the TUI, or runHeadless submits once and prints
//
// In HTTP mode a background health poller pings shelfd every 5 seconds and
// doubles the interval (up to 30 seconds) while the daemon is unreachable.
// Only the first failure of an outage is logged at warn level.
//
// Errors during startup are returned from Run. Courier errors during a
// submit are shown in the TUI notice line and do not stop the program.
package app
