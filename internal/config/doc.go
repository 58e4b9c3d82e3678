// Package config loads the shelf client configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml
//  3. If the file doesn't exist, start from Defaults
//  4. Apply -set overrides ("section.key=value") on top
//  5. Blank fields fall back to their defaults
//
// # TOML Format
//
//	[courier]
//	mode = "simulated"      # or "http"
//	url = "127.0.0.1:7488"  # shelfd address, http mode only
//	latency = "500ms"       # simulated mode only; "0s" disables the delay
//
//	[log]
//	file = "~/.local/share/shelf/shelf.log"
//	level = "info"
//	format = "text"         # or "json"
//
// # Overrides
//
// Overrides address the same keys as the file. They are applied to the
// decoded TOML document with keypath, so a key that does not exist in the
// document (a typo, an unknown section) fails the load instead of being
// silently ignored.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files, TOML
// parse errors, bad overrides, an unknown courier mode, and an unparseable
// latency. A missing config file is not an error.
package config
