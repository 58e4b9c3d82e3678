// Package logtail reads the end of a shelf log file and parses its slog
// records for the Diagnostics view.
//
// Read returns the last N lines using a ring buffer, so memory stays bounded
// by N regardless of file size. A missing file returns nil, nil.
//
// Parse understands both slog handler formats:
//
//	time=2026-10-17T09:30:00.000Z level=INFO msg="action complete" run_id=3f2c… elapsed=1.02s
//	{"time":"2026-10-17T09:30:00Z","level":"INFO","msg":"action complete","run_id":"3f2c…"}
//
// Anything else is kept verbatim as the entry message.
package logtail
