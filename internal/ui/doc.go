// Package ui is the shelf terminal interface, built on Bubble Tea.
//
// # Views
//
//   - Books: the status badge ("APP STATUS = HAS_DATA"), the book list with
//     suggestions underneath, and a two-field form (title, author). An empty
//     library shows "No books to display yet. Try adding some!".
//   - Diagnostics: the tail of the shelf log file, parsed by logtail and
//     colored by level. Follows new lines until you scroll up.
//
// A help overlay (?) lists every binding.
//
// # Data Flow
//
// The model never writes to the store. Submitting the form runs
// conductor.SubmitForm inside a tea.Cmd, so the UI keeps rendering while the
// courier round trip is in flight; the result comes back as submitDoneMsg.
// A tick polls the conductor's status and store snapshot, which is how the
// intermediate WAITING and SUCCESS states reach the screen.
//
// Form values are validated before dispatch. A missing title or author is
// logged at warn level, shown as a notice, and never reaches the conductor.
//
// # Focus
//
// Keystrokes go to the focused text input. Esc moves focus to the list,
// where single-letter bindings (q, d, b, /, T) become active. Tab cycles
// title, author, list.
//
// # Themes
//
// Nightfox (default), Kanagawa, and Paper. T cycles them and the choice is
// saved through the prefs package.
package ui
