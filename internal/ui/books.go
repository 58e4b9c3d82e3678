package ui

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/five82/shelf/internal/shelf"
	"github.com/five82/shelf/internal/state"
)

const (
	emptyBooksMessage = "No books to display yet. Try adding some!"
	suggestionsLead   = "You're such a voracious reader. Here are some other titles we think you'll love:"
)

// renderBooks renders the list viewport, the form panel, and the notice line.
func (m Model) renderBooks() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.booksViewport.View())
	b.WriteString("\n")

	panel := styles.Panel
	if m.focus != focusList {
		panel = styles.FocusedPanel
	}
	formBody := m.inputs[0].View() + "\n" + m.inputs[1].View()
	if m.filtering {
		formBody += "\n" + m.filterInput.View()
	} else if m.filter != "" {
		formBody += "\n" + styles.FaintText.Render("filter: "+m.filter+" (esc to clear)")
	} else {
		formBody += "\n" + styles.FaintText.Render("enter adds the book, tab switches fields")
	}
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	b.WriteString(panel.Width(width).Render(formBody))
	b.WriteString("\n")

	switch {
	case m.notice.text == "":
	case m.notice.isErr:
		b.WriteString(styles.DangerText.Render(m.notice.text))
	default:
		b.WriteString(styles.InfoText.Render(m.notice.text))
	}
	return b.String()
}

func (m *Model) updateBooksViewport() {
	if !m.ready {
		return
	}
	m.booksViewport.SetContent(renderBookList(m.snapshot, m.filter, m.theme.Styles()))
}

// renderBookList renders the books and, when there are any, the
// suggestions. A filter narrows both lists by fuzzy match on
// "title by author".
func renderBookList(snap state.Snapshot, filter string, styles Styles) string {
	books := filterBooks(snap.Books.Values(), filter)
	suggestions := filterBooks(snap.SuggestedBooks.Values(), filter)

	var b strings.Builder
	if snap.Books.Len() == 0 {
		b.WriteString(styles.AccentText.Bold(true).Render("Book List"))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(emptyBooksMessage))
		return b.String()
	}

	b.WriteString(styles.AccentText.Bold(true).Render("My Books"))
	b.WriteString("\n")
	if len(books) == 0 {
		b.WriteString(styles.MutedText.Render("No books match \"" + filter + "\""))
		b.WriteString("\n")
	}
	for _, book := range books {
		b.WriteString(styles.Text.Render("  " + describe(book)))
		b.WriteString("\n")
	}

	if len(suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SuccessText.Render(suggestionsLead))
		b.WriteString("\n")
		for _, s := range suggestions {
			b.WriteString(styles.MutedText.Render("  " + describe(s)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func filterBooks(books []shelf.BookResource, filter string) []shelf.BookResource {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return books
	}
	var out []shelf.BookResource
	for _, book := range books {
		if fuzzy.MatchFold(filter, describe(book)) {
			out = append(out, book)
		}
	}
	return out
}

func describe(b shelf.BookResource) string {
	return b.Title + " by " + b.Author
}
