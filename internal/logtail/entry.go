package logtail

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Entry is one parsed slog record.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Attrs   []Attr
	Raw     string
}

// Attr is a key/value pair other than time, level, and msg. Grouped keys are
// joined with dots.
type Attr struct {
	Key   string
	Value string
}

// Parse reads a line written by slog's JSON or text handler. Lines in neither
// shape come back with only Raw and Message set.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
		return parseJSON(line, trimmed)
	}
	if e, ok := parseText(line); ok {
		return e
	}
	return Entry{Message: line, Raw: line}
}

// ParseLines parses each line.
func ParseLines(lines []string) []Entry {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		out = append(out, Parse(line))
	}
	return out
}

// Attr returns the value for key and whether it was present.
func (e Entry) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Structured reports whether the line parsed as a slog record.
func (e Entry) Structured() bool {
	return e.Level != "" || !e.Time.IsZero()
}

// Clock returns the local "15:04:05" time of the entry, or "" when the line
// carried none.
func (e Entry) Clock() string {
	if e.Time.IsZero() {
		return ""
	}
	return e.Time.In(time.Local).Format("15:04:05")
}

// PaddedLevel returns the level padded to the width of "ERROR".
func (e Entry) PaddedLevel() string {
	return padLevel(e.Level)
}

// QuotedValue returns the attribute value, quoted when it would not survive a
// round trip through the text format unquoted.
func (a Attr) QuotedValue() string {
	if a.Value == "" || strings.ContainsAny(a.Value, " \t\"=") {
		return strconv.Quote(a.Value)
	}
	return a.Value
}

func padLevel(level string) string {
	const width = 5
	if len(level) >= width {
		return level
	}
	return level + strings.Repeat(" ", width-len(level))
}

func parseJSON(raw, trimmed string) Entry {
	e := Entry{Raw: raw}
	gjson.Parse(trimmed).ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "time":
			e.Time = parseTime(value.String())
		case "level":
			e.Level = strings.ToUpper(value.String())
		case "msg":
			e.Message = value.String()
		default:
			e.Attrs = appendJSONAttr(e.Attrs, key.String(), value)
		}
		return true
	})
	return e
}

func appendJSONAttr(attrs []Attr, prefix string, value gjson.Result) []Attr {
	if !value.IsObject() {
		return append(attrs, Attr{Key: prefix, Value: value.String()})
	}
	value.ForEach(func(k, v gjson.Result) bool {
		attrs = appendJSONAttr(attrs, prefix+"."+k.String(), v)
		return true
	})
	return attrs
}

// parseText reads slog's key=value text format. Quoted values use Go string
// syntax.
func parseText(line string) (Entry, bool) {
	e := Entry{Raw: line}
	seenMsg := false
	i := 0
	for {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i >= len(line) {
			break
		}
		eq := strings.IndexByte(line[i:], '=')
		if eq <= 0 {
			return Entry{}, false
		}
		key := line[i : i+eq]
		if strings.ContainsAny(key, " \"") {
			return Entry{}, false
		}
		i += eq + 1

		var value string
		if i < len(line) && line[i] == '"' {
			end := closingQuote(line, i)
			if end < 0 {
				return Entry{}, false
			}
			unquoted, err := strconv.Unquote(line[i : end+1])
			if err != nil {
				return Entry{}, false
			}
			value = unquoted
			i = end + 1
		} else {
			end := strings.IndexByte(line[i:], ' ')
			if end < 0 {
				end = len(line) - i
			}
			value = line[i : i+end]
			i += end
		}

		switch key {
		case "time":
			e.Time = parseTime(value)
		case "level":
			e.Level = strings.ToUpper(value)
		case "msg":
			e.Message = value
			seenMsg = true
		default:
			e.Attrs = append(e.Attrs, Attr{Key: key, Value: value})
		}
	}
	return e, seenMsg
}

func closingQuote(s string, open int) int {
	for j := open + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
