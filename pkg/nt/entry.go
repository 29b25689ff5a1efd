package nt

import (
	"io"
	"strings"
)

// minLineLength is the shortest line that can hold "s p o ." with one-byte terms.
const minLineLength = 7

// Entry is a single line of an N-Triples-like file: subject, predicate and object
// separated by single spaces and terminated by " .".
// The zero value is an invalid entry.
type Entry struct {
	subject   string
	predicate string
	object    string
	literal   bool
	valid     bool
}

// NewEntry creates a valid entry from its three terms
func NewEntry(subject, predicate, object string, literal bool) Entry {
	return Entry{
		subject:   subject,
		predicate: predicate,
		object:    object,
		literal:   literal,
		valid:     subject != "" && predicate != "" && object != "",
	}
}

// Parse interprets a single line as a triple. It never fails: malformed lines,
// comments and lines shorter than seven bytes produce an invalid entry.
//
// Terms are delimited by a single space outside of a quoted span. A backslash
// toggles the escape state, so "\\" leaves the following quote unescaped.
// Everything after the third term (usually " .") is ignored.
func Parse(line string) Entry {
	if len(line) < minLineLength || line[0] == '#' {
		return Entry{}
	}

	var e Entry
	start := 0
	field := 0
	inString := false
	escaped := false

scan:
	for pos := 0; pos < len(line); pos++ {
		ch := line[pos]
		if ch == '\\' {
			escaped = !escaped
			continue
		}

		switch {
		case ch == '"' && !escaped:
			inString = !inString
			if field == 2 && inString {
				e.literal = true
			}
		case ch == ' ' && !inString:
			if pos > start {
				switch field {
				case 0:
					e.subject = line[start:pos]
				case 1:
					e.predicate = line[start:pos]
				case 2:
					e.object = line[start:pos]
				}
				field++
				if field > 2 {
					break scan
				}
			}
			start = pos + 1
		}
		escaped = false
	}

	if field < 3 {
		return Entry{}
	}
	e.valid = true
	return e
}

// Valid reports whether the line held three terms
func (e Entry) Valid() bool {
	return e.valid
}

func (e Entry) Subject() string {
	return e.subject
}

func (e Entry) Predicate() string {
	return e.predicate
}

// Object returns the object term verbatim, including quotes and any
// language tag or datatype suffix of a literal.
func (e Entry) Object() string {
	return e.object
}

// IsObjectLiteral reports whether a quoted span opened inside the object term
func (e Entry) IsObjectLiteral() bool {
	return e.literal
}

// String returns the entry in its canonical line form, without the line terminator
func (e Entry) String() string {
	var sb strings.Builder
	sb.Grow(len(e.subject) + len(e.predicate) + len(e.object) + 4)
	sb.WriteString(e.subject)
	sb.WriteByte(' ')
	sb.WriteString(e.predicate)
	sb.WriteByte(' ')
	sb.WriteString(e.object)
	sb.WriteString(" .")
	return sb.String()
}

// WriteTo writes the entry followed by a newline.
// Callers must not write invalid entries.
func (e Entry) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, e.String()+"\n")
	return int64(n), err
}
