// Package gedcom reads and writes GEDCOM text at the line level. It knows
// about levels, cross-reference ids, tags and pointer values; it does not
// validate the grammar of individual facts.
package gedcom

import (
	"strconv"
	"strings"
)

// Line is one parsed GEDCOM line.
type Line struct {
	Level int
	Xref  string
	Tag   string
	Value string
}

// ParseLine parses "LEVEL [@XREF@] TAG [VALUE]". It returns false for lines
// that do not have that shape.
func ParseLine(s string) (Line, bool) {
	var l Line
	s = strings.TrimLeft(strings.TrimRight(s, "\r"), " \t\ufeff")
	i := strings.IndexByte(s, ' ')
	if i <= 0 {
		return l, false
	}
	level, err := strconv.Atoi(s[:i])
	if err != nil || level < 0 {
		return l, false
	}
	l.Level = level
	rest := s[i+1:]

	if strings.HasPrefix(rest, "@") {
		j := strings.IndexByte(rest[1:], '@')
		if j < 0 {
			return l, false
		}
		l.Xref = rest[1 : j+1]
		rest = strings.TrimLeft(rest[j+2:], " ")
	}

	l.Tag = rest
	if k := strings.IndexByte(rest, ' '); k >= 0 {
		l.Tag = rest[:k]
		l.Value = rest[k+1:]
	}
	if l.Tag == "" {
		return l, false
	}
	return l, true
}

// Pointer returns the target id when the line value is a single
// cross-reference such as "@F12@".
func (l Line) Pointer() (string, bool) {
	v := l.Value
	if len(v) < 3 || v[0] != '@' || v[len(v)-1] != '@' {
		return "", false
	}
	id := v[1 : len(v)-1]
	if id[0] == '#' || strings.ContainsAny(id, "@ ") {
		return "", false
	}
	return id, true
}

// Lines splits record text into its raw lines.
func Lines(text string) []string {
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

// LevelOf returns the level number of a raw line, or -1 when it has none.
func LevelOf(raw string) int {
	l, ok := ParseLine(raw)
	if !ok {
		return -1
	}
	return l.Level
}
