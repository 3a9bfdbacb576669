package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Header describes the HEAD record of an exported document.
type Header struct {
	Source   string
	Filename string
	Date     time.Time
	Tree     string
}

// Writer writes a GEDCOM document record by record.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the HEAD record.
func (w *Writer) WriteHeader(h Header) error {
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}
	lines := []string{
		"0 HEAD",
		"1 SOUR " + h.Source,
		"2 NAME " + h.Source,
		"1 DEST DISKETTE",
		"1 DATE " + strings.ToUpper(date.UTC().Format("2 Jan 2006")),
		"2 TIME " + date.UTC().Format("15:04:05"),
		"1 GEDC",
		"2 VERS 5.5.1",
		"2 FORM LINEAGE-LINKED",
		"1 CHAR UTF-8",
	}
	if h.Filename != "" {
		lines = append(lines, "1 FILE "+h.Filename)
	}
	if h.Tree != "" {
		lines = append(lines, "1 _TREE "+h.Tree)
	}
	for _, l := range lines {
		if _, err := w.w.WriteString(l + "\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	return nil
}

// WriteRecord writes one record's text followed by a newline.
func (w *Writer) WriteRecord(text string) error {
	if _, err := w.w.WriteString(strings.TrimRight(text, "\n") + "\n"); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Close writes the trailer and flushes.
func (w *Writer) Close() error {
	if _, err := w.w.WriteString("0 TRLR\n"); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return w.w.Flush()
}
