package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rcliao/gedcart/internal/model"
)

// Block is the raw text of one level-0 record.
type Block struct {
	Xref string
	Tag  string
	Text string
}

// Split reads a GEDCOM document and returns every level-0 record that
// carries a cross-reference id. HEAD, TRLR and other id-less records are
// skipped.
func Split(r io.Reader) ([]Block, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var blocks []Block
	var cur *Block
	var lines []string
	flush := func() {
		if cur != nil && cur.Xref != "" {
			cur.Text = strings.Join(lines, "\n")
			blocks = append(blocks, *cur)
		}
		cur, lines = nil, nil
	}

	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimRight(sc.Text(), "\r")
		if n == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		l, ok := ParseLine(raw)
		if !ok {
			return nil, fmt.Errorf("line %d: malformed gedcom line %q", n, raw)
		}
		if l.Level == 0 {
			flush()
			cur = &Block{Xref: l.Xref, Tag: l.Tag}
		}
		if cur == nil {
			return nil, fmt.Errorf("line %d: data before first record", n)
		}
		lines = append(lines, strings.TrimLeft(raw, " \t"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan gedcom: %w", err)
	}
	flush()
	return blocks, nil
}

// Decode reads a GEDCOM document into graph records. Records of unknown
// kinds are skipped.
func Decode(r io.Reader) ([]model.Record, error) {
	blocks, err := Split(r)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(blocks))
	for _, b := range blocks {
		kind := model.RecordKind(b.Tag)
		if !kind.Valid() {
			continue
		}
		records = append(records, ToRecord(b))
	}

	// Families are named after their spouses.
	names := make(map[string]string, len(records))
	for _, rec := range records {
		names[rec.ID] = rec.SortName
	}
	for i, rec := range records {
		if rec.Kind != model.KindFamily {
			continue
		}
		var parts []string
		for _, l := range rec.Links {
			if l.Rel == model.RelHusband || l.Rel == model.RelWife {
				if n := names[l.To]; n != "" {
					parts = append(parts, n)
				}
			}
		}
		if len(parts) > 0 {
			records[i].SortName = strings.Join(parts, " + ")
		}
	}
	return records, nil
}

// ToRecord extracts links, media files and restriction from a raw block.
func ToRecord(b Block) model.Record {
	rec := model.Record{
		ID:          b.Xref,
		Kind:        model.RecordKind(b.Tag),
		Text:        b.Text,
		Restriction: model.TierHidden,
	}

	seen := make(map[model.Link]bool)
	for i, raw := range Lines(b.Text) {
		if i == 0 {
			continue
		}
		l, ok := ParseLine(raw)
		if !ok {
			continue
		}
		if to, ok := l.Pointer(); ok {
			link := model.Link{Rel: model.Relation(l.Tag), To: to}
			if !seen[link] {
				seen[link] = true
				rec.Links = append(rec.Links, link)
			}
			continue
		}
		if l.Level != 1 {
			continue
		}
		switch l.Tag {
		case "RESN":
			rec.Restriction = model.RestrictionTier(l.Value)
		case "FILE":
			if rec.Kind == model.KindMedia && l.Value != "" {
				rec.Files = append(rec.Files, model.MediaFile{Path: l.Value, External: IsExternal(l.Value)})
			}
		case "NAME", "TITL":
			if rec.SortName == "" {
				rec.SortName = sortName(l.Tag, l.Value)
			}
		}
	}
	if rec.SortName == "" && rec.Kind == model.KindNote {
		if first, ok := ParseLine(Lines(b.Text)[0]); ok {
			rec.SortName = first.Value
		}
	}
	if rec.SortName == "" {
		rec.SortName = rec.ID
	}
	return rec
}

// IsExternal reports whether a media file path is a URL rather than a file
// in the tree's media store.
func IsExternal(path string) bool {
	return strings.Contains(path, "://")
}

// sortName turns "John /Smith/" into "Smith, John" so that individuals sort
// by surname first.
func sortName(tag, value string) string {
	if tag != "NAME" {
		return strings.TrimSpace(value)
	}
	i := strings.IndexByte(value, '/')
	if i < 0 {
		return strings.TrimSpace(value)
	}
	j := strings.IndexByte(value[i+1:], '/')
	if j < 0 {
		return strings.TrimSpace(strings.ReplaceAll(value, "/", ""))
	}
	surname := strings.TrimSpace(value[i+1 : i+1+j])
	given := strings.TrimSpace(value[:i] + " " + value[i+2+j:])
	given = strings.Join(strings.Fields(given), " ")
	switch {
	case surname == "":
		return given
	case given == "":
		return surname
	}
	return surname + ", " + given
}
