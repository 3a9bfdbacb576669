package export

import (
	"strings"

	"github.com/rcliao/gedcart/internal/gedcom"
)

// maxPruneLevel is the deepest level at which cross-references are checked.
const maxPruneLevel = 3

// PruneReferences removes every cross-reference at levels 1 to 3 whose
// target is not in keep, together with the lines nested under it.
// References that stay are left byte for byte.
func PruneReferences(text string, keep map[string]bool) string {
	lines := gedcom.Lines(text)
	out := make([]string, 0, len(lines))

	drop := -1
	for i, raw := range lines {
		l, ok := gedcom.ParseLine(raw)
		if i == 0 {
			out = append(out, raw)
			continue
		}
		if !ok {
			if drop < 0 {
				out = append(out, raw)
			}
			continue
		}
		if drop >= 0 {
			if l.Level > drop {
				continue
			}
			drop = -1
		}
		if l.Level >= 1 && l.Level <= maxPruneLevel {
			if to, ok := l.Pointer(); ok && !keep[to] {
				drop = l.Level
				continue
			}
		}
		out = append(out, raw)
	}
	return strings.Join(out, "\n")
}
