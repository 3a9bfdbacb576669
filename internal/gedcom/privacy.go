package gedcom

import (
	"strings"

	"github.com/rcliao/gedcart/internal/model"
)

// skeletonTags are the level-1 facts that survive at the hidden tier: enough
// to identify a record and keep the family structure intact.
var skeletonTags = map[string]bool{
	"NAME": true,
	"SEX":  true,
	"TITL": true,
	"FILE": true,
	"FAMC": true,
	"FAMS": true,
	"HUSB": true,
	"WIFE": true,
	"CHIL": true,
	"RESN": true,
}

// Privatize removes the level-1 facts of a record that tier may not see.
// A fact is hidden when it carries a level-2 RESN stricter than tier allows;
// at the hidden tier only the skeleton facts remain.
func Privatize(text string, tier model.AccessTier) string {
	if tier == model.TierFullAdmin {
		return text
	}
	lines := Lines(text)
	out := make([]string, 0, len(lines))
	out = append(out, lines[0])

	for i := 1; i < len(lines); {
		j := i + 1
		for j < len(lines) && LevelOf(lines[j]) > 1 {
			j++
		}
		if keepFact(lines[i:j], tier) {
			out = append(out, lines[i:j]...)
		}
		i = j
	}
	return strings.Join(out, "\n")
}

func keepFact(block []string, tier model.AccessTier) bool {
	head, ok := ParseLine(block[0])
	if !ok {
		return tier != model.TierHidden
	}
	if tier == model.TierHidden && !skeletonTags[head.Tag] {
		return false
	}
	for _, raw := range block[1:] {
		l, ok := ParseLine(raw)
		if ok && l.Level == 2 && l.Tag == "RESN" && tier > model.RestrictionTier(l.Value) {
			return false
		}
	}
	return true
}

// PrefixFiles rewrites the level-1 FILE paths of a media record so that
// they point below prefix. External files are left alone.
func PrefixFiles(text, prefix string) string {
	if prefix == "" {
		return text
	}
	lines := Lines(text)
	for i, raw := range lines {
		l, ok := ParseLine(raw)
		if !ok || l.Level != 1 || l.Tag != "FILE" || l.Value == "" || IsExternal(l.Value) {
			continue
		}
		lines[i] = "1 FILE " + prefix + l.Value
	}
	return strings.Join(lines, "\n")
}
