// Package model defines the core genealogy and cart data types.
package model

import "strings"

// RecordKind is the GEDCOM level-0 tag of a record.
type RecordKind string

const (
	KindIndividual RecordKind = "INDI"
	KindFamily     RecordKind = "FAM"
	KindMedia      RecordKind = "OBJE"
	KindLocation   RecordKind = "_LOC"
	KindNote       RecordKind = "NOTE"
	KindRepository RecordKind = "REPO"
	KindSource     RecordKind = "SOUR"
	KindSubmitter  RecordKind = "SUBM"
)

// Kinds lists every record kind the cart understands, in display order.
var Kinds = []RecordKind{
	KindIndividual,
	KindFamily,
	KindMedia,
	KindLocation,
	KindNote,
	KindRepository,
	KindSource,
	KindSubmitter,
}

var kindNames = map[RecordKind]string{
	KindIndividual: "Individual",
	KindFamily:     "Family",
	KindMedia:      "Media",
	KindLocation:   "Location",
	KindNote:       "Note",
	KindRepository: "Repository",
	KindSource:     "Source",
	KindSubmitter:  "Submitter",
}

// Name returns the human-readable name of the kind.
func (k RecordKind) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return string(k)
}

// Valid reports whether k is one of the known record kinds.
func (k RecordKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts either a GEDCOM tag ("INDI") or a kind name ("individual").
func ParseKind(s string) (RecordKind, bool) {
	if k := RecordKind(strings.ToUpper(s)); k.Valid() {
		return k, true
	}
	if k := RecordKind(s); k.Valid() {
		return k, true
	}
	for k, n := range kindNames {
		if strings.EqualFold(n, s) {
			return k, true
		}
	}
	return "", false
}

// Relation names a kind of cross-reference between records. The values are
// the GEDCOM tags that carry the pointer, except for RelSpouse which is the
// union of RelHusband and RelWife.
type Relation string

const (
	RelParentFamily Relation = "FAMC"
	RelSpouseFamily Relation = "FAMS"
	RelHusband      Relation = "HUSB"
	RelWife         Relation = "WIFE"
	RelSpouse       Relation = "SPOUSE"
	RelChild        Relation = "CHIL"
	RelAlias        Relation = "ALIA"
	RelMedia        Relation = "OBJE"
	RelNote         Relation = "NOTE"
	RelSource       Relation = "SOUR"
	RelSubmitter    Relation = "SUBM"
	RelLocation     Relation = "_LOC"
	RelRepository   Relation = "REPO"
)

// AuxiliaryRelations are the links followed when a record is expanded with
// its media, notes, sources, submitters and locations.
var AuxiliaryRelations = []Relation{RelMedia, RelLocation, RelNote, RelSource, RelSubmitter}

// Expand resolves derived relations into the tags stored in the graph.
func (r Relation) Expand() []Relation {
	if r == RelSpouse {
		return []Relation{RelHusband, RelWife}
	}
	return []Relation{r}
}

// Link is a single outgoing cross-reference of a record.
type Link struct {
	Rel Relation `json:"rel"`
	To  string   `json:"to"`
}

// MediaFile is a file attached to a media record.
type MediaFile struct {
	Path     string `json:"path"`
	External bool   `json:"external,omitempty"`
}

// Record is a stored genealogy record as the graph adapters hold it.
type Record struct {
	ID          string      `json:"id"`
	Kind        RecordKind  `json:"kind"`
	Text        string      `json:"gedcom"`
	SortName    string      `json:"sort_name"`
	Restriction AccessTier  `json:"restriction"`
	Links       []Link      `json:"links,omitempty"`
	Files       []MediaFile `json:"files,omitempty"`
}

// ChainNode is one marriage step in a partner chain: the spouse reached and
// the family through which they were reached.
type ChainNode struct {
	Individual string       `json:"individual"`
	Family     string       `json:"family"`
	Children   []*ChainNode `json:"children,omitempty"`
}
