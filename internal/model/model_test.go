package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]RecordKind{
		"INDI":       KindIndividual,
		"fam":        KindFamily,
		"Source":     KindSource,
		"_LOC":       KindLocation,
		"repository": KindRepository,
	} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseKind("HEAD")
	assert.False(t, ok)
}

func TestTierOrder(t *testing.T) {
	assert.Less(t, int(TierFullAdmin), int(TierGedcomAdmin))
	assert.Less(t, int(TierVisitor), int(TierHidden))
	assert.Equal(t, TierVisitor, TierMember.Stricter(TierVisitor))
	assert.Equal(t, TierVisitor, TierVisitor.Stricter(TierMember))
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier("")
	assert.True(t, ok)
	assert.Equal(t, TierHidden, tier)

	tier, ok = ParseTier("gedadmin")
	assert.True(t, ok)
	assert.Equal(t, TierGedcomAdmin, tier)

	_, ok = ParseTier("everyone")
	assert.False(t, ok)
}

func TestRestrictionTier(t *testing.T) {
	assert.Equal(t, TierGedcomAdmin, RestrictionTier("confidential"))
	assert.Equal(t, TierMember, RestrictionTier(" Privacy"))
	assert.Equal(t, TierHidden, RestrictionTier("locked"))
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleManager.IsManager())
	assert.False(t, RoleMember.IsManager())
	assert.True(t, RoleMember.IsMember())
	assert.False(t, RoleVisitor.IsMember())
	assert.Equal(t, TierGedcomAdmin, RoleManager.Tier())
	assert.Equal(t, TierVisitor, Role("stranger").Tier())
}

func TestRequestGenerations(t *testing.T) {
	assert.Equal(t, Unlimited, Request{Rule: RuleAncestors}.Generations())
	n := 2
	assert.Equal(t, 2, Request{Rule: RuleAncestors, Depth: &n}.Generations())
	assert.True(t, RuleAllCircles.Global())
	assert.False(t, RuleAncestors.Global())
}

func TestRelationExpand(t *testing.T) {
	assert.Equal(t, []Relation{RelHusband, RelWife}, RelSpouse.Expand())
	assert.Equal(t, []Relation{RelChild}, RelChild.Expand())
}
