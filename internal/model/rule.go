package model

import "math"

// Rule selects how records are collected from a seed.
type Rule string

const (
	RuleRecordOnly       Rule = "record-only"
	RuleChildren         Rule = "children"
	RuleAncestors        Rule = "ancestors"
	RuleDescendants      Rule = "descendants"
	RuleParentFamilies   Rule = "parent-families"
	RuleSpouseFamilies   Rule = "spouse-families"
	RuleAncestorFamilies Rule = "ancestor-families"
	RulePartnerChains    Rule = "partner-chains"
	RuleAllPartnerChains Rule = "all-partner-chains"
	RuleAllCircles       Rule = "all-circles"
)

// ValidRules are the allowed closure rules.
var ValidRules = map[Rule]bool{
	RuleRecordOnly:       true,
	RuleChildren:         true,
	RuleAncestors:        true,
	RuleDescendants:      true,
	RuleParentFamilies:   true,
	RuleSpouseFamilies:   true,
	RuleAncestorFamilies: true,
	RulePartnerChains:    true,
	RuleAllPartnerChains: true,
	RuleAllCircles:       true,
}

// Global reports whether the rule works on the whole tree instead of a seed.
func (r Rule) Global() bool {
	return r == RuleAllPartnerChains || r == RuleAllCircles
}

// Unlimited is the depth sentinel meaning "walk every generation".
const Unlimited = math.MaxInt

// Request is a closure request from the presentation layer.
type Request struct {
	Rule  Rule   `json:"rule" validate:"required,oneof=record-only children ancestors descendants parent-families spouse-families ancestor-families partner-chains all-partner-chains all-circles"`
	ID    string `json:"id,omitempty" validate:"omitempty,max=40"`
	Depth *int   `json:"depth,omitempty" validate:"omitempty,gte=0"`
}

// Generations returns the requested depth bound, or Unlimited when none was given.
func (r Request) Generations() int {
	if r.Depth == nil {
		return Unlimited
	}
	return *r.Depth
}
