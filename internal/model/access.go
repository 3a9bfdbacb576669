package model

import "strings"

// AccessTier orders privacy filtering from least to most restrictive.
type AccessTier int

const (
	TierFullAdmin AccessTier = iota
	TierGedcomAdmin
	TierMember
	TierVisitor
	TierHidden
)

var tierNames = map[AccessTier]string{
	TierFullAdmin:   "none",
	TierGedcomAdmin: "gedadmin",
	TierMember:      "user",
	TierVisitor:     "visitor",
	TierHidden:      "hidden",
}

func (t AccessTier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return "unknown"
}

// Stricter returns the more restrictive of t and o.
func (t AccessTier) Stricter(o AccessTier) AccessTier {
	if o > t {
		return o
	}
	return t
}

// ParseTier maps a privatize option to a tier. The empty string means no
// explicit request and yields the strictest tier.
func ParseTier(s string) (AccessTier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "admin":
		return TierFullAdmin, true
	case "gedadmin", "manager":
		return TierGedcomAdmin, true
	case "user", "member":
		return TierMember, true
	case "visitor":
		return TierVisitor, true
	case "", "hidden":
		return TierHidden, true
	}
	return TierHidden, false
}

// RestrictionTier maps a GEDCOM RESN value to the most restrictive tier that
// may still see the restricted item.
func RestrictionTier(resn string) AccessTier {
	switch strings.ToLower(strings.TrimSpace(resn)) {
	case "confidential":
		return TierGedcomAdmin
	case "privacy":
		return TierMember
	}
	return TierHidden
}

// Role is the viewer's role on a tree.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleVisitor Role = "visitor"
)

// ValidRoles are the allowed viewer roles.
var ValidRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleManager: true,
	RoleMember:  true,
	RoleVisitor: true,
}

// IsManager reports whether the role may export unprivatized data.
func (r Role) IsManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// IsMember reports whether the role is an authenticated member of the tree.
func (r Role) IsMember() bool {
	return r.IsManager() || r == RoleMember
}

// Tier is the access tier the role browses the tree with.
func (r Role) Tier() AccessTier {
	switch r {
	case RoleAdmin:
		return TierFullAdmin
	case RoleManager:
		return TierGedcomAdmin
	case RoleMember:
		return TierMember
	}
	return TierVisitor
}
