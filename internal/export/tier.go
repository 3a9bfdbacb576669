package export

import (
	"strings"

	"github.com/rcliao/gedcart/internal/model"
)

// ResolveTier turns a requested privatize option into the tier the export
// runs at. Requests the role may not make are demoted step by step: a
// non-manager asking for "none" or "gedadmin" drops to "user", and a
// non-member asking for "user" drops to "visitor". An empty or unknown
// request yields the hidden tier.
func ResolveTier(requested string, role model.Role) model.AccessTier {
	req := strings.ToLower(strings.TrimSpace(requested))
	if (req == "none" || req == "gedadmin") && !role.IsManager() {
		req = "user"
	}
	if req == "user" && !role.IsMember() {
		req = "visitor"
	}
	tier, ok := model.ParseTier(req)
	if !ok {
		return model.TierHidden
	}
	return tier
}
