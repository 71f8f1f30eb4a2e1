package plans

import "strings"

// Tier constants, ordered from lowest to highest.
const (
	TierNone     = "none"
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

// PlanTier derives the display tier from the plan's video quality, with a
// screen-count fallback for rows that predate the quality column.
func PlanTier(p *Plan) string {
	if p == nil {
		return TierNone
	}

	switch strings.ToLower(strings.TrimSpace(p.VideoQuality)) {
	case "4k", "2160p":
		return TierPremium
	case "1080p":
		return TierStandard
	case "720p", "480p":
		return TierBasic
	}

	switch {
	case p.Screens >= 4:
		return TierPremium
	case p.Screens >= 2:
		return TierStandard
	default:
		return TierBasic
	}
}
