package domain

import "strings"

// RarityTier is one of the closed set of rarity categories
type RarityTier string

const (
	RarityCommon   RarityTier = "Common"
	RarityRare     RarityTier = "Rare"
	RaritySuper    RarityTier = "Super"
	RarityUltra    RarityTier = "Ultra"
	RarityGalactic RarityTier = "Galactic"
)

// RarityInfo holds presentation metadata for a rarity tier
type RarityInfo struct {
	CSSClass    string
	Color       string
	ColorHex    string
	Weight      int
	Border      string
	Glow        bool
	Animated    bool
	Holographic bool
	Iridescent  bool
}

// rarityTiers is the fixed tier table. Visual styles live in the web
// client's rarity stylesheet; only the class names and weights matter here.
var rarityTiers = map[RarityTier]RarityInfo{
	RarityCommon: {
		CSSClass: "rarity-common",
		Color:    "var(--brand-mint)",
		ColorHex: "#7FFFD4",
		Weight:   60,
		Border:   "2px solid var(--brand-mint)",
	},
	RarityRare: {
		CSSClass: "rarity-rare",
		Color:    "var(--brand-blue)",
		ColorHex: "#4CC9F0",
		Weight:   25,
		Border:   "2px solid var(--brand-blue)",
		Glow:     true,
	},
	RaritySuper: {
		CSSClass: "rarity-super",
		Color:    "var(--brand-purple)",
		ColorHex: "#6C5CE7",
		Weight:   10,
		Border:   "3px solid var(--brand-purple)",
		Glow:     true,
	},
	RarityUltra: {
		CSSClass: "rarity-ultra",
		Color:    "var(--brand-pink)",
		ColorHex: "#FF6B9D",
		Weight:   3,
		Border:   "3px solid var(--brand-pink)",
		Glow:     true,
		Animated: true,
	},
	RarityGalactic: {
		CSSClass:    "rarity-galactic",
		Color:       "var(--gradient-iridescent)",
		ColorHex:    "#e0b3ff",
		Weight:      2,
		Border:      "4px solid transparent",
		Glow:        true,
		Holographic: true,
		Iridescent:  true,
	},
}

// legacyRarityNames maps retired and free-form tier labels onto the
// current tier set, keyed by lower-cased label. Canonical names are
// matched exactly before this table is consulted, so the legacy
// lowercase "rare" (an old tier one step below the old "super") still
// maps to Super while the canonical "Rare" stays Rare.
var legacyRarityNames = map[string]RarityTier{
	"common":    RarityCommon,
	"uncommon":  RarityRare,
	"rare":      RaritySuper,
	"super":     RaritySuper,
	"epic":      RarityUltra,
	"ultra":     RarityUltra,
	"legendary": RarityGalactic,
	"mythic":    RarityGalactic,
	"galactic":  RarityGalactic,
}

// NormalizeRarity maps any rarity label onto the closed tier set.
// Total and idempotent: canonical tier names map to themselves, legacy
// names go through the lookup table, everything else (including the
// empty string) falls back to Common.
func NormalizeRarity(label string) RarityTier {
	if _, ok := rarityTiers[RarityTier(label)]; ok {
		return RarityTier(label)
	}
	if tier, ok := legacyRarityNames[strings.ToLower(label)]; ok {
		return tier
	}
	return RarityCommon
}

// TierInfo returns presentation metadata for a tier, normalizing the
// input first so unknown labels resolve to Common's metadata.
func TierInfo(tier RarityTier) RarityInfo {
	return rarityTiers[NormalizeRarity(string(tier))]
}

// RarityTiers returns the closed tier set
func RarityTiers() []RarityTier {
	return []RarityTier{RarityCommon, RarityRare, RaritySuper, RarityUltra, RarityGalactic}
}
