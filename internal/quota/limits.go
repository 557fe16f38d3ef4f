package quota

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	TierFree     = "free"
	TierBasic    = "basic"
	TierPro      = "pro"
	TierBusiness = "business"
)

// tiers in upgrade order
var tierOrder = []string{TierFree, TierBasic, TierPro, TierBusiness}

// maps a tier to its monthly ceiling
type TierLimits map[string]Ceiling

func DefaultTierLimits() TierLimits {
	return TierLimits{
		TierFree:     5,
		TierBasic:    50,
		TierPro:      200,
		TierBusiness: Unbounded,
	}
}

// resolves the ceiling for tier, unknown tiers get the free ceiling
func (l TierLimits) Ceiling(tier string) Ceiling {
	if c, ok := l[strings.ToLower(tier)]; ok {
		return c
	}

	if c, ok := l[TierFree]; ok {
		return c
	}

	return DefaultTierLimits()[TierFree]
}

func (c Ceiling) Bounded() bool {
	return c >= 0
}

// renders the ceiling for humans, "∞" when unbounded
func (c Ceiling) String() string {
	if !c.Bounded() {
		return "∞"
	}

	return strconv.FormatInt(int64(c), 10)
}

// reports whether tier is one of the known subscription tiers
func ValidTier(tier string) bool {
	for _, t := range tierOrder {
		if t == tier {
			return true
		}
	}

	return false
}

// the next tier up, or "" for the top tier
func NextTier(tier string) string {
	for i, t := range tierOrder {
		if t == tier && i+1 < len(tierOrder) {
			return tierOrder[i+1]
		}
	}

	if !ValidTier(tier) {
		return TierBasic
	}

	return ""
}

// tier limits file format:
//
//	tiers:
//	  free: 5
//	  basic: 50
//	  business: unbounded
type limitsFile struct {
	Tiers map[string]string `yaml:"tiers"`
}

// reads tier ceilings from a YAML file, merged over the defaults
func LoadTierLimits(path string) (TierLimits, error) {
	limits := DefaultTierLimits()

	if path == "" {
		return limits, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier limits file: %w", err)
	}

	var file limitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse tier limits file: %w", err)
	}

	for tier, raw := range file.Tiers {
		ceiling, err := ParseCeiling(raw)
		if err != nil {
			return nil, fmt.Errorf("tier %q: %w", tier, err)
		}

		limits[strings.ToLower(tier)] = ceiling
	}

	return limits, nil
}

// parses "unbounded", "unlimited", "-1" or a non-negative integer
func ParseCeiling(raw string) (Ceiling, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unbounded", "unlimited", "-1", "inf", "infinity":
		return Unbounded, nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid ceiling %q", raw)
	}

	return Ceiling(n), nil
}
