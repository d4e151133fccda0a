package filter

import (
	"regexp"
	"strconv"
	"strings"
)

// Built-in feature tags.
const (
	FeaturePowerLow        = "power-low"
	FeaturePowerMid        = "power-mid"
	FeaturePowerHigh       = "power-high"
	FeatureWireless        = "wireless"
	FeatureWired           = "wired"
	FeatureNoiseCancelling = "noise-cancelling"
	FeatureWaterproof      = "waterproof"
	Feature5G              = "5g"
)

// Features lists the built-in tags in display order.
var Features = []string{
	FeatureWireless,
	FeatureWired,
	FeatureNoiseCancelling,
	FeatureWaterproof,
	Feature5G,
	FeaturePowerLow,
	FeaturePowerMid,
	FeaturePowerHigh,
}

var (
	wattRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:w|watts?)\b`)
	wirelessRe  = regexp.MustCompile(`\b(wireless|bluetooth|tws)\b`)
	wiredRe     = regexp.MustCompile(`\bwired\b|3\.5\s*mm|\baux\b`)
	ancRe       = regexp.MustCompile(`noise[\s-]*(cancell?ing|cancel{1,2}ation)|\banc\b`)
	waterRe     = regexp.MustCompile(`waterproof|water[\s-]*resistant|\bipx?\d{1,2}\b`)
	fiveGRe     = regexp.MustCompile(`\b5g\b`)
	featureRegs = map[string]*regexp.Regexp{
		FeatureWireless:        wirelessRe,
		FeatureWired:           wiredRe,
		FeatureNoiseCancelling: ancRe,
		FeatureWaterproof:      waterRe,
		Feature5G:              fiveGRe,
	}
)

// watts returns the first wattage mentioned in text.
func watts(text string) (float64, bool) {
	m := wattRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	w, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return w, true
}

// matchFeature reports whether lower-cased text carries tag. Unknown tags
// fall back to a substring search.
func matchFeature(tag, text string) bool {
	switch tag {
	case FeaturePowerLow, FeaturePowerMid, FeaturePowerHigh:
		w, ok := watts(text)
		if !ok {
			return false
		}
		switch tag {
		case FeaturePowerLow:
			return w < 20
		case FeaturePowerMid:
			return w >= 20 && w <= 50
		default:
			return w > 50
		}
	}
	if re, ok := featureRegs[tag]; ok {
		return re.MatchString(text)
	}
	return strings.Contains(text, tag)
}
