// Package classify maps a purchased product descriptor to the internal
// challenge taxonomy and the MT5 trading group it provisions into.
package classify

import "strings"

// Challenge types. The prime_* family is the premium tier, lite_* the base
// tier. Unclassified is a terminal state for product names no rule matches;
// callers decide how to handle it rather than inheriting a silent default.
const (
	TypeCompetition  = "Competition"
	TypePrimeInstant = "prime_instant"
	TypePrime1Step   = "prime_1_step"
	TypePrime2Step   = "prime_2_step"
	TypeLiteInstant  = "lite_instant"
	TypeLite1Step    = "lite_1_step"
	TypeLite2Step    = "lite_2_step"
	TypeFunded       = "funded"
	TypeUnclassified = "unclassified"
)

// SharedDemoGroup is the platform-wide MT5 group used for competitions and
// all assessment-phase accounts, regardless of product branding.
const SharedDemoGroup = `demo\Pro-Platinum`

// Input is everything the classifier looks at. ProductName is the free-text
// account-type name from the order; MetadataType is the legacy checkout type
// tag kept for orders created before product names carried the tier.
type Input struct {
	ProductName   string
	IsCompetition bool
	MetadataType  string
	DefaultGroup  string
}

type Result struct {
	ChallengeType string
	TradingGroup  string
}

// assessment keywords force the shared demo group independent of tier.
var assessmentKeywords = []string{"1 step", "1-step", "2 step", "2-step", "evaluation", "instant", "rapid"}

// Classify is pure and deterministic. Rule order is significant: the
// competition flag overrides everything, the assessment-keyword group
// override applies before tier branching, and the premium tier is checked
// before the base tier so "Pro 2 Step" never lands in lite_2_step.
func Classify(in Input) Result {
	name := strings.ToLower(strings.TrimSpace(in.ProductName))

	if in.IsCompetition {
		return Result{ChallengeType: TypeCompetition, TradingGroup: SharedDemoGroup}
	}

	group := in.DefaultGroup
	if group == "" {
		group = SharedDemoGroup
	}
	for _, kw := range assessmentKeywords {
		if strings.Contains(name, kw) {
			group = SharedDemoGroup
			break
		}
	}

	if strings.Contains(name, "pro") {
		switch {
		case strings.Contains(name, "instant"):
			return Result{ChallengeType: TypePrimeInstant, TradingGroup: group}
		case strings.Contains(name, "1 step"), strings.Contains(name, "1-step"):
			return Result{ChallengeType: TypePrime1Step, TradingGroup: group}
		case strings.Contains(name, "2 step"), strings.Contains(name, "2-step"):
			return Result{ChallengeType: TypePrime2Step, TradingGroup: group}
		default:
			return Result{ChallengeType: TypePrime2Step, TradingGroup: group}
		}
	}

	switch {
	case strings.Contains(name, "instant funding"):
		return Result{ChallengeType: TypeLiteInstant, TradingGroup: group}
	case strings.Contains(name, "1 step"), strings.Contains(name, "1-step"):
		return Result{ChallengeType: TypeLite1Step, TradingGroup: group}
	case strings.Contains(name, "2 step"), strings.Contains(name, "2-step"):
		return Result{ChallengeType: TypeLite2Step, TradingGroup: group}
	case strings.Contains(name, "funded"), strings.Contains(name, "master"):
		return Result{ChallengeType: TypeFunded, TradingGroup: group}
	}

	// Legacy fallback for orders tagged at checkout before names carried
	// the tier.
	switch strings.ToLower(strings.TrimSpace(in.MetadataType)) {
	case "instant":
		return Result{ChallengeType: TypeLiteInstant, TradingGroup: group}
	case "1-step":
		return Result{ChallengeType: TypeLite1Step, TradingGroup: group}
	case "2-step":
		return Result{ChallengeType: TypeLite2Step, TradingGroup: group}
	}

	return Result{ChallengeType: TypeUnclassified, TradingGroup: group}
}
