// Package advisory maps computed deal metrics and decision-tree answers to verdicts.
package advisory

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Simplici0/pricedesk/internal/pricing"
)

// Tier is the outcome class of a verdict. Presentation (colours, icons) is left to callers.
type Tier int

const (
	TierReject Tier = iota
	TierReferral
	TierApproved
)

func (t Tier) String() string {
	switch t {
	case TierApproved:
		return "approved"
	case TierReferral:
		return "referral"
	default:
		return "reject"
	}
}

// ParseTier maps a lower-case tier name to its Tier.
func ParseTier(name string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "approved":
		return TierApproved, nil
	case "referral":
		return TierReferral, nil
	case "reject":
		return TierReject, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML decodes a tier name.
func (t *Tier) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseTier(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Verdict is a deterministic recommendation.
type Verdict struct {
	Tier               Tier     `json:"tier" yaml:"tier"`
	Message            string   `json:"message" yaml:"message"`
	RecommendedActions []string `json:"recommended_actions,omitempty" yaml:"actions"`
}

// EvaluateVerdict applies the hurdle rule to a scored deal. The first matching rule wins:
// a negative margin rejects, a margin at or above the hurdle approves, anything else is
// referred with the gap plan as recommended actions. plan may be nil.
func EvaluateVerdict(marginPercent, hurdleRate, profit float64, plan *pricing.GapPlan) Verdict {
	switch {
	case marginPercent < 0:
		return Verdict{
			Tier: TierReject,
			Message: fmt.Sprintf("Deal is loss-making: $%s of additional revenue is needed to break even.",
				money(math.Abs(profit))),
			RecommendedActions: []string{
				"Re-price the admin fee or raise the minimum monthly fee before resubmitting.",
				"Review the complexity rating and overhead load with operations.",
			},
		}
	case marginPercent >= hurdleRate:
		return Verdict{
			Tier:    TierApproved,
			Message: fmt.Sprintf("Margin of %.2f%% meets the %.2f%% hurdle.", marginPercent, hurdleRate),
		}
	default:
		return Verdict{
			Tier: TierReferral,
			Message: fmt.Sprintf("Margin of %.2f%% is below the %.2f%% hurdle; refer for pricing committee review.",
				marginPercent, hurdleRate),
			RecommendedActions: gapActions(plan),
		}
	}
}

func gapActions(plan *pricing.GapPlan) []string {
	if plan == nil {
		return nil
	}
	actions := []string{
		fmt.Sprintf("Find $%s of additional annual revenue to reach the %.2f%% hurdle.", money(plan.Gap), plan.HurdleRate),
	}
	if plan.AdditionalFXVolume > 0 {
		actions = append(actions, fmt.Sprintf("Ask for $%s of additional FX volume at the current spread.", money(plan.AdditionalFXVolume)))
	}
	if plan.AdditionalAdminBps > 0 {
		actions = append(actions, fmt.Sprintf("Or raise the admin fee by %.2f bps.", plan.AdditionalAdminBps))
	}
	return actions
}

func money(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}
