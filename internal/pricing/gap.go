package pricing

// GapPlan is the incremental revenue needed to lift a deal to the hurdle margin,
// expressed as a raw amount and as two alternative asks.
type GapPlan struct {
	HurdleRate         float64
	Gap                float64
	AdditionalFXVolume float64
	AdditionalAdminBps float64
}

// SolveGap returns the revenue gap such that
// (revenue+gap-cost)/(revenue+gap) equals hurdleRate/100.
// The FX volume ask is 0 when fxSpreadBps is 0 and the admin bps ask is 0 when aum is 0.
// An ask that overflows, as with a vanishingly small spread or aum, is also left at 0.
func SolveGap(hurdleRate, totalCost, totalRevenue, fxSpreadBps, aum float64) (GapPlan, error) {
	if hurdleRate < 0 || hurdleRate >= 100 {
		return GapPlan{}, invalid("hurdle rate must be in [0, 100)")
	}
	if totalCost < 0 || totalRevenue < 0 {
		return GapPlan{}, invalid("cost and revenue must be >= 0")
	}
	if fxSpreadBps < 0 || aum < 0 {
		return GapPlan{}, invalid("fx spread and aum must be >= 0")
	}

	gap := totalCost/(1-hurdleRate/100) - totalRevenue
	if !finite(gap) {
		return GapPlan{}, errOutOfRange
	}
	plan := GapPlan{HurdleRate: hurdleRate, Gap: gap}
	if fxSpreadBps > 0 {
		if v := gap / (fxSpreadBps / bpsDivisor); finite(v) {
			plan.AdditionalFXVolume = v
		}
	}
	if aum > 0 {
		if v := gap / aum * bpsDivisor; finite(v) {
			plan.AdditionalAdminBps = v
		}
	}
	return plan, nil
}
