package pricing

import "strings"

// Complexity is the cost multiplier applied to a deal's base servicing cost.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

var complexityFactors = map[Complexity]float64{
	ComplexityLow:    1.0,
	ComplexityMedium: 1.5,
	ComplexityHigh:   2.5,
}

// Complexities lists the selectable levels in display order.
var Complexities = []Complexity{ComplexityLow, ComplexityMedium, ComplexityHigh}

// Factor returns the multiplier for c, and false when c is not a known level.
func (c Complexity) Factor() (float64, bool) {
	f, ok := complexityFactors[c]
	return f, ok
}

// ParseComplexity maps a selection label such as "medium" to its Complexity.
func ParseComplexity(label string) (Complexity, error) {
	label = strings.TrimSpace(label)
	for _, c := range Complexities {
		if strings.EqualFold(string(c), label) {
			return c, nil
		}
	}
	return "", invalid("unknown complexity %q", label)
}

const bpsDivisor = 10000

// BundleInput holds the revenue drivers and servicing cost of a client deal.
type BundleInput struct {
	AUM           float64    `json:"aum"`
	AdminBps      float64    `json:"admin_bps"`
	MinMonthlyFee float64    `json:"min_monthly_fee"`
	FXVolume      float64    `json:"fx_volume"`
	FXSpreadBps   float64    `json:"fx_spread_bps"`
	CashBalance   float64    `json:"cash_balance"`
	CashSpreadBps float64    `json:"cash_spread_bps"`
	BaseCost      float64    `json:"base_cost"`
	Complexity    Complexity `json:"complexity"`
	// OverheadLoad is a fraction in [0,1], e.g. 0.2 for a 20% load.
	OverheadLoad float64 `json:"overhead_load"`
}

// Validate rejects negative amounts, an unknown complexity and an overhead load outside [0,1].
func (in BundleInput) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"aum", in.AUM},
		{"admin bps", in.AdminBps},
		{"minimum monthly fee", in.MinMonthlyFee},
		{"fx volume", in.FXVolume},
		{"fx spread bps", in.FXSpreadBps},
		{"cash balance", in.CashBalance},
		{"cash spread bps", in.CashSpreadBps},
		{"base cost", in.BaseCost},
	}
	for _, f := range fields {
		if f.value < 0 {
			return invalid("%s must be >= 0", f.name)
		}
	}
	if in.OverheadLoad < 0 || in.OverheadLoad > 1 {
		return invalid("overhead load must be between 0 and 1")
	}
	if _, ok := in.Complexity.Factor(); !ok {
		return invalid("unknown complexity %q", in.Complexity)
	}
	return nil
}

// RevenueStreams are the per-stream annual revenues of a deal.
type RevenueStreams struct {
	AdminBpsRevenue float64
	AdminFloor      float64
	Admin           float64
	FX              float64
	Cash            float64
	// FloorBinding is true when the minimum monthly fee sets the admin revenue.
	FloorBinding bool
}

// BundleResult is the scored deal.
type BundleResult struct {
	Streams          RevenueStreams
	ComplexityFactor float64
	KPIs             KPIs
}

// ScoreBundle computes total relationship value, servicing cost and margin of a deal.
func ScoreBundle(in BundleInput) (BundleResult, error) {
	if err := in.Validate(); err != nil {
		return BundleResult{}, err
	}
	factor, _ := in.Complexity.Factor()

	streams := RevenueStreams{
		AdminBpsRevenue: in.AUM * in.AdminBps / bpsDivisor,
		AdminFloor:      in.MinMonthlyFee * 12,
		FX:              in.FXVolume * in.FXSpreadBps / bpsDivisor,
		Cash:            in.CashBalance * in.CashSpreadBps / bpsDivisor,
	}
	streams.Admin = streams.AdminBpsRevenue
	if streams.AdminFloor > streams.AdminBpsRevenue {
		streams.Admin = streams.AdminFloor
		streams.FloorBinding = true
	}

	totalRevenue := streams.Admin + streams.FX + streams.Cash
	totalCost := in.BaseCost * factor * (1 + in.OverheadLoad)

	kpis := KPIs{
		TotalRevenue:  totalRevenue,
		TotalCost:     totalCost,
		Profit:        totalRevenue - totalCost,
		MarginPercent: marginOf(totalRevenue, totalCost),
	}
	kpis.ROIPercent = kpis.MarginPercent
	if !finite(totalRevenue, totalCost, kpis.Profit, kpis.MarginPercent) {
		return BundleResult{}, errOutOfRange
	}

	return BundleResult{Streams: streams, ComplexityFactor: factor, KPIs: kpis}, nil
}
