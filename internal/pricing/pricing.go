package pricing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when an input is outside the domain of a calculation.
// Zero revenue or a zero selling price are not errors: they yield zero KPIs.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// errOutOfRange is returned when valid inputs overflow to an infinite or NaN figure.
var errOutOfRange = invalid("result out of range")

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// CostInput represents the cost drivers of the reporting service.
type CostInput struct {
	VendorCost      float64
	Resources       float64
	CostPerResource float64
	Units           float64
}

// Validate reports an ErrInvalidInput for negative amounts, a non-positive unit count
// or a fractional resource or unit count.
func (in CostInput) Validate() error {
	if in.VendorCost < 0 {
		return invalid("vendor cost must be >= 0")
	}
	if in.Resources < 0 {
		return invalid("resources must be >= 0")
	}
	if !isWhole(in.Resources) {
		return invalid("resources must be a whole number")
	}
	if in.CostPerResource < 0 {
		return invalid("cost per resource must be >= 0")
	}
	if in.Units <= 0 {
		return invalid("units must be > 0")
	}
	if !isWhole(in.Units) {
		return invalid("units must be a whole number")
	}
	return nil
}

// Periods holds one value split evenly across annual, quarterly and monthly periods.
type Periods struct {
	Annual    float64
	Quarterly float64
	Monthly   float64
}

func splitAnnual(annual float64) Periods {
	return Periods{Annual: annual, Quarterly: annual / 4, Monthly: annual / 12}
}

// Breakdown contains the cost and price lines of a cost-plus calculation in USD.
type Breakdown struct {
	VendorCost   float64
	ResourceCost float64
	TotalCost    float64
	CostPerUnit  Periods
	PricePerUnit Periods
	TotalRevenue float64
}

// KPIs is the derived key performance indicator set. It is recomputed on every call.
type KPIs struct {
	TotalRevenue  float64
	TotalCost     float64
	Profit        float64
	MarginPercent float64
	// ROIPercent mirrors MarginPercent. A profit/cost ROI has not been signed off,
	// so both fields are kept distinct for when it is.
	ROIPercent     float64
	BreakEvenUnits float64
	RevenuePerUnit float64
}

// Converted holds the price and revenue figures replicated into one foreign currency.
type Converted struct {
	Currency     Currency
	Rate         float64
	PricePerUnit Periods
	TotalRevenue float64
}

// Result groups the full cost-plus output.
type Result struct {
	Breakdown  Breakdown
	KPIs       KPIs
	Conversion []Converted
}

// Calculate computes cost-plus pricing for the given cost drivers, FX rates and margin.
func Calculate(in CostInput, fx FXRates, marginPercent float64) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if err := fx.Validate(); err != nil {
		return Result{}, err
	}
	if marginPercent < 0 {
		return Result{}, invalid("margin percent must be >= 0")
	}

	resourceCost := in.Resources * in.CostPerResource
	totalCost := in.VendorCost + resourceCost

	costPerUnit := totalCost / in.Units
	pricePerUnit := costPerUnit * (1 + marginPercent/100)
	totalRevenue := pricePerUnit * in.Units

	breakdown := Breakdown{
		VendorCost:   in.VendorCost,
		ResourceCost: resourceCost,
		TotalCost:    totalCost,
		CostPerUnit:  splitAnnual(costPerUnit),
		PricePerUnit: splitAnnual(pricePerUnit),
		TotalRevenue: totalRevenue,
	}

	kpis := KPIs{
		TotalRevenue:   totalRevenue,
		TotalCost:      totalCost,
		Profit:         totalRevenue - totalCost,
		MarginPercent:  marginOf(totalRevenue, totalCost),
		RevenuePerUnit: totalRevenue / in.Units,
	}
	kpis.ROIPercent = kpis.MarginPercent
	if pricePerUnit > 0 {
		kpis.BreakEvenUnits = totalCost / pricePerUnit
	}
	if !finite(totalCost, pricePerUnit, totalRevenue, kpis.Profit, kpis.MarginPercent, kpis.BreakEvenUnits) {
		return Result{}, errOutOfRange
	}

	conversions := make([]Converted, 0, len(ForeignCurrencies))
	for _, cur := range ForeignCurrencies {
		rate := fx.Rate(cur)
		if !finite(totalRevenue * rate) {
			return Result{}, errOutOfRange
		}
		conversions = append(conversions, Converted{
			Currency: cur,
			Rate:     rate,
			PricePerUnit: Periods{
				Annual:    breakdown.PricePerUnit.Annual * rate,
				Quarterly: breakdown.PricePerUnit.Quarterly * rate,
				Monthly:   breakdown.PricePerUnit.Monthly * rate,
			},
			TotalRevenue: totalRevenue * rate,
		})
	}

	return Result{Breakdown: breakdown, KPIs: kpis, Conversion: conversions}, nil
}

// marginOf returns (revenue-cost)/revenue as a percent, or 0 when there is no revenue.
func marginOf(revenue, cost float64) float64 {
	if revenue == 0 {
		return 0
	}
	return (revenue - cost) / revenue * 100
}
