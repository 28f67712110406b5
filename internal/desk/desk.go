// Package desk runs the pricing engine and advisory evaluator for one set of user inputs.
// Every call is a fresh, full evaluation; nothing is cached between calls.
package desk

import (
	"fmt"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/pricing"
)

// PricingRequest is the immutable snapshot of the cost-plus form.
type PricingRequest struct {
	Cost          pricing.CostInput
	FX            pricing.FXRates
	MarginPercent float64
	Years         [pricing.ForecastYears]pricing.YearInput
}

// PricingSheet is everything the UI and export layers render for a cost-plus calculation.
type PricingSheet struct {
	Request  PricingRequest
	Result   pricing.Result
	Forecast []pricing.ForecastRow
}

// Price computes cost-plus pricing and the multi-year forecast.
func Price(req PricingRequest) (PricingSheet, error) {
	result, err := pricing.Calculate(req.Cost, req.FX, req.MarginPercent)
	if err != nil {
		return PricingSheet{}, fmt.Errorf("calculate pricing: %w", err)
	}

	forecast, err := pricing.Forecast(result.Breakdown.TotalCost, req.MarginPercent, req.Years)
	if err != nil {
		return PricingSheet{}, fmt.Errorf("forecast: %w", err)
	}

	return PricingSheet{Request: req, Result: result, Forecast: forecast}, nil
}

// DealRequest is the immutable snapshot of the deal scorer form.
type DealRequest struct {
	Bundle     pricing.BundleInput
	HurdleRate float64
	FX         pricing.FXRates
}

// DealSheet is a scored deal with its verdict.
type DealSheet struct {
	Request      DealRequest
	Result       pricing.BundleResult
	Plan         pricing.GapPlan
	Verdict      advisory.Verdict
	TRVConverted map[pricing.Currency]float64
}

// Score prices the deal bundle, solves the gap to the hurdle and evaluates the verdict.
// The hurdle must be in [0, 100).
func Score(req DealRequest) (DealSheet, error) {
	if err := req.FX.Validate(); err != nil {
		return DealSheet{}, err
	}

	result, err := pricing.ScoreBundle(req.Bundle)
	if err != nil {
		return DealSheet{}, fmt.Errorf("score bundle: %w", err)
	}

	kpis := result.KPIs
	plan, err := pricing.SolveGap(req.HurdleRate, kpis.TotalCost, kpis.TotalRevenue, req.Bundle.FXSpreadBps, req.Bundle.AUM)
	if err != nil {
		return DealSheet{}, fmt.Errorf("solve gap to hurdle: %w", err)
	}

	converted := make(map[pricing.Currency]float64, len(pricing.ForeignCurrencies))
	for _, cur := range pricing.ForeignCurrencies {
		converted[cur] = req.FX.Convert(kpis.TotalRevenue, cur)
	}

	return DealSheet{
		Request:      req,
		Result:       result,
		Plan:         plan,
		Verdict:      advisory.EvaluateVerdict(kpis.MarginPercent, req.HurdleRate, kpis.Profit, &plan),
		TRVConverted: converted,
	}, nil
}
