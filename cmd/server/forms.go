package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
	"github.com/Simplici0/pricedesk/internal/settings"
)

// pricingForm is the cost-plus form as the user typed it.
type pricingForm struct {
	VendorCost      string
	Resources       string
	CostPerResource string
	Units           string
	MarginPercent   string
	EURRate         string
	GBPRate         string
	Years           [pricing.ForecastYears]yearForm
}

type yearForm struct {
	Year      int
	Reduction string
	Comment   string
}

// dealForm is the deal scorer form as the user typed it.
type dealForm struct {
	AUM             string
	AdminBps        string
	MinMonthlyFee   string
	FXVolume        string
	FXSpreadBps     string
	CashBalance     string
	CashSpreadBps   string
	BaseCost        string
	Complexity      string
	OverheadPercent string
	HurdleRate      string
	EURRate         string
	GBPRate         string
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func defaultPricingForm(d settings.Defaults) pricingForm {
	f := pricingForm{
		VendorCost:      "50000",
		Resources:       "2",
		CostPerResource: "75000",
		Units:           "100",
		MarginPercent:   formatNumber(d.MarginPercent),
		EURRate:         formatNumber(d.FX.EUR),
		GBPRate:         formatNumber(d.FX.GBP),
	}
	for i := range f.Years {
		f.Years[i] = yearForm{Year: i + 1, Reduction: "0"}
	}
	return f
}

func defaultDealForm(d settings.Defaults) dealForm {
	return dealForm{
		AUM:             "50000000",
		AdminBps:        "8",
		MinMonthlyFee:   "5000",
		FXVolume:        "10000000",
		FXSpreadBps:     "8",
		CashBalance:     "2000000",
		CashSpreadBps:   "150",
		BaseCost:        "25000",
		Complexity:      string(pricing.ComplexityMedium),
		OverheadPercent: "20",
		HurdleRate:      formatNumber(d.HurdleRate),
		EURRate:         formatNumber(d.FX.EUR),
		GBPRate:         formatNumber(d.FX.GBP),
	}
}

func readPricingForm(r *http.Request) pricingForm {
	f := pricingForm{
		VendorCost:      strings.TrimSpace(r.FormValue("vendor_cost")),
		Resources:       strings.TrimSpace(r.FormValue("resources")),
		CostPerResource: strings.TrimSpace(r.FormValue("cost_per_resource")),
		Units:           strings.TrimSpace(r.FormValue("units")),
		MarginPercent:   strings.TrimSpace(r.FormValue("margin_percent")),
		EURRate:         strings.TrimSpace(r.FormValue("eur_rate")),
		GBPRate:         strings.TrimSpace(r.FormValue("gbp_rate")),
	}
	for i := range f.Years {
		year := i + 1
		f.Years[i] = yearForm{
			Year:      year,
			Reduction: strings.TrimSpace(r.FormValue(fmt.Sprintf("reduction_%d", year))),
			Comment:   strings.TrimSpace(r.FormValue(fmt.Sprintf("comment_%d", year))),
		}
	}
	return f
}

// parsePricingForm validates the cost-plus form. A zero unit count is accepted here
// so the page can warn about it instead of failing.
func parsePricingForm(f pricingForm) (desk.PricingRequest, error) {
	var (
		req desk.PricingRequest
		err error
	)
	if req.Cost.VendorCost, err = parseNonNegativeFloat(f.VendorCost, "vendor_cost"); err != nil {
		return req, err
	}
	if req.Cost.Resources, err = parseCount(f.Resources, "resources"); err != nil {
		return req, err
	}
	if req.Cost.CostPerResource, err = parseNonNegativeFloat(f.CostPerResource, "cost_per_resource"); err != nil {
		return req, err
	}
	if req.Cost.Units, err = parseCount(f.Units, "units"); err != nil {
		return req, err
	}
	if req.MarginPercent, err = parseNonNegativeFloat(f.MarginPercent, "margin_percent"); err != nil {
		return req, err
	}
	if req.FX, err = parseFXRates(f.EURRate, f.GBPRate); err != nil {
		return req, err
	}

	for i, y := range f.Years {
		field := fmt.Sprintf("reduction_%d", y.Year)
		raw := y.Reduction
		if raw == "" {
			raw = "0"
		}
		if req.Years[i].CostReductionPercent, err = parsePercent(raw, field); err != nil {
			return req, err
		}
		req.Years[i].Comment = y.Comment
	}
	return req, nil
}

func readDealForm(r *http.Request) dealForm {
	return dealForm{
		AUM:             strings.TrimSpace(r.FormValue("aum")),
		AdminBps:        strings.TrimSpace(r.FormValue("admin_bps")),
		MinMonthlyFee:   strings.TrimSpace(r.FormValue("min_monthly_fee")),
		FXVolume:        strings.TrimSpace(r.FormValue("fx_volume")),
		FXSpreadBps:     strings.TrimSpace(r.FormValue("fx_spread_bps")),
		CashBalance:     strings.TrimSpace(r.FormValue("cash_balance")),
		CashSpreadBps:   strings.TrimSpace(r.FormValue("cash_spread_bps")),
		BaseCost:        strings.TrimSpace(r.FormValue("base_cost")),
		Complexity:      strings.TrimSpace(r.FormValue("complexity")),
		OverheadPercent: strings.TrimSpace(r.FormValue("overhead_percent")),
		HurdleRate:      strings.TrimSpace(r.FormValue("hurdle_rate")),
		EURRate:         strings.TrimSpace(r.FormValue("eur_rate")),
		GBPRate:         strings.TrimSpace(r.FormValue("gbp_rate")),
	}
}

func parseDealForm(f dealForm) (desk.DealRequest, error) {
	var (
		req desk.DealRequest
		err error
	)
	b := &req.Bundle
	if b.AUM, err = parseNonNegativeFloat(f.AUM, "aum"); err != nil {
		return req, err
	}
	if b.AdminBps, err = parseNonNegativeFloat(f.AdminBps, "admin_bps"); err != nil {
		return req, err
	}
	if b.MinMonthlyFee, err = parseNonNegativeFloat(f.MinMonthlyFee, "min_monthly_fee"); err != nil {
		return req, err
	}
	if b.FXVolume, err = parseNonNegativeFloat(f.FXVolume, "fx_volume"); err != nil {
		return req, err
	}
	if b.FXSpreadBps, err = parseNonNegativeFloat(f.FXSpreadBps, "fx_spread_bps"); err != nil {
		return req, err
	}
	if b.CashBalance, err = parseNonNegativeFloat(f.CashBalance, "cash_balance"); err != nil {
		return req, err
	}
	if b.CashSpreadBps, err = parseNonNegativeFloat(f.CashSpreadBps, "cash_spread_bps"); err != nil {
		return req, err
	}
	if b.BaseCost, err = parseNonNegativeFloat(f.BaseCost, "base_cost"); err != nil {
		return req, err
	}
	if b.Complexity, err = pricing.ParseComplexity(f.Complexity); err != nil {
		return req, fmt.Errorf("complexity must be one of Low, Medium or High")
	}

	overhead, err := parsePercent(f.OverheadPercent, "overhead_percent")
	if err != nil {
		return req, err
	}
	b.OverheadLoad = overhead / 100

	if req.HurdleRate, err = parseHurdle(f.HurdleRate, "hurdle_rate"); err != nil {
		return req, err
	}
	if req.FX, err = parseFXRates(f.EURRate, f.GBPRate); err != nil {
		return req, err
	}
	return req, nil
}

func readSettingsForm(r *http.Request) (settings.Defaults, error) {
	var (
		d   settings.Defaults
		err error
	)
	if d.FX, err = parseFXRates(strings.TrimSpace(r.FormValue("eur_rate")), strings.TrimSpace(r.FormValue("gbp_rate"))); err != nil {
		return d, err
	}
	if d.MarginPercent, err = parseNonNegativeFloat(strings.TrimSpace(r.FormValue("margin_percent")), "margin_percent"); err != nil {
		return d, err
	}
	if d.HurdleRate, err = parseHurdle(strings.TrimSpace(r.FormValue("hurdle_rate")), "hurdle_rate"); err != nil {
		return d, err
	}
	return d, nil
}

func parseFXRates(eur, gbp string) (pricing.FXRates, error) {
	var (
		fx  pricing.FXRates
		err error
	)
	if fx.EUR, err = parsePositiveFloat(eur, "eur_rate"); err != nil {
		return fx, err
	}
	if fx.GBP, err = parsePositiveFloat(gbp, "gbp_rate"); err != nil {
		return fx, err
	}
	return fx, nil
}

func parseHurdle(raw, field string) (float64, error) {
	value, err := parsePercent(raw, field)
	if err != nil {
		return 0, err
	}
	if value >= 100 {
		return 0, fmt.Errorf("%s must be below 100", field)
	}
	return value, nil
}

func parseFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parseCount(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return value, nil
}

func parsePercent(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value > 100 {
		return 0, fmt.Errorf("%s must be between 0 and 100", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}
