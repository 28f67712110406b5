package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html"))

// Funcs returns the formatting helpers shared by reports and web pages.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"usd":     USD,
		"money":   Money,
		"pct":     Percent,
		"count":   Count,
		"rate":    Rate,
		"bps":     Bps,
		"hundred": func(v float64) float64 { return v * 100 },
	}
}

// Metric is a labelled KPI card.
type Metric struct {
	Label string
	Value string
}

// Amount is a money value in a given currency.
type Amount struct {
	Currency pricing.Currency
	Amount   float64
}

// PricingMetrics returns the KPI cards of a cost-plus sheet in display order.
func PricingMetrics(k pricing.KPIs) []Metric {
	return []Metric{
		{Label: "Gross Profit Margin", Value: Percent(k.MarginPercent)},
		{Label: "Return on Investment (ROI)", Value: Percent(k.ROIPercent)},
		{Label: "Break-Even Point (Funds)", Value: Count(k.BreakEvenUnits) + " funds"},
		{Label: "Revenue Per Fund", Value: USD(k.RevenuePerUnit)},
	}
}

// DealMetrics returns the KPI cards of a scored deal in display order.
func DealMetrics(k pricing.KPIs) []Metric {
	return []Metric{
		{Label: "Total Servicing Cost", Value: USD(k.TotalCost)},
		{Label: "Profit", Value: USD(k.Profit)},
		{Label: "Margin", Value: Percent(k.MarginPercent)},
		{Label: "Return on Investment (ROI)", Value: Percent(k.ROIPercent)},
	}
}

// ConvertedAmounts lists the foreign-currency TRV figures in display order.
func ConvertedAmounts(converted map[pricing.Currency]float64) []Amount {
	amounts := make([]Amount, 0, len(converted))
	for _, cur := range pricing.ForeignCurrencies {
		if v, ok := converted[cur]; ok {
			amounts = append(amounts, Amount{Currency: cur, Amount: v})
		}
	}
	return amounts
}

type pricingView struct {
	desk.PricingSheet
	Title   string
	Metrics []Metric
}

type dealView struct {
	desk.DealSheet
	Title     string
	Metrics   []Metric
	Converted []Amount
	Playbook  template.HTML
}

// WritePricingHTML writes the cost-plus report as a standalone HTML document.
func WritePricingHTML(w io.Writer, title string, sheet desk.PricingSheet) error {
	if title == "" {
		title = "Reporting Service Pricing Model Report"
	}
	view := pricingView{PricingSheet: sheet, Title: title, Metrics: PricingMetrics(sheet.Result.KPIs)}
	if err := templates.ExecuteTemplate(w, "pricing", view); err != nil {
		return fmt.Errorf("render pricing report: %w", err)
	}
	return nil
}

// WriteDealHTML writes the deal scorecard, including the Give-Get playbook, as HTML.
func WriteDealHTML(w io.Writer, title string, sheet desk.DealSheet) error {
	if title == "" {
		title = "Deal Profitability Scorecard"
	}
	playbook, err := advisory.PlaybookHTML()
	if err != nil {
		return err
	}
	view := dealView{
		DealSheet: sheet,
		Title:     title,
		Metrics:   DealMetrics(sheet.Result.KPIs),
		Converted: ConvertedAmounts(sheet.TRVConverted),
		Playbook:  playbook,
	}
	if err := templates.ExecuteTemplate(w, "deal", view); err != nil {
		return fmt.Errorf("render deal report: %w", err)
	}
	return nil
}
