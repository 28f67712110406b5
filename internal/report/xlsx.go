package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
)

const (
	summarySheet  = "Summary"
	forecastSheet = "5-Year Forecast"
	dealSheet     = "Deal"
	separator     = "---"
)

// numFormat selects how a metric value is displayed in column B.
type numFormat int

const (
	fmtText numFormat = iota
	fmtMoney
	fmtDecimal
	fmtCount
	fmtRate
)

// excelize built-in formats
const (
	numFmtDecimal = 2 // 0.00
	numFmtCount   = 3 // #,##0
	numFmtMoney   = 4 // #,##0.00
)

var rateNumFmt = "0.0000"

func (n numFormat) style() *excelize.Style {
	switch n {
	case fmtMoney:
		return &excelize.Style{NumFmt: numFmtMoney}
	case fmtDecimal:
		return &excelize.Style{NumFmt: numFmtDecimal}
	case fmtCount:
		return &excelize.Style{NumFmt: numFmtCount}
	case fmtRate:
		return &excelize.Style{CustomNumFmt: &rateNumFmt}
	}
	return nil
}

type row struct {
	label  string
	value  any
	format numFormat
}

func moneyRow(label string, v float64) row { return row{label, v, fmtMoney} }
func decimalRow(label string, v float64) row { return row{label, v, fmtDecimal} }
func countRow(label string, v float64) row { return row{label, v, fmtCount} }
func rateRow(label string, v float64) row { return row{label, v, fmtRate} }
func textRow(label, v string) row { return row{label, v, fmtText} }

func sep() row { return textRow(separator, separator) }

// WritePricingXLSX writes the cost-plus workbook with a Summary and a forecast sheet.
func WritePricingXLSX(w io.Writer, sheet desk.PricingSheet) error {
	req, b, k := sheet.Request, sheet.Result.Breakdown, sheet.Result.KPIs
	eur, _ := sheet.Result.In(pricing.EUR)
	gbp, _ := sheet.Result.In(pricing.GBP)

	rows := []row{
		moneyRow("Annual Vendor Cost (USD)", req.Cost.VendorCost),
		countRow("Number of Resources", req.Cost.Resources),
		moneyRow("Cost Per Resource (USD)", req.Cost.CostPerResource),
		countRow("Number of Funds", req.Cost.Units),
		decimalRow("Desired Profit Margin (%)", req.MarginPercent),
		rateRow("USD to EUR Rate", req.FX.EUR),
		rateRow("USD to GBP Rate", req.FX.GBP),
		sep(),
		moneyRow("Total Annual Cost (USD)", b.TotalCost),
		moneyRow("Cost Per Fund (Annual USD)", b.CostPerUnit.Annual),
		moneyRow("Cost Per Fund (Quarterly USD)", b.CostPerUnit.Quarterly),
		moneyRow("Cost Per Fund (Monthly USD)", b.CostPerUnit.Monthly),
		sep(),
		moneyRow("Selling Price Per Fund (Annual USD)", b.PricePerUnit.Annual),
		moneyRow("Selling Price Per Fund (Quarterly USD)", b.PricePerUnit.Quarterly),
		moneyRow("Selling Price Per Fund (Monthly USD)", b.PricePerUnit.Monthly),
		moneyRow("Total Potential Annual Revenue (USD)", b.TotalRevenue),
		sep(),
		moneyRow("Selling Price Per Fund (Annual EUR)", eur.PricePerUnit.Annual),
		moneyRow("Total Potential Annual Revenue (EUR)", eur.TotalRevenue),
		moneyRow("Selling Price Per Fund (Annual GBP)", gbp.PricePerUnit.Annual),
		moneyRow("Total Potential Annual Revenue (GBP)", gbp.TotalRevenue),
		sep(),
		decimalRow("Gross Profit Margin (%)", k.MarginPercent),
		decimalRow("Return on Investment (ROI) (%)", k.ROIPercent),
		countRow("Break-Even Point (Funds)", k.BreakEvenUnits),
		moneyRow("Revenue Per Fund (USD)", k.RevenuePerUnit),
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeMetricRows(f, summarySheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(forecastSheet); err != nil {
		return fmt.Errorf("create forecast sheet: %w", err)
	}
	headers := []any{"Year", "Cost Reduction (%)", "Comment", "Adjusted Annual Cost ($)", "Forecasted Annual Revenue ($)", "Forecasted Profit ($)"}
	if err := f.SetSheetRow(forecastSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write forecast header: %w", err)
	}
	for i, r := range sheet.Forecast {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{r.Year, r.CostReductionPercent, r.Comment, r.AdjustedCost, r.ForecastedRevenue, r.ForecastedProfit}
		if err := f.SetSheetRow(forecastSheet, cell, &values); err != nil {
			return fmt.Errorf("write forecast row %d: %w", r.Year, err)
		}
	}
	if n := len(sheet.Forecast); n > 0 {
		if err := styleRange(f, forecastSheet, "B2", fmt.Sprintf("B%d", n+1), fmtDecimal); err != nil {
			return err
		}
		if err := styleRange(f, forecastSheet, "D2", fmt.Sprintf("F%d", n+1), fmtMoney); err != nil {
			return err
		}
	}
	if err := boldRange(f, forecastSheet, "A1", "F1"); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write pricing workbook: %w", err)
	}
	return nil
}

// WriteDealXLSX writes the deal scorecard workbook.
func WriteDealXLSX(w io.Writer, sheet desk.DealSheet) error {
	in, s, k := sheet.Request.Bundle, sheet.Result.Streams, sheet.Result.KPIs

	rows := []row{
		moneyRow("Assets Under Management (USD)", in.AUM),
		decimalRow("Admin Fee (bps)", in.AdminBps),
		moneyRow("Minimum Monthly Fee (USD)", in.MinMonthlyFee),
		moneyRow("FX Volume (USD)", in.FXVolume),
		decimalRow("FX Spread (bps)", in.FXSpreadBps),
		moneyRow("Cash Balance (USD)", in.CashBalance),
		decimalRow("Cash Spread (bps)", in.CashSpreadBps),
		moneyRow("Base Servicing Cost (USD)", in.BaseCost),
		textRow("Complexity", string(in.Complexity)),
		decimalRow("Complexity Factor", sheet.Result.ComplexityFactor),
		decimalRow("Overhead Load (%)", in.OverheadLoad*100),
		decimalRow("Hurdle Rate (%)", sheet.Request.HurdleRate),
		sep(),
		moneyRow("Admin Revenue (USD)", s.Admin),
		moneyRow("FX Revenue (USD)", s.FX),
		moneyRow("Cash Revenue (USD)", s.Cash),
		moneyRow("Total Relationship Value (USD)", k.TotalRevenue),
	}
	for _, a := range ConvertedAmounts(sheet.TRVConverted) {
		rows = append(rows, moneyRow(fmt.Sprintf("Total Relationship Value (%s)", a.Currency), a.Amount))
	}
	rows = append(rows,
		sep(),
		moneyRow("Total Servicing Cost (USD)", k.TotalCost),
		moneyRow("Profit (USD)", k.Profit),
		decimalRow("Margin (%)", k.MarginPercent),
		decimalRow("Return on Investment (ROI) (%)", k.ROIPercent),
		sep(),
		moneyRow("Revenue Gap to Hurdle (USD)", sheet.Plan.Gap),
		moneyRow("Additional FX Volume (USD)", sheet.Plan.AdditionalFXVolume),
		decimalRow("Additional Admin Fee (bps)", sheet.Plan.AdditionalAdminBps),
		sep(),
		textRow("Verdict", sheet.Verdict.Tier.String()),
		textRow("Message", sheet.Verdict.Message),
	)
	for i, action := range sheet.Verdict.RecommendedActions {
		rows = append(rows, textRow(fmt.Sprintf("Action %d", i+1), action))
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dealSheet); err != nil {
		return fmt.Errorf("rename deal sheet: %w", err)
	}
	if err := writeMetricRows(f, dealSheet, rows); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write deal workbook: %w", err)
	}
	return nil
}

func writeMetricRows(f *excelize.File, sheet string, rows []row) error {
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{r.label, r.value}); err != nil {
			return fmt.Errorf("write %s row %q: %w", sheet, r.label, err)
		}
		if r.format == fmtText {
			continue
		}
		value, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := styleRange(f, sheet, value, value, r.format); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 42); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return boldRange(f, sheet, "A1", "B1")
}

// styleRange applies format to a cell range. NewStyle returns the existing id for an identical style.
func styleRange(f *excelize.File, sheet, from, to string, format numFormat) error {
	style, err := f.NewStyle(format.style())
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("apply number style: %w", err)
	}
	return nil
}

func boldRange(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	return nil
}
