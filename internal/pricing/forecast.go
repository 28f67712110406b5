package pricing

// ForecastYears is the fixed horizon of the cost-reduction forecast.
const ForecastYears = 5

// YearInput is the user-supplied adjustment for one forecast year.
type YearInput struct {
	CostReductionPercent float64
	Comment              string
}

// ForecastRow is one year of the cost-reduction forecast.
type ForecastRow struct {
	Year                 int
	CostReductionPercent float64
	Comment              string
	AdjustedCost         float64
	ForecastedRevenue    float64
	ForecastedProfit     float64
}

// Forecast projects costs, revenue and profit over ForecastYears years.
// Each year's reduction applies to the previous year's adjusted cost, and the
// margin is held constant across the horizon.
func Forecast(totalCost, marginPercent float64, years [ForecastYears]YearInput) ([]ForecastRow, error) {
	if totalCost < 0 {
		return nil, invalid("total cost must be >= 0")
	}
	if marginPercent < 0 {
		return nil, invalid("margin percent must be >= 0")
	}
	for i, y := range years {
		if y.CostReductionPercent < 0 || y.CostReductionPercent > 100 {
			return nil, invalid("year %d cost reduction must be between 0 and 100", i+1)
		}
	}

	rows := make([]ForecastRow, 0, ForecastYears)
	current := totalCost
	for i, y := range years {
		adjusted := current * (1 - y.CostReductionPercent/100)
		revenue := adjusted * (1 + marginPercent/100)
		if !finite(adjusted, revenue, revenue-adjusted) {
			return nil, errOutOfRange
		}
		rows = append(rows, ForecastRow{
			Year:                 i + 1,
			CostReductionPercent: y.CostReductionPercent,
			Comment:              y.Comment,
			AdjustedCost:         adjusted,
			ForecastedRevenue:    revenue,
			ForecastedProfit:     revenue - adjusted,
		})
		current = adjusted
	}
	return rows, nil
}
