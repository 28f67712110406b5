package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/pricing"
	"github.com/Simplici0/pricedesk/internal/scenario"
	"github.com/Simplici0/pricedesk/internal/settings"
)

const (
	samplePricingTitle = "Sample: reporting service, 100 funds"
	sampleDealTitle    = "Sample: fund administration bundle"
)

// Config contains the values required by startup seed.
type Config struct {
	Samples bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureDefaults(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if cfg.Samples {
		if err := ensureSamplePricing(ctx, tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		if err := ensureSampleDeal(ctx, tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureDefaults(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	inserted, err := settings.NewStore(tx).Ensure(ctx)
	if err != nil {
		return err
	}
	if inserted {
		stats.Inserts++
	}
	return nil
}

func sampleExists(ctx context.Context, tx *sql.Tx, title string) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scenarios WHERE title = ? LIMIT 1)`, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sample scenario existence: %w", err)
	}
	return exists, nil
}

func ensureSamplePricing(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	exists, err := sampleExists(ctx, tx, samplePricingTitle)
	if err != nil || exists {
		return err
	}

	defaults := settings.Factory()
	req := desk.PricingRequest{
		Cost:          pricing.CostInput{VendorCost: 50000, Resources: 2, CostPerResource: 75000, Units: 100},
		FX:            defaults.FX,
		MarginPercent: defaults.MarginPercent,
	}
	req.Years[0] = pricing.YearInput{CostReductionPercent: 5, Comment: "Automated data feeds"}
	req.Years[2] = pricing.YearInput{CostReductionPercent: 10, Comment: "Vendor contract renegotiation"}

	sheet, err := desk.Price(req)
	if err != nil {
		return fmt.Errorf("price sample scenario: %w", err)
	}
	if _, err := scenario.NewStore(tx).Save(ctx, scenario.Scenario{Title: samplePricingTitle, Pricing: &sheet}); err != nil {
		return fmt.Errorf("insert sample pricing scenario: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSampleDeal(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	exists, err := sampleExists(ctx, tx, sampleDealTitle)
	if err != nil || exists {
		return err
	}

	defaults := settings.Factory()
	sheet, err := desk.Score(desk.DealRequest{
		Bundle: pricing.BundleInput{
			AUM:           50_000_000,
			AdminBps:      8,
			MinMonthlyFee: 5000,
			FXVolume:      10_000_000,
			FXSpreadBps:   8,
			CashBalance:   2_000_000,
			CashSpreadBps: 150,
			BaseCost:      25000,
			Complexity:    pricing.ComplexityMedium,
			OverheadLoad:  0.2,
		},
		HurdleRate: defaults.HurdleRate,
		FX:         defaults.FX,
	})
	if err != nil {
		return fmt.Errorf("score sample deal: %w", err)
	}
	if _, err := scenario.NewStore(tx).Save(ctx, scenario.Scenario{Title: sampleDealTitle, Deal: &sheet}); err != nil {
		return fmt.Errorf("insert sample deal scenario: %w", err)
	}
	stats.Inserts++
	return nil
}
