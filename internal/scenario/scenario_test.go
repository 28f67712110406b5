package scenario

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/db"
	"github.com/Simplici0/pricedesk/internal/desk"
	"github.com/Simplici0/pricedesk/internal/migrations"
	"github.com/Simplici0/pricedesk/internal/pricing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "scenarios.db"), time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func pricingSheet(t *testing.T) *desk.PricingSheet {
	t.Helper()
	sheet, err := desk.Price(desk.PricingRequest{
		Cost:          pricing.CostInput{VendorCost: 50000, Resources: 2, CostPerResource: 75000, Units: 100},
		FX:            pricing.FXRates{EUR: 0.92, GBP: 0.79},
		MarginPercent: 30,
	})
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	return &sheet
}

func dealSheet(t *testing.T) *desk.DealSheet {
	t.Helper()
	sheet, err := desk.Score(desk.DealRequest{
		Bundle: pricing.BundleInput{
			AUM: 50_000_000, AdminBps: 8, MinMonthlyFee: 5000,
			FXVolume: 10_000_000, FXSpreadBps: 8,
			CashBalance: 2_000_000, CashSpreadBps: 150,
			BaseCost: 25000, Complexity: pricing.ComplexityMedium, OverheadLoad: 0.2,
		},
		HurdleRate: 60,
		FX:         pricing.FXRates{EUR: 0.92, GBP: 0.79},
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	return &sheet
}

func TestSaveAndGetRoundTripsSnapshot(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	saved, err := store.Save(ctx, Scenario{Title: "  Fund admin 2025 ", Notes: "baseline", Deal: dealSheet(t)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" || saved.Kind != KindDeal || saved.Title != "Fund admin 2025" {
		t.Fatalf("unexpected saved scenario: %+v", saved)
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Deal == nil || got.Pricing != nil {
		t.Fatalf("expected a deal snapshot, got %+v", got)
	}
	if got.Deal.Verdict.Tier != advisory.TierReferral {
		t.Fatalf("verdict tier = %s, want referral", got.Deal.Verdict.Tier)
	}
	if got.Deal.Request.Bundle.Complexity != pricing.ComplexityMedium {
		t.Fatalf("complexity = %q", got.Deal.Request.Bundle.Complexity)
	}
	if got.Deal.TRVConverted[pricing.GBP] != saved.Deal.TRVConverted[pricing.GBP] {
		t.Fatalf("converted TRV lost in round trip: %+v", got.Deal.TRVConverted)
	}
	if got.Notes != "baseline" {
		t.Fatalf("notes = %q", got.Notes)
	}
}

func TestGetReadsSnapshotWithoutRecalculation(t *testing.T) {
	database := newTestDB(t)
	store := NewStore(database)
	ctx := context.Background()

	saved, err := store.Save(ctx, Scenario{Title: "Reporting", Pricing: pricingSheet(t)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := database.Exec(`
		UPDATE scenarios
		SET sheet_json = json_set(sheet_json, '$.Result.KPIs.TotalRevenue', 999.99)
		WHERE id = ?
	`, saved.ID); err != nil {
		t.Fatalf("tamper snapshot: %v", err)
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Pricing.Result.KPIs.TotalRevenue != 999.99 {
		t.Fatalf("expected stored total 999.99, got %v", got.Pricing.Result.KPIs.TotalRevenue)
	}
}

func TestListOrdersNewestFirstAndFilters(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"Primera", "Tercera", "Segunda"} {
		offset := map[string]int{"Primera": 0, "Segunda": 1, "Tercera": 2}[title]
		store.now = func() time.Time { return base.Add(time.Duration(offset) * time.Hour) }
		notes := ""
		if i == 1 {
			notes = "cliente vip"
		}
		if _, err := store.Save(ctx, Scenario{Title: title, Notes: notes, Pricing: pricingSheet(t)}); err != nil {
			t.Fatalf("Save(%s): %v", title, err)
		}
	}

	items, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 3 || items[0].Title != "Tercera" || items[1].Title != "Segunda" || items[2].Title != "Primera" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].Headline < 259999 || items[0].Headline > 260001 {
		t.Fatalf("headline = %v, want total revenue", items[0].Headline)
	}

	byNotes, err := store.List(ctx, "vip")
	if err != nil {
		t.Fatalf("List(vip): %v", err)
	}
	if len(byNotes) != 1 || byNotes[0].Title != "Tercera" {
		t.Fatalf("unexpected filter result: %+v", byNotes)
	}
}

func TestGetAndDeleteUnknownID(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"not-a-uuid", "6f1c3c55-8a4e-4a55-9f55-3a5e6c0c1b11"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(%q): expected ErrNotFound, got %v", id, err)
		}
	}
	if err := store.Delete(ctx, "6f1c3c55-8a4e-4a55-9f55-3a5e6c0c1b11"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestSaveRequiresTitleAndOneSheet(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	if _, err := store.Save(ctx, Scenario{Pricing: pricingSheet(t)}); err == nil {
		t.Fatalf("expected error for missing title")
	}
	if _, err := store.Save(ctx, Scenario{Title: "empty"}); err == nil {
		t.Fatalf("expected error for missing sheet")
	}
	if _, err := store.Save(ctx, Scenario{Title: "both", Pricing: pricingSheet(t), Deal: dealSheet(t)}); err == nil {
		t.Fatalf("expected error for two sheets")
	}
}
