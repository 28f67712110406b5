package settings

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/db"
	"github.com/Simplici0/pricedesk/internal/migrations"
	"github.com/Simplici0/pricedesk/internal/pricing"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "settings.db"), time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewStore(database)
}

func TestGetFallsBackToFactoryDefaults(t *testing.T) {
	store := newStore(t)

	got, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != Factory() {
		t.Fatalf("Get = %+v, want %+v", got, Factory())
	}

	var rows int
	if err := store.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM assumption_defaults`).Scan(&rows); err != nil {
		t.Fatalf("count assumption_defaults: %v", err)
	}
	if rows != 0 {
		t.Fatalf("Get should not write, found %d rows", rows)
	}
}

func TestUpdatePersistsDefaults(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	want := Defaults{FX: pricing.FXRates{EUR: 0.95, GBP: 0.81}, MarginPercent: 22.5, HurdleRate: 35}
	if err := store.Update(ctx, want); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}

	inserted, err := store.Ensure(ctx)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if inserted {
		t.Fatalf("Ensure should not overwrite saved defaults")
	}
}

func TestUpdateRejectsInvalidDefaults(t *testing.T) {
	store := newStore(t)

	cases := map[string]Defaults{
		"zero eur":        {FX: pricing.FXRates{EUR: 0, GBP: 0.8}, HurdleRate: 10},
		"negative margin": {FX: pricing.FXRates{EUR: 1, GBP: 1}, MarginPercent: -1},
		"hurdle at 100":   {FX: pricing.FXRates{EUR: 1, GBP: 1}, HurdleRate: 100},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			if err := store.Update(context.Background(), d); !errors.Is(err, pricing.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
