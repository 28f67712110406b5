package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/pricedesk/internal/db"
	"github.com/Simplici0/pricedesk/internal/migrations"
	"github.com/Simplici0/pricedesk/internal/settings"
)

func openMigrated(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(context.Background(), dbPath, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	database := openMigrated(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, Config{Samples: true})
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 3 {
				t.Fatalf("expected 3 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM assumption_defaults WHERE id = 1`, nil, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM scenarios WHERE title = ?`, samplePricingTitle, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM scenarios WHERE kind = ?`, "deal", 1)
}

func TestRunWithoutSamplesOnlySeedsDefaults(t *testing.T) {
	database := openMigrated(t)
	ctx := context.Background()

	stats, err := Run(ctx, database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 1 {
		t.Fatalf("expected 1 insert, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM scenarios`, nil, 0)

	defaults, err := settings.NewStore(database).Get(ctx)
	if err != nil {
		t.Fatalf("get defaults: %v", err)
	}
	if defaults != settings.Factory() {
		t.Fatalf("defaults = %+v, want factory %+v", defaults, settings.Factory())
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
