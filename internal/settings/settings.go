// Package settings stores the default assumptions pre-filled into the calculator forms.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/pricedesk/internal/pricing"
)

// Defaults are the assumptions a new calculation starts from.
type Defaults struct {
	FX            pricing.FXRates
	MarginPercent float64
	HurdleRate    float64
}

// Factory returns the defaults used when nothing has been saved yet.
func Factory() Defaults {
	return Defaults{
		FX:            pricing.FXRates{EUR: 0.92, GBP: 0.79},
		MarginPercent: 30,
		HurdleRate:    25,
	}
}

// Validate rejects defaults that the calculators would refuse.
func (d Defaults) Validate() error {
	if err := d.FX.Validate(); err != nil {
		return err
	}
	if d.MarginPercent < 0 {
		return fmt.Errorf("%w: margin percent must be >= 0", pricing.ErrInvalidInput)
	}
	if d.HurdleRate < 0 || d.HurdleRate >= 100 {
		return fmt.Errorf("%w: hurdle rate must be in [0, 100)", pricing.ErrInvalidInput)
	}
	return nil
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes the assumption_defaults singleton.
type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Ensure inserts the factory defaults if the singleton row is missing.
// It reports whether a row was inserted.
func (s *Store) Ensure(ctx context.Context) (bool, error) {
	d := Factory()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO assumption_defaults (id, usd_to_eur_rate, usd_to_gbp_rate, margin_percent, hurdle_rate)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, d.FX.EUR, d.FX.GBP, d.MarginPercent, d.HurdleRate)
	if err != nil {
		return false, fmt.Errorf("insert default assumptions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default assumptions: %w", err)
	}
	return affected > 0, nil
}

// Get returns the saved defaults, or Factory when none have been saved. It never writes.
func (s *Store) Get(ctx context.Context) (Defaults, error) {
	var d Defaults
	err := s.db.QueryRowContext(ctx, `
		SELECT usd_to_eur_rate, usd_to_gbp_rate, margin_percent, hurdle_rate
		FROM assumption_defaults
		WHERE id = 1
	`).Scan(&d.FX.EUR, &d.FX.GBP, &d.MarginPercent, &d.HurdleRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Factory(), nil
		}
		return Defaults{}, fmt.Errorf("query assumption_defaults: %w", err)
	}
	return d, nil
}

// Update validates and saves d.
func (s *Store) Update(ctx context.Context, d Defaults) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := s.Ensure(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE assumption_defaults
		SET
			usd_to_eur_rate = ?,
			usd_to_gbp_rate = ?,
			margin_percent = ?,
			hurdle_rate = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, d.FX.EUR, d.FX.GBP, d.MarginPercent, d.HurdleRate)
	if err != nil {
		return fmt.Errorf("update assumption_defaults: %w", err)
	}
	return nil
}
