// Package scenario persists snapshots of calculations the user chose to save.
// A snapshot is stored exactly as computed and is never recalculated on read.
package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/pricedesk/internal/desk"
)

// Kind identifies which calculator produced a scenario.
type Kind string

const (
	KindPricing Kind = "pricing"
	KindDeal    Kind = "deal"
)

// ErrNotFound is returned when no scenario matches an id.
var ErrNotFound = errors.New("scenario not found")

// Scenario is a saved calculation. Exactly one of Pricing and Deal is set, matching Kind.
type Scenario struct {
	ID        string
	Kind      Kind
	Title     string
	Notes     string
	CreatedAt time.Time
	Pricing   *desk.PricingSheet
	Deal      *desk.DealSheet
}

// Headline is the figure shown in scenario lists: total revenue for pricing, TRV for deals.
func (s Scenario) Headline() float64 {
	switch {
	case s.Pricing != nil:
		return s.Pricing.Result.KPIs.TotalRevenue
	case s.Deal != nil:
		return s.Deal.Result.KPIs.TotalRevenue
	default:
		return 0
	}
}

// ListItem is the summary row of a saved scenario.
type ListItem struct {
	ID        string
	Kind      Kind
	Title     string
	CreatedAt string
	Headline  float64
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists scenarios in the scenarios table.
type Store struct {
	db  DBTX
	now func() time.Time
}

func NewStore(db DBTX) *Store {
	return &Store{db: db, now: time.Now}
}

// Save assigns an id to sc and inserts it.
func (s *Store) Save(ctx context.Context, sc Scenario) (Scenario, error) {
	sc.Title = strings.TrimSpace(sc.Title)
	sc.Notes = strings.TrimSpace(sc.Notes)
	if sc.Title == "" {
		return Scenario{}, fmt.Errorf("title is required")
	}

	var sheet any
	switch {
	case sc.Pricing != nil && sc.Deal == nil:
		sc.Kind = KindPricing
		sheet = sc.Pricing
	case sc.Deal != nil && sc.Pricing == nil:
		sc.Kind = KindDeal
		sheet = sc.Deal
	default:
		return Scenario{}, fmt.Errorf("scenario must hold exactly one sheet")
	}

	sheetJSON, err := json.Marshal(sheet)
	if err != nil {
		return Scenario{}, fmt.Errorf("marshal %s sheet: %w", sc.Kind, err)
	}

	sc.ID = uuid.NewString()
	sc.CreatedAt = s.now().UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, kind, title, notes, headline, sheet_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.Kind, sc.Title, sc.Notes, sc.Headline(), string(sheetJSON), sc.CreatedAt.Format(time.DateTime))
	if err != nil {
		return Scenario{}, fmt.Errorf("insert scenario: %w", err)
	}
	return sc, nil
}

// Get loads a scenario snapshot by id.
func (s *Store) Get(ctx context.Context, id string) (Scenario, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var (
		sc        Scenario
		createdAt string
		sheetJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, title, COALESCE(notes, ''), created_at, sheet_json
		FROM scenarios
		WHERE id = ?
	`, id).Scan(&sc.ID, &sc.Kind, &sc.Title, &sc.Notes, &createdAt, &sheetJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("query scenario: %w", err)
	}

	sc.CreatedAt = parseTimestamp(createdAt)

	switch sc.Kind {
	case KindPricing:
		sc.Pricing = &desk.PricingSheet{}
		err = json.Unmarshal([]byte(sheetJSON), sc.Pricing)
	case KindDeal:
		sc.Deal = &desk.DealSheet{}
		err = json.Unmarshal([]byte(sheetJSON), sc.Deal)
	default:
		err = fmt.Errorf("unknown kind %q", sc.Kind)
	}
	if err != nil {
		return Scenario{}, fmt.Errorf("decode scenario %s: %w", id, err)
	}
	return sc, nil
}

// List returns saved scenarios, newest first, optionally filtered by title or notes.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, created_at, headline
		FROM scenarios
		WHERE (? = '' OR title LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, rowid DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var item ListItem
		if err := rows.Scan(&item.ID, &item.Kind, &item.Title, &item.CreatedAt, &item.Headline); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return items, nil
}

// Delete removes a scenario.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339, "2006-01-02T15:04:05Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
