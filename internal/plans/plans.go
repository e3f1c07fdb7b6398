// Package plans holds the static billing plan catalog: the mapping from a
// plan type to its provider-side price reference and display metadata.
//
// The catalog is built once at startup from configuration and passed
// explicitly to the services that need it. It is immutable after
// construction; there is no ambient global state.
package plans

import (
	"fmt"

	"github.com/platewise/billing/internal/domain"
)

// Plan describes one subscribable billing plan.
type Plan struct {
	// Type is the plan identifier used throughout the API.
	Type domain.PlanType

	// PriceID is the payment provider's price reference (price_...).
	PriceID string

	// Name is the display name shown in checkout and UI.
	Name string

	// AmountCents is the display price per interval.
	AmountCents int64

	// Interval is the billing interval: "week", "month", "year".
	Interval string
}

// Catalog is an immutable lookup from plan type to plan.
type Catalog struct {
	byType map[domain.PlanType]Plan
}

// Config carries the provider price references for the catalog.
type Config struct {
	WeekPriceID  string
	MonthPriceID string
	YearPriceID  string
}

// NewCatalog builds the plan catalog. All three price references are
// required; a missing one means checkout for that plan cannot work, so it
// fails construction rather than failing the first customer.
func NewCatalog(cfg Config) (*Catalog, error) {
	entries := []Plan{
		{Type: domain.PlanWeek, PriceID: cfg.WeekPriceID, Name: "Weekly Plan", AmountCents: 999, Interval: "week"},
		{Type: domain.PlanMonth, PriceID: cfg.MonthPriceID, Name: "Monthly Plan", AmountCents: 3499, Interval: "month"},
		{Type: domain.PlanYear, PriceID: cfg.YearPriceID, Name: "Yearly Plan", AmountCents: 29999, Interval: "year"},
	}

	byType := make(map[domain.PlanType]Plan, len(entries))
	for _, p := range entries {
		if p.PriceID == "" {
			return nil, fmt.Errorf("plans: missing price ID for plan %q", p.Type)
		}
		byType[p.Type] = p
	}

	return &Catalog{byType: byType}, nil
}

// ByType looks up a plan by its type. Returns false for unknown types.
func (c *Catalog) ByType(t domain.PlanType) (Plan, bool) {
	p, ok := c.byType[t]
	return p, ok
}

// All returns the plans in display order.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.byType))
	for _, t := range []domain.PlanType{domain.PlanWeek, domain.PlanMonth, domain.PlanYear} {
		out = append(out, c.byType[t])
	}
	return out
}
