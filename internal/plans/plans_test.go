package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/billing/internal/domain"
)

func TestNewCatalog(t *testing.T) {
	catalog, err := NewCatalog(Config{
		WeekPriceID:  "price_w",
		MonthPriceID: "price_m",
		YearPriceID:  "price_y",
	})
	require.NoError(t, err)

	plan, ok := catalog.ByType(domain.PlanMonth)
	require.True(t, ok)
	assert.Equal(t, "price_m", plan.PriceID)
	assert.Equal(t, "month", plan.Interval)
}

func TestNewCatalog_MissingPriceID(t *testing.T) {
	_, err := NewCatalog(Config{
		WeekPriceID: "price_w",
		YearPriceID: "price_y",
	})
	assert.Error(t, err)
}

func TestCatalog_UnknownType(t *testing.T) {
	catalog, err := NewCatalog(Config{
		WeekPriceID:  "price_w",
		MonthPriceID: "price_m",
		YearPriceID:  "price_y",
	})
	require.NoError(t, err)

	_, ok := catalog.ByType(domain.PlanType("decade"))
	assert.False(t, ok)
}

func TestCatalog_AllOrder(t *testing.T) {
	catalog, err := NewCatalog(Config{
		WeekPriceID:  "price_w",
		MonthPriceID: "price_m",
		YearPriceID:  "price_y",
	})
	require.NoError(t, err)

	all := catalog.All()
	require.Len(t, all, 3)
	assert.Equal(t, domain.PlanWeek, all[0].Type)
	assert.Equal(t, domain.PlanMonth, all[1].Type)
	assert.Equal(t, domain.PlanYear, all[2].Type)
}
