package service

import (
	"subscription-tracker/internal/model"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledgerEntry(name, cost string, cycle model.BillingCycle, active bool, next string) *model.Subscription {
	sub := &model.Subscription{
		Name:         name,
		Cost:         decimal.RequireFromString(cost),
		BillingCycle: cycle,
		IsActive:     active,
	}
	if next != "" {
		d, err := model.ParseDate(next)
		if err != nil {
			panic(err)
		}
		sub.NextBillingDate = &d
	}
	return sub
}

func TestComputeMetricsNormalizesCycles(t *testing.T) {
	ledger := []*model.Subscription{
		ledgerEntry("netflix", "15.99", model.BillingMonthly, true, ""),
		ledgerEntry("domain", "120", model.BillingYearly, true, ""),
		ledgerEntry("backup", "30", model.BillingQuarterly, true, ""),
		ledgerEntry("gym", "10", model.BillingWeekly, true, ""),
		ledgerEntry("coffee", "1", model.BillingDaily, true, ""),
		ledgerEntry("paused", "999", model.BillingMonthly, false, ""),
	}

	m := ComputeMetrics(ledger)

	// 15.99 + 10 + 10 + 43.30 + 30
	assert.Equal(t, "109.29", m.MonthlyTotal.StringFixed(2))
	assert.True(t, m.YearlyEstimate.Equal(m.MonthlyTotal.Mul(decimal.NewFromInt(12))))
	assert.Equal(t, 5, m.ActiveCount)
}

func TestComputeMetricsInactiveExcluded(t *testing.T) {
	sub := ledgerEntry("music", "9.99", model.BillingMonthly, true, "2024-02-01")
	ledger := []*model.Subscription{sub}

	before := ComputeMetrics(ledger)
	assert.Equal(t, "9.99", before.MonthlyTotal.StringFixed(2))
	assert.Len(t, before.UpcomingPayments, 1)

	sub.IsActive = false
	after := ComputeMetrics(ledger)
	assert.True(t, after.MonthlyTotal.IsZero())
	assert.True(t, after.YearlyEstimate.IsZero())
	assert.Zero(t, after.ActiveCount)
	assert.Empty(t, after.UpcomingPayments)
}

func TestComputeMetricsUpcoming(t *testing.T) {
	ledger := []*model.Subscription{
		ledgerEntry("f", "1", model.BillingMonthly, true, "2024-06-01"),
		ledgerEntry("undated", "1", model.BillingMonthly, true, ""),
		ledgerEntry("b", "1", model.BillingMonthly, true, "2024-02-01"),
		ledgerEntry("e", "1", model.BillingMonthly, true, "2024-05-01"),
		ledgerEntry("a", "1", model.BillingMonthly, true, "2024-01-01"),
		ledgerEntry("d", "1", model.BillingMonthly, true, "2024-04-01"),
		ledgerEntry("c", "1", model.BillingMonthly, true, "2024-03-01"),
		ledgerEntry("off", "1", model.BillingMonthly, false, "2023-12-01"),
	}

	m := ComputeMetrics(ledger)
	require.Len(t, m.UpcomingPayments, 5)

	names := make([]string, 0, 5)
	for i, sub := range m.UpcomingPayments {
		names = append(names, sub.Name)
		if i > 0 {
			prev := m.UpcomingPayments[i-1].NextBillingDate.Time
			assert.False(t, sub.NextBillingDate.Time.Before(prev))
		}
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, names)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.True(t, m.MonthlyTotal.IsZero())
	assert.True(t, m.YearlyEstimate.IsZero())
	assert.NotNil(t, m.UpcomingPayments)
	assert.Empty(t, m.UpcomingPayments)
}
