package service

import (
	"sort"
	"subscription-tracker/internal/model"

	"github.com/shopspring/decimal"
)

const upcomingLimit = 5

type Metrics struct {
	MonthlyTotal     decimal.Decimal       `json:"monthly_total"`
	YearlyEstimate   decimal.Decimal       `json:"yearly_estimate"`
	ActiveCount      int                   `json:"active_count"`
	UpcomingPayments []*model.Subscription `json:"upcoming_payments"`
}

// ComputeMetrics derives the dashboard figures from a ledger snapshot. Costs
// are normalized to a monthly equivalent before summing.
func ComputeMetrics(ledger []*model.Subscription) Metrics {
	total := decimal.Zero
	active := 0
	upcoming := make([]*model.Subscription, 0, upcomingLimit)

	for _, sub := range ledger {
		if !sub.IsActive {
			continue
		}
		active++
		total = total.Add(sub.BillingCycle.MonthlyEquivalent(sub.Cost))
		if sub.NextBillingDate != nil {
			upcoming = append(upcoming, sub)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextBillingDate.Before(upcoming[j].NextBillingDate.Time)
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	monthly := total.Round(2)
	return Metrics{
		MonthlyTotal:     monthly,
		YearlyEstimate:   monthly.Mul(decimal.NewFromInt(12)),
		ActiveCount:      active,
		UpcomingPayments: upcoming,
	}
}
