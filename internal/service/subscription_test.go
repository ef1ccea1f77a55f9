package service

import (
	"context"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func date(t *testing.T, s string) *model.Date {
	t.Helper()

	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func TestLedgerCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: " Netflix ", Cost: "15.99", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "Netflix", sub.Name)
	assert.Equal(t, model.BillingMonthly, sub.BillingCycle)
	assert.Equal(t, model.CategoryOther, sub.Category)
	assert.Equal(t, "BDT", sub.Currency)

	cases := []struct {
		name  string
		input SubscriptionInput
		field string
	}{
		{"blank name", SubscriptionInput{Name: " ", Cost: "1"}, "name"},
		{"negative cost", SubscriptionInput{Name: "x", Cost: "-1"}, "cost"},
		{"bad cycle", SubscriptionInput{Name: "x", Cost: "1", BillingCycle: "hourly"}, "billing_cycle"},
		{"bad category", SubscriptionInput{Name: "x", Cost: "1", Category: "games"}, "category"},
		{"usage over limit", SubscriptionInput{Name: "x", Cost: "1", UsageLimit: ptr(10.0), CurrentUsage: ptr(11.0)}, "current_usage"},
		{"negative usage", SubscriptionInput{Name: "x", Cost: "1", CurrentUsage: ptr(-1.0)}, "current_usage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ledger.Create(ctx, user, tc.input)
			verr := requireErrorAs[*ValidationError](t, err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	all, err := f.ledger.List(ctx, user, repository.SubscriptionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLedgerListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "Spotify", Provider: "Spotify AB", Cost: "9.99", Category: model.CategoryEntertainment, IsActive: true})
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, user, SubscriptionInput{Name: "Notion", Provider: "Notion Labs", Cost: "8", Category: model.CategoryProductivity})
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, other, SubscriptionInput{Name: "Spotify", Cost: "9.99", IsActive: true})
	require.NoError(t, err)

	found, err := f.ledger.List(ctx, user, repository.SubscriptionFilter{Search: "spot"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Spotify", found[0].Name)

	found, err = f.ledger.List(ctx, user, repository.SubscriptionFilter{Search: "labs"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Notion", found[0].Name)

	found, err = f.ledger.List(ctx, user, repository.SubscriptionFilter{Status: "inactive"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Notion", found[0].Name)

	found, err = f.ledger.List(ctx, user, repository.SubscriptionFilter{Status: "all", Category: model.CategoryEntertainment})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = f.ledger.List(ctx, user, repository.SubscriptionFilter{Status: "paused"})
	requireErrorAs[*ValidationError](t, err)
}

func TestLedgerUpdateIsPartialAndOwnerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "Gym", Cost: "30", Notes: "downtown", IsActive: true})
	require.NoError(t, err)

	_, err = f.ledger.Update(ctx, other, sub.ID, SubscriptionPatch{Name: ptr("Stolen")})
	requireErrorAs[*NotFoundError](t, err)

	updated, err := f.ledger.Update(ctx, user, sub.ID, SubscriptionPatch{Cost: ptr("35.5"), Category: ptr(model.CategoryHealth)})
	require.NoError(t, err)
	assert.Equal(t, "Gym", updated.Name)
	assert.Equal(t, "downtown", updated.Notes)
	assert.Equal(t, "35.50", updated.Cost.StringFixed(2))
	assert.Equal(t, model.CategoryHealth, updated.Category)

	_, err = f.ledger.Update(ctx, user, sub.ID, SubscriptionPatch{Cost: ptr("free")})
	requireErrorAs[*ValidationError](t, err)

	reloaded, err := f.ledger.Get(ctx, user, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "35.50", reloaded.Cost.StringFixed(2))

	requireErrorAs[*NotFoundError](t, f.ledger.Delete(ctx, other, sub.ID))
	require.NoError(t, f.ledger.Delete(ctx, user, sub.ID))
	_, err = f.ledger.Get(ctx, user, sub.ID)
	requireErrorAs[*NotFoundError](t, err)
}

func TestLedgerUsage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "API", Cost: "20", UsageLimit: ptr(100.0), IsActive: true})
	require.NoError(t, err)

	updated, err := f.ledger.UpdateUsage(ctx, user, sub.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentUsage)
	assert.Equal(t, 42.0, *updated.CurrentUsage)

	_, err = f.ledger.UpdateUsage(ctx, user, sub.ID, 101)
	requireErrorAs[*ValidationError](t, err)

	_, err = f.ledger.UpdateUsage(ctx, user, sub.ID, -1)
	requireErrorAs[*ValidationError](t, err)

	reloaded, err := f.ledger.Get(ctx, user, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, *reloaded.CurrentUsage)
}

func TestLedgerPatchClearsOptionalFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sub, err := f.ledger.Create(ctx, user, SubscriptionInput{
		Name:            "API",
		Cost:            "20",
		NextBillingDate: date(t, "2024-01-15"),
		UsageLimit:      ptr(100.0),
		CurrentUsage:    ptr(90.0),
		IsActive:        true,
	})
	require.NoError(t, err)

	// absent fields stay as they are
	updated, err := f.ledger.Update(ctx, user, sub.ID, SubscriptionPatch{Notes: ptr("renegotiate")})
	require.NoError(t, err)
	require.NotNil(t, updated.NextBillingDate)
	require.NotNil(t, updated.UsageLimit)

	updated, err = f.ledger.Update(ctx, user, sub.ID, SubscriptionPatch{
		NextBillingDate: model.Nullable[model.Date]{Set: true},
		UsageLimit:      model.Nullable[float64]{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.NextBillingDate)
	assert.Nil(t, updated.UsageLimit)

	reloaded, err := f.ledger.Get(ctx, user, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.NextBillingDate)
	assert.Nil(t, reloaded.UsageLimit)
	require.NotNil(t, reloaded.CurrentUsage)
	assert.Equal(t, 90.0, *reloaded.CurrentUsage)

	// without a limit any usage is accepted
	updated, err = f.ledger.UpdateUsage(ctx, user, sub.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, *updated.CurrentUsage)
}

func TestLedgerSetActiveAffectsMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	music, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "Music", Cost: "10", IsActive: true})
	require.NoError(t, err)
	_, err = f.ledger.Create(ctx, user, SubscriptionInput{Name: "Cloud", Cost: "120", BillingCycle: model.BillingYearly, IsActive: true})
	require.NoError(t, err)

	m, err := f.ledger.Metrics(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "20.00", m.MonthlyTotal.StringFixed(2))
	assert.Equal(t, "240.00", m.YearlyEstimate.StringFixed(2))

	_, err = f.ledger.SetActive(ctx, user, music.ID, false)
	require.NoError(t, err)

	m, err = f.ledger.Metrics(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "10.00", m.MonthlyTotal.StringFixed(2))
	assert.Equal(t, 1, m.ActiveCount)

	m, err = f.ledger.Metrics(ctx, other)
	require.NoError(t, err)
	assert.True(t, m.MonthlyTotal.IsZero())
}

func TestLedgerRecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.ledger.now = func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }

	dated, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "Hosting", Cost: "12.50", NextBillingDate: date(t, "2024-01-15"), IsActive: true})
	require.NoError(t, err)

	payment, err := f.ledger.RecordPayment(ctx, user, dated.ID, PaymentInput{Notes: "card"})
	require.NoError(t, err)
	assert.Equal(t, "12.50", payment.Amount.StringFixed(2))
	assert.Equal(t, "2024-05-10", payment.PaymentDate.String())

	reloaded, err := f.ledger.Get(ctx, user, dated.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NextBillingDate)
	assert.Equal(t, "2024-02-15", reloaded.NextBillingDate.String())

	undated, err := f.ledger.Create(ctx, user, SubscriptionInput{Name: "Magazine", Cost: "40", BillingCycle: model.BillingQuarterly, IsActive: true})
	require.NoError(t, err)

	_, err = f.ledger.RecordPayment(ctx, user, undated.ID, PaymentInput{Amount: "38", PaymentDate: date(t, "2024-03-01")})
	require.NoError(t, err)

	reloaded, err = f.ledger.Get(ctx, user, undated.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NextBillingDate)
	assert.Equal(t, "2024-06-01", reloaded.NextBillingDate.String())

	_, err = f.ledger.RecordPayment(ctx, user, undated.ID, PaymentInput{Amount: "lots"})
	requireErrorAs[*ValidationError](t, err)

	_, err = f.ledger.RecordPayment(ctx, other, undated.ID, PaymentInput{})
	requireErrorAs[*NotFoundError](t, err)

	payments, err := f.ledger.ListPayments(ctx, user, undated.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "38.00", payments[0].Amount.StringFixed(2))

	_, err = f.ledger.ListPayments(ctx, other, undated.ID)
	requireErrorAs[*NotFoundError](t, err)
}
