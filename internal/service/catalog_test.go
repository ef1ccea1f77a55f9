package service

import (
	"context"
	"subscription-tracker/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pkg, err := f.catalog.Create(ctx, admin, PackageForm{
		Name:     "  Pro  ",
		Price:    "499",
		Currency: "usd",
		Features: "Unlimited projects\r\n\nPriority support\n",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pro", pkg.Name)
	assert.Equal(t, "499.00", pkg.Price.StringFixed(2))
	assert.Equal(t, "USD", pkg.Currency)
	assert.Equal(t, model.BillingMonthly, pkg.BillingCycle)
	assert.Equal(t, model.Features{"Unlimited projects", "Priority support"}, pkg.Features)
	assert.True(t, pkg.IsActive)

	form := FormFromPackage(pkg)
	assert.Equal(t, "Unlimited projects\nPriority support", form.Features)
	assert.Equal(t, "499.00", form.Price)

	hidden, err := f.catalog.Create(ctx, admin, PackageForm{Name: "Lite", Price: "1.5", IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "BDT", hidden.Currency)
	assert.False(t, hidden.IsActive)
}

func TestCatalogValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := []struct {
		name  string
		form  PackageForm
		field string
	}{
		{"blank name", PackageForm{Name: "  ", Price: "10"}, "name"},
		{"missing price", PackageForm{Name: "Pro"}, "price"},
		{"non numeric price", PackageForm{Name: "Pro", Price: "abc"}, "price"},
		{"negative price", PackageForm{Name: "Pro", Price: "-1"}, "price"},
		{"unknown cycle", PackageForm{Name: "Pro", Price: "10", BillingCycle: "fortnightly"}, "billing_cycle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.catalog.Create(ctx, admin, tc.form)
			verr := requireErrorAs[*ValidationError](t, err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	all, err := f.catalog.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCatalogRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pkg := f.addPackage(t, "Pro", "499")

	_, err := f.catalog.Create(ctx, user, PackageForm{Name: "Hack", Price: "1"})
	requireErrorAs[*AuthorizationError](t, err)

	_, err = f.catalog.Update(ctx, user, pkg.ID, PackageForm{Name: "Hack", Price: "1"})
	requireErrorAs[*AuthorizationError](t, err)

	requireErrorAs[*AuthorizationError](t, f.catalog.Delete(ctx, user, pkg.ID))

	_, err = f.catalog.List(ctx, user)
	requireErrorAs[*AuthorizationError](t, err)

	_, err = f.catalog.Get(ctx, user, pkg.ID)
	requireErrorAs[*AuthorizationError](t, err)
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pkg := f.addPackage(t, "Pro", "499")

	form := FormFromPackage(pkg)
	form.Price = "549.99"
	form.IsActive = nil
	form.Features = "only one"
	updated, err := f.catalog.Update(ctx, admin, pkg.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "549.99", updated.Price.StringFixed(2))
	assert.True(t, updated.IsActive, "absent flag keeps the stored value")
	assert.Equal(t, model.Features{"only one"}, updated.Features)

	form.IsActive = ptr(false)
	updated, err = f.catalog.Update(ctx, admin, pkg.ID, form)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	form.IsActive = nil
	updated, err = f.catalog.Update(ctx, admin, pkg.ID, form)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := f.catalog.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = f.catalog.Update(ctx, admin, "missing", form)
	requireErrorAs[*NotFoundError](t, err)

	require.NoError(t, f.catalog.Delete(ctx, admin, pkg.ID))
	requireErrorAs[*NotFoundError](t, f.catalog.Delete(ctx, admin, pkg.ID))

	_, err = f.catalog.Get(ctx, admin, pkg.ID)
	requireErrorAs[*NotFoundError](t, err)
}
