package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"subscription-tracker/internal/lock"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/testutil"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	admin = Identity{UserID: "admin-1", Role: model.RoleAdmin}
	user  = Identity{UserID: "user-1", Role: model.RoleUser}
	other = Identity{UserID: "user-2", Role: model.RoleUser}
)

type fakeCollector struct {
	calls  int
	amount decimal.Decimal
	token  string
	err    error
}

func (c *fakeCollector) Collect(ctx context.Context, ownerID, paymentToken string, amount decimal.Decimal) (string, error) {
	c.calls++
	c.amount = amount
	c.token = paymentToken
	if c.err != nil {
		return "", c.err
	}
	return "txn-" + ownerID, nil
}

type fixture struct {
	db       *gorm.DB
	packages repository.PackageRepository
	cart     repository.CartRepository
	userSubs repository.UserSubscriptionRepository
	subs     repository.SubscriptionRepository

	catalog   CatalogService
	carts     CartService
	purchases *purchaseServiceImpl
	ledger    *subscriptionServiceImpl
	dashboard DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		db:       db,
		packages: repository.NewPackageRepository(db),
		cart:     repository.NewCartRepository(db),
		userSubs: repository.NewUserSubscriptionRepository(db),
		subs:     repository.NewSubscriptionRepository(db),
	}
	f.catalog = NewCatalogService(f.packages, logger)
	f.carts = NewCartService(f.packages, f.cart, f.userSubs, logger)
	f.purchases = NewPurchaseService(db, f.cart, f.userSubs, lock.NewLocalLocker(), nil, logger).(*purchaseServiceImpl)
	f.ledger = NewSubscriptionService(db, f.subs, logger).(*subscriptionServiceImpl)
	f.dashboard = NewDashboardService(f.packages, f.userSubs, f.cart, f.ledger)
	return f
}

func (f *fixture) addPackage(t *testing.T, name, price string) *model.Package {
	t.Helper()

	pkg, err := f.catalog.Create(context.Background(), admin, PackageForm{
		Name:     name,
		Price:    price,
		Features: "one\ntwo",
	})
	require.NoError(t, err)
	return pkg
}

// grantCredits gives identity an active subscription, started a day ago,
// holding the given credits.
func (f *fixture) grantCredits(t *testing.T, identity Identity, credits string) *model.UserSubscription {
	t.Helper()

	starter := f.addPackage(t, "Starter "+uuid.NewString()[:8], "0")
	started := time.Now().UTC().Add(-24 * time.Hour)
	sub := &model.UserSubscription{
		ID:               uuid.NewString(),
		OwnerID:          identity.UserID,
		PackageID:        starter.ID,
		Status:           model.StatusActive,
		StartedAt:        started,
		CreditsRemaining: decimal.RequireFromString(credits),
	}
	require.NoError(t, f.userSubs.CreateMany(context.Background(), f.db, []*model.UserSubscription{sub}))
	return sub
}

func requireErrorAs[T error](t *testing.T, err error) T {
	t.Helper()

	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T, got %v", target, err)
	return target
}
