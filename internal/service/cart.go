package service

import (
	"context"
	"fmt"
	"log/slog"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartView struct {
	Items            []*model.CartItem `json:"items"`
	Total            decimal.Decimal   `json:"total"`
	CreditsAvailable decimal.Decimal   `json:"credits_available"`
	AmountDue        decimal.Decimal   `json:"amount_due"`
}

type CartService interface {
	AddToCart(ctx context.Context, identity Identity, packageID string) (*model.CartItem, error)
	RemoveFromCart(ctx context.Context, identity Identity, itemID string) error
	GetCart(ctx context.Context, identity Identity) (*CartView, error)
	CartTotal(ctx context.Context, identity Identity) (decimal.Decimal, error)
}

type cartServiceImpl struct {
	packageRepo          repository.PackageRepository
	cartRepo             repository.CartRepository
	userSubscriptionRepo repository.UserSubscriptionRepository
	logger               *slog.Logger
}

func NewCartService(
	packageRepo repository.PackageRepository,
	cartRepo repository.CartRepository,
	userSubscriptionRepo repository.UserSubscriptionRepository,
	logger *slog.Logger,
) CartService {
	return &cartServiceImpl{
		packageRepo:          packageRepo,
		cartRepo:             cartRepo,
		userSubscriptionRepo: userSubscriptionRepo,
		logger:               logger,
	}
}

func (s *cartServiceImpl) AddToCart(ctx context.Context, identity Identity, packageID string) (*model.CartItem, error) {
	if packageID == "" {
		return nil, invalid("package_id", "is required")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, notFound(err, "package", packageID)
	}
	if !pkg.IsActive {
		return nil, invalid("package_id", "package is not available")
	}

	inCart, err := s.cartRepo.Exists(ctx, identity.UserID, packageID)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if inCart {
		return nil, ErrAlreadyInCart
	}

	subscribed, err := s.userSubscriptionRepo.HasActiveForPackage(ctx, identity.UserID, packageID)
	if err != nil {
		return nil, fmt.Errorf("check active subscriptions: %w", err)
	}
	if subscribed {
		return nil, ErrAlreadySubscribed
	}

	item := &model.CartItem{
		ID:        uuid.NewString(),
		OwnerID:   identity.UserID,
		PackageID: packageID,
	}
	if err := s.cartRepo.Add(ctx, item); err != nil {
		// lost a race against a concurrent add of the same package
		if exists, _ := s.cartRepo.Exists(ctx, identity.UserID, packageID); exists {
			return nil, ErrAlreadyInCart
		}
		return nil, fmt.Errorf("store cart item: %w", err)
	}

	item.Package = pkg
	s.logger.Info("package added to cart", "user_id", identity.UserID, "package_id", packageID)
	return item, nil
}

func (s *cartServiceImpl) RemoveFromCart(ctx context.Context, identity Identity, itemID string) error {
	removed, err := s.cartRepo.Remove(ctx, identity.UserID, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if removed {
		s.logger.Info("cart item removed", "user_id", identity.UserID, "item_id", itemID)
	}
	return nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, identity Identity) (*CartView, error) {
	items, err := s.cartRepo.ListWithPackages(ctx, nil, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	current, err := s.userSubscriptionRepo.FindCurrent(ctx, nil, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("load current subscription: %w", err)
	}

	total := cartTotal(items)
	credits := availableCredits(current)
	return &CartView{
		Items:            items,
		Total:            total,
		CreditsAvailable: credits,
		AmountDue:        amountDue(total, credits),
	}, nil
}

func (s *cartServiceImpl) CartTotal(ctx context.Context, identity Identity) (decimal.Decimal, error) {
	items, err := s.cartRepo.ListWithPackages(ctx, nil, identity.UserID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list cart: %w", err)
	}
	return cartTotal(items), nil
}

// cartTotal sums package prices; items whose package is gone count as zero.
func cartTotal(items []*model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Package == nil {
			continue
		}
		total = total.Add(item.Package.Price)
	}
	return total
}

func availableCredits(current *model.UserSubscription) decimal.Decimal {
	if current == nil || current.CreditsRemaining.IsNegative() {
		return decimal.Zero
	}
	return current.CreditsRemaining
}

func amountDue(total, credits decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(credits))
}
