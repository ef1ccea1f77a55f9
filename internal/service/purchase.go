package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"subscription-tracker/internal/lock"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt summarizes one reconciled cart.
type Receipt struct {
	CartTotal        decimal.Decimal           `json:"cart_total"`
	CreditsApplied   decimal.Decimal           `json:"credits_applied"`
	AmountDue        decimal.Decimal           `json:"amount_due"`
	PaymentReference string                    `json:"payment_reference,omitempty"`
	Subscriptions    []*model.UserSubscription `json:"subscriptions"`
}

type PurchaseService interface {
	PurchaseFromCart(ctx context.Context, identity Identity, paymentToken string) (*Receipt, error)
	CancelSubscription(ctx context.Context, identity Identity, userSubscriptionID string) (*model.UserSubscription, error)
	ListUserSubscriptions(ctx context.Context, identity Identity) ([]*model.UserSubscription, error)
	GrantCredits(ctx context.Context, identity Identity, userSubscriptionID, amount string) (*model.UserSubscription, error)
}

type purchaseServiceImpl struct {
	db                   *gorm.DB
	cartRepo             repository.CartRepository
	userSubscriptionRepo repository.UserSubscriptionRepository
	locker               lock.Locker
	// nil when money movement is handled outside this service
	collector PaymentCollector
	logger    *slog.Logger
	now       func() time.Time
}

func NewPurchaseService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	userSubscriptionRepo repository.UserSubscriptionRepository,
	locker lock.Locker,
	collector PaymentCollector,
	logger *slog.Logger,
) PurchaseService {
	return &purchaseServiceImpl{
		db:                   db,
		cartRepo:             cartRepo,
		userSubscriptionRepo: userSubscriptionRepo,
		locker:               locker,
		collector:            collector,
		logger:               logger,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

func (s *purchaseServiceImpl) PurchaseFromCart(ctx context.Context, identity Identity, paymentToken string) (*Receipt, error) {
	unlock, err := s.locker.Lock(ctx, "purchase:"+identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("acquire purchase lock: %w", err)
	}
	defer unlock()

	var receipt *Receipt
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.cartRepo.ListWithPackages(ctx, tx, identity.UserID)
		if err != nil {
			return &PartialFailure{Step: "read cart", Err: err}
		}

		live := make([]*model.CartItem, 0, len(items))
		for _, item := range items {
			if item.Package != nil {
				live = append(live, item)
			}
		}
		if len(live) == 0 {
			return ErrEmptyCart
		}

		current, err := s.userSubscriptionRepo.FindCurrent(ctx, tx, identity.UserID)
		if err != nil {
			return &PartialFailure{Step: "read credits", Err: err}
		}

		total := cartTotal(live)
		credits := availableCredits(current)
		due := amountDue(total, credits)
		if due.IsPositive() && s.collector != nil && paymentToken == "" {
			return invalid("payment_token", "is required when an amount is due")
		}

		now := s.now()
		remaining := credits
		subs := make([]*model.UserSubscription, 0, len(live))
		for _, item := range live {
			price := item.Package.Price
			consumed := decimal.Min(remaining, price)
			remaining = remaining.Sub(consumed)

			expiresAt := item.Package.BillingCycle.Advance(now)
			subs = append(subs, &model.UserSubscription{
				ID:               uuid.NewString(),
				OwnerID:          identity.UserID,
				PackageID:        item.PackageID,
				Status:           model.StatusActive,
				StartedAt:        now,
				ExpiresAt:        &expiresAt,
				CreditsRemaining: decimal.Zero,
				TotalPaid:        price.Sub(consumed),
			})
		}
		applied := credits.Sub(remaining)

		if current != nil && applied.IsPositive() {
			if err := s.userSubscriptionRepo.SetCredits(ctx, tx, current.ID, current.CreditsRemaining.Sub(applied)); err != nil {
				return &PartialFailure{Step: "consume credits", Err: err}
			}
		}

		var reference string
		if due.IsPositive() && s.collector != nil {
			reference, err = s.collector.Collect(ctx, identity.UserID, paymentToken, due)
			if err != nil {
				return &PartialFailure{Step: "payment", Err: err}
			}
			for _, sub := range subs {
				sub.PaymentReference = reference
			}
		}

		if err := s.userSubscriptionRepo.CreateMany(ctx, tx, subs); err != nil {
			return &PartialFailure{Step: "create subscriptions", Err: err}
		}

		if err := s.cartRepo.Clear(ctx, tx, identity.UserID); err != nil {
			return &PartialFailure{Step: "clear cart", Err: err}
		}

		for i, sub := range subs {
			sub.Package = live[i].Package
		}
		receipt = &Receipt{
			CartTotal:        total,
			CreditsApplied:   applied,
			AmountDue:        due,
			PaymentReference: reference,
			Subscriptions:    subs,
		}
		return nil
	})
	if err != nil {
		var partial *PartialFailure
		if errors.As(err, &partial) {
			s.logger.Error("purchase rolled back", "user_id", identity.UserID, "step", partial.Step, "error", partial.Err)
		}
		return nil, err
	}

	s.logger.Info("cart purchased",
		"user_id", identity.UserID,
		"items", len(receipt.Subscriptions),
		"cart_total", receipt.CartTotal.StringFixed(2),
		"credits_applied", receipt.CreditsApplied.StringFixed(2),
		"amount_due", receipt.AmountDue.StringFixed(2),
	)
	return receipt, nil
}

func (s *purchaseServiceImpl) CancelSubscription(ctx context.Context, identity Identity, userSubscriptionID string) (*model.UserSubscription, error) {
	sub, err := s.userSubscriptionRepo.FindByID(ctx, userSubscriptionID)
	if err != nil {
		return nil, notFound(err, "user subscription", userSubscriptionID)
	}
	if sub.OwnerID != identity.UserID {
		return nil, &NotFoundError{Entity: "user subscription", ID: userSubscriptionID}
	}

	if sub.Status != model.StatusActive {
		return sub, nil
	}

	if err := s.userSubscriptionRepo.Cancel(ctx, userSubscriptionID); err != nil {
		return nil, fmt.Errorf("cancel user subscription: %w", err)
	}
	s.logger.Info("user subscription cancelled", "user_id", identity.UserID, "user_subscription_id", userSubscriptionID)

	sub.Status = model.StatusCancelled
	return sub, nil
}

func (s *purchaseServiceImpl) ListUserSubscriptions(ctx context.Context, identity Identity) ([]*model.UserSubscription, error) {
	return s.userSubscriptionRepo.ListByOwner(ctx, identity.UserID)
}

func (s *purchaseServiceImpl) GrantCredits(ctx context.Context, identity Identity, userSubscriptionID, amount string) (*model.UserSubscription, error) {
	if err := requireAdmin(identity, "grant credits"); err != nil {
		return nil, err
	}

	credits, err := parseAmount(amount)
	if err != nil {
		return nil, invalid("amount", err.Error())
	}

	sub, err := s.userSubscriptionRepo.FindByID(ctx, userSubscriptionID)
	if err != nil {
		return nil, notFound(err, "user subscription", userSubscriptionID)
	}

	balance := sub.CreditsRemaining.Add(credits)
	if err := s.userSubscriptionRepo.SetCredits(ctx, nil, sub.ID, balance); err != nil {
		return nil, fmt.Errorf("grant credits: %w", err)
	}
	s.logger.Info("credits granted", "admin_id", identity.UserID, "user_subscription_id", sub.ID, "amount", credits.StringFixed(2))

	sub.CreditsRemaining = balance
	return sub, nil
}
