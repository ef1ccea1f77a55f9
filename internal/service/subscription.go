package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionInput carries the fields of a new ledger entry. Cost is text so
// that parsing errors surface as validation errors.
type SubscriptionInput struct {
	Name            string
	Description     string
	Provider        string
	WebsiteURL      string
	Cost            string
	Currency        string
	BillingCycle    model.BillingCycle
	Category        model.Category
	IsActive        bool
	AutoRenewal     bool
	NextBillingDate *model.Date
	UsageLimit      *float64
	CurrentUsage    *float64
	Notes           string
}

// SubscriptionPatch is a partial update; nil fields are left untouched. The
// optional fields are cleared by a Nullable that is set without a value.
type SubscriptionPatch struct {
	Name            *string
	Description     *string
	Provider        *string
	WebsiteURL      *string
	Cost            *string
	Currency        *string
	BillingCycle    *model.BillingCycle
	Category        *model.Category
	IsActive        *bool
	AutoRenewal     *bool
	NextBillingDate model.Nullable[model.Date]
	UsageLimit      model.Nullable[float64]
	CurrentUsage    model.Nullable[float64]
	Notes           *string
}

type PaymentInput struct {
	// empty means the subscription's cost
	Amount string
	// nil means today
	PaymentDate *model.Date
	Notes       string
}

type SubscriptionService interface {
	List(ctx context.Context, identity Identity, filter repository.SubscriptionFilter) ([]*model.Subscription, error)
	Get(ctx context.Context, identity Identity, subscriptionID string) (*model.Subscription, error)
	Create(ctx context.Context, identity Identity, input SubscriptionInput) (*model.Subscription, error)
	Update(ctx context.Context, identity Identity, subscriptionID string, patch SubscriptionPatch) (*model.Subscription, error)
	Delete(ctx context.Context, identity Identity, subscriptionID string) error
	SetActive(ctx context.Context, identity Identity, subscriptionID string, active bool) (*model.Subscription, error)
	UpdateUsage(ctx context.Context, identity Identity, subscriptionID string, currentUsage float64) (*model.Subscription, error)
	RecordPayment(ctx context.Context, identity Identity, subscriptionID string, input PaymentInput) (*model.SubscriptionPayment, error)
	ListPayments(ctx context.Context, identity Identity, subscriptionID string) ([]*model.SubscriptionPayment, error)
	Metrics(ctx context.Context, identity Identity) (Metrics, error)
}

type subscriptionServiceImpl struct {
	db               *gorm.DB
	subscriptionRepo repository.SubscriptionRepository
	logger           *slog.Logger
	now              func() time.Time
}

func NewSubscriptionService(db *gorm.DB, subscriptionRepo repository.SubscriptionRepository, logger *slog.Logger) SubscriptionService {
	return &subscriptionServiceImpl{
		db:               db,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *subscriptionServiceImpl) List(ctx context.Context, identity Identity, filter repository.SubscriptionFilter) ([]*model.Subscription, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, invalid("category", fmt.Sprintf("unknown category %q", filter.Category))
	}
	switch filter.Status {
	case "", "all":
		filter.Status = ""
	case "active", "inactive":
	default:
		return nil, invalid("status", fmt.Sprintf("unknown status %q", filter.Status))
	}

	return s.subscriptionRepo.List(ctx, identity.UserID, filter)
}

func (s *subscriptionServiceImpl) Get(ctx context.Context, identity Identity, subscriptionID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, identity.UserID, subscriptionID)
	if err != nil {
		return nil, notFound(err, "subscription", subscriptionID)
	}
	return sub, nil
}

func (s *subscriptionServiceImpl) Create(ctx context.Context, identity Identity, input SubscriptionInput) (*model.Subscription, error) {
	cost, err := parseAmount(input.Cost)
	if err != nil {
		return nil, invalid("cost", err.Error())
	}

	sub := &model.Subscription{
		ID:              uuid.NewString(),
		OwnerID:         identity.UserID,
		Name:            input.Name,
		Description:     strings.TrimSpace(input.Description),
		Provider:        strings.TrimSpace(input.Provider),
		WebsiteURL:      strings.TrimSpace(input.WebsiteURL),
		Cost:            cost,
		Currency:        input.Currency,
		BillingCycle:    input.BillingCycle,
		Category:        input.Category,
		IsActive:        input.IsActive,
		AutoRenewal:     input.AutoRenewal,
		NextBillingDate: input.NextBillingDate,
		UsageLimit:      input.UsageLimit,
		CurrentUsage:    input.CurrentUsage,
		Notes:           input.Notes,
	}
	if err := normalizeSubscription(sub); err != nil {
		return nil, err
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("store subscription: %w", err)
	}

	s.logger.Info("subscription created", "user_id", identity.UserID, "subscription_id", sub.ID, "name", sub.Name)
	return sub, nil
}

func (s *subscriptionServiceImpl) Update(ctx context.Context, identity Identity, subscriptionID string, patch SubscriptionPatch) (*model.Subscription, error) {
	sub, err := s.Get(ctx, identity, subscriptionID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		sub.Name = *patch.Name
	}
	if patch.Description != nil {
		sub.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Provider != nil {
		sub.Provider = strings.TrimSpace(*patch.Provider)
	}
	if patch.WebsiteURL != nil {
		sub.WebsiteURL = strings.TrimSpace(*patch.WebsiteURL)
	}
	if patch.Cost != nil {
		cost, err := parseAmount(*patch.Cost)
		if err != nil {
			return nil, invalid("cost", err.Error())
		}
		sub.Cost = cost
	}
	if patch.Currency != nil {
		sub.Currency = *patch.Currency
	}
	if patch.BillingCycle != nil {
		sub.BillingCycle = *patch.BillingCycle
	}
	if patch.Category != nil {
		sub.Category = *patch.Category
	}
	if patch.IsActive != nil {
		sub.IsActive = *patch.IsActive
	}
	if patch.AutoRenewal != nil {
		sub.AutoRenewal = *patch.AutoRenewal
	}
	if patch.NextBillingDate.Set {
		sub.NextBillingDate = patch.NextBillingDate.Value
	}
	if patch.UsageLimit.Set {
		sub.UsageLimit = patch.UsageLimit.Value
	}
	if patch.CurrentUsage.Set {
		sub.CurrentUsage = patch.CurrentUsage.Value
	}
	if patch.Notes != nil {
		sub.Notes = *patch.Notes
	}

	if err := normalizeSubscription(sub); err != nil {
		return nil, err
	}

	if err := s.subscriptionRepo.Save(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	s.logger.Info("subscription updated", "user_id", identity.UserID, "subscription_id", sub.ID)
	return sub, nil
}

func (s *subscriptionServiceImpl) Delete(ctx context.Context, identity Identity, subscriptionID string) error {
	if err := s.subscriptionRepo.Delete(ctx, identity.UserID, subscriptionID); err != nil {
		return notFound(err, "subscription", subscriptionID)
	}

	s.logger.Info("subscription deleted", "user_id", identity.UserID, "subscription_id", subscriptionID)
	return nil
}

func (s *subscriptionServiceImpl) SetActive(ctx context.Context, identity Identity, subscriptionID string, active bool) (*model.Subscription, error) {
	return s.Update(ctx, identity, subscriptionID, SubscriptionPatch{IsActive: &active})
}

func (s *subscriptionServiceImpl) UpdateUsage(ctx context.Context, identity Identity, subscriptionID string, currentUsage float64) (*model.Subscription, error) {
	return s.Update(ctx, identity, subscriptionID, SubscriptionPatch{CurrentUsage: model.Some(currentUsage)})
}

func (s *subscriptionServiceImpl) RecordPayment(ctx context.Context, identity Identity, subscriptionID string, input PaymentInput) (*model.SubscriptionPayment, error) {
	sub, err := s.Get(ctx, identity, subscriptionID)
	if err != nil {
		return nil, err
	}

	amount := sub.Cost
	if strings.TrimSpace(input.Amount) != "" {
		amount, err = parseAmount(input.Amount)
		if err != nil {
			return nil, invalid("amount", err.Error())
		}
	}

	paidOn := model.NewDate(s.now())
	if input.PaymentDate != nil {
		paidOn = *input.PaymentDate
	}

	payment := &model.SubscriptionPayment{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		OwnerID:        identity.UserID,
		Amount:         amount,
		Currency:       sub.Currency,
		PaymentDate:    paidOn,
		Notes:          strings.TrimSpace(input.Notes),
	}

	// the next charge is one cycle after the one just paid
	from := paidOn
	if sub.NextBillingDate != nil {
		from = *sub.NextBillingDate
	}
	next := model.NewDate(sub.BillingCycle.Advance(from.Time))
	sub.NextBillingDate = &next

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.CreatePayment(ctx, tx, payment); err != nil {
			return &PartialFailure{Step: "record payment", Err: err}
		}
		if err := s.subscriptionRepo.Save(ctx, tx, sub); err != nil {
			return &PartialFailure{Step: "advance billing date", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		"user_id", identity.UserID,
		"subscription_id", sub.ID,
		"amount", amount.StringFixed(2),
		"next_billing_date", next.String(),
	)
	return payment, nil
}

func (s *subscriptionServiceImpl) ListPayments(ctx context.Context, identity Identity, subscriptionID string) ([]*model.SubscriptionPayment, error) {
	if _, err := s.Get(ctx, identity, subscriptionID); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.ListPayments(ctx, identity.UserID, subscriptionID)
}

func (s *subscriptionServiceImpl) Metrics(ctx context.Context, identity Identity) (Metrics, error) {
	ledger, err := s.subscriptionRepo.List(ctx, identity.UserID, repository.SubscriptionFilter{})
	if err != nil {
		return Metrics{}, fmt.Errorf("load ledger: %w", err)
	}
	return ComputeMetrics(ledger), nil
}

// normalizeSubscription fills defaults and checks the ledger invariants.
func normalizeSubscription(sub *model.Subscription) error {
	sub.Name = strings.TrimSpace(sub.Name)
	if sub.Name == "" {
		return invalid("name", "is required")
	}
	if sub.Cost.IsNegative() {
		return invalid("cost", "must not be negative")
	}

	if sub.BillingCycle == "" {
		sub.BillingCycle = model.BillingMonthly
	}
	if !sub.BillingCycle.Valid() {
		return invalid("billing_cycle", fmt.Sprintf("unknown billing cycle %q", sub.BillingCycle))
	}

	if sub.Category == "" {
		sub.Category = model.CategoryOther
	}
	if !sub.Category.Valid() {
		return invalid("category", fmt.Sprintf("unknown category %q", sub.Category))
	}

	sub.Currency = strings.ToUpper(strings.TrimSpace(sub.Currency))
	if sub.Currency == "" {
		sub.Currency = defaultCurrency
	}

	if sub.UsageLimit != nil && *sub.UsageLimit < 0 {
		return invalid("usage_limit", "must not be negative")
	}
	if sub.CurrentUsage != nil {
		if *sub.CurrentUsage < 0 {
			return invalid("current_usage", "must not be negative")
		}
		if sub.UsageLimit != nil && *sub.CurrentUsage > *sub.UsageLimit {
			return invalid("current_usage", "exceeds the usage limit")
		}
	}

	return nil
}
