package service

import (
	"context"
	"fmt"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
)

const (
	DashboardAdmin = "admin"
	DashboardUser  = "user"
)

// Dashboard is the landing view. Exactly one of Admin and User is set,
// matching Kind.
type Dashboard struct {
	Kind  string     `json:"kind"`
	Admin *AdminView `json:"admin,omitempty"`
	User  *UserView  `json:"user,omitempty"`
}

type AdminView struct {
	Packages   []*model.Package                       `json:"packages"`
	UserCounts map[model.UserSubscriptionStatus]int64 `json:"user_counts"`
}

type UserView struct {
	Metrics            Metrics                 `json:"metrics"`
	ActiveSubscription *model.UserSubscription `json:"active_subscription"`
	CartCount          int64                   `json:"cart_count"`
}

type DashboardService interface {
	Dashboard(ctx context.Context, identity Identity) (*Dashboard, error)
}

type dashboardServiceImpl struct {
	packageRepo          repository.PackageRepository
	userSubscriptionRepo repository.UserSubscriptionRepository
	cartRepo             repository.CartRepository
	subscriptionService  SubscriptionService
}

func NewDashboardService(
	packageRepo repository.PackageRepository,
	userSubscriptionRepo repository.UserSubscriptionRepository,
	cartRepo repository.CartRepository,
	subscriptionService SubscriptionService,
) DashboardService {
	return &dashboardServiceImpl{
		packageRepo:          packageRepo,
		userSubscriptionRepo: userSubscriptionRepo,
		cartRepo:             cartRepo,
		subscriptionService:  subscriptionService,
	}
}

func (s *dashboardServiceImpl) Dashboard(ctx context.Context, identity Identity) (*Dashboard, error) {
	if identity.IsAdmin() {
		view, err := s.adminView(ctx)
		if err != nil {
			return nil, err
		}
		return &Dashboard{Kind: DashboardAdmin, Admin: view}, nil
	}

	view, err := s.userView(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Kind: DashboardUser, User: view}, nil
}

func (s *dashboardServiceImpl) adminView(ctx context.Context) (*AdminView, error) {
	packages, err := s.packageRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	counts, err := s.userSubscriptionRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count user subscriptions: %w", err)
	}

	return &AdminView{Packages: packages, UserCounts: counts}, nil
}

func (s *dashboardServiceImpl) userView(ctx context.Context, identity Identity) (*UserView, error) {
	metrics, err := s.subscriptionService.Metrics(ctx, identity)
	if err != nil {
		return nil, err
	}

	current, err := s.userSubscriptionRepo.FindCurrent(ctx, nil, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("load current subscription: %w", err)
	}

	cartCount, err := s.cartRepo.Count(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("count cart: %w", err)
	}

	return &UserView{
		Metrics:            metrics,
		ActiveSubscription: current,
		CartCount:          cartCount,
	}, nil
}
