package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "BDT"

// PackageForm is the admin edit form: price and features arrive as text.
// A nil IsActive means active for a new package and unchanged for an update.
type PackageForm struct {
	Name         string
	Description  string
	Price        string
	Currency     string
	BillingCycle model.BillingCycle
	Features     string
	IsActive     *bool
}

// FormFromPackage fills an edit form from a stored package.
func FormFromPackage(pkg *model.Package) PackageForm {
	active := pkg.IsActive
	return PackageForm{
		Name:         pkg.Name,
		Description:  pkg.Description,
		Price:        pkg.Price.StringFixed(2),
		Currency:     pkg.Currency,
		BillingCycle: pkg.BillingCycle,
		Features:     pkg.Features.Text(),
		IsActive:     &active,
	}
}

type CatalogService interface {
	Create(ctx context.Context, identity Identity, form PackageForm) (*model.Package, error)
	Update(ctx context.Context, identity Identity, packageID string, form PackageForm) (*model.Package, error)
	Delete(ctx context.Context, identity Identity, packageID string) error
	Get(ctx context.Context, identity Identity, packageID string) (*model.Package, error)
	List(ctx context.Context, identity Identity) ([]*model.Package, error)
	ListActive(ctx context.Context) ([]*model.Package, error)
}

type catalogServiceImpl struct {
	packageRepo repository.PackageRepository
	logger      *slog.Logger
}

func NewCatalogService(packageRepo repository.PackageRepository, logger *slog.Logger) CatalogService {
	return &catalogServiceImpl{
		packageRepo: packageRepo,
		logger:      logger,
	}
}

func (s *catalogServiceImpl) Create(ctx context.Context, identity Identity, form PackageForm) (*model.Package, error) {
	if err := requireAdmin(identity, "create packages"); err != nil {
		return nil, err
	}

	pkg := &model.Package{ID: uuid.NewString(), IsActive: true}
	if err := applyForm(pkg, form); err != nil {
		return nil, err
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("store package: %w", err)
	}

	s.logger.Info("package created", "package_id", pkg.ID, "name", pkg.Name, "admin_id", identity.UserID)
	return pkg, nil
}

func (s *catalogServiceImpl) Update(ctx context.Context, identity Identity, packageID string, form PackageForm) (*model.Package, error) {
	if err := requireAdmin(identity, "update packages"); err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, notFound(err, "package", packageID)
	}
	if err := applyForm(pkg, form); err != nil {
		return nil, err
	}

	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		return nil, notFound(err, "package", packageID)
	}

	updated, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, notFound(err, "package", packageID)
	}

	s.logger.Info("package updated", "package_id", packageID, "admin_id", identity.UserID)
	return updated, nil
}

func (s *catalogServiceImpl) Delete(ctx context.Context, identity Identity, packageID string) error {
	if err := requireAdmin(identity, "delete packages"); err != nil {
		return err
	}

	if err := s.packageRepo.Delete(ctx, packageID); err != nil {
		return notFound(err, "package", packageID)
	}

	s.logger.Info("package deleted", "package_id", packageID, "admin_id", identity.UserID)
	return nil
}

func (s *catalogServiceImpl) Get(ctx context.Context, identity Identity, packageID string) (*model.Package, error) {
	if err := requireAdmin(identity, "view packages"); err != nil {
		return nil, err
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		return nil, notFound(err, "package", packageID)
	}
	return pkg, nil
}

func (s *catalogServiceImpl) List(ctx context.Context, identity Identity) ([]*model.Package, error) {
	if err := requireAdmin(identity, "list all packages"); err != nil {
		return nil, err
	}
	return s.packageRepo.List(ctx, false)
}

func (s *catalogServiceImpl) ListActive(ctx context.Context) ([]*model.Package, error) {
	return s.packageRepo.List(ctx, true)
}

// applyForm validates form and copies it onto pkg. Nothing is written when it
// returns an error.
func applyForm(pkg *model.Package, form PackageForm) error {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return invalid("name", "is required")
	}

	price, err := parseAmount(form.Price)
	if err != nil {
		return invalid("price", err.Error())
	}

	cycle := form.BillingCycle
	if cycle == "" {
		cycle = model.BillingMonthly
	}
	if !cycle.Valid() {
		return invalid("billing_cycle", fmt.Sprintf("unknown billing cycle %q", cycle))
	}

	currency := strings.ToUpper(strings.TrimSpace(form.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	pkg.Name = name
	pkg.Description = strings.TrimSpace(form.Description)
	pkg.Price = price
	pkg.Currency = currency
	pkg.BillingCycle = cycle
	pkg.Features = model.SplitFeatures(form.Features)
	if form.IsActive != nil {
		pkg.IsActive = *form.IsActive
	}
	return nil
}

// parseAmount parses a non-negative money amount, rounded to two decimals.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("is required")
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}

	return amount.Round(2), nil
}
