package repository

import (
	"context"
	"subscription-tracker/internal/model"
	"time"

	"gorm.io/gorm"
)

type PackageRepository interface {
	Create(ctx context.Context, pkg *model.Package) error
	Update(ctx context.Context, pkg *model.Package) error
	Delete(ctx context.Context, packageID string) error
	FindByID(ctx context.Context, packageID string) (*model.Package, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Package, error)
}

type packageRepoImpl struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepoImpl{
		db: db,
	}
}

func (r *packageRepoImpl) Create(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *packageRepoImpl) Update(ctx context.Context, pkg *model.Package) error {
	pkg.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Package{}).
		Where("id = ?", pkg.ID).
		Select("name", "description", "price", "currency", "billing_cycle", "features", "is_active", "updated_at").
		Updates(pkg)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *packageRepoImpl) Delete(ctx context.Context, packageID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", packageID).
		Delete(&model.Package{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *packageRepoImpl) FindByID(ctx context.Context, packageID string) (*model.Package, error) {
	var pkg model.Package
	err := r.db.WithContext(ctx).
		Where("id = ?", packageID).
		First(&pkg).Error

	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *packageRepoImpl) List(ctx context.Context, activeOnly bool) ([]*model.Package, error) {
	var packages []*model.Package
	query := r.db.WithContext(ctx).Order("price ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&packages).Error; err != nil {
		return nil, err
	}

	return packages, nil
}
