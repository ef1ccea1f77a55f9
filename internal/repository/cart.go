package repository

import (
	"context"
	"subscription-tracker/internal/model"

	"gorm.io/gorm"
)

type CartRepository interface {
	Add(ctx context.Context, item *model.CartItem) error
	Exists(ctx context.Context, ownerID, packageID string) (bool, error)
	Remove(ctx context.Context, ownerID, itemID string) (bool, error)
	Count(ctx context.Context, ownerID string) (int64, error)
	// ListWithPackages returns the cart in insertion order. Items whose
	// package was deleted come back with a nil Package.
	ListWithPackages(ctx context.Context, tx *gorm.DB, ownerID string) ([]*model.CartItem, error)
	Clear(ctx context.Context, tx *gorm.DB, ownerID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Add(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) Exists(ctx context.Context, ownerID, packageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("owner_id = ? AND package_id = ?", ownerID, packageID).
		Count(&count).Error

	return count > 0, err
}

func (r *cartRepoImpl) Remove(ctx context.Context, ownerID, itemID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, itemID).
		Delete(&model.CartItem{})

	return result.RowsAffected > 0, result.Error
}

func (r *cartRepoImpl) Count(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error

	return count, err
}

func (r *cartRepoImpl) ListWithPackages(ctx context.Context, tx *gorm.DB, ownerID string) ([]*model.CartItem, error) {
	if tx == nil {
		tx = r.db
	}

	var items []*model.CartItem
	err := tx.WithContext(ctx).
		Preload("Package").
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *cartRepoImpl) Clear(ctx context.Context, tx *gorm.DB, ownerID string) error {
	return tx.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.CartItem{}).Error
}
