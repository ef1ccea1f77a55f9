package repository

import (
	"context"
	"errors"
	"subscription-tracker/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserSubscriptionRepository interface {
	CreateMany(ctx context.Context, tx *gorm.DB, subs []*model.UserSubscription) error
	// FindCurrent returns the most recently started active record, or nil.
	FindCurrent(ctx context.Context, tx *gorm.DB, ownerID string) (*model.UserSubscription, error)
	HasActiveForPackage(ctx context.Context, ownerID, packageID string) (bool, error)
	FindByID(ctx context.Context, userSubscriptionID string) (*model.UserSubscription, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.UserSubscription, error)
	Cancel(ctx context.Context, userSubscriptionID string) error
	SetCredits(ctx context.Context, tx *gorm.DB, userSubscriptionID string, credits decimal.Decimal) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[model.UserSubscriptionStatus]int64, error)
}

type userSubscriptionRepoImpl struct {
	db *gorm.DB
}

func NewUserSubscriptionRepository(db *gorm.DB) UserSubscriptionRepository {
	return &userSubscriptionRepoImpl{
		db: db,
	}
}

func (r *userSubscriptionRepoImpl) CreateMany(ctx context.Context, tx *gorm.DB, subs []*model.UserSubscription) error {
	return tx.WithContext(ctx).Create(&subs).Error
}

func (r *userSubscriptionRepoImpl) FindCurrent(ctx context.Context, tx *gorm.DB, ownerID string) (*model.UserSubscription, error) {
	if tx == nil {
		tx = r.db
	}

	var sub model.UserSubscription
	err := tx.WithContext(ctx).
		Preload("Package").
		Where("owner_id = ? AND status = ?", ownerID, model.StatusActive).
		Order("started_at DESC").
		First(&sub).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *userSubscriptionRepoImpl) HasActiveForPackage(ctx context.Context, ownerID, packageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("owner_id = ? AND package_id = ? AND status = ?", ownerID, packageID, model.StatusActive).
		Count(&count).Error

	return count > 0, err
}

func (r *userSubscriptionRepoImpl) FindByID(ctx context.Context, userSubscriptionID string) (*model.UserSubscription, error) {
	var sub model.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("id = ?", userSubscriptionID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *userSubscriptionRepoImpl) ListByOwner(ctx context.Context, ownerID string) ([]*model.UserSubscription, error) {
	var subs []*model.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Package").
		Where("owner_id = ?", ownerID).
		Order("started_at DESC").
		Find(&subs).Error

	if err != nil {
		return nil, err
	}

	return subs, nil
}

// Cancel only moves active records; cancelled and expired ones are left as is.
func (r *userSubscriptionRepoImpl) Cancel(ctx context.Context, userSubscriptionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Where("id = ? AND status = ?", userSubscriptionID, model.StatusActive).
		Updates(map[string]interface{}{
			"status":     model.StatusCancelled,
			"updated_at": time.Now(),
		}).Error
}

func (r *userSubscriptionRepoImpl) SetCredits(ctx context.Context, tx *gorm.DB, userSubscriptionID string, credits decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Where("id = ?", userSubscriptionID).
		Updates(map[string]interface{}{
			"credits_remaining": credits,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userSubscriptionRepoImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.StatusActive, now).
		Updates(map[string]interface{}{
			"status":     model.StatusExpired,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}

func (r *userSubscriptionRepoImpl) CountByStatus(ctx context.Context) (map[model.UserSubscriptionStatus]int64, error) {
	var rows []struct {
		Status model.UserSubscriptionStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.UserSubscription{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	counts := make(map[model.UserSubscriptionStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}
