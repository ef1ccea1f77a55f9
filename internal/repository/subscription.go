package repository

import (
	"context"
	"strings"
	"subscription-tracker/internal/model"

	"gorm.io/gorm"
)

type SubscriptionFilter struct {
	Search   string
	Category model.Category
	// "active", "inactive" or empty for all
	Status string
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Save(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	Delete(ctx context.Context, ownerID, subscriptionID string) error
	FindByID(ctx context.Context, ownerID, subscriptionID string) (*model.Subscription, error)
	List(ctx context.Context, ownerID string, filter SubscriptionFilter) ([]*model.Subscription, error)

	CreatePayment(ctx context.Context, tx *gorm.DB, payment *model.SubscriptionPayment) error
	ListPayments(ctx context.Context, ownerID, subscriptionID string) ([]*model.SubscriptionPayment, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) Save(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Save(sub).Error
}

func (r *subscriptionRepoImpl) Delete(ctx context.Context, ownerID, subscriptionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("owner_id = ? AND id = ?", ownerID, subscriptionID).
			Delete(&model.Subscription{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("subscription_id = ?", subscriptionID).
			Delete(&model.SubscriptionPayment{}).Error
	})
}

func (r *subscriptionRepoImpl) FindByID(ctx context.Context, ownerID, subscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, subscriptionID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) List(ctx context.Context, ownerID string, filter SubscriptionFilter) ([]*model.Subscription, error) {
	query := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID)

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(provider) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	switch filter.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	var subs []*model.Subscription
	if err := query.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}

	return subs, nil
}

func (r *subscriptionRepoImpl) CreatePayment(ctx context.Context, tx *gorm.DB, payment *model.SubscriptionPayment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *subscriptionRepoImpl) ListPayments(ctx context.Context, ownerID, subscriptionID string) ([]*model.SubscriptionPayment, error) {
	var payments []*model.SubscriptionPayment
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND subscription_id = ?", ownerID, subscriptionID).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error

	if err != nil {
		return nil, err
	}

	return payments, nil
}
