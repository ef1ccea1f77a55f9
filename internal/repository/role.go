package repository

import (
	"context"
	"subscription-tracker/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	// GetRole falls back to RoleUser when the user has no role row.
	GetRole(ctx context.Context, userID string) (model.Role, error)
	Upsert(ctx context.Context, userID string, role model.Role) error
}

type roleRepoImpl struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepoImpl{
		db: db,
	}
}

func (r *roleRepoImpl) GetRole(ctx context.Context, userID string) (model.Role, error) {
	var row model.UserRole
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row)

	if result.Error != nil {
		return "", result.Error
	}
	// most users never get a role row
	if result.RowsAffected == 0 {
		return model.RoleUser, nil
	}

	return row.Role, nil
}

func (r *roleRepoImpl) Upsert(ctx context.Context, userID string, role model.Role) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&model.UserRole{UserID: userID, Role: role}).Error
}
