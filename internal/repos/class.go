package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questforge/questforge-backend/internal/logger"
	"github.com/questforge/questforge-backend/internal/types"
)

type ClassRepo interface {
	Create(ctx context.Context, tx *gorm.DB, classes []*types.Class) ([]*types.Class, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Class, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Class, error)
}

type classRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return &classRepo{db: db, log: baseLog.With("repo", "ClassRepo")}
}

func (r *classRepo) Create(ctx context.Context, tx *gorm.DB, classes []*types.Class) ([]*types.Class, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(classes) == 0 {
		return []*types.Class{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepo) GetByIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Class, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Class
	if len(classIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", classIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Class, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Class
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
