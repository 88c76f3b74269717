package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/questforge/questforge-backend/internal/logger"
	"github.com/questforge/questforge-backend/internal/types"
)

// ClassNodeRepo is the persistence boundary for curriculum outline nodes.
// Sibling queries are always scoped to (class_id, parent_id); a nil parentID
// selects the root level.
type ClassNodeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, nodes []*types.ClassNode) ([]*types.ClassNode, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.ClassNode, error)
	GetByClassID(ctx context.Context, tx *gorm.DB, classID uuid.UUID, onlyActive bool) ([]*types.ClassNode, error)
	GetActiveSiblings(ctx context.Context, tx *gorm.DB, classID uuid.UUID, parentID *uuid.UUID) ([]*types.ClassNode, error)
	GetActiveSiblingsForUpdate(ctx context.Context, tx *gorm.DB, classID uuid.UUID, parentID *uuid.UUID) ([]*types.ClassNode, error)
	UpdateSequence(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, sequence int) error
	Deactivate(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error
	UpdateLock(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, isLocked bool, metadata datatypes.JSONMap) error
}

type classNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassNodeRepo(db *gorm.DB, baseLog *logger.Logger) ClassNodeRepo {
	return &classNodeRepo{db: db, log: baseLog.With("repo", "ClassNodeRepo")}
}

func (r *classNodeRepo) Create(ctx context.Context, tx *gorm.DB, nodes []*types.ClassNode) ([]*types.ClassNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(nodes) == 0 {
		return []*types.ClassNode{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func (r *classNodeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, nodeIDs []uuid.UUID) ([]*types.ClassNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassNode
	if len(nodeIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", nodeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classNodeRepo) GetByClassID(ctx context.Context, tx *gorm.DB, classID uuid.UUID, onlyActive bool) ([]*types.ClassNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ClassNode
	query := transaction.WithContext(ctx).Where("class_id = ?", classID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("sequence ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classNodeRepo) GetActiveSiblings(ctx context.Context, tx *gorm.DB, classID uuid.UUID, parentID *uuid.UUID) ([]*types.ClassNode, error) {
	return r.activeSiblings(ctx, tx, classID, parentID, false)
}

// GetActiveSiblingsForUpdate takes SELECT ... FOR UPDATE row locks on the
// sibling set; callers must be inside a transaction.
func (r *classNodeRepo) GetActiveSiblingsForUpdate(ctx context.Context, tx *gorm.DB, classID uuid.UUID, parentID *uuid.UUID) ([]*types.ClassNode, error) {
	return r.activeSiblings(ctx, tx, classID, parentID, true)
}

func (r *classNodeRepo) activeSiblings(ctx context.Context, tx *gorm.DB, classID uuid.UUID, parentID *uuid.UUID, forUpdate bool) ([]*types.ClassNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Where("class_id = ?", classID).
		Where("is_active = ?", true)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var results []*types.ClassNode
	if err := query.Order("sequence ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *classNodeRepo) UpdateSequence(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, sequence int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ClassNode{}).
		Where("id = ?", nodeID).
		Update("sequence", sequence).Error; err != nil {
		return err
	}
	return nil
}

func (r *classNodeRepo) Deactivate(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ClassNode{}).
		Where("id = ?", nodeID).
		Update("is_active", false).Error; err != nil {
		return err
	}
	return nil
}

func (r *classNodeRepo) UpdateLock(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, isLocked bool, metadata datatypes.JSONMap) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ClassNode{}).
		Where("id = ?", nodeID).
		Updates(map[string]interface{}{
			"is_locked_by_import": isLocked,
			"metadata":            metadata,
		}).Error; err != nil {
		return err
	}
	return nil
}
