package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/questforge/questforge-backend/internal/apierr"
	"github.com/questforge/questforge-backend/internal/logger"
	"github.com/questforge/questforge-backend/internal/repos"
	"github.com/questforge/questforge-backend/internal/requestdata"
	"github.com/questforge/questforge-backend/internal/types"
)

type ClassService interface {
	CreateClass(ctx context.Context, tx *gorm.DB, name, description string) (*types.Class, error)
	GetUserClasses(ctx context.Context, tx *gorm.DB) ([]*types.Class, error)
	GetOwnedClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (*types.Class, error)
}

type classService struct {
	db        *gorm.DB
	log       *logger.Logger
	classRepo repos.ClassRepo
}

func NewClassService(db *gorm.DB, baseLog *logger.Logger, classRepo repos.ClassRepo) ClassService {
	return &classService{
		db:        db,
		log:       baseLog.With("service", "ClassService"),
		classRepo: classRepo,
	}
}

func (s *classService) CreateClass(ctx context.Context, tx *gorm.DB, name, description string) (*types.Class, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if name == "" {
		return nil, apierr.BadRequest("missing_name", "class name is required")
	}
	class := &types.Class{
		ID:          uuid.New(),
		UserID:      rd.UserID,
		Name:        name,
		Description: description,
	}
	if _, err := s.classRepo.Create(ctx, tx, []*types.Class{class}); err != nil {
		s.log.Warn("CreateClass failed", "error", err, "user_id", rd.UserID)
		return nil, err
	}
	return class, nil
}

func (s *classService) GetUserClasses(ctx context.Context, tx *gorm.DB) ([]*types.Class, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	classes, err := s.classRepo.GetByUserID(ctx, tx, rd.UserID)
	if err != nil {
		s.log.Warn("GetUserClasses failed", "error", err, "user_id", rd.UserID)
		return nil, err
	}
	return classes, nil
}

// GetOwnedClass resolves the class only for its owner; a class owned by
// someone else reads as not found.
func (s *classService) GetOwnedClass(ctx context.Context, tx *gorm.DB, classID uuid.UUID) (*types.Class, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if classID == uuid.Nil {
		return nil, apierr.BadRequest("missing_class_id", "class id is required")
	}
	classes, err := s.classRepo.GetByIDs(ctx, tx, []uuid.UUID{classID})
	if err != nil {
		s.log.Warn("GetOwnedClass failed", "error", err, "class_id", classID)
		return nil, err
	}
	if len(classes) == 0 || classes[0] == nil || classes[0].UserID != rd.UserID {
		return nil, apierr.NotFound("class_not_found", "class %s not found", classID)
	}
	return classes[0], nil
}
