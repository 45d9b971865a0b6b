package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/types"
)

type HouseholdRepo interface {
	Create(ctx context.Context, tx *gorm.DB, household *types.Household) (*types.Household, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Household, error)
}

type householdRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHouseholdRepo(db *gorm.DB, baseLog *logger.Logger) HouseholdRepo {
	return &householdRepo{db: db, log: baseLog.With("repo", "HouseholdRepo")}
}

func (r *householdRepo) Create(ctx context.Context, tx *gorm.DB, household *types.Household) (*types.Household, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if household.ID == uuid.Nil {
		household.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(household).Error; err != nil {
		return nil, err
	}
	return household, nil
}

func (r *householdRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Household, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var household types.Household
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("household %s not found", id)
		}
		return nil, err
	}
	return &household, nil
}
