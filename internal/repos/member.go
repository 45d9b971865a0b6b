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

type MemberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, member *types.HouseholdMember) (*types.HouseholdMember, error)
	ListByHousehold(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]*types.HouseholdMember, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.HouseholdMember, error)
	GetByHouseholdAndUser(ctx context.Context, tx *gorm.DB, householdID, userID uuid.UUID) (*types.HouseholdMember, error)
	UpdateProfile(ctx context.Context, tx *gorm.DB, id uuid.UUID, displayName, color string) (*types.HouseholdMember, error)
	UpdateProfileByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, displayName, color string) error
}

type memberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	return &memberRepo{db: db, log: baseLog.With("repo", "MemberRepo")}
}

func (r *memberRepo) Create(ctx context.Context, tx *gorm.DB, member *types.HouseholdMember) (*types.HouseholdMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepo) ListByHousehold(ctx context.Context, tx *gorm.DB, householdID uuid.UUID) ([]*types.HouseholdMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HouseholdMember
	if err := transaction.WithContext(ctx).
		Where("household_id = ?", householdID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *memberRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.HouseholdMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HouseholdMember
	if err := transaction.WithContext(ctx).
		Preload("Household").
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *memberRepo) GetByHouseholdAndUser(ctx context.Context, tx *gorm.DB, householdID, userID uuid.UUID) (*types.HouseholdMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var member types.HouseholdMember
	if err := transaction.WithContext(ctx).
		Where("household_id = ? AND user_id = ?", householdID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("member not found in household %s", householdID)
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) UpdateProfile(ctx context.Context, tx *gorm.DB, id uuid.UUID, displayName, color string) (*types.HouseholdMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var member types.HouseholdMember
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("member %s not found", id)
		}
		return nil, err
	}
	member.DisplayName = displayName
	member.Color = color
	if err := transaction.WithContext(ctx).Save(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) UpdateProfileByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, displayName, color string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.HouseholdMember{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"display_name": displayName, "color": color}).Error
}
