package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/types"
)

type ShoppingItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ShoppingItem) ([]*types.ShoppingItem, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShoppingItem, error)
	ListByWeek(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	ListChecked(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	DeleteUnchecked(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) error
	SetChecked(ctx context.Context, tx *gorm.DB, id uuid.UUID, checked bool) (*types.ShoppingItem, error)
}

type shoppingItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShoppingItemRepo(db *gorm.DB, baseLog *logger.Logger) ShoppingItemRepo {
	return &shoppingItemRepo{db: db, log: baseLog.With("repo", "ShoppingItemRepo")}
}

func (r *shoppingItemRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ShoppingItem) ([]*types.ShoppingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.ShoppingItem{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shoppingItemRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ShoppingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var item types.ShoppingItem
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("shopping item %s not found", id)
		}
		return nil, err
	}
	return &item, nil
}

func (r *shoppingItemRepo) ListByWeek(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ShoppingItem
	if err := transaction.WithContext(ctx).
		Where("household_id = ? AND week_start = ?", householdID, weekStart).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shoppingItemRepo) ListChecked(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ShoppingItem
	if err := transaction.WithContext(ctx).
		Where("household_id = ? AND week_start = ? AND checked = ?", householdID, weekStart, true).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *shoppingItemRepo) DeleteUnchecked(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("household_id = ? AND week_start = ? AND checked = ?", householdID, weekStart, false).
		Delete(&types.ShoppingItem{}).Error
}

func (r *shoppingItemRepo) SetChecked(ctx context.Context, tx *gorm.DB, id uuid.UUID, checked bool) (*types.ShoppingItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	item, err := r.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, err
	}
	item.Checked = checked
	if err := transaction.WithContext(ctx).
		Model(item).
		Update("checked", checked).Error; err != nil {
		return nil, err
	}
	return item, nil
}
