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

type TaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Task, error)
	ListByHousehold(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error)
	ListAcceptedMeals(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.Task, error)
	Update(ctx context.Context, tx *gorm.DB, task *types.Task) error
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{db: db, log: baseLog.With("repo", "TaskRepo")}
}

func (r *taskRepo) Create(ctx context.Context, tx *gorm.DB, task *types.Task) (*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if err := transaction.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var task types.Task
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("task %s not found", id)
		}
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListByHousehold(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Task
	q := transaction.WithContext(ctx).
		Where("household_id = ?", householdID)
	if weekStart != nil {
		q = q.Where("week_start = ?", *weekStart)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) ListAcceptedMeals(ctx context.Context, tx *gorm.DB, householdID uuid.UUID, weekStart time.Time) ([]*types.Task, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Task
	if err := transaction.WithContext(ctx).
		Where("household_id = ? AND week_start = ? AND task_type = ? AND state = ?",
			householdID, weekStart, types.TaskTypeMeal, types.StateAccepted).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *taskRepo) Update(ctx context.Context, tx *gorm.DB, task *types.Task) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Task{}).Error
}
