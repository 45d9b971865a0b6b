package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/negotiation"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/types"
	"github.com/homesync/homesync-backend/internal/week"
)

type CreateTaskInput struct {
	// ID is optional; clients doing optimistic creation supply their own id so
	// the store's insert notification dedups against the provisional copy.
	ID              *uuid.UUID         `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	TaskType        string             `json:"task_type"`
	AssignedTo      *uuid.UUID         `json:"assigned_to"`
	DayWindow       *string            `json:"day_window"`
	WeekStart       *time.Time         `json:"week_start"`
	TimeOfDay       *string            `json:"time_of_day"`
	DurationMinutes *int               `json:"duration_minutes"`
	Recurrence      *string            `json:"recurrence"`
	Ingredients     []types.Ingredient `json:"ingredients"`
}

// TaskPatch is a partial update. The *Set flags distinguish "absent" from
// "set to null" for nullable fields, mirroring a JSON merge patch.
type TaskPatch struct {
	Title           *string
	Description     *string
	TaskType        *string
	State           *string
	AssignedTo      *uuid.UUID
	AssignedToSet   bool
	DayWindow       *string
	DayWindowSet    bool
	WeekStart       *time.Time
	WeekStartSet    bool
	TimeOfDay       *string
	TimeOfDaySet    bool
	DurationMinutes *int
	DurationSet     bool
	Recurrence      *string
	RecurrenceSet   bool
	Ingredients     *[]types.Ingredient
}

type TaskService interface {
	Create(ctx context.Context, householdID, proposer uuid.UUID, in CreateTaskInput) (*types.Task, error)
	Patch(ctx context.Context, taskID, actor uuid.UUID, p TaskPatch) (*types.Task, error)
	Delete(ctx context.Context, taskID, actor uuid.UUID) error
	List(ctx context.Context, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error)
	Get(ctx context.Context, taskID uuid.UUID) (*types.Task, error)
}

type taskService struct {
	db       *gorm.DB
	log      *logger.Logger
	tasks    repos.TaskRepo
	members  repos.MemberRepo
	notifier Notifier
}

func NewTaskService(db *gorm.DB, log *logger.Logger, tasks repos.TaskRepo, members repos.MemberRepo, notifier Notifier) TaskService {
	return &taskService{
		db:       db,
		log:      log.With("service", "TaskService"),
		tasks:    tasks,
		members:  members,
		notifier: notifier,
	}
}

func validTaskType(s string) bool {
	switch s {
	case types.TaskTypeChore, types.TaskTypeMeal, types.TaskTypeEvent, types.TaskTypeTodo:
		return true
	}
	return false
}

func validRecurrence(s string) bool {
	switch s {
	case types.RecurrenceWeekly, types.RecurrenceBiweekly, types.RecurrenceMonthly:
		return true
	}
	return false
}

func (s *taskService) requireMember(ctx context.Context, householdID, userID uuid.UUID) error {
	if _, err := s.members.GetByHouseholdAndUser(ctx, nil, householdID, userID); err != nil {
		if apierr.IsNotFound(err) {
			return apierr.Forbidden("not a member of household %s", householdID)
		}
		return err
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, householdID, proposer uuid.UUID, in CreateTaskInput) (*types.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apierr.Validation("title must not be empty")
	}
	taskType := in.TaskType
	if taskType == "" {
		taskType = types.TaskTypeChore
	}
	if !validTaskType(taskType) {
		return nil, apierr.Validation("unknown task type %q", taskType)
	}
	if in.Recurrence != nil && !validRecurrence(*in.Recurrence) {
		return nil, apierr.Validation("unknown recurrence %q", *in.Recurrence)
	}
	if err := s.requireMember(ctx, householdID, proposer); err != nil {
		return nil, err
	}

	task := &types.Task{
		HouseholdID:     householdID,
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		TaskType:        taskType,
		State:           types.StateProposed,
		ProposedBy:      proposer,
		AssignedTo:      in.AssignedTo,
		TimeOfDay:       in.TimeOfDay,
		DurationMinutes: in.DurationMinutes,
		Recurrence:      in.Recurrence,
		Ingredients:     in.Ingredients,
	}
	if in.ID != nil {
		task.ID = *in.ID
	}

	// Scheduling fields are set together or not at all. A week anchor without
	// a day window is normalized away rather than persisted half-placed.
	if in.DayWindow != nil {
		if in.WeekStart == nil {
			return nil, apierr.Validation("week_start is required when day_window is set")
		}
		if err := week.Place(task, in.DayWindow, *in.WeekStart); err != nil {
			return nil, err
		}
	}

	created, err := s.tasks.Create(ctx, nil, task)
	if err != nil {
		return nil, err
	}
	s.notifier.TaskChanged(ctx, realtime.OpInsert, created.Clone())
	return created, nil
}

func (s *taskService) Patch(ctx context.Context, taskID, actor uuid.UUID, p TaskPatch) (*types.Task, error) {
	task, err := s.tasks.GetByID(ctx, nil, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, task.HouseholdID, actor); err != nil {
		return nil, err
	}

	titleChanged := false
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apierr.Validation("title must not be empty")
		}
		titleChanged = title != task.Title
		task.Title = title
	}

	// State rules run before the rest of the patch lands, so a forbidden
	// transition rejects the whole request.
	if err := negotiation.Apply(task, titleChanged, p.State, actor); err != nil {
		return nil, err
	}

	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.TaskType != nil {
		if !validTaskType(*p.TaskType) {
			return nil, apierr.Validation("unknown task type %q", *p.TaskType)
		}
		task.TaskType = *p.TaskType
	}
	if p.AssignedToSet {
		task.AssignedTo = p.AssignedTo
	}
	if p.TimeOfDaySet {
		task.TimeOfDay = p.TimeOfDay
	}
	if p.DurationSet {
		task.DurationMinutes = p.DurationMinutes
	}
	if p.RecurrenceSet {
		if p.Recurrence != nil && !validRecurrence(*p.Recurrence) {
			return nil, apierr.Validation("unknown recurrence %q", *p.Recurrence)
		}
		task.Recurrence = p.Recurrence
	}
	if p.Ingredients != nil {
		task.Ingredients = *p.Ingredients
	}

	if p.DayWindowSet || p.WeekStartSet {
		dayWindow := task.DayWindow
		if p.DayWindowSet {
			dayWindow = p.DayWindow
		}
		if dayWindow == nil {
			if err := week.Place(task, nil, time.Time{}); err != nil {
				return nil, err
			}
		} else {
			anchor := task.WeekStart
			if p.WeekStartSet {
				anchor = p.WeekStart
			}
			if anchor == nil {
				return nil, apierr.Validation("week_start is required when day_window is set")
			}
			if err := week.Place(task, dayWindow, *anchor); err != nil {
				return nil, err
			}
		}
	}

	task.Revision++
	if err := s.tasks.Update(ctx, nil, task); err != nil {
		return nil, err
	}
	s.notifier.TaskChanged(ctx, realtime.OpUpdate, task.Clone())
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, taskID, actor uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, nil, taskID)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, task.HouseholdID, actor); err != nil {
		return err
	}
	if err := negotiation.CanDelete(task, actor); err != nil {
		return err
	}
	if err := s.tasks.DeleteByID(ctx, nil, taskID); err != nil {
		return err
	}
	// The delete event outranks every prior update of this task.
	gone := task.Clone()
	gone.Revision++
	s.notifier.TaskChanged(ctx, realtime.OpDelete, gone)
	return nil
}

func (s *taskService) List(ctx context.Context, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error) {
	if weekStart != nil && !week.IsMonday(*weekStart) {
		return nil, apierr.Validation("week_start %s is not a Monday", weekStart.Format("2006-01-02"))
	}
	return s.tasks.ListByHousehold(ctx, nil, householdID, weekStart)
}

func (s *taskService) Get(ctx context.Context, taskID uuid.UUID) (*types.Task, error) {
	return s.tasks.GetByID(ctx, nil, taskID)
}
