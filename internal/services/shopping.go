package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/shopping"
	"github.com/homesync/homesync-backend/internal/types"
	"github.com/homesync/homesync-backend/internal/week"
)

type ShoppingService interface {
	Get(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	Sync(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	Toggle(ctx context.Context, itemID uuid.UUID, checked bool) (*types.ShoppingItem, error)
}

// weekLocks serializes syncs per (household, week). Toggles stay outside the
// lock: they are independent point updates, and the checked snapshot inside
// the sync transaction is what protects them from being lost.
type weekLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (w *weekLocks) acquire(key string) func() {
	w.mu.Lock()
	if w.locks == nil {
		w.locks = make(map[string]*sync.Mutex)
	}
	l, ok := w.locks[key]
	if !ok {
		l = &sync.Mutex{}
		w.locks[key] = l
	}
	w.mu.Unlock()

	l.Lock()
	return l.Unlock
}

type shoppingService struct {
	db    *gorm.DB
	log   *logger.Logger
	tasks repos.TaskRepo
	items repos.ShoppingItemRepo
	locks weekLocks
}

func NewShoppingService(db *gorm.DB, log *logger.Logger, tasks repos.TaskRepo, items repos.ShoppingItemRepo) ShoppingService {
	return &shoppingService{
		db:    db,
		log:   log.With("service", "ShoppingService"),
		tasks: tasks,
		items: items,
	}
}

func (s *shoppingService) Get(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	if !week.IsMonday(weekStart) {
		return nil, apierr.Validation("week_start %s is not a Monday", weekStart.Format("2006-01-02"))
	}
	items, err := s.items.ListByWeek(ctx, nil, householdID, week.Truncate(weekStart))
	if err != nil {
		return nil, err
	}
	shopping.SortItems(items)
	return items, nil
}

// Sync rebuilds the pending portion of the week's list from the currently
// accepted meal tasks. Checked items are snapshotted before the unchecked
// rows are cleared, and an aggregated line whose name matches a checked item
// is skipped entirely, so a sync never undoes shopping progress. Zero
// accepted meals is not an error; it yields the checked leftovers only.
func (s *shoppingService) Sync(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	if !week.IsMonday(weekStart) {
		return nil, apierr.Validation("week_start %s is not a Monday", weekStart.Format("2006-01-02"))
	}
	anchor := week.Truncate(weekStart)

	unlock := s.locks.acquire(fmt.Sprintf("%s|%s", householdID, anchor.Format("2006-01-02")))
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		meals, err := s.tasks.ListAcceptedMeals(ctx, tx, householdID, anchor)
		if err != nil {
			return err
		}
		lines := shopping.Aggregate(meals)

		checked, err := s.items.ListChecked(ctx, tx, householdID, anchor)
		if err != nil {
			return err
		}
		checkedNames := make(map[string]bool, len(checked))
		for _, item := range checked {
			checkedNames[strings.ToLower(strings.TrimSpace(item.Name))] = true
		}

		if err := s.items.DeleteUnchecked(ctx, tx, householdID, anchor); err != nil {
			return err
		}

		lines = shopping.ExcludeChecked(lines, checkedNames)
		rows := make([]*types.ShoppingItem, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, &types.ShoppingItem{
				HouseholdID: householdID,
				WeekStart:   anchor,
				Name:        line.Name,
				Quantity:    line.Quantity,
				Unit:        line.Unit,
				Category:    line.Category,
				Checked:     false,
			})
		}
		_, err = s.items.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, householdID, anchor)
}

func (s *shoppingService) Toggle(ctx context.Context, itemID uuid.UUID, checked bool) (*types.ShoppingItem, error) {
	return s.items.SetChecked(ctx, nil, itemID, checked)
}
