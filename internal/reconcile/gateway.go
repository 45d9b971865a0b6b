// Package reconcile keeps a client's local view of a household's task set in
// step with the store: mutations apply locally first for zero perceived
// latency, then commit against the store's authoritative echo or roll back to
// the captured snapshot, while remote change notifications merge in without
// duplicating or resurrecting entities.
package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/types"
)

// Gateway is the store boundary the session persists through. The ambient
// caller identity travels with the gateway, not with each call.
type Gateway interface {
	CreateTask(ctx context.Context, householdID uuid.UUID, in services.CreateTaskInput) (*types.Task, error)
	PatchTask(ctx context.Context, taskID uuid.UUID, p services.TaskPatch) (*types.Task, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	ListTasks(ctx context.Context, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error)
	// Subscribe opens the household's change feed. Delivery is at-least-once;
	// the session dedups by id and revision.
	Subscribe(ctx context.Context, householdID uuid.UUID) (<-chan realtime.ChangeEvent, func(), error)

	GetShoppingList(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	SyncShoppingList(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error)
	ToggleShoppingItem(ctx context.Context, itemID uuid.UUID, checked bool) (*types.ShoppingItem, error)
}
