// Package gateway adapts the service layer to the reconcile.Gateway contract
// for clients running in the same process, such as tests and embedded tools.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/reconcile"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/types"
)

type Local struct {
	actor    uuid.UUID
	tasks    services.TaskService
	shopping services.ShoppingService
	hub      *realtime.Hub
}

// NewLocal binds a gateway to one caller identity; the services enforce
// membership and negotiation rules against that identity on every call.
func NewLocal(actor uuid.UUID, tasks services.TaskService, shopping services.ShoppingService, hub *realtime.Hub) *Local {
	return &Local{actor: actor, tasks: tasks, shopping: shopping, hub: hub}
}

var _ reconcile.Gateway = (*Local)(nil)

func (l *Local) CreateTask(ctx context.Context, householdID uuid.UUID, in services.CreateTaskInput) (*types.Task, error) {
	return l.tasks.Create(ctx, householdID, l.actor, in)
}

func (l *Local) PatchTask(ctx context.Context, taskID uuid.UUID, p services.TaskPatch) (*types.Task, error) {
	return l.tasks.Patch(ctx, taskID, l.actor, p)
}

func (l *Local) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return l.tasks.Delete(ctx, taskID, l.actor)
}

func (l *Local) ListTasks(ctx context.Context, householdID uuid.UUID, weekStart *time.Time) ([]*types.Task, error) {
	return l.tasks.List(ctx, householdID, weekStart)
}

func (l *Local) Subscribe(ctx context.Context, householdID uuid.UUID) (<-chan realtime.ChangeEvent, func(), error) {
	events, unsubscribe := l.hub.Subscribe(realtime.TaskChannel(householdID))
	return events, unsubscribe, nil
}

func (l *Local) GetShoppingList(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	return l.shopping.Get(ctx, householdID, weekStart)
}

func (l *Local) SyncShoppingList(ctx context.Context, householdID uuid.UUID, weekStart time.Time) ([]*types.ShoppingItem, error) {
	return l.shopping.Sync(ctx, householdID, weekStart)
}

func (l *Local) ToggleShoppingItem(ctx context.Context, itemID uuid.UUID, checked bool) (*types.ShoppingItem, error) {
	return l.shopping.Toggle(ctx, itemID, checked)
}
