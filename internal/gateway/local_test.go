package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/apierr"
	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/reconcile"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/types"
	"github.com/homesync/homesync-backend/internal/week"
)

var dbSeq atomic.Int64

// fixture is a full in-process stack: sqlite store, real services, one hub,
// and a session per member, the same wiring two browsers against one server
// would see minus the HTTP hop.
type fixture struct {
	household uuid.UUID
	alice     uuid.UUID
	bob       uuid.UUID
	aliceGW   *Local
	bobGW     *Local
	aliceSess *reconcile.Session
	bobSess   *reconcile.Session
	shopping  services.ShoppingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:gateway_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Household{},
		&types.HouseholdMember{},
		&types.Task{},
		&types.ShoppingItem{},
	))

	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	taskRepo := repos.NewTaskRepo(db, log)
	itemRepo := repos.NewShoppingItemRepo(db, log)
	householdRepo := repos.NewHouseholdRepo(db, log)
	memberRepo := repos.NewMemberRepo(db, log)

	hub := realtime.NewHub(log)
	notifier := services.NewNotifier(log, hub, nil)
	tasks := services.NewTaskService(db, log, taskRepo, memberRepo, notifier)
	shopping := services.NewShoppingService(db, log, taskRepo, itemRepo)
	households := services.NewHouseholdService(db, log, householdRepo, memberRepo)

	f := &fixture{alice: uuid.New(), bob: uuid.New(), shopping: shopping}

	h, err := households.Create(ctx, f.alice, "flat 12")
	require.NoError(t, err)
	f.household = h.ID
	_, err = households.AddMember(ctx, h.ID, f.bob, "", "Bob", "#00aa00")
	require.NoError(t, err)

	f.aliceGW = NewLocal(f.alice, tasks, shopping, hub)
	f.bobGW = NewLocal(f.bob, tasks, shopping, hub)

	sessCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	f.aliceSess = reconcile.NewSession(log, f.aliceGW, f.household)
	require.NoError(t, f.aliceSess.Start(sessCtx))
	t.Cleanup(f.aliceSess.Close)

	f.bobSess = reconcile.NewSession(log, f.bobGW, f.household)
	require.NoError(t, f.bobSess.Start(sessCtx))
	t.Cleanup(f.bobSess.Close)

	return f
}

func awaitResult(t *testing.T, results <-chan reconcile.Result) reconcile.Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mutation result")
		return reconcile.Result{}
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func strV(s string) *string { return &s }

func timeV(tm time.Time) *time.Time { return &tm }

func floatV(f float64) *float64 { return &f }

// TestTrashNegotiationWeek walks one task through a full week of negotiation
// between two members sharing a live change feed.
func TestTrashNegotiationWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	monday := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

	// Alice proposes "Trash" into the backlog.
	taskID, results := f.aliceSess.CreateTask(ctx, services.CreateTaskInput{Title: "Trash"})
	require.NoError(t, awaitResult(t, results).Err)

	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return ok
	}, "bob never saw the proposal")

	// Bob drags it onto Wednesday of the viewed week.
	r := awaitResult(t, f.bobSess.PatchTask(ctx, taskID, services.TaskPatch{
		DayWindow:    strV(week.Wednesday),
		DayWindowSet: true,
		WeekStart:    timeV(monday),
		WeekStartSet: true,
	}))
	require.NoError(t, r.Err)

	p := f.bobSess.Partition(monday)
	require.Len(t, p.ByDay[week.Wednesday], 1)
	assert.Empty(t, p.Backlog)

	// Alice cannot accept her own proposal; her optimistic view rolls back.
	r = awaitResult(t, f.aliceSess.PatchTask(ctx, taskID, services.TaskPatch{State: strV(types.StateAccepted)}))
	require.Error(t, r.Err)
	assert.True(t, apierr.IsForbidden(r.Err))
	eventually(t, func() bool {
		task, ok := f.aliceSess.Task(taskID)
		return ok && task.State == types.StateProposed
	}, "alice's rejected accept stuck locally")

	// Bob accepts, then marks it done.
	r = awaitResult(t, f.bobSess.PatchTask(ctx, taskID, services.TaskPatch{State: strV(types.StateAccepted)}))
	require.NoError(t, r.Err)
	r = awaitResult(t, f.bobSess.PatchTask(ctx, taskID, services.TaskPatch{State: strV(types.StateDone)}))
	require.NoError(t, r.Err)

	eventually(t, func() bool {
		task, ok := f.aliceSess.Task(taskID)
		return ok && task.State == types.StateDone
	}, "alice never converged on done")

	// It stays on Wednesday all the way through.
	task, _ := f.aliceSess.Task(taskID)
	require.NotNil(t, task.DayWindow)
	assert.Equal(t, week.Wednesday, *task.DayWindow)
}

// TestDeclineAndCounterProposal covers the decline path: Bob declines, Alice
// revises the title, and the revision arrives at Bob as proposed again.
func TestDeclineAndCounterProposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	taskID, results := f.aliceSess.CreateTask(ctx, services.CreateTaskInput{Title: "Deep clean oven"})
	require.NoError(t, awaitResult(t, results).Err)
	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return ok
	}, "bob never saw the proposal")

	r := awaitResult(t, f.bobSess.PatchTask(ctx, taskID, services.TaskPatch{State: strV(types.StateDeclined)}))
	require.NoError(t, r.Err)

	eventually(t, func() bool {
		task, ok := f.aliceSess.Task(taskID)
		return ok && task.State == types.StateDeclined
	}, "alice never saw the decline")

	r = awaitResult(t, f.aliceSess.PatchTask(ctx, taskID, services.TaskPatch{Title: strV("Wipe oven")}))
	require.NoError(t, r.Err)
	assert.Equal(t, types.StateProposed, r.Task.State)

	eventually(t, func() bool {
		task, ok := f.bobSess.Task(taskID)
		return ok && task.State == types.StateProposed && task.Title == "Wipe oven"
	}, "bob never saw the counter-proposal")
}

// TestMealPlanningFeedsShoppingList runs the meal flow end to end: propose,
// accept, sync, check an item, re-sync.
func TestMealPlanningFeedsShoppingList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	monday := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)

	taskID, results := f.aliceSess.CreateTask(ctx, services.CreateTaskInput{
		Title:     "Omelette night",
		TaskType:  types.TaskTypeMeal,
		DayWindow: strV(week.Thursday),
		WeekStart: timeV(monday),
		Ingredients: []types.Ingredient{
			{Name: "egg", Quantity: floatV(6), Unit: strV("each"), Category: "dairy"},
			{Name: "chives", Category: "produce"},
		},
	})
	require.NoError(t, awaitResult(t, results).Err)

	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return ok
	}, "bob never saw the meal")
	r := awaitResult(t, f.bobSess.PatchTask(ctx, taskID, services.TaskPatch{State: strV(types.StateAccepted)}))
	require.NoError(t, r.Err)

	items, err := f.bobGW.SyncShoppingList(ctx, f.household, monday)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "chives", items[0].Name, "produce sorts before dairy")

	var eggID uuid.UUID
	for _, it := range items {
		if it.Name == "egg" {
			eggID = it.ID
		}
	}
	_, err = f.aliceGW.ToggleShoppingItem(ctx, eggID, true)
	require.NoError(t, err)

	items, err = f.aliceGW.SyncShoppingList(ctx, f.household, monday)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		if it.Name == "egg" {
			assert.True(t, it.Checked, "checked egg lost by re-sync")
			assert.Equal(t, eggID, it.ID)
		}
	}
}

// TestDeletePropagates checks that a proposer's delete reaches the other
// member and stays deleted.
func TestDeletePropagates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	taskID, results := f.aliceSess.CreateTask(ctx, services.CreateTaskInput{Title: "Never mind"})
	require.NoError(t, awaitResult(t, results).Err)
	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return ok
	}, "bob never saw the task")

	// Bob cannot delete Alice's proposal.
	r := awaitResult(t, f.bobSess.DeleteTask(ctx, taskID))
	require.Error(t, r.Err)
	assert.True(t, apierr.IsForbidden(r.Err))
	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return ok
	}, "failed delete must restore bob's view")

	r = awaitResult(t, f.aliceSess.DeleteTask(ctx, taskID))
	require.NoError(t, r.Err)

	eventually(t, func() bool {
		_, ok := f.bobSess.Task(taskID)
		return !ok
	}, "bob never saw the delete")
}
