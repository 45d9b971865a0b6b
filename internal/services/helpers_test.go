package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/repos"
	"github.com/homesync/homesync-backend/internal/types"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&types.Household{},
		&types.HouseholdMember{},
		&types.Task{},
		&types.ShoppingItem{},
	))
	return db
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// recordedEvents is a Notifier that captures events for assertions.
type recordedEvents struct {
	mu  sync.Mutex
	evs []realtime.ChangeEvent
}

func (r *recordedEvents) TaskChanged(_ context.Context, op realtime.Op, task *types.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, realtime.ChangeEvent{
		Channel: realtime.TaskChannel(task.HouseholdID),
		Op:      op,
		Task:    task,
	})
}

func (r *recordedEvents) all() []realtime.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.ChangeEvent, len(r.evs))
	copy(out, r.evs)
	return out
}

func (r *recordedEvents) last() realtime.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evs[len(r.evs)-1]
}

type testEnv struct {
	db         *gorm.DB
	households HouseholdService
	tasks      TaskService
	shopping   ShoppingService
	events     *recordedEvents
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := testLogger()

	taskRepo := repos.NewTaskRepo(db, log)
	itemRepo := repos.NewShoppingItemRepo(db, log)
	householdRepo := repos.NewHouseholdRepo(db, log)
	memberRepo := repos.NewMemberRepo(db, log)

	events := &recordedEvents{}
	return &testEnv{
		db:         db,
		households: NewHouseholdService(db, log, householdRepo, memberRepo),
		tasks:      NewTaskService(db, log, taskRepo, memberRepo, events),
		shopping:   NewShoppingService(db, log, taskRepo, itemRepo),
		events:     events,
	}
}

// seedHousehold creates a household with two members and returns its id plus
// both user ids.
func seedHousehold(t *testing.T, env *testEnv) (household, alice, bob uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	alice = uuid.New()
	bob = uuid.New()

	h, err := env.households.Create(ctx, alice, "testhold")
	require.NoError(t, err)
	_, err = env.households.AddMember(ctx, h.ID, bob, "", "Bob", "#00aa00")
	require.NoError(t, err)
	return h.ID, alice, bob
}

func strP(s string) *string { return &s }

func timeP(tm time.Time) *time.Time { return &tm }

func floatP(f float64) *float64 { return &f }

func monday() time.Time {
	return time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
}

// acceptedMeal creates a meal task proposed by proposer, scheduled into the
// given week, and accepted by acceptor.
func acceptedMeal(t *testing.T, env *testEnv, household, proposer, acceptor uuid.UUID, title string, ings []types.Ingredient) *types.Task {
	t.Helper()
	ctx := context.Background()

	created, err := env.tasks.Create(ctx, household, proposer, CreateTaskInput{
		Title:       title,
		TaskType:    types.TaskTypeMeal,
		DayWindow:   strP("wednesday"),
		WeekStart:   timeP(monday()),
		Ingredients: ings,
	})
	require.NoError(t, err)

	accepted, err := env.tasks.Patch(ctx, created.ID, acceptor, TaskPatch{State: strP(types.StateAccepted)})
	require.NoError(t, err)
	return accepted
}
