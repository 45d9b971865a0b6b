package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/services"
	"github.com/homesync/homesync-backend/internal/types"
	"github.com/homesync/homesync-backend/internal/week"
)

// Result reports the outcome of one mutation. Task is the store's
// authoritative representation on success; Err carries the failure after the
// local view has already been rolled back.
type Result struct {
	Task *types.Task
	Err  error
}

// Session holds the client-local shadow of one household's task set.
//
// Every mutation captures a value snapshot of the affected task before
// applying locally. Multiple mutations may be in flight at once; each carries
// an op token so an out-of-order failure rolls back only if no later mutation
// has touched the same task since. Remote notifications merge in gated by the
// store revision of the last locally-confirmed write, and ids seen deleted are
// tombstoned so no late notification can resurrect them.
type Session struct {
	mu          sync.Mutex
	log         *logger.Logger
	gw          Gateway
	householdID uuid.UUID

	tasks     map[uuid.UUID]*types.Task
	confirmed map[uuid.UUID]int64 // store revision of last locally-confirmed write
	deleted   map[uuid.UUID]bool  // tombstones
	lastOp    map[uuid.UUID]uint64
	opSeq     uint64

	unsubscribe func()
}

func NewSession(log *logger.Logger, gw Gateway, householdID uuid.UUID) *Session {
	return &Session{
		log:         log.With("component", "ReconcileSession", "household", householdID),
		gw:          gw,
		householdID: householdID,
		tasks:       make(map[uuid.UUID]*types.Task),
		confirmed:   make(map[uuid.UUID]int64),
		deleted:     make(map[uuid.UUID]bool),
		lastOp:      make(map[uuid.UUID]uint64),
	}
}

// Start loads the current task set and begins consuming the change feed. The
// feed goroutine stops when ctx is cancelled or Close is called.
func (s *Session) Start(ctx context.Context) error {
	tasks, err := s.gw.ListTasks(ctx, s.householdID, nil)
	if err != nil {
		return err
	}
	events, unsubscribe, err := s.gw.Subscribe(ctx, s.householdID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, t := range tasks {
		s.tasks[t.ID] = t.Clone()
		s.confirmed[t.ID] = t.Revision
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.ApplyRemote(ev)
			}
		}
	}()
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Task returns a copy of the local view of one task.
func (s *Session) Task(id uuid.UUID) (*types.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Tasks returns a copy of the whole local view.
func (s *Session) Tasks() []*types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Partition computes the backlog/day-grid split of the local view for the
// week anchored at monday.
func (s *Session) Partition(monday time.Time) week.Partitioned {
	return week.Partition(s.Tasks(), monday)
}

// nextOp registers a new mutation on id and returns its token.
func (s *Session) nextOp(id uuid.UUID) uint64 {
	s.opSeq++
	s.lastOp[id] = s.opSeq
	return s.opSeq
}

// current reports whether op is still the newest mutation on id.
func (s *Session) current(id uuid.UUID, op uint64) bool {
	return s.lastOp[id] == op
}

// CreateTask optimistically inserts a provisional task under a client-chosen
// id and persists it. The returned id is stable: the store keeps client ids,
// and the insert notification dedups against the provisional copy.
func (s *Session) CreateTask(ctx context.Context, in services.CreateTaskInput) (uuid.UUID, <-chan Result) {
	id := uuid.New()
	if in.ID != nil {
		id = *in.ID
	} else {
		in.ID = &id
	}

	provisional := &types.Task{
		ID:              id,
		HouseholdID:     s.householdID,
		Title:           in.Title,
		Description:     in.Description,
		TaskType:        in.TaskType,
		State:           types.StateProposed,
		AssignedTo:      in.AssignedTo,
		TimeOfDay:       in.TimeOfDay,
		DurationMinutes: in.DurationMinutes,
		Recurrence:      in.Recurrence,
		Ingredients:     in.Ingredients,
	}
	if in.DayWindow != nil && in.WeekStart != nil {
		_ = week.Place(provisional, in.DayWindow, *in.WeekStart)
	}

	s.mu.Lock()
	delete(s.deleted, id)
	s.tasks[id] = provisional
	op := s.nextOp(id)
	s.mu.Unlock()

	results := make(chan Result, 1)
	go func() {
		created, err := s.gw.CreateTask(ctx, s.householdID, in)

		s.mu.Lock()
		if err != nil {
			if s.current(id, op) && !s.deleted[id] {
				delete(s.tasks, id)
			}
			s.mu.Unlock()
			results <- Result{Err: err}
			return
		}
		s.confirm(created, op)
		s.mu.Unlock()
		results <- Result{Task: created.Clone()}
	}()
	return id, results
}

// PatchTask applies a partial update optimistically and persists it. On
// failure the captured snapshot is restored exactly, unless a newer mutation
// on the same task has already superseded this one.
func (s *Session) PatchTask(ctx context.Context, id uuid.UUID, p services.TaskPatch) <-chan Result {
	results := make(chan Result, 1)

	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		results <- Result{Err: errNotInView(id)}
		return results
	}
	snapshot := task.Clone()
	applyPatchLocal(task, p)
	op := s.nextOp(id)
	s.mu.Unlock()

	go func() {
		updated, err := s.gw.PatchTask(ctx, id, p)

		s.mu.Lock()
		if err != nil {
			if s.current(id, op) && !s.deleted[id] {
				s.tasks[id] = snapshot
			}
			s.mu.Unlock()
			results <- Result{Err: err}
			return
		}
		s.confirm(updated, op)
		s.mu.Unlock()
		results <- Result{Task: updated.Clone()}
	}()
	return results
}

// DeleteTask optimistically removes the task and tombstones its id. A failed
// delete restores the snapshot and lifts the tombstone.
func (s *Session) DeleteTask(ctx context.Context, id uuid.UUID) <-chan Result {
	results := make(chan Result, 1)

	s.mu.Lock()
	task, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		results <- Result{Err: errNotInView(id)}
		return results
	}
	snapshot := task.Clone()
	delete(s.tasks, id)
	s.deleted[id] = true
	op := s.nextOp(id)
	s.mu.Unlock()

	go func() {
		err := s.gw.DeleteTask(ctx, id)

		s.mu.Lock()
		if err != nil {
			if s.current(id, op) {
				delete(s.deleted, id)
				s.tasks[id] = snapshot
			}
			s.mu.Unlock()
			results <- Result{Err: err}
			return
		}
		// Deletion confirmed; the tombstone stays.
		s.mu.Unlock()
		results <- Result{}
	}()
	return results
}

// confirm records the store's echo of a completed write. If a newer local
// mutation has already overwritten the optimistic state, only the revision
// marker advances; the newer local state stays visible.
func (s *Session) confirm(authoritative *types.Task, op uint64) {
	id := authoritative.ID
	if authoritative.Revision > s.confirmed[id] {
		s.confirmed[id] = authoritative.Revision
	}
	if s.deleted[id] {
		return
	}
	if s.current(id, op) {
		s.tasks[id] = authoritative.Clone()
	}
}

// ApplyRemote merges one change-feed notification into the local view.
// Inserts dedup by id with the remote copy winning; updates and deletes are
// last-writer-wins gated by the revision marker, so a notification older than
// the last locally-confirmed write is discarded. A tombstoned id is never
// reintroduced.
func (s *Session) ApplyRemote(ev realtime.ChangeEvent) {
	if ev.Task == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ev.Task.ID
	if s.deleted[id] {
		return
	}

	switch ev.Op {
	case realtime.OpInsert, realtime.OpUpdate:
		if ev.Task.Revision < s.confirmed[id] {
			return
		}
		s.tasks[id] = ev.Task.Clone()
		s.confirmed[id] = ev.Task.Revision
	case realtime.OpDelete:
		if ev.Task.Revision < s.confirmed[id] {
			return
		}
		delete(s.tasks, id)
		s.deleted[id] = true
	}
}

// applyPatchLocal mirrors the store's patch semantics on the local copy. The
// store remains authoritative: its echo replaces this approximation on
// confirm, and validation failures roll it back entirely.
func applyPatchLocal(task *types.Task, p services.TaskPatch) {
	if p.Title != nil {
		if task.State == types.StateDeclined && *p.Title != task.Title {
			task.State = types.StateProposed
		}
		task.Title = *p.Title
	}
	if p.State != nil {
		task.State = *p.State
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.TaskType != nil {
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
			_ = week.Place(task, nil, time.Time{})
		} else {
			anchor := task.WeekStart
			if p.WeekStartSet {
				anchor = p.WeekStart
			}
			if anchor != nil {
				_ = week.Place(task, dayWindow, *anchor)
			}
		}
	}
}
