package services

import (
	"context"

	"github.com/homesync/homesync-backend/internal/logger"
	"github.com/homesync/homesync-backend/internal/realtime"
	"github.com/homesync/homesync-backend/internal/realtime/bus"
	"github.com/homesync/homesync-backend/internal/types"
)

// Notifier pushes task change events into the household's change feed after a
// confirmed write.
type Notifier interface {
	TaskChanged(ctx context.Context, op realtime.Op, task *types.Task)
}

type changeNotifier struct {
	log *logger.Logger
	hub *realtime.Hub
	bus bus.Bus
}

// NewNotifier routes events through the cross-replica bus when one is
// configured; the bus forwarder feeds every replica's hub, this one included.
// Without a bus, events go straight to the local hub.
func NewNotifier(log *logger.Logger, hub *realtime.Hub, b bus.Bus) Notifier {
	return &changeNotifier{log: log.With("service", "Notifier"), hub: hub, bus: b}
}

func (n *changeNotifier) TaskChanged(ctx context.Context, op realtime.Op, task *types.Task) {
	ev := realtime.ChangeEvent{
		Channel: realtime.TaskChannel(task.HouseholdID),
		Op:      op,
		Task:    task,
	}
	if n.bus != nil {
		if err := n.bus.Publish(ctx, ev); err != nil {
			n.log.Warn("bus publish failed, delivering locally", "error", err, "op", op)
			n.hub.Publish(ev)
		}
		return
	}
	n.hub.Publish(ev)
}
