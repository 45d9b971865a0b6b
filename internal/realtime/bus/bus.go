package bus

import (
	"context"

	"github.com/homesync/homesync-backend/internal/realtime"
)

// Bus carries change events between API replicas so every replica's hub sees
// every household's writes.
type Bus interface {
	Publish(ctx context.Context, ev realtime.ChangeEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev realtime.ChangeEvent)) error
	Close() error
}
