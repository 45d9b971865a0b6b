package realtime

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/types"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ChangeEvent is one entry of a household's change feed. Delivery is
// at-least-once; consumers dedup by task id and revision. For OpDelete the
// task carries its last known state.
type ChangeEvent struct {
	Channel string      `json:"channel"`
	Op      Op          `json:"op"`
	Task    *types.Task `json:"task,omitempty"`
}

// TaskChannel names the feed every client of one household subscribes to.
func TaskChannel(householdID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s", householdID)
}
