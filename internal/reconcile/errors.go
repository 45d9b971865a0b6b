package reconcile

import (
	"github.com/google/uuid"

	"github.com/homesync/homesync-backend/internal/apierr"
)

func errNotInView(id uuid.UUID) error {
	return apierr.NotFound("task %s is not in the local view", id)
}
