package booking

import (
	"github.com/trainhub/session-booking/internal/httperr"
)

// Actor is the authenticated caller of a lifecycle action. The capability
// check happens once here, at the state-machine entry point, not per-field
// in the handlers.
type Actor struct {
	UserID uint
	Role   string
}

func requireRole(actor Actor, roles ...string) error {
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return httperr.ErrBusiness("forbidden")
}
