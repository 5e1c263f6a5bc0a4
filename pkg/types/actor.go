package types

import "github.com/angelmondragon/nazorat-backend/pkg/enums"

// Actor is the authenticated caller as resolved by the session layer.
type Actor struct {
	ID   uint64
	Role enums.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CanView reports whether the actor may read a request owned by ownerID.
func (a Actor) CanView(ownerID *uint64) bool {
	if a.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == a.ID && a.ID != 0
}
