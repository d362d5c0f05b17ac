package entity

import "github.com/google/uuid"

// Actor is the authenticated caller of a workflow operation, as supplied by
// the identity provider.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
