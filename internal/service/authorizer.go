package service

import "github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/entity"

// Authorizer answers role questions about an actor. Ownership and
// assignment checks stay with the workflow because they need stored state.
type Authorizer interface {
	HasRole(actor entity.Actor, roles ...string) bool
}

type roleAuthorizer struct{}

func NewAuthorizer() Authorizer {
	return &roleAuthorizer{}
}

func (a *roleAuthorizer) HasRole(actor entity.Actor, roles ...string) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
