package service

import "github.com/Diyorbek0204/dern-support/internal/model"

// Caller is the identity attached to a request by the JWT middleware.
type Caller struct {
	ID    string
	Email string
	Role  model.Role
}

// require fails with ErrUnauthenticated for an anonymous caller and with
// ErrPermissionDenied when the caller holds none of roles. No roles means
// any authenticated caller.
func (c Caller) require(roles ...model.Role) error {
	if c.ID == "" {
		return unauthenticated("Authorization header missing")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if c.Role == r {
			return nil
		}
	}
	return denied("Permission denied")
}
