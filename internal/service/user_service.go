package service

import (
	"context"
	"strings"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/utils"
)

// DefaultPassword is assigned to manager-created accounts that omit one and
// to seeded accounts.
const DefaultPassword = "password123"

// UserService manages profiles and the manager's user administration.
type UserService struct {
	users      UserStore
	bcryptCost int
}

func NewUserService(users UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, caller Caller) (*model.User, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, caller.ID)
}

// UpdateSelf applies profile changes to the caller's account. The role
// cannot be changed here.
func (s *UserService) UpdateSelf(ctx context.Context, caller Caller, in ProfileInput) (*model.User, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	return s.update(ctx, caller.ID, in, "")
}

// List returns every account, newest first. Managers only.
func (s *UserService) List(ctx context.Context, caller Caller) ([]*model.User, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Create adds an account with any role. A missing password falls back to
// DefaultPassword and a missing role to user.
func (s *UserService) Create(ctx context.Context, caller Caller, in ProfileInput, role string) (*model.User, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, invalid("email is required")
	}
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	createdBy := caller.ID
	u := &model.User{
		Role:       r,
		PersonType: model.PersonIndividual,
		CreatedBy:  &createdBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := applyProfile(u, in); err != nil {
		return nil, err
	}
	password := in.Password
	if password == "" {
		password = DefaultPassword
	}
	if u.PasswordHash, err = utils.HashPassword(password, s.bcryptCost); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update edits another account, including its role. Managers only.
func (s *UserService) Update(ctx context.Context, caller Caller, id string, in ProfileInput, role string) (*model.User, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	if strings.TrimSpace(role) != "" {
		if _, err := parseRole(role); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, id, in, role)
}

// Delete removes an account. Managers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := caller.require(model.RoleManager); err != nil {
		return err
	}
	if id == caller.ID {
		return invalid("managers cannot delete their own account")
	}
	return s.users.Delete(ctx, id)
}

func (s *UserService) update(ctx context.Context, id string, in ProfileInput, role string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProfile(u, in); err != nil {
		return nil, err
	}
	if role != "" {
		u.Role = model.Role(strings.ToLower(strings.TrimSpace(role)))
	}
	if in.Password != "" {
		if u.PasswordHash, err = utils.HashPassword(in.Password, s.bcryptCost); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func parseRole(role string) (model.Role, error) {
	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if r == "" {
		return model.RoleUser, nil
	}
	if !r.Valid() {
		return "", invalid("role must be user, master or manager")
	}
	return r, nil
}
