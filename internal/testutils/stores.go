// Package testutils provides in-memory implementations of the service
// stores for unit and handler tests.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/queue"
	"github.com/Diyorbek0204/dern-support/internal/repository"
)

// UserStore mirrors repository.UserRepo.
type UserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewUserStore() *UserStore { return &UserStore{users: map[string]model.User{}} }

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, v := range s.users {
		if v.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = uuid.NewString()
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *UserStore) List(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *UserStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *UserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, v := range s.users {
		if id != u.ID && v.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// TokenStore mirrors repository.TokenRepo.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func NewTokenStore() *TokenStore { return &TokenStore{tokens: map[string]*model.RefreshToken{}} }

func (s *TokenStore) StoreRefresh(_ context.Context, userID, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = &model.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp, CreatedAt: time.Now().UTC()}
	return nil
}

func (s *TokenStore) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || !t.ExpiresAt.After(time.Now().UTC()) {
		return "", repository.ErrTokenNotFound
	}
	return t.UserID, nil
}

func (s *TokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

// Active counts unrevoked tokens of userID.
func (s *TokenStore) Active(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

// ComponentStore mirrors repository.ComponentRepo.
type ComponentStore struct {
	mu    sync.Mutex
	items map[string]model.Component
}

func NewComponentStore() *ComponentStore { return &ComponentStore{items: map[string]model.Component{}} }

func (s *ComponentStore) Create(_ context.Context, c *model.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	s.items[c.ID] = *c
	return nil
}

func (s *ComponentStore) GetByID(_ context.Context, id string) (*model.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrComponentNotFound
	}
	return &c, nil
}

func (s *ComponentStore) List(_ context.Context) ([]*model.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Component, 0, len(s.items))
	for _, c := range s.items {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ComponentStore) Update(_ context.Context, c *model.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; !ok {
		return repository.ErrComponentNotFound
	}
	s.items[c.ID] = *c
	return nil
}

func (s *ComponentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrComponentNotFound
	}
	delete(s.items, id)
	return nil
}

// TicketStore mirrors repository.SupportRequestRepo, including its guarded
// updates.
type TicketStore struct {
	mu      sync.Mutex
	tickets map[string]model.SupportRequest
}

func NewTicketStore() *TicketStore { return &TicketStore{tickets: map[string]model.SupportRequest{}} }

func (s *TicketStore) Create(_ context.Context, t *model.SupportRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.tickets[t.ID] = *t
	return nil
}

// Put stores t as is, keeping its id. Tests use it to arrange state.
func (s *TicketStore) Put(t model.SupportRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = t
}

func (s *TicketStore) GetByID(_ context.Context, id string) (*model.SupportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	return &t, nil
}

func (s *TicketStore) GetByIDAndOwner(_ context.Context, id, userID string) (*model.SupportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTicketNotFound
	}
	return &t, nil
}

func (s *TicketStore) ListAll(_ context.Context) ([]*model.SupportRequest, error) {
	return s.filter(func(model.SupportRequest) bool { return true }), nil
}

func (s *TicketStore) ListByOwner(_ context.Context, userID string) ([]*model.SupportRequest, error) {
	return s.filter(func(t model.SupportRequest) bool { return t.UserID == userID }), nil
}

func (s *TicketStore) ListForMaster(_ context.Context, masterID string) ([]*model.SupportRequest, error) {
	return s.filter(func(t model.SupportRequest) bool {
		return (t.Status == model.StatusInProgress && eq(t.MasterID, masterID)) ||
			t.Status == model.StatusApproved ||
			eq(t.AssignedMasterID, masterID)
	}), nil
}

func (s *TicketStore) UpdateStatus(_ context.Context, id string, from []model.Status, to model.Status, at time.Time) error {
	return s.mutate(id, from, nil, func(t *model.SupportRequest) {
		t.Status = to
		t.UpdatedAt = &at
	})
}

func (s *TicketStore) AssignMaster(_ context.Context, id, masterID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok || t.Status == model.StatusCompleted {
		return repository.ErrConflict
	}
	t.AssignedMasterID = &masterID
	t.Status = model.StatusApproved
	t.UpdatedAt = &at
	s.tickets[id] = t
	return nil
}

func (s *TicketStore) SetEstimate(_ context.Context, id string, est model.Estimate, from []model.Status, at time.Time) error {
	return s.mutate(id, from, nil, func(t *model.SupportRequest) {
		master, qty, price, end := est.MasterID, est.Quantity, est.Price, est.EndDate
		t.MasterID = &master
		t.ComponentID = nil
		if est.ComponentID != "" {
			comp := est.ComponentID
			t.ComponentID = &comp
		}
		t.Quantity = &qty
		t.EstimatedPrice = &price
		t.EstimatedEndDate = &end
		t.Status = model.StatusAwaitingApproval
		t.UpdatedAt = &at
	})
}

func (s *TicketStore) ApproveEstimate(_ context.Context, id, userID string, at time.Time) error {
	return s.mutate(id, []model.Status{model.StatusAwaitingApproval}, &userID, func(t *model.SupportRequest) {
		t.Status = model.StatusInProgress
		t.Price = t.EstimatedPrice
		t.EndDate = t.EstimatedEndDate
		t.UpdatedAt = &at
	})
}

func (s *TicketStore) RejectEstimate(_ context.Context, id, userID string, at time.Time) error {
	return s.mutate(id, []model.Status{model.StatusAwaitingApproval}, &userID, func(t *model.SupportRequest) {
		t.Status = model.StatusPending
		t.MasterID = nil
		t.ComponentID = nil
		t.Quantity = nil
		t.EstimatedPrice = nil
		t.EstimatedEndDate = nil
		t.UpdatedAt = &at
	})
}

func (s *TicketStore) mutate(id string, from []model.Status, owner *string, f func(*model.SupportRequest)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		if len(from) == 0 {
			return repository.ErrTicketNotFound
		}
		return repository.ErrConflict
	}
	if owner != nil && t.UserID != *owner {
		return repository.ErrConflict
	}
	if len(from) > 0 {
		match := false
		for _, st := range from {
			if t.Status == st {
				match = true
			}
		}
		if !match {
			return repository.ErrConflict
		}
	}
	f(&t)
	s.tickets[id] = t
	return nil
}

func (s *TicketStore) filter(keep func(model.SupportRequest) bool) []*model.SupportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.SupportRequest{}
	for _, t := range s.tickets {
		if keep(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func eq(p *string, v string) bool { return p != nil && *p == v }

// Publisher records every published event.
type Publisher struct {
	mu     sync.Mutex
	Events []queue.TicketStatusChanged
	Err    error
}

func (p *Publisher) PublishTicketStatusChanged(_ context.Context, ev queue.TicketStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
	return p.Err
}

// Last returns the most recent event, or the zero value.
func (p *Publisher) Last() queue.TicketStatusChanged {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Events) == 0 {
		return queue.TicketStatusChanged{}
	}
	return p.Events[len(p.Events)-1]
}
