package service

import (
	"context"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/queue"
)

// UserStore is the persistence the services need for accounts.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
}

// TokenStore persists hashed refresh tokens. *repository.TokenRepo
// satisfies it.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// ComponentStore persists inventory. *repository.ComponentRepo satisfies it.
type ComponentStore interface {
	Create(ctx context.Context, c *model.Component) error
	GetByID(ctx context.Context, id string) (*model.Component, error)
	List(ctx context.Context) ([]*model.Component, error)
	Update(ctx context.Context, c *model.Component) error
	Delete(ctx context.Context, id string) error
}

// TicketStore persists support requests. *repository.SupportRequestRepo
// satisfies it. Guarded updates return repository.ErrConflict when the row
// no longer holds one of the expected statuses.
type TicketStore interface {
	Create(ctx context.Context, t *model.SupportRequest) error
	GetByID(ctx context.Context, id string) (*model.SupportRequest, error)
	GetByIDAndOwner(ctx context.Context, id, userID string) (*model.SupportRequest, error)
	ListAll(ctx context.Context) ([]*model.SupportRequest, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.SupportRequest, error)
	ListForMaster(ctx context.Context, masterID string) ([]*model.SupportRequest, error)
	UpdateStatus(ctx context.Context, id string, from []model.Status, to model.Status, at time.Time) error
	AssignMaster(ctx context.Context, id, masterID string, at time.Time) error
	SetEstimate(ctx context.Context, id string, est model.Estimate, from []model.Status, at time.Time) error
	ApproveEstimate(ctx context.Context, id, userID string, at time.Time) error
	RejectEstimate(ctx context.Context, id, userID string, at time.Time) error
}

// EventPublisher delivers workflow events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	PublishTicketStatusChanged(ctx context.Context, ev queue.TicketStatusChanged) error
}
