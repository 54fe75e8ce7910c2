package service

import (
	"context"
	"strings"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

// ComponentService manages the spare-parts inventory. Reads are open to
// any authenticated caller; writes are reserved to managers.
type ComponentService struct {
	components ComponentStore
}

func NewComponentService(components ComponentStore) *ComponentService {
	return &ComponentService{components: components}
}

// ComponentPatch lists the fields to change; nil leaves a field untouched.
type ComponentPatch struct {
	Title       *string
	Description *string
	Price       *int64
	InStock     *int
}

func (s *ComponentService) List(ctx context.Context, caller Caller) ([]*model.Component, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	return s.components.List(ctx)
}

func (s *ComponentService) Get(ctx context.Context, caller Caller, id string) (*model.Component, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	return s.components.GetByID(ctx, id)
}

// Create adds a component after validating it.
func (s *ComponentService) Create(ctx context.Context, caller Caller, title, description string, price int64, inStock int) (*model.Component, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	createdBy := caller.ID
	c := &model.Component{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Price:       price,
		InStock:     inStock,
		CreatedBy:   &createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := validateComponent(c); err != nil {
		return nil, err
	}
	if err := s.components.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies p to the component with the given id.
func (s *ComponentService) Update(ctx context.Context, caller Caller, id string, p ComponentPatch) (*model.Component, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	c, err := s.components.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.InStock != nil {
		c.InStock = *p.InStock
	}
	if err := validateComponent(c); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.UpdatedAt = &now
	if err := s.components.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ComponentService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := caller.require(model.RoleManager); err != nil {
		return err
	}
	return s.components.Delete(ctx, id)
}

func validateComponent(c *model.Component) error {
	switch {
	case c.Title == "":
		return invalid("title is required")
	case c.Price < 0:
		return invalid("price must not be negative")
	case c.InStock < 0:
		return invalid("in_stock must not be negative")
	}
	return nil
}
