package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

const componentColumns = "id,title,description,price,in_stock,created_by,created_at,updated_at"

// ComponentRepo encapsulates all database queries related to inventory
// components.
type ComponentRepo struct {
	db *sql.DB
}

// NewComponentRepo constructs a ComponentRepo with the provided DB handle.
func NewComponentRepo(db *sql.DB) *ComponentRepo {
	return &ComponentRepo{db: db}
}

// Create inserts c and populates its generated id.
func (r *ComponentRepo) Create(ctx context.Context, c *model.Component) error {
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO components ("+componentColumns+") VALUES (?,?,?,?,?,?,?,?)",
		c.ID, c.Title, c.Description, c.Price, c.InStock, c.CreatedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetByID fetches a component. It returns ErrComponentNotFound if no row
// is found.
func (r *ComponentRepo) GetByID(ctx context.Context, id string) (*model.Component, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+componentColumns+" FROM components WHERE id = ?", id)
	return scanComponent(row)
}

// List returns all components ordered by title.
func (r *ComponentRepo) List(ctx context.Context) ([]*model.Component, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+componentColumns+" FROM components ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites title, description, price and stock of c.
func (r *ComponentRepo) Update(ctx context.Context, c *model.Component) error {
	const q = `UPDATE components
	           SET title = ?, description = ?, price = ?, in_stock = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Title, c.Description, c.Price, c.InStock, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return expectOne(res, ErrComponentNotFound)
}

// Delete removes a component. Tickets keep their dangling component_id.
func (r *ComponentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrComponentNotFound)
}

func scanComponent(s rowScanner) (*model.Component, error) {
	var (
		c         model.Component
		createdBy sql.NullString
		updatedAt sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.InStock, &createdBy, &c.CreatedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComponentNotFound
		}
		return nil, err
	}
	c.CreatedBy = nullString(createdBy)
	c.UpdatedAt = nullTime(updatedAt)
	return &c, nil
}
