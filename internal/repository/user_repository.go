package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

const userColumns = "id,first_name,last_name,email,phone,password_hash,role,person_type,company_name,created_by,created_at,updated_at"

// UserRepo persists accounts in the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u, assigning a fresh id. The email is normalized before
// the insert; a duplicate yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		string(u.PersonType), u.CompanyName, u.CreatedBy, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns the number of accounts.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Update overwrites the mutable columns of u. It returns ErrUserNotFound
// when no row carries u.ID and ErrEmailExists when the new email is taken.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	u.Email = normalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET first_name=?, last_name=?, email=?, phone=?, password_hash=?, role=?,
		     person_type=?, company_name=?, updated_at=?
		 WHERE id=?`,
		u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		string(u.PersonType), u.CompanyName, u.UpdatedAt, u.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return expectOne(res, ErrUserNotFound)
}

// Delete removes the account with the given id.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrUserNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u                  model.User
		role, personType   string
		company, createdBy sql.NullString
		updatedAt          sql.NullTime
	)
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.PasswordHash,
		&role, &personType, &company, &createdBy, &u.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	u.PersonType = model.PersonType(personType)
	u.CompanyName = nullString(company)
	u.CreatedBy = nullString(createdBy)
	u.UpdatedAt = nullTime(updatedAt)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// expectOne converts a zero RowsAffected into notFound. The connection is
// opened with clientFoundRows, so a matched but unchanged row still counts.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
