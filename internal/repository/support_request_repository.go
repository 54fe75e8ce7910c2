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

const ticketColumns = `id, user_id, device_model, issue_type, problem_area, description, location, status,
	assigned_master_id, master_id, component_id, quantity, estimated_price, estimated_end_date,
	price, end_date, created_at, updated_at`

// SupportRequestRepo stores repair tickets. Every workflow mutation is a
// single UPDATE keyed by id; state guards are part of the WHERE clause so a
// concurrent change surfaces as ErrConflict instead of being overwritten.
type SupportRequestRepo struct {
	db *sql.DB
}

// NewSupportRequestRepo returns a SupportRequestRepo bound to the given database.
func NewSupportRequestRepo(db *sql.DB) *SupportRequestRepo { return &SupportRequestRepo{db: db} }

// Create inserts t and populates its generated id.
func (r *SupportRequestRepo) Create(ctx context.Context, t *model.SupportRequest) error {
	t.ID = uuid.NewString()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO support_requests
		(id, user_id, device_model, issue_type, problem_area, description, location, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, t.ID, t.UserID, t.DeviceModel, string(t.IssueType),
		t.ProblemArea, t.Description, t.Location, string(t.Status), t.CreatedAt)
	return err
}

// GetByID fetches a ticket regardless of owner.
func (r *SupportRequestRepo) GetByID(ctx context.Context, id string) (*model.SupportRequest, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM support_requests WHERE id = ?", id)
	return scanTicket(row)
}

// GetByIDAndOwner fetches a ticket only if it was submitted by userID.
// Absent and foreign tickets both yield ErrTicketNotFound.
func (r *SupportRequestRepo) GetByIDAndOwner(ctx context.Context, id, userID string) (*model.SupportRequest, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM support_requests WHERE id = ? AND user_id = ?", id, userID)
	return scanTicket(row)
}

// ListAll returns every ticket, newest first.
func (r *SupportRequestRepo) ListAll(ctx context.Context) ([]*model.SupportRequest, error) {
	return r.list(ctx, "SELECT "+ticketColumns+" FROM support_requests ORDER BY created_at DESC")
}

// ListByOwner returns the tickets submitted by userID, newest first.
func (r *SupportRequestRepo) ListByOwner(ctx context.Context, userID string) ([]*model.SupportRequest, error) {
	return r.list(ctx,
		"SELECT "+ticketColumns+" FROM support_requests WHERE user_id = ? ORDER BY created_at DESC", userID)
}

// ListForMaster returns the master's work queue: tickets it is working on,
// tickets assigned to it and every approved ticket awaiting an estimate.
func (r *SupportRequestRepo) ListForMaster(ctx context.Context, masterID string) ([]*model.SupportRequest, error) {
	const where = ` WHERE (status = ? AND master_id = ?) OR status = ? OR assigned_master_id = ?
		ORDER BY created_at DESC`
	return r.list(ctx, "SELECT "+ticketColumns+" FROM support_requests"+where,
		string(model.StatusInProgress), masterID, string(model.StatusApproved), masterID)
}

// UpdateStatus sets the status. When from is non-empty the row must
// currently hold one of those statuses, otherwise ErrConflict is returned.
func (r *SupportRequestRepo) UpdateStatus(ctx context.Context, id string, from []model.Status, to model.Status, at time.Time) error {
	guard, guardArgs := statusGuard(from)
	args := append([]any{string(to), at, id}, guardArgs...)
	res, err := r.db.ExecContext(ctx,
		"UPDATE support_requests SET status = ?, updated_at = ? WHERE id = ?"+guard, args...)
	if err != nil {
		return err
	}
	return expectOne(res, missOutcome(from))
}

// AssignMaster binds masterID and forces the status to approved. Completed
// tickets are left untouched and reported as ErrConflict.
func (r *SupportRequestRepo) AssignMaster(ctx context.Context, id, masterID string, at time.Time) error {
	const q = `UPDATE support_requests
	           SET assigned_master_id = ?, status = ?, updated_at = ?
	           WHERE id = ? AND status <> ?`
	res, err := r.db.ExecContext(ctx, q, masterID, string(model.StatusApproved), at, id, string(model.StatusCompleted))
	if err != nil {
		return err
	}
	return expectOne(res, ErrConflict)
}

// SetEstimate attaches a master's proposal and moves the ticket to
// awaiting_approval. The ticket must currently hold one of from.
func (r *SupportRequestRepo) SetEstimate(ctx context.Context, id string, est model.Estimate, from []model.Status, at time.Time) error {
	var componentID any
	if est.ComponentID != "" {
		componentID = est.ComponentID
	}
	guard, guardArgs := statusGuard(from)
	args := append([]any{componentID, est.Quantity, est.Price, est.EndDate, est.MasterID,
		string(model.StatusAwaitingApproval), at, id}, guardArgs...)
	res, err := r.db.ExecContext(ctx,
		`UPDATE support_requests
		 SET component_id = ?, quantity = ?, estimated_price = ?, estimated_end_date = ?,
		     master_id = ?, status = ?, updated_at = ?
		 WHERE id = ?`+guard, args...)
	if err != nil {
		return err
	}
	return expectOne(res, missOutcome(from))
}

// ApproveEstimate copies the estimate into the finalized price and end
// date and starts the work. The copy happens inside the statement so the
// finalized values are exactly what the submitter saw.
func (r *SupportRequestRepo) ApproveEstimate(ctx context.Context, id, userID string, at time.Time) error {
	const q = `UPDATE support_requests
	           SET status = ?, price = estimated_price, end_date = estimated_end_date, updated_at = ?
	           WHERE id = ? AND user_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(model.StatusInProgress), at, id, userID,
		string(model.StatusAwaitingApproval))
	if err != nil {
		return err
	}
	return expectOne(res, ErrConflict)
}

// RejectEstimate discards the estimate and returns the ticket to pending.
func (r *SupportRequestRepo) RejectEstimate(ctx context.Context, id, userID string, at time.Time) error {
	const q = `UPDATE support_requests
	           SET status = ?, component_id = NULL, quantity = NULL, estimated_price = NULL,
	               estimated_end_date = NULL, master_id = NULL, updated_at = ?
	           WHERE id = ? AND user_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(model.StatusPending), at, id, userID,
		string(model.StatusAwaitingApproval))
	if err != nil {
		return err
	}
	return expectOne(res, ErrConflict)
}

func (r *SupportRequestRepo) list(ctx context.Context, q string, args ...any) ([]*model.SupportRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.SupportRequest
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func statusGuard(from []model.Status) (string, []any) {
	if len(from) == 0 {
		return "", nil
	}
	args := make([]any, len(from))
	for i, s := range from {
		args[i] = string(s)
	}
	return " AND status IN (?" + strings.Repeat(", ?", len(from)-1) + ")", args
}

func missOutcome(from []model.Status) error {
	if len(from) == 0 {
		return ErrTicketNotFound
	}
	return ErrConflict
}

func scanTicket(s rowScanner) (*model.SupportRequest, error) {
	var (
		t                                       model.SupportRequest
		issueType, status                       string
		location, assigned, master, componentID sql.NullString
		quantity, estPrice, price               sql.NullInt64
		estEnd, endDate, updatedAt              sql.NullTime
	)
	err := s.Scan(&t.ID, &t.UserID, &t.DeviceModel, &issueType, &t.ProblemArea, &t.Description,
		&location, &status, &assigned, &master, &componentID, &quantity, &estPrice, &estEnd,
		&price, &endDate, &t.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	t.IssueType = model.IssueType(issueType)
	t.Status = model.Status(status)
	t.Location = nullString(location)
	t.AssignedMasterID = nullString(assigned)
	t.MasterID = nullString(master)
	t.ComponentID = nullString(componentID)
	if quantity.Valid {
		q := int(quantity.Int64)
		t.Quantity = &q
	}
	t.EstimatedPrice = nullInt64(estPrice)
	t.EstimatedEndDate = nullTime(estEnd)
	t.Price = nullInt64(price)
	t.EndDate = nullTime(endDate)
	t.UpdatedAt = nullTime(updatedAt)
	return &t, nil
}
