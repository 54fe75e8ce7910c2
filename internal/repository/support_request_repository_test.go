package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var ticketCols = []string{"id", "user_id", "device_model", "issue_type", "problem_area", "description",
	"location", "status", "assigned_master_id", "master_id", "component_id", "quantity",
	"estimated_price", "estimated_end_date", "price", "end_date", "created_at", "updated_at"}

func TestTicketCreateAssignsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSupportRequestRepo(db)
	loc := "Toshkent"

	mock.ExpectExec(`INSERT INTO support_requests`).
		WithArgs(sqlmock.AnyArg(), "u1", "Dell Inspiron 15", "hardware", "Ekran", "black screen",
			&loc, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tk := &model.SupportRequest{
		UserID: "u1", DeviceModel: "Dell Inspiron 15", IssueType: model.IssueHardware,
		ProblemArea: "Ekran", Description: "black screen", Location: &loc, Status: model.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), tk))
	assert.Len(t, tk.ID, 36)
	assert.False(t, tk.CreatedAt.IsZero())
}

func TestTicketGetByIDScansNullableColumns(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSupportRequestRepo(db)
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM support_requests WHERE id = \?`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(ticketCols).AddRow(
			"t1", "u1", "HP", "software", "", "", nil, "in_progress", nil, "m1", nil, 1,
			250000, end, 250000, end, created, nil))

	tk, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, tk.Status)
	assert.Nil(t, tk.Location)
	assert.Nil(t, tk.AssignedMasterID)
	assert.Equal(t, "m1", *tk.MasterID)
	assert.Equal(t, 1, *tk.Quantity)
	assert.Equal(t, int64(250000), *tk.Price)
	assert.True(t, end.Equal(*tk.EndDate))
	assert.Nil(t, tk.UpdatedAt)
}

func TestTicketGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSupportRequestRepo(db)

	mock.ExpectQuery(`FROM support_requests WHERE id = \? AND user_id = \?`).
		WithArgs("t1", "u2").
		WillReturnRows(sqlmock.NewRows(ticketCols))

	_, err := repo.GetByIDAndOwner(context.Background(), "t1", "u2")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTicketListForMaster(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSupportRequestRepo(db)

	mock.ExpectQuery(`WHERE \(status = \? AND master_id = \?\) OR status = \? OR assigned_master_id = \?`).
		WithArgs("in_progress", "m1", "approved", "m1").
		WillReturnRows(sqlmock.NewRows(ticketCols).
			AddRow("t1", "u1", "HP", "other", "", "", nil, "approved", nil, nil, nil, nil, nil, nil, nil, nil, time.Now(), nil))

	list, err := repo.ListForMaster(context.Background(), "m1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0].ID)
}

func TestTicketUpdateStatus(t *testing.T) {
	at := time.Now().UTC()

	t.Run("unguarded miss is not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`UPDATE support_requests SET status = \?, updated_at = \? WHERE id = \?$`).
			WithArgs("rejected", at, "t1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewSupportRequestRepo(db).UpdateStatus(context.Background(), "t1", nil, model.StatusRejected, at)
		assert.ErrorIs(t, err, ErrTicketNotFound)
	})
	t.Run("guarded miss is a conflict", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`WHERE id = \? AND status IN \(\?\)`).
			WithArgs("completed", at, "t1", "in_progress").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewSupportRequestRepo(db).UpdateStatus(context.Background(), "t1",
			[]model.Status{model.StatusInProgress}, model.StatusCompleted, at)
		assert.ErrorIs(t, err, ErrConflict)
	})
	t.Run("guard with several statuses", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`AND status IN \(\?, \?\)`).
			WithArgs("pending", at, "t1", "approved", "awaiting_approval").
			WillReturnResult(sqlmock.NewResult(0, 1))
		err := NewSupportRequestRepo(db).UpdateStatus(context.Background(), "t1",
			[]model.Status{model.StatusApproved, model.StatusAwaitingApproval}, model.StatusPending, at)
		assert.NoError(t, err)
	})
}

func TestTicketEstimateFlow(t *testing.T) {
	at := time.Now().UTC()
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("set estimate without component", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`SET component_id = \?, quantity = \?, estimated_price = \?, estimated_end_date = \?`).
			WithArgs(nil, 1, int64(100000), end, "m1", "awaiting_approval", at, "t1", "approved").
			WillReturnResult(sqlmock.NewResult(0, 1))
		err := NewSupportRequestRepo(db).SetEstimate(context.Background(), "t1",
			model.Estimate{MasterID: "m1", Quantity: 1, Price: 100000, EndDate: end},
			[]model.Status{model.StatusApproved}, at)
		assert.NoError(t, err)
	})
	t.Run("approve copies estimate columns", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`SET status = \?, price = estimated_price, end_date = estimated_end_date`).
			WithArgs("in_progress", at, "t1", "u1", "awaiting_approval").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, NewSupportRequestRepo(db).ApproveEstimate(context.Background(), "t1", "u1", at))
	})
	rejectSQL := `SET status = \?, component_id = NULL, quantity = NULL, estimated_price = NULL,\s+` +
		`estimated_end_date = NULL, master_id = NULL, updated_at = \?\s+` +
		`WHERE id = \? AND user_id = \? AND status = \?`
	t.Run("reject clears estimate and master", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(rejectSQL).
			WithArgs("pending", at, "t1", "u1", "awaiting_approval").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, NewSupportRequestRepo(db).RejectEstimate(context.Background(), "t1", "u1", at))
	})
	t.Run("reject outside awaiting approval conflicts", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(rejectSQL).
			WithArgs("pending", at, "t1", "u1", "awaiting_approval").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewSupportRequestRepo(db).RejectEstimate(context.Background(), "t1", "u1", at)
		assert.ErrorIs(t, err, ErrConflict)
	})
	t.Run("assign skips completed tickets", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`SET assigned_master_id = \?, status = \?, updated_at = \?\s+WHERE id = \? AND status <> \?`).
			WithArgs("m1", "approved", at, "t1", "completed").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := NewSupportRequestRepo(db).AssignMaster(context.Background(), "t1", "m1", at)
		assert.ErrorIs(t, err, ErrConflict)
	})
}
