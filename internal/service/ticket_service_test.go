package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/repository"
	"github.com/Diyorbek0204/dern-support/internal/service"
	"github.com/Diyorbek0204/dern-support/internal/testutils"
)

type ticketFixture struct {
	svc        *service.TicketService
	tickets    *testutils.TicketStore
	users      *testutils.UserStore
	components *testutils.ComponentStore
	events     *testutils.Publisher

	manager, master, otherMaster, owner, stranger service.Caller
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	f := &ticketFixture{
		tickets:    testutils.NewTicketStore(),
		users:      testutils.NewUserStore(),
		components: testutils.NewComponentStore(),
		events:     &testutils.Publisher{},
	}
	f.svc = service.NewTicketService(f.tickets, f.users, f.components, f.events, nil)
	f.manager = f.addUser(t, "admin@example.com", model.RoleManager)
	f.master = f.addUser(t, "master@example.com", model.RoleMaster)
	f.otherMaster = f.addUser(t, "master2@example.com", model.RoleMaster)
	f.owner = f.addUser(t, "user@example.com", model.RoleUser)
	f.stranger = f.addUser(t, "other@example.com", model.RoleUser)
	return f
}

func (f *ticketFixture) addUser(t *testing.T, email string, role model.Role) service.Caller {
	t.Helper()
	u := &model.User{FirstName: "Test", LastName: string(role), Email: email, Role: role, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.users.Create(context.Background(), u))
	return service.Caller{ID: u.ID, Email: u.Email, Role: role}
}

func (f *ticketFixture) submit(t *testing.T) *model.SupportRequest {
	t.Helper()
	tk, err := f.svc.Submit(context.Background(), f.owner, service.SubmitInput{
		DeviceModel: "HP Pavilion",
		IssueType:   "software",
		Description: "blue screen on boot",
		Location:    "Toshkent, Chilonzor",
	})
	require.NoError(t, err)
	return tk
}

// arrange puts a ticket owned by f.owner into the given state.
func (f *ticketFixture) arrange(t *testing.T, status model.Status, mutate func(*model.SupportRequest)) string {
	t.Helper()
	tk := f.submit(t)
	tk.Status = status
	if mutate != nil {
		mutate(tk)
	}
	f.tickets.Put(*tk)
	return tk.ID
}

func (f *ticketFixture) get(t *testing.T, id string) *model.SupportRequest {
	t.Helper()
	tk, err := f.tickets.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tk
}

func ptr[T any](v T) *T { return &v }

var endDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestSubmit(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	tk := f.submit(t)
	assert.NotEmpty(t, tk.ID)
	assert.Equal(t, model.StatusPending, tk.Status)
	assert.Equal(t, f.owner.ID, tk.UserID)
	assert.Equal(t, model.IssueSoftware, tk.IssueType)
	require.NotNil(t, tk.Location)

	ev := f.events.Last()
	assert.Equal(t, tk.ID, ev.TicketID)
	assert.Equal(t, "", ev.FromStatus)
	assert.Equal(t, "pending", ev.ToStatus)

	t.Run("missing device model", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, f.owner, service.SubmitInput{IssueType: "hardware"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("unknown issue type", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, f.owner, service.SubmitInput{DeviceModel: "x", IssueType: "printer"})
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("issue type defaults to other", func(t *testing.T) {
		tk, err := f.svc.Submit(ctx, f.owner, service.SubmitInput{DeviceModel: "x"})
		require.NoError(t, err)
		assert.Equal(t, model.IssueOther, tk.IssueType)
	})
	t.Run("anonymous", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, service.Caller{}, service.SubmitInput{DeviceModel: "x"})
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
	})
}

func TestListScopesByRole(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	pending := f.arrange(t, model.StatusPending, nil)
	approved := f.arrange(t, model.StatusApproved, nil)
	mine := f.arrange(t, model.StatusInProgress, func(tk *model.SupportRequest) { tk.MasterID = ptr(f.master.ID) })
	assigned := f.arrange(t, model.StatusCompleted, func(tk *model.SupportRequest) { tk.AssignedMasterID = ptr(f.master.ID) })
	theirs := f.arrange(t, model.StatusInProgress, func(tk *model.SupportRequest) { tk.MasterID = ptr(f.otherMaster.ID) })

	all, err := f.svc.List(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	forMaster, err := f.svc.List(ctx, f.master)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{approved, mine, assigned}, ids(forMaster))
	assert.NotContains(t, ids(forMaster), pending)
	assert.NotContains(t, ids(forMaster), theirs)

	own, err := f.svc.List(ctx, f.owner)
	require.NoError(t, err)
	assert.Len(t, own, 5)

	none, err := f.svc.List(ctx, f.stranger)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func ids(list []*model.SupportRequest) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.ID
	}
	return out
}

func TestDecide(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	id := f.submit(t).ID

	t.Run("non manager", func(t *testing.T) {
		_, err := f.svc.Decide(ctx, f.master, id, model.StatusApproved)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		assert.Equal(t, model.StatusPending, f.get(t, id).Status)
	})
	t.Run("invalid decision", func(t *testing.T) {
		_, err := f.svc.Decide(ctx, f.manager, id, model.StatusCompleted)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("reject twice is idempotent", func(t *testing.T) {
		tk, err := f.svc.Decide(ctx, f.manager, id, model.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, tk.Status)
		tk, err = f.svc.Decide(ctx, f.manager, id, model.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, tk.Status)
	})
	t.Run("unknown ticket", func(t *testing.T) {
		_, err := f.svc.Decide(ctx, f.manager, "missing", model.StatusApproved)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestAssignMaster(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	t.Run("forces approved and reports the master", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		tk, master, err := f.svc.AssignMaster(ctx, f.manager, id, f.master.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, tk.Status)
		assert.Equal(t, f.master.ID, *tk.AssignedMasterID)
		assert.Equal(t, "Test master", master.FullName())
	})
	t.Run("assignee must be a master", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		_, _, err := f.svc.AssignMaster(ctx, f.manager, id, f.owner.ID)
		assert.ErrorIs(t, err, service.ErrValidation)
		_, _, err = f.svc.AssignMaster(ctx, f.manager, id, "nobody")
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("completed tickets stay completed", func(t *testing.T) {
		id := f.arrange(t, model.StatusCompleted, nil)
		_, _, err := f.svc.AssignMaster(ctx, f.manager, id, f.master.ID)
		assert.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, model.StatusCompleted, f.get(t, id).Status)
	})
	t.Run("managers only", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		_, _, err := f.svc.AssignMaster(ctx, f.master, id, f.master.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestProposeEstimate(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	in := service.EstimateInput{Quantity: 1, Price: 100000, EndDate: endDate}

	t.Run("moves approved to awaiting approval", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, nil)
		tk, err := f.svc.ProposeEstimate(ctx, f.master, id, in)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAwaitingApproval, tk.Status)
		assert.Equal(t, f.master.ID, *tk.MasterID)
		assert.Equal(t, int64(100000), *tk.EstimatedPrice)
		assert.Equal(t, 1, *tk.Quantity)
		assert.True(t, endDate.Equal(*tk.EstimatedEndDate))
		assert.Nil(t, tk.Price)
	})
	t.Run("non master leaves the record unchanged", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, nil)
		before := f.get(t, id)
		for _, c := range []service.Caller{f.manager, f.owner} {
			_, err := f.svc.ProposeEstimate(ctx, c, id, in)
			assert.ErrorIs(t, err, service.ErrPermissionDenied)
		}
		assert.Equal(t, before, f.get(t, id))
	})
	t.Run("pending tickets cannot be estimated", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		_, err := f.svc.ProposeEstimate(ctx, f.master, id, in)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("ticket assigned to another master", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, func(tk *model.SupportRequest) { tk.AssignedMasterID = ptr(f.otherMaster.ID) })
		_, err := f.svc.ProposeEstimate(ctx, f.master, id, in)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
	t.Run("input validation", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, nil)
		for _, bad := range []service.EstimateInput{
			{Quantity: 0, Price: 1, EndDate: endDate},
			{Quantity: 1, Price: -1, EndDate: endDate},
			{Quantity: 1, Price: 1},
			{Quantity: 1, Price: 1, EndDate: endDate, ComponentID: "missing"},
		} {
			_, err := f.svc.ProposeEstimate(ctx, f.master, id, bad)
			assert.ErrorIs(t, err, service.ErrValidation)
		}
	})
	t.Run("unknown ticket wins over a bad estimate", func(t *testing.T) {
		_, err := f.svc.ProposeEstimate(ctx, f.master, "missing", service.EstimateInput{Quantity: 0})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
	t.Run("existing component is recorded", func(t *testing.T) {
		comp := &model.Component{Title: "RAM", Price: 350000, InStock: 10}
		require.NoError(t, f.components.Create(ctx, comp))
		id := f.arrange(t, model.StatusApproved, nil)
		tk, err := f.svc.ProposeEstimate(ctx, f.master, id, service.EstimateInput{
			ComponentID: comp.ID, Quantity: 2, Price: 700000, EndDate: endDate,
		})
		require.NoError(t, err)
		assert.Equal(t, comp.ID, *tk.ComponentID)
	})
}

func TestResolveEstimate(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	awaiting := func(tk *model.SupportRequest) {
		tk.MasterID = ptr(f.master.ID)
		tk.ComponentID = ptr("c-1")
		tk.Quantity = ptr(1)
		tk.EstimatedPrice = ptr(int64(250000))
		tk.EstimatedEndDate = ptr(endDate)
	}

	t.Run("approve copies the estimate", func(t *testing.T) {
		id := f.arrange(t, model.StatusAwaitingApproval, awaiting)
		tk, err := f.svc.ResolveEstimate(ctx, f.owner, id, true)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, tk.Status)
		assert.Equal(t, int64(250000), *tk.Price)
		assert.True(t, endDate.Equal(*tk.EndDate))
	})
	t.Run("decline clears the estimate", func(t *testing.T) {
		id := f.arrange(t, model.StatusAwaitingApproval, awaiting)
		tk, err := f.svc.ResolveEstimate(ctx, f.owner, id, false)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, tk.Status)
		assert.Nil(t, tk.ComponentID)
		assert.Nil(t, tk.EstimatedPrice)
		assert.Nil(t, tk.EstimatedEndDate)
		assert.Nil(t, tk.Quantity)
		assert.Nil(t, tk.MasterID)
	})
	t.Run("non owner sees not found", func(t *testing.T) {
		id := f.arrange(t, model.StatusAwaitingApproval, awaiting)
		_, err := f.svc.ResolveEstimate(ctx, f.stranger, id, true)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Equal(t, model.StatusAwaitingApproval, f.get(t, id).Status)
	})
	t.Run("nothing to approve", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, nil)
		_, err := f.svc.ResolveEstimate(ctx, f.owner, id, true)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestCompleteWork(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	estimatedBy := func(id string) func(*model.SupportRequest) {
		return func(tk *model.SupportRequest) { tk.MasterID = ptr(id) }
	}

	t.Run("estimating master completes", func(t *testing.T) {
		id := f.arrange(t, model.StatusInProgress, estimatedBy(f.master.ID))
		tk, err := f.svc.CompleteWork(ctx, f.master, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, tk.Status)
	})
	t.Run("other master is denied", func(t *testing.T) {
		id := f.arrange(t, model.StatusInProgress, estimatedBy(f.master.ID))
		_, err := f.svc.CompleteWork(ctx, f.otherMaster, id)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
	t.Run("must be in progress", func(t *testing.T) {
		id := f.arrange(t, model.StatusApproved, estimatedBy(f.master.ID))
		_, err := f.svc.CompleteWork(ctx, f.master, id)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
}

func TestApplyStatus(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	t.Run("manager override", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		tk, err := f.svc.ApplyStatus(ctx, f.manager, id, model.StatusChecked)
		require.NoError(t, err)
		assert.Equal(t, model.StatusChecked, tk.Status)
	})
	t.Run("manager decision", func(t *testing.T) {
		id := f.arrange(t, model.StatusChecked, nil)
		tk, err := f.svc.ApplyStatus(ctx, f.manager, id, model.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, tk.Status)
	})
	t.Run("unknown value", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		_, err := f.svc.ApplyStatus(ctx, f.manager, id, "archived")
		assert.ErrorIs(t, err, service.ErrValidation)
		_, err = f.svc.ApplyStatus(ctx, f.manager, id, model.StatusAwaitingApproval)
		assert.ErrorIs(t, err, service.ErrValidation)
	})
	t.Run("master may only complete", func(t *testing.T) {
		id := f.arrange(t, model.StatusInProgress, func(tk *model.SupportRequest) { tk.AssignedMasterID = ptr(f.master.ID) })
		_, err := f.svc.ApplyStatus(ctx, f.master, id, model.StatusApproved)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
		tk, err := f.svc.ApplyStatus(ctx, f.master, id, model.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, tk.Status)
	})
	t.Run("users are denied", func(t *testing.T) {
		id := f.arrange(t, model.StatusPending, nil)
		_, err := f.svc.ApplyStatus(ctx, f.owner, id, model.StatusCompleted)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	f := newTicketFixture(t)
	f.events.Err = errors.New("broker down")

	tk := f.submit(t)
	got, err := f.svc.Decide(context.Background(), f.manager, tk.ID, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, got.Status)
}

func TestFullLifecycle(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	tk := f.submit(t)
	_, err := f.svc.Decide(ctx, f.manager, tk.ID, model.StatusApproved)
	require.NoError(t, err)
	_, _, err = f.svc.AssignMaster(ctx, f.manager, tk.ID, f.master.ID)
	require.NoError(t, err)
	_, err = f.svc.ProposeEstimate(ctx, f.master, tk.ID, service.EstimateInput{Quantity: 1, Price: 100000, EndDate: endDate})
	require.NoError(t, err)
	_, err = f.svc.ResolveEstimate(ctx, f.owner, tk.ID, true)
	require.NoError(t, err)
	done, err := f.svc.CompleteWork(ctx, f.master, tk.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, int64(100000), *done.Price)
	assert.True(t, done.Status.Valid())

	var path []string
	for _, ev := range f.events.Events {
		path = append(path, ev.ToStatus)
	}
	assert.Equal(t, []string{"pending", "approved", "approved", "awaiting_approval", "in_progress", "completed"}, path)
	assert.Equal(t, "master", f.events.Last().ActorRole)
}
