package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/queue"
	"github.com/Diyorbek0204/dern-support/internal/repository"
)

// TicketService drives a support request through its workflow:
//
//	pending -> approved | rejected                (manager decides)
//	approved -> awaiting_approval                 (master proposes an estimate)
//	awaiting_approval -> in_progress | pending    (submitter approves or declines)
//	in_progress -> completed                      (assigned master finishes)
//
// Managers may additionally assign a master (forcing approved) and
// override the status with any of the legacy values.
type TicketService struct {
	tickets    TicketStore
	users      UserStore
	components ComponentStore
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewTicketService wires a TicketService. A nil publisher disables events.
func NewTicketService(tickets TicketStore, users UserStore, components ComponentStore, events EventPublisher, logger *slog.Logger) *TicketService {
	if tickets == nil || users == nil || components == nil {
		panic("nil store passed to NewTicketService")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketService{
		tickets:    tickets,
		users:      users,
		components: components,
		events:     events,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitInput holds the user-provided ticket fields.
type SubmitInput struct {
	DeviceModel string
	IssueType   string
	ProblemArea string
	Description string
	Location    string
}

// EstimateInput is a master's proposal.
type EstimateInput struct {
	ComponentID string
	Quantity    int
	Price       int64
	EndDate     time.Time
}

// Submit creates a pending ticket owned by the caller.
func (s *TicketService) Submit(ctx context.Context, caller Caller, in SubmitInput) (*model.SupportRequest, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	deviceModel := strings.TrimSpace(in.DeviceModel)
	if deviceModel == "" {
		return nil, invalid("device_model is required")
	}
	issueType := model.IssueType(strings.ToLower(strings.TrimSpace(in.IssueType)))
	if issueType == "" {
		issueType = model.IssueOther
	}
	if !issueType.Valid() {
		return nil, invalid("issue_type must be one of hardware, software, network, other")
	}
	t := &model.SupportRequest{
		UserID:      caller.ID,
		DeviceModel: deviceModel,
		IssueType:   issueType,
		ProblemArea: strings.TrimSpace(in.ProblemArea),
		Description: strings.TrimSpace(in.Description),
		Status:      model.StatusPending,
		CreatedAt:   s.now(),
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		t.Location = &loc
	}
	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, caller, t, "", model.StatusPending)
	return t, nil
}

// List returns the tickets visible to the caller, newest first: everything
// for managers, the work queue for masters and own tickets for users.
func (s *TicketService) List(ctx context.Context, caller Caller) ([]*model.SupportRequest, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	switch caller.Role {
	case model.RoleManager:
		return s.tickets.ListAll(ctx)
	case model.RoleMaster:
		return s.tickets.ListForMaster(ctx, caller.ID)
	default:
		return s.tickets.ListByOwner(ctx, caller.ID)
	}
}

// Decide records a manager's approval or rejection. It applies regardless
// of the current status, so repeating a decision is harmless.
func (s *TicketService) Decide(ctx context.Context, caller Caller, id string, decision model.Status) (*model.SupportRequest, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return nil, invalid("decision must be approved or rejected")
	}
	return s.transition(ctx, caller, id, nil, decision)
}

// AssignMaster binds a master to the ticket and forces it to approved.
// The returned user is the assigned master.
func (s *TicketService) AssignMaster(ctx context.Context, caller Caller, id, masterID string) (*model.SupportRequest, *model.User, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, nil, err
	}
	masterID = strings.TrimSpace(masterID)
	if masterID == "" {
		return nil, nil, invalid("master_id is required")
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if t.Status == model.StatusCompleted {
		return nil, nil, invalid("completed requests cannot be reassigned")
	}
	master, err := s.users.GetByID(ctx, masterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, invalid("master_id does not reference a user")
		}
		return nil, nil, err
	}
	if master.Role != model.RoleMaster {
		return nil, nil, invalid("assigned user is not a master")
	}
	if err := s.tickets.AssignMaster(ctx, id, masterID, s.now()); err != nil {
		return nil, nil, err
	}
	updated, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, caller, updated, t.Status, updated.Status)
	return updated, master, nil
}

// estimable are the statuses a master may attach or revise an estimate in.
var estimable = []model.Status{model.StatusApproved, model.StatusAwaitingApproval}

// ProposeEstimate attaches a master's component, quantity, price and end
// date and hands the ticket to its submitter for approval. Non-masters are
// rejected before the ticket is read; an unknown ticket is reported before
// the estimate itself is validated.
func (s *TicketService) ProposeEstimate(ctx context.Context, caller Caller, id string, in EstimateInput) (*model.SupportRequest, error) {
	if err := caller.require(model.RoleMaster); err != nil {
		return nil, err
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case in.Quantity <= 0:
		return nil, invalid("quantity must be a positive integer")
	case in.Price < 0:
		return nil, invalid("price must not be negative")
	case in.EndDate.IsZero():
		return nil, invalid("end_date is required")
	}
	if t.AssignedMasterID != nil && *t.AssignedMasterID != caller.ID {
		return nil, denied("request is assigned to another master")
	}
	if !hasStatus(t.Status, estimable) {
		return nil, invalid("estimates can only be proposed for approved requests")
	}
	componentID := strings.TrimSpace(in.ComponentID)
	if componentID != "" {
		if _, err := s.components.GetByID(ctx, componentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("component_id does not reference a component")
			}
			return nil, err
		}
	}
	est := model.Estimate{
		MasterID:    caller.ID,
		ComponentID: componentID,
		Quantity:    in.Quantity,
		Price:       in.Price,
		EndDate:     in.EndDate.UTC(),
	}
	if err := s.tickets.SetEstimate(ctx, id, est, estimable, s.now()); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, caller, updated, t.Status, updated.Status)
	return updated, nil
}

// ResolveEstimate lets the submitter accept or decline the pending
// estimate. The lookup is filtered by owner, so a ticket that belongs to
// someone else is reported as not found.
func (s *TicketService) ResolveEstimate(ctx context.Context, caller Caller, id string, approved bool) (*model.SupportRequest, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	t, err := s.tickets.GetByIDAndOwner(ctx, id, caller.ID)
	if err != nil {
		return nil, err
	}
	if t.Status != model.StatusAwaitingApproval {
		return nil, invalid("request has no estimate awaiting approval")
	}
	now := s.now()
	if approved {
		err = s.tickets.ApproveEstimate(ctx, id, caller.ID, now)
	} else {
		err = s.tickets.RejectEstimate(ctx, id, caller.ID, now)
	}
	if err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, caller, updated, t.Status, updated.Status)
	return updated, nil
}

// CompleteWork marks an in-progress ticket completed. Only the assigned or
// estimating master may do so.
func (s *TicketService) CompleteWork(ctx context.Context, caller Caller, id string) (*model.SupportRequest, error) {
	if err := caller.require(model.RoleMaster); err != nil {
		return nil, err
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAssignee(t, caller.ID) {
		return nil, denied("only the assigned master can complete this request")
	}
	if t.Status != model.StatusInProgress {
		return nil, invalid("only in_progress requests can be completed")
	}
	return s.transition(ctx, caller, id, []model.Status{model.StatusInProgress}, model.StatusCompleted)
}

// SetStatus is the manager's raw override. It accepts any legacy status
// without consulting the transition graph.
func (s *TicketService) SetStatus(ctx context.Context, caller Caller, id string, status model.Status) (*model.SupportRequest, error) {
	if err := caller.require(model.RoleManager); err != nil {
		return nil, err
	}
	if !status.Overridable() {
		return nil, invalid("Invalid status")
	}
	return s.transition(ctx, caller, id, nil, status)
}

// ApplyStatus serves the generic status endpoint. The value is validated
// first, then routed by role: managers decide or override, masters may
// only complete work.
func (s *TicketService) ApplyStatus(ctx context.Context, caller Caller, id string, status model.Status) (*model.SupportRequest, error) {
	if err := caller.require(); err != nil {
		return nil, err
	}
	if !status.Overridable() {
		return nil, invalid("Invalid status")
	}
	switch caller.Role {
	case model.RoleManager:
		if status == model.StatusApproved || status == model.StatusRejected {
			return s.Decide(ctx, caller, id, status)
		}
		return s.SetStatus(ctx, caller, id, status)
	case model.RoleMaster:
		if status == model.StatusCompleted {
			return s.CompleteWork(ctx, caller, id)
		}
	}
	return nil, denied("Permission denied")
}

func (s *TicketService) transition(ctx context.Context, caller Caller, id string, from []model.Status, to model.Status) (*model.SupportRequest, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, id, from, to, s.now()); err != nil {
		return nil, err
	}
	updated, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, caller, updated, t.Status, to)
	return updated, nil
}

// publish reports a transition. Delivery problems are logged only; the
// database write has already happened.
func (s *TicketService) publish(ctx context.Context, caller Caller, t *model.SupportRequest, from, to model.Status) {
	ev := queue.TicketStatusChanged{
		TicketID:   t.ID,
		UserID:     t.UserID,
		ActorID:    caller.ID,
		ActorRole:  string(caller.Role),
		FromStatus: string(from),
		ToStatus:   string(to),
		ChangedAt:  s.now().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.events.PublishTicketStatusChanged(ctx, ev); err != nil {
		s.logger.Warn("publish ticket event failed", "ticket_id", t.ID, "to", to, "err", err)
	}
}

func isAssignee(t *model.SupportRequest, userID string) bool {
	return (t.AssignedMasterID != nil && *t.AssignedMasterID == userID) ||
		(t.MasterID != nil && *t.MasterID == userID)
}

func hasStatus(s model.Status, set []model.Status) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
