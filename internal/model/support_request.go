package model

import "time"

// Status is the workflow state of a support request.
type Status string

const (
	StatusPending          Status = "pending"
	StatusChecked          Status = "checked" // accepted by the raw override, never assigned by a transition
	StatusApproved         Status = "approved"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusInProgress       Status = "in_progress"
	StatusRejected         Status = "rejected"
	StatusCompleted        Status = "completed"
)

// overridable lists the statuses a manager may set through the raw status
// endpoint. awaiting_approval is reachable only by proposing an estimate.
var overridable = map[Status]bool{
	StatusPending:    true,
	StatusChecked:    true,
	StatusApproved:   true,
	StatusInProgress: true,
	StatusRejected:   true,
	StatusCompleted:  true,
}

// Valid reports whether s is any recognized workflow status.
func (s Status) Valid() bool {
	return overridable[s] || s == StatusAwaitingApproval
}

// Overridable reports whether s may be set through the raw status override.
func (s Status) Overridable() bool { return overridable[s] }

// IssueType classifies the reported problem.
type IssueType string

const (
	IssueHardware IssueType = "hardware"
	IssueSoftware IssueType = "software"
	IssueNetwork  IssueType = "network"
	IssueOther    IssueType = "other"
)

// IssueTypes is the fixed enumeration in display order.
var IssueTypes = []IssueType{IssueHardware, IssueSoftware, IssueNetwork, IssueOther}

// Valid reports whether t belongs to the enumeration.
func (t IssueType) Valid() bool {
	switch t {
	case IssueHardware, IssueSoftware, IssueNetwork, IssueOther:
		return true
	}
	return false
}

// SupportRequest mirrors a row of the `support_requests` table. Optional
// columns are pointers so that "unset" survives a round trip.
//
// Price and EndDate are written only by copying EstimatedPrice and
// EstimatedEndDate when the submitter approves an estimate.
type SupportRequest struct {
	ID               string     // support_requests.id (uuid)
	UserID           string     // support_requests.user_id (submitter)
	DeviceModel      string     // support_requests.device_model
	IssueType        IssueType  // support_requests.issue_type
	ProblemArea      string     // support_requests.problem_area
	Description      string     // support_requests.description
	Location         *string    // support_requests.location
	Status           Status     // support_requests.status
	AssignedMasterID *string    // support_requests.assigned_master_id
	MasterID         *string    // support_requests.master_id (estimating master)
	ComponentID      *string    // support_requests.component_id
	Quantity         *int       // support_requests.quantity
	EstimatedPrice   *int64     // support_requests.estimated_price
	EstimatedEndDate *time.Time // support_requests.estimated_end_date
	Price            *int64     // support_requests.price
	EndDate          *time.Time // support_requests.end_date
	CreatedAt        time.Time  // support_requests.created_at
	UpdatedAt        *time.Time // support_requests.updated_at
}

// Estimate is a master's proposal attached to a support request.
type Estimate struct {
	MasterID    string
	ComponentID string // empty when no component is needed
	Quantity    int
	Price       int64
	EndDate     time.Time
}
