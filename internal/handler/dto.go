package handler

import (
	"time"

	"github.com/Diyorbek0204/dern-support/internal/model"
)

type userResp struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	PersonType  string     `json:"person_type"`
	CompanyName *string    `json:"company_name"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toUserResp(u *model.User) userResp {
	return userResp{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		PersonType:  string(u.PersonType),
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type componentResp struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	InStock     int        `json:"in_stock"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toComponentResp(c *model.Component) componentResp {
	return componentResp{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		InStock:     c.InStock,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type ticketResp struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	DeviceModel      string     `json:"device_model"`
	IssueType        string     `json:"issue_type"`
	ProblemArea      string     `json:"problem_area"`
	Description      string     `json:"description"`
	Location         *string    `json:"location,omitempty"`
	Status           string     `json:"status"`
	AssignedMasterID *string    `json:"assigned_master_id,omitempty"`
	MasterID         *string    `json:"master_id,omitempty"`
	ComponentID      *string    `json:"component_id,omitempty"`
	Quantity         *int       `json:"quantity,omitempty"`
	EstimatedPrice   *int64     `json:"estimated_price,omitempty"`
	EstimatedEndDate *time.Time `json:"estimated_end_date,omitempty"`
	Price            *int64     `json:"price,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func toTicketResp(t *model.SupportRequest) ticketResp {
	return ticketResp{
		ID:               t.ID,
		UserID:           t.UserID,
		DeviceModel:      t.DeviceModel,
		IssueType:        string(t.IssueType),
		ProblemArea:      t.ProblemArea,
		Description:      t.Description,
		Location:         t.Location,
		Status:           string(t.Status),
		AssignedMasterID: t.AssignedMasterID,
		MasterID:         t.MasterID,
		ComponentID:      t.ComponentID,
		Quantity:         t.Quantity,
		EstimatedPrice:   t.EstimatedPrice,
		EstimatedEndDate: t.EstimatedEndDate,
		Price:            t.Price,
		EndDate:          t.EndDate,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
