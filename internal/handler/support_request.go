package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/model"
	"github.com/Diyorbek0204/dern-support/internal/service"
)

// TicketHandler exposes the support request workflow.
type TicketHandler struct {
	Tickets *service.TicketService
}

func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	return &TicketHandler{Tickets: tickets}
}

type submitReq struct {
	DeviceModel string `json:"device_model"`
	IssueType   string `json:"issue_type"`
	ProblemArea string `json:"problem_area"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type approveReq struct {
	Approved *bool `json:"approved"`
}

type assignReq struct {
	MasterID string `json:"master_id"`
}

type estimateReq struct {
	ComponentID string `json:"component_id"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
	EndDate     string `json:"end_date"`
}

// List returns the requests visible to the caller.
func (h *TicketHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Tickets.List(ctx, currentCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(list, toTicketResp))
}

// Submit creates a pending request for the caller.
func (h *TicketHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tickets.Submit(ctx, currentCaller(c), service.SubmitInput{
		DeviceModel: req.DeviceModel,
		IssueType:   req.IssueType,
		ProblemArea: req.ProblemArea,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTicketResp(t))
}

// SetStatus accepts a bare JSON string ("approved") or {"status": "..."}.
func (h *TicketHandler) SetStatus(c echo.Context) error {
	status, err := readStatus(c.Request().Body)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tickets.ApplyStatus(ctx, currentCaller(c), c.Param("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Status updated successfully",
		"status":  t.Status,
	})
}

// Approve records the submitter's answer to the pending estimate.
func (h *TicketHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil || req.Approved == nil {
		return badRequest("approved must be true or false")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	t, err := h.Tickets.ResolveEstimate(ctx, currentCaller(c), c.Param("id"), *req.Approved)
	if err != nil {
		return err
	}
	msg := "Estimate rejected"
	if *req.Approved {
		msg = "Estimate approved, work started"
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg, "status": t.Status})
}

func (h *TicketHandler) AssignMaster(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	_, master, err := h.Tickets.AssignMaster(ctx, currentCaller(c), c.Param("id"), req.MasterID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Master assigned successfully",
		"master_id":   master.ID,
		"master_name": master.FullName(),
	})
}

// ProposeEstimate stores a master's estimate and sends it to the submitter.
func (h *TicketHandler) ProposeEstimate(c echo.Context) error {
	var req estimateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	var end time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		var err error
		if end, err = parseEndDate(req.EndDate); err != nil {
			return badRequest("end_date must be YYYY-MM-DD or RFC 3339")
		}
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := h.Tickets.ProposeEstimate(ctx, currentCaller(c), c.Param("id"), service.EstimateInput{
		ComponentID: req.ComponentID,
		Quantity:    req.Quantity,
		Price:       req.Price,
		EndDate:     end,
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Estimate sent for user approval"})
}

func readStatus(r io.Reader) (model.Status, error) {
	body, err := io.ReadAll(io.LimitReader(r, 1<<10))
	if err != nil {
		return "", badRequest("invalid body")
	}
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		var obj struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &obj); err != nil {
			return "", badRequest("Invalid status")
		}
		s = obj.Status
	}
	return model.Status(strings.ToLower(strings.TrimSpace(s))), nil
}

func parseEndDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, s)
}
