package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/service"
)

// UserHandler serves the caller's profile and manager user administration.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type userReq struct {
	registerReq
	Role string `json:"role"`
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.Me(ctx, currentCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// UpdateMe applies a partial profile update. A role in the body is ignored.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.UpdateSelf(ctx, currentCaller(c), req.profile())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	users, err := h.Users.List(ctx, currentCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(users, toUserResp))
}

// Create adds an account with an explicit role. Without a password the
// default one is used.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.Create(ctx, currentCaller(c), req.profile(), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

func (h *UserHandler) Update(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.Update(ctx, currentCaller(c), c.Param("id"), req.profile(), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Users.Delete(ctx, currentCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

