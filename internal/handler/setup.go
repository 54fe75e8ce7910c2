package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/service"
)

type SetupHandler struct {
	Setup *service.SetupService
}

func NewSetupHandler(s *service.SetupService) *SetupHandler {
	return &SetupHandler{Setup: s}
}

// CheckSetup reports whether the database already holds accounts.
func (h *SetupHandler) CheckSetup(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	done, err := h.Setup.CheckSetup(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"setupDone": done})
}
