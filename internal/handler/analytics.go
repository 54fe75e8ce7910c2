package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/service"
)

type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
}

func NewAnalyticsHandler(a *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: a}
}

func (h *AnalyticsHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.Analytics.Compute(ctx, currentCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
