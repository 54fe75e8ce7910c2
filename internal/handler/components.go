package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Diyorbek0204/dern-support/internal/service"
)

// ComponentHandler serves the spare-parts inventory.
type ComponentHandler struct {
	Components *service.ComponentService
}

func NewComponentHandler(components *service.ComponentService) *ComponentHandler {
	return &ComponentHandler{Components: components}
}

type componentCreateReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	InStock     int    `json:"in_stock"`
}

type componentPatchReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	InStock     *int    `json:"in_stock"`
}

func (h *ComponentHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Components.List(ctx, currentCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(list, toComponentResp))
}

func (h *ComponentHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	comp, err := h.Components.Get(ctx, currentCaller(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toComponentResp(comp))
}

func (h *ComponentHandler) Create(c echo.Context) error {
	var req componentCreateReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	comp, err := h.Components.Create(ctx, currentCaller(c), req.Title, req.Description, req.Price, req.InStock)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toComponentResp(comp))
}

func (h *ComponentHandler) Update(c echo.Context) error {
	var req componentPatchReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	comp, err := h.Components.Update(ctx, currentCaller(c), c.Param("id"), service.ComponentPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		InStock:     req.InStock,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toComponentResp(comp))
}

func (h *ComponentHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Components.Delete(ctx, currentCaller(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Component deleted successfully"})
}
