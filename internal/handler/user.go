package handler

import (
	"net/http"
	"subscription-tracker/internal/middleware"
	"subscription-tracker/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	dashboardService service.DashboardService
}

func NewUserHandler(dashboardService service.DashboardService) *UserHandler {
	return &UserHandler{
		dashboardService: dashboardService,
	}
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Identity(c))
}

func (h *UserHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	dashboard, err := h.dashboardService.Dashboard(ctx, middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboard)
}
