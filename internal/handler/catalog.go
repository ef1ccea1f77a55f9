package handler

import (
	"net/http"
	"subscription-tracker/internal/dto"
	"subscription-tracker/internal/middleware"
	"subscription-tracker/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService  service.CatalogService
	purchaseService service.PurchaseService
}

func NewCatalogHandler(catalogService service.CatalogService, purchaseService service.PurchaseService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		purchaseService: purchaseService,
	}
}

func packageForm(req *dto.PackageRequest) service.PackageForm {
	return service.PackageForm{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		BillingCycle: req.BillingCycle,
		Features:     req.Features,
		IsActive:     req.IsActive,
	}
}

func (h *CatalogHandler) ListActivePackages(c echo.Context) error {
	ctx := c.Request().Context()

	packages, err := h.catalogService.ListActive(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, packages)
}

func (h *CatalogHandler) ListPackages(c echo.Context) error {
	ctx := c.Request().Context()

	packages, err := h.catalogService.List(ctx, middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, packages)
}

func (h *CatalogHandler) GetPackage(c echo.Context) error {
	ctx := c.Request().Context()

	pkg, err := h.catalogService.Get(ctx, middleware.Identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pkg)
}

func (h *CatalogHandler) CreatePackage(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pkg, err := h.catalogService.Create(ctx, middleware.Identity(c), packageForm(&req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, pkg)
}

func (h *CatalogHandler) UpdatePackage(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PackageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pkg, err := h.catalogService.Update(ctx, middleware.Identity(c), c.Param("id"), packageForm(&req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pkg)
}

func (h *CatalogHandler) DeletePackage(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalogService.Delete(ctx, middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) GrantCredits(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.GrantCreditsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.purchaseService.GrantCredits(ctx, middleware.Identity(c), c.Param("id"), req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}
