package handler

import (
	"net/http"
	"subscription-tracker/internal/dto"
	"subscription-tracker/internal/middleware"
	"subscription-tracker/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService     service.CartService
	purchaseService service.PurchaseService
}

func NewCartHandler(cartService service.CartService, purchaseService service.PurchaseService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		purchaseService: purchaseService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	cart, err := h.cartService.GetCart(ctx, middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddToCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.cartService.AddToCart(ctx, middleware.Identity(c), req.PackageID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.cartService.RemoveFromCart(ctx, middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Purchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PurchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	receipt, err := h.purchaseService.PurchaseFromCart(ctx, middleware.Identity(c), req.PaymentToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, receipt)
}

func (h *CartHandler) ListUserSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	subs, err := h.purchaseService.ListUserSubscriptions(ctx, middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subs)
}

func (h *CartHandler) CancelUserSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	sub, err := h.purchaseService.CancelSubscription(ctx, middleware.Identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}
