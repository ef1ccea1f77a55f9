package handler

import (
	"net/http"
	"subscription-tracker/internal/dto"
	"subscription-tracker/internal/middleware"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
	"subscription-tracker/internal/service"

	"github.com/labstack/echo/v4"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.SubscriptionFilter{
		Search:   c.QueryParam("search"),
		Category: model.Category(c.QueryParam("category")),
		Status:   c.QueryParam("status"),
	}

	subs, err := h.subscriptionService.List(ctx, middleware.Identity(c), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	sub, err := h.subscriptionService.Get(ctx, middleware.Identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscriptionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	// new entries are active unless stated otherwise
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	sub, err := h.subscriptionService.Create(ctx, middleware.Identity(c), service.SubscriptionInput{
		Name:            req.Name,
		Description:     req.Description,
		Provider:        req.Provider,
		WebsiteURL:      req.WebsiteURL,
		Cost:            req.Cost,
		Currency:        req.Currency,
		BillingCycle:    req.BillingCycle,
		Category:        req.Category,
		IsActive:        active,
		AutoRenewal:     req.AutoRenewal,
		NextBillingDate: req.NextBillingDate,
		UsageLimit:      req.UsageLimit,
		CurrentUsage:    req.CurrentUsage,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SubscriptionPatchRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.Update(ctx, middleware.Identity(c), c.Param("id"), service.SubscriptionPatch{
		Name:            req.Name,
		Description:     req.Description,
		Provider:        req.Provider,
		WebsiteURL:      req.WebsiteURL,
		Cost:            req.Cost,
		Currency:        req.Currency,
		BillingCycle:    req.BillingCycle,
		Category:        req.Category,
		IsActive:        req.IsActive,
		AutoRenewal:     req.AutoRenewal,
		NextBillingDate: req.NextBillingDate,
		UsageLimit:      req.UsageLimit,
		CurrentUsage:    req.CurrentUsage,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) DeleteSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.subscriptionService.Delete(ctx, middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *SubscriptionHandler) SetActive(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SetActiveRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.SetActive(ctx, middleware.Identity(c), c.Param("id"), *req.IsActive)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) UpdateUsage(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.UsageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sub, err := h.subscriptionService.UpdateUsage(ctx, middleware.Identity(c), c.Param("id"), *req.CurrentUsage)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.subscriptionService.RecordPayment(ctx, middleware.Identity(c), c.Param("id"), service.PaymentInput{
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, payment)
}

func (h *SubscriptionHandler) ListPayments(c echo.Context) error {
	ctx := c.Request().Context()

	payments, err := h.subscriptionService.ListPayments(ctx, middleware.Identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, payments)
}

func (h *SubscriptionHandler) Metrics(c echo.Context) error {
	ctx := c.Request().Context()

	metrics, err := h.subscriptionService.Metrics(ctx, middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, metrics)
}
