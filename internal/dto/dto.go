package dto

import (
	"subscription-tracker/internal/model"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type PackageRequest struct {
	Name         string             `json:"name" validate:"required,max=128"`
	Description  string             `json:"description"`
	Price        string             `json:"price" validate:"required"`
	Currency     string             `json:"currency" validate:"omitempty,len=3"`
	BillingCycle model.BillingCycle `json:"billing_cycle" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	// newline separated, one feature per line
	Features string `json:"features"`
	// absent means active on create and unchanged on update
	IsActive *bool `json:"is_active"`
}

type AddToCartRequest struct {
	PackageID string `json:"package_id" validate:"required"`
}

type PurchaseRequest struct {
	// Braintree client nonce; only needed when an amount is due
	PaymentToken string `json:"payment_token"`
}

type GrantCreditsRequest struct {
	Amount string `json:"amount" validate:"required"`
}

type SubscriptionRequest struct {
	Name            string             `json:"name" validate:"required,max=128"`
	Description     string             `json:"description"`
	Provider        string             `json:"provider" validate:"max=128"`
	WebsiteURL      string             `json:"website_url" validate:"omitempty,url"`
	Cost            string             `json:"cost" validate:"required"`
	Currency        string             `json:"currency" validate:"omitempty,len=3"`
	BillingCycle    model.BillingCycle `json:"billing_cycle" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	Category        model.Category     `json:"category"`
	IsActive        *bool              `json:"is_active"`
	AutoRenewal     bool               `json:"auto_renewal"`
	NextBillingDate *model.Date        `json:"next_billing_date"`
	UsageLimit      *float64           `json:"usage_limit" validate:"omitempty,gte=0"`
	CurrentUsage    *float64           `json:"current_usage" validate:"omitempty,gte=0"`
	Notes           string             `json:"notes"`
}

// SubscriptionPatchRequest leaves absent fields untouched; an explicit null
// clears next_billing_date, usage_limit or current_usage.
type SubscriptionPatchRequest struct {
	Name            *string                    `json:"name" validate:"omitempty,max=128"`
	Description     *string                    `json:"description"`
	Provider        *string                    `json:"provider" validate:"omitempty,max=128"`
	WebsiteURL      *string                    `json:"website_url" validate:"omitempty,url"`
	Cost            *string                    `json:"cost"`
	Currency        *string                    `json:"currency" validate:"omitempty,len=3"`
	BillingCycle    *model.BillingCycle        `json:"billing_cycle"`
	Category        *model.Category            `json:"category"`
	IsActive        *bool                      `json:"is_active"`
	AutoRenewal     *bool                      `json:"auto_renewal"`
	NextBillingDate model.Nullable[model.Date] `json:"next_billing_date"`
	UsageLimit      model.Nullable[float64]    `json:"usage_limit"`
	CurrentUsage    model.Nullable[float64]    `json:"current_usage"`
	Notes           *string                    `json:"notes"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UsageRequest struct {
	CurrentUsage *float64 `json:"current_usage" validate:"required"`
}

type PaymentRequest struct {
	Amount      string      `json:"amount"`
	PaymentDate *model.Date `json:"payment_date"`
	Notes       string      `json:"notes"`
}
