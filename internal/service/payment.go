package service

import (
	"context"
	"subscription-tracker/internal/client"

	"github.com/shopspring/decimal"
)

// PaymentCollector charges the amount due for a purchase and returns the
// collector's reference for the charge.
type PaymentCollector interface {
	Collect(ctx context.Context, ownerID, paymentToken string, amount decimal.Decimal) (string, error)
}

type braintreeCollector struct {
	braintree client.BraintreeClient
}

func NewBraintreeCollector(braintree client.BraintreeClient) PaymentCollector {
	return &braintreeCollector{braintree: braintree}
}

func (c *braintreeCollector) Collect(ctx context.Context, ownerID, paymentToken string, amount decimal.Decimal) (string, error) {
	return c.braintree.ChargeOneTime(ctx, paymentToken, amount)
}
