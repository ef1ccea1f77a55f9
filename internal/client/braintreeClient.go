package client

import (
	"context"
	"fmt"
	"subscription-tracker/internal/config"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"
)

type BraintreeClient interface {
	// ChargeOneTime charges the payment method behind a client nonce (from the
	// Drop-in UI) and returns the gateway transaction id.
	ChargeOneTime(ctx context.Context, nonce string, amount decimal.Decimal) (string, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return newBraintreeClient(gateway)
}

func newBraintreeClient(gateway *braintree.Braintree) BraintreeClient {
	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) ChargeOneTime(ctx context.Context, nonce string, amount decimal.Decimal) (string, error) {
	if nonce == "" {
		return "", fmt.Errorf("payment nonce is required")
	}

	// braintree wants an unscaled integer with a scale: 49.90 -> NewDecimal(4990, 2)
	cents := amount.Round(2).Shift(2).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: nonce,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return "", fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return tx.Id, nil
}
