package gateway

import (
	"context"
)

// Canonical webhook statuses every adapter maps its provider vocabulary into.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// CreateOrderParams is the provider-neutral input for starting a checkout.
type CreateOrderParams struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerEmail string
	CustomerName  string
	Description   string
}

// CreateOrderResult carries the provider's checkout handle. PaymentURL is
// where the buyer must be redirected to complete payment.
type CreateOrderResult struct {
	GatewayOrderID string
	PaymentURL     string
}

// WebhookEvent is the normalized result of adapter parsing. Field-name
// heterogeneity between providers is resolved here and nowhere downstream.
type WebhookEvent struct {
	OrderID       string
	PaymentID     string
	Status        string
	Amount        float64
	PaymentMethod string
	Metadata      map[string]string
}

// Gateway is implemented once per payment provider.
//
// VerifyWebhook performs the provider's integrity check over the raw body.
// A provider with no configured secret verifies by default; that is a
// documented operational risk, not a reason to fail closed.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error)
	VerifyWebhook(headers map[string]string, body []byte) bool
	ParseWebhookData(body []byte) (*WebhookEvent, error)
}

// MerchantCredentials is the per-gateway credential set adapters operate
// with, sourced from the merchant config table or environment fallback.
type MerchantCredentials struct {
	APIKey        string `json:"api_key"`
	APISecret     string `json:"api_secret"`
	WebhookSecret string `json:"webhook_secret"`
	MerchantID    string `json:"merchant_id"`
}
