package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseUnattributed normalizes a payload whose origin gateway is unknown.
// Browser redirects and status-poll callbacks do not always name their
// gateway, so the union of every provider's order-id aliases is resolved
// here. Returns the event plus the gateway name when the payload carries one.
func ParseUnattributed(body []byte) (*WebhookEvent, string, error) {
	var raw struct {
		ReferenceID     string          `json:"reference_id"`
		Reference       string          `json:"reference"`
		OrderID         string          `json:"orderId"`
		OrderIDSnake    string          `json:"orderid"`
		InternalOrderID string          `json:"internalOrderId"`
		Status          string          `json:"status"`
		Event           string          `json:"event"`
		PaymentID       string          `json:"paymentId"`
		TransactionID   string          `json:"transaction_id"`
		UTR             string          `json:"utr"`
		Amount          json.RawMessage `json:"amount"`
		PaymentMethod   string          `json:"paymentMethod"`
		Gateway         string          `json:"gateway"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, "", fmt.Errorf("webhook payload: %w", err)
	}

	orderID := firstNonEmpty(raw.ReferenceID, raw.Reference, raw.OrderID, raw.OrderIDSnake, raw.InternalOrderID)

	status := strings.ToLower(strings.TrimSpace(raw.Status))
	if status == "" && raw.Event != "" {
		// "payment.success" style events carry the status after the dot.
		if _, after, found := strings.Cut(raw.Event, "."); found {
			status = after
		}
	}

	method := raw.PaymentMethod
	if method == "" {
		method = "gateway"
	}

	return &WebhookEvent{
		OrderID:       orderID,
		PaymentID:     firstNonEmpty(raw.PaymentID, raw.TransactionID, raw.UTR),
		Status:        normalizeLooseStatus(status, raw.Event),
		Amount:        parseAmount(raw.Amount),
		PaymentMethod: method,
		Metadata: map[string]string{
			"event": raw.Event,
			"utr":   raw.UTR,
		},
	}, strings.ToLower(strings.TrimSpace(raw.Gateway)), nil
}

// normalizeLooseStatus folds the loose status vocabulary seen across
// providers into the canonical three values.
func normalizeLooseStatus(status, event string) string {
	switch status {
	case "success", "paid", "verified":
		return StatusSuccess
	case "failed", "declined", "cancelled":
		return StatusFailed
	}
	if event == "payment.success" {
		return StatusSuccess
	}
	if status == "" {
		return StatusPending
	}
	return StatusPending
}
