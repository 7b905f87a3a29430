package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sharkfunded/platform/internal/pkg/env"
)

// Paymid is the card-processing provider. Its payment request wants a full
// customer record; fields we do not collect at checkout are sent as the
// provider's documented placeholders.
type Paymid struct {
	APIURL      string
	FrontendURL string
	BackendURL  string

	Creds      CredentialProvider
	HTTPClient *http.Client
}

func NewPaymidFromEnv(creds CredentialProvider) *Paymid {
	return &Paymid{
		APIURL:      strings.TrimRight(env.GetEnv("PAYMID_API_URL", ""), "/"),
		FrontendURL: strings.TrimRight(env.GetEnv("FRONTEND_URL", ""), "/"),
		BackendURL:  strings.TrimRight(env.GetEnv("BACKEND_URL", ""), "/"),
		Creds:       creds,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *Paymid) Name() string { return "paymid" }

type paymidCreateRequest struct {
	FirstName         string  `json:"firstName"`
	MiddleName        string  `json:"middleName"`
	LastName          string  `json:"lastName"`
	Reference         string  `json:"reference"`
	DOB               string  `json:"dob"`
	Email             string  `json:"email"`
	ContactNumber     string  `json:"contactNumber"`
	Address           string  `json:"address"`
	Country           string  `json:"country"`
	State             string  `json:"state"`
	City              string  `json:"city"`
	ZipCode           int     `json:"zipCode"`
	Currency          string  `json:"currency"`
	Amount            float64 `json:"amount"`
	TTL               int     `json:"ttl"`
	TagName           string  `json:"tagName"`
	MerchantAccountID string  `json:"merchantAccountId"`
	WebhookURL        string  `json:"webhookUrl"`
	SuccessURL        string  `json:"successUrl"`
	FailedURL         string  `json:"failedUrl"`
}

func (g *Paymid) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	creds := g.Creds.Credentials(g.Name())
	if creds.APIKey == "" || creds.APISecret == "" {
		return nil, errors.New("paymid api credentials missing")
	}
	if g.APIURL == "" {
		return nil, errors.New("PAYMID_API_URL is not configured")
	}

	firstName, lastName := splitCustomerName(params.CustomerName)
	tag := params.Description
	if tag == "" {
		tag = "Challenge Purchase"
	}

	payload := paymidCreateRequest{
		FirstName:         firstName,
		LastName:          lastName,
		Reference:         params.OrderID,
		DOB:               "1990-01-01",
		Email:             params.CustomerEmail,
		ContactNumber:     "+1234567890",
		Address:           "N/A",
		Country:           "United States",
		State:             "N/A",
		City:              "N/A",
		ZipCode:           10001,
		Currency:          params.Currency,
		Amount:            params.Amount,
		TTL:               15,
		TagName:           tag,
		MerchantAccountID: creds.MerchantID,
		WebhookURL:        g.BackendURL + "/api/webhooks/payment",
		SuccessURL:        g.FrontendURL + "/payment/success",
		FailedURL:         g.FrontendURL + "/payment/failed",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.APIURL+"/api/v1/payment/request", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(creds.APIKey, creds.APISecret))

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paymid payment request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("paymid api failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			PaymentURL string `json:"payment_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		if out.Message == "" {
			out.Message = "paymid payment request failed"
		}
		return nil, errors.New(out.Message)
	}

	// Paymid has no order id of its own; the reference we sent is the handle.
	return &CreateOrderResult{
		GatewayOrderID: params.OrderID,
		PaymentURL:     out.Data.PaymentURL,
	}, nil
}

// VerifyWebhook checks the Signature (or X-Paymid-Signature) header against
// an HMAC-SHA256 of the key-sorted JSON serialization of the body.
func (g *Paymid) VerifyWebhook(headers map[string]string, body []byte) bool {
	sig := headerValue(headers, "Signature")
	if sig == "" {
		sig = headerValue(headers, "X-Paymid-Signature")
	}
	if sig == "" {
		return false
	}

	secret := g.Creds.Credentials(g.Name()).APISecret
	if secret == "" {
		return true
	}

	canonical, err := CanonicalJSON(body)
	if err != nil {
		return false
	}
	return VerifyHMACSHA256(canonical, sig, secret)
}

func (g *Paymid) ParseWebhookData(body []byte) (*WebhookEvent, error) {
	var raw struct {
		Reference     string          `json:"reference"`
		TransactionID string          `json:"transaction_id"`
		Status        string          `json:"status"`
		Amount        json.RawMessage `json:"amount"`
		PaymentMethod string          `json:"payment_method"`
		Type          string          `json:"type"`
		CreatedAt     string          `json:"created_at"`
		ProcessorName string          `json:"processor_name"`
		Currency      string          `json:"currency"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("paymid webhook payload: %w", err)
	}

	method := raw.PaymentMethod
	if method == "" {
		method = "unknown"
	}

	return &WebhookEvent{
		OrderID:       raw.Reference,
		PaymentID:     raw.TransactionID,
		Status:        mapPaymidStatus(raw.Status),
		Amount:        parseAmount(raw.Amount),
		PaymentMethod: method,
		Metadata: map[string]string{
			"type":           raw.Type,
			"created_at":     raw.CreatedAt,
			"processor_name": raw.ProcessorName,
			"currency":       raw.Currency,
		},
	}, nil
}

func mapPaymidStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "completed", "approved":
		return StatusSuccess
	case "failed", "declined", "cancelled":
		return StatusFailed
	default:
		return StatusPending
	}
}

func splitCustomerName(name string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "Trader", "N/A"
	}
	if len(parts) == 1 {
		return parts[0], "N/A"
	}
	return parts[0], strings.Join(parts[1:], " ")
}
