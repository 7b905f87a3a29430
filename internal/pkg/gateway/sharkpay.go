package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sharkfunded/platform/internal/pkg/env"
)

const defaultSharkPayAPIURL = "https://sharkpay-o9zz.vercel.app"

// SharkPay quotes in INR; checkout amounts arrive in USD and are converted
// with a fixed multiplier before submission.
const usdToINR = 94

// SharkPay is the UPI/bank-transfer provider. Orders are created against its
// hosted checkout; webhooks carry an HMAC-SHA256 signature over the raw body.
type SharkPay struct {
	APIURL      string
	FrontendURL string
	BackendURL  string

	Creds      CredentialProvider
	HTTPClient *http.Client
}

func NewSharkPayFromEnv(creds CredentialProvider) *SharkPay {
	return &SharkPay{
		APIURL:      strings.TrimRight(env.GetEnv("SHARKPAY_API_URL", defaultSharkPayAPIURL), "/"),
		FrontendURL: strings.TrimRight(env.GetEnv("FRONTEND_URL", ""), "/"),
		BackendURL:  strings.TrimRight(env.GetEnv("BACKEND_URL", ""), "/"),
		Creds:       creds,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *SharkPay) Name() string { return "sharkpay" }

type sharkPayCreateRequest struct {
	Amount      int    `json:"amount"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ReferenceID string `json:"reference_id"`
	SuccessURL  string `json:"success_url"`
	FailedURL   string `json:"failed_url"`
	CallbackURL string `json:"callback_url"`
}

func (g *SharkPay) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	creds := g.Creds.Credentials(g.Name())
	if creds.APIKey == "" || creds.APISecret == "" {
		return nil, errors.New("sharkpay api credentials missing")
	}

	payload := sharkPayCreateRequest{
		Amount:      convertToINR(params.Amount),
		Name:        params.CustomerName,
		Email:       params.CustomerEmail,
		ReferenceID: params.OrderID,
		SuccessURL:  fmt.Sprintf("%s/payment/success?orderId=%s", g.FrontendURL, params.OrderID),
		FailedURL:   g.FrontendURL + "/payment/failed",
		CallbackURL: g.BackendURL + "/api/webhooks/payment",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.APIURL+"/api/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+basicAuth(creds.APIKey, creds.APISecret))

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sharkpay create order request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sharkpay api failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		OrderID     string `json:"orderId"`
		OrderIDAlt  string `json:"order_id"`
		CheckoutURL string `json:"checkoutUrl"`
		CheckoutAlt string `json:"checkout_url"`
		URL         string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}

	return &CreateOrderResult{
		GatewayOrderID: firstNonEmpty(out.OrderID, out.OrderIDAlt),
		PaymentURL:     firstNonEmpty(out.CheckoutURL, out.CheckoutAlt, out.URL),
	}, nil
}

// VerifyWebhook checks X-Sharkpay-Signature against an HMAC-SHA256 of the raw
// body. A merchant with no webhook secret configured is accepted as-is.
func (g *SharkPay) VerifyWebhook(headers map[string]string, body []byte) bool {
	sig := headerValue(headers, "X-Sharkpay-Signature")
	if sig == "" {
		return false
	}

	secret := g.Creds.Credentials(g.Name()).WebhookSecret
	if secret == "" {
		return true
	}
	return VerifyHMACSHA256(body, sig, secret)
}

func (g *SharkPay) ParseWebhookData(body []byte) (*WebhookEvent, error) {
	var raw struct {
		Event       string          `json:"event"`
		ReferenceID string          `json:"reference_id"`
		OrderID     string          `json:"orderId"`
		Amount      json.RawMessage `json:"amount"`
		UTR         string          `json:"utr"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("sharkpay webhook payload: %w", err)
	}

	status := StatusFailed
	if raw.Event == "payment.success" {
		status = StatusSuccess
	}
	method := "unknown"
	if raw.UTR != "" {
		method = "UPI/Bank"
	}

	return &WebhookEvent{
		OrderID:       raw.ReferenceID,
		PaymentID:     raw.OrderID,
		Status:        status,
		Amount:        parseAmount(raw.Amount),
		PaymentMethod: method,
		Metadata: map[string]string{
			"utr":   raw.UTR,
			"event": raw.Event,
		},
	}, nil
}

func convertToINR(usdAmount float64) int {
	return int(math.Round(usdAmount * usdToINR))
}

func basicAuth(key, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// headerValue does a case-insensitive header lookup over a plain map.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseAmount tolerates both numeric and string amounts in provider payloads.
func parseAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}
