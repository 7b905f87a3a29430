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

// EPay is the card gateway behind paymentservice.me. It declares no webhook
// signature scheme; merchant id equality is the only integrity check
// available, which is a documented limitation of the provider.
type EPay struct {
	APIURL      string
	FrontendURL string

	Creds      CredentialProvider
	HTTPClient *http.Client
}

func NewEPayFromEnv(creds CredentialProvider) *EPay {
	return &EPay{
		APIURL:      strings.TrimRight(env.GetEnv("EPAY_API_URL", ""), "/"),
		FrontendURL: strings.TrimRight(env.GetEnv("FRONTEND_URL", ""), "/"),
		Creds:       creds,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *EPay) Name() string { return "epay" }

type epayCreateRequest struct {
	MID         string  `json:"mid"`
	OrderID     string  `json:"orderid"`
	TranAmt     float64 `json:"tranmt"`
	Currency    string  `json:"currency"`
	CustomerID  string  `json:"customerid"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	ErrorURL    string  `json:"error_url"`
}

func (g *EPay) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResult, error) {
	if g.APIURL == "" {
		return nil, errors.New("EPAY_API_URL is not configured")
	}

	mid := g.Creds.Credentials(g.Name()).MerchantID
	description := params.Description
	if description == "" {
		description = "Challenge Purchase"
	}

	payload := epayCreateRequest{
		MID:         mid,
		OrderID:     params.OrderID,
		TranAmt:     params.Amount,
		Currency:    firstNonEmpty(params.Currency, "USD"),
		CustomerID:  params.CustomerEmail,
		Description: description,
		RedirectURL: fmt.Sprintf("%s/payment/success?orderId=%s", g.FrontendURL, params.OrderID),
		ErrorURL:    fmt.Sprintf("%s/payment/failed?orderId=%s", g.FrontendURL, params.OrderID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.APIURL+"/create-order", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("epay create order request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("epay api failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var out struct {
		OrderID     string `json:"orderid"`
		RedirectURL string `json:"redirect_url"`
		URL         string `json:"url"`
		CheckoutURL string `json:"checkoutUrl"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}

	return &CreateOrderResult{
		GatewayOrderID: firstNonEmpty(out.OrderID, params.OrderID),
		PaymentURL:     firstNonEmpty(out.RedirectURL, out.URL, out.CheckoutURL),
	}, nil
}

// VerifyWebhook matches the payload's merchant id against ours. EPay sends no
// signature header to check.
func (g *EPay) VerifyWebhook(headers map[string]string, body []byte) bool {
	_ = headers

	var raw struct {
		MID string `json:"mid"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}

	mid := g.Creds.Credentials(g.Name()).MerchantID
	return raw.MID != "" && raw.MID == mid
}

func (g *EPay) ParseWebhookData(body []byte) (*WebhookEvent, error) {
	var raw struct {
		MID            string          `json:"mid"`
		OrderID        string          `json:"orderid"`
		TransactionID  string          `json:"transactionid"`
		TranSt         string          `json:"transt"`
		TranAmt        json.RawMessage `json:"tranmt"`
		ReceiveAmount  json.RawMessage `json:"receive_amount"`
		CardHolderName string          `json:"cardHolderName"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("epay webhook payload: %w", err)
	}

	amount := parseAmount(raw.TranAmt)
	if amount == 0 {
		amount = parseAmount(raw.ReceiveAmount)
	}

	return &WebhookEvent{
		OrderID:       raw.OrderID,
		PaymentID:     raw.TransactionID,
		Status:        mapEPayStatus(raw.TranSt),
		Amount:        amount,
		PaymentMethod: "CreditCard/Other",
		Metadata: map[string]string{
			"mid":            raw.MID,
			"cardHolderName": raw.CardHolderName,
			"status_text":    raw.TranSt,
		},
	}, nil
}

func mapEPayStatus(transt string) string {
	switch strings.ToLower(strings.TrimSpace(transt)) {
	case "purchased", "payment accepted":
		return StatusSuccess
	case "partially refunded", "refunded", "declined", "failed",
		"3ds not authenticated", "three ds not authenticated", "three ds not auth":
		return StatusFailed
	default:
		return StatusPending
	}
}
