package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestSharkPay(apiURL string, creds MerchantCredentials) *SharkPay {
	return &SharkPay{
		APIURL:      apiURL,
		FrontendURL: "https://app.sharkfunded.com",
		BackendURL:  "https://api.sharkfunded.com",
		Creds:       staticCreds{c: creds},
		HTTPClient:  http.DefaultClient,
	}
}

func TestConvertToINR(t *testing.T) {
	tests := []struct {
		usd  float64
		want int
	}{
		{usd: 100, want: 9400},
		{usd: 49, want: 4606},
		{usd: 9, want: 846},
		{usd: 0.5, want: 47},
	}
	for _, tc := range tests {
		if got := convertToINR(tc.usd); got != tc.want {
			t.Fatalf("convertToINR(%v) = %d, want %d", tc.usd, got, tc.want)
		}
	}
}

func TestSharkPayCreateOrder(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq sharkPayCreateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orderId":"SP-123","checkoutUrl":"https://pay.example/SP-123"}`))
	}))
	defer srv.Close()

	g := newTestSharkPay(srv.URL, MerchantCredentials{APIKey: "key", APISecret: "secret"})
	res, err := g.CreateOrder(context.Background(), CreateOrderParams{
		OrderID:       "SF-ORDER-1700000000000-abc123",
		Amount:        100,
		Currency:      "USD",
		CustomerEmail: "trader@example.com",
		CustomerName:  "Test Trader",
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if gotPath != "/api/create-order" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Basic "+basicAuth("key", "secret") {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotReq.Amount != 9400 {
		t.Fatalf("amount sent = %d, want 9400 (INR)", gotReq.Amount)
	}
	if gotReq.ReferenceID != "SF-ORDER-1700000000000-abc123" {
		t.Fatalf("reference_id = %q", gotReq.ReferenceID)
	}
	if res.GatewayOrderID != "SP-123" {
		t.Fatalf("gateway order id = %q, want SP-123", res.GatewayOrderID)
	}
	if res.PaymentURL != "https://pay.example/SP-123" {
		t.Fatalf("payment url = %q", res.PaymentURL)
	}
}

func TestSharkPayCreateOrderMissingCredentials(t *testing.T) {
	g := newTestSharkPay("http://unused", MerchantCredentials{})
	if _, err := g.CreateOrder(context.Background(), CreateOrderParams{OrderID: "x", Amount: 1}); err == nil {
		t.Fatalf("expected error with no credentials")
	}
}

func TestSharkPayVerifyWebhook(t *testing.T) {
	body := []byte(`{"event":"payment.success","reference_id":"SF-ORDER-1"}`)
	secret := "whsec"
	sig := SignHMACSHA256(body, secret)

	tests := []struct {
		name    string
		headers map[string]string
		secret  string
		want    bool
	}{
		{name: "valid signature", headers: map[string]string{"X-Sharkpay-Signature": sig}, secret: secret, want: true},
		{name: "lowercase header", headers: map[string]string{"x-sharkpay-signature": sig}, secret: secret, want: true},
		{name: "bad signature", headers: map[string]string{"X-Sharkpay-Signature": "deadbeef"}, secret: secret, want: false},
		{name: "missing header", headers: map[string]string{}, secret: secret, want: false},
		{name: "no secret configured", headers: map[string]string{"X-Sharkpay-Signature": "anything"}, secret: "", want: true},
	}
	for _, tc := range tests {
		g := newTestSharkPay("http://unused", MerchantCredentials{WebhookSecret: tc.secret})
		if got := g.VerifyWebhook(tc.headers, body); got != tc.want {
			t.Fatalf("%s: VerifyWebhook = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSharkPayParseWebhookData(t *testing.T) {
	g := newTestSharkPay("http://unused", MerchantCredentials{})

	ev, err := g.ParseWebhookData([]byte(`{
		"event": "payment.success",
		"reference_id": "SF-ORDER-1700000000000-abc123",
		"orderId": "SP-987",
		"amount": "9400",
		"utr": "UTR00012345"
	}`))
	if err != nil {
		t.Fatalf("ParseWebhookData returned error: %v", err)
	}
	if ev.OrderID != "SF-ORDER-1700000000000-abc123" {
		t.Fatalf("order id = %q", ev.OrderID)
	}
	if ev.PaymentID != "SP-987" {
		t.Fatalf("payment id = %q", ev.PaymentID)
	}
	if ev.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", ev.Status, StatusSuccess)
	}
	if ev.Amount != 9400 {
		t.Fatalf("amount = %v, want 9400", ev.Amount)
	}
	if ev.PaymentMethod != "UPI/Bank" {
		t.Fatalf("payment method = %q", ev.PaymentMethod)
	}

	ev, err = g.ParseWebhookData([]byte(`{"event":"payment.failed","reference_id":"SF-ORDER-2","amount":100}`))
	if err != nil {
		t.Fatalf("ParseWebhookData returned error: %v", err)
	}
	if ev.Status != StatusFailed {
		t.Fatalf("non-success event status = %q, want %q", ev.Status, StatusFailed)
	}
	if ev.PaymentMethod != "unknown" {
		t.Fatalf("payment method without utr = %q, want unknown", ev.PaymentMethod)
	}
}
