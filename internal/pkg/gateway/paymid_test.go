package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestPaymid(apiURL string, creds MerchantCredentials) *Paymid {
	return &Paymid{
		APIURL:      apiURL,
		FrontendURL: "https://app.sharkfunded.com",
		BackendURL:  "https://api.sharkfunded.com",
		Creds:       staticCreds{c: creds},
		HTTPClient:  http.DefaultClient,
	}
}

func TestPaymidCreateOrder(t *testing.T) {
	var gotReq paymidCreateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/payment/request" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"payment_url":"https://paymid.example/pay/xyz"}}`))
	}))
	defer srv.Close()

	g := newTestPaymid(srv.URL, MerchantCredentials{APIKey: "key", APISecret: "secret", MerchantID: "acct-1"})
	res, err := g.CreateOrder(context.Background(), CreateOrderParams{
		OrderID:       "SF-ORDER-1",
		Amount:        249,
		Currency:      "USD",
		CustomerEmail: "trader@example.com",
		CustomerName:  "Jane Q Trader",
		Description:   "Lite 2 Step 50K",
	})
	if err != nil {
		t.Fatalf("CreateOrder returned error: %v", err)
	}

	if gotReq.FirstName != "Jane" || gotReq.LastName != "Q Trader" {
		t.Fatalf("name split = %q / %q", gotReq.FirstName, gotReq.LastName)
	}
	if gotReq.Reference != "SF-ORDER-1" {
		t.Fatalf("reference = %q", gotReq.Reference)
	}
	if gotReq.MerchantAccountID != "acct-1" {
		t.Fatalf("merchantAccountId = %q", gotReq.MerchantAccountID)
	}
	if gotReq.TTL != 15 || gotReq.ZipCode != 10001 || gotReq.DOB != "1990-01-01" {
		t.Fatalf("placeholder fields wrong: ttl=%d zip=%d dob=%q", gotReq.TTL, gotReq.ZipCode, gotReq.DOB)
	}
	if res.GatewayOrderID != "SF-ORDER-1" {
		t.Fatalf("gateway order id = %q, want the reference we sent", res.GatewayOrderID)
	}
	if res.PaymentURL != "https://paymid.example/pay/xyz" {
		t.Fatalf("payment url = %q", res.PaymentURL)
	}
}

func TestPaymidCreateOrderProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"merchant account disabled"}`))
	}))
	defer srv.Close()

	g := newTestPaymid(srv.URL, MerchantCredentials{APIKey: "key", APISecret: "secret"})
	_, err := g.CreateOrder(context.Background(), CreateOrderParams{OrderID: "SF-ORDER-1", Amount: 1})
	if err == nil {
		t.Fatalf("expected error when provider reports success=false")
	}
	if err.Error() != "merchant account disabled" {
		t.Fatalf("error = %q, want provider message", err.Error())
	}
}

func TestPaymidVerifyWebhook(t *testing.T) {
	secret := "paymid-secret"
	// Signature is computed over the key-sorted serialization, so a payload
	// with unsorted keys must still verify.
	body := []byte(`{"status":"success","reference":"SF-ORDER-1","amount":249}`)
	canonical, err := CanonicalJSON(body)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	sig := SignHMACSHA256(canonical, secret)

	g := newTestPaymid("http://unused", MerchantCredentials{APISecret: secret})

	if !g.VerifyWebhook(map[string]string{"Signature": sig}, body) {
		t.Fatalf("valid signature in Signature header did not verify")
	}
	if !g.VerifyWebhook(map[string]string{"X-Paymid-Signature": sig}, body) {
		t.Fatalf("valid signature in X-Paymid-Signature header did not verify")
	}
	if g.VerifyWebhook(map[string]string{"Signature": "deadbeef"}, body) {
		t.Fatalf("bad signature verified")
	}
	if g.VerifyWebhook(map[string]string{}, body) {
		t.Fatalf("missing signature header verified")
	}

	open := newTestPaymid("http://unused", MerchantCredentials{})
	if !open.VerifyWebhook(map[string]string{"Signature": "anything"}, body) {
		t.Fatalf("merchant without secret should accept")
	}
}

func TestMapPaymidStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "success", want: StatusSuccess},
		{in: "COMPLETED", want: StatusSuccess},
		{in: "approved", want: StatusSuccess},
		{in: "failed", want: StatusFailed},
		{in: "Declined", want: StatusFailed},
		{in: "cancelled", want: StatusFailed},
		{in: "processing", want: StatusPending},
		{in: "", want: StatusPending},
	}
	for _, tc := range tests {
		if got := mapPaymidStatus(tc.in); got != tc.want {
			t.Fatalf("mapPaymidStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPaymidParseWebhookData(t *testing.T) {
	g := newTestPaymid("http://unused", MerchantCredentials{})

	ev, err := g.ParseWebhookData([]byte(`{
		"reference": "SF-ORDER-1",
		"transaction_id": "txn-55",
		"status": "completed",
		"amount": 249.00,
		"payment_method": "visa",
		"currency": "USD"
	}`))
	if err != nil {
		t.Fatalf("ParseWebhookData returned error: %v", err)
	}
	if ev.OrderID != "SF-ORDER-1" || ev.PaymentID != "txn-55" {
		t.Fatalf("identifiers = %q / %q", ev.OrderID, ev.PaymentID)
	}
	if ev.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", ev.Status, StatusSuccess)
	}
	if ev.Amount != 249 {
		t.Fatalf("amount = %v", ev.Amount)
	}
	if ev.PaymentMethod != "visa" {
		t.Fatalf("payment method = %q", ev.PaymentMethod)
	}
}

func TestSplitCustomerName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{in: "Jane Trader", first: "Jane", last: "Trader"},
		{in: "Jane Q Trader", first: "Jane", last: "Q Trader"},
		{in: "Madonna", first: "Madonna", last: "N/A"},
		{in: "   ", first: "Trader", last: "N/A"},
	}
	for _, tc := range tests {
		first, last := splitCustomerName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("splitCustomerName(%q) = %q/%q, want %q/%q", tc.in, first, last, tc.first, tc.last)
		}
	}
}
