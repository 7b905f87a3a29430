package gateway

import (
	"testing"
)

func newTestEPay(creds MerchantCredentials) *EPay {
	return &EPay{
		APIURL:      "http://unused",
		FrontendURL: "https://app.sharkfunded.com",
		Creds:       staticCreds{c: creds},
	}
}

func TestEPayVerifyWebhook(t *testing.T) {
	g := newTestEPay(MerchantCredentials{MerchantID: "mid-42"})

	if !g.VerifyWebhook(nil, []byte(`{"mid":"mid-42","orderid":"SF-ORDER-1"}`)) {
		t.Fatalf("matching merchant id did not verify")
	}
	if g.VerifyWebhook(nil, []byte(`{"mid":"mid-99","orderid":"SF-ORDER-1"}`)) {
		t.Fatalf("foreign merchant id verified")
	}
	if g.VerifyWebhook(nil, []byte(`{"orderid":"SF-ORDER-1"}`)) {
		t.Fatalf("payload without mid verified")
	}
	if g.VerifyWebhook(nil, []byte(`not json`)) {
		t.Fatalf("malformed payload verified")
	}

	empty := newTestEPay(MerchantCredentials{})
	if empty.VerifyWebhook(nil, []byte(`{"mid":""}`)) {
		t.Fatalf("empty mid on both sides must not verify")
	}
}

func TestMapEPayStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Purchased", want: StatusSuccess},
		{in: "payment accepted", want: StatusSuccess},
		{in: "Refunded", want: StatusFailed},
		{in: "partially refunded", want: StatusFailed},
		{in: "Declined", want: StatusFailed},
		{in: "3DS not authenticated", want: StatusFailed},
		{in: "pending", want: StatusPending},
		{in: "", want: StatusPending},
	}
	for _, tc := range tests {
		if got := mapEPayStatus(tc.in); got != tc.want {
			t.Fatalf("mapEPayStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEPayParseWebhookData(t *testing.T) {
	g := newTestEPay(MerchantCredentials{MerchantID: "mid-42"})

	ev, err := g.ParseWebhookData([]byte(`{
		"mid": "mid-42",
		"orderid": "SF-ORDER-1",
		"transactionid": "ep-77",
		"transt": "Purchased",
		"tranmt": "499.00",
		"cardHolderName": "Jane Trader"
	}`))
	if err != nil {
		t.Fatalf("ParseWebhookData returned error: %v", err)
	}
	if ev.OrderID != "SF-ORDER-1" || ev.PaymentID != "ep-77" {
		t.Fatalf("identifiers = %q / %q", ev.OrderID, ev.PaymentID)
	}
	if ev.Status != StatusSuccess {
		t.Fatalf("status = %q, want %q", ev.Status, StatusSuccess)
	}
	if ev.Amount != 499 {
		t.Fatalf("amount = %v, want 499", ev.Amount)
	}
	if ev.PaymentMethod != "CreditCard/Other" {
		t.Fatalf("payment method = %q", ev.PaymentMethod)
	}
}

func TestEPayParseWebhookDataAmountFallback(t *testing.T) {
	g := newTestEPay(MerchantCredentials{})

	ev, err := g.ParseWebhookData([]byte(`{"orderid":"SF-ORDER-2","transt":"Declined","receive_amount":120.5}`))
	if err != nil {
		t.Fatalf("ParseWebhookData returned error: %v", err)
	}
	if ev.Amount != 120.5 {
		t.Fatalf("amount fallback = %v, want 120.5", ev.Amount)
	}
	if ev.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", ev.Status, StatusFailed)
	}
}
