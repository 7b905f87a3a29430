package controllers

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/fulfillment"
	"github.com/sharkfunded/platform/internal/pkg/gateway"
	"github.com/sharkfunded/platform/internal/pkg/metrics/counter"
)

// WebhookController handles payment gateway callbacks. The same logical
// endpoint takes provider POSTs and browser GET redirects; both race to win
// the order's atomic transition and at most one does.
type WebhookController struct {
	Registry     *gateway.Registry
	Service      *fulfillment.Service
	WebhookLogs  repository.WebhookLogRepository
	FrontendURL  string
	SharedSecret string
	Counters     bool
}

// HandlePaymentWebhook processes one delivery. An audit entry is written
// before any order mutation so every delivery is on record even when
// processing fails downstream. POST answers 200 for duplicate or
// unresolvable orders so providers stop retrying permanently dead
// deliveries; non-2xx is reserved for malformed payloads (400) and
// datastore failures (500). GET always ends in a redirect.
func (wc *WebhookController) HandlePaymentWebhook(c *fiber.Ctx) error {
	isGET := c.Method() == fiber.MethodGet

	body := c.Body()
	if isGET {
		body = queryPayload(c)
	}
	headers := flattenHeaders(c.GetReqHeaders())

	if wc.SharedSecret != "" && !wc.sharedSecretOK(c, headers) {
		log.Printf("[Webhook] delivery rejected: shared secret mismatch")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	gatewayName := strings.ToLower(strings.TrimSpace(c.Query("gateway")))
	event, parsedName, parseErr := wc.parse(gatewayName, headers, body)
	if parseErr != nil {
		wc.audit(&models.WebhookLog{
			EventType:   "payment.malformed",
			Gateway:     nonEmpty(gatewayName, "unknown"),
			RequestBody: string(body),
			Status:      "malformed",
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if gatewayName == "" {
		gatewayName = parsedName
	}

	verified := true
	if adapter, err := wc.Registry.Resolve(gatewayName); err == nil {
		verified = adapter.VerifyWebhook(headers, body)
	}

	entry := &models.WebhookLog{
		EventType:      "payment." + event.Status,
		Gateway:        nonEmpty(gatewayName, "unknown"),
		OrderID:        event.OrderID,
		GatewayOrderID: event.PaymentID,
		Amount:         event.Amount,
		Status:         event.Status,
		SignatureValid: verified,
		RequestBody:    string(body),
	}
	if err := wc.WebhookLogs.Create(entry); err != nil {
		// The delivery is not durably recorded; a provider retry is wanted.
		log.Printf("[Webhook] audit write failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to record webhook"})
	}
	if wc.Counters {
		if err := counter.AddWebhookReceived(entry.Gateway); err != nil {
			log.Printf("[Webhook] received counter failed: %v", err)
		}
	}

	if !verified {
		// Unverified deliveries are recorded but never applied.
		log.Printf("[Webhook] order %s: signature verification failed for %s", event.OrderID, gatewayName)
		return wc.respond(c, isGET, event, fiber.Map{"message": "Signature verification failed"})
	}

	if event.OrderID == "" {
		return wc.respond(c, isGET, event, fiber.Map{"message": "Order reference missing"})
	}

	outcome, err := wc.Service.ProcessPaymentEvent(c.Context(), event, entry.ID)
	if err != nil {
		log.Printf("[Webhook] order %s: processing failed: %v", event.OrderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}
	if !outcome.Applied {
		// Duplicate or non-success: stamp the audit entry here, the
		// orchestrator never ran for it.
		if err := wc.WebhookLogs.MarkProcessed(entry.ID, outcome.Message); err != nil {
			log.Printf("[Webhook] marking audit entry %d failed: %v", entry.ID, err)
		}
		return wc.respond(c, isGET, event, fiber.Map{"message": outcome.Message})
	}

	if wc.Counters {
		if err := counter.AddWebhookProcessed(entry.Gateway); err != nil {
			log.Printf("[Webhook] processed counter failed: %v", err)
		}
	}
	return wc.respond(c, isGET, event, fiber.Map{
		"success": true,
		"message": outcome.Message,
		"order":   outcome,
	})
}

// HandleBridgeCallback acknowledges asynchronous account events from the
// provisioning bridge. Equity and rule state are owned by the trading
// subsystems; this service only acks so the bridge stops retrying.
func (wc *WebhookController) HandleBridgeCallback(c *fiber.Ctx) error {
	log.Printf("[Webhook] bridge callback: %s", c.Body())
	return c.JSON(fiber.Map{"received": true})
}

// parse picks the adapter for an attributed delivery and falls back to the
// gateway-agnostic field resolution for redirects that do not name one.
func (wc *WebhookController) parse(gatewayName string, headers map[string]string, body []byte) (*gateway.WebhookEvent, string, error) {
	if gatewayName != "" {
		if adapter, err := wc.Registry.Resolve(gatewayName); err == nil {
			event, perr := adapter.ParseWebhookData(body)
			if perr != nil {
				return nil, "", perr
			}
			return event, gatewayName, nil
		}
	}
	return gateway.ParseUnattributed(body)
}

// respond finishes the request. GET deliveries are browser redirects, so the
// user always lands on a payment page; order id and amount travel along as
// display hints only, never as authoritative status.
func (wc *WebhookController) respond(c *fiber.Ctx, isGET bool, event *gateway.WebhookEvent, payload fiber.Map) error {
	if !isGET {
		return c.JSON(payload)
	}
	page := "success"
	if event.Status == gateway.StatusFailed {
		page = "failed"
	}
	return c.Redirect(fmt.Sprintf("%s/payment/%s?orderId=%s&amount=%v",
		wc.FrontendURL, page, event.OrderID, event.Amount), fiber.StatusFound)
}

func (wc *WebhookController) sharedSecretOK(c *fiber.Ctx, headers map[string]string) bool {
	got := headerLookup(headers, "X-Webhook-Secret")
	if got == "" {
		got = headerLookup(headers, "X-Api-Secret")
	}
	if got == "" {
		got = c.Query("secret")
	}
	return got == wc.SharedSecret
}

func (wc *WebhookController) audit(entry *models.WebhookLog) {
	if err := wc.WebhookLogs.Create(entry); err != nil {
		log.Printf("[Webhook] audit write failed: %v", err)
	}
}

// queryPayload turns GET query parameters into the same JSON shape a POST
// body would carry.
func queryPayload(c *fiber.Ctx) []byte {
	params := c.Queries()
	delete(params, "secret")
	raw, err := json.Marshal(params)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

func flattenHeaders(in map[string][]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func headerLookup(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
