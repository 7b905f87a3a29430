package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/sharkfunded/platform/app/controllers"
	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/env"
	"github.com/sharkfunded/platform/internal/pkg/fulfillment"
	"github.com/sharkfunded/platform/internal/pkg/gateway"
	"github.com/sharkfunded/platform/internal/pkg/mail"
	"github.com/sharkfunded/platform/internal/pkg/middleware"
	"github.com/sharkfunded/platform/internal/pkg/mt5bridge"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repos := repository.GetGlobalRepositories()

	creds := gateway.NewCredentialSource(repos.Catalog)
	registry := gateway.NewRegistry(
		gateway.NewSharkPayFromEnv(creds),
		gateway.NewPaymidFromEnv(creds),
		gateway.NewEPayFromEnv(creds),
	)

	callbackURL := strings.TrimRight(env.GetEnv("BACKEND_URL", ""), "/") + "/api/webhooks/mt5"
	service := fulfillment.NewService(
		fulfillment.NewRepositoryAdapter(repos),
		mt5bridge.NewClientFromEnv(),
		mail.Mailer{},
		callbackURL,
	)

	webhooks := &controllers.WebhookController{
		Registry:     registry,
		Service:      service,
		WebhookLogs:  repos.WebhookLog,
		FrontendURL:  strings.TrimRight(env.GetEnv("FRONTEND_URL", ""), "/"),
		SharedSecret: env.GetEnv("WEBHOOK_SHARED_SECRET", ""),
		Counters:     true,
	}
	payments := &controllers.PaymentController{
		Registry: registry,
		Repos:    repos,
	}
	admin := &controllers.AdminController{
		Service: service,
		Repos:   repos,
	}

	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Gateways retry on non-2xx, so the webhook endpoint stays unthrottled.
	api.Get("/webhooks/payment", webhooks.HandlePaymentWebhook)
	api.Post("/webhooks/payment", webhooks.HandlePaymentWebhook)
	api.Post("/webhooks/mt5", webhooks.HandleBridgeCallback)

	pay := api.Group("/payments", limiter.New())
	pay.Get("/gateways", payments.HandleListGateways)
	pay.Post("/create-order", payments.HandleCreateOrder)
	pay.Get("/orders/:orderID", payments.HandleGetOrder)

	adm := api.Group("/admin", middleware.AdminAPIKeyMiddleware())
	adm.Get("/orders/unprovisioned", admin.HandleListUnprovisioned)
	adm.Post("/orders/:orderID/reprovision", admin.HandleReprovisionOrder)
	adm.Get("/webhooks", admin.HandleListWebhookLogs)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
