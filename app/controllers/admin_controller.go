package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/fulfillment"
)

// AdminController exposes the recovery surface for paid-but-unprovisioned
// orders and the webhook audit trail.
type AdminController struct {
	Service *fulfillment.Service
	Repos   *repository.Repositories
}

// HandleReprovisionOrder re-runs provisioning for a paid order that never got
// its account, without touching the payment status.
func (ac *AdminController) HandleReprovisionOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderID")

	outcome, err := ac.Service.Reprovision(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		log.Printf("[Admin] reprovision %s failed: %v", orderID, err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": outcome.Provisioned || outcome.Duplicate, "outcome": outcome})
}

// HandleListUnprovisioned lists paid orders still waiting for an account.
func (ac *AdminController) HandleListUnprovisioned(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	orders, err := ac.Repos.Order.ListUnprovisioned(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	return c.JSON(fiber.Map{"orders": orders, "count": len(orders)})
}

// HandleListWebhookLogs lists recent audit entries for replay diagnosis.
func (ac *AdminController) HandleListWebhookLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	entries, err := ac.Repos.WebhookLog.ListRecent(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	return c.JSON(fiber.Map{"webhooks": entries, "count": len(entries)})
}
