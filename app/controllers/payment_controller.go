package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/gateway"
	"github.com/sharkfunded/platform/internal/pkg/pricing"
)

// PaymentController handles checkout: it quotes the price server-side,
// creates the pending order and hands the buyer the gateway's payment URL.
type PaymentController struct {
	Registry *gateway.Registry
	Repos    *repository.Repositories
}

var validate = validator.New()

// CreateOrderRequest is the checkout payload. Price is never taken from the
// client. A request without a user id runs guest checkout: the buyer gets a
// profile keyed on their email.
type CreateOrderRequest struct {
	Gateway       string  `json:"gateway" validate:"required"`
	Model         string  `json:"model" validate:"omitempty,oneof=lite pro competition"`
	Type          string  `json:"type" validate:"omitempty,oneof=instant 1-step 2-step"`
	AccountSize   float64 `json:"account_size"`
	CompetitionID *uint   `json:"competition_id"`
	CouponCode    string  `json:"coupon_code"`
	UserID        uint    `json:"user_id"`
	Email         string  `json:"email" validate:"omitempty,email"`
	FullName      string  `json:"full_name"`
}

// HandleCreateOrder creates a pending order and the gateway checkout session.
func (pc *PaymentController) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	adapter, err := pc.Registry.Resolve(req.Gateway)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := pc.resolveBuyer(&req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var order *models.PaymentOrder
	if req.Model == models.OrderModelCompetition {
		order, err = pc.buildCompetitionOrder(&req, user)
	} else {
		order, err = pc.buildChallengeOrder(&req, user)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	order.PaymentGateway = adapter.Name()

	if err := pc.Repos.Order.Create(order); err != nil {
		log.Printf("[Payment] order insert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create order"})
	}

	result, err := adapter.CreateOrder(c.Context(), gateway.CreateOrderParams{
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		CustomerEmail: user.Email,
		CustomerName:  user.FullName,
		Description:   order.AccountTypeName,
	})
	if err != nil {
		log.Printf("[Payment] gateway %s create order failed: %v", adapter.Name(), err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment gateway unavailable"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order": fiber.Map{
			"id":       order.ID,
			"order_id": order.OrderID,
		},
		"payment_url":    result.PaymentURL,
		"coupon_applied": order.DiscountAmount > 0,
	})
}

// HandleListGateways lists the configured payment gateways.
func (pc *PaymentController) HandleListGateways(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"gateways": pc.Registry.Names()})
}

// HandleGetOrder reports an order's current status. The payment pages poll
// this; redirect query parameters are display hints only.
func (pc *PaymentController) HandleGetOrder(c *fiber.Ctx) error {
	orderID := c.Params("orderID")
	order, err := pc.Repos.Order.GetByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	return c.JSON(fiber.Map{"order": order})
}

// resolveBuyer loads the buyer or auto-registers a guest profile so checkout
// never blocks on a missing account.
func (pc *PaymentController) resolveBuyer(req *CreateOrderRequest) (*models.User, error) {
	if req.UserID != 0 {
		user, err := pc.Repos.User.GetByID(req.UserID)
		if err != nil {
			return nil, errors.New("buyer not found")
		}
		return user, nil
	}
	if req.Email == "" {
		return nil, errors.New("email is required for guest checkout")
	}

	user, err := pc.Repos.User.GetByEmail(req.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("buyer lookup failed")
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = "Trader"
	}
	guest, err := models.CreateUser(fullName, req.Email, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if err := pc.Repos.User.Create(guest); err != nil {
		return nil, errors.New("guest registration failed")
	}
	log.Printf("[Payment] guest profile created for %s", req.Email)
	return guest, nil
}

func (pc *PaymentController) buildChallengeOrder(req *CreateOrderRequest, user *models.User) (*models.PaymentOrder, error) {
	model := req.Model
	if model == "" {
		model = models.OrderModelLite
	}
	if req.Type == "" {
		return nil, errors.New("challenge type is required")
	}
	if !pricing.ValidSize(req.AccountSize) {
		return nil, fmt.Errorf("unsupported account size %v", req.AccountSize)
	}

	amount, err := pricing.Price(req.Type, model, req.AccountSize)
	if err != nil {
		return nil, err
	}

	order := &models.PaymentOrder{
		OrderID:         generateOrderID("SF-ORDER"),
		UserID:          user.ID,
		Currency:        "USD",
		Status:          models.OrderStatusPending,
		AccountTypeName: accountTypeName(req.Type, model),
		AccountSize:     req.AccountSize,
		Platform:        "MT5",
		Model:           model,
		Metadata:        models.OrderMetadata{Type: req.Type},
	}

	if req.CouponCode != "" {
		amount = pc.applyCoupon(order, req.CouponCode, amount)
	}
	order.Amount = amount

	if accountType, err := pc.Repos.Catalog.GetAccountTypeByName(order.AccountTypeName); err == nil {
		order.AccountTypeID = &accountType.ID
		order.Metadata.TradingGroup = accountType.TradingGroup
		order.Metadata.Leverage = accountType.Leverage
	}
	return order, nil
}

func (pc *PaymentController) buildCompetitionOrder(req *CreateOrderRequest, user *models.User) (*models.PaymentOrder, error) {
	if req.CompetitionID == nil {
		return nil, errors.New("competition_id is required")
	}
	// Competition entries settle through sharkpay only.
	if !strings.EqualFold(req.Gateway, "sharkpay") {
		return nil, errors.New("competition entries are payable via sharkpay only")
	}

	competition, err := pc.Repos.Competition.GetByID(*req.CompetitionID)
	if err != nil {
		return nil, errors.New("competition not found")
	}
	if competition.Status == models.CompetitionStatusFinished {
		return nil, errors.New("competition already finished")
	}

	fee := competition.EntryFee
	if fee <= 0 {
		fee = pricing.CompetitionEntryFee
	}

	return &models.PaymentOrder{
		OrderID:         generateOrderID("SF-COMP"),
		UserID:          user.ID,
		Amount:          fee,
		Currency:        "USD",
		Status:          models.OrderStatusPending,
		AccountTypeName: competition.Title,
		AccountSize:     req.AccountSize,
		Platform:        "MT5",
		Model:           models.OrderModelCompetition,
		Metadata: models.OrderMetadata{
			Type:             "competition",
			CompetitionID:    &competition.ID,
			CompetitionTitle: competition.Title,
		},
	}, nil
}

// applyCoupon discounts the amount and tags the order with the coupon's
// affiliate terms. A bad code never blocks checkout.
func (pc *PaymentController) applyCoupon(order *models.PaymentOrder, code string, amount float64) float64 {
	coupon, err := pc.Repos.Catalog.GetActiveCouponByCode(code)
	if err != nil || !coupon.Usable(time.Now()) {
		log.Printf("[Payment] coupon %q not applicable", code)
		return amount
	}

	total, discount := pricing.ApplyDiscount(amount, coupon.DiscountPct)
	order.CouponCode = &coupon.Code
	order.DiscountAmount = discount
	if coupon.AffiliateID != nil {
		order.Metadata.AffiliateID = coupon.AffiliateID
		if coupon.CommissionRate != nil && *coupon.CommissionRate > 0 {
			// Coupons carry the rate as a percent; metadata holds a fraction.
			rate := *coupon.CommissionRate / 100
			order.Metadata.CommissionRate = &rate
		}
	}
	if err := pc.Repos.Catalog.IncrementCouponUse(coupon.ID); err != nil {
		log.Printf("[Payment] coupon %q use count update failed: %v", code, err)
	}
	return total
}

func accountTypeName(challengeType, model string) string {
	if model == models.OrderModelPro {
		switch challengeType {
		case "instant":
			return "Instant Funding Pro"
		case "1-step":
			return "1 Step Pro"
		case "2-step":
			return "2 Step Pro"
		}
	}
	switch challengeType {
	case "instant":
		return "Instant Funding"
	case "1-step":
		return "1 Step"
	case "2-step":
		return "2 Step"
	}
	return ""
}

// generateOrderID builds a unique public order id, millisecond timestamp
// plus random suffix.
func generateOrderID(prefix string) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
