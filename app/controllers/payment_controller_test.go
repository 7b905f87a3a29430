package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/gateway"
)

// checkoutGateway stands in for a provider adapter at checkout.
type checkoutGateway struct {
	mu   sync.Mutex
	name string
	last gateway.CreateOrderParams
}

func (g *checkoutGateway) Name() string { return g.name }

func (g *checkoutGateway) CreateOrder(_ context.Context, params gateway.CreateOrderParams) (*gateway.CreateOrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = params
	return &gateway.CreateOrderResult{
		GatewayOrderID: "gw-order-1",
		PaymentURL:     "https://pay.test/checkout/gw-order-1",
	}, nil
}

func (g *checkoutGateway) VerifyWebhook(map[string]string, []byte) bool { return true }

func (g *checkoutGateway) ParseWebhookData([]byte) (*gateway.WebhookEvent, error) {
	return nil, assert.AnError
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID uint
	orders []*models.PaymentOrder
}

func (f *fakeOrderRepo) Create(order *models.PaymentOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	clone := *order
	f.orders = append(f.orders, &clone)
	return nil
}

func (f *fakeOrderRepo) GetByOrderID(orderID string) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.OrderID == orderID {
			clone := *o
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) MarkPaid(string, string, string) (*models.PaymentOrder, error) {
	return nil, repository.ErrAlreadyProcessed
}

func (f *fakeOrderRepo) LinkChallenge(string, uint) error { return nil }

func (f *fakeOrderRepo) ListByUserID(uint, int, int) ([]models.PaymentOrder, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListUnprovisioned(int) ([]models.PaymentOrder, error) { return nil, nil }

func (f *fakeOrderRepo) CountByStatus(string) (int64, error) { return 0, nil }

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.byID[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(*models.User) error { return nil }

func (f *fakeUserRepo) IncrementCommission(uint, float64) error { return nil }

type fakeCatalogRepo struct {
	mu           sync.Mutex
	accountTypes map[string]*models.AccountType
	coupons      map[string]*models.Coupon
	couponUses   map[uint]int
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		accountTypes: make(map[string]*models.AccountType),
		coupons:      make(map[string]*models.Coupon),
		couponUses:   make(map[uint]int),
	}
}

func (f *fakeCatalogRepo) GetAccountTypeByName(name string) (*models.AccountType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.accountTypes[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *at
	return &clone, nil
}

func (f *fakeCatalogRepo) GetActiveCouponByCode(code string) (*models.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.coupons[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCatalogRepo) IncrementCouponUse(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.couponUses[id]++
	return nil
}

func (f *fakeCatalogRepo) GetMerchantConfig(string) (*models.MerchantConfig, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeCompetitionRepo struct {
	mu   sync.Mutex
	byID map[uint]*models.Competition
}

func newFakeCompetitionRepo() *fakeCompetitionRepo {
	return &fakeCompetitionRepo{byID: make(map[uint]*models.Competition)}
}

func (f *fakeCompetitionRepo) GetByID(id uint) (*models.Competition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCompetitionRepo) AddParticipant(*models.CompetitionParticipant) (bool, error) {
	return true, nil
}

func (f *fakeCompetitionRepo) CountParticipants(uint) (int64, error) { return 0, nil }

type checkoutTestEnv struct {
	app     *fiber.App
	gw      *checkoutGateway
	orders  *fakeOrderRepo
	users   *fakeUserRepo
	catalog *fakeCatalogRepo
	comps   *fakeCompetitionRepo
}

func newCheckoutTestEnv(gatewayName string) *checkoutTestEnv {
	env := &checkoutTestEnv{
		gw:      &checkoutGateway{name: gatewayName},
		orders:  &fakeOrderRepo{},
		users:   newFakeUserRepo(),
		catalog: newFakeCatalogRepo(),
		comps:   newFakeCompetitionRepo(),
	}
	pc := &PaymentController{
		Registry: gateway.NewRegistry(env.gw),
		Repos: &repository.Repositories{
			Order:       env.orders,
			User:        env.users,
			Catalog:     env.catalog,
			Competition: env.comps,
		},
	}
	env.app = fiber.New()
	env.app.Post("/api/payments/create-order", pc.HandleCreateOrder)
	env.app.Get("/api/payments/orders/:orderID", pc.HandleGetOrder)
	return env
}

func (e *checkoutTestEnv) seedBuyer() uint {
	u := &models.User{FullName: "Jane Trader", Email: "jane@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	_ = e.users.Create(u)
	return u.ID
}

func postCheckout(t *testing.T, app *fiber.App, payload map[string]interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-order", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHandleCreateOrderChallenge(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")
	userID := env.seedBuyer()
	env.catalog.accountTypes["2 Step"] = &models.AccountType{
		ID:           4,
		Name:         "2 Step",
		TradingGroup: `demo\Lite`,
		Leverage:     100,
	}

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":      "sharkpay",
		"model":        "lite",
		"type":         "2-step",
		"account_size": 100000,
		"user_id":      userID,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeJSONBody(t, resp)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "https://pay.test/checkout/gw-order-1", payload["payment_url"])
	assert.Equal(t, false, payload["coupon_applied"])

	require.Len(t, env.orders.orders, 1)
	order := env.orders.orders[0]
	// Price is quoted server-side, never taken from the client.
	assert.Equal(t, 449.0, order.Amount)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "2 Step", order.AccountTypeName)
	assert.Equal(t, "sharkpay", order.PaymentGateway)
	assert.Regexp(t, `^SF-ORDER-`, order.OrderID)
	assert.Equal(t, "2-step", order.Metadata.Type)
	assert.Equal(t, `demo\Lite`, order.Metadata.TradingGroup)
	assert.Equal(t, 100, order.Metadata.Leverage)

	assert.Equal(t, order.OrderID, env.gw.last.OrderID)
	assert.Equal(t, 449.0, env.gw.last.Amount)
	assert.Equal(t, "jane@example.com", env.gw.last.CustomerEmail)
}

func TestHandleCreateOrderCouponCommission(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")
	userID := env.seedBuyer()

	affiliateID := uint(3)
	commissionPct := 20.0
	env.catalog.coupons["SAVE15"] = &models.Coupon{
		ID:             11,
		Code:           "SAVE15",
		DiscountPct:    15,
		AffiliateID:    &affiliateID,
		CommissionRate: &commissionPct,
		IsActive:       true,
	}

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":      "sharkpay",
		"model":        "lite",
		"type":         "2-step",
		"account_size": 50000,
		"user_id":      userID,
		"coupon_code":  "SAVE15",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeJSONBody(t, resp)
	assert.Equal(t, true, payload["coupon_applied"])

	require.Len(t, env.orders.orders, 1)
	order := env.orders.orders[0]
	// 229 list price, 15% off.
	assert.Equal(t, 194.65, order.Amount)
	assert.Equal(t, 34.35, order.DiscountAmount)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE15", *order.CouponCode)

	require.NotNil(t, order.Metadata.AffiliateID)
	assert.Equal(t, affiliateID, *order.Metadata.AffiliateID)
	// The coupon's percent rate lands in metadata as a fraction.
	require.NotNil(t, order.Metadata.CommissionRate)
	assert.InDelta(t, 0.20, *order.Metadata.CommissionRate, 1e-9)

	assert.Equal(t, 1, env.catalog.couponUses[11])
}

func TestHandleCreateOrderGuestRegistration(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":      "sharkpay",
		"model":        "lite",
		"type":         "1-step",
		"account_size": 10000,
		"email":        "guest@example.com",
		"full_name":    "Guest Buyer",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	guest, err := env.users.GetByEmail("guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Guest Buyer", guest.FullName)
	assert.NotEmpty(t, guest.Password)

	require.Len(t, env.orders.orders, 1)
	assert.Equal(t, guest.ID, env.orders.orders[0].UserID)
	assert.Equal(t, 69.0, env.orders.orders[0].Amount)
}

func TestHandleCreateOrderCompetitionGatewayOnly(t *testing.T) {
	env := newCheckoutTestEnv("paymid")
	userID := env.seedBuyer()
	env.comps.byID[5] = &models.Competition{ID: 5, Title: "Weekly Shark", EntryFee: 9, Status: models.CompetitionStatusActive}

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":        "paymid",
		"model":          "competition",
		"competition_id": 5,
		"user_id":        userID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	payload := decodeJSONBody(t, resp)
	assert.Contains(t, payload["error"], "sharkpay only")
	assert.Empty(t, env.orders.orders)
}

func TestHandleCreateOrderCompetitionFinished(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")
	userID := env.seedBuyer()
	env.comps.byID[5] = &models.Competition{ID: 5, Title: "Weekly Shark", EntryFee: 9, Status: models.CompetitionStatusFinished}

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":        "sharkpay",
		"model":          "competition",
		"competition_id": 5,
		"user_id":        userID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	payload := decodeJSONBody(t, resp)
	assert.Contains(t, payload["error"], "finished")
	assert.Empty(t, env.orders.orders)
}

func TestHandleCreateOrderCompetitionEntry(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")
	userID := env.seedBuyer()
	// Entry fee falls back to the platform default when unset.
	env.comps.byID[6] = &models.Competition{ID: 6, Title: "Monthly Shark", Status: models.CompetitionStatusActive}

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":        "sharkpay",
		"model":          "competition",
		"competition_id": 6,
		"user_id":        userID,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	require.Len(t, env.orders.orders, 1)
	order := env.orders.orders[0]
	assert.Equal(t, 9.0, order.Amount)
	assert.Regexp(t, `^SF-COMP-`, order.OrderID)
	assert.Equal(t, models.OrderModelCompetition, order.Model)
	require.NotNil(t, order.Metadata.CompetitionID)
	assert.Equal(t, uint(6), *order.Metadata.CompetitionID)
	assert.Equal(t, "competition", order.Metadata.Type)
}

func TestHandleCreateOrderUnsupportedSize(t *testing.T) {
	env := newCheckoutTestEnv("sharkpay")
	userID := env.seedBuyer()

	resp := postCheckout(t, env.app, map[string]interface{}{
		"gateway":      "sharkpay",
		"model":        "lite",
		"type":         "2-step",
		"account_size": 1234,
		"user_id":      userID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	defer resp.Body.Close()
	assert.Empty(t, env.orders.orders)
}

func TestAccountTypeName(t *testing.T) {
	tests := []struct {
		name          string
		challengeType string
		model         string
		want          string
	}{
		{name: "lite instant", challengeType: "instant", model: models.OrderModelLite, want: "Instant Funding"},
		{name: "lite one step", challengeType: "1-step", model: models.OrderModelLite, want: "1 Step"},
		{name: "lite two step", challengeType: "2-step", model: models.OrderModelLite, want: "2 Step"},
		{name: "pro instant", challengeType: "instant", model: models.OrderModelPro, want: "Instant Funding Pro"},
		{name: "pro one step", challengeType: "1-step", model: models.OrderModelPro, want: "1 Step Pro"},
		{name: "pro two step", challengeType: "2-step", model: models.OrderModelPro, want: "2 Step Pro"},
		{name: "unknown type", challengeType: "3-step", model: models.OrderModelLite, want: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, accountTypeName(tc.challengeType, tc.model))
		})
	}
}

func TestGenerateOrderID(t *testing.T) {
	pattern := regexp.MustCompile(`^SF-ORDER-\d{13,}-[0-9a-f]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := generateOrderID("SF-ORDER")
		assert.Regexp(t, pattern, id)
		assert.False(t, seen[id], "order id %s generated twice", id)
		seen[id] = true
	}

	assert.Regexp(t, `^SF-COMP-`, generateOrderID("SF-COMP"))
}
