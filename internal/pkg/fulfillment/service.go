// Package fulfillment turns a successful payment event into a provisioned
// trading account and its side effects. It runs only for the webhook
// delivery that wins the order's atomic pending->paid transition.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/app/repository"
	"github.com/sharkfunded/platform/internal/pkg/classify"
	"github.com/sharkfunded/platform/internal/pkg/gateway"
	"github.com/sharkfunded/platform/internal/pkg/mt5bridge"
)

// DefaultCommissionRate applies when neither the order metadata nor a coupon
// carries an explicit affiliate rate.
const DefaultCommissionRate = 0.15

const competitionLeverage = 100

// Repository is the narrow persistence surface the orchestrator needs.
// *repository.Repositories satisfies it through NewRepositoryAdapter; tests
// inject an in-memory fake.
type Repository interface {
	GetOrder(orderID string) (*models.PaymentOrder, error)
	MarkOrderPaid(orderID, paymentID, paymentMethod string) (*models.PaymentOrder, error)
	LinkChallenge(orderID string, challengeID uint) error
	GetUser(id uint) (*models.User, error)
	CreateChallenge(challenge *models.Challenge) error
	GetChallengeForOrder(orderID string) (*models.Challenge, error)
	AddParticipant(participant *models.CompetitionParticipant) (bool, error)
	CreateEarning(earning *models.AffiliateEarning) (bool, error)
	IncrementCommission(userID uint, amount float64) error
	GetAccountTypeByName(name string) (*models.AccountType, error)
	MarkAuditProcessed(id uint, processingError string) error
}

// Provisioner creates trading accounts on the external bridge.
type Provisioner interface {
	CreateAccount(ctx context.Context, params mt5bridge.CreateAccountParams) (*mt5bridge.Account, error)
}

// Mailer sends account credentials to the buyer. Optional; a nil Mailer
// skips the credential mail.
type Mailer interface {
	SendAccountCredentials(to, name string, accountSize float64, login int64, masterPassword, investorPassword, server string) error
}

// Outcome reports what a single payment event delivery did.
type Outcome struct {
	OrderID     string `json:"order_id"`
	Applied     bool   `json:"applied"`
	Duplicate   bool   `json:"duplicate"`
	Provisioned bool   `json:"provisioned"`
	ChallengeID *uint  `json:"challenge_id,omitempty"`
	Message     string `json:"message"`
}

type Service struct {
	store          Repository
	provisioner    Provisioner
	mailer         Mailer
	callbackURL    string
	commissionRate float64
}

// NewService wires the orchestrator. callbackURL is where the bridge reports
// account events back to.
func NewService(store Repository, provisioner Provisioner, mailer Mailer, callbackURL string) *Service {
	return &Service{
		store:          store,
		provisioner:    provisioner,
		mailer:         mailer,
		callbackURL:    callbackURL,
		commissionRate: DefaultCommissionRate,
	}
}

// ProcessPaymentEvent applies one normalized payment event. Non-success
// events and duplicate deliveries are no-ops; the first success delivery per
// order wins the atomic transition and runs provisioning plus side effects.
// auditID, when non-zero, names the audit entry to stamp on completion.
func (s *Service) ProcessPaymentEvent(ctx context.Context, event *gateway.WebhookEvent, auditID uint) (*Outcome, error) {
	if event.OrderID == "" {
		return nil, errors.New("payment event carries no order id")
	}

	if event.Status != gateway.StatusSuccess {
		log.Printf("[Fulfillment] order %s: payment not successful (status=%s)", event.OrderID, event.Status)
		return &Outcome{OrderID: event.OrderID, Message: "Payment not successful"}, nil
	}

	order, err := s.store.MarkOrderPaid(event.OrderID, event.PaymentID, paymentMethodOrDefault(event.PaymentMethod))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyProcessed) {
			log.Printf("[Fulfillment] order %s: already processed, skipping", event.OrderID)
			return &Outcome{OrderID: event.OrderID, Duplicate: true, Message: "Order already processed"}, nil
		}
		// Datastore failure on the transition itself is the only fatal path.
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	outcome := s.fulfill(ctx, order)
	if auditID != 0 {
		if err := s.store.MarkAuditProcessed(auditID, processingErrorFor(outcome)); err != nil {
			log.Printf("[Fulfillment] order %s: marking audit entry %d failed: %v", order.OrderID, auditID, err)
		}
	}
	return outcome, nil
}

// Reprovision re-runs provisioning for a paid order that never got an
// account, outside webhook delivery. It never touches the payment status.
func (s *Service) Reprovision(ctx context.Context, orderID string) (*Outcome, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.Status != models.OrderStatusPaid {
		return nil, fmt.Errorf("order %s is %s, only paid orders can be provisioned", orderID, order.Status)
	}
	if order.IsAccountCreated {
		return &Outcome{OrderID: orderID, Duplicate: true, ChallengeID: order.ChallengeID, Message: "Account already created"}, nil
	}

	// A prior run may have created the account and failed only on the order
	// link. Repair the link instead of provisioning a second account.
	if existing, err := s.store.GetChallengeForOrder(orderID); err == nil && existing != nil {
		if err := s.store.LinkChallenge(orderID, existing.ID); err != nil {
			return nil, fmt.Errorf("relink challenge %d: %w", existing.ID, err)
		}
		log.Printf("[Fulfillment] order %s: relinked existing challenge %d", orderID, existing.ID)
		return &Outcome{OrderID: orderID, Duplicate: true, ChallengeID: &existing.ID, Message: "Account already created"}, nil
	}

	return s.fulfill(ctx, order), nil
}

// fulfill runs the post-payment pipeline. Each side effect after account
// creation is fault-isolated: its failure is logged and recorded but never
// undoes an earlier step, and the consumed transition ticket means the
// pipeline is never re-triggered by redelivery.
func (s *Service) fulfill(ctx context.Context, order *models.PaymentOrder) *Outcome {
	outcome := &Outcome{OrderID: order.OrderID, Applied: true}

	// 1. Buyer profile for account naming.
	fullName, email := "Trader", "noemail@sharkfunded.com"
	user, err := s.store.GetUser(order.UserID)
	if err != nil {
		log.Printf("[Fulfillment] order %s: buyer profile lookup failed: %v", order.OrderID, err)
		user = nil
	} else {
		if user.FullName != "" {
			fullName = user.FullName
		}
		if user.Email != "" {
			email = user.Email
		}
	}

	// 2. Classification.
	group, leverage := s.groupAndLeverage(order)
	result := classify.Classify(classify.Input{
		ProductName:   order.AccountTypeName,
		IsCompetition: order.IsCompetition(),
		MetadataType:  order.Metadata.Type,
		DefaultGroup:  group,
	})
	if result.ChallengeType == classify.TypeUnclassified {
		log.Printf("[Fulfillment] order %s: product %q did not classify, provisioning into %s anyway",
			order.OrderID, order.AccountTypeName, result.TradingGroup)
	}

	// 3. External provisioning. Failure leaves the order paid but unlinked;
	// that state is recoverable via Reprovision, not fatal.
	account, err := s.provisioner.CreateAccount(ctx, mt5bridge.CreateAccountParams{
		Name:        fullName,
		Email:       email,
		Group:       result.TradingGroup,
		Leverage:    leverage,
		Balance:     order.AccountSize,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		log.Printf("[Fulfillment] order %s: provisioning failed: %v", order.OrderID, err)
		outcome.Message = "Payment received, account provisioning pending"
		return outcome
	}

	// 4. Challenge record from returned credentials.
	challenge := &models.Challenge{
		UserID:           order.UserID,
		OrderID:          order.OrderID,
		ChallengeType:    result.ChallengeType,
		TradingGroup:     result.TradingGroup,
		InitialBalance:   order.AccountSize,
		CurrentBalance:   order.AccountSize,
		CurrentEquity:    order.AccountSize,
		StartOfDayEquity: order.AccountSize,
		Status:           models.ChallengeStatusActive,
		Login:            account.Login,
		MasterPassword:   account.Password,
		InvestorPassword: account.InvestorPassword,
		Server:           account.Server,
		Platform:         order.Platform,
		Leverage:         leverage,
		CompetitionID:    order.Metadata.CompetitionID,
	}
	if err := s.store.CreateChallenge(challenge); err != nil {
		log.Printf("[Fulfillment] order %s: challenge insert failed: %v", order.OrderID, err)
		outcome.Message = "Payment received, account provisioning pending"
		return outcome
	}
	outcome.Provisioned = true
	outcome.ChallengeID = &challenge.ID

	// 5. Competition enrollment, isolated.
	if order.IsCompetition() && order.Metadata.CompetitionID != nil {
		created, err := s.store.AddParticipant(&models.CompetitionParticipant{
			CompetitionID: *order.Metadata.CompetitionID,
			UserID:        order.UserID,
			ChallengeID:   &challenge.ID,
		})
		if err != nil {
			log.Printf("[Fulfillment] order %s: competition enrollment failed: %v", order.OrderID, err)
		} else if created {
			log.Printf("[Fulfillment] order %s: registered for competition %d", order.OrderID, *order.Metadata.CompetitionID)
		}
	}

	// 6. Link the order to its challenge.
	if err := s.store.LinkChallenge(order.OrderID, challenge.ID); err != nil {
		log.Printf("[Fulfillment] order %s: linking challenge %d failed: %v", order.OrderID, challenge.ID, err)
	}

	// 7. Affiliate commission, isolated.
	if user != nil {
		s.payCommission(order, user)
	}

	// 8. Credentials mail, isolated.
	if s.mailer != nil {
		if err := s.mailer.SendAccountCredentials(email, fullName, order.AccountSize,
			account.Login, account.Password, account.InvestorPassword, account.Server); err != nil {
			log.Printf("[Fulfillment] order %s: credential mail failed: %v", order.OrderID, err)
		}
	}

	outcome.Message = "Account created successfully"
	return outcome
}

// payCommission credits the buyer's referrer once per order. The metadata
// affiliate id (set by coupon checkout) takes precedence over the profile's
// referred_by link.
func (s *Service) payCommission(order *models.PaymentOrder, user *models.User) {
	var referrerID uint
	switch {
	case order.Metadata.AffiliateID != nil:
		referrerID = *order.Metadata.AffiliateID
	case user.ReferredBy != nil:
		referrerID = *user.ReferredBy
	default:
		return
	}
	if referrerID == 0 || referrerID == user.ID {
		return
	}

	rate := s.commissionRate
	if order.Metadata.CommissionRate != nil && *order.Metadata.CommissionRate > 0 {
		rate = *order.Metadata.CommissionRate
	}
	amount := math.Round(order.Amount*rate*100) / 100
	if amount <= 0 {
		return
	}

	created, err := s.store.CreateEarning(&models.AffiliateEarning{
		ReferrerID:     referrerID,
		ReferredUserID: user.ID,
		OrderID:        order.OrderID,
		OrderAmount:    order.Amount,
		Rate:           rate,
		Amount:         amount,
		CommissionType: models.CommissionTypePurchase,
		Status:         models.EarningStatusPending,
		Description:    fmt.Sprintf("Commission for order %s", order.OrderID),
	})
	if err != nil {
		log.Printf("[Fulfillment] order %s: affiliate earning insert failed: %v", order.OrderID, err)
		return
	}
	if !created {
		return
	}
	if err := s.store.IncrementCommission(referrerID, amount); err != nil {
		log.Printf("[Fulfillment] order %s: commission total update failed: %v", order.OrderID, err)
	}
}

// groupAndLeverage picks the provisioning defaults before classification
// gets its say on the group.
func (s *Service) groupAndLeverage(order *models.PaymentOrder) (string, int) {
	group := order.Metadata.TradingGroup
	leverage := order.Metadata.Leverage

	if accountType, err := s.store.GetAccountTypeByName(order.AccountTypeName); err == nil {
		if group == "" {
			group = accountType.TradingGroup
		}
		if leverage == 0 {
			leverage = accountType.Leverage
		}
	}
	if order.IsCompetition() {
		leverage = competitionLeverage
	}
	if leverage == 0 {
		leverage = 100
	}
	return group, leverage
}

func paymentMethodOrDefault(method string) string {
	if method == "" {
		return "gateway"
	}
	return method
}

func processingErrorFor(outcome *Outcome) string {
	if outcome.Provisioned {
		return ""
	}
	return outcome.Message
}
