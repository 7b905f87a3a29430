package repository

import (
	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for payment order operations
type OrderRepository interface {
	Create(order *models.PaymentOrder) error
	GetByOrderID(orderID string) (*models.PaymentOrder, error)
	// MarkPaid performs the single atomic pending->paid transition and
	// returns the updated order. Returns ErrAlreadyProcessed when the order
	// is already paid or does not exist.
	MarkPaid(orderID, paymentID, paymentMethod string) (*models.PaymentOrder, error)
	LinkChallenge(orderID string, challengeID uint) error
	ListByUserID(userID uint, offset, limit int) ([]models.PaymentOrder, error)
	ListUnprovisioned(limit int) ([]models.PaymentOrder, error)
	CountByStatus(status string) (int64, error)
}

// UserRepository defines the interface for buyer profile operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	IncrementCommission(userID uint, amount float64) error
}

// ChallengeRepository defines the interface for provisioned account records
type ChallengeRepository interface {
	Create(challenge *models.Challenge) error
	GetByID(id uint) (*models.Challenge, error)
	GetByOrderID(orderID string) (*models.Challenge, error)
	GetByLogin(login int64) (*models.Challenge, error)
	ListByUserID(userID uint) ([]models.Challenge, error)
}

// AffiliateRepository defines the interface for commission records
type AffiliateRepository interface {
	// CreateEarning inserts at most one earning per order; the boolean
	// reports whether a row was actually created.
	CreateEarning(earning *models.AffiliateEarning) (bool, error)
	ListByReferrer(referrerID uint, offset, limit int) ([]models.AffiliateEarning, error)
}

// CompetitionRepository defines the interface for competition enrollment
type CompetitionRepository interface {
	GetByID(id uint) (*models.Competition, error)
	// AddParticipant enrolls a user once; re-enrollment is a no-op and the
	// boolean reports whether a row was actually created.
	AddParticipant(participant *models.CompetitionParticipant) (bool, error)
	CountParticipants(competitionID uint) (int64, error)
}

// WebhookLogRepository defines the interface for the audit log
type WebhookLogRepository interface {
	Create(entry *models.WebhookLog) error
	MarkProcessed(id uint, processingError string) error
	GetByID(id uint) (*models.WebhookLog, error)
	ListRecent(limit int) ([]models.WebhookLog, error)
}

// CatalogRepository defines the interface for sellable-product configuration:
// account types, coupons and per-gateway merchant credentials.
type CatalogRepository interface {
	GetAccountTypeByName(name string) (*models.AccountType, error)
	GetActiveCouponByCode(code string) (*models.Coupon, error)
	IncrementCouponUse(id uint) error
	GetMerchantConfig(gatewayName string) (*models.MerchantConfig, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Order       OrderRepository
	User        UserRepository
	Challenge   ChallengeRepository
	Affiliate   AffiliateRepository
	Competition CompetitionRepository
	WebhookLog  WebhookLogRepository
	Catalog     CatalogRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:       NewOrderRepository(db),
		User:        NewUserRepository(db),
		Challenge:   NewChallengeRepository(db),
		Affiliate:   NewAffiliateRepository(db),
		Competition: NewCompetitionRepository(db),
		WebhookLog:  NewWebhookLogRepository(db),
		Catalog:     NewCatalogRepository(db),
	}
}
