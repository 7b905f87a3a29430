package fulfillment

import (
	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/app/repository"
)

// repositoryAdapter maps the Repository surface onto the application's
// per-entity repositories.
type repositoryAdapter struct {
	repos *repository.Repositories
}

// NewRepositoryAdapter adapts the application repositories to the
// orchestrator's persistence interface.
func NewRepositoryAdapter(repos *repository.Repositories) Repository {
	return &repositoryAdapter{repos: repos}
}

func (a *repositoryAdapter) GetOrder(orderID string) (*models.PaymentOrder, error) {
	return a.repos.Order.GetByOrderID(orderID)
}

func (a *repositoryAdapter) MarkOrderPaid(orderID, paymentID, paymentMethod string) (*models.PaymentOrder, error) {
	return a.repos.Order.MarkPaid(orderID, paymentID, paymentMethod)
}

func (a *repositoryAdapter) LinkChallenge(orderID string, challengeID uint) error {
	return a.repos.Order.LinkChallenge(orderID, challengeID)
}

func (a *repositoryAdapter) GetUser(id uint) (*models.User, error) {
	return a.repos.User.GetByID(id)
}

func (a *repositoryAdapter) CreateChallenge(challenge *models.Challenge) error {
	return a.repos.Challenge.Create(challenge)
}

func (a *repositoryAdapter) GetChallengeForOrder(orderID string) (*models.Challenge, error) {
	return a.repos.Challenge.GetByOrderID(orderID)
}

func (a *repositoryAdapter) AddParticipant(participant *models.CompetitionParticipant) (bool, error) {
	return a.repos.Competition.AddParticipant(participant)
}

func (a *repositoryAdapter) CreateEarning(earning *models.AffiliateEarning) (bool, error) {
	return a.repos.Affiliate.CreateEarning(earning)
}

func (a *repositoryAdapter) IncrementCommission(userID uint, amount float64) error {
	return a.repos.User.IncrementCommission(userID, amount)
}

func (a *repositoryAdapter) GetAccountTypeByName(name string) (*models.AccountType, error) {
	return a.repos.Catalog.GetAccountTypeByName(name)
}

func (a *repositoryAdapter) MarkAuditProcessed(id uint, processingError string) error {
	return a.repos.WebhookLog.MarkProcessed(id, processingError)
}
