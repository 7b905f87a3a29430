package repository

import (
	"github.com/sharkfunded/platform/app/models"
	"gorm.io/gorm"
)

// catalogRepository implements the CatalogRepository interface
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository instance
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// GetAccountTypeByName retrieves an active account type by its product name
func (r *catalogRepository) GetAccountTypeByName(name string) (*models.AccountType, error) {
	var accountType models.AccountType
	err := r.db.Where("name = ? AND status = ?", name, "active").First(&accountType).Error
	if err != nil {
		return nil, err
	}
	return &accountType, nil
}

// GetActiveCouponByCode retrieves an active coupon by its code
func (r *catalogRepository) GetActiveCouponByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementCouponUse bumps the coupon's usage counter in a single UPDATE
func (r *catalogRepository) IncrementCouponUse(id uint) error {
	return r.db.Model(&models.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}

// GetMerchantConfig retrieves the active merchant credentials for a gateway
func (r *catalogRepository) GetMerchantConfig(gatewayName string) (*models.MerchantConfig, error) {
	var config models.MerchantConfig
	err := r.db.Where("gateway_name = ? AND is_active = ?", gatewayName, true).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}
