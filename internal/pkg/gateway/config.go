package gateway

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sharkfunded/platform/app/models"
	"github.com/sharkfunded/platform/internal/pkg/cache"
	"github.com/sharkfunded/platform/internal/pkg/env"
)

const credentialCacheTTL = 5 * time.Minute

// CredentialStore is the narrow read interface adapters need from the
// merchant config table.
type CredentialStore interface {
	GetMerchantConfig(gatewayName string) (*models.MerchantConfig, error)
}

// CredentialProvider hands adapters their credential set. CredentialSource is
// the production implementation; tests inject static values.
type CredentialProvider interface {
	Credentials(gatewayName string) MerchantCredentials
}

// CredentialSource resolves per-gateway credentials: active merchant config
// row first (read through redis), environment variables as fallback. Envs use
// the gateway name uppercased as prefix, e.g. SHARKPAY_API_KEY.
type CredentialSource struct {
	store CredentialStore
}

func NewCredentialSource(store CredentialStore) *CredentialSource {
	return &CredentialSource{store: store}
}

// Credentials returns the credential set for a gateway. DB lookup failures
// degrade to the env fallback so a config-table outage never blocks webhooks.
func (s *CredentialSource) Credentials(gatewayName string) MerchantCredentials {
	name := strings.ToLower(strings.TrimSpace(gatewayName))

	if creds, ok := s.cached(name); ok {
		return creds
	}

	if s.store != nil {
		cfg, err := s.store.GetMerchantConfig(name)
		if err == nil && cfg != nil && cfg.IsActive {
			creds := MerchantCredentials{
				APIKey:        cfg.APIKey,
				APISecret:     cfg.APISecret,
				WebhookSecret: cfg.WebhookSecret,
				MerchantID:    cfg.MerchantID,
			}
			s.remember(name, creds)
			return creds
		}
		if err != nil {
			log.Printf("merchant config lookup for %s failed, falling back to env: %v", name, err)
		}
	}

	prefix := strings.ToUpper(name)
	return MerchantCredentials{
		APIKey:        env.GetEnv(prefix+"_API_KEY", ""),
		APISecret:     env.GetEnv(prefix+"_API_SECRET", ""),
		WebhookSecret: env.GetEnv(prefix+"_WEBHOOK_SECRET", ""),
		MerchantID:    env.GetEnv(prefix+"_MERCHANT_ID", ""),
	}
}

func credentialCacheKey(name string) string {
	return fmt.Sprintf("gateway:config:%s", name)
}

func (s *CredentialSource) cached(name string) (MerchantCredentials, bool) {
	raw, err := cache.Get(credentialCacheKey(name))
	if err != nil {
		if !cache.IsNotFound(err) {
			log.Printf("credential cache read for %s failed: %v", name, err)
		}
		return MerchantCredentials{}, false
	}
	var creds MerchantCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return MerchantCredentials{}, false
	}
	return creds, true
}

func (s *CredentialSource) remember(name string, creds MerchantCredentials) {
	raw, err := json.Marshal(creds)
	if err != nil {
		return
	}
	if err := cache.Set(credentialCacheKey(name), raw, credentialCacheTTL); err != nil {
		log.Printf("credential cache write for %s failed: %v", name, err)
	}
}
