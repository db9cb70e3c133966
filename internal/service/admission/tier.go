package admission

import (
	"context"
	"strings"

	"InsightHub/internal/domain/models"
)

// ConfigTierStore resolves tiers from a configured pro-wallet list. The real
// source of truth lives in the external billing context; this stands in for
// it behind the same interface.
type ConfigTierStore struct {
	pro map[string]struct{}
}

// NewConfigTierStore builds a tier lookup from the configured wallet list.
func NewConfigTierStore(proWallets []string) *ConfigTierStore {
	pro := make(map[string]struct{}, len(proWallets))
	for _, w := range proWallets {
		pro[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &ConfigTierStore{pro: pro}
}

func (s *ConfigTierStore) Tier(_ context.Context, identifier string) models.Tier {
	if _, ok := s.pro[strings.ToLower(identifier)]; ok {
		return models.TierPro
	}
	return models.TierFree
}
