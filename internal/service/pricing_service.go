package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/NicolasOjea/ERP-STOCK-V3/internal/model"
	"github.com/NicolasOjea/ERP-STOCK-V3/internal/repository"
)

const promoCacheTTL = 60 * time.Second

// PricingService resolves the active promotion set for a tenant. The cache
// keeps the hot sale path off the promotions table; a stale window of up to
// promoCacheTTL is acceptable for pricing.
type PricingService interface {
	ActivePromos(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]model.Promocion, error)
}

type pricingService struct {
	repo  repository.PromocionRepository
	cache *redis.Client
}

// NewPricingService builds the provider. cache may be nil, in which case
// every call hits the repository.
func NewPricingService(repo repository.PromocionRepository, cache *redis.Client) PricingService {
	return &pricingService{repo: repo, cache: cache}
}

func promoCacheKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("promos:activas:%s", tenantID)
}

func (s *pricingService) ActivePromos(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]model.Promocion, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, promoCacheKey(tenantID)).Bytes(); err == nil {
			var cached []model.Promocion
			if err := json.Unmarshal(raw, &cached); err == nil {
				return filterVigentes(cached, now), nil
			}
			// Corrupt entry: fall through to the repository and overwrite it.
		}
	}

	promos, err := s.repo.GetActivas(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(promos); err == nil {
			if err := s.cache.Set(ctx, promoCacheKey(tenantID), raw, promoCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("cache de promociones: set falló")
			}
		}
	}
	return promos, nil
}

// filterVigentes re-checks the validity window on cache hits so a promotion
// expiring inside the TTL never outlives its vigencia.
func filterVigentes(promos []model.Promocion, now time.Time) []model.Promocion {
	out := promos[:0]
	for _, p := range promos {
		if p.Activa && !now.Before(p.VigenciaDesde) && !now.After(p.VigenciaHasta) {
			out = append(out, p)
		}
	}
	return out
}
