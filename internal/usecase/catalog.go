package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/cache"
	"github.com/polkiloo/prowriters/internal/config"
	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
)

const servicesCacheKey = "catalog:services"

// CatalogUseCase serves the read-mostly service catalog.
type CatalogUseCase struct {
	catalog repository.CatalogRepository
	cache   cache.Store
	ttl     time.Duration
	logger  *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(catalog repository.CatalogRepository, store cache.Store, cfg *config.Config, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{catalog: catalog, cache: store, ttl: cfg.Cache.TTL, logger: logger}
}

// Services lists active services with their active packages. Cache failures
// fall back to the repository.
func (u *CatalogUseCase) Services(ctx context.Context) ([]model.Service, error) {
	if raw, err := u.cache.Get(ctx, servicesCacheKey); err == nil {
		var services []model.Service
		if err := json.Unmarshal(raw, &services); err == nil {
			return services, nil
		}
		u.logger.Warn("drop corrupt catalog cache entry")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		u.logger.Warn("catalog cache read failed", slog.String("error", err.Error()))
	}

	services, err := u.catalog.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(services); err == nil {
		if err := u.cache.Set(ctx, servicesCacheKey, raw, u.ttl); err != nil {
			u.logger.Warn("catalog cache write failed", slog.String("error", err.Error()))
		}
	}
	return services, nil
}

// Service returns one active service by slug.
func (u *CatalogUseCase) Service(ctx context.Context, slug string) (*model.Service, error) {
	return u.catalog.GetServiceBySlug(ctx, slug)
}

// Package returns a package with its service.
func (u *CatalogUseCase) Package(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error) {
	return u.catalog.GetPackage(ctx, id)
}

// UpdatePackagePrices changes future prices. Placed orders keep their snapshot.
func (u *CatalogUseCase) UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error {
	if !priceINR.IsPositive() || !priceUSD.IsPositive() {
		return domainErrors.Validation("prices must be positive")
	}
	if !priceINR.Shift(2).IsInteger() || !priceUSD.Shift(2).IsInteger() {
		return domainErrors.Validation("prices allow at most two decimals")
	}
	if err := u.catalog.UpdatePackagePrices(ctx, id, priceINR, priceUSD); err != nil {
		return err
	}
	u.Invalidate(ctx)
	u.logger.Info("package prices updated", slog.Int64("package_id", id),
		slog.String("inr", priceINR.String()), slog.String("usd", priceUSD.String()))
	return nil
}

// Invalidate drops the cached catalog listing.
func (u *CatalogUseCase) Invalidate(ctx context.Context) {
	if err := u.cache.Delete(ctx, servicesCacheKey); err != nil {
		u.logger.Warn("catalog cache invalidation failed", slog.String("error", err.Error()))
	}
}
