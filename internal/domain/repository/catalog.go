package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/prowriters/internal/domain/model"
)

// CatalogRepository describes access to services and their packages.
type CatalogRepository interface {
	ListServices(ctx context.Context) ([]model.Service, error)
	GetServiceBySlug(ctx context.Context, slug string) (*model.Service, error)
	GetPackage(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error)
	UpsertService(ctx context.Context, service *model.Service) (int64, error)
	UpsertPackage(ctx context.Context, pkg *model.ServicePackage) (int64, error)
	UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error
}
