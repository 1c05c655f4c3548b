package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

const (
	serviceColumns = `id, slug, name, short_description, description, icon, is_active, is_featured, display_order`
	packageColumns = `id, service_id, name, description, price_inr, price_usd, features, delivery_days, revisions, is_popular, is_active, display_order`
)

func scanService(row pgx.Row, s *model.Service) error {
	return row.Scan(&s.ID, &s.Slug, &s.Name, &s.ShortDescription, &s.Description, &s.Icon, &s.IsActive, &s.IsFeatured, &s.DisplayOrder)
}

func scanPackage(row pgx.Row, p *model.ServicePackage) error {
	return row.Scan(&p.ID, &p.ServiceID, &p.Name, &p.Description, &p.PriceINR, &p.PriceUSD, &p.Features, &p.DeliveryDays, &p.Revisions, &p.IsPopular, &p.IsActive, &p.DisplayOrder)
}

func (r *catalogRepository) ListServices(ctx context.Context) ([]model.Service, error) {
	const servicesQuery = `SELECT ` + serviceColumns + ` FROM services WHERE is_active ORDER BY display_order, name`
	rows, err := r.storage.pool.Query(ctx, servicesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []model.Service
	index := make(map[int64]int)
	for rows.Next() {
		var s model.Service
		if err := scanService(rows, &s); err != nil {
			return nil, err
		}
		index[s.ID] = len(services)
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return services, nil
	}

	const packagesQuery = `SELECT ` + packageColumns + ` FROM service_packages WHERE is_active ORDER BY service_id, display_order, id`
	packages, err := r.listPackages(ctx, packagesQuery)
	if err != nil {
		return nil, err
	}
	for _, p := range packages {
		if i, ok := index[p.ServiceID]; ok {
			services[i].Packages = append(services[i].Packages, p)
		}
	}
	return services, nil
}

func (r *catalogRepository) GetServiceBySlug(ctx context.Context, slug string) (*model.Service, error) {
	const query = `SELECT ` + serviceColumns + ` FROM services WHERE slug=$1 AND is_active`
	var s model.Service
	if err := scanService(r.storage.pool.QueryRow(ctx, query, slug), &s); err != nil {
		return nil, notFound(err)
	}

	const packagesQuery = `SELECT ` + packageColumns + ` FROM service_packages WHERE service_id=$1 AND is_active ORDER BY display_order, id`
	packages, err := r.listPackages(ctx, packagesQuery, s.ID)
	if err != nil {
		return nil, err
	}
	s.Packages = packages
	return &s, nil
}

func (r *catalogRepository) listPackages(ctx context.Context, query string, args ...any) ([]model.ServicePackage, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ServicePackage
	for rows.Next() {
		var p model.ServicePackage
		if err := scanPackage(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPackage returns the package together with the owning service header.
func (r *catalogRepository) GetPackage(ctx context.Context, id int64) (*model.ServicePackage, *model.Service, error) {
	const query = `SELECT p.id, p.service_id, p.name, p.description, p.price_inr, p.price_usd, p.features,
                          p.delivery_days, p.revisions, p.is_popular, p.is_active, p.display_order,
                          s.slug, s.name, s.is_active
                   FROM service_packages p JOIN services s ON s.id = p.service_id
                   WHERE p.id=$1`
	var (
		p model.ServicePackage
		s model.Service
	)
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.ServiceID, &p.Name, &p.Description, &p.PriceINR, &p.PriceUSD, &p.Features,
		&p.DeliveryDays, &p.Revisions, &p.IsPopular, &p.IsActive, &p.DisplayOrder,
		&s.Slug, &s.Name, &s.IsActive)
	if err != nil {
		return nil, nil, notFound(err)
	}
	s.ID = p.ServiceID
	return &p, &s, nil
}

func (r *catalogRepository) UpsertService(ctx context.Context, s *model.Service) (int64, error) {
	const query = `INSERT INTO services (slug, name, short_description, description, icon, is_active, is_featured, display_order)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                   ON CONFLICT (slug) DO UPDATE SET
                       name = EXCLUDED.name,
                       short_description = EXCLUDED.short_description,
                       description = EXCLUDED.description,
                       icon = EXCLUDED.icon,
                       is_active = EXCLUDED.is_active,
                       is_featured = EXCLUDED.is_featured,
                       display_order = EXCLUDED.display_order
                   RETURNING id`
	var id int64
	err := r.storage.pool.QueryRow(ctx, query, s.Slug, s.Name, s.ShortDescription, s.Description, s.Icon, s.IsActive, s.IsFeatured, s.DisplayOrder).Scan(&id)
	return id, err
}

func (r *catalogRepository) UpsertPackage(ctx context.Context, p *model.ServicePackage) (int64, error) {
	const query = `INSERT INTO service_packages (service_id, name, description, price_inr, price_usd, features,
                                                 delivery_days, revisions, is_popular, is_active, display_order)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                   ON CONFLICT (service_id, name) DO UPDATE SET
                       description = EXCLUDED.description,
                       price_inr = EXCLUDED.price_inr,
                       price_usd = EXCLUDED.price_usd,
                       features = EXCLUDED.features,
                       delivery_days = EXCLUDED.delivery_days,
                       revisions = EXCLUDED.revisions,
                       is_popular = EXCLUDED.is_popular,
                       is_active = EXCLUDED.is_active,
                       display_order = EXCLUDED.display_order
                   RETURNING id`
	features := p.Features
	if features == nil {
		features = []string{}
	}
	var id int64
	err := r.storage.pool.QueryRow(ctx, query, p.ServiceID, p.Name, p.Description, p.PriceINR, p.PriceUSD, features,
		p.DeliveryDays, p.Revisions, p.IsPopular, p.IsActive, p.DisplayOrder).Scan(&id)
	return id, err
}

// UpdatePackagePrices changes list prices. Placed orders keep their snapshot.
func (r *catalogRepository) UpdatePackagePrices(ctx context.Context, id int64, priceINR, priceUSD decimal.Decimal) error {
	tag, err := r.storage.pool.Exec(ctx, `UPDATE service_packages SET price_inr=$2, price_usd=$3 WHERE id=$1`, id, priceINR, priceUSD)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
