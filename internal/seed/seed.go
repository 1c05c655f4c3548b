// Package seed loads the service catalog into storage.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/polkiloo/prowriters/internal/domain/model"
	"github.com/polkiloo/prowriters/internal/domain/repository"
	"github.com/polkiloo/prowriters/internal/usecase"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Module provides the catalog seeder backed by the catalog use case cache.
var Module = fx.Provide(
	New,
	func(u *usecase.CatalogUseCase) Invalidator { return u },
)

type catalogFile struct {
	// Tiers holds shared package definitions referenced by YAML aliases.
	Tiers    []packageEntry `yaml:"tiers"`
	Services []serviceEntry `yaml:"services"`
}

type serviceEntry struct {
	Slug             string         `yaml:"slug"`
	Name             string         `yaml:"name"`
	ShortDescription string         `yaml:"short_description"`
	Description      string         `yaml:"description"`
	Icon             string         `yaml:"icon"`
	Featured         bool           `yaml:"featured"`
	Inactive         bool           `yaml:"inactive"`
	Packages         []packageEntry `yaml:"packages"`
}

type packageEntry struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	PriceINR     string   `yaml:"price_inr"`
	PriceUSD     string   `yaml:"price_usd"`
	Features     []string `yaml:"features"`
	DeliveryDays int      `yaml:"delivery_days"`
	Revisions    int      `yaml:"revisions"`
	Popular      bool     `yaml:"popular"`
	Inactive     bool     `yaml:"inactive"`
}

// Invalidator drops cached catalog views after a change.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Seeder upserts catalog entries. Running it twice leaves the same catalog.
type Seeder struct {
	catalog repository.CatalogRepository
	cache   Invalidator
	logger  *slog.Logger
}

// Result counts what a run wrote.
type Result struct {
	Services int
	Packages int
}

// New constructs Seeder.
func New(catalog repository.CatalogRepository, cache Invalidator, logger *slog.Logger) *Seeder {
	return &Seeder{catalog: catalog, cache: cache, logger: logger}
}

// Parse decodes and validates a YAML catalog.
func Parse(r io.Reader) ([]model.Service, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Services) == 0 {
		return nil, fmt.Errorf("catalog has no services")
	}

	seen := make(map[string]bool, len(file.Services))
	services := make([]model.Service, 0, len(file.Services))
	for i, entry := range file.Services {
		if entry.Slug == "" || entry.Name == "" {
			return nil, fmt.Errorf("service %d: slug and name are required", i+1)
		}
		if seen[entry.Slug] {
			return nil, fmt.Errorf("service %q: duplicate slug", entry.Slug)
		}
		seen[entry.Slug] = true

		svc := model.Service{
			Slug:             entry.Slug,
			Name:             entry.Name,
			ShortDescription: entry.ShortDescription,
			Description:      entry.Description,
			Icon:             entry.Icon,
			IsActive:         !entry.Inactive,
			IsFeatured:       entry.Featured,
			DisplayOrder:     i + 1,
		}
		for j, p := range entry.Packages {
			pkg, err := p.toModel(j + 1)
			if err != nil {
				return nil, fmt.Errorf("service %q: %w", entry.Slug, err)
			}
			svc.Packages = append(svc.Packages, pkg)
		}
		services = append(services, svc)
	}
	return services, nil
}

func (p packageEntry) toModel(order int) (model.ServicePackage, error) {
	if p.Name == "" {
		return model.ServicePackage{}, fmt.Errorf("package %d: name is required", order)
	}
	inr, err := decimal.NewFromString(p.PriceINR)
	if err != nil || !inr.IsPositive() {
		return model.ServicePackage{}, fmt.Errorf("package %q: invalid price_inr %q", p.Name, p.PriceINR)
	}
	usd, err := decimal.NewFromString(p.PriceUSD)
	if err != nil || !usd.IsPositive() {
		return model.ServicePackage{}, fmt.Errorf("package %q: invalid price_usd %q", p.Name, p.PriceUSD)
	}
	if p.DeliveryDays <= 0 {
		return model.ServicePackage{}, fmt.Errorf("package %q: delivery_days must be positive", p.Name)
	}
	return model.ServicePackage{
		Name:         p.Name,
		Description:  p.Description,
		PriceINR:     inr,
		PriceUSD:     usd,
		Features:     p.Features,
		DeliveryDays: p.DeliveryDays,
		Revisions:    p.Revisions,
		IsPopular:    p.Popular,
		IsActive:     !p.Inactive,
		DisplayOrder: order,
	}, nil
}

// Default returns the built-in catalog.
func Default() ([]model.Service, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Load reads the catalog from path, or the built-in one when path is empty.
func Load(path string) ([]model.Service, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Run upserts services and their packages.
func (s *Seeder) Run(ctx context.Context, services []model.Service) (Result, error) {
	var res Result
	for i := range services {
		svc := services[i]
		id, err := s.catalog.UpsertService(ctx, &svc)
		if err != nil {
			return res, fmt.Errorf("upsert service %q: %w", svc.Slug, err)
		}
		res.Services++

		for j := range svc.Packages {
			pkg := svc.Packages[j]
			pkg.ServiceID = id
			if _, err := s.catalog.UpsertPackage(ctx, &pkg); err != nil {
				return res, fmt.Errorf("upsert package %q of %q: %w", pkg.Name, svc.Slug, err)
			}
			res.Packages++
		}
		s.logger.Info("service seeded", slog.String("slug", svc.Slug), slog.Int("packages", len(svc.Packages)))
	}
	s.cache.Invalidate(ctx)
	return res, nil
}
