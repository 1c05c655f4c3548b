package dto

import "github.com/shopspring/decimal"

// ServiceResponse describes a service with its active packages.
type ServiceResponse struct {
	ID               int64             `json:"id"`
	Slug             string            `json:"slug"`
	Name             string            `json:"name"`
	ShortDescription string            `json:"short_description"`
	Description      string            `json:"description,omitempty"`
	Icon             string            `json:"icon,omitempty"`
	IsFeatured       bool              `json:"is_featured"`
	Packages         []PackageResponse `json:"packages"`
}

// PackageResponse describes a priced tier.
type PackageResponse struct {
	ID           int64           `json:"id"`
	ServiceID    int64           `json:"service_id"`
	ServiceSlug  string          `json:"service_slug,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	PriceINR     decimal.Decimal `json:"price_inr"`
	PriceUSD     decimal.Decimal `json:"price_usd"`
	Features     []string        `json:"features"`
	DeliveryDays int             `json:"delivery_days"`
	Revisions    int             `json:"revisions"`
	IsPopular    bool            `json:"is_popular"`
}

// PriceUpdateRequest replaces both prices of a package.
type PriceUpdateRequest struct {
	PriceINR decimal.Decimal `json:"price_inr"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}
