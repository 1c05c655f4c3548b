package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code accepted for orders.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

var currencyExponents = map[Currency]int32{
	CurrencyINR: 2,
	CurrencyUSD: 2,
}

// ParseCurrency normalizes a currency code. Empty input selects INR.
func ParseCurrency(raw string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if code == "" {
		return CurrencyINR, nil
	}
	if _, ok := currencyExponents[code]; !ok {
		return "", fmt.Errorf("unsupported currency %q", raw)
	}
	return code, nil
}

// Exponent returns the number of minor-unit digits of the currency.
func (c Currency) Exponent() int32 {
	if exp, ok := currencyExponents[c]; ok {
		return exp
	}
	return 2
}

// Service groups packages offered under one kind of writing work.
type Service struct {
	ID               int64
	Slug             string
	Name             string
	ShortDescription string
	Description      string
	Icon             string
	IsActive         bool
	IsFeatured       bool
	DisplayOrder     int
	Packages         []ServicePackage
}

// ServicePackage is a priced tier of a service.
type ServicePackage struct {
	ID           int64
	ServiceID    int64
	Name         string
	Description  string
	PriceINR     decimal.Decimal
	PriceUSD     decimal.Decimal
	Features     []string
	DeliveryDays int
	Revisions    int
	IsPopular    bool
	IsActive     bool
	DisplayOrder int
}

// PriceFor returns the package price in the given currency.
func (p *ServicePackage) PriceFor(c Currency) (decimal.Decimal, error) {
	switch c {
	case CurrencyINR:
		return p.PriceINR, nil
	case CurrencyUSD:
		return p.PriceUSD, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported currency %q", c)
}
