package gateway

import (
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

// maxMinorUnits keeps amounts inside the integer range JSON consumers accept.
const maxMinorUnits = 1 << 53

// ToMinorUnits converts amount to an integer count of the currency's minor
// units. Amounts finer than one minor unit are rejected, never rounded.
func ToMinorUnits(amount decimal.Decimal, currency model.Currency) (int64, error) {
	if !amount.IsPositive() {
		return 0, domainErrors.Validation("amount must be positive, got %s", amount.String())
	}
	shifted := amount.Shift(currency.Exponent())
	if !shifted.IsInteger() {
		return 0, domainErrors.Validation("amount %s has more precision than %s allows", amount.String(), currency)
	}
	if shifted.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, domainErrors.Validation("amount %s is out of range", amount.String())
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64, currency model.Currency) decimal.Decimal {
	return decimal.New(minor, -currency.Exponent())
}
