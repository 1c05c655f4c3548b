package gateway

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

func TestToMinorUnits(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{"whole rupees", "2999", 299900, false},
		{"two decimals", "39.99", 3999, false},
		{"one decimal", "0.1", 10, false},
		{"float trap", "0.29", 29, false},
		{"sub minor", "10.005", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-5", 0, true},
		{"too large", "100000000000000000", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tc.amount), model.CurrencyINR)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domainErrors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(3999, model.CurrencyUSD).Equal(decimal.RequireFromString("39.99")))
}
