package domain_test

import (
	"math/big"
	"testing"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_WholeUnits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"one", "1", false},
		{"large", "1000000", false},
		{"trailing zero fraction", "5.0", false},
		{"zero", "0", true},
		{"negative", "-3", true},
		{"fraction", "2.5", true},
		{"garbage", "five", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseAmount(tt.input, 0)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseAmount_Cents(t *testing.T) {
	_, err := domain.ParseAmount("12.34", 2)
	require.NoError(t, err)

	_, err = domain.ParseAmount("12.345", 2)
	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))

	_, err = domain.ParseAmount("0.99", 2)
	require.Error(t, err)
}

func TestAmount_BaseUnits(t *testing.T) {
	amount, err := domain.ParseAmount("12.5", 2)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(12_500_000), amount.BaseUnits(domain.USDCDecimals))
	assert.Equal(t, "12.50", amount.Fixed(2))
	assert.Equal(t, "12.5", amount.String())
}

func TestAmountFromBaseUnits(t *testing.T) {
	amount := domain.AmountFromBaseUnits(big.NewInt(7_250_000), domain.USDCDecimals)

	expected, err := domain.NewAmount(decimal.RequireFromString("7.25"), 2)
	require.NoError(t, err)
	assert.True(t, amount.Equal(expected))
}

func TestConsentToken_Key(t *testing.T) {
	assert.Equal(t, "xyz789", domain.ConsentToken("XYZ789").Key())
	assert.Equal(t, domain.ConsentToken("AbC").Key(), domain.ConsentToken("aBc").Key())
}
