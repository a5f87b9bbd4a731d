package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MinAmount is the smallest quantity any endpoint accepts.
var MinAmount = decimal.NewFromInt(1)

// Amount is a client supplied quantity in display units (e.g. 5 BCN, 12.50 USDC).
// It is kept as a fixed point decimal so no float ever touches a balance.
type Amount struct {
	value decimal.Decimal
}

// NewAmount checks d against the minimum and the given number of decimal places.
func NewAmount(d decimal.Decimal, precision int32) (Amount, error) {
	if err := CheckAmount(d, precision); err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

func ParseAmount(s string, precision int32) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, NewInvalidAmountError(s, "not a decimal number")
	}
	return NewAmount(d, precision)
}

// AmountFromBaseUnits converts on-chain units back to display units.
func AmountFromBaseUnits(units *big.Int, decimals int32) Amount {
	return Amount{value: decimal.NewFromBigInt(units, -decimals)}
}

func CheckAmount(d decimal.Decimal, precision int32) error {
	if d.LessThan(MinAmount) {
		return NewInvalidAmountError(d.String(), "must be greater than or equal to 1")
	}
	if !d.Equal(d.Truncate(precision)) {
		if precision == 0 {
			return NewInvalidAmountError(d.String(), "must be an integer")
		}
		return NewInvalidAmountError(d.String(), "too many decimal places")
	}
	return nil
}

// String renders the amount without trailing zeros ("5", "12.5").
func (a Amount) String() string {
	return a.value.String()
}

// Fixed renders the amount with exactly places decimals, used for email copy.
func (a Amount) Fixed(places int32) string {
	return a.value.StringFixed(places)
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// BaseUnits scales the amount by 10^decimals (micro-units for USDC).
func (a Amount) BaseUnits(decimals int32) *big.Int {
	return a.value.Shift(decimals).BigInt()
}

func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}
