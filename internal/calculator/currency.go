package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duoledger/internal/models"
)

// ToForeign converts a home-currency amount using rate, expressed as home
// units per one foreign unit. The result is not rounded; sum converted values
// before calling Display.
func ToForeign(amountHome, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", models.ErrInvalidRate, rate)
	}
	return amountHome.Div(rate), nil
}

// Display formats an amount with exactly DisplayPlaces fractional digits,
// rounding half away from zero.
func Display(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}
