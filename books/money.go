package books

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for accounts that carry no currency code.
var DefaultCurrency = "USD"

// FormatMoney renders v in the currency's conventional format, e.g. "$1,150.00".
// Sub-unit digits beyond the currency's fraction are truncated.
func FormatMoney(v decimal.Decimal, code string) string {
	if code == "" {
		code = DefaultCurrency
	}
	// money.New never returns a nil currency, even for unknown codes.
	cur := money.New(0, code).Currency()
	minor := Normalize(v).Shift(int32(cur.Fraction)).IntPart()
	return cur.Formatter().Format(minor)
}
