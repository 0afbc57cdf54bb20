// ABOUTME: Spanish locale number formatting for prices and values
// ABOUTME: Matches es-ES grouping, which leaves four-digit numbers ungrouped
package crm

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var esPrinter = message.NewPrinter(language.MustParse("es-ES"))

// FormatEuro renders v the way es-ES renders numbers: "." groups thousands,
// "," separates decimals, at most three fraction digits. Values below
// 10000 are not grouped.
func FormatEuro(v float64) string {
	opts := []number.Option{number.MaxFractionDigits(3)}
	if math.Abs(v) < 10000 {
		opts = append(opts, number.NoSeparator())
	}
	return esPrinter.Sprint(number.Decimal(v, opts...))
}
