package prediction

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatSalary renders an amount with en-US digit grouping and at most three
// fraction digits: 95000 becomes "95,000", 123456.78 becomes "123,456.78".
func FormatSalary(amount decimal.Decimal) string {
	rounded := amount.Round(3)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	whole := rounded.Truncate(0)
	out := sign + groupWhole(whole)

	if frac := rounded.Sub(whole); !frac.IsZero() {
		out += strings.TrimPrefix(frac.String(), "0")
	}
	return out
}

// groupWhole groups a non-negative integral amount. The printer only groups
// machine integers, so larger amounts are grouped from their digit string.
func groupWhole(whole decimal.Decimal) string {
	n := whole.BigInt()
	if n.IsInt64() {
		return printer.Sprintf("%d", n.Int64())
	}

	digits := n.String()
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// cleanMessage normalises text supplied by the prediction service. The text
// is otherwise kept as sent; output paths escape it themselves.
func cleanMessage(raw string) string {
	return strings.TrimSpace(raw)
}
