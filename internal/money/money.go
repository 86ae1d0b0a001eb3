// Package money extracts, parses and formats Brazilian-real amounts.
package money

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNoAmount is returned when the text carries no usable number.
var ErrNoAmount = errors.New("no amount found")

// amountPattern matches digits with at most one dotted group and one
// decimal-comma group: "50", "1.234", "1.234,56", "12,5".
var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?(?:,\d+)?`)

// Amount is a number found in free text together with the token it came from.
type Amount struct {
	Value decimal.Decimal
	Token string
}

// Float returns the amount as float64.
func (a Amount) Float() float64 {
	return a.Value.InexactFloat64()
}

// ExtractAmount returns the first number in text. Only the first match is
// considered; later numbers in the same message are ignored.
func ExtractAmount(text string) (Amount, error) {
	token := amountPattern.FindString(text)
	if token == "" {
		return Amount{}, ErrNoAmount
	}
	value, err := parseLocale(token)
	if err != nil {
		return Amount{}, ErrNoAmount
	}
	return Amount{Value: value, Token: token}, nil
}

// ParseNumber coerces a form field into a float. Invalid input yields 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if s == "" {
		return 0
	}
	var (
		value decimal.Decimal
		err   error
	)
	if strings.Contains(s, ",") {
		value, err = parseLocale(s)
	} else {
		value, err = decimal.NewFromString(s)
	}
	if err != nil {
		return 0
	}
	return value.InexactFloat64()
}

// parseLocale strips thousands dots and turns the decimal comma into a dot.
func parseLocale(token string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(token, ".", "")
	normalized = strings.Replace(normalized, ",", ".", 1)
	return decimal.NewFromString(normalized)
}

// FormatBRL renders v as "R$ 1.234,56".
func FormatBRL(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return sign + "R$ " + b.String() + "," + frac
}
