package reporting

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholder is drawn wherever an optional value is missing.
const Placeholder = "—"

const currencyPrefix = "Rs. "

// FormatCurrency renders an amount in whole rupees with Indian digit
// grouping (12,34,567). Halves round away from zero. The zero value of
// decimal.Decimal, which is what a JSON null decodes to, renders as zero.
func FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return currencyPrefix + sign + groupIndian(rounded.String())
}

// groupIndian inserts separators into a string of digits: the last three
// digits form one group, every two digits before that another.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var b strings.Builder
	lead := len(head) % 2
	if lead > 0 {
		b.WriteString(head[:lead])
	}
	for i := lead; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// FormatDate renders a date the way the en-IN locale prints a short date,
// e.g. "19 Oct 2026". The zero time renders as the placeholder.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("2 Jan 2006")
}

// FormatOptionalDate renders a nil or zero date as the placeholder.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return FormatDate(*t)
}

// FormatDay renders a YYYY-MM-DD day key as a short date. Keys that are not
// ISO days are shown verbatim.
func FormatDay(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return Placeholder
	}
	if t, err := time.Parse("2006-01-02", key); err == nil {
		return FormatDate(t)
	}
	return key
}

// FormatCount renders an integer count.
func FormatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(q decimal.Decimal) string {
	return q.String()
}

// HumanizeLabel turns a snake_case enum value such as "stock_in" into
// "Stock In".
func HumanizeLabel(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return Placeholder
	}
	// A Caser carries transform state, so one is built per call.
	return cases.Title(language.English).String(s)
}

// CapitalizeFirst upper-cases only the first letter, leaving the rest as
// entered. Empty input yields fallback.
func CapitalizeFirst(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		s = fallback
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// orPlaceholder returns s or the placeholder glyph when s is blank.
func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// titleBusinessName converts an upper-case trading name to title case for
// running text, e.g. "SRI AMMAN STEELS & HARDWARE" to "Sri Amman Steels & Hardware".
func titleBusinessName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(name))
}
