// Package normalize provides the shared value-coercion routines used by all
// document extractors: decimals with Brazilian or international separators,
// timestamps in the formats found in the wild, CNPJ/CPF cleaning, and
// numeric-or-text code coercion.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)
	tzSuffixRe = regexp.MustCompile(`[+-]\d{2}:\d{2}$`)
)

// dateFormats in trial order. Timestamps come first so a full
// "2006-01-02T15:04:05" is not truncated by the date-only layout.
var dateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// ParseDecimal parses a monetary or quantity value accepting either "," or
// "." as the decimal separator and stripping thousands separators. It never
// fails: irrecoverable input yields zero.
//
// "1.234,56" and "1234.56" both normalize to 1234.56.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		// Both present: the later one is the decimal separator.
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			// Multiple commas can only be thousands separators.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate parses a fiscal timestamp, stripping a trailing timezone offset
// ("2024-03-01T10:00:00-03:00") before trying the known formats. Returns nil
// when nothing matches.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = tzSuffixRe.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, "Z")

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// CleanTaxID strips everything but digits from a CNPJ/CPF.
func CleanTaxID(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// ValidTaxID reports whether a cleaned CNPJ (14 digits) or CPF (11 digits)
// passes the length and repeated-digit checks. This is deliberately weaker
// than the official modulo-11 checksum; see DESIGN.md.
func ValidTaxID(s string) bool {
	s = CleanTaxID(s)
	if len(s) != 11 && len(s) != 14 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return true
		}
	}
	return false
}

// CoerceCode converts a code value to an int64 or float64 when it is
// syntactically numeric, except that values with a significant leading zero
// (CEST, CFOP, NCM and similar codes) always stay text.
//
// "05303" stays the string "05303"; "5303" becomes the integer 5303.
func CoerceCode(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if len(s) > 1 && s[0] == '0' && !strings.ContainsAny(s, ".,") {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
