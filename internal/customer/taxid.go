package customer

import (
	"fmt"
	"strings"

	"github.com/noah-isme/planet-pizzaria/internal/common"
)

// TaxIDLength is the number of digits of a valid tax ID.
const TaxIDLength = 11

// NormalizeTaxID keeps only the digits, so "123.456.789-09" and "12345678909" share one key.
func NormalizeTaxID(raw string) string {
	return common.DigitsOnly(raw)
}

// ValidTaxID reports whether raw has exactly eleven digits once normalized.
func ValidTaxID(raw string) bool {
	return len(NormalizeTaxID(raw)) == TaxIDLength
}

// FormatTaxID renders the display form 000.000.000-00, left-padding short values with zeros.
func FormatTaxID(raw string) string {
	d := NormalizeTaxID(raw)
	if len(d) < TaxIDLength {
		d = strings.Repeat("0", TaxIDLength-len(d)) + d
	}
	if len(d) > TaxIDLength {
		return d
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
}
