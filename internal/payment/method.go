package payment

import (
	"errors"
	"strings"

	"github.com/noah-isme/planet-pizzaria/internal/common"
)

// Method is one of the accepted payment methods.
type Method string

const (
	MethodCash        Method = "Cash"
	MethodCredit      Method = "Credit"
	MethodDebit       Method = "Debit"
	MethodPix         Method = "Pix"
	MethodMealVoucher Method = "Meal Voucher"
	MethodFoodVoucher Method = "Food Voucher"
)

// ErrUnknownMethod is returned when a label does not name an accepted method.
var ErrUnknownMethod = errors.New("unknown payment method")

var methods = []Method{
	MethodCash,
	MethodCredit,
	MethodDebit,
	MethodPix,
	MethodMealVoucher,
	MethodFoodVoucher,
}

// labels written by the first version of the data file.
var legacyLabels = map[string]Method{
	"dinheiro":      MethodCash,
	"credito":       MethodCredit,
	"debito":        MethodDebit,
	"vale refeicao": MethodMealVoucher,
	"alimentacao":   MethodFoodVoucher,
}

// Methods lists the accepted methods in menu order.
func Methods() []Method {
	return append([]Method(nil), methods...)
}

// ByIndex resolves a 1-based menu choice.
func ByIndex(n int) (Method, error) {
	if n < 1 || n > len(methods) {
		return "", ErrUnknownMethod
	}
	return methods[n-1], nil
}

// Parse resolves a label, ignoring case and accents.
func Parse(label string) (Method, error) {
	key := common.Fold(label)
	if key == "" {
		return "", ErrUnknownMethod
	}
	for _, m := range methods {
		if common.Fold(string(m)) == key {
			return m, nil
		}
	}
	if m, ok := legacyLabels[key]; ok {
		return m, nil
	}
	return "", ErrUnknownMethod
}

// Valid reports whether m is an accepted method.
func (m Method) Valid() bool {
	for _, candidate := range methods {
		if candidate == m {
			return true
		}
	}
	return false
}

// UnmarshalText accepts current and legacy labels. Unknown labels are kept as typed;
// Valid reports them.
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		*m = Method(strings.TrimSpace(string(text)))
		return nil
	}
	*m = parsed
	return nil
}

// Search filters the accepted methods by a case-insensitive term; an empty term lists all.
func Search(term string) []Method {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		if term == "" || strings.Contains(strings.ToLower(string(m)), term) {
			out = append(out, m)
		}
	}
	return out
}
