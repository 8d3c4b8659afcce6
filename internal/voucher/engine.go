package voucher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
)

var (
	// ErrUnknownCoupon is returned when a code does not match any rule.
	ErrUnknownCoupon = errors.New("coupon not recognized")
	// ErrNotEligible is returned when the coupon cannot be applied to the provided payment method.
	ErrNotEligible = errors.New("coupon not eligible")
)

const (
	KindPercent = "percent"
	KindFixed   = "fixed"
)

// Rule captures the runtime constraints of a coupon.
type Rule struct {
	Code            string
	Label           string
	Kind            string
	Value           decimal.Decimal
	PercentBps      int32
	RequiredPayment payment.Method
}

var rules = []Rule{
	{
		Code:       "PLANET10",
		Label:      "PLANET10 coupon (10%)",
		Kind:       KindPercent,
		PercentBps: 1000,
	},
	{
		Code:            "PIX5",
		Label:           "PIX5 coupon",
		Kind:            KindFixed,
		Value:           decimal.RequireFromString("5.00"),
		RequiredPayment: payment.MethodPix,
	},
}

// Rules returns the coupon table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Describe renders the rule for the promotions list, e.g.
// "R$ 5,00 off when paying with Pix using coupon PIX5.".
func (r Rule) Describe() string {
	amount := common.FormatBRL(r.Value) + " off"
	if strings.EqualFold(r.Kind, KindPercent) {
		amount = fmt.Sprintf("%s%% off the subtotal", decimal.New(int64(r.PercentBps), -2).String())
	}
	if r.RequiredPayment != "" {
		return fmt.Sprintf("%s when paying with %s using coupon %s.", amount, r.RequiredPayment, r.Code)
	}
	return fmt.Sprintf("%s with coupon %s.", amount, r.Code)
}

// Normalize trims and upper-cases a typed code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup finds the rule for a code after normalization.
func Lookup(code string) (Rule, error) {
	code = Normalize(code)
	for _, r := range rules {
		if r.Code == code {
			return r, nil
		}
	}
	return Rule{}, ErrUnknownCoupon
}

// Validate ensures the rule can be applied with the provided payment method.
func (r Rule) Validate(method payment.Method) error {
	if r.RequiredPayment != "" && r.RequiredPayment != method {
		return ErrNotEligible
	}
	return nil
}

// Compute determines the discount amount based on the rule and eligible subtotal.
// The result is not clamped; the caller caps the summed discount.
func Compute(eligible decimal.Decimal, r Rule) decimal.Decimal {
	if !eligible.IsPositive() {
		return decimal.Zero
	}
	if strings.EqualFold(r.Kind, KindPercent) {
		if r.PercentBps <= 0 {
			return decimal.Zero
		}
		return eligible.Mul(decimal.NewFromInt32(r.PercentBps)).Div(decimal.NewFromInt(10000)).Round(2)
	}
	if r.Value.IsNegative() {
		return decimal.Zero
	}
	return r.Value
}
