package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
	"github.com/noah-isme/planet-pizzaria/internal/voucher"
)

// Money is a currency amount rounded to cents at every rule boundary.
type Money = decimal.Decimal

// Rule identifiers carried by discount lines.
const (
	RuleDessertTuesday = "dessert_tuesday"
	RuleCombo          = "combo"
)

var (
	// ErrEmptyCart is returned when a quote is requested without items.
	ErrEmptyCart = errors.New("empty cart")
	// ErrInvalidQuantity is returned when a line item quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidPayment is returned when the payment method is not accepted.
	ErrInvalidPayment = errors.New("invalid payment method")
)

var (
	dessertRate = decimal.New(10, -2)
	comboAmount = decimal.RequireFromString("5.00")
)

// LineItem is a snapshot of a product taken when the cart was built.
type LineItem struct {
	ProductID string           `json:"product_id"`
	Qty       int              `json:"qty"`
	Name      string           `json:"name"`
	UnitPrice Money            `json:"unit_price"`
	Category  catalog.Category `json:"category"`
}

// Total is unit price times quantity.
func (it LineItem) Total() Money {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty)))
}

// DiscountLine is one applied promotion.
type DiscountLine struct {
	Name   string `json:"name"`
	Rule   string `json:"rule"`
	Amount Money  `json:"amount"`
}

// Describe renders the line as shown on receipts, e.g. "Pizza + drink combo (-R$ 5,00)".
func (l DiscountLine) Describe() string {
	return fmt.Sprintf("%s (-%s)", l.Name, common.FormatBRL(l.Amount))
}

// Discounts is the breakdown for one cart, payment and coupon combination.
type Discounts struct {
	Lines    []DiscountLine
	Total    Money
	Warnings []string
}

// Quote is the full price of a cart.
type Quote struct {
	Subtotal    Money
	Discounts   Discounts
	DeliveryFee Money
	Total       Money
}

// Engine computes discounts, delivery fees and totals.
type Engine struct {
	// Now defaults to time.Now; the dessert rule depends on the weekday it returns.
	Now      func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

// Subtotal sums unit price times quantity over the items with a positive quantity.
func Subtotal(items []LineItem) Money {
	total := decimal.Zero
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		total = total.Add(it.Total())
	}
	return total
}

// Discounts evaluates every rule independently and sums the lines. Only the sum is capped
// at the subtotal; individual lines keep their full value.
func (e *Engine) Discounts(items []LineItem, subtotal Money, method payment.Method, coupon string) Discounts {
	var (
		out       Discounts
		hasSavory bool
		hasDrink  bool
		desserts  = decimal.Zero
	)
	for _, it := range items {
		switch it.Category {
		case catalog.CategorySavoryPizza:
			hasSavory = true
		case catalog.CategoryBeverage:
			hasDrink = true
		case catalog.CategoryDessertPizza:
			desserts = desserts.Add(it.Total())
		}
	}

	if e.isDessertDay() && desserts.IsPositive() {
		out.Lines = append(out.Lines, DiscountLine{
			Name:   "Dessert Tuesday (10% off dessert pizzas)",
			Rule:   RuleDessertTuesday,
			Amount: desserts.Mul(dessertRate).Round(2),
		})
	}
	if hasSavory && hasDrink {
		out.Lines = append(out.Lines, DiscountLine{
			Name:   "Pizza + drink combo",
			Rule:   RuleCombo,
			Amount: comboAmount,
		})
	}
	if line, warning, ok := e.couponLine(subtotal, method, coupon); ok {
		out.Lines = append(out.Lines, line)
	} else if warning != "" {
		out.Warnings = append(out.Warnings, warning)
	}

	sum := decimal.Zero
	for _, l := range out.Lines {
		sum = sum.Add(l.Amount)
	}
	out.Total = decimal.Min(subtotal, sum.Round(2))
	return out
}

func (e *Engine) couponLine(subtotal Money, method payment.Method, coupon string) (DiscountLine, string, bool) {
	code := voucher.Normalize(coupon)
	if code == "" {
		return DiscountLine{}, "", false
	}
	rule, err := voucher.Lookup(code)
	if err != nil {
		obs.RecordCouponRejected()
		e.Logger.Warn().Str("coupon", code).Msg("coupon not recognized, ignoring")
		return DiscountLine{}, fmt.Sprintf("coupon %q is invalid or not applicable and was ignored", code), false
	}
	if err := rule.Validate(method); err != nil {
		e.Logger.Debug().Str("coupon", code).Str("payment", string(method)).Msg("coupon not eligible for payment method")
		return DiscountLine{}, "", false
	}
	return DiscountLine{
		Name:   rule.Label,
		Rule:   "coupon_" + rule.Code,
		Amount: voucher.Compute(subtotal, rule),
	}, "", true
}

// Quote prices a cart: subtotal, discounts, the delivery fee on the discounted amount, and
// a total floored at zero.
func (e *Engine) Quote(items []LineItem, method payment.Method, coupon string, mode shipping.Mode, delivery *shipping.DeliveryInfo) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, common.Validation(ErrEmptyCart.Error(), ErrEmptyCart)
	}
	for _, it := range items {
		if it.Qty <= 0 {
			return Quote{}, common.Validation(ErrInvalidQuantity.Error(), ErrInvalidQuantity)
		}
	}
	if !method.Valid() {
		return Quote{}, common.Validation(ErrInvalidPayment.Error(), ErrInvalidPayment)
	}
	subtotal := Subtotal(items)
	discounts := e.Discounts(items, subtotal, method, coupon)
	fee := shipping.Fee(mode, delivery, subtotal.Sub(discounts.Total))
	total := subtotal.Sub(discounts.Total).Add(fee)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Quote{
		Subtotal:    subtotal,
		Discounts:   discounts,
		DeliveryFee: fee,
		Total:       total.Round(2),
	}, nil
}

func (e *Engine) isDessertDay() bool {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	t := now()
	if e.Location != nil {
		t = t.In(e.Location)
	}
	return t.Weekday() == time.Tuesday
}
