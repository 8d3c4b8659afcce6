package order

import (
	"fmt"
	"time"

	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

// Order is an immutable ledger entry. Financial fields are computed once at creation.
type Order struct {
	Number            int                    `json:"number"`
	CustomerID        string                 `json:"customer_id,omitempty"`
	Items             []pricing.LineItem     `json:"items"`
	Subtotal          pricing.Money          `json:"subtotal"`
	Discounts         pricing.Money          `json:"discounts"`
	DiscountLines     []pricing.DiscountLine `json:"discount_lines,omitempty"`
	AppliedPromotions []string               `json:"applied_promotions"`
	DeliveryFee       pricing.Money          `json:"delivery_fee"`
	Total             pricing.Money          `json:"total"`
	PaymentMethod     payment.Method         `json:"payment_method"`
	CreatedAt         time.Time              `json:"created_at"`
	Mode              shipping.Mode          `json:"mode"`
	Delivery          *shipping.DeliveryInfo `json:"delivery,omitempty"`

	// Warnings raised while pricing, e.g. an unrecognized coupon. Not persisted.
	Warnings []string `json:"-"`
}

// PizzaCount sums the quantities of pizza items.
func (o Order) PizzaCount() int {
	n := 0
	for _, it := range o.Items {
		if isPizza(it) {
			n += it.Qty
		}
	}
	return n
}

// FormatNumber zero-pads an order number to four digits.
func FormatNumber(n int) string {
	return fmt.Sprintf("%04d", n)
}
