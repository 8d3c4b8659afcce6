package pricing

import (
	"fmt"
	"strings"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
	"github.com/noah-isme/planet-pizzaria/internal/voucher"
)

// Promotion describes a promotion for the search menu.
type Promotion struct {
	Name string
	Code string
	Rule string
	Note string
}

// Promotions lists the active promotions. Coupon entries come from the coupon table.
func Promotions() []Promotion {
	out := []Promotion{
		{
			Name: "Dessert Tuesday",
			Rule: "10% off dessert pizzas on Tuesdays.",
			Note: "Applies to dessert pizza items only.",
		},
		{
			Name: "Pizza + drink combo",
			Rule: "R$ 5,00 off when the order has at least one savory pizza and one beverage.",
		},
	}
	for _, r := range voucher.Rules() {
		out = append(out, Promotion{Name: r.Code + " coupon", Code: r.Code, Rule: r.Describe()})
	}
	return append(out, Promotion{
		Name: "Free delivery",
		Rule: fmt.Sprintf("Free delivery from %s after discounts (applied automatically).", common.FormatBRL(shipping.FreeDeliveryThreshold)),
	})
}

// SearchPromotions matches term against name, coupon code and rule text, ignoring case.
// An empty term lists everything.
func SearchPromotions(term string) []Promotion {
	term = strings.ToLower(strings.TrimSpace(term))
	all := Promotions()
	if term == "" {
		return all
	}
	out := make([]Promotion, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Code), term) ||
			strings.Contains(strings.ToLower(p.Rule), term) {
			out = append(out, p)
		}
	}
	return out
}
