package catalog

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/common"
)

// Category groups products on the menu.
type Category string

const (
	CategorySavoryPizza  Category = "Savory Pizza"
	CategoryDessertPizza Category = "Dessert Pizza"
	CategoryBeverage     Category = "Beverage"
)

// ErrUnknownCategory is returned when a label does not name a menu category.
var ErrUnknownCategory = errors.New("unknown product category")

var categories = []Category{CategorySavoryPizza, CategoryDessertPizza, CategoryBeverage}

// labels written by the first version of the data file.
var legacyCategories = map[string]Category{
	"pizza salgadas": CategorySavoryPizza,
	"pizza doces":    CategoryDessertPizza,
	"bebida":         CategoryBeverage,
}

// Categories lists the menu categories in registration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory resolves a label, ignoring case and accents.
func ParseCategory(label string) (Category, error) {
	key := common.Fold(label)
	for _, c := range categories {
		if common.Fold(string(c)) == key {
			return c, nil
		}
	}
	if c, ok := legacyCategories[key]; ok {
		return c, nil
	}
	return "", ErrUnknownCategory
}

// UnmarshalText accepts current and legacy labels. Unknown labels are kept as typed so one
// bad entry does not fail the whole data file; Known reports them.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		*c = Category(strings.TrimSpace(string(text)))
		return nil
	}
	*c = parsed
	return nil
}

// Known reports whether c is one of the menu categories.
func (c Category) Known() bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsPizza reports whether the category counts as a pizza in reports.
func IsPizza(c Category) bool {
	return c == CategorySavoryPizza || c == CategoryDessertPizza
}

// Product is a menu entry. Products are never deleted, only deactivated.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Active   bool            `json:"active"`
}
