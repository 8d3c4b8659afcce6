package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

type seedItem struct {
	name     string
	category Category
	price    string
}

var defaultMenu = []seedItem{
	{"4 Queijos", CategorySavoryPizza, "47.90"},
	{"5 Queijos", CategorySavoryPizza, "47.90"},
	{"Americana", CategorySavoryPizza, "47.90"},
	{"Atum", CategorySavoryPizza, "47.90"},
	{"Brócolis", CategorySavoryPizza, "47.90"},
	{"Calabresa", CategorySavoryPizza, "42.90"},
	{"Calabresa com Cheddar", CategorySavoryPizza, "47.90"},
	{"Calabresa com Queijo", CategorySavoryPizza, "47.90"},
	{"Chicago", CategorySavoryPizza, "47.90"},
	{"Doritos", CategorySavoryPizza, "47.90"},
	{"Frango com Bacon", CategorySavoryPizza, "43.90"},
	{"Frango com Catupiry", CategorySavoryPizza, "47.90"},
	{"Frango com Catupiry e Bacon", CategorySavoryPizza, "50.90"},
	{"Frango com Cheddar", CategorySavoryPizza, "42.90"},
	{"La Bonissima", CategorySavoryPizza, "47.90"},
	{"Moda da Casa", CategorySavoryPizza, "54.90"},
	{"Moda do Chefe", CategorySavoryPizza, "49.90"},
	{"Mussarela", CategorySavoryPizza, "39.90"},
	{"Portuguesa", CategorySavoryPizza, "47.90"},
	{"Strogonoff", CategorySavoryPizza, "47.90"},
	{"Toscana", CategorySavoryPizza, "47.90"},

	{"Água Mineral 500ml", CategoryBeverage, "4.00"},
	{"Cerveja 600ml", CategoryBeverage, "12.50"},
	{"Cerveja Lata", CategoryBeverage, "6.50"},
	{"Cerveja Long Neck", CategoryBeverage, "8.50"},
	{"Refrigerante 1L", CategoryBeverage, "12.00"},
	{"Refrigerante 2L", CategoryBeverage, "14.00"},
	{"Refrigerante 600ml", CategoryBeverage, "8.00"},
	{"Refrigerante Lata", CategoryBeverage, "6.00"},
	{"Suco 300ml - Sabores", CategoryBeverage, "7.50"},

	{"Banana Caramelizada", CategoryDessertPizza, "44.90"},
	{"Beijinho", CategoryDessertPizza, "32.90"},
	{"Chocolate", CategoryDessertPizza, "39.90"},
	{"Chocolate com Banana", CategoryDessertPizza, "45.90"},
	{"Chocolate com Morango", CategoryDessertPizza, "47.90"},
	{"Confete", CategoryDessertPizza, "40.90"},
	{"Cream Cookies", CategoryDessertPizza, "50.90"},
	{"Doce de Leite", CategoryDessertPizza, "34.90"},
	{"Prestigio", CategoryDessertPizza, "46.90"},
	{"Romeu e Julieta", CategoryDessertPizza, "45.90"},
}

// SeedDefaults fills an empty catalog with the house menu and saves once.
// It reports how many products were inserted.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	if len(s.Repo.Products()) > 0 {
		return 0, nil
	}
	for _, item := range defaultMenu {
		s.Repo.AddProduct(Product{
			ID:       s.Repo.NextID(),
			Name:     item.name,
			Category: item.category,
			Price:    decimal.RequireFromString(item.price),
			Active:   true,
		})
	}
	s.Logger.Info().Int("products", len(defaultMenu)).Msg("default menu seeded")
	return len(defaultMenu), s.save(ctx)
}
