package shell

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
)

func (s *Shell) customersMenu(ctx context.Context) error {
	s.println("")
	s.println("=== CUSTOMERS ===")
	s.println("1) List")
	s.println("2) Register")
	s.println("0) Back")
	op, err := s.ask("Choose: ")
	if err != nil {
		return err
	}
	switch op {
	case "1":
		list := s.customers.List()
		if len(list) == 0 {
			s.println("No customers.")
		}
		for _, c := range list {
			phone := c.Phone
			if phone == "" {
				phone = "-"
			}
			s.printf("- %s | Tax ID: %s | Phone: %s | (id: %s)\n", c.Name, customer.FormatTaxID(c.TaxID), phone, c.ID)
		}
	case "2":
		if err := s.registerCustomer(ctx); err != nil {
			return err
		}
	case "0":
		return nil
	default:
		s.println("Invalid option.")
	}
	return s.pause()
}

func (s *Shell) registerCustomer(ctx context.Context) error {
	name, err := s.required("Name: ")
	if err != nil {
		return err
	}
	taxID, err := s.ask("Tax ID (digits only): ")
	if err != nil {
		return err
	}
	if !customer.ValidTaxID(taxID) {
		s.println("Invalid tax ID.")
		return nil
	}
	phone, err := s.ask("Phone (optional): ")
	if err != nil {
		return err
	}
	c, err := s.customers.Register(ctx, customer.RegisterInput{Name: name, TaxID: taxID, Phone: phone})
	if err != nil && c.ID == "" {
		s.fail(err)
		return nil
	}
	s.printf("OK! Customer created: %s - Tax ID: %s\n", c.Name, customer.FormatTaxID(c.TaxID))
	if err != nil {
		s.fail(err)
	}
	return nil
}

func (s *Shell) productsMenu(ctx context.Context) error {
	s.println("")
	s.println("=== PRODUCTS ===")
	s.println("1) List")
	s.println("2) Register")
	s.println("3) Activate/Deactivate")
	s.println("0) Back")
	op, err := s.ask("Choose: ")
	if err != nil {
		return err
	}
	switch op {
	case "1":
		list := s.products.List()
		if len(list) == 0 {
			s.println("No products.")
		}
		for _, p := range list {
			s.printf("- %s | %s | %s | %s | active=%t\n", p.ID, p.Name, p.Category, common.FormatBRL(p.Price), p.Active)
		}
	case "2":
		if err := s.registerProduct(ctx); err != nil {
			return err
		}
	case "3":
		id, err := s.ask("Product ID: ")
		if err != nil {
			return err
		}
		p, err := s.products.Toggle(ctx, id)
		switch {
		case common.HasCode(err, common.CodeNotFound):
			s.println("Product not found.")
		case p.ID != "":
			s.printf("Product %s is now active=%t\n", p.ID, p.Active)
			if err != nil {
				s.fail(err)
			}
		case err != nil:
			s.fail(err)
		}
	case "0":
		return nil
	default:
		s.println("Invalid option.")
	}
	return s.pause()
}

func (s *Shell) registerProduct(ctx context.Context) error {
	name, err := s.ask("Name: ")
	if err != nil {
		return err
	}
	s.println("")
	s.println("Choose the category:")
	for i, c := range catalog.Categories() {
		s.printf("%d) %s\n", i+1, c)
	}
	op, err := s.ask("Option: ")
	if err != nil {
		return err
	}
	categories := catalog.Categories()
	idx := common.AtoiDefault(op, 0)
	if idx < 1 || idx > len(categories) {
		s.println("Invalid option.")
		return nil
	}
	rawPrice, err := s.ask("Price (e.g. 39.9): ")
	if err != nil {
		return err
	}
	price, parseErr := decimal.NewFromString(strings.Replace(rawPrice, ",", ".", 1))
	if parseErr != nil || strings.TrimSpace(name) == "" || !price.IsPositive() {
		s.println("Invalid data.")
		return nil
	}
	p, err := s.products.Register(ctx, catalog.ProductInput{Name: name, Category: categories[idx-1], Price: price})
	if err != nil && p.ID == "" {
		s.fail(err)
		return nil
	}
	s.println("OK! Product created: " + p.ID)
	if err != nil {
		s.fail(err)
	}
	return nil
}
