package shell

import (
	"context"
	"strings"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

// orderCategories is the category order shown while building a cart.
var orderCategories = []catalog.Category{catalog.CategorySavoryPizza, catalog.CategoryBeverage, catalog.CategoryDessertPizza}

func (s *Shell) newOrder(ctx context.Context) error {
	s.println("")
	s.println("=== NEW ORDER ===")

	var in order.Input
	link, err := s.ask("Link a customer? (y/n): ")
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(link), "y") {
		id, ok, err := s.pickCustomer()
		if err != nil || !ok {
			return firstErr(err, s.pause())
		}
		in.CustomerID = id
	}

	if in.Mode, in.Delivery, err = s.fulfillment(); err != nil {
		return err
	}

	for {
		cat, ok, err := s.pickCategory()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		p, ok, err := s.pickProduct(cat)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		qty, err := s.quantity(`Qty of "` + p.Name + `": `)
		if err != nil {
			return err
		}
		in.Items = append(in.Items, pricing.LineItem{ProductID: p.ID, Qty: qty, Name: p.Name, UnitPrice: p.Price, Category: p.Category})
		s.printf("Added: %dx %s (%s each).\n", qty, p.Name, common.FormatBRL(p.Price))
	}
	if len(in.Items) == 0 {
		s.println("No items.")
		return s.pause()
	}

	s.println("")
	s.println("Payment methods:")
	for i, m := range payment.Methods() {
		s.printf("%d) %s\n", i+1, m)
	}
	op, err := s.ask("Choose the number: ")
	if err != nil {
		return err
	}
	if in.Payment, err = payment.ByIndex(common.AtoiDefault(op, 0)); err != nil {
		s.println("Invalid option.")
		return s.pause()
	}
	if in.Coupon, err = s.ask("Coupon code? (ENTER to skip): "); err != nil {
		return err
	}

	o, err := s.orders.Create(ctx, in)
	if err != nil && o.Number == 0 {
		s.fail(err)
		return s.pause()
	}
	for _, w := range o.Warnings {
		s.println("Note: " + w)
	}
	s.println("")
	s.printf("== Order OK ==  Order: #%s  Total: %s  Payment: %s\n", order.FormatNumber(o.Number), common.FormatBRL(o.Total), o.PaymentMethod)
	if err != nil {
		s.fail(err)
	}
	return s.pause()
}

func (s *Shell) pickCustomer() (string, bool, error) {
	list := s.customers.List()
	if len(list) == 0 {
		s.println("No customers. Register one first.")
		return "", false, nil
	}
	for _, c := range list {
		s.printf("- %s | Tax ID: %s\n", c.Name, customer.FormatTaxID(c.TaxID))
	}
	taxID, err := s.ask("Customer tax ID: ")
	if err != nil {
		return "", false, err
	}
	c, err := s.customers.FindByTaxID(taxID)
	switch {
	case common.HasCode(err, common.CodeNotFound):
		s.println("Customer not found.")
		return "", false, nil
	case err != nil:
		s.println("Invalid tax ID.")
		return "", false, nil
	}
	return c.ID, true, nil
}

func (s *Shell) fulfillment() (shipping.Mode, *shipping.DeliveryInfo, error) {
	for {
		raw, err := s.ask("Delivery (D) or Pickup (P)? ")
		if err != nil {
			return "", nil, err
		}
		mode, parseErr := shipping.ParseMode(raw)
		if parseErr != nil {
			s.println("Invalid option. Type D for delivery or P for pickup.")
			continue
		}
		if mode == shipping.ModePickup {
			return mode, nil, nil
		}
		var info shipping.DeliveryInfo
		if info.Address, err = s.required("Address: "); err != nil {
			return "", nil, err
		}
		if info.Number, err = s.required("Number: "); err != nil {
			return "", nil, err
		}
		if info.Neighborhood, err = s.ask("Neighborhood (optional, sets the delivery fee): "); err != nil {
			return "", nil, err
		}
		if info.PostalCode, err = s.ask("Postal code (optional): "); err != nil {
			return "", nil, err
		}
		if info.Reference, err = s.ask("Reference point (optional): "); err != nil {
			return "", nil, err
		}
		return mode, &info, nil
	}
}

func (s *Shell) pickCategory() (catalog.Category, bool, error) {
	for {
		s.println("")
		s.println("Categories:")
		for i, c := range orderCategories {
			s.printf("%d) %s\n", i+1, c)
		}
		s.println("0) Finish items")
		op, err := s.ask("Choose the category: ")
		if err != nil {
			return "", false, err
		}
		if op == "0" {
			return "", false, nil
		}
		if idx := common.AtoiDefault(op, 0); idx >= 1 && idx <= len(orderCategories) {
			return orderCategories[idx-1], true, nil
		}
		s.println("Invalid option.")
	}
}

func (s *Shell) pickProduct(cat catalog.Category) (catalog.Product, bool, error) {
	list := s.products.ActiveByCategory(cat)
	if len(list) == 0 {
		s.println("No active items in this category.")
		return catalog.Product{}, false, nil
	}
	for {
		s.println("")
		s.println(strings.ToUpper(string(cat)) + " - available items:")
		for i, p := range list {
			s.printf("%d) %s - %s\n", i+1, p.Name, common.FormatBRL(p.Price))
		}
		s.println("0) Back to categories")
		op, err := s.ask("Choose the item number: ")
		if err != nil {
			return catalog.Product{}, false, err
		}
		if op == "0" {
			return catalog.Product{}, false, nil
		}
		if idx := common.AtoiDefault(op, 0); idx >= 1 && idx <= len(list) {
			return list[idx-1], true, nil
		}
		s.println("Invalid number.")
	}
}

func (s *Shell) listOrders() error {
	s.println("")
	s.println("=== ORDERS ===")
	list := s.orders.List()
	if len(list) == 0 {
		s.println("No orders.")
	}
	for _, o := range list {
		s.printOrder(o)
	}
	return s.pause()
}

func (s *Shell) findOrder(context.Context) error {
	raw, err := s.ask("Order number: ")
	if err != nil {
		return err
	}
	n, ok := wholeNumber(strings.TrimLeft(raw, "#"))
	if !ok || n <= 0 {
		s.println("Invalid number.")
		return nil
	}
	o, err := s.orders.Get(n)
	if err != nil {
		if common.HasCode(err, common.CodeNotFound) {
			s.println("Order not found.")
			return nil
		}
		s.fail(err)
		return nil
	}
	s.printOrder(o)
	for _, it := range o.Items {
		s.printf("  %dx %s @ %s\n", it.Qty, it.Name, common.FormatBRL(it.UnitPrice))
	}
	for _, p := range o.AppliedPromotions {
		s.println("  - " + p)
	}
	s.println("  Payment: " + string(o.PaymentMethod))
	return nil
}

func (s *Shell) printOrder(o order.Order) {
	name, taxID := "-", "-"
	if o.CustomerID != "" {
		if c, err := s.customers.Get(o.CustomerID); err == nil {
			name, taxID = c.Name, customer.FormatTaxID(c.TaxID)
		}
	}
	fee := ""
	if o.DeliveryFee.IsPositive() {
		fee = " + fee " + common.FormatBRL(o.DeliveryFee)
	} else if o.Mode == shipping.ModeDelivery {
		fee = " (free delivery)"
	}
	discount := ""
	if o.Discounts.IsPositive() {
		discount = " | disc: -" + common.FormatBRL(o.Discounts)
	}
	s.printf("- #%s | %s | mode: %s | customer: %s (%s) | items: %d | total: %s%s%s\n",
		order.FormatNumber(o.Number), common.FormatDateTime(o.CreatedAt, s.location), o.Mode,
		name, taxID, len(o.Items), common.FormatBRL(o.Total), fee, discount)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
