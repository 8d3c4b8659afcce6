package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/export"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/reports"
)

func (s *Shell) searchMenu(ctx context.Context) error {
	s.println("")
	s.println("=== SEARCH / REPORTS ===")
	s.println("1) Search promotions")
	s.println("2) Search payment methods")
	s.println("3) Purchase history by tax ID")
	s.println("4) Report: pizzas sold by day")
	s.println("5) Report: pizzas sold in a month")
	s.println("6) Report: revenue by day")
	s.println("7) Report: revenue in a month")
	s.println("8) Flavor ranking by period")
	s.println("9) Export CSV: pizzas sold by day")
	s.println("10) Export CSV: pizzas sold in a month")
	s.println("11) Export CSV: revenue by day")
	s.println("12) Export CSV: revenue in a month")
	s.println("13) Export CSV: flavor ranking (period)")
	s.println("14) Export CSV: history by tax ID")
	s.println("15) Find order by number")
	s.println("0) Back")
	op, err := s.ask("Choose: ")
	if err != nil {
		return err
	}
	actions := map[string]func(context.Context) error{
		"1":  s.searchPromotions,
		"2":  s.searchPayments,
		"3":  s.customerHistory,
		"4":  s.pizzasByDay,
		"5":  s.pizzasInMonth,
		"6":  s.revenueByDay,
		"7":  s.revenueInMonth,
		"8":  s.flavorRanking,
		"9":  s.exportPizzasByDay,
		"10": s.exportPizzasInMonth,
		"11": s.exportRevenueByDay,
		"12": s.exportRevenueInMonth,
		"13": s.exportFlavorRanking,
		"14": s.exportHistory,
		"15": s.findOrder,
	}
	if op == "0" {
		return nil
	}
	action, ok := actions[op]
	if !ok {
		s.println("Invalid option.")
		return s.pause()
	}
	if err := action(ctx); err != nil {
		return err
	}
	return s.pause()
}

func (s *Shell) searchPromotions(context.Context) error {
	term, err := s.ask("Keyword (ENTER = list all): ")
	if err != nil {
		return err
	}
	list := pricing.SearchPromotions(term)
	if len(list) == 0 {
		s.println("No promotion found.")
		return nil
	}
	s.println("")
	s.println("== PROMOTIONS ==")
	for _, p := range list {
		line := "- " + p.Name
		if p.Code != "" {
			line += " | Coupon: " + p.Code
		}
		s.println(line)
		rule := "  Rule: " + p.Rule
		if p.Note != "" {
			rule += " | Note: " + p.Note
		}
		s.println(rule)
	}
	return nil
}

func (s *Shell) searchPayments(context.Context) error {
	term, err := s.ask("Filter by term (ENTER = all): ")
	if err != nil {
		return err
	}
	s.println("")
	s.println("== ACCEPTED PAYMENT METHODS ==")
	for _, m := range payment.Search(term) {
		s.println("- " + string(m))
	}
	return nil
}

func (s *Shell) history(ctx context.Context) (reports.History, bool, error) {
	raw, err := s.ask("Customer tax ID (digits only): ")
	if err != nil {
		return reports.History{}, false, err
	}
	h, err := s.reports.CustomerHistory(ctx, raw)
	switch {
	case common.HasCode(err, common.CodeNotFound):
		s.println("Customer not found.")
		return h, false, nil
	case common.HasCode(err, common.CodeValidation):
		s.println("Invalid tax ID.")
		return h, false, nil
	case err != nil:
		s.fail(err)
		return h, false, nil
	}
	if h.Count == 0 {
		s.println("Customer has no orders yet.")
		return h, false, nil
	}
	return h, true, nil
}

func (s *Shell) customerHistory(ctx context.Context) error {
	h, ok, err := s.history(ctx)
	if err != nil || !ok {
		return err
	}
	s.println("")
	s.printf("== HISTORY OF %s (%s) ==\n", h.Customer.Name, customer.FormatTaxID(h.Customer.TaxID))
	s.printf("Orders: %d | Total spent: %s\n", h.Count, common.FormatBRL(h.TotalSpent))
	s.println("")
	s.println("Latest orders:")
	for _, o := range h.Recent() {
		s.printf("- #%s | %s | %s | %s\n", order.FormatNumber(o.Number), common.FormatDateTime(o.CreatedAt, s.location), common.FormatBRL(o.Total), o.Mode)
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Qty, it.Name))
		}
		s.println("  Items: " + strings.Join(names, ", "))
	}
	return nil
}

func (s *Shell) pizzasByDay(ctx context.Context) error {
	days := s.reports.PizzasByDay(ctx)
	if len(days) == 0 {
		s.println("No pizza sales recorded.")
		return nil
	}
	s.println("")
	s.println("== PIZZAS SOLD BY DAY ==")
	for _, d := range days {
		s.printf("%s: %d pizza(s)\n", d.Day, d.Pizzas)
	}
	return nil
}

func (s *Shell) pizzasInMonth(ctx context.Context) error {
	year, month, err := s.period()
	if err != nil {
		return err
	}
	m, err := s.reports.PizzasInMonth(ctx, year, month)
	if err != nil {
		s.println("Invalid month/year.")
		return nil
	}
	s.println("")
	s.printf("== PIZZAS SOLD IN %02d/%d ==\n", month, year)
	s.printf("Total: %d pizza(s)\n", m.Total)
	if m.Total == 0 {
		return nil
	}
	s.println("")
	s.printf("Top flavors (up to %d):\n", reports.MonthTopFlavors)
	for _, f := range m.TopFlavors() {
		s.printf("- %s: %d\n", f.Flavor, f.Qty)
	}
	s.println("")
	s.println("By day:")
	for _, d := range m.ByDay {
		s.printf("%s: %d\n", d.Day, d.Pizzas)
	}
	return nil
}

func (s *Shell) revenueByDay(ctx context.Context) error {
	days := s.reports.RevenueByDay(ctx)
	if len(days) == 0 {
		s.println("No revenue recorded.")
		return nil
	}
	s.println("")
	s.println("== REVENUE BY DAY ==")
	for _, d := range days {
		s.printf("%s: %s\n", d.Day, common.FormatBRL(d.Total))
	}
	return nil
}

func (s *Shell) revenueInMonth(ctx context.Context) error {
	year, month, err := s.period()
	if err != nil {
		return err
	}
	m, err := s.reports.RevenueInMonth(ctx, year, month)
	if err != nil {
		s.println("Invalid month/year.")
		return nil
	}
	s.println("")
	s.printf("== REVENUE %02d/%d ==\n", month, year)
	s.printf("Month total: %s\n", common.FormatBRL(m.Total))
	if !m.Total.IsPositive() {
		return nil
	}
	s.println("")
	s.println("By day:")
	for _, d := range m.ByDay {
		s.printf("%s: %s\n", d.Day, common.FormatBRL(d.Total))
	}
	return nil
}

func (s *Shell) ranking(ctx context.Context) (reports.Ranking, error) {
	s.println("Enter the period (dd/mm/yyyy). Leave blank for no filter.")
	from, err := s.date("Start date: ")
	if err != nil {
		return reports.Ranking{}, err
	}
	to, err := s.date("End date: ")
	if err != nil {
		return reports.Ranking{}, err
	}
	return s.reports.FlavorRanking(ctx, from, to), nil
}

func (s *Shell) flavorRanking(ctx context.Context) error {
	r, err := s.ranking(ctx)
	if err != nil {
		return err
	}
	s.println("")
	s.println("== FLAVOR RANKING BY PERIOD ==")
	s.printf("Pizzas sold in the period: %d\n", r.TotalPizzas)
	if r.TotalPizzas == 0 {
		return nil
	}
	s.println("")
	s.printf("Top flavors (up to %d):\n", reports.PeriodTopFlavors)
	for _, f := range r.Top() {
		s.printf("- %s: %d un. | Revenue: %s\n", f.Flavor, f.Qty, common.FormatBRL(f.Revenue))
	}
	return nil
}

func (s *Shell) exportPizzasByDay(ctx context.Context) error {
	path, err := s.exporter.PizzasByDay(s.reports.PizzasByDay(ctx))
	s.exported(err, path)
	return nil
}

func (s *Shell) exportPizzasInMonth(ctx context.Context) error {
	year, month, err := s.period()
	if err != nil {
		return err
	}
	m, err := s.reports.PizzasInMonth(ctx, year, month)
	if err != nil {
		s.println("Invalid month/year.")
		return nil
	}
	paths, err := s.exporter.PizzasInMonth(m)
	s.exported(err, paths...)
	return nil
}

func (s *Shell) exportRevenueByDay(ctx context.Context) error {
	path, err := s.exporter.RevenueByDay(s.reports.RevenueByDay(ctx))
	s.exported(err, path)
	return nil
}

func (s *Shell) exportRevenueInMonth(ctx context.Context) error {
	year, month, err := s.period()
	if err != nil {
		return err
	}
	m, err := s.reports.RevenueInMonth(ctx, year, month)
	if err != nil {
		s.println("Invalid month/year.")
		return nil
	}
	path, err := s.exporter.RevenueInMonth(m)
	s.exported(err, path)
	return nil
}

func (s *Shell) exportFlavorRanking(ctx context.Context) error {
	r, err := s.ranking(ctx)
	if err != nil {
		return err
	}
	path, err := s.exporter.FlavorRanking(r)
	s.exported(err, path)
	return nil
}

func (s *Shell) exportHistory(ctx context.Context) error {
	h, ok, err := s.history(ctx)
	if err != nil || !ok {
		return err
	}
	path, err := s.exporter.CustomerHistory(h)
	s.exported(err, path)
	return nil
}

func (s *Shell) exported(err error, paths ...string) {
	switch {
	case errors.Is(err, export.ErrNoData):
		s.println("No data to export.")
	case err != nil:
		s.println("Export failed: " + err.Error())
	}
	for _, p := range paths {
		if p != "" {
			s.println("CSV saved: " + p)
		}
	}
}
