package reports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
)

// Display cutoffs for flavor rankings.
const (
	MonthTopFlavors   = 10
	PeriodTopFlavors  = 15
	RecentOrdersLimit = 5
)

// ErrInvalidPeriod is returned for a month outside 1..12 or a year before 1970.
var ErrInvalidPeriod = errors.New("invalid month/year")

// Ledger is the read side of the order ledger.
type Ledger interface {
	List() []order.Order
	ByCustomer(customerID string) []order.Order
}

// CustomerFinder resolves a typed tax ID.
type CustomerFinder interface {
	FindByTaxID(raw string) (customer.Customer, error)
}

// Service aggregates the ledger. Results are optionally cached in Redis under a key that
// includes the scope, the ledger size and the last order number, so a new order invalidates
// every entry.
type Service struct {
	Orders    Ledger
	Customers CustomerFinder
	Cache     *Cache
	Location  *time.Location
	Logger    zerolog.Logger

	// Scope separates stores sharing one Redis, usually the store file path.
	Scope string
}

// DayCount is the number of pizzas sold on a day.
type DayCount struct {
	Day    string `json:"day"`
	Pizzas int    `json:"pizzas"`
}

// DayRevenue is the sum of order totals on a day.
type DayRevenue struct {
	Day   string        `json:"day"`
	Total pricing.Money `json:"total"`
}

// FlavorCount is the quantity and revenue of one pizza flavor.
type FlavorCount struct {
	Flavor  string        `json:"flavor"`
	Qty     int           `json:"qty"`
	Revenue pricing.Money `json:"revenue"`
}

// MonthPizzas summarises the pizzas sold in a month.
type MonthPizzas struct {
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Total   int           `json:"total"`
	Flavors []FlavorCount `json:"flavors"`
	ByDay   []DayCount    `json:"by_day"`
}

// TopFlavors returns the best sellers up to the display cutoff.
func (m MonthPizzas) TopFlavors() []FlavorCount {
	return top(m.Flavors, MonthTopFlavors)
}

// MonthRevenue summarises the revenue of a month.
type MonthRevenue struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Total pricing.Money `json:"total"`
	ByDay []DayRevenue  `json:"by_day"`
}

// Ranking orders pizza flavors by quantity over an optional period.
type Ranking struct {
	From        string        `json:"from,omitempty"`
	To          string        `json:"to,omitempty"`
	TotalPizzas int           `json:"total_pizzas"`
	Flavors     []FlavorCount `json:"flavors"`
}

// Top returns the best sellers up to the display cutoff.
func (r Ranking) Top() []FlavorCount {
	return top(r.Flavors, PeriodTopFlavors)
}

// History is a customer's purchase summary.
type History struct {
	Customer   customer.Customer `json:"customer"`
	Count      int               `json:"count"`
	TotalSpent pricing.Money     `json:"total_spent"`
	// Orders are oldest first.
	Orders []order.Order `json:"orders"`
}

// Recent returns the latest orders, newest first.
func (h History) Recent() []order.Order {
	n := len(h.Orders)
	if n > RecentOrdersLimit {
		n = RecentOrdersLimit
	}
	out := make([]order.Order, 0, n)
	for i := len(h.Orders) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Orders[i])
	}
	return out
}

// PizzasByDay counts pizzas per calendar day, oldest first. Days without pizzas are omitted.
func (s *Service) PizzasByDay(ctx context.Context) []DayCount {
	orders := s.Orders.List()
	var out []DayCount
	if s.fromCache(ctx, s.key(orders, "pizzas_by_day"), &out) {
		return out
	}
	byDay := map[string]int{}
	for _, o := range orders {
		if n := o.PizzaCount(); n > 0 {
			byDay[s.day(o.CreatedAt)] += n
		}
	}
	out = make([]DayCount, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		out = append(out, DayCount{Day: day, Pizzas: byDay[day]})
	}
	s.toCache(ctx, s.key(orders, "pizzas_by_day"), out)
	return out
}

// PizzasInMonth reports total pizzas, flavors by quantity and a per-day breakdown.
func (s *Service) PizzasInMonth(ctx context.Context, year, month int) (MonthPizzas, error) {
	if err := validatePeriod(year, month); err != nil {
		return MonthPizzas{}, err
	}
	orders := s.Orders.List()
	key := s.key(orders, "pizzas_in_month", year, month)
	var out MonthPizzas
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	out = MonthPizzas{Year: year, Month: month}
	flavors := newFlavorTally()
	byDay := map[string]int{}
	for _, o := range orders {
		if !s.inMonth(o.CreatedAt, year, month) {
			continue
		}
		for _, it := range o.Items {
			if !catalog.IsPizza(it.Category) {
				continue
			}
			out.Total += it.Qty
			flavors.add(it)
			byDay[s.day(o.CreatedAt)] += it.Qty
		}
	}
	out.Flavors = flavors.sorted()
	out.ByDay = make([]DayCount, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		out.ByDay = append(out.ByDay, DayCount{Day: day, Pizzas: byDay[day]})
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// RevenueByDay sums order totals per calendar day, oldest first.
func (s *Service) RevenueByDay(ctx context.Context) []DayRevenue {
	orders := s.Orders.List()
	var out []DayRevenue
	if s.fromCache(ctx, s.key(orders, "revenue_by_day"), &out) {
		return out
	}
	byDay := map[string]decimal.Decimal{}
	for _, o := range orders {
		day := s.day(o.CreatedAt)
		byDay[day] = byDay[day].Add(o.Total)
	}
	out = make([]DayRevenue, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		out = append(out, DayRevenue{Day: day, Total: byDay[day]})
	}
	s.toCache(ctx, s.key(orders, "revenue_by_day"), out)
	return out
}

// RevenueInMonth sums order totals of a month with a per-day breakdown.
func (s *Service) RevenueInMonth(ctx context.Context, year, month int) (MonthRevenue, error) {
	if err := validatePeriod(year, month); err != nil {
		return MonthRevenue{}, err
	}
	orders := s.Orders.List()
	key := s.key(orders, "revenue_in_month", year, month)
	var out MonthRevenue
	if s.fromCache(ctx, key, &out) {
		return out, nil
	}
	out = MonthRevenue{Year: year, Month: month, Total: decimal.Zero}
	byDay := map[string]decimal.Decimal{}
	for _, o := range orders {
		if !s.inMonth(o.CreatedAt, year, month) {
			continue
		}
		out.Total = out.Total.Add(o.Total)
		day := s.day(o.CreatedAt)
		byDay[day] = byDay[day].Add(o.Total)
	}
	out.ByDay = make([]DayRevenue, 0, len(byDay))
	for _, day := range sortedKeys(byDay) {
		out.ByDay = append(out.ByDay, DayRevenue{Day: day, Total: byDay[day]})
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// FlavorRanking ranks pizza flavors by quantity between two optional dates. Both bounds are
// whole local days and inclusive.
func (s *Service) FlavorRanking(ctx context.Context, from, to *time.Time) Ranking {
	orders := s.Orders.List()
	var out Ranking
	var start, end time.Time
	if from != nil {
		start = s.startOfDay(*from)
		out.From = start.Format(time.DateOnly)
	}
	if to != nil {
		end = s.startOfDay(*to).AddDate(0, 0, 1)
		out.To = s.startOfDay(*to).Format(time.DateOnly)
	}
	key := s.key(orders, "flavor_ranking", out.From, out.To)
	if s.fromCache(ctx, key, &out) {
		return out
	}
	flavors := newFlavorTally()
	for _, o := range orders {
		if from != nil && o.CreatedAt.Before(start) {
			continue
		}
		if to != nil && !o.CreatedAt.Before(end) {
			continue
		}
		for _, it := range o.Items {
			if catalog.IsPizza(it.Category) {
				out.TotalPizzas += it.Qty
				flavors.add(it)
			}
		}
	}
	out.Flavors = flavors.sorted()
	s.toCache(ctx, key, out)
	return out
}

// CustomerHistory looks the customer up by tax ID and summarises their orders.
func (s *Service) CustomerHistory(_ context.Context, taxID string) (History, error) {
	if s.Customers == nil {
		return History{}, errors.New("customer lookup not configured")
	}
	c, err := s.Customers.FindByTaxID(taxID)
	if err != nil {
		return History{}, err
	}
	h := History{Customer: c, TotalSpent: decimal.Zero, Orders: []order.Order{}}
	for _, o := range s.Orders.ByCustomer(c.ID) {
		h.Count++
		h.TotalSpent = h.TotalSpent.Add(o.Total)
		h.Orders = append(h.Orders, o)
	}
	return h, nil
}

func validatePeriod(year, month int) error {
	if month < 1 || month > 12 || year < 1970 {
		return common.Validation(ErrInvalidPeriod.Error(), ErrInvalidPeriod)
	}
	return nil
}

func (s *Service) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s *Service) day(t time.Time) string {
	return t.In(s.location()).Format(time.DateOnly)
}

func (s *Service) inMonth(t time.Time, year, month int) bool {
	local := t.In(s.location())
	return local.Year() == year && int(local.Month()) == month
}

func (s *Service) startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.location())
}

func (s *Service) key(orders []order.Order, report string, params ...any) string {
	last := 0
	if n := len(orders); n > 0 {
		last = orders[n-1].Number
	}
	parts := []string{"rp", scopeHash(s.Scope), report, s.location().String(), fmt.Sprintf("%d-%d", len(orders), last)}
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ":")
}

func scopeHash(scope string) string {
	sum := sha256.Sum256([]byte(scope))
	return hex.EncodeToString(sum[:6])
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	ok, err := s.Cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.Logger.Debug().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	return ok
}

func (s *Service) toCache(ctx context.Context, key string, v any) {
	if err := s.Cache.SetJSON(ctx, key, v); err != nil {
		s.Logger.Debug().Err(err).Str("key", key).Msg("report cache write failed")
	}
}

// flavorTally keeps first-seen order so ties rank in order of appearance.
type flavorTally struct {
	index map[string]int
	items []FlavorCount
}

func newFlavorTally() *flavorTally {
	return &flavorTally{index: map[string]int{}}
}

func (f *flavorTally) add(it pricing.LineItem) {
	i, ok := f.index[it.Name]
	if !ok {
		i = len(f.items)
		f.index[it.Name] = i
		f.items = append(f.items, FlavorCount{Flavor: it.Name, Revenue: decimal.Zero})
	}
	f.items[i].Qty += it.Qty
	f.items[i].Revenue = f.items[i].Revenue.Add(it.Total())
}

func (f *flavorTally) sorted() []FlavorCount {
	out := append([]FlavorCount{}, f.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Qty > out[j].Qty })
	return out
}

func top(in []FlavorCount, n int) []FlavorCount {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
