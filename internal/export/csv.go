package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/reports"
)

// ErrNoData is returned when a report has no rows to export.
var ErrNoData = errors.New("no data to export")

// Exporter writes report rows as CSV files.
type Exporter struct {
	Dir      string
	Now      func() time.Time
	Location *time.Location
	Logger   zerolog.Logger
}

// WriteCSV writes <base>-<yyyymmdd-hhmmss>.csv with a header row and returns its path.
func (e *Exporter) WriteCSV(base string, header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s.csv", fileSafe(base), common.FileStamp(e.now(), e.Location))
	path := filepath.Join(e.Dir, name)
	err := os.WriteFile(path, buf.Bytes(), 0o644)
	obs.RecordExport("csv", err)
	if err != nil {
		e.Logger.Error().Err(err).Str("path", path).Msg("csv export failed")
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	e.Logger.Info().Str("path", path).Int("rows", len(rows)).Msg("csv exported")
	return path, nil
}

// PizzasByDay exports the daily pizza counts.
func (e *Exporter) PizzasByDay(days []reports.DayCount) (string, error) {
	if len(days) == 0 {
		return "", ErrNoData
	}
	return e.WriteCSV("pizzas_by_day", []string{"day", "pizzas"}, dayCountRows(days))
}

// PizzasInMonth exports two files: the per-day breakdown and every flavor by quantity.
func (e *Exporter) PizzasInMonth(m reports.MonthPizzas) ([]string, error) {
	if len(m.Flavors) == 0 {
		return nil, ErrNoData
	}
	prefix := fmt.Sprintf("pizzas_month_%04d-%02d", m.Year, m.Month)
	byDay, err := e.WriteCSV(prefix+"_by_day", []string{"day", "pizzas"}, dayCountRows(m.ByDay))
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(m.Flavors))
	for _, f := range m.Flavors {
		rows = append(rows, []string{f.Flavor, strconv.Itoa(f.Qty)})
	}
	byFlavor, err := e.WriteCSV(prefix+"_by_flavor", []string{"flavor", "pizzas"}, rows)
	if err != nil {
		return []string{byDay}, err
	}
	return []string{byDay, byFlavor}, nil
}

// RevenueByDay exports the daily revenue.
func (e *Exporter) RevenueByDay(days []reports.DayRevenue) (string, error) {
	if len(days) == 0 {
		return "", ErrNoData
	}
	return e.WriteCSV("revenue_by_day", []string{"day", "total"}, dayRevenueRows(days))
}

// RevenueInMonth exports the per-day revenue of a month.
func (e *Exporter) RevenueInMonth(m reports.MonthRevenue) (string, error) {
	if len(m.ByDay) == 0 {
		return "", ErrNoData
	}
	base := fmt.Sprintf("revenue_month_%04d-%02d_by_day", m.Year, m.Month)
	return e.WriteCSV(base, []string{"day", "total"}, dayRevenueRows(m.ByDay))
}

// FlavorRanking exports the full ranking, not only the displayed top.
func (e *Exporter) FlavorRanking(r reports.Ranking) (string, error) {
	if len(r.Flavors) == 0 {
		return "", ErrNoData
	}
	from, to := r.From, r.To
	if from == "" {
		from = "start"
	}
	if to == "" {
		to = "end"
	}
	rows := make([][]string, 0, len(r.Flavors))
	for _, f := range r.Flavors {
		rows = append(rows, []string{f.Flavor, strconv.Itoa(f.Qty), common.FormatPlain(f.Revenue)})
	}
	return e.WriteCSV(fmt.Sprintf("flavor_ranking_%s_%s", from, to), []string{"flavor", "qty", "revenue"}, rows)
}

// CustomerHistory exports every order of a customer.
func (e *Exporter) CustomerHistory(h reports.History) (string, error) {
	if len(h.Orders) == 0 {
		return "", ErrNoData
	}
	rows := make([][]string, 0, len(h.Orders))
	for _, o := range h.Orders {
		rows = append(rows, []string{
			"#" + order.FormatNumber(o.Number),
			common.FormatDateTime(o.CreatedAt, e.Location),
			string(o.Mode),
			common.FormatPlain(o.Subtotal),
			common.FormatPlain(o.Discounts),
			common.FormatPlain(o.DeliveryFee),
			common.FormatPlain(o.Total),
			string(o.PaymentMethod),
			itemsSummary(o, " | "),
		})
	}
	base := fmt.Sprintf("history_%s_%s", common.StripDiacritics(h.Customer.Name), customer.NormalizeTaxID(h.Customer.TaxID))
	header := []string{"order", "date", "mode", "subtotal", "discounts", "delivery_fee", "total", "payment", "items"}
	return e.WriteCSV(base, header, rows)
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func dayCountRows(days []reports.DayCount) [][]string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Day, strconv.Itoa(d.Pizzas)})
	}
	return rows
}

func dayRevenueRows(days []reports.DayRevenue) [][]string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Day, common.FormatPlain(d.Total)})
	}
	return rows
}

func itemsSummary(o order.Order, sep string) string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Qty, it.Name))
	}
	return strings.Join(parts, sep)
}

func fileSafe(base string) string {
	return strings.NewReplacer("/", "-", `\`, "-", ":", "-").Replace(strings.TrimSpace(base))
}
