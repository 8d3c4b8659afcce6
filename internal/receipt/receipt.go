package receipt

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/events"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

const rule = "--------------------------------"

// Render lays out the receipt of an order. c may be nil for anonymous orders.
func Render(o order.Order, c *customer.Customer, loc *time.Location) []string {
	lines := []string{
		"===== RECEIPT =====",
		"Order: #" + order.FormatNumber(o.Number),
		"Date: " + common.FormatDateTime(o.CreatedAt, loc),
	}
	if c != nil {
		lines = append(lines, fmt.Sprintf("Customer: %s - Tax ID: %s", c.Name, customer.FormatTaxID(c.TaxID)))
	}
	lines = append(lines, "Mode: "+string(o.Mode))
	if o.Mode == shipping.ModeDelivery && o.Delivery != nil {
		d := o.Delivery
		addr := []string{fmt.Sprintf("Address: %s, %s", d.Address, d.Number)}
		if d.Neighborhood != "" {
			addr = append(addr, "Neighborhood: "+d.Neighborhood)
		}
		if d.PostalCode != "" {
			addr = append(addr, "Postal code: "+d.PostalCode)
		}
		lines = append(lines, strings.Join(addr, " | "))
		if d.Reference != "" {
			lines = append(lines, "Reference: "+d.Reference)
		}
	} else {
		lines = append(lines, "Pickup at the counter")
	}

	lines = append(lines, rule)
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%dx %s @ %s = %s", it.Qty, it.Name, common.FormatBRL(it.UnitPrice), common.FormatBRL(it.Total())))
	}
	lines = append(lines, rule, "SUBTOTAL: "+common.FormatBRL(o.Subtotal))

	if len(o.AppliedPromotions) > 0 {
		lines = append(lines, "DISCOUNTS:")
		for _, p := range o.AppliedPromotions {
			lines = append(lines, " - "+p)
		}
		lines = append(lines, "TOTAL DISCOUNTS: -"+common.FormatBRL(o.Discounts))
	} else {
		lines = append(lines, "DISCOUNTS: (none)")
	}

	if o.DeliveryFee.IsPositive() {
		lines = append(lines, "Delivery fee: "+common.FormatBRL(o.DeliveryFee))
	} else if o.Mode == shipping.ModeDelivery {
		lines = append(lines, fmt.Sprintf("FREE delivery (orders from %s)", common.FormatBRL(shipping.FreeDeliveryThreshold)))
	}

	return append(lines,
		"TOTAL: "+common.FormatBRL(o.Total),
		"Payment: "+strings.ToUpper(string(o.PaymentMethod)),
		"Thank you for your preference!",
	)
}

// FileName is the receipt file of an order, e.g. cupom-0007.txt.
func FileName(number int) string {
	return fmt.Sprintf("cupom-%s.txt", order.FormatNumber(number))
}

// CustomerLookup resolves the customer printed on the receipt.
type CustomerLookup interface {
	Get(id string) (customer.Customer, error)
}

// Writer stores receipts as text files and echoes them to Out.
type Writer struct {
	Dir       string
	Out       io.Writer
	Customers CustomerLookup
	Location  *time.Location
	Logger    zerolog.Logger
}

// Write renders the receipt, prints it and stores the diacritic-stripped text. It returns the
// file path.
func (w *Writer) Write(o order.Order) (string, error) {
	var c *customer.Customer
	if o.CustomerID != "" && w.Customers != nil {
		if found, err := w.Customers.Get(o.CustomerID); err == nil {
			c = &found
		}
	}
	text := strings.Join(Render(o, c, w.Location), "\n")
	if w.Out != nil {
		fmt.Fprintln(w.Out)
		fmt.Fprintln(w.Out, text)
	}

	path := filepath.Join(w.Dir, FileName(o.Number))
	err := os.WriteFile(path, []byte(common.StripDiacritics(text)), 0o644)
	obs.RecordExport("receipt", err)
	if err != nil {
		w.Logger.Error().Err(err).Str("path", path).Msg("receipt not saved")
		return "", fmt.Errorf("write receipt %s: %w", path, err)
	}
	w.Logger.Info().Str("path", path).Int("number", o.Number).Msg("receipt saved")
	if w.Out != nil {
		fmt.Fprintf(w.Out, "\nReceipt saved: %s\n", path)
	}
	return path, nil
}

// Notify writes the receipt for order.created events.
func (w *Writer) Notify(_ context.Context, ev events.Event) error {
	if ev.Topic != events.TopicOrderCreated {
		return nil
	}
	o, ok := ev.Data.(order.Order)
	if !ok {
		return fmt.Errorf("receipt: unexpected payload %T", ev.Data)
	}
	_, err := w.Write(o)
	return err
}
