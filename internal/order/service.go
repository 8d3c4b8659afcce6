package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/events"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

var (
	// ErrOrderNotFound is returned when no order carries the requested number.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDeliveryInfoRequired is returned when a delivery order has no destination.
	ErrDeliveryInfoRequired = errors.New("delivery address is required")
)

// Repository is the append-only ledger.
type Repository interface {
	AllocateOrderNumber() int
	AppendOrder(o Order)
	Orders() []Order
	Order(number int) (Order, bool)
}

// Saver persists the whole store after a mutation.
type Saver interface {
	Save(ctx context.Context) error
}

// CustomerLookup resolves the optional customer reference.
type CustomerLookup interface {
	Get(id string) (customer.Customer, error)
}

// Input is a cart ready for checkout.
type Input struct {
	CustomerID string
	Items      []pricing.LineItem
	Payment    payment.Method
	Coupon     string
	Mode       shipping.Mode
	Delivery   *shipping.DeliveryInfo
}

// Service creates and reads orders.
type Service struct {
	Repo      Repository
	Store     Saver
	Customers CustomerLookup
	Pricing   *pricing.Engine
	Events    *events.Bus
	Now       func() time.Time
	Logger    zerolog.Logger
}

// Create prices the cart, assigns the next order number, appends the order and persists the
// store. Invalid input never consumes a number. When the save fails the order stays in the
// ledger and is returned together with a persistence error.
func (s *Service) Create(ctx context.Context, in Input) (Order, error) {
	if s == nil || s.Repo == nil || s.Pricing == nil {
		return Order{}, errors.New("order service not configured")
	}
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.CustomerID != "" && s.Customers != nil {
		if _, err := s.Customers.Get(in.CustomerID); err != nil {
			return Order{}, err
		}
	}
	switch in.Mode {
	case shipping.ModePickup:
		in.Delivery = nil
	case shipping.ModeDelivery:
		if in.Delivery == nil {
			return Order{}, common.Validation(ErrDeliveryInfoRequired.Error(), ErrDeliveryInfoRequired)
		}
		info := in.Delivery.Normalize()
		if err := info.Validate(); err != nil {
			return Order{}, err
		}
		in.Delivery = &info
	default:
		return Order{}, common.Validation(shipping.ErrUnknownMode.Error(), shipping.ErrUnknownMode)
	}

	quote, err := s.Pricing.Quote(in.Items, in.Payment, in.Coupon, in.Mode, in.Delivery)
	if err != nil {
		return Order{}, err
	}

	promotions := make([]string, 0, len(quote.Discounts.Lines))
	for _, line := range quote.Discounts.Lines {
		promotions = append(promotions, line.Describe())
	}
	o := Order{
		Number:            s.Repo.AllocateOrderNumber(),
		CustomerID:        in.CustomerID,
		Items:             append([]pricing.LineItem(nil), in.Items...),
		Subtotal:          quote.Subtotal,
		Discounts:         quote.Discounts.Total,
		DiscountLines:     quote.Discounts.Lines,
		AppliedPromotions: promotions,
		DeliveryFee:       quote.DeliveryFee,
		Total:             quote.Total,
		PaymentMethod:     in.Payment,
		CreatedAt:         s.now(),
		Mode:              in.Mode,
		Delivery:          in.Delivery,
		Warnings:          quote.Discounts.Warnings,
	}
	s.Repo.AppendOrder(o)
	s.Logger.Info().
		Int("number", o.Number).
		Str("mode", string(o.Mode)).
		Str("payment", string(o.PaymentMethod)).
		Str("total", o.Total.StringFixed(2)).
		Msg("order created")

	var saveErr error
	if s.Store != nil {
		if err := s.Store.Save(ctx); err != nil {
			saveErr = common.Persistence("order kept in memory but the store was not saved", err)
		}
	}
	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, FormatNumber(o.Number), o); err != nil {
			s.Logger.Warn().Err(err).Int("number", o.Number).Msg("order event dispatch failed")
		}
	}
	return o, saveErr
}

// List returns every order in creation order.
func (s *Service) List() []Order {
	return s.Repo.Orders()
}

// ByCustomer returns the orders referencing a customer, oldest first.
func (s *Service) ByCustomer(customerID string) []Order {
	out := make([]Order, 0)
	for _, o := range s.Repo.Orders() {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}

// Get returns an order by number.
func (s *Service) Get(number int) (Order, error) {
	o, ok := s.Repo.Order(number)
	if !ok {
		return Order{}, common.NotFound(ErrOrderNotFound.Error(), ErrOrderNotFound)
	}
	return o, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func isPizza(it pricing.LineItem) bool {
	return catalog.IsPizza(it.Category)
}
