package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/events"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
)

type memoryLedger struct {
	next   int
	orders []order.Order
}

func (m *memoryLedger) AllocateOrderNumber() int {
	m.next++
	return m.next
}

func (m *memoryLedger) AppendOrder(o order.Order) { m.orders = append(m.orders, o) }

func (m *memoryLedger) Orders() []order.Order { return append([]order.Order(nil), m.orders...) }

func (m *memoryLedger) Order(number int) (order.Order, bool) {
	for _, o := range m.orders {
		if o.Number == number {
			return o, true
		}
	}
	return order.Order{}, false
}

type stubCustomers map[string]customer.Customer

func (s stubCustomers) Get(id string) (customer.Customer, error) {
	c, ok := s[id]
	if !ok {
		return customer.Customer{}, common.NotFound("customer not found", customer.ErrCustomerNotFound)
	}
	return c, nil
}

type stubSaver struct {
	calls int
	err   error
}

func (s *stubSaver) Save(context.Context) error {
	s.calls++
	return s.err
}

var fixedNow = time.Date(2025, 3, 5, 19, 45, 0, 0, time.UTC)

func newService() (*order.Service, *memoryLedger, *stubSaver) {
	ledger := &memoryLedger{}
	saver := &stubSaver{}
	svc := &order.Service{
		Repo:      ledger,
		Store:     saver,
		Customers: stubCustomers{"id_1": {ID: "id_1", TaxID: "12345678909", Name: "Ana"}},
		Pricing:   &pricing.Engine{Now: func() time.Time { return fixedNow }, Logger: zerolog.Nop()},
		Now:       func() time.Time { return fixedNow },
		Logger:    zerolog.Nop(),
	}
	return svc, ledger, saver
}

func cart() []pricing.LineItem {
	return []pricing.LineItem{
		{ProductID: "id_5", Name: "Calabresa", Qty: 1, UnitPrice: decimal.RequireFromString("42.90"), Category: catalog.CategorySavoryPizza},
		{ProductID: "id_27", Name: "Refrigerante 2L", Qty: 1, UnitPrice: decimal.RequireFromString("14.00"), Category: catalog.CategoryBeverage},
	}
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	svc, ledger, saver := newService()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		o, err := svc.Create(ctx, order.Input{Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModePickup})
		require.NoError(t, err)
		require.Equal(t, want, o.Number)
	}
	require.Len(t, ledger.orders, 3)
	require.Equal(t, 3, saver.calls)

	o := ledger.orders[0]
	require.Equal(t, "56.90", o.Subtotal.StringFixed(2))
	require.Equal(t, "5.00", o.Discounts.StringFixed(2))
	require.Equal(t, "51.90", o.Total.StringFixed(2))
	require.Equal(t, []string{"Pizza + drink combo (-R$ 5,00)"}, o.AppliedPromotions)
	require.Equal(t, fixedNow, o.CreatedAt)
	require.Nil(t, o.Delivery)
	require.Equal(t, 1, o.PizzaCount())
}

func TestCreateValidationDoesNotConsumeNumber(t *testing.T) {
	svc, ledger, saver := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, order.Input{Payment: payment.MethodCash, Mode: shipping.ModePickup})
	require.ErrorIs(t, err, pricing.ErrEmptyCart)

	_, err = svc.Create(ctx, order.Input{Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModeDelivery})
	require.ErrorIs(t, err, order.ErrDeliveryInfoRequired)

	_, err = svc.Create(ctx, order.Input{
		Items:    cart(),
		Payment:  payment.MethodCash,
		Mode:     shipping.ModeDelivery,
		Delivery: &shipping.DeliveryInfo{Address: "Rua das Flores"},
	})
	require.True(t, common.HasCode(err, common.CodeValidation))

	_, err = svc.Create(ctx, order.Input{Items: cart(), Payment: payment.MethodCash, Mode: "DRONE"})
	require.ErrorIs(t, err, shipping.ErrUnknownMode)

	_, err = svc.Create(ctx, order.Input{CustomerID: "id_404", Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModePickup})
	require.True(t, common.HasCode(err, common.CodeNotFound))

	require.Empty(t, ledger.orders)
	require.Zero(t, saver.calls)

	o, err := svc.Create(ctx, order.Input{Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModePickup})
	require.NoError(t, err)
	require.Equal(t, 1, o.Number)
}

func TestCreateDeliveryOrder(t *testing.T) {
	svc, _, _ := newService()

	o, err := svc.Create(context.Background(), order.Input{
		CustomerID: "id_1",
		Items:      cart(),
		Payment:    payment.MethodPix,
		Coupon:     "pix5",
		Mode:       shipping.ModeDelivery,
		Delivery:   &shipping.DeliveryInfo{Address: " Rua das Flores ", Number: "12", Neighborhood: "Vianelo"},
	})
	require.NoError(t, err)
	require.Equal(t, "id_1", o.CustomerID)
	require.Equal(t, "10.00", o.Discounts.StringFixed(2))
	require.Equal(t, "7.00", o.DeliveryFee.StringFixed(2))
	require.Equal(t, "53.90", o.Total.StringFixed(2))
	require.Equal(t, "Rua das Flores", o.Delivery.Address)
	require.Len(t, o.AppliedPromotions, 2)
}

func TestCreatePickupDropsDeliveryInfo(t *testing.T) {
	svc, _, _ := newService()

	o, err := svc.Create(context.Background(), order.Input{
		Items:    cart(),
		Payment:  payment.MethodCash,
		Coupon:   "WELCOME",
		Mode:     shipping.ModePickup,
		Delivery: &shipping.DeliveryInfo{Address: "Rua A", Number: "1"},
	})
	require.NoError(t, err)
	require.Nil(t, o.Delivery)
	require.True(t, o.DeliveryFee.IsZero())
	require.Len(t, o.Warnings, 1)
}

func TestCreateKeepsOrderWhenSaveFails(t *testing.T) {
	svc, ledger, saver := newService()
	saver.err = errors.New("no space left on device")

	o, err := svc.Create(context.Background(), order.Input{Items: cart(), Payment: payment.MethodDebit, Mode: shipping.ModePickup})
	require.True(t, common.HasCode(err, common.CodePersistence))
	require.Equal(t, 1, o.Number)
	require.Len(t, ledger.orders, 1)

	saver.err = nil
	o, err = svc.Create(context.Background(), order.Input{Items: cart(), Payment: payment.MethodDebit, Mode: shipping.ModePickup})
	require.NoError(t, err)
	require.Equal(t, 2, o.Number)
}

func TestCreateEmitsOrderCreated(t *testing.T) {
	svc, _, _ := newService()
	var got []events.Event
	svc.Events = &events.Bus{Notifiers: []events.Notifier{events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		got = append(got, ev)
		return errors.New("printer offline")
	})}}

	o, err := svc.Create(context.Background(), order.Input{Items: cart(), Payment: payment.MethodPix, Mode: shipping.ModePickup})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, events.TopicOrderCreated, got[0].Topic)
	require.Equal(t, "0001", got[0].AggregateID)
	require.Equal(t, o.Number, got[0].Data.(order.Order).Number)
}

func TestReadOperations(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.Create(ctx, order.Input{CustomerID: "id_1", Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModePickup})
	require.NoError(t, err)
	_, err = svc.Create(ctx, order.Input{Items: cart(), Payment: payment.MethodCash, Mode: shipping.ModePickup})
	require.NoError(t, err)

	require.Len(t, svc.List(), 2)
	require.Len(t, svc.ByCustomer("id_1"), 1)

	o, err := svc.Get(2)
	require.NoError(t, err)
	require.Empty(t, o.CustomerID)

	_, err = svc.Get(9)
	require.ErrorIs(t, err, order.ErrOrderNotFound)
	require.Equal(t, "0042", order.FormatNumber(42))
	require.Equal(t, "12345", order.FormatNumber(12345))
}

func TestMetricsNotifier(t *testing.T) {
	obs.MustRegisterDomainMetrics("order_test", prometheus.NewRegistry())

	svc, _, _ := newService()
	svc.Events = &events.Bus{Notifiers: []events.Notifier{order.MetricsNotifier()}}

	_, err := svc.Create(context.Background(), order.Input{Items: cart(), Payment: payment.MethodPix, Mode: shipping.ModePickup})
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(obs.OrdersCreatedTotal.WithLabelValues("PICKUP", "Pix")))
	require.Equal(t, 1.0, testutil.ToFloat64(obs.DiscountLinesTotal.WithLabelValues(pricing.RuleCombo)))
}
