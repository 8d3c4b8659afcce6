package store_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/lock"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/payment"
	"github.com/noah-isme/planet-pizzaria/internal/pricing"
	"github.com/noah-isme/planet-pizzaria/internal/shipping"
	"github.com/noah-isme/planet-pizzaria/internal/store"
)

var savedAt = time.Date(2025, 3, 5, 20, 0, 0, 0, time.UTC)

func openAt(t *testing.T, path string) *store.Store {
	t.Helper()
	return store.Open(path, store.Options{Logger: zerolog.Nop(), Now: func() time.Time { return savedAt }})
}

func TestNextSequence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ids  []string
		want int
	}{
		{nil, 1},
		{[]string{"id_1", "id_2"}, 3},
		{[]string{"id_7", "id_3"}, 8},
		{[]string{"id_x", "legacy", "id_4"}, 5},
		{[]string{"", "id_"}, 1},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, store.NextSequence(tc.ids), "%v", tc.ids)
	}
}

func TestNextOrderNumber(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, store.NextOrderNumber(nil))
	require.Equal(t, 6, store.NextOrderNumber([]int{1, 2, 5}))
	require.Equal(t, 4, store.NextOrderNumber([]int{3, 1}))
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()

	s := openAt(t, filepath.Join(t.TempDir(), "pizzaria-db.json"))
	require.Empty(t, s.Customers())
	require.Empty(t, s.Products())
	require.Empty(t, s.Orders())
	require.Equal(t, "id_1", s.NextID())
	require.Equal(t, 1, s.AllocateOrderNumber())
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := openAt(t, path)
	require.Empty(t, s.Products())
	require.Equal(t, "id_1", s.NextID())

	moved, err := os.ReadFile(store.CorruptPath(path, savedAt))
	require.NoError(t, err)
	require.Equal(t, "{not json", string(moved))
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, s.Save(context.Background()))
	moved, err = os.ReadFile(store.CorruptPath(path, savedAt))
	require.NoError(t, err)
	require.Equal(t, "{not json", string(moved))
}

func TestOpenKeepsRecordsWithUnknownLabels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	doc := `{
  "customers": [{"id": "id_1", "tax_id": "12345678909", "name": "Ana"}],
  "products": [
    {"id": "id_2", "name": "Atum", "category": "Savory Pizza", "price": "47.90", "active": true},
    {"id": "id_3", "name": "Calzone", "category": "Calzone", "price": "30", "active": true}
  ],
  "orders": [{"number": 3, "items": [], "subtotal": "0", "discounts": "0", "applied_promotions": [], "delivery_fee": "0", "total": "0", "payment_method": "Cheque", "created_at": "2025-03-04T21:15:00Z", "mode": "PICKUP"}]
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := openAt(t, path)
	require.Len(t, s.Customers(), 1)
	require.Len(t, s.Products(), 2)
	p, ok := s.Product("id_3")
	require.True(t, ok)
	require.Equal(t, catalog.Category("Calzone"), p.Category)
	o, ok := s.Order(3)
	require.True(t, ok)
	require.Equal(t, payment.Method("Cheque"), o.PaymentMethod)
	require.Equal(t, "id_4", s.NextID())

	require.NoError(t, s.Save(context.Background()))
	reloaded := openAt(t, path)
	require.Len(t, reloaded.Customers(), 1)
	require.Len(t, reloaded.Products(), 2)
	require.Len(t, reloaded.Orders(), 1)
}

func TestOpenConvertsLegacyLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	doc := `{
  "clientes": [{"id": "id_1", "cpf": "12345678909", "nome": "Ana", "telefone": "11 98888-7777"}],
  "produtos": [{"id": "id_2", "nome": "Chocolate", "categoria": "Pizza Doces", "preco": 39.9, "ativo": true}],
  "pedidos": [{
    "numero": 7,
    "clienteId": "id_1",
    "itens": [{"produtoId": "id_2", "qtd": 2, "nome": "Chocolate", "preco": 39.9, "cat": "Pizza Doces"}],
    "subtotal": 79.8,
    "descontos": 7.98,
    "promocoesAplicadas": ["Terça Doce (10% nas Pizzas Doces) (-R$ 7,98)"],
    "taxaEntrega": 6,
    "total": 77.82,
    "forma": "Vale refeicao",
    "criadoEm": "2025-03-04T22:30:00.000Z",
    "modo": "ENTREGA",
    "entrega": {"endereco": "Rua A", "numero": "10", "bairro": "Centro"}
  }],
  "_meta": {"seq": 3, "pedidoSeq": 8, "savedAt": "2025-03-04T22:31:00.000Z"}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := openAt(t, path)
	c, ok := s.CustomerByTaxID("12345678909")
	require.True(t, ok)
	require.Equal(t, "Ana", c.Name)
	require.Equal(t, "11 98888-7777", c.Phone)

	p, ok := s.Product("id_2")
	require.True(t, ok)
	require.Equal(t, catalog.CategoryDessertPizza, p.Category)
	require.True(t, p.Price.Equal(decimal.RequireFromString("39.90")))

	o, ok := s.Order(7)
	require.True(t, ok)
	require.Equal(t, "id_1", o.CustomerID)
	require.Equal(t, payment.MethodMealVoucher, o.PaymentMethod)
	require.Equal(t, shipping.ModeDelivery, o.Mode)
	require.Equal(t, "Centro", o.Delivery.Neighborhood)
	require.Equal(t, 2, o.PizzaCount())
	require.True(t, o.Total.Equal(decimal.RequireFromString("77.82")))
	require.Equal(t, time.Date(2025, 3, 4, 22, 30, 0, 0, time.UTC), o.CreatedAt.UTC())
	require.Len(t, o.AppliedPromotions, 1)

	require.Equal(t, "id_3", s.NextID())
	require.Equal(t, 8, s.AllocateOrderNumber())

	original, err := os.ReadFile(store.LegacyPath(path))
	require.NoError(t, err)
	require.Equal(t, doc, string(original))

	require.NoError(t, s.Save(context.Background()))
	reloaded := openAt(t, path)
	require.Len(t, reloaded.Orders(), 1)
	require.Len(t, reloaded.Customers(), 1)
}

func sampleOrder(number int, customerID string) order.Order {
	return order.Order{
		Number:     number,
		CustomerID: customerID,
		Items: []pricing.LineItem{
			{ProductID: "id_2", Name: "Brócolis", Qty: 2, UnitPrice: decimal.RequireFromString("47.90"), Category: catalog.CategorySavoryPizza},
		},
		Subtotal:          decimal.RequireFromString("95.80"),
		Discounts:         decimal.RequireFromString("9.58"),
		DiscountLines:     []pricing.DiscountLine{{Name: "PLANET10 coupon (10%)", Rule: "coupon_PLANET10", Amount: decimal.RequireFromString("9.58")}},
		AppliedPromotions: []string{"PLANET10 coupon (10%) (-R$ 9,58)"},
		DeliveryFee:       decimal.RequireFromString("6.00"),
		Total:             decimal.RequireFromString("92.22"),
		PaymentMethod:     payment.MethodCredit,
		CreatedAt:         time.Date(2025, 3, 4, 21, 15, 0, 0, time.UTC),
		Mode:              shipping.ModeDelivery,
		Delivery:          &shipping.DeliveryInfo{Address: "Rua A", Number: "10", Neighborhood: "Centro"},
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	s := openAt(t, path)
	s.AddCustomer(customer.Customer{ID: s.NextID(), TaxID: "12345678909", Name: "Ana", Phone: "11 98888-7777"})
	s.AddProduct(catalog.Product{ID: s.NextID(), Name: "Brócolis", Category: catalog.CategorySavoryPizza, Price: decimal.RequireFromString("47.90"), Active: true})
	s.AddProduct(catalog.Product{ID: s.NextID(), Name: "Cerveja Lata", Category: catalog.CategoryBeverage, Price: decimal.RequireFromString("6.50")})
	s.AppendOrder(sampleOrder(s.AllocateOrderNumber(), "id_1"))
	s.AppendOrder(sampleOrder(s.AllocateOrderNumber(), ""))
	require.NoError(t, s.Save(context.Background()))

	reloaded := openAt(t, path)
	requireSameJSON(t, s.Customers(), reloaded.Customers())
	requireSameJSON(t, s.Products(), reloaded.Products())
	requireSameJSON(t, s.Orders(), reloaded.Orders())

	require.Equal(t, "id_4", reloaded.NextID())
	require.Equal(t, 3, reloaded.AllocateOrderNumber())

	o, ok := reloaded.Order(1)
	require.True(t, ok)
	require.True(t, o.Total.Equal(decimal.RequireFromString("92.22")))
	require.Equal(t, "Centro", o.Delivery.Neighborhood)
}

func TestSaveWritesMetadata(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	s := openAt(t, path)
	s.AddCustomer(customer.Customer{ID: s.NextID(), TaxID: "12345678909", Name: "Ana"})
	s.AppendOrder(sampleOrder(s.AllocateOrderNumber(), "id_1"))
	require.NoError(t, s.Save(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw struct {
		Products []json.RawMessage `json:"products"`
		Meta     struct {
			Seq      int       `json:"seq"`
			OrderSeq int       `json:"order_seq"`
			SavedAt  time.Time `json:"saved_at"`
		} `json:"_meta"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.NotNil(t, raw.Products)
	require.Equal(t, 2, raw.Meta.Seq)
	require.Equal(t, 2, raw.Meta.OrderSeq)
	require.Equal(t, savedAt, raw.Meta.SavedAt)
}

func TestReloadDerivesCountersFromData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pizzaria-db.json")
	doc := `{
  "customers": [{"id": "id_9", "tax_id": "12345678909", "name": "Ana"}],
  "products": [{"id": "id_4", "name": "Atum", "category": "Pizza Salgadas", "price": 47.9, "active": true}],
  "orders": [{"number": 7, "items": [], "subtotal": "0", "discounts": "0", "applied_promotions": [], "delivery_fee": "0", "total": "0", "payment_method": "Pix", "created_at": "2025-03-04T21:15:00Z", "mode": "PICKUP"}],
  "_meta": {"seq": 2, "order_seq": 2}
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := openAt(t, path)
	require.Equal(t, "id_10", s.NextID())
	require.Equal(t, 8, s.AllocateOrderNumber())
	p, ok := s.Product("id_4")
	require.True(t, ok)
	require.Equal(t, catalog.CategorySavoryPizza, p.Category)
	c, ok := s.CustomerByTaxID("12345678909")
	require.True(t, ok)
	require.Equal(t, "id_9", c.ID)
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing-dir", "pizzaria-db.json")
	s := openAt(t, path)
	s.AddCustomer(customer.Customer{ID: s.NextID(), TaxID: "12345678909", Name: "Ana"})

	require.Error(t, s.Save(context.Background()))
	require.Len(t, s.Customers(), 1)
}

func TestSetProductActive(t *testing.T) {
	t.Parallel()

	s := openAt(t, filepath.Join(t.TempDir(), "db.json"))
	s.AddProduct(catalog.Product{ID: s.NextID(), Name: "Atum", Category: catalog.CategorySavoryPizza, Price: decimal.NewFromInt(40), Active: true})

	p, ok := s.SetProductActive("id_1", false)
	require.True(t, ok)
	require.False(t, p.Active)
	_, ok = s.SetProductActive("id_2", false)
	require.False(t, ok)
}

func requireSameJSON(t *testing.T, want, got any) {
	t.Helper()
	a, err := json.Marshal(want)
	require.NoError(t, err)
	b, err := json.Marshal(got)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
}

type recordingLocker struct {
	keys []string
	err  error
}

func (r *recordingLocker) WithLock(ctx context.Context, key string, _ time.Duration, fn func(context.Context) error) error {
	r.keys = append(r.keys, key)
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

func TestSaveTakesStoreLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	locker := &recordingLocker{}
	s := store.Open(path, store.Options{Logger: zerolog.Nop(), Locker: locker})

	require.NoError(t, s.Save(context.Background()))
	require.Equal(t, []string{lock.StoreKey(path)}, locker.keys)
	_, err := os.Stat(path)
	require.NoError(t, err)

	locker.err = context.DeadlineExceeded
	require.ErrorIs(t, s.Save(context.Background()), context.DeadlineExceeded)
}

func TestSaveWithRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	path := filepath.Join(t.TempDir(), "db.json")
	s := store.Open(path, store.Options{
		Logger: zerolog.Nop(),
		Locker: &lock.Redis{Client: client, Logger: zerolog.Nop()},
	})
	require.NoError(t, s.Save(context.Background()))
	require.False(t, mr.Exists(lock.StoreKey(path)))
}
