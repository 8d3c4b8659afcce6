package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/events"
)

type memoryRepo struct {
	seq      int
	products []catalog.Product
}

func (m *memoryRepo) NextID() string {
	m.seq++
	return fmt.Sprintf("id_%d", m.seq)
}

func (m *memoryRepo) AddProduct(p catalog.Product) { m.products = append(m.products, p) }

func (m *memoryRepo) Products() []catalog.Product {
	return append([]catalog.Product(nil), m.products...)
}

func (m *memoryRepo) Product(id string) (catalog.Product, bool) {
	for _, p := range m.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (m *memoryRepo) SetProductActive(id string, active bool) (catalog.Product, bool) {
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Active = active
			return m.products[i], true
		}
	}
	return catalog.Product{}, false
}

type countingSaver struct {
	calls int
	err   error
}

func (c *countingSaver) Save(context.Context) error {
	c.calls++
	return c.err
}

func newService() (*catalog.Service, *memoryRepo, *countingSaver) {
	repo := &memoryRepo{}
	saver := &countingSaver{}
	return &catalog.Service{Repo: repo, Store: saver, Logger: zerolog.Nop()}, repo, saver
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, _, saver := newService()
	topics := []string{}
	svc.Events = &events.Bus{Notifiers: []events.Notifier{events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		topics = append(topics, ev.Topic)
		return nil
	})}}

	p, err := svc.Register(context.Background(), catalog.ProductInput{
		Name:     "  Marguerita ",
		Category: catalog.CategorySavoryPizza,
		Price:    decimal.RequireFromString("41.9"),
	})
	require.NoError(t, err)
	require.Equal(t, "id_1", p.ID)
	require.Equal(t, "Marguerita", p.Name)
	require.True(t, p.Active)
	require.Equal(t, "41.90", p.Price.StringFixed(2))
	require.Equal(t, 1, saver.calls)
	require.Equal(t, []string{events.TopicProductRegistered}, topics)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, repo, saver := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, catalog.ProductInput{Category: catalog.CategoryBeverage, Price: decimal.NewFromInt(5)})
	require.True(t, common.HasCode(err, common.CodeValidation))

	_, err = svc.Register(ctx, catalog.ProductInput{Name: "Suco", Category: "Salad", Price: decimal.NewFromInt(5)})
	require.True(t, common.HasCode(err, common.CodeValidation))

	_, err = svc.Register(ctx, catalog.ProductInput{Name: "Suco", Category: catalog.CategoryBeverage, Price: decimal.Zero})
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)

	require.Empty(t, repo.products)
	require.Zero(t, saver.calls)
}

func TestRegisterKeepsProductWhenSaveFails(t *testing.T) {
	t.Parallel()

	svc, repo, saver := newService()
	saver.err = errors.New("read-only file system")

	p, err := svc.Register(context.Background(), catalog.ProductInput{
		Name:     "Chocolate",
		Category: catalog.CategoryDessertPizza,
		Price:    decimal.NewFromInt(39),
	})
	require.True(t, common.HasCode(err, common.CodePersistence))
	require.Equal(t, "id_1", p.ID)
	require.Len(t, repo.products, 1)
}

func TestToggleAndActiveByCategory(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService()
	ctx := context.Background()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	beverages := svc.ActiveByCategory(catalog.CategoryBeverage)
	require.Len(t, beverages, 9)
	first := beverages[0]

	toggled, err := svc.Toggle(ctx, first.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)
	require.Len(t, svc.ActiveByCategory(catalog.CategoryBeverage), 8)

	toggled, err = svc.Toggle(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, toggled.Active)

	_, err = svc.Toggle(ctx, "id_999")
	require.True(t, common.HasCode(err, common.CodeNotFound))
	_, err = svc.Get("id_999")
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	svc, repo, saver := newService()
	n, err := svc.SeedDefaults(context.Background())
	require.NoError(t, err)
	require.Equal(t, 40, n)
	require.Len(t, svc.List(), 40)
	require.Len(t, svc.ActiveByCategory(catalog.CategorySavoryPizza), 21)
	require.Len(t, svc.ActiveByCategory(catalog.CategoryDessertPizza), 10)
	require.Equal(t, "id_40", repo.products[39].ID)

	n, err = svc.SeedDefaults(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 1, saver.calls)
}

func TestCategoryDecodeAcceptsLegacyLabels(t *testing.T) {
	t.Parallel()

	var p catalog.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"id_1","name":"Atum","category":"Pizza Salgadas","price":47.9,"active":true}`), &p))
	require.Equal(t, catalog.CategorySavoryPizza, p.Category)
	require.True(t, catalog.IsPizza(p.Category))
	require.False(t, catalog.IsPizza(catalog.CategoryBeverage))

	c, err := catalog.ParseCategory("dessert pizza")
	require.NoError(t, err)
	require.Equal(t, catalog.CategoryDessertPizza, c)
	_, err = catalog.ParseCategory("salad")
	require.ErrorIs(t, err, catalog.ErrUnknownCategory)
}

func TestCategoryDecodeKeepsUnknownLabels(t *testing.T) {
	t.Parallel()

	var p catalog.Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"id_2","name":"Calzone","category":"Calzone","price":30,"active":true}`), &p))
	require.Equal(t, catalog.Category("Calzone"), p.Category)
	require.False(t, p.Category.Known())
	require.False(t, catalog.IsPizza(p.Category))
	require.True(t, catalog.CategoryBeverage.Known())
}
