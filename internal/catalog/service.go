package catalog

import (
	"context"
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/events"
)

var (
	// ErrProductNotFound is returned when the product identifier is unknown.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidPrice is returned when a product price is zero or negative.
	ErrInvalidPrice = errors.New("price must be greater than zero")
)

// Repository stores products.
type Repository interface {
	NextID() string
	AddProduct(p Product)
	Products() []Product
	Product(id string) (Product, bool)
	SetProductActive(id string, active bool) (Product, bool)
}

// Saver persists the whole store after a mutation.
type Saver interface {
	Save(ctx context.Context) error
}

// ProductInput captures the fields typed when registering a product.
type ProductInput struct {
	Name     string `validate:"required"`
	Category Category
	Price    decimal.Decimal
}

// Service manages the menu.
type Service struct {
	Repo      Repository
	Store     Saver
	Validator *validator.Validate
	Events    *events.Bus
	Logger    zerolog.Logger
}

// Register validates and adds an active product. When the store cannot be saved the product
// is kept in memory and a persistence error is returned alongside it.
func (s *Service) Register(ctx context.Context, in ProductInput) (Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := common.ValidateStruct(s.Validator, in); err != nil {
		return Product{}, err
	}
	category, err := ParseCategory(string(in.Category))
	if err != nil {
		return Product{}, common.Validation("invalid category", err)
	}
	if !in.Price.IsPositive() {
		return Product{}, common.Validation(ErrInvalidPrice.Error(), ErrInvalidPrice)
	}
	p := Product{
		ID:       s.Repo.NextID(),
		Name:     in.Name,
		Category: category,
		Price:    in.Price.Round(2),
		Active:   true,
	}
	s.Repo.AddProduct(p)
	s.Logger.Info().Str("product_id", p.ID).Str("category", string(p.Category)).Msg("product registered")
	s.emit(ctx, events.TopicProductRegistered, p)
	return p, s.save(ctx)
}

// Toggle flips the active flag of a product.
func (s *Service) Toggle(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	current, ok := s.Repo.Product(id)
	if !ok {
		return Product{}, common.NotFound("product not found", ErrProductNotFound)
	}
	updated, ok := s.Repo.SetProductActive(id, !current.Active)
	if !ok {
		return Product{}, common.NotFound("product not found", ErrProductNotFound)
	}
	s.Logger.Info().Str("product_id", id).Bool("active", updated.Active).Msg("product toggled")
	s.emit(ctx, events.TopicProductToggled, updated)
	return updated, s.save(ctx)
}

// List returns every product in registration order.
func (s *Service) List() []Product {
	return s.Repo.Products()
}

// ActiveByCategory returns the active products of a category in registration order.
func (s *Service) ActiveByCategory(c Category) []Product {
	out := make([]Product, 0)
	for _, p := range s.Repo.Products() {
		if p.Active && p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// Get returns a product by identifier.
func (s *Service) Get(id string) (Product, error) {
	p, ok := s.Repo.Product(strings.TrimSpace(id))
	if !ok {
		return Product{}, common.NotFound("product not found", ErrProductNotFound)
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, topic string, p Product) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, p.ID, p); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("event dispatch failed")
	}
}

func (s *Service) save(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.Save(ctx); err != nil {
		return common.Persistence("store not saved", err)
	}
	return nil
}
