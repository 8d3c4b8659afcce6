package customer

import (
	"context"
	"errors"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/events"
)

var (
	// ErrInvalidTaxID is returned when a tax ID does not have exactly eleven digits.
	ErrInvalidTaxID = errors.New("tax id must have 11 digits")
	// ErrDuplicateTaxID is returned when another customer already uses the tax ID.
	ErrDuplicateTaxID = errors.New("a customer with this tax id already exists")
	// ErrCustomerNotFound is returned when no customer matches the lookup.
	ErrCustomerNotFound = errors.New("customer not found")
)

// Customer is a registered buyer keyed by tax ID.
type Customer struct {
	ID    string `json:"id"`
	TaxID string `json:"tax_id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Repository stores customers.
type Repository interface {
	NextID() string
	AddCustomer(c Customer)
	Customers() []Customer
	Customer(id string) (Customer, bool)
	CustomerByTaxID(taxID string) (Customer, bool)
}

// Saver persists the whole store after a mutation.
type Saver interface {
	Save(ctx context.Context) error
}

// RegisterInput captures the fields typed when registering a customer.
type RegisterInput struct {
	Name  string `validate:"required"`
	TaxID string `validate:"required"`
	Phone string
}

// Service manages the customer registry.
type Service struct {
	Repo      Repository
	Store     Saver
	Validator *validator.Validate
	Events    *events.Bus
	Logger    zerolog.Logger
}

// Register validates and adds a customer. The tax ID is stored digits-only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := common.ValidateStruct(s.Validator, in); err != nil {
		return Customer{}, err
	}
	if !ValidTaxID(in.TaxID) {
		return Customer{}, common.Validation(ErrInvalidTaxID.Error(), ErrInvalidTaxID)
	}
	taxID := NormalizeTaxID(in.TaxID)
	if _, exists := s.Repo.CustomerByTaxID(taxID); exists {
		return Customer{}, common.Validation(ErrDuplicateTaxID.Error(), ErrDuplicateTaxID)
	}
	c := Customer{
		ID:    s.Repo.NextID(),
		TaxID: taxID,
		Name:  in.Name,
		Phone: in.Phone,
	}
	s.Repo.AddCustomer(c)
	s.Logger.Info().Str("customer_id", c.ID).Msg("customer registered")
	if s.Events != nil {
		if _, err := s.Events.Emit(ctx, events.TopicCustomerRegistered, c.ID, c); err != nil {
			s.Logger.Warn().Err(err).Msg("event dispatch failed")
		}
	}
	if s.Store != nil {
		if err := s.Store.Save(ctx); err != nil {
			return c, common.Persistence("store not saved", err)
		}
	}
	return c, nil
}

// List returns every customer in registration order.
func (s *Service) List() []Customer {
	return s.Repo.Customers()
}

// FindByTaxID resolves a typed tax ID in any punctuation.
func (s *Service) FindByTaxID(raw string) (Customer, error) {
	if !ValidTaxID(raw) {
		return Customer{}, common.Validation(ErrInvalidTaxID.Error(), ErrInvalidTaxID)
	}
	c, ok := s.Repo.CustomerByTaxID(NormalizeTaxID(raw))
	if !ok {
		return Customer{}, common.NotFound(ErrCustomerNotFound.Error(), ErrCustomerNotFound)
	}
	return c, nil
}

// Get returns a customer by identifier.
func (s *Service) Get(id string) (Customer, error) {
	c, ok := s.Repo.Customer(strings.TrimSpace(id))
	if !ok {
		return Customer{}, common.NotFound(ErrCustomerNotFound.Error(), ErrCustomerNotFound)
	}
	return c, nil
}
