package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/lock"
	"github.com/noah-isme/planet-pizzaria/internal/obs"
	"github.com/noah-isme/planet-pizzaria/internal/order"
)

// document is the on-disk layout.
type document struct {
	Customers []customer.Customer `json:"customers"`
	Products  []catalog.Product   `json:"products"`
	Orders    []order.Order       `json:"orders"`
	Meta      *meta               `json:"_meta,omitempty"`
}

type meta struct {
	Seq      int       `json:"seq"`
	OrderSeq int       `json:"order_seq"`
	SavedAt  time.Time `json:"saved_at"`
}

// Locker serialises file writes across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Options configures a Store.
type Options struct {
	Logger zerolog.Logger
	Now    func() time.Time
	// Locker is optional; without it saves are only serialised within the process.
	Locker Locker
}

// Store keeps customers, products and orders in memory and writes them as one JSON file.
type Store struct {
	path   string
	logger zerolog.Logger
	now    func() time.Time
	locker Locker

	mu        sync.RWMutex
	customers []customer.Customer
	products  []catalog.Product
	orders    []order.Order
	seq       int
	orderSeq  int
}

// Open loads the store at path. A missing or unreadable file yields an empty store. A file
// that does not decode is renamed aside before anything can overwrite it. Files in the
// first-version layout are converted and a copy of the original is kept next to them.
func Open(path string, opts Options) *Store {
	s := &Store{
		path:     path,
		logger:   opts.Logger,
		now:      opts.Now,
		locker:   opts.Locker,
		seq:      1,
		orderSeq: 1,
	}
	if s.now == nil {
		s.now = time.Now
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info().Str("path", path).Msg("store file not found, starting empty")
		} else {
			s.logger.Warn().Err(err).Str("path", path).Msg("store file unreadable, starting empty")
		}
		return s
	}
	doc, legacy, err := decode(data)
	if err != nil {
		s.quarantine(err)
		return s
	}
	if legacy {
		s.keepLegacyCopy(data)
	}
	s.customers = doc.Customers
	s.products = doc.Products
	s.orders = doc.Orders
	s.deriveCounters()
	s.warnUnknownLabels()
	s.logger.Info().
		Str("path", path).
		Bool("legacy_layout", legacy).
		Int("customers", len(s.customers)).
		Int("products", len(s.products)).
		Int("orders", len(s.orders)).
		Msg("store loaded")
	return s
}

// CorruptPath names the file a corrupt store is moved to.
func CorruptPath(path string, at time.Time) string {
	return path + ".corrupt-" + at.UTC().Format("20060102-150405")
}

// LegacyPath names the copy kept of a first-version data file.
func LegacyPath(path string) string {
	return path + ".legacy"
}

func (s *Store) quarantine(cause error) {
	target := CorruptPath(s.path, s.now())
	if err := os.Rename(s.path, target); err != nil {
		s.logger.Error().Err(err).AnErr("decode_error", cause).Str("path", s.path).
			Msg("store file corrupt and could not be moved aside, starting empty")
		return
	}
	s.logger.Warn().Err(cause).Str("path", s.path).Str("moved_to", target).
		Msg("store file corrupt, moved aside and starting empty")
}

func (s *Store) keepLegacyCopy(data []byte) {
	target := LegacyPath(s.path)
	if _, err := os.Stat(target); err == nil {
		return
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", target).Msg("legacy store copy not written")
		return
	}
	s.logger.Info().Str("path", target).Msg("legacy store layout converted, original kept")
}

func (s *Store) warnUnknownLabels() {
	for _, p := range s.products {
		if !p.Category.Known() {
			s.logger.Warn().Str("product", p.ID).Str("category", string(p.Category)).Msg("unknown product category kept as typed")
		}
	}
	for _, o := range s.orders {
		if !o.PaymentMethod.Valid() {
			s.logger.Warn().Int("order", o.Number).Str("payment", string(o.PaymentMethod)).Msg("unknown payment method kept as typed")
		}
	}
}

func (s *Store) deriveCounters() {
	ids := make([]string, 0, len(s.customers)+len(s.products))
	for _, c := range s.customers {
		ids = append(ids, c.ID)
	}
	for _, p := range s.products {
		ids = append(ids, p.ID)
	}
	s.seq = NextSequence(ids)

	numbers := make([]int, 0, len(s.orders))
	for _, o := range s.orders {
		numbers = append(numbers, o.Number)
	}
	s.orderSeq = NextOrderNumber(numbers)
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Save overwrites the file with the whole store plus counters and a timestamp.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	doc := document{
		Customers: nonNil(s.customers),
		Products:  nonNil(s.products),
		Orders:    nonNil(s.orders),
		Meta:      &meta{Seq: s.seq, OrderSeq: s.orderSeq, SavedAt: s.now().UTC()},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	s.mu.RUnlock()
	if err == nil {
		err = s.write(ctx, data)
	}
	obs.RecordStoreSave(err)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("store save failed")
		return fmt.Errorf("save store: %w", err)
	}
	s.logger.Debug().Str("path", s.path).Msg("store saved")
	return nil
}

func (s *Store) write(ctx context.Context, data []byte) error {
	if s.locker == nil {
		return writeFile(s.path, data)
	}
	return s.locker.WithLock(ctx, lock.StoreKey(s.path), 0, func(context.Context) error {
		return writeFile(s.path, data)
	})
}

// writeFile replaces path through a temporary sibling so a failed write leaves the old file.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// NextID hands out the next customer or product identifier.
func (s *Store) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := FormatID(s.seq)
	s.seq++
	return id
}

// AllocateOrderNumber hands out the next order number. Numbers are never reused.
func (s *Store) AllocateOrderNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.orderSeq
	s.orderSeq++
	return n
}

// AddProduct appends a product.
func (s *Store) AddProduct(p catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
}

// Products returns a copy of the catalog.
func (s *Store) Products() []catalog.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]catalog.Product(nil), s.products...)
}

// Product finds a product by identifier.
func (s *Store) Product(id string) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

// SetProductActive updates the active flag of a product.
func (s *Store) SetProductActive(id string, active bool) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Active = active
			return s.products[i], true
		}
	}
	return catalog.Product{}, false
}

// AddCustomer appends a customer.
func (s *Store) AddCustomer(c customer.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, c)
}

// Customers returns a copy of the registry.
func (s *Store) Customers() []customer.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]customer.Customer(nil), s.customers...)
}

// Customer finds a customer by identifier.
func (s *Store) Customer(id string) (customer.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.ID == id {
			return c, true
		}
	}
	return customer.Customer{}, false
}

// CustomerByTaxID finds a customer by normalized tax ID.
func (s *Store) CustomerByTaxID(taxID string) (customer.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.TaxID == taxID {
			return c, true
		}
	}
	return customer.Customer{}, false
}

// AppendOrder adds an order to the ledger.
func (s *Store) AppendOrder(o order.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
}

// Orders returns a copy of the ledger in creation order.
func (s *Store) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]order.Order(nil), s.orders...)
}

// Order finds an order by number.
func (s *Store) Order(number int) (order.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.Number == number {
			return o, true
		}
	}
	return order.Order{}, false
}

var (
	_ catalog.Repository  = (*Store)(nil)
	_ customer.Repository = (*Store)(nil)
	_ order.Repository    = (*Store)(nil)
)
