package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/catalog"
	"github.com/noah-isme/planet-pizzaria/internal/common"
	"github.com/noah-isme/planet-pizzaria/internal/customer"
	"github.com/noah-isme/planet-pizzaria/internal/export"
	"github.com/noah-isme/planet-pizzaria/internal/order"
	"github.com/noah-isme/planet-pizzaria/internal/reports"
)

// Saver persists the store on demand and at exit.
type Saver interface {
	Save(ctx context.Context) error
}

// Config wires the shell to the services.
type Config struct {
	In        io.Reader
	Out       io.Writer
	Customers *customer.Service
	Products  *catalog.Service
	Orders    *order.Service
	Reports   *reports.Service
	Exporter  *export.Exporter
	Store     Saver
	Location  *time.Location
	Now       func() time.Time
	// NoPause skips the "press ENTER" prompts.
	NoPause bool
	Logger  zerolog.Logger
}

// Shell is the interactive menu surface.
type Shell struct {
	in        *bufio.Reader
	out       io.Writer
	customers *customer.Service
	products  *catalog.Service
	orders    *order.Service
	reports   *reports.Service
	exporter  *export.Exporter
	store     Saver
	location  *time.Location
	now       func() time.Time
	noPause   bool
	logger    zerolog.Logger
}

// New constructs a Shell.
func New(cfg Config) *Shell {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Shell{
		in:        bufio.NewReader(cfg.In),
		out:       cfg.Out,
		customers: cfg.Customers,
		products:  cfg.Products,
		orders:    cfg.Orders,
		reports:   cfg.Reports,
		exporter:  cfg.Exporter,
		store:     cfg.Store,
		location:  loc,
		now:       now,
		noPause:   cfg.NoPause,
		logger:    cfg.Logger,
	}
}

// Run shows the main menu until the user exits or the input ends. Both save the store.
func (s *Shell) Run(ctx context.Context) error {
	for {
		s.println("")
		s.println("=== PLANET PIZZARIA ===")
		s.println("1) Customers")
		s.println("2) Products")
		s.println("3) New Order")
		s.println("4) List Orders")
		s.println("5) Search/Reports")
		s.println("9) Save now")
		s.println("0) Exit")
		op, err := s.ask("Choose: ")
		if err != nil {
			return s.exit(ctx, err)
		}
		switch op {
		case "1":
			err = s.customersMenu(ctx)
		case "2":
			err = s.productsMenu(ctx)
		case "3":
			err = s.newOrder(ctx)
		case "4":
			err = s.listOrders()
		case "5":
			err = s.searchMenu(ctx)
		case "9":
			if saveErr := s.save(ctx); saveErr != nil {
				s.fail(saveErr)
			} else {
				s.println("Store saved.")
			}
			err = s.pause()
		case "0":
			return s.exit(ctx, nil)
		default:
			s.println("Invalid option.")
		}
		if err != nil {
			return s.exit(ctx, err)
		}
	}
}

func (s *Shell) exit(ctx context.Context, cause error) error {
	if cause != nil && !errors.Is(cause, io.EOF) {
		return cause
	}
	if err := s.save(ctx); err != nil {
		return err
	}
	s.println("Bye.")
	return nil
}

func (s *Shell) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx); err != nil {
		return common.Persistence("store not saved", err)
	}
	return nil
}

// ask prints the prompt and reads one trimmed line. A final line without newline is returned
// before io.EOF.
func (s *Shell) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) required(prompt string) (string, error) {
	for {
		v, err := s.ask(prompt)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		s.println("Required field.")
	}
}

func (s *Shell) quantity(prompt string) (int, error) {
	for {
		raw, err := s.ask(prompt)
		if err != nil {
			return 0, err
		}
		if n, ok := wholeNumber(raw); ok && n > 0 {
			return n, nil
		}
		s.println("Invalid quantity. Use a whole number (e.g. 1, 2, 3).")
	}
}

// wholeNumber accepts integers typed with a decimal comma or point, such as "2,0".
func wholeNumber(raw string) (int, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil || !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// date reads an optional dd/mm/yyyy date. Blank and invalid input both mean no bound.
func (s *Shell) date(prompt string) (*time.Time, error) {
	raw, err := s.ask(prompt)
	if err != nil {
		return nil, err
	}
	d, parseErr := common.ParseDate(raw, s.location)
	if parseErr != nil {
		s.println("Invalid date, ignoring it.")
		return nil, nil
	}
	return d, nil
}

// period reads month and year, defaulting to the current ones on ENTER.
func (s *Shell) period() (year, month int, err error) {
	now := s.now().In(s.location)
	rawMonth, err := s.ask(fmt.Sprintf("Month (1-12, ENTER=%d): ", int(now.Month())))
	if err != nil {
		return 0, 0, err
	}
	rawYear, err := s.ask(fmt.Sprintf("Year (ENTER=%d): ", now.Year()))
	if err != nil {
		return 0, 0, err
	}
	return number(rawYear, now.Year()), number(rawMonth, int(now.Month())), nil
}

// number parses typed input, using def for blank input and -1 for garbage.
func number(raw string, def int) int {
	if raw == "" {
		return def
	}
	return common.AtoiDefault(raw, -1)
}

func (s *Shell) pause() error {
	if s.noPause {
		return nil
	}
	_, err := s.ask("\nPress ENTER to continue...")
	return err
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// fail prints a service error for the user. Persistence failures and errors that did not
// come from a service are also logged.
func (s *Shell) fail(err error) {
	if !common.IsAppError(err) {
		s.logger.Error().Err(err).Msg("unexpected failure")
	}
	if common.HasCode(err, common.CodePersistence) {
		s.logger.Error().Err(err).Msg("persistence failure")
		s.println("Warning: " + err.Error() + ". Changes are kept in memory.")
		return
	}
	s.println("Error: " + err.Error() + ".")
}
