package shipping

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/planet-pizzaria/internal/common"
)

// Mode selects how the order leaves the store.
type Mode string

const (
	ModeDelivery Mode = "DELIVERY"
	ModePickup   Mode = "PICKUP"
)

// ErrUnknownMode is returned when the fulfillment choice is neither delivery nor pickup.
var ErrUnknownMode = errors.New("unknown fulfillment mode")

var (
	// FreeDeliveryThreshold is the post-discount amount from which delivery is free.
	FreeDeliveryThreshold = decimal.RequireFromString("120.00")
	// BaseFee applies to neighborhoods outside the table.
	BaseFee = decimal.RequireFromString("8.00")
)

// NeighborhoodFees maps folded neighborhood names to their delivery fee.
var NeighborhoodFees = map[string]decimal.Decimal{
	"centro":     decimal.RequireFromString("6.00"),
	"retiro":     decimal.RequireFromString("6.00"),
	"anhangabau": decimal.RequireFromString("8.00"),
	"vila arens": decimal.RequireFromString("8.00"),
	"vianelo":    decimal.RequireFromString("7.00"),
	"agasal":     decimal.RequireFromString("12.00"),
}

// DeliveryInfo is the destination of a delivery order.
type DeliveryInfo struct {
	Address      string `json:"address" validate:"required"`
	Number       string `json:"number" validate:"required"`
	Neighborhood string `json:"neighborhood,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Reference    string `json:"reference,omitempty"`
}

// Normalize trims every field.
func (d DeliveryInfo) Normalize() DeliveryInfo {
	return DeliveryInfo{
		Address:      strings.TrimSpace(d.Address),
		Number:       strings.TrimSpace(d.Number),
		Neighborhood: strings.TrimSpace(d.Neighborhood),
		PostalCode:   strings.TrimSpace(d.PostalCode),
		Reference:    strings.TrimSpace(d.Reference),
	}
}

// Validate requires address and number.
func (d DeliveryInfo) Validate() error {
	return common.ValidateStruct(nil, d.Normalize())
}

// ParseMode accepts D/E for delivery and P/R for pickup, case-insensitive.
func ParseMode(input string) (Mode, error) {
	value := strings.ToUpper(strings.TrimSpace(input))
	if value == "" {
		return "", ErrUnknownMode
	}
	switch value {
	case string(ModeDelivery):
		return ModeDelivery, nil
	case string(ModePickup):
		return ModePickup, nil
	}
	switch value[0] {
	case 'D', 'E':
		return ModeDelivery, nil
	case 'P', 'R':
		return ModePickup, nil
	}
	return "", ErrUnknownMode
}

// Fee computes the delivery fee for an amount already net of discounts.
func Fee(mode Mode, info *DeliveryInfo, amount decimal.Decimal) decimal.Decimal {
	if mode != ModeDelivery {
		return decimal.Zero
	}
	if amount.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	if info == nil {
		return BaseFee
	}
	return NeighborhoodFee(info.Neighborhood)
}

// NeighborhoodFee looks a neighborhood up ignoring case, accents and surrounding spaces.
func NeighborhoodFee(name string) decimal.Decimal {
	if fee, ok := NeighborhoodFees[common.Fold(name)]; ok {
		return fee
	}
	return BaseFee
}
