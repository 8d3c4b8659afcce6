package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAppErrorCodes(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("save: %w", Persistence("store not saved", base))

	require.True(t, IsAppError(err))
	require.True(t, HasCode(err, CodePersistence))
	require.False(t, HasCode(err, CodeValidation))
	require.ErrorIs(t, err, base)
	require.Equal(t, "save: store not saved", err.Error())
	require.False(t, HasCode(base, CodePersistence))
}

func TestAppErrorMessageFallsBackToCause(t *testing.T) {
	err := NotFound("", errors.New("order not found"))
	require.Equal(t, "order not found", err.Error())
}

func TestFold(t *testing.T) {
	cases := map[string]string{
		"  Centro ":  "centro",
		"ANHANGABAÚ": "anhangabau",
		"Vila Arens": "vila arens",
		"Água":       "agua",
		"":           "",
	}
	for in, want := range cases {
		require.Equal(t, want, Fold(in), in)
	}
}

func TestStripDiacriticsKeepsCase(t *testing.T) {
	require.Equal(t, "Brocolis Area de Trabalho", StripDiacritics("Brócolis Área de Trabalho"))
}

func TestDigitsOnly(t *testing.T) {
	require.Equal(t, "12345678909", DigitsOnly("123.456.789-09"))
	require.Equal(t, "", DigitsOnly("abc"))
}

func TestAtoiDefault(t *testing.T) {
	require.Equal(t, 7, AtoiDefault(" 7 ", 1))
	require.Equal(t, 1, AtoiDefault("x", 1))
	require.Equal(t, 3, AtoiDefault("", 3))
}

func TestMoneyFormatting(t *testing.T) {
	amount := decimal.RequireFromString("47.9")
	require.Equal(t, "R$ 47,90", FormatBRL(amount))
	require.Equal(t, "47.90", FormatPlain(amount))
	require.Equal(t, "0.00", FormatPlain(decimal.Zero))
}

func TestValidateStruct(t *testing.T) {
	type input struct {
		Name  string `validate:"required"`
		TaxID string `validate:"len=11"`
	}

	require.NoError(t, ValidateStruct(nil, input{Name: "Ana", TaxID: "12345678909"}))

	err := ValidateStruct(Validator(), input{TaxID: "123"})
	require.True(t, HasCode(err, CodeValidation))
	require.Equal(t, "name is required", err.Error())

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, []string{"Name", "TaxID"}, appErr.Details)
}

func TestDates(t *testing.T) {
	at := time.Date(2025, 3, 4, 23, 5, 9, 0, time.UTC)
	require.Equal(t, "04/03/2025 23:05", FormatDateTime(at, time.UTC))
	require.Equal(t, "20250304-230509", FileStamp(at, nil))

	d, err := ParseDate(" 31/12/2024 ", time.UTC)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), *d)

	d, err = ParseDate("", time.UTC)
	require.NoError(t, err)
	require.Nil(t, d)

	for _, bad := range []string{"2024-12-31", "31/02/2024", "1/1/2024"} {
		_, err = ParseDate(bad, time.UTC)
		require.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
