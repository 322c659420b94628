package normalize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalxml/processor/internal/normalize"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"brazilian separators", "1.234,56", "1234.56"},
		{"international separators", "1234.56", "1234.56"},
		{"comma decimal", "10,50", "10.5"},
		{"plain integer", "100", "100"},
		{"thousands with dot decimal", "1,234.56", "1234.56"},
		{"multiple thousands groups", "1.234.567,89", "1234567.89"},
		{"multiple commas no decimal", "1,234,567", "1234567"},
		{"multiple dots no comma", "1.234.567", "1234567"},
		{"empty string", "", "0"},
		{"whitespace", "   ", "0"},
		{"garbage", "abc", "0"},
		{"negative", "-12,30", "-12.3"},
		{"leading zeros value", "0000.10", "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.ParseDecimal(tt.input)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"iso timestamp with offset", "2024-03-01T10:15:30-03:00", "2024-03-01T10:15:30"},
		{"iso timestamp utc", "2024-03-01T10:15:30Z", "2024-03-01T10:15:30"},
		{"iso date only", "2024-03-01", "2024-03-01T00:00:00"},
		{"brazilian slashes", "01/03/2024", "2024-03-01T00:00:00"},
		{"brazilian dashes", "01-03-2024", "2024-03-01T00:00:00"},
		{"space separated timestamp", "2024-03-01 10:15:30", "2024-03-01T10:15:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.ParseDate(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got.Format("2006-01-02T15:04:05"))
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	assert.Nil(t, normalize.ParseDate(""))
	assert.Nil(t, normalize.ParseDate("not a date"))
	assert.Nil(t, normalize.ParseDate("2024-13-45"))
}

func TestParseDate_RoundTrip(t *testing.T) {
	got := normalize.ParseDate("2024-06-15T08:30:00-03:00")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC), got.UTC())
}

func TestCleanTaxID(t *testing.T) {
	assert.Equal(t, "12345678000195", normalize.CleanTaxID("12.345.678/0001-95"))
	assert.Equal(t, "12345678901", normalize.CleanTaxID("123.456.789-01"))
	assert.Equal(t, "", normalize.CleanTaxID("no digits"))
}

func TestValidTaxID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"formatted cnpj", "12.345.678/0001-95", true},
		{"plain cpf", "12345678901", true},
		{"wrong length", "123456", false},
		{"empty", "", false},
		{"all identical cnpj", "11111111111111", false},
		{"all identical cpf", "00000000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, normalize.ValidTaxID(tt.input))
		})
	}
}

func TestCoerceCode(t *testing.T) {
	assert.Equal(t, "05303", normalize.CoerceCode("05303"))
	assert.Equal(t, int64(5303), normalize.CoerceCode("5303"))
	assert.Equal(t, 12.5, normalize.CoerceCode("12.5"))
	assert.Equal(t, "ABC123", normalize.CoerceCode("ABC123"))
	assert.Equal(t, "", normalize.CoerceCode(""))
}

func TestCoerceCode_SingleZero(t *testing.T) {
	assert.Equal(t, int64(0), normalize.CoerceCode("0"))
}
