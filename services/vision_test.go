package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain JSON untouched",
			in:   `{"subtotal": 10}`,
			want: `{"subtotal": 10}`,
		},
		{
			name: "json code fence",
			in:   "```json\n{\"subtotal\": 10}\n```",
			want: `{"subtotal": 10}`,
		},
		{
			name: "bare code fence",
			in:   "```\n{\"subtotal\": 10}\n```",
			want: `{"subtotal": 10}`,
		},
		{
			name: "leading chatter",
			in:   "Here is the parsed receipt:\n{\"subtotal\": 10}",
			want: `{"subtotal": 10}`,
		},
		{
			name: "surrounding whitespace",
			in:   "  \n{\"subtotal\": 10}\n  ",
			want: `{"subtotal": 10}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.in))
		})
	}
}

func TestSanitizeParsedReceipt(t *testing.T) {
	price := 15.99
	qty := 2.0
	nan := math.NaN()
	inf := math.Inf(1)

	// Tax arrives non-finite, tip missing, total non-finite.
	raw := rawParsedReceipt{
		Subtotal: &price,
		Tax:      &nan,
		Tip:      nil,
		Total:    &inf,
	}
	raw.Items = []struct {
		Description string   `json:"description"`
		Quantity    *float64 `json:"quantity"`
		Price       *float64 `json:"price"`
	}{
		{Description: "Burger", Quantity: &qty, Price: &price},
		{Description: "  ", Quantity: nil, Price: nil},
	}

	parsed := SanitizeParsedReceipt(raw)

	assert.Equal(t, 15.99, parsed.Subtotal)
	assert.Zero(t, parsed.Tax, "NaN must coerce to 0")
	assert.Zero(t, parsed.Tip, "missing tip must coerce to 0")
	assert.Zero(t, parsed.Total, "Inf must coerce to 0")

	assert.Len(t, parsed.Items, 2)
	assert.Equal(t, "Burger", parsed.Items[0].Description)
	assert.Equal(t, 2.0, parsed.Items[0].Quantity)
	assert.Equal(t, 15.99, parsed.Items[0].Price)
	assert.NotNil(t, parsed.Items[0].Assignments)
	assert.Empty(t, parsed.Items[0].Assignments)
	assert.False(t, parsed.Items[0].IsMultiplied)

	assert.Equal(t, "Unknown item", parsed.Items[1].Description)
	assert.Equal(t, 1.0, parsed.Items[1].Quantity, "missing quantity defaults to 1")
	assert.Zero(t, parsed.Items[1].Price)
}

func TestSanitizeParsedReceiptEmpty(t *testing.T) {
	parsed := SanitizeParsedReceipt(rawParsedReceipt{})

	assert.NotNil(t, parsed.Items)
	assert.Empty(t, parsed.Items)
	assert.Zero(t, parsed.Subtotal)
	assert.Zero(t, parsed.Total)
}
