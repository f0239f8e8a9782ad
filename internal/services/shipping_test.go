package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingDomestic(t *testing.T) {
	calc := NewShippingCalculator(150, 650)

	quote := calc.Domestic(0)
	assert.Equal(t, "Kerry Express", quote.Method)
	assert.Equal(t, 150.0, quote.Fee)
	assert.Equal(t, 2, quote.ETADays)
	assert.False(t, quote.International)

	// Surcharge applies to the excess over 500 g only.
	assert.Equal(t, 150.0, calc.Domestic(500).Fee)
	assert.Equal(t, 200.0, calc.Domestic(600).Fee)
}

func TestShippingInternational(t *testing.T) {
	calc := NewShippingCalculator(150, 650)

	quote := calc.International(0)
	assert.Equal(t, "DHL Express", quote.Method)
	assert.Equal(t, 650.0, quote.Fee)
	assert.Equal(t, 7, quote.ETADays)
	assert.True(t, quote.International)

	assert.Equal(t, 770.0, calc.International(600).Fee)
}

func TestShippingQuoteFor(t *testing.T) {
	calc := NewShippingCalculator(150, 650)

	assert.False(t, calc.QuoteFor("", 0).International)
	assert.False(t, calc.QuoteFor("TH", 0).International)
	assert.False(t, calc.QuoteFor("th", 0).International)
	assert.True(t, calc.QuoteFor("US", 0).International)
	assert.True(t, calc.QuoteFor("JP", 800).International)
}
