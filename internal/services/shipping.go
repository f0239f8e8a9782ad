package services

import "math"

// ShippingQuote is a priced carrier option.
type ShippingQuote struct {
	Method        string  `json:"method"`
	Fee           float64 `json:"fee"`
	ETADays       int     `json:"eta_days"`
	International bool    `json:"international"`
}

// ShippingCalculator prices shipments from configured base fees. Weight above
// 500 grams pays a per-gram surcharge on the excess only.
type ShippingCalculator struct {
	DomesticBase      float64
	InternationalBase float64
}

// NewShippingCalculator constructs a calculator with the given base fees.
func NewShippingCalculator(domesticBase, internationalBase float64) *ShippingCalculator {
	return &ShippingCalculator{
		DomesticBase:      domesticBase,
		InternationalBase: internationalBase,
	}
}

// Domestic quotes a domestic shipment. Pass 0 when the weight is unknown.
func (s *ShippingCalculator) Domestic(weightGrams int) ShippingQuote {
	fee := s.DomesticBase
	if weightGrams > 500 {
		fee += float64(weightGrams-500) * 0.5
	}
	return ShippingQuote{
		Method:  "Kerry Express",
		Fee:     round2(fee),
		ETADays: 2,
	}
}

// International quotes an international shipment.
func (s *ShippingCalculator) International(weightGrams int) ShippingQuote {
	fee := s.InternationalBase
	if weightGrams > 500 {
		fee += float64(weightGrams-500) * 1.2
	}
	return ShippingQuote{
		Method:        "DHL Express",
		Fee:           round2(fee),
		ETADays:       7,
		International: true,
	}
}

// QuoteFor picks the quote by destination country code.
func (s *ShippingCalculator) QuoteFor(country string, weightGrams int) ShippingQuote {
	if country == "" || country == "TH" || country == "th" {
		return s.Domestic(weightGrams)
	}
	return s.International(weightGrams)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
