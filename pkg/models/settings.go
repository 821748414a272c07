package models

import (
	"fmt"
	"strings"
)

// MaxPrefixLength bounds Settings.InvoicePrefix.
const MaxPrefixLength = 10

// Currency is an ISO 4217 code from the supported set.
type Currency string

// Currencies lists every supported currency code.
var Currencies = []Currency{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "PHP", "INR"}

// Valid reports whether c is supported.
func (c Currency) Valid() bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}

// Settings holds the business-wide preferences and the invoice number seed.
type Settings struct {
	InvoicePrefix string   `json:"invoicePrefix"`
	Currency      Currency `json:"currency"`
	// NumberSeed is the counter used for the next newly created invoice.
	NumberSeed int `json:"numberSeed"`

	BusinessName    string `json:"businessName"`
	BusinessEmail   string `json:"businessEmail"`
	BusinessAddress string `json:"businessAddress"`
	DefaultTerms    string `json:"defaultTerms"`
}

// DefaultSettings returns the settings of an empty document.
func DefaultSettings() Settings {
	return Settings{
		InvoicePrefix: "INV",
		Currency:      "USD",
		NumberSeed:    1,
		DefaultTerms:  DefaultTerms,
	}
}

// Validate checks prefix, currency and seed.
func (s *Settings) Validate() ValidationResult {
	var errs []string
	prefix := strings.TrimSpace(s.InvoicePrefix)
	switch {
	case prefix == "":
		errs = append(errs, "Invoice prefix is required")
	case len(prefix) > MaxPrefixLength:
		errs = append(errs, fmt.Sprintf("Invoice prefix must be at most %d characters", MaxPrefixLength))
	}
	if !s.Currency.Valid() {
		errs = append(errs, fmt.Sprintf("Currency %q is not supported", s.Currency))
	}
	if s.NumberSeed < 1 {
		errs = append(errs, "Number seed must be at least 1")
	}
	if s.BusinessEmail != "" && !emailRegex.MatchString(strings.TrimSpace(s.BusinessEmail)) {
		errs = append(errs, "Business email address is invalid")
	}
	return newResult(errs)
}
