package models

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-+().]+$`)
)

// MinPhoneLength is the minimum length of a non-empty phone number.
const MinPhoneLength = 10

// Client is a billed party. Invoices reference clients by ID.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	TaxID     string    `json:"taxId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName joins the contact name and company.
func (c *Client) DisplayName() string {
	return strings.TrimSpace(c.Name + " " + c.Company)
}

// Validate checks the client field rules.
func (c *Client) Validate() ValidationResult {
	var errs []string

	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs = append(errs, "Name is required")
	case len([]rune(name)) < 2:
		errs = append(errs, "Name must be at least 2 characters")
	}

	if email := strings.TrimSpace(c.Email); email != "" && !emailRegex.MatchString(email) {
		errs = append(errs, "Email address is invalid")
	}

	if phone := strings.TrimSpace(c.Phone); phone != "" {
		if !phoneRegex.MatchString(phone) {
			errs = append(errs, "Phone may only contain digits and separators")
		} else if len(phone) < MinPhoneLength {
			errs = append(errs, "Phone must be at least 10 characters")
		}
	}
	return newResult(errs)
}
