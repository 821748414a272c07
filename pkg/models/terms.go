package models

import (
	"regexp"
	"strconv"

	"cloud.google.com/go/civil"
)

// DefaultTerms is used for new invoices and as the fallback payment window.
const DefaultTerms = "Net 30"

// DefaultTermDays applies when the terms carry no parseable "Net N".
const DefaultTermDays = 30

var netTermsRegex = regexp.MustCompile(`(?i)\bnet\s*(\d+)`)

// TermDays extracts N from a "Net N" policy, or DefaultTermDays.
func TermDays(terms string) int {
	m := netTermsRegex.FindStringSubmatch(terms)
	if m == nil {
		return DefaultTermDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return DefaultTermDays
	}
	return n
}

// MaxDateYear is the last year a stored date can carry; dates are written as
// YYYY-MM-DD and a longer year cannot be read back.
const MaxDateYear = 9999

func storableDate(d civil.Date) bool {
	return d.Year >= 1 && d.Year <= MaxDateYear
}

// DueDateFromTerms returns issue plus the terms' day count.
// Very long terms can yield a date past MaxDateYear, which Validate rejects.
func DueDateFromTerms(issue civil.Date, terms string) civil.Date {
	return issue.AddDays(TermDays(terms))
}
