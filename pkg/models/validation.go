package models

import (
	"fmt"
	"strings"
)

// ValidationResult is the outcome of validating a record.
// Errors are human-readable and ordered by the check that produced them.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Error joins the violations into a single message.
func (r ValidationResult) Error() string {
	return strings.Join(r.Errors, "; ")
}

// prefixed returns the violations with prefix prepended to each one.
func (r ValidationResult) prefixed(format string, args ...any) []string {
	prefix := fmt.Sprintf(format, args...)
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, prefix+e)
	}
	return out
}
