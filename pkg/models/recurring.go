package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Interval is how often a recurring invoice is reissued.
type Interval string

const (
	IntervalWeekly    Interval = "weekly"
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// Valid reports whether i is one of the known intervals.
func (i Interval) Valid() bool {
	switch i {
	case IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}

// Recurring describes an invoice's reissue schedule.
type Recurring struct {
	Enabled  bool        `json:"enabled"`
	Interval Interval    `json:"interval"`
	NextRun  *civil.Date `json:"nextRun"`
}

// Next returns the date one interval after from.
func (r Recurring) Next(from civil.Date) civil.Date {
	t := from.In(time.UTC)
	switch r.Interval {
	case IntervalWeekly:
		return from.AddDays(7)
	case IntervalQuarterly:
		t = t.AddDate(0, 3, 0)
	case IntervalYearly:
		t = t.AddDate(1, 0, 0)
	default:
		t = t.AddDate(0, 1, 0)
	}
	return civil.DateOf(t)
}

// Due reports whether the schedule should fire on today.
func (r *Recurring) Due(today civil.Date) bool {
	if r == nil || !r.Enabled || r.NextRun == nil {
		return false
	}
	return !r.NextRun.After(today)
}

func (r *Recurring) validate() []string {
	if r == nil || !r.Enabled {
		return nil
	}
	var errs []string
	if !r.Interval.Valid() {
		errs = append(errs, fmt.Sprintf("Recurring interval %q is not supported", r.Interval))
	}
	if r.NextRun != nil && (!r.NextRun.IsValid() || !storableDate(*r.NextRun)) {
		errs = append(errs, "Recurring next run date is invalid")
	}
	return errs
}

func (r *Recurring) clone() *Recurring {
	if r == nil {
		return nil
	}
	c := *r
	if r.NextRun != nil {
		next := *r.NextRun
		c.NextRun = &next
	}
	return &c
}
