package model

import (
	"strings"
	"time"
)

// BillingPeriod is the unit of a subscription's billing cycle.
type BillingPeriod string

const (
	PeriodDay   BillingPeriod = "day"
	PeriodWeek  BillingPeriod = "week"
	PeriodMonth BillingPeriod = "month"
	PeriodYear  BillingPeriod = "year"
)

// ParseBillingPeriod normalizes the period spellings the store plugins use.
// Unknown values fall back to month, matching the plugins' own defaults.
func ParseBillingPeriod(s string) BillingPeriod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "days", "d":
		return PeriodDay
	case "week", "weeks", "w":
		return PeriodWeek
	case "year", "years", "y":
		return PeriodYear
	default:
		return PeriodMonth
	}
}

// NextRenewal advances from by exactly one billing cycle (interval x period).
// Month and year arithmetic is calendar-based, not a fixed-day approximation.
func NextRenewal(from time.Time, period BillingPeriod, interval int) time.Time {
	if interval <= 0 {
		interval = 1
	}
	switch period {
	case PeriodDay:
		return from.AddDate(0, 0, interval)
	case PeriodWeek:
		return from.AddDate(0, 0, 7*interval)
	case PeriodYear:
		return from.AddDate(interval, 0, 0)
	default:
		return from.AddDate(0, interval, 0)
	}
}
