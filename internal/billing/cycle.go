package billing

import (
	"regexp"
	"time"

	"github.com/Visionary-Future/cloud-billing/internal/clock"
)

var cycleRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidateCycle checks that a billing cycle is in YYYY-MM form.
// The check is purely syntactic; the provider rejects impossible months.
func ValidateCycle(billingCycle string) error {
	if !cycleRe.MatchString(billingCycle) {
		return &InvalidArgumentError{
			Field:  "billing cycle",
			Value:  billingCycle,
			Reason: "expected YYYY-MM",
		}
	}
	return nil
}

// ValidateDate checks that a billing date is an actual YYYY-MM-DD date
func ValidateDate(billingDate string) error {
	if _, err := time.Parse("2006-01-02", billingDate); err != nil {
		return &InvalidArgumentError{
			Field:  "billing date",
			Value:  billingDate,
			Reason: "expected YYYY-MM-DD",
		}
	}
	return nil
}

// PreviousCycle returns the previous calendar month as YYYY-MM. This is the
// default cycle for exports: the current month is still accumulating.
func PreviousCycle(c clock.Clock) string {
	now := c.Now()
	// Anchor to the first of the month so AddDate never normalizes
	// (e.g. March 31 minus one month would land in March).
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("2006-01")
}
