package balance

import (
	"time"

	"hr-calendar/internal/domain"

	"github.com/shopspring/decimal"
)

// OpeningSnapshot seeds the balance of employees whose leave history
// predates the system.
type OpeningSnapshot struct {
	AsOf    time.Time
	Accrued decimal.Decimal
	Used    decimal.Decimal
}

// LeaveEvent is the slice of an event the engine needs. Start/End form a
// half-open day interval.
type LeaveEvent struct {
	Type   string
	Status string
	Start  time.Time
	End    time.Time
}

type Input struct {
	HireDate          *time.Time
	Opening           *OpeningSnapshot
	AnnualEntitlement decimal.Decimal
	Events            []LeaveEvent
}

// LeaveBalance is computed on demand and never persisted. PeriodEnd is
// exclusive: it is the next hire anniversary.
type LeaveBalance struct {
	AsOf        time.Time       `json:"as_of"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	DaysInCycle int             `json:"days_in_cycle"`
	DaysAccrued int             `json:"days_accrued"`
	Accrued     decimal.Decimal `json:"accrued"`
	Used        decimal.Decimal `json:"used"`
	Remaining   decimal.Decimal `json:"remaining"`
	Overdrawn   bool            `json:"overdrawn"`
}

// Compute returns the balance as of asOf. It has no side effects.
//
// Accrual is straight-line: entitlement / days in cycle for every elapsed
// day of the hire-anniversary cycle, asOf included. An opening snapshot in
// the same cycle replaces everything up to and including its date.
func Compute(in Input, asOf time.Time) LeaveBalance {
	asOf = domain.Day(asOf)
	out := LeaveBalance{
		AsOf:        asOf,
		PeriodStart: asOf,
		PeriodEnd:   asOf,
		Accrued:     decimal.Zero,
		Used:        decimal.Zero,
		Remaining:   decimal.Zero,
	}
	if in.HireDate == nil {
		return out
	}

	hire := domain.Day(*in.HireDate)
	if asOf.Before(hire) {
		out.PeriodStart = hire
		out.PeriodEnd = anniversary(hire, hire.Year()+1)
		out.DaysInCycle = domain.DaysBetween(out.PeriodStart, out.PeriodEnd)
		return out
	}

	periodStart, periodEnd := Cycle(hire, asOf)
	out.PeriodStart = periodStart
	out.PeriodEnd = periodEnd
	out.DaysInCycle = domain.DaysBetween(periodStart, periodEnd)

	entitlement := in.AnnualEntitlement
	dayAfterAsOf := asOf.AddDate(0, 0, 1)

	accrualStart := periodStart
	usageStart := periodStart
	accrued := decimal.Zero
	used := decimal.Zero

	var openingDay *time.Time
	if op := in.Opening; op != nil {
		d := domain.Day(op.AsOf)
		if !asOf.Before(d) && !d.Before(periodStart) {
			openingDay = &d
			accrued = op.Accrued
			used = op.Used
			accrualStart = d.AddDate(0, 0, 1)
			usageStart = accrualStart
		}
	}

	days := domain.DaysBetween(accrualStart, dayAfterAsOf)
	if days < 0 {
		days = 0
	}
	out.DaysAccrued = days
	if out.DaysInCycle > 0 {
		accrued = accrued.Add(
			entitlement.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(int64(out.DaysInCycle))),
		)
	}
	if accrued.GreaterThan(entitlement) {
		accrued = entitlement
	}

	for _, e := range in.Events {
		if e.Type != domain.EventTypeLeave || e.Status != domain.StatusApproved {
			continue
		}
		if openingDay != nil && !domain.Day(e.Start).After(*openingDay) {
			continue
		}
		used = used.Add(decimal.NewFromInt(int64(overlapDays(e.Start, e.End, usageStart, dayAfterAsOf))))
	}

	out.Accrued = accrued.Round(2)
	out.Used = used.Round(2)
	out.Overdrawn = out.Used.GreaterThan(out.Accrued)
	out.Remaining = decimal.Max(out.Accrued.Sub(out.Used), decimal.Zero)
	return out
}

// Cycle returns the accrual year [start, end) containing asOf.
func Cycle(hire, asOf time.Time) (time.Time, time.Time) {
	start := anniversary(hire, asOf.Year())
	if start.After(asOf) {
		start = anniversary(hire, asOf.Year()-1)
	}
	return start, anniversary(hire, start.Year()+1)
}

// RequestedDays is the whole-day length of a half-open interval.
func RequestedDays(start, end time.Time) int {
	return domain.DaysBetween(start, end)
}

// anniversary clamps Feb 29 hire dates to Feb 28 in non-leap years.
func anniversary(hire time.Time, year int) time.Time {
	month, day := hire.Month(), hire.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func overlapDays(start, end, windowStart, windowEnd time.Time) int {
	s := domain.Day(start)
	if s.Before(windowStart) {
		s = windowStart
	}
	e := domain.Day(end)
	if e.After(windowEnd) {
		e = windowEnd
	}
	if !e.After(s) {
		return 0
	}
	return domain.DaysBetween(s, e)
}
