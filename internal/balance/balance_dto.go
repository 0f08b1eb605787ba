package balance

import "hr-calendar/internal/domain"

const WarningInsufficientBalance = "INSUFFICIENT_BALANCE"

type BalanceResponse struct {
	EmployeeID  string  `json:"employee_id"`
	AsOf        string  `json:"as_of"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	DaysInCycle int     `json:"days_in_cycle"`
	DaysAccrued int     `json:"days_accrued"`
	Entitlement float64 `json:"entitlement"`
	Accrued     float64 `json:"accrued"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	Overdrawn   bool    `json:"overdrawn"`
}

// Warning is attached to a leave request that asks for more days than the
// owner will have accrued by its start date. It never blocks the request.
type Warning struct {
	Code          string  `json:"code"`
	Message       string  `json:"message"`
	AsOf          string  `json:"as_of"`
	RequestedDays int     `json:"requested_days"`
	Remaining     float64 `json:"remaining"`
}

func mapToResponse(employeeID string, entitlement float64, b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID:  employeeID,
		AsOf:        domain.FormatDay(b.AsOf),
		PeriodStart: domain.FormatDay(b.PeriodStart),
		PeriodEnd:   domain.FormatDay(b.PeriodEnd),
		DaysInCycle: b.DaysInCycle,
		DaysAccrued: b.DaysAccrued,
		Entitlement: entitlement,
		Accrued:     b.Accrued.InexactFloat64(),
		Used:        b.Used.InexactFloat64(),
		Remaining:   b.Remaining.InexactFloat64(),
		Overdrawn:   b.Overdrawn,
	}
}
