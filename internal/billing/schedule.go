package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payroll cutoff days. Deductions alternate between the 7th and the 22nd,
// matching the external payroll calendar.
const (
	payrollDayFirst  = 7
	payrollDaySecond = 22
)

// Installment counts per charge type. Bus card is configurable at the
// service level; this is the fallback.
const (
	securityDepositInstallments = 3
	busCardInstallmentsDefault  = 1
)

// InstallmentCount resolves how many deductions a charge type schedules.
// Zero means the charge type is not installment-based.
func InstallmentCount(chargeType ChargeType, busCardInstallments int) int {
	switch chargeType {
	case ChargeSecurityDeposit:
		return securityDepositInstallments
	case ChargeBusCard:
		if busCardInstallments >= 1 {
			return busCardInstallments
		}
		return busCardInstallmentsDefault
	default:
		return 0
	}
}

// GenerateSchedule produces the ordered installment plan for a charge of
// totalAmount starting at startDate. Each item carries totalAmount divided
// by the installment count, rounded to two decimals; the rounding remainder
// is not re-balanced, so the sum may drift from the total by up to one cent
// per item after the first. A non-positive total yields no installments.
func GenerateSchedule(totalAmount decimal.Decimal, installments int, startDate time.Time) []ScheduleItem {
	if totalAmount.Sign() <= 0 || installments < 1 {
		return nil
	}

	perItem := totalAmount.Div(decimal.NewFromInt(int64(installments))).Round(2)

	items := make([]ScheduleItem, 0, installments)
	date := firstDeductionDate(startDate)
	for seq := 1; seq <= installments; seq++ {
		items = append(items, ScheduleItem{
			Sequence:        seq,
			PayrollPeriod:   date.Format("2006-01"),
			DeductionDate:   date,
			ScheduledAmount: perItem,
		})
		date = nextDeductionDate(date)
	}
	return items
}

// firstDeductionDate picks the first payroll cutoff on or after startDate:
// day 7 of the same month when the charge starts by the 7th, day 22 when it
// starts by the 22nd, otherwise day 7 of the next month.
func firstDeductionDate(start time.Time) time.Time {
	y, m, d := start.Date()
	loc := start.Location()
	switch {
	case d <= payrollDayFirst:
		return time.Date(y, m, payrollDayFirst, 0, 0, 0, 0, loc)
	case d <= payrollDaySecond:
		return time.Date(y, m, payrollDaySecond, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m+1, payrollDayFirst, 0, 0, 0, 0, loc)
	}
}

// nextDeductionDate advances one payroll cutoff: 7th -> 22nd of the same
// month, 22nd -> 7th of the next month.
func nextDeductionDate(prev time.Time) time.Time {
	y, m, _ := prev.Date()
	loc := prev.Location()
	if prev.Day() == payrollDayFirst {
		return time.Date(y, m, payrollDaySecond, 0, 0, 0, 0, loc)
	}
	return time.Date(y, m+1, payrollDayFirst, 0, 0, 0, 0, loc)
}
