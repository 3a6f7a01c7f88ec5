// Package emi computes fees, interest, and repayment schedules for a loan.
// Every function is pure: the same terms always produce the same schedule.
package emi

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// PeriodsPerYear returns how many installments a year holds at the given
// collection frequency.
func PeriodsPerYear(freq domain.CollectionFrequency) (int64, error) {
	switch freq {
	case domain.FreqWeekly:
		return 52, nil
	case domain.FreqBiweekly:
		return 26, nil
	case domain.FreqMonthly:
		return 12, nil
	case domain.FreqQuarterly:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: unknown collection frequency %q", domain.ErrInvalidInput, freq)
	}
}

// TotalInstallments converts a duration in months into an installment count
// for the given frequency. The quotient is rounded half-up.
func TotalInstallments(durationMonths int32, freq domain.CollectionFrequency) (int, error) {
	if durationMonths <= 0 {
		return 0, fmt.Errorf("%w: loan duration must be positive", domain.ErrInvalidInput)
	}
	periods, err := PeriodsPerYear(freq)
	if err != nil {
		return 0, err
	}
	n := decimal.NewFromInt32(durationMonths).
		Mul(decimal.NewFromInt(periods)).
		Div(twelve).
		Round(0).
		IntPart()
	if n < 1 {
		return 0, fmt.Errorf("%w: duration too short for %s collection", domain.ErrInvalidInput, freq)
	}
	return int(n), nil
}

// FeeAmount resolves a fee spec against the principal.
func FeeAmount(principal decimal.Decimal, spec domain.FeeSpec) decimal.Decimal {
	if spec.IsPercentage {
		return principal.Mul(spec.Amount).Div(hundred).Round(2)
	}
	return spec.Amount.Round(2)
}

// TotalFees sums the processing, insurance, and additional fees for a
// principal.
func TotalFees(principal decimal.Decimal, processing, insurance domain.FeeSpec, other []domain.FeeSpec) decimal.Decimal {
	total := FeeAmount(principal, processing).Add(FeeAmount(principal, insurance))
	for _, spec := range other {
		total = total.Add(FeeAmount(principal, spec))
	}
	return total
}

// DisbursedAmount is the amount actually paid out: the principal, less total
// fees when they are deducted at disbursement.
func DisbursedAmount(principal, totalFees decimal.Decimal, method domain.FeesPaymentMethod) (decimal.Decimal, error) {
	if method != domain.FeesDeducted {
		return principal, nil
	}
	out := principal.Sub(totalFees)
	if out.IsNegative() {
		return decimal.Zero, domain.ErrNegativeDisbursement
	}
	return out, nil
}

// NextDueDate advances a due date by one collection period. Month-based
// frequencies use calendar month arithmetic clamped to the month end, so
// Jan 31 + 1 month is Feb 28 (or 29), not Mar 2.
func NextDueDate(from time.Time, freq domain.CollectionFrequency) time.Time {
	switch freq {
	case domain.FreqWeekly:
		return from.AddDate(0, 0, 7)
	case domain.FreqBiweekly:
		return from.AddDate(0, 0, 14)
	case domain.FreqQuarterly:
		return addMonthsClamped(from, 3)
	default:
		return addMonthsClamped(from, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := firstOfTarget.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Quote is the computed cost of a loan before the schedule is laid out.
// For reducing-balance loans the totals are sums of the already-rounded
// per-period values, so they may differ from the closed-form result by a
// cent or two.
type Quote struct {
	Installments  int
	EmiAmount     decimal.Decimal
	TotalInterest decimal.Decimal
	TotalPayable  decimal.Decimal
}

// Schedule lays out the full repayment schedule for the given terms. Every
// currency value on a schedule item is rounded to 2 decimal places as the
// item is built.
func Schedule(principal, annualRate decimal.Decimal, durationMonths int32, freq domain.CollectionFrequency, interestType domain.InterestType, firstEmiDate time.Time) ([]domain.EmiRecord, Quote, error) {
	if principal.IsNegative() || annualRate.IsNegative() {
		return nil, Quote{}, fmt.Errorf("%w: principal and rate must be non-negative", domain.ErrInvalidInput)
	}
	n, err := TotalInstallments(durationMonths, freq)
	if err != nil {
		return nil, Quote{}, err
	}
	switch interestType {
	case domain.InterestFlat:
		return flatSchedule(principal, annualRate, durationMonths, freq, n, firstEmiDate)
	case domain.InterestReducing:
		return reducingSchedule(principal, annualRate, freq, n, firstEmiDate)
	default:
		return nil, Quote{}, fmt.Errorf("%w: unknown interest type %q", domain.ErrInvalidInput, interestType)
	}
}

// flatSchedule charges simple interest on the full principal for the whole
// term and splits principal and interest evenly across installments.
func flatSchedule(principal, annualRate decimal.Decimal, durationMonths int32, freq domain.CollectionFrequency, n int, firstEmiDate time.Time) ([]domain.EmiRecord, Quote, error) {
	count := decimal.NewFromInt(int64(n))
	totalInterest := principal.
		Mul(annualRate).Div(hundred).
		Mul(decimal.NewFromInt32(durationMonths)).Div(twelve).
		Round(2)
	totalPayable := principal.Add(totalInterest)

	emiAmount := totalPayable.Div(count).Round(2)
	perPrincipal := principal.Div(count).Round(2)
	perInterest := totalInterest.Div(count).Round(2)

	records := make([]domain.EmiRecord, 0, n)
	dueDate := firstEmiDate
	for i := 1; i <= n; i++ {
		records = append(records, domain.EmiRecord{
			EmiNumber:       i,
			DueDate:         dueDate,
			EmiAmount:       emiAmount,
			PrincipalAmount: perPrincipal,
			InterestAmount:  perInterest,
			PaidAmount:      decimal.Zero,
			Status:          domain.EmiPending,
		})
		dueDate = NextDueDate(dueDate, freq)
	}
	return records, Quote{
		Installments:  n,
		EmiAmount:     emiAmount,
		TotalInterest: totalInterest,
		TotalPayable:  totalPayable,
	}, nil
}

// reducingSchedule amortizes the loan: each period pays interest on the
// outstanding balance plus whatever principal the fixed EMI covers.
func reducingSchedule(principal, annualRate decimal.Decimal, freq domain.CollectionFrequency, n int, firstEmiDate time.Time) ([]domain.EmiRecord, Quote, error) {
	periods, err := PeriodsPerYear(freq)
	if err != nil {
		return nil, Quote{}, err
	}

	var emiAmount decimal.Decimal
	rate := annualRate.Div(hundred).Div(decimal.NewFromInt(periods))
	count := decimal.NewFromInt(int64(n))
	if rate.IsZero() {
		emiAmount = principal.Div(count).Round(2)
	} else {
		factor := decimal.NewFromInt(1).Add(rate).Pow(count)
		emiAmount = principal.Mul(rate).Mul(factor).
			Div(factor.Sub(decimal.NewFromInt(1))).
			Round(2)
	}

	records := make([]domain.EmiRecord, 0, n)
	balance := principal
	totalPayable := decimal.Zero
	dueDate := firstEmiDate
	for i := 1; i <= n; i++ {
		interest := balance.Mul(rate).Round(2)
		principalPart := emiAmount.Sub(interest)
		balance = balance.Sub(principalPart)
		records = append(records, domain.EmiRecord{
			EmiNumber:       i,
			DueDate:         dueDate,
			EmiAmount:       emiAmount,
			PrincipalAmount: principalPart,
			InterestAmount:  interest,
			PaidAmount:      decimal.Zero,
			Status:          domain.EmiPending,
		})
		totalPayable = totalPayable.Add(emiAmount)
		dueDate = NextDueDate(dueDate, freq)
	}
	return records, Quote{
		Installments:  n,
		EmiAmount:     emiAmount,
		TotalInterest: totalPayable.Sub(principal),
		TotalPayable:  totalPayable,
	}, nil
}
