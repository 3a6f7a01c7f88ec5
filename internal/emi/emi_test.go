package emi

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodsPerYear(t *testing.T) {
	cases := []struct {
		freq domain.CollectionFrequency
		want int64
	}{
		{domain.FreqWeekly, 52},
		{domain.FreqBiweekly, 26},
		{domain.FreqMonthly, 12},
		{domain.FreqQuarterly, 4},
	}
	for _, c := range cases {
		got, err := PeriodsPerYear(c.freq)
		if err != nil {
			t.Fatalf("PeriodsPerYear(%s): unexpected error %v", c.freq, err)
		}
		if got != c.want {
			t.Errorf("PeriodsPerYear(%s) = %d, want %d", c.freq, got, c.want)
		}
	}
}

func TestPeriodsPerYear_UnknownFrequency(t *testing.T) {
	_, err := PeriodsPerYear(domain.CollectionFrequency("DAILY"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestTotalInstallments(t *testing.T) {
	cases := []struct {
		months int32
		freq   domain.CollectionFrequency
		want   int
	}{
		{12, domain.FreqMonthly, 12},
		{12, domain.FreqWeekly, 52},
		{12, domain.FreqBiweekly, 26},
		{12, domain.FreqQuarterly, 4},
		{6, domain.FreqMonthly, 6},
		{6, domain.FreqQuarterly, 2},
		// 7 months quarterly = 7*4/12 = 2.33 -> 2
		{7, domain.FreqQuarterly, 2},
		// 10 months weekly = 10*52/12 = 43.33 -> 43
		{10, domain.FreqWeekly, 43},
		// half-up: 4.5 quarterly periods over 13.5 months is not expressible,
		// but 9 months biweekly = 19.5 -> 20
		{9, domain.FreqBiweekly, 20},
	}
	for _, c := range cases {
		got, err := TotalInstallments(c.months, c.freq)
		if err != nil {
			t.Fatalf("TotalInstallments(%d, %s): unexpected error %v", c.months, c.freq, err)
		}
		if got != c.want {
			t.Errorf("TotalInstallments(%d, %s) = %d, want %d", c.months, c.freq, got, c.want)
		}
	}
}

func TestTotalInstallments_InvalidInput(t *testing.T) {
	if _, err := TotalInstallments(0, domain.FreqMonthly); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero duration: expected ErrInvalidInput, got %v", err)
	}
	if _, err := TotalInstallments(-6, domain.FreqMonthly); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative duration: expected ErrInvalidInput, got %v", err)
	}
	// 1 month quarterly = 0.33 periods, rounds to 0
	if _, err := TotalInstallments(1, domain.FreqQuarterly); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("sub-period duration: expected ErrInvalidInput, got %v", err)
	}
}

func TestFeeAmount(t *testing.T) {
	principal := decimal.NewFromInt(10000)

	flat := FeeAmount(principal, domain.FeeSpec{Amount: decimal.NewFromInt(250)})
	if !flat.Equal(decimal.NewFromInt(250)) {
		t.Errorf("flat fee = %s, want 250", flat)
	}

	pct := FeeAmount(principal, domain.FeeSpec{Amount: decimal.NewFromFloat(2.5), IsPercentage: true})
	if !pct.Equal(decimal.NewFromInt(250)) {
		t.Errorf("percentage fee = %s, want 250", pct)
	}
}

func TestTotalFees(t *testing.T) {
	principal := decimal.NewFromInt(10000)
	processing := domain.FeeSpec{Amount: decimal.NewFromFloat(2), IsPercentage: true} // 200
	insurance := domain.FeeSpec{Amount: decimal.NewFromInt(150)}
	other := []domain.FeeSpec{
		{Amount: decimal.NewFromFloat(0.5), IsPercentage: true}, // 50
		{Amount: decimal.NewFromInt(25)},
	}

	got := TotalFees(principal, processing, insurance, other)
	if !got.Equal(decimal.NewFromInt(425)) {
		t.Errorf("TotalFees = %s, want 425", got)
	}
}

func TestDisbursedAmount(t *testing.T) {
	principal := decimal.NewFromInt(10000)
	fees := decimal.NewFromInt(425)

	deducted, err := DisbursedAmount(principal, fees, domain.FeesDeducted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deducted.Equal(decimal.NewFromInt(9575)) {
		t.Errorf("deducted = %s, want 9575", deducted)
	}

	separate, err := DisbursedAmount(principal, fees, domain.FeesSeparate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !separate.Equal(principal) {
		t.Errorf("separate = %s, want %s", separate, principal)
	}
}

func TestDisbursedAmount_FeesExceedPrincipal(t *testing.T) {
	_, err := DisbursedAmount(decimal.NewFromInt(100), decimal.NewFromInt(150), domain.FeesDeducted)
	if !errors.Is(err, domain.ErrNegativeDisbursement) {
		t.Fatalf("Expected ErrNegativeDisbursement, got %v", err)
	}
}

func TestNextDueDate_FixedSteps(t *testing.T) {
	start := date(2024, time.March, 15)

	if got := NextDueDate(start, domain.FreqWeekly); !got.Equal(date(2024, time.March, 22)) {
		t.Errorf("weekly: got %s", got)
	}
	if got := NextDueDate(start, domain.FreqBiweekly); !got.Equal(date(2024, time.March, 29)) {
		t.Errorf("biweekly: got %s", got)
	}
	if got := NextDueDate(start, domain.FreqMonthly); !got.Equal(date(2024, time.April, 15)) {
		t.Errorf("monthly: got %s", got)
	}
	if got := NextDueDate(start, domain.FreqQuarterly); !got.Equal(date(2024, time.June, 15)) {
		t.Errorf("quarterly: got %s", got)
	}
}

func TestNextDueDate_MonthEndClamping(t *testing.T) {
	// Jan 31 + 1 month lands on the last day of February, not March 2/3.
	if got := NextDueDate(date(2025, time.January, 31), domain.FreqMonthly); !got.Equal(date(2025, time.February, 28)) {
		t.Errorf("Jan 31 2025 + 1 month = %s, want 2025-02-28", got)
	}
	if got := NextDueDate(date(2024, time.January, 31), domain.FreqMonthly); !got.Equal(date(2024, time.February, 29)) {
		t.Errorf("Jan 31 2024 + 1 month = %s, want 2024-02-29 (leap year)", got)
	}
	if got := NextDueDate(date(2024, time.November, 30), domain.FreqQuarterly); !got.Equal(date(2025, time.February, 28)) {
		t.Errorf("Nov 30 2024 + 3 months = %s, want 2025-02-28", got)
	}
}

func TestSchedule_FlatMonthly(t *testing.T) {
	// 12000 at 12% flat over 12 months: interest 1440, payable 13440, EMI 1120.
	records, quote, err := Schedule(
		decimal.NewFromInt(12000), decimal.NewFromInt(12),
		12, domain.FreqMonthly, domain.InterestFlat,
		date(2025, time.January, 5),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Installments != 12 {
		t.Fatalf("installments = %d, want 12", quote.Installments)
	}
	if !quote.TotalInterest.Equal(decimal.NewFromFloat(1440.00)) {
		t.Errorf("total interest = %s, want 1440.00", quote.TotalInterest)
	}
	if !quote.TotalPayable.Equal(decimal.NewFromFloat(13440.00)) {
		t.Errorf("total payable = %s, want 13440.00", quote.TotalPayable)
	}
	if !quote.EmiAmount.Equal(decimal.NewFromFloat(1120.00)) {
		t.Errorf("emi = %s, want 1120.00", quote.EmiAmount)
	}

	if len(records) != 12 {
		t.Fatalf("len(records) = %d, want 12", len(records))
	}
	for i, r := range records {
		if r.EmiNumber != i+1 {
			t.Errorf("record %d: emiNumber = %d, want %d", i, r.EmiNumber, i+1)
		}
		if !r.EmiAmount.Equal(decimal.NewFromFloat(1120.00)) {
			t.Errorf("record %d: emiAmount = %s, want 1120.00", i, r.EmiAmount)
		}
		if !r.PrincipalAmount.Equal(decimal.NewFromFloat(1000.00)) {
			t.Errorf("record %d: principal = %s, want 1000.00", i, r.PrincipalAmount)
		}
		if !r.InterestAmount.Equal(decimal.NewFromFloat(120.00)) {
			t.Errorf("record %d: interest = %s, want 120.00", i, r.InterestAmount)
		}
		if r.Status != domain.EmiPending {
			t.Errorf("record %d: status = %s, want PENDING", i, r.Status)
		}
	}

	// Due dates step by one calendar month from the first EMI date.
	if !records[0].DueDate.Equal(date(2025, time.January, 5)) {
		t.Errorf("first due date = %s", records[0].DueDate)
	}
	if !records[11].DueDate.Equal(date(2025, time.December, 5)) {
		t.Errorf("last due date = %s", records[11].DueDate)
	}
}

func TestSchedule_ReducingPrincipalSumsBack(t *testing.T) {
	principal := decimal.NewFromInt(50000)
	records, quote, err := Schedule(
		principal, decimal.NewFromFloat(18.5),
		24, domain.FreqMonthly, domain.InterestReducing,
		date(2025, time.February, 1),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 24 {
		t.Fatalf("len(records) = %d, want 24", len(records))
	}

	sumPrincipal := decimal.Zero
	sumComponents := decimal.Zero
	sumEmi := decimal.Zero
	for _, r := range records {
		sumPrincipal = sumPrincipal.Add(r.PrincipalAmount)
		sumComponents = sumComponents.Add(r.PrincipalAmount).Add(r.InterestAmount)
		sumEmi = sumEmi.Add(r.EmiAmount)
	}

	tolerance := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(len(records))))
	if sumPrincipal.Sub(principal).Abs().GreaterThan(tolerance) {
		t.Errorf("sum of principal components = %s, want %s within %s", sumPrincipal, principal, tolerance)
	}
	if !sumComponents.Equal(sumEmi) {
		t.Errorf("principal+interest sum %s != emi sum %s", sumComponents, sumEmi)
	}
	if !quote.TotalPayable.Equal(sumEmi) {
		t.Errorf("quote payable %s != summed emi %s", quote.TotalPayable, sumEmi)
	}
	if !quote.TotalInterest.Equal(sumEmi.Sub(principal)) {
		t.Errorf("quote interest %s != summed emi - principal", quote.TotalInterest)
	}
}

func TestSchedule_ReducingInterestDeclines(t *testing.T) {
	records, _, err := Schedule(
		decimal.NewFromInt(10000), decimal.NewFromInt(24),
		12, domain.FreqMonthly, domain.InterestReducing,
		date(2025, time.March, 10),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].InterestAmount.GreaterThan(records[i-1].InterestAmount) {
			t.Errorf("interest rose from %s to %s at installment %d",
				records[i-1].InterestAmount, records[i].InterestAmount, i+1)
		}
	}
	first := records[0].InterestAmount
	// 10000 * 2% per month = 200 in the first period.
	if !first.Equal(decimal.NewFromFloat(200.00)) {
		t.Errorf("first interest = %s, want 200.00", first)
	}
}

func TestSchedule_ReducingZeroRate(t *testing.T) {
	records, quote, err := Schedule(
		decimal.NewFromInt(1200), decimal.Zero,
		12, domain.FreqMonthly, domain.InterestReducing,
		date(2025, time.January, 1),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.EmiAmount.Equal(decimal.NewFromFloat(100.00)) {
		t.Errorf("emi = %s, want 100.00", quote.EmiAmount)
	}
	if !quote.TotalInterest.IsZero() {
		t.Errorf("total interest = %s, want 0", quote.TotalInterest)
	}
	for _, r := range records {
		if !r.InterestAmount.IsZero() {
			t.Errorf("installment %d interest = %s, want 0", r.EmiNumber, r.InterestAmount)
		}
	}
}

func TestSchedule_WeeklyDueDates(t *testing.T) {
	records, _, err := Schedule(
		decimal.NewFromInt(5200), decimal.NewFromInt(10),
		3, domain.FreqWeekly, domain.InterestFlat,
		date(2025, time.June, 2),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 3 months weekly = 3*52/12 = 13 installments.
	if len(records) != 13 {
		t.Fatalf("len(records) = %d, want 13", len(records))
	}
	for i, r := range records {
		want := date(2025, time.June, 2).AddDate(0, 0, 7*i)
		if !r.DueDate.Equal(want) {
			t.Errorf("installment %d due %s, want %s", r.EmiNumber, r.DueDate, want)
		}
	}
}

func TestSchedule_InvalidInterestType(t *testing.T) {
	_, _, err := Schedule(
		decimal.NewFromInt(1000), decimal.NewFromInt(10),
		12, domain.FreqMonthly, domain.InterestType("COMPOUND"),
		date(2025, time.January, 1),
	)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSchedule_NegativePrincipal(t *testing.T) {
	_, _, err := Schedule(
		decimal.NewFromInt(-1000), decimal.NewFromInt(10),
		12, domain.FreqMonthly, domain.InterestFlat,
		date(2025, time.January, 1),
	)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}
