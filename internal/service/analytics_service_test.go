package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
	"github.com/crediflow/crediflow-backend/internal/testutil"
)

func TestOverview_Aggregates(t *testing.T) {
	customers := testutil.NewMockCustomerRepository()
	fees := testutil.NewMockLoanFeesRepository()
	loans := testutil.NewMockLoanApplicationRepository(fees)
	svc := NewAnalyticsService(customers, loans, fees)

	customers.AddCustomer(&domain.Customer{ID: uuid.New()})
	customers.AddCustomer(&domain.Customer{ID: uuid.New()})

	now := time.Now()
	loans.AddLoan(&domain.LoanApplication{ID: uuid.New(), Status: domain.StatusSubmitted})
	loans.AddLoan(&domain.LoanApplication{ID: uuid.New(), Status: domain.StatusSubmitted})
	loans.AddLoan(&domain.LoanApplication{
		ID:              uuid.New(),
		Status:          domain.StatusDisbursed,
		DisbursedAt:     &now,
		DisbursedAmount: decimal.NewFromInt(11660),
	})

	fees.AddFees(&domain.LoanFees{ID: uuid.New(), LoanID: uuid.New(), Amount: decimal.NewFromInt(340)})
	paid := &domain.LoanFees{ID: uuid.New(), LoanID: uuid.New(), Amount: decimal.NewFromInt(500), Paid: true}
	fees.AddFees(paid)

	dash, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if dash.TotalCustomers != 2 {
		t.Errorf("Expected 2 customers, got %d", dash.TotalCustomers)
	}
	if dash.TotalLoans != 3 {
		t.Errorf("Expected 3 loans, got %d", dash.TotalLoans)
	}
	if dash.LoansByStatus[domain.StatusSubmitted] != 2 {
		t.Errorf("Expected 2 submitted loans, got %d", dash.LoansByStatus[domain.StatusSubmitted])
	}
	if !dash.TotalDisbursed.Equal(decimal.NewFromInt(11660)) {
		t.Errorf("Expected disbursed 11660, got %s", dash.TotalDisbursed)
	}
	if dash.UnpaidFeeCount != 1 {
		t.Errorf("Expected 1 unpaid fee row, got %d", dash.UnpaidFeeCount)
	}
	if !dash.UnpaidFeeAmount.Equal(decimal.NewFromInt(340)) {
		t.Errorf("Expected unpaid amount 340, got %s", dash.UnpaidFeeAmount)
	}
}
