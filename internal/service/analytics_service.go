package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/crediflow/crediflow-backend/internal/domain"
)

// AnalyticsService aggregates the numbers the back-office dashboard shows.
type AnalyticsService struct {
	customerRepo domain.CustomerRepository
	loanRepo     domain.LoanApplicationRepository
	feesRepo     domain.LoanFeesRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(customerRepo domain.CustomerRepository, loanRepo domain.LoanApplicationRepository, feesRepo domain.LoanFeesRepository) *AnalyticsService {
	return &AnalyticsService{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		feesRepo:     feesRepo,
	}
}

// Dashboard is the aggregate snapshot for the overview page.
type Dashboard struct {
	TotalCustomers  int64                              `json:"totalCustomers"`
	LoansByStatus   map[domain.ApplicationStatus]int64 `json:"loansByStatus"`
	TotalLoans      int64                              `json:"totalLoans"`
	TotalDisbursed  decimal.Decimal                    `json:"totalDisbursed"`
	UnpaidFeeCount  int                                `json:"unpaidFeeCount"`
	UnpaidFeeAmount decimal.Decimal                    `json:"unpaidFeeAmount"`
}

// Overview computes the dashboard snapshot.
func (s *AnalyticsService) Overview(ctx context.Context) (*Dashboard, error) {
	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.loanRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[domain.ApplicationStatus]int64, len(statusCounts))
	var totalLoans int64
	for _, sc := range statusCounts {
		byStatus[sc.Status] = sc.Count
		totalLoans += sc.Count
	}

	disbursed, err := s.loanRepo.SumDisbursed(ctx)
	if err != nil {
		return nil, err
	}

	unpaid, err := s.feesRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	unpaidAmount := decimal.Zero
	for _, fees := range unpaid {
		unpaidAmount = unpaidAmount.Add(fees.Amount)
	}

	return &Dashboard{
		TotalCustomers:  customers,
		LoansByStatus:   byStatus,
		TotalLoans:      totalLoans,
		TotalDisbursed:  disbursed,
		UnpaidFeeCount:  len(unpaid),
		UnpaidFeeAmount: unpaidAmount,
	}, nil
}
