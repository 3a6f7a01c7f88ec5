// Package contract renders loan agreement documents from a frozen snapshot
// of loan, customer, and product terms.
package contract

import "context"

// Data is the immutable snapshot rendered into a contract. It is built once
// at generation time so later edits to the customer or loan type cannot
// change an issued document.
type Data struct {
	LoanID         string
	GeneratedAt    string
	ApplicantName  string
	GuardianName   string
	MobileNumber   string
	Address        string
	PANNumber      string
	LoanTypeName   string
	LoanAmount     string
	InterestRate   string
	InterestType   string
	LoanDuration   string
	CollectionFreq string
	Installments   int
	EmiAmount      string
	TotalInterest  string
	TotalPayable   string
	ProcessingFees string
	InsuranceFees  string
	TotalFees      string
	FirstEmiDate   string
}

// Renderer produces the contract document bytes for a snapshot.
type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, string, error)
}
