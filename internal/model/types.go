// Package model holds read-only projections of ledger contracts. The ledger
// is authoritative; nothing here is persisted or mutated locally.
package model

// Loan status values as the ledger templates encode them.
const (
	StatusProposed  = "Proposed"
	StatusFunded    = "Funded"
	StatusRepaid    = "Repaid"
	StatusDefaulted = "Defaulted"
	StatusClosed    = "Closed"
)

// LoanRequest mirrors the Lending.LoanRequest template payload. Numeric
// fields stay strings; the ledger validates them.
type LoanRequest struct {
	Borrower     string `json:"borrower"`
	Lender       string `json:"lender"`
	Asset        string `json:"asset"`
	Principal    string `json:"principal"`
	InterestRate string `json:"interestRate"`
	TermDays     string `json:"termDays"`
	RequestDate  string `json:"requestDate"`
}

// Loan mirrors the Lending.Loan template payload.
type Loan struct {
	Borrower     string `json:"borrower"`
	Lender       string `json:"lender"`
	Asset        string `json:"asset"`
	Principal    string `json:"principal"`
	Interest     string `json:"interest"`
	StartDate    string `json:"startDate"`
	DueDate      string `json:"dueDate"`
	Status       string `json:"status"`
	AmountRepaid string `json:"amountRepaid"`
}

// AmendmentProposal mirrors the Lending.LoanAmendment proposal payload.
// Override fields are pointers: nil marshals to JSON null ("not proposed"),
// which the ledger distinguishes from proposing the same value again.
type AmendmentProposal struct {
	OriginalLoanID    string  `json:"originalLoanId"`
	Proposer          string  `json:"proposer"`
	Counterparty      string  `json:"counterparty"`
	Borrower          string  `json:"borrower"`
	Lender            string  `json:"lender"`
	Asset             string  `json:"asset"`
	OriginalPrincipal string  `json:"originalPrincipal"`
	OriginalInterest  string  `json:"originalInterest"`
	OriginalDueDate   string  `json:"originalDueDate"`
	StartDate         string  `json:"startDate"`
	NewPrincipal      *string `json:"newPrincipal"`
	NewInterestRate   *string `json:"newInterestRate"`
	NewTermDays       *int    `json:"newTermDays"`
}

// Contract pairs a ledger-assigned contract identifier with its decoded
// payload. Built fresh on every query, never cached across calls.
type Contract[T any] struct {
	ContractID string `json:"contractId"`
	Payload    T      `json:"payload"`
}
