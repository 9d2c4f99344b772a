// Package lending drives the loan lifecycle against the ledger. Every action
// is a single create-or-exercise call; the templates enforce the business
// rules, nothing here re-checks them.
package lending

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/ledger"
	"github.com/cantonlend/lending-cli/internal/model"
)

// Service wraps a session's ledger client with console reporting. Success
// lines go to out, failure diagnostics to diag; errors are returned unchanged
// for the entry point to handle.
type Service struct {
	client ledger.Client
	out    io.Writer
	diag   io.Writer
	now    func() time.Time
}

func NewService(client ledger.Client, out, diag io.Writer) *Service {
	return &Service{client: client, out: out, diag: diag, now: time.Now}
}

type CreateLoanRequestParams struct {
	Lender       string
	Asset        string
	Principal    string
	InterestRate string
	TermDays     string
	RequestDate  string
}

// CreateLoanRequest creates a LoanRequest contract for the borrower. Numeric
// fields are passed through unvalidated; the ledger rejects malformed
// decimals.
func (s *Service) CreateLoanRequest(ctx context.Context, borrower string, params CreateLoanRequestParams) (string, error) {
	payload := model.LoanRequest{
		Borrower:     borrower,
		Lender:       params.Lender,
		Asset:        params.Asset,
		Principal:    params.Principal,
		InterestRate: params.InterestRate,
		TermDays:     params.TermDays,
		RequestDate:  params.RequestDate,
	}
	result, err := s.client.Create(ctx, ledger.TemplateLoanRequest, payload)
	if err != nil {
		return "", s.fail("create loan request", err)
	}
	fmt.Fprintf(s.out, "Created LoanRequest: %s\n", result.ContractID)
	return result.ContractID, nil
}

// AcceptLoanRequest archives the request and returns the new Loan's id.
func (s *Service) AcceptLoanRequest(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoanRequest, contractID, "Accept", nil)
	if err != nil {
		return "", s.fail("accept loan request", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("accept loan request", err)
	}
	fmt.Fprintf(s.out, "Accepted LoanRequest, created Loan: %s\n", loanID)
	return loanID, nil
}

// RejectLoanRequest archives the request without creating a Loan.
func (s *Service) RejectLoanRequest(ctx context.Context, contractID string) error {
	if _, err := s.client.Exercise(ctx, ledger.TemplateLoanRequest, contractID, "Reject", nil); err != nil {
		return s.fail("reject loan request", err)
	}
	fmt.Fprintf(s.out, "Rejected LoanRequest: %s\n", contractID)
	return nil
}

// FundLoan moves a loan from Proposed to Funded and returns the new id.
func (s *Service) FundLoan(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "Fund", nil)
	if err != nil {
		return "", s.fail("fund loan", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("fund loan", err)
	}
	fmt.Fprintf(s.out, "Funded Loan: %s\n", loanID)
	return loanID, nil
}

// RepayLoan settles the full balance, moving the loan to Repaid.
func (s *Service) RepayLoan(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "Repay", nil)
	if err != nil {
		return "", s.fail("repay loan", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("repay loan", err)
	}
	fmt.Fprintf(s.out, "Repaid Loan: %s\n", loanID)
	return loanID, nil
}

// MakePayment records a partial repayment; the loan stays Funded until the
// cumulative amount repaid reaches the total due.
func (s *Service) MakePayment(ctx context.Context, contractID, amount string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "MakePayment", map[string]string{"amount": amount})
	if err != nil {
		return "", s.fail("make payment", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("make payment", err)
	}
	fmt.Fprintf(s.out, "Payment of %s recorded, Loan: %s\n", amount, loanID)
	return loanID, nil
}

// DefaultLoan marks a funded loan as defaulted. asOfDate defaults to today;
// the ledger rejects dates before the due date.
func (s *Service) DefaultLoan(ctx context.Context, contractID, asOfDate string) (string, error) {
	if asOfDate == "" {
		asOfDate = s.now().UTC().Format("2006-01-02")
	}
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "Default", map[string]string{"currentDate": asOfDate})
	if err != nil {
		return "", s.fail("default loan", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("default loan", err)
	}
	fmt.Fprintf(s.out, "Loan marked as defaulted: %s\n", loanID)
	return loanID, nil
}

// CloseLoan archives a repaid loan terminally.
func (s *Service) CloseLoan(ctx context.Context, contractID string) error {
	if _, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "Close", nil); err != nil {
		return s.fail("close loan", err)
	}
	fmt.Fprintf(s.out, "Closed Loan: %s\n", contractID)
	return nil
}

// AmountDue returns principal + interest via the loan's nonconsuming choice.
func (s *Service) AmountDue(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "GetAmountDue", nil)
	if err != nil {
		return "", s.fail("get amount due", err)
	}
	value, err := decimalResult(raw)
	if err != nil {
		return "", s.fail("get amount due", err)
	}
	return value, nil
}

// RemainingBalance returns total due minus amount repaid.
func (s *Service) RemainingBalance(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateLoan, contractID, "GetRemainingBalance", nil)
	if err != nil {
		return "", s.fail("get remaining balance", err)
	}
	value, err := decimalResult(raw)
	if err != nil {
		return "", s.fail("get remaining balance", err)
	}
	return value, nil
}

// AmendmentParams carries the original loan's terms plus optional overrides.
// A nil override means "not proposed"; a non-nil pointer proposes the value
// even when it equals the original.
type AmendmentParams struct {
	OriginalLoanID    string
	Proposer          string
	Counterparty      string
	Borrower          string
	Lender            string
	Asset             string
	OriginalPrincipal string
	OriginalInterest  string
	OriginalDueDate   string
	StartDate         string
	NewPrincipal      *string
	NewInterestRate   *string
	NewTermDays       *int
}

// ProposeAmendment creates a renegotiation proposal referencing the original
// loan.
func (s *Service) ProposeAmendment(ctx context.Context, params AmendmentParams) (string, error) {
	payload := model.AmendmentProposal{
		OriginalLoanID:    params.OriginalLoanID,
		Proposer:          params.Proposer,
		Counterparty:      params.Counterparty,
		Borrower:          params.Borrower,
		Lender:            params.Lender,
		Asset:             params.Asset,
		OriginalPrincipal: params.OriginalPrincipal,
		OriginalInterest:  params.OriginalInterest,
		OriginalDueDate:   params.OriginalDueDate,
		StartDate:         params.StartDate,
		NewPrincipal:      params.NewPrincipal,
		NewInterestRate:   params.NewInterestRate,
		NewTermDays:       params.NewTermDays,
	}
	result, err := s.client.Create(ctx, ledger.TemplateAmendmentProposal, payload)
	if err != nil {
		return "", s.fail("propose amendment", err)
	}
	fmt.Fprintf(s.out, "Amendment proposal created: %s\n", result.ContractID)
	return result.ContractID, nil
}

// AcceptAmendment atomically replaces the original loan with one reflecting
// the merged terms and returns the new loan's id.
func (s *Service) AcceptAmendment(ctx context.Context, contractID string) (string, error) {
	raw, err := s.client.Exercise(ctx, ledger.TemplateAmendmentProposal, contractID, "AcceptAmendment", nil)
	if err != nil {
		return "", s.fail("accept amendment", err)
	}
	loanID, err := contractIDResult(raw)
	if err != nil {
		return "", s.fail("accept amendment", err)
	}
	fmt.Fprintf(s.out, "Amendment accepted. New loan: %s\n", loanID)
	return loanID, nil
}

// RejectAmendment archives the proposal; the original loan is untouched.
func (s *Service) RejectAmendment(ctx context.Context, contractID string) error {
	if _, err := s.client.Exercise(ctx, ledger.TemplateAmendmentProposal, contractID, "RejectAmendment", nil); err != nil {
		return s.fail("reject amendment", err)
	}
	fmt.Fprintf(s.out, "Amendment rejected: %s\n", contractID)
	return nil
}

// WithdrawAmendment lets the proposer retract the proposal.
func (s *Service) WithdrawAmendment(ctx context.Context, contractID string) error {
	if _, err := s.client.Exercise(ctx, ledger.TemplateAmendmentProposal, contractID, "WithdrawAmendment", nil); err != nil {
		return s.fail("withdraw amendment", err)
	}
	fmt.Fprintf(s.out, "Amendment withdrawn: %s\n", contractID)
	return nil
}

// fail logs one diagnostic line naming the operation and returns the error
// unchanged. Nothing is retried or reclassified here.
func (s *Service) fail(operation string, err error) error {
	fmt.Fprintf(s.diag, "Failed to %s: %v\n", operation, err)
	return err
}

func contractIDResult(raw json.RawMessage) (string, error) {
	var cid string
	if err := json.Unmarshal(raw, &cid); err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "decode exercise result", err)
	}
	if cid == "" {
		return "", clierr.New(clierr.CodeInternal, "ledger returned no contract id")
	}
	return cid, nil
}

func decimalResult(raw json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "decode exercise result", err)
	}
	return value, nil
}
