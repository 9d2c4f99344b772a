// Package out renders contract reports. Formatting only; nothing here makes
// decisions about the data.
package out

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cantonlend/lending-cli/internal/model"
)

func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func LoanRequests(w io.Writer, requests []model.Contract[model.LoanRequest]) {
	if len(requests) == 0 {
		fmt.Fprintln(w, "No loan requests found.")
		return
	}
	fmt.Fprintln(w, "\n=== Loan Requests ===")
	fmt.Fprintln(w)
	for _, req := range requests {
		fmt.Fprintf(w, "Contract ID: %s\n", req.ContractID)
		fmt.Fprintf(w, "  Borrower:      %s\n", req.Payload.Borrower)
		fmt.Fprintf(w, "  Lender:        %s\n", req.Payload.Lender)
		fmt.Fprintf(w, "  Asset:         %s\n", req.Payload.Asset)
		fmt.Fprintf(w, "  Principal:     %s\n", req.Payload.Principal)
		fmt.Fprintf(w, "  Interest Rate: %s\n", req.Payload.InterestRate)
		fmt.Fprintf(w, "  Term (days):   %s\n", req.Payload.TermDays)
		fmt.Fprintf(w, "  Request Date:  %s\n", req.Payload.RequestDate)
		fmt.Fprintln(w)
	}
}

func Loans(w io.Writer, loans []model.Contract[model.Loan]) {
	if len(loans) == 0 {
		fmt.Fprintln(w, "No loans found.")
		return
	}
	fmt.Fprintln(w, "\n=== Loans ===")
	fmt.Fprintln(w)
	for _, loan := range loans {
		totalDue := dec(loan.Payload.Principal).Add(dec(loan.Payload.Interest))
		repaid := dec(loan.Payload.AmountRepaid)
		remaining := totalDue.Sub(repaid)

		fmt.Fprintf(w, "Contract ID: %s\n", loan.ContractID)
		fmt.Fprintf(w, "  Borrower:      %s\n", loan.Payload.Borrower)
		fmt.Fprintf(w, "  Lender:        %s\n", loan.Payload.Lender)
		fmt.Fprintf(w, "  Asset:         %s\n", loan.Payload.Asset)
		fmt.Fprintf(w, "  Principal:     %s\n", loan.Payload.Principal)
		fmt.Fprintf(w, "  Interest:      %s\n", loan.Payload.Interest)
		fmt.Fprintf(w, "  Total Due:     %s\n", totalDue.StringFixed(2))
		fmt.Fprintf(w, "  Amount Repaid: %s\n", repaid.StringFixed(2))
		fmt.Fprintf(w, "  Remaining:     %s\n", remaining.StringFixed(2))
		fmt.Fprintf(w, "  Start Date:    %s\n", loan.Payload.StartDate)
		fmt.Fprintf(w, "  Due Date:      %s\n", loan.Payload.DueDate)
		fmt.Fprintf(w, "  Status:        %s\n", loan.Payload.Status)
		fmt.Fprintln(w)
	}
}

func Balance(w io.Writer, contractID, amountDue, remaining string) {
	paid := dec(amountDue).Sub(dec(remaining))
	fmt.Fprintln(w, "\n=== Loan Balance ===")
	fmt.Fprintf(w, "Contract ID:     %s\n", contractID)
	fmt.Fprintf(w, "Total Due:       %s\n", amountDue)
	fmt.Fprintf(w, "Remaining:       %s\n", remaining)
	fmt.Fprintf(w, "Amount Paid:     %s\n", paid.StringFixed(2))
	fmt.Fprintln(w)
}

func Amendments(w io.Writer, proposals []model.Contract[model.AmendmentProposal]) {
	fmt.Fprintln(w, "\n=== Amendment Proposals ===")
	if len(proposals) == 0 {
		fmt.Fprintln(w, "No active amendment proposals.")
		return
	}
	for _, p := range proposals {
		fmt.Fprintf(w, "Contract ID: %s\n", p.ContractID)
		fmt.Fprintf(w, "  Original Loan: %s\n", p.Payload.OriginalLoanID)
		fmt.Fprintf(w, "  Proposer:      %s\n", p.Payload.Proposer)
		fmt.Fprintf(w, "  Counterparty:  %s\n", p.Payload.Counterparty)
		if p.Payload.NewPrincipal != nil {
			fmt.Fprintf(w, "  New Principal: %s (was %s)\n", *p.Payload.NewPrincipal, p.Payload.OriginalPrincipal)
		}
		if p.Payload.NewInterestRate != nil {
			fmt.Fprintf(w, "  New Rate:      %s\n", *p.Payload.NewInterestRate)
		}
		if p.Payload.NewTermDays != nil {
			fmt.Fprintf(w, "  New Term:      %d days\n", *p.Payload.NewTermDays)
		}
		fmt.Fprintln(w)
	}
}

func WatchLoans(w io.Writer, loans []model.Contract[model.Loan]) {
	fmt.Fprintf(w, "\n[Loans] Update received - %d active contract(s)\n", len(loans))
	for _, loan := range loans {
		remaining := dec(loan.Payload.Principal).Add(dec(loan.Payload.Interest)).Sub(dec(loan.Payload.AmountRepaid))
		fmt.Fprintf(w, "  Contract: %s\n", loan.ContractID)
		fmt.Fprintf(w, "    Borrower: %s\n", loan.Payload.Borrower)
		fmt.Fprintf(w, "    Lender: %s\n", loan.Payload.Lender)
		fmt.Fprintf(w, "    Status: %s\n", loan.Payload.Status)
		fmt.Fprintf(w, "    Principal: %s\n", loan.Payload.Principal)
		fmt.Fprintf(w, "    Remaining: %s\n", remaining.StringFixed(2))
	}
}

func WatchRequests(w io.Writer, requests []model.Contract[model.LoanRequest]) {
	fmt.Fprintf(w, "\n[Requests] Update received - %d active request(s)\n", len(requests))
	for _, req := range requests {
		fmt.Fprintf(w, "  Contract: %s\n", req.ContractID)
		fmt.Fprintf(w, "    Borrower: %s\n", req.Payload.Borrower)
		fmt.Fprintf(w, "    Lender: %s\n", req.Payload.Lender)
		fmt.Fprintf(w, "    Principal: %s\n", req.Payload.Principal)
		fmt.Fprintf(w, "    Rate: %s\n", req.Payload.InterestRate)
	}
}

// dec parses a ledger decimal string; malformed or empty values render as
// zero rather than failing a report.
func dec(v string) decimal.Decimal {
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}
