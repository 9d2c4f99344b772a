package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cantonlend/lending-cli/internal/lending"
)

// newDemoCommand drives the full happy path against a running sandbox:
// request, accept, fund, repay, close. Each transition exercises the contract
// id produced by the previous one.
func (s *runtimeState) newDemoCommand() *cobra.Command {
	var borrower, lender string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full loan lifecycle end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			borrowerSession, err := s.session(borrower)
			if err != nil {
				return err
			}
			lenderSession, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()

			borrowerSvc := s.service(borrowerSession)
			lenderSvc := s.service(lenderSession)
			w := s.runner.stdout

			fmt.Fprintln(w, "=== Loan lifecycle demo ===")

			fmt.Fprintf(w, "\nStep 1: %s requests a loan from %s\n", borrower, lender)
			requestID, err := borrowerSvc.CreateLoanRequest(ctx, borrower, lending.CreateLoanRequestParams{
				Lender:       lender,
				Asset:        "USD",
				Principal:    "10000.0",
				InterestRate: "0.05",
				TermDays:     "30",
				RequestDate:  s.runner.now().UTC().Format("2006-01-02"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\nStep 2: %s accepts the request\n", lender)
			loanID, err := lenderSvc.AcceptLoanRequest(ctx, requestID)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\nStep 3: %s funds the loan\n", lender)
			fundedID, err := lenderSvc.FundLoan(ctx, loanID)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\nStep 4: %s repays the loan\n", borrower)
			repaidID, err := borrowerSvc.RepayLoan(ctx, fundedID)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "\nStep 5: %s closes the loan\n", lender)
			if err := lenderSvc.CloseLoan(ctx, repaidID); err != nil {
				return err
			}

			fmt.Fprintln(w, "\nDemo complete.")
			return nil
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "Borrower party id")
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	_ = cmd.MarkFlagRequired("borrower")
	_ = cmd.MarkFlagRequired("lender")
	return cmd
}
