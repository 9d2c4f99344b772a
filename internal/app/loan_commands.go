package app

import (
	"github.com/spf13/cobra"

	"github.com/cantonlend/lending-cli/internal/lending"
	"github.com/cantonlend/lending-cli/internal/out"
)

func (s *runtimeState) newRequestCommand() *cobra.Command {
	var borrower, lender, asset, principal, rate, term, date string
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Create a loan request as the borrower",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = s.runner.now().UTC().Format("2006-01-02")
			}
			session, err := s.session(borrower)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).CreateLoanRequest(ctx, borrower, lending.CreateLoanRequestParams{
				Lender:       lender,
				Asset:        asset,
				Principal:    principal,
				InterestRate: rate,
				TermDays:     term,
				RequestDate:  date,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "Borrower party id")
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&asset, "asset", "", "Asset symbol")
	cmd.Flags().StringVar(&principal, "principal", "", "Principal amount (decimal)")
	cmd.Flags().StringVar(&rate, "rate", "", "Interest rate (decimal, e.g. 0.05)")
	cmd.Flags().StringVar(&term, "term", "", "Term length in days")
	cmd.Flags().StringVar(&date, "date", "", "Request date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("borrower")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("asset")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("rate")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

func (s *runtimeState) newAcceptCommand() *cobra.Command {
	var lender, contract string
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept a loan request as the lender",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).AcceptLoanRequest(ctx, contract)
			return err
		},
	}
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&contract, "contract", "", "LoanRequest contract id")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newRejectCommand() *cobra.Command {
	var lender, contract string
	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Reject a loan request as the lender",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			return s.service(session).RejectLoanRequest(ctx, contract)
		},
	}
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&contract, "contract", "", "LoanRequest contract id")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newFundCommand() *cobra.Command {
	var lender, contract string
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Fund a proposed loan as the lender",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).FundLoan(ctx, contract)
			return err
		},
	}
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newRepayCommand() *cobra.Command {
	var borrower, contract string
	cmd := &cobra.Command{
		Use:   "repay",
		Short: "Repay a funded loan in full as the borrower",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(borrower)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).RepayLoan(ctx, contract)
			return err
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "Borrower party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	_ = cmd.MarkFlagRequired("borrower")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newPayCommand() *cobra.Command {
	var borrower, contract, amount string
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Make a partial payment on a funded loan as the borrower",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(borrower)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).MakePayment(ctx, contract, amount)
			return err
		},
	}
	cmd.Flags().StringVar(&borrower, "borrower", "", "Borrower party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	cmd.Flags().StringVar(&amount, "amount", "", "Payment amount (decimal)")
	_ = cmd.MarkFlagRequired("borrower")
	_ = cmd.MarkFlagRequired("contract")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) newDefaultCommand() *cobra.Command {
	var lender, contract, date string
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Mark a funded loan as defaulted after its due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).DefaultLoan(ctx, contract, date)
			return err
		},
	}
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	cmd.Flags().StringVar(&date, "date", "", "As-of date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newCloseCommand() *cobra.Command {
	var lender, contract string
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a repaid loan as the lender",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(lender)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			return s.service(session).CloseLoan(ctx, contract)
		},
	}
	cmd.Flags().StringVar(&lender, "lender", "", "Lender party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	_ = cmd.MarkFlagRequired("lender")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newBalanceCommand() *cobra.Command {
	var party, contract string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show amount due and remaining balance for a loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			svc := s.service(session)
			due, err := svc.AmountDue(ctx, contract)
			if err != nil {
				return err
			}
			remaining, err := svc.RemainingBalance(ctx, contract)
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return out.JSON(s.runner.stdout, map[string]string{
					"contractId":       contract,
					"amountDue":        due,
					"remainingBalance": remaining,
				})
			}
			out.Balance(s.runner.stdout, contract, due, remaining)
			return nil
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Acting party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}
