package app

import (
	"github.com/spf13/cobra"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/lending"
	"github.com/cantonlend/lending-cli/internal/model"
	"github.com/cantonlend/lending-cli/internal/out"
)

func (s *runtimeState) newAmendCommand() *cobra.Command {
	root := &cobra.Command{Use: "amend", Short: "Renegotiate loan terms via amendment proposals"}
	root.AddCommand(s.newAmendProposeCommand())
	root.AddCommand(s.newAmendListCommand())
	root.AddCommand(s.newAmendAcceptCommand())
	root.AddCommand(s.newAmendRejectCommand())
	root.AddCommand(s.newAmendWithdrawCommand())
	return root
}

func (s *runtimeState) newAmendListCommand() *cobra.Command {
	var party string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open amendment proposals visible to a party",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			proposals, err := lending.QueryAmendments(ctx, session.Client)
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return out.JSON(s.runner.stdout, proposals)
			}
			out.Amendments(s.runner.stdout, proposals)
			return nil
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Acting party id")
	_ = cmd.MarkFlagRequired("party")
	return cmd
}

func (s *runtimeState) newAmendProposeCommand() *cobra.Command {
	var party, contract, principal, rate string
	var term int
	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Propose amended terms for an active loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()

			loans, err := lending.QueryLoans(ctx, session.Client)
			if err != nil {
				return err
			}
			var loan *model.Contract[model.Loan]
			for i := range loans {
				if loans[i].ContractID == contract {
					loan = &loans[i]
					break
				}
			}
			if loan == nil {
				return clierr.New(clierr.CodeUsage, "loan "+contract+" not found in the active set")
			}
			counterparty := loan.Payload.Lender
			if party == counterparty {
				counterparty = loan.Payload.Borrower
			}

			params := lending.AmendmentParams{
				OriginalLoanID:    contract,
				Proposer:          party,
				Counterparty:      counterparty,
				Borrower:          loan.Payload.Borrower,
				Lender:            loan.Payload.Lender,
				Asset:             loan.Payload.Asset,
				OriginalPrincipal: loan.Payload.Principal,
				OriginalInterest:  loan.Payload.Interest,
				OriginalDueDate:   loan.Payload.DueDate,
				StartDate:         loan.Payload.StartDate,
			}
			// Only flags the operator actually set become proposed overrides;
			// an unset flag stays an explicit null on the ledger.
			if cmd.Flags().Changed("principal") {
				params.NewPrincipal = &principal
			}
			if cmd.Flags().Changed("rate") {
				params.NewInterestRate = &rate
			}
			if cmd.Flags().Changed("term") {
				params.NewTermDays = &term
			}

			_, err = s.service(session).ProposeAmendment(ctx, params)
			return err
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Proposing party id")
	cmd.Flags().StringVar(&contract, "contract", "", "Loan contract id")
	cmd.Flags().StringVar(&principal, "principal", "", "Proposed new principal (decimal)")
	cmd.Flags().StringVar(&rate, "rate", "", "Proposed new interest rate (decimal)")
	cmd.Flags().IntVar(&term, "term", 0, "Proposed new term in days")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newAmendAcceptCommand() *cobra.Command {
	var party, contract string
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Accept an amendment proposal as the counterparty",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			_, err = s.service(session).AcceptAmendment(ctx, contract)
			return err
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Counterparty id")
	cmd.Flags().StringVar(&contract, "contract", "", "AmendmentProposal contract id")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newAmendRejectCommand() *cobra.Command {
	var party, contract string
	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Reject an amendment proposal as the counterparty",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			return s.service(session).RejectAmendment(ctx, contract)
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Counterparty id")
	cmd.Flags().StringVar(&contract, "contract", "", "AmendmentProposal contract id")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func (s *runtimeState) newAmendWithdrawCommand() *cobra.Command {
	var party, contract string
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw an amendment proposal as its proposer",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			return s.service(session).WithdrawAmendment(ctx, contract)
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Proposer party id")
	cmd.Flags().StringVar(&contract, "contract", "", "AmendmentProposal contract id")
	_ = cmd.MarkFlagRequired("party")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}
