package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cantonlend/lending-cli/internal/lending"
	"github.com/cantonlend/lending-cli/internal/out"
)

func (s *runtimeState) newListRequestsCommand() *cobra.Command {
	var party string
	cmd := &cobra.Command{
		Use:   "list-requests",
		Short: "List active loan requests visible to a party",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.session(party)
			if err != nil {
				return err
			}
			ctx, cancel := s.opContext(cmd)
			defer cancel()
			requests, err := lending.QueryLoanRequests(ctx, session.Client)
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return out.JSON(s.runner.stdout, requests)
			}
			out.LoanRequests(s.runner.stdout, requests)
			return nil
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Acting party id")
	_ = cmd.MarkFlagRequired("party")
	return cmd
}

func (s *runtimeState) newListLoansCommand() *cobra.Command {
	var party, status string
	cmd := &cobra.Command{
		Use:   "list-loans",
		Short: "List active loans visible to a party",
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
			if status != "" {
				loans = lending.FilterByStatus(loans, status)
			}
			if s.jsonOutput() {
				return out.JSON(s.runner.stdout, loans)
			}
			out.Loans(s.runner.stdout, loans)
			return nil
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Acting party id")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (Proposed, Funded, Repaid, Defaulted, Closed)")
	_ = cmd.MarkFlagRequired("party")
	return cmd
}

func (s *runtimeState) newWatchCommand() *cobra.Command {
	var party, kindArg string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream active contract set updates until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lending.ParseWatchKind(kindArg)
			if err != nil {
				return err
			}
			session, err := s.session(party)
			if err != nil {
				return err
			}
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return lending.Watch(ctx, session.Client, kind, s.runner.stdout)
		},
	}
	cmd.Flags().StringVar(&party, "party", "", "Acting party id")
	cmd.Flags().StringVar(&kindArg, "type", "all", "What to watch: loans, requests or all")
	_ = cmd.MarkFlagRequired("party")
	return cmd
}
