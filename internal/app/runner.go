// Package app wires the CLI surface. Each command opens a fresh session for
// the acting party, performs its ledger calls, and reports; the runner is the
// single recovery boundary.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cantonlend/lending-cli/internal/config"
	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/ledger"
	"github.com/cantonlend/lending-cli/internal/lending"
	"github.com/cantonlend/lending-cli/internal/out"
	"github.com/cantonlend/lending-cli/internal/policy"
	"github.com/cantonlend/lending-cli/internal/schema"
	"github.com/cantonlend/lending-cli/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner   *Runner
	flags    config.GlobalFlags
	settings config.Settings
	root     *cobra.Command

	openSession func(party string, endpoints ledger.Endpoints) (*ledger.Session, error)
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, openSession: ledger.Open}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	if err == nil {
		return 0
	}

	fmt.Fprintf(r.stderr, "Error: %v\n", err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Bilateral lending workflow CLI for a DAML ledger",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "load configuration", err)
			}
			s.settings = settings

			path := trimRootPath(cmd.CommandPath())
			return policy.CheckCommandAllowed(settings.EnableCommands, path)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON instead of text reports")
	cmd.PersistentFlags().StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Ledger request timeout")
	cmd.PersistentFlags().StringVar(&s.flags.LedgerURL, "ledger-url", "", "Ledger JSON API base URL")
	cmd.PersistentFlags().StringVar(&s.flags.WSURL, "ws-url", "", "Ledger websocket base URL")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newRequestCommand())
	cmd.AddCommand(s.newAcceptCommand())
	cmd.AddCommand(s.newRejectCommand())
	cmd.AddCommand(s.newFundCommand())
	cmd.AddCommand(s.newRepayCommand())
	cmd.AddCommand(s.newPayCommand())
	cmd.AddCommand(s.newDefaultCommand())
	cmd.AddCommand(s.newCloseCommand())
	cmd.AddCommand(s.newBalanceCommand())
	cmd.AddCommand(s.newListRequestsCommand())
	cmd.AddCommand(s.newListLoansCommand())
	cmd.AddCommand(s.newAmendCommand())
	cmd.AddCommand(s.newWatchCommand())
	cmd.AddCommand(s.newDemoCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// session opens a per-invocation session for the acting party.
func (s *runtimeState) session(party string) (*ledger.Session, error) {
	return s.openSession(party, ledger.Endpoints{
		HTTPBaseURL: s.settings.HTTPBaseURL,
		WSBaseURL:   s.settings.WSBaseURL,
		TokenSecret: s.settings.TokenSecret,
		Timeout:     s.settings.Timeout,
	})
}

func (s *runtimeState) service(session *ledger.Session) *lending.Service {
	return lending.NewService(session.Client, s.runner.stdout, s.runner.stderr)
}

func (s *runtimeState) opContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.settings.Timeout)
}

func (s *runtimeState) jsonOutput() bool {
	return s.settings.OutputMode == "json"
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = strings.Join(args, " ")
			}
			described, err := schema.Describe(s.root, path)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "describe command", err)
			}
			return out.JSON(s.runner.stdout, described)
		},
	}
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
