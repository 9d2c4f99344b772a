package lending

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/ledger"
	"github.com/cantonlend/lending-cli/internal/model"
)

func newTestService(client *fakeClient) (*Service, *bytes.Buffer, *bytes.Buffer) {
	var out, diag bytes.Buffer
	svc := NewService(client, &out, &diag)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc, &out, &diag
}

func TestCreateLoanRequest(t *testing.T) {
	client := &fakeClient{createResult: ledger.CreateResult{ContractID: "req-001"}}
	svc, out, _ := newTestService(client)

	cid, err := svc.CreateLoanRequest(context.Background(), "Alice", CreateLoanRequestParams{
		Lender:       "Bob",
		Asset:        "USD",
		Principal:    "10000.0",
		InterestRate: "0.05",
		TermDays:     "90",
		RequestDate:  "2026-03-01",
	})
	if err != nil {
		t.Fatalf("CreateLoanRequest: %v", err)
	}
	if cid != "req-001" {
		t.Fatalf("contract id = %q, want req-001", cid)
	}
	if len(client.calls) != 1 || client.calls[0].Template != ledger.TemplateLoanRequest {
		t.Fatalf("unexpected calls: %+v", client.calls)
	}
	payload, ok := client.calls[0].Payload.(model.LoanRequest)
	if !ok {
		t.Fatalf("payload type %T", client.calls[0].Payload)
	}
	if payload.Borrower != "Alice" || payload.Lender != "Bob" || payload.Principal != "10000.0" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if !strings.Contains(out.String(), "Created LoanRequest: req-001") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestAcceptLoanRequestReturnsNewLoanID(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{json.RawMessage(`"loan-001"`)}}
	svc, out, _ := newTestService(client)

	loanID, err := svc.AcceptLoanRequest(context.Background(), "req-001")
	if err != nil {
		t.Fatalf("AcceptLoanRequest: %v", err)
	}
	if loanID != "loan-001" {
		t.Fatalf("loan id = %q, want loan-001", loanID)
	}
	call := client.calls[0]
	if call.Template != ledger.TemplateLoanRequest || call.ContractID != "req-001" || call.Choice != "Accept" {
		t.Fatalf("unexpected call: %+v", call)
	}
	if !strings.Contains(out.String(), "created Loan: loan-001") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestLifecycleThreadsContractIDs(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{
		json.RawMessage(`"loan-001"`),
		json.RawMessage(`"loan-002"`),
		json.RawMessage(`"loan-003"`),
	}}
	svc, _, _ := newTestService(client)
	ctx := context.Background()

	loanID, err := svc.AcceptLoanRequest(ctx, "req-001")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	fundedID, err := svc.FundLoan(ctx, loanID)
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	repaidID, err := svc.RepayLoan(ctx, fundedID)
	if err != nil {
		t.Fatalf("repay: %v", err)
	}
	if err := svc.CloseLoan(ctx, repaidID); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Each transition must exercise the id returned by the previous one.
	wantIDs := []string{"req-001", "loan-001", "loan-002", "loan-003"}
	for i, call := range client.calls {
		if call.ContractID != wantIDs[i] {
			t.Fatalf("call %d contract id = %q, want %q", i, call.ContractID, wantIDs[i])
		}
	}
}

func TestMakePaymentPassesAmount(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{json.RawMessage(`"loan-002"`)}}
	svc, out, _ := newTestService(client)

	if _, err := svc.MakePayment(context.Background(), "loan-001", "2500.0"); err != nil {
		t.Fatalf("MakePayment: %v", err)
	}
	call := client.calls[0]
	if call.Choice != "MakePayment" {
		t.Fatalf("choice = %q", call.Choice)
	}
	arg, ok := call.Argument.(map[string]string)
	if !ok || arg["amount"] != "2500.0" {
		t.Fatalf("argument = %#v", call.Argument)
	}
	if !strings.Contains(out.String(), "Payment of 2500.0 recorded") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestDefaultLoanDateDefaultsToToday(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{json.RawMessage(`"loan-002"`)}}
	svc, _, _ := newTestService(client)

	if _, err := svc.DefaultLoan(context.Background(), "loan-001", ""); err != nil {
		t.Fatalf("DefaultLoan: %v", err)
	}
	arg := client.calls[0].Argument.(map[string]string)
	if arg["currentDate"] != "2026-03-15" {
		t.Fatalf("currentDate = %q, want 2026-03-15", arg["currentDate"])
	}
}

func TestDefaultLoanExplicitDate(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{json.RawMessage(`"loan-002"`)}}
	svc, _, _ := newTestService(client)

	if _, err := svc.DefaultLoan(context.Background(), "loan-001", "2026-06-30"); err != nil {
		t.Fatalf("DefaultLoan: %v", err)
	}
	arg := client.calls[0].Argument.(map[string]string)
	if arg["currentDate"] != "2026-06-30" {
		t.Fatalf("currentDate = %q, want 2026-06-30", arg["currentDate"])
	}
}

func TestBalanceChoices(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{
		json.RawMessage(`"10500.0"`),
		json.RawMessage(`"9000.0"`),
	}}
	svc, _, _ := newTestService(client)
	ctx := context.Background()

	due, err := svc.AmountDue(ctx, "loan-001")
	if err != nil {
		t.Fatalf("AmountDue: %v", err)
	}
	remaining, err := svc.RemainingBalance(ctx, "loan-001")
	if err != nil {
		t.Fatalf("RemainingBalance: %v", err)
	}
	if due != "10500.0" || remaining != "9000.0" {
		t.Fatalf("due = %q remaining = %q", due, remaining)
	}
	if client.calls[0].Choice != "GetAmountDue" || client.calls[1].Choice != "GetRemainingBalance" {
		t.Fatalf("choices: %+v", client.calls)
	}
}

func TestProposeAmendmentOptionalFields(t *testing.T) {
	client := &fakeClient{createResult: ledger.CreateResult{ContractID: "amend-001"}}
	svc, _, _ := newTestService(client)

	principal := "12000.0"
	_, err := svc.ProposeAmendment(context.Background(), AmendmentParams{
		OriginalLoanID:    "loan-002",
		Proposer:          "Alice",
		Counterparty:      "Bob",
		Borrower:          "Alice",
		Lender:            "Bob",
		Asset:             "USD",
		OriginalPrincipal: "10000.0",
		OriginalInterest:  "500.0",
		OriginalDueDate:   "2026-06-01",
		StartDate:         "2026-03-01",
		NewPrincipal:      &principal,
	})
	if err != nil {
		t.Fatalf("ProposeAmendment: %v", err)
	}
	raw, err := json.Marshal(client.calls[0].Payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"newPrincipal":"12000.0"`) {
		t.Fatalf("proposed principal missing: %s", body)
	}
	// Unset overrides must be present as explicit nulls, not omitted.
	if !strings.Contains(body, `"newInterestRate":null`) || !strings.Contains(body, `"newTermDays":null`) {
		t.Fatalf("explicit nulls missing: %s", body)
	}
}

func TestFailureLogsDiagnosticAndReturnsErrorUnchanged(t *testing.T) {
	rejection := clierr.New(clierr.CodeRejected, "Loan is not in Funded status")
	client := &fakeClient{exerciseErr: rejection}
	svc, _, diag := newTestService(client)

	_, err := svc.FundLoan(context.Background(), "loan-001")
	if !errors.Is(err, rejection) {
		t.Fatalf("error = %v, want the rejection unchanged", err)
	}
	if !strings.Contains(diag.String(), "Failed to fund loan: Loan is not in Funded status") {
		t.Fatalf("diagnostic = %q", diag.String())
	}
}

func TestContractIDResultRejectsNonString(t *testing.T) {
	client := &fakeClient{exerciseResults: []json.RawMessage{json.RawMessage(`{"unexpected":true}`)}}
	svc, _, diag := newTestService(client)

	_, err := svc.AcceptLoanRequest(context.Background(), "req-001")
	cerr, ok := clierr.As(err)
	if !ok || cerr.Code != clierr.CodeInternal {
		t.Fatalf("error = %v, want internal error", err)
	}
	if diag.Len() == 0 {
		t.Fatal("expected a diagnostic line")
	}
}
