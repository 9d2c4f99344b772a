package lending

import (
	"context"
	"encoding/json"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/ledger"
	"github.com/cantonlend/lending-cli/internal/model"
)

// QueryLoanRequests returns every LoanRequest visible to the session's party,
// in ledger order.
func QueryLoanRequests(ctx context.Context, client ledger.Client) ([]model.Contract[model.LoanRequest], error) {
	contracts, err := client.Query(ctx, ledger.TemplateLoanRequest)
	if err != nil {
		return nil, err
	}
	return decodeContracts[model.LoanRequest](contracts)
}

// QueryLoans returns every Loan visible to the session's party, in ledger
// order. Status filtering is client-side; see FilterByStatus.
func QueryLoans(ctx context.Context, client ledger.Client) ([]model.Contract[model.Loan], error) {
	contracts, err := client.Query(ctx, ledger.TemplateLoan)
	if err != nil {
		return nil, err
	}
	return decodeContracts[model.Loan](contracts)
}

// QueryAmendments returns every open amendment proposal visible to the
// session's party.
func QueryAmendments(ctx context.Context, client ledger.Client) ([]model.Contract[model.AmendmentProposal], error) {
	contracts, err := client.Query(ctx, ledger.TemplateAmendmentProposal)
	if err != nil {
		return nil, err
	}
	return decodeContracts[model.AmendmentProposal](contracts)
}

// FilterByStatus keeps loans whose status matches exactly, preserving order.
// An unknown status simply yields an empty result.
func FilterByStatus(loans []model.Contract[model.Loan], status string) []model.Contract[model.Loan] {
	filtered := make([]model.Contract[model.Loan], 0, len(loans))
	for _, loan := range loans {
		if loan.Payload.Status == status {
			filtered = append(filtered, loan)
		}
	}
	return filtered
}

func decodeContracts[T any](contracts []ledger.ActiveContract) ([]model.Contract[T], error) {
	decoded := make([]model.Contract[T], 0, len(contracts))
	for _, c := range contracts {
		var payload T
		if err := json.Unmarshal(c.Payload, &payload); err != nil {
			return nil, clierr.Wrap(clierr.CodeInternal, "decode contract "+c.ContractID, err)
		}
		decoded = append(decoded, model.Contract[T]{ContractID: c.ContractID, Payload: payload})
	}
	return decoded, nil
}
