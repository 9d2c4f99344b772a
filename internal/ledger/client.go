// Package ledger speaks the DAML-style JSON API of the ledger. It exposes the
// minimal capability set the orchestration layer needs so commands and tests
// can swap a fake client behind one boundary.
package ledger

import (
	"context"
	"encoding/json"
)

// TemplateID names a contract template as module:entity, the form the JSON
// API accepts.
type TemplateID string

const (
	TemplateLoanRequest       TemplateID = "Lending.LoanRequest:LoanRequest"
	TemplateLoan              TemplateID = "Lending.Loan:Loan"
	TemplateAmendmentProposal TemplateID = "Lending.LoanAmendment:LoanAmendmentProposal"
)

// ActiveContract is a raw active contract as returned by the ledger; payloads
// stay undecoded until a caller knows the template.
type ActiveContract struct {
	ContractID string          `json:"contractId"`
	Payload    json.RawMessage `json:"payload"`
}

// CreateResult is the outcome of a create call.
type CreateResult struct {
	ContractID string          `json:"contractId"`
	Payload    json.RawMessage `json:"payload"`
}

// Client is the capability surface this CLI needs from a ledger.
type Client interface {
	// Create submits a create command and returns the new contract.
	Create(ctx context.Context, template TemplateID, payload any) (CreateResult, error)
	// Exercise invokes a choice on a contract and returns the choice's raw
	// exercise result.
	Exercise(ctx context.Context, template TemplateID, contractID, choice string, argument any) (json.RawMessage, error)
	// Query returns all active contracts of the template visible to the
	// session's party.
	Query(ctx context.Context, template TemplateID) ([]ActiveContract, error)
	// StreamQueries opens a live subscription over all visible contracts of
	// the template.
	StreamQueries(ctx context.Context, template TemplateID) (Stream, error)
}

type EventKind int

const (
	// EventLive signals that initial catch-up is complete.
	EventLive EventKind = iota
	// EventChange carries the full current active set, not a diff.
	EventChange
	// EventClosed is the final event on every stream.
	EventClosed
)

type Event struct {
	Kind      EventKind
	Contracts []ActiveContract
}

// Stream is a live subscription. Events terminates with a single EventClosed;
// Close is safe to call more than once. Err reports the read failure that
// ended the stream, if any.
type Stream interface {
	Events() <-chan Event
	Close() error
	Err() error
}
