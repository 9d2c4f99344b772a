package lending

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cantonlend/lending-cli/internal/ledger"
)

type fakeCall struct {
	Kind       string
	Template   ledger.TemplateID
	ContractID string
	Choice     string
	Payload    any
	Argument   any
}

type fakeClient struct {
	calls []fakeCall

	createResult ledger.CreateResult
	createErr    error

	exerciseResults []json.RawMessage
	exerciseErr     error

	queryResult []ledger.ActiveContract
	queryErr    error

	streams   map[ledger.TemplateID]*fakeStream
	streamErr error
}

func (f *fakeClient) Create(_ context.Context, template ledger.TemplateID, payload any) (ledger.CreateResult, error) {
	f.calls = append(f.calls, fakeCall{Kind: "create", Template: template, Payload: payload})
	if f.createErr != nil {
		return ledger.CreateResult{}, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeClient) Exercise(_ context.Context, template ledger.TemplateID, contractID, choice string, argument any) (json.RawMessage, error) {
	f.calls = append(f.calls, fakeCall{Kind: "exercise", Template: template, ContractID: contractID, Choice: choice, Argument: argument})
	if f.exerciseErr != nil {
		return nil, f.exerciseErr
	}
	if len(f.exerciseResults) == 0 {
		return json.RawMessage(`"unexpected"`), nil
	}
	result := f.exerciseResults[0]
	f.exerciseResults = f.exerciseResults[1:]
	return result, nil
}

func (f *fakeClient) Query(_ context.Context, template ledger.TemplateID) ([]ledger.ActiveContract, error) {
	f.calls = append(f.calls, fakeCall{Kind: "query", Template: template})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResult, nil
}

func (f *fakeClient) StreamQueries(_ context.Context, template ledger.TemplateID) (ledger.Stream, error) {
	f.calls = append(f.calls, fakeCall{Kind: "stream", Template: template})
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	stream, ok := f.streams[template]
	if !ok {
		stream = newFakeStream()
	}
	return stream, nil
}

type fakeStream struct {
	mu         sync.Mutex
	events     chan ledger.Event
	closed     bool
	closeCalls int
	err        error
}

func newFakeStream(events ...ledger.Event) *fakeStream {
	s := &fakeStream{events: make(chan ledger.Event, 16)}
	for _, ev := range events {
		s.events <- ev
	}
	return s
}

func (s *fakeStream) Events() <-chan ledger.Event { return s.events }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	if !s.closed {
		s.closed = true
		s.events <- ledger.Event{Kind: ledger.EventClosed}
		close(s.events)
	}
	return nil
}

func (s *fakeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}
