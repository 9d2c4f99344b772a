package lending

import (
	"context"
	"fmt"
	"io"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
	"github.com/cantonlend/lending-cli/internal/ledger"
	"github.com/cantonlend/lending-cli/internal/model"
	"github.com/cantonlend/lending-cli/internal/out"
)

// WatchKind selects which active contract sets a watch follows.
type WatchKind string

const (
	WatchLoans    WatchKind = "loans"
	WatchRequests WatchKind = "requests"
	WatchAll      WatchKind = "all"
)

func ParseWatchKind(v string) (WatchKind, error) {
	switch WatchKind(v) {
	case WatchLoans, WatchRequests, WatchAll:
		return WatchKind(v), nil
	}
	return "", clierr.New(clierr.CodeUsage, fmt.Sprintf("unknown watch type %q (expected loans, requests or all)", v))
}

// Watch streams active contract set updates until ctx is cancelled or every
// stream ends. Each update prints the full current snapshot, not a delta.
// Returns the first stream error, or nil on a clean shutdown.
func Watch(ctx context.Context, client ledger.Client, kind WatchKind, w io.Writer) error {
	fmt.Fprintf(w, "\nWatching for %s updates... (Press Ctrl+C to stop)\n", kind)

	var streams []ledger.Stream
	var loanEvents, requestEvents <-chan ledger.Event

	closed := false
	closeAll := func() {
		if closed {
			return
		}
		closed = true
		for _, s := range streams {
			_ = s.Close()
		}
	}
	defer closeAll()

	if kind == WatchLoans || kind == WatchAll {
		stream, err := client.StreamQueries(ctx, ledger.TemplateLoan)
		if err != nil {
			return err
		}
		streams = append(streams, stream)
		loanEvents = stream.Events()
	}
	if kind == WatchRequests || kind == WatchAll {
		stream, err := client.StreamQueries(ctx, ledger.TemplateLoanRequest)
		if err != nil {
			return err
		}
		streams = append(streams, stream)
		requestEvents = stream.Events()
	}

	done := ctx.Done()
	for loanEvents != nil || requestEvents != nil {
		select {
		case <-done:
			fmt.Fprintln(w, "\nClosing streams...")
			closeAll()
			done = nil
		case ev, ok := <-loanEvents:
			if !ok {
				loanEvents = nil
				continue
			}
			if handleLoanEvent(w, ev) {
				loanEvents = nil
			}
		case ev, ok := <-requestEvents:
			if !ok {
				requestEvents = nil
				continue
			}
			if handleRequestEvent(w, ev) {
				requestEvents = nil
			}
		}
	}

	for _, s := range streams {
		if err := s.Err(); err != nil {
			return err
		}
	}
	return nil
}

// handleLoanEvent reports one loan stream event; returns true when the
// stream ended.
func handleLoanEvent(w io.Writer, ev ledger.Event) bool {
	switch ev.Kind {
	case ledger.EventLive:
		fmt.Fprintln(w, "[Loans] Stream connected")
	case ledger.EventChange:
		loans, err := decodeContracts[model.Loan](ev.Contracts)
		if err != nil {
			fmt.Fprintf(w, "[Loans] %v\n", err)
			return false
		}
		out.WatchLoans(w, loans)
	case ledger.EventClosed:
		fmt.Fprintln(w, "[Loans] Stream closed")
		return true
	}
	return false
}

func handleRequestEvent(w io.Writer, ev ledger.Event) bool {
	switch ev.Kind {
	case ledger.EventLive:
		fmt.Fprintln(w, "[Requests] Stream connected")
	case ledger.EventChange:
		requests, err := decodeContracts[model.LoanRequest](ev.Contracts)
		if err != nil {
			fmt.Fprintf(w, "[Requests] %v\n", err)
			return false
		}
		out.WatchRequests(w, requests)
	case ledger.EventClosed:
		fmt.Fprintln(w, "[Requests] Stream closed")
		return true
	}
	return false
}
