package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
)

// streamMessage is one websocket frame from the JSON API: a batch of
// created/archived events plus an offset marker once catch-up completes.
type streamMessage struct {
	Events []struct {
		Created  *ActiveContract `json:"created"`
		Archived *struct {
			ContractID string `json:"contractId"`
		} `json:"archived"`
	} `json:"events"`
	Offset json.RawMessage `json:"offset"`
}

type wsStream struct {
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}

	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
	err    error
}

func (c *httpClient) StreamQueries(ctx context.Context, template TemplateID) (Stream, error) {
	dialer := websocket.Dialer{
		// The JSON API authenticates streams through subprotocols.
		Subprotocols: []string{"jwt.token." + c.token, "daml.ws.auth"},
	}
	conn, resp, err := dialer.DialContext(ctx, c.wsEndpoint("v1/stream/query"), nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == 401 || resp.StatusCode == 403) {
			return nil, clierr.New(clierr.CodeAuth, "ledger stream authentication failed")
		}
		return nil, clierr.Wrap(clierr.CodeUnavailable, "open ledger stream", err)
	}
	if err := conn.WriteJSON(map[string]any{"templateIds": []string{string(template)}}); err != nil {
		_ = conn.Close()
		return nil, clierr.Wrap(clierr.CodeUnavailable, "subscribe to ledger stream", err)
	}

	s := &wsStream{
		conn:   conn,
		events: make(chan Event, 8),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

func (s *wsStream) Events() <-chan Event { return s.events }

func (s *wsStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close is idempotent; the reader sees the closed connection and terminates
// the event channel with EventClosed.
func (s *wsStream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
	})
	return nil
}

func (s *wsStream) readLoop() {
	defer func() {
		s.events <- Event{Kind: EventClosed}
		close(s.events)
		close(s.done)
	}()

	// Active set keyed by contract id; order follows first appearance so
	// snapshots render stably.
	byID := make(map[string]ActiveContract)
	order := make([]string, 0)
	live := false

	for {
		var msg streamMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.mu.Lock()
			if !s.closed {
				s.err = clierr.Wrap(clierr.CodeUnavailable, "ledger stream read failed", err)
			}
			s.mu.Unlock()
			return
		}

		changed := false
		for _, ev := range msg.Events {
			if ev.Created != nil {
				if _, ok := byID[ev.Created.ContractID]; !ok {
					order = append(order, ev.Created.ContractID)
				}
				byID[ev.Created.ContractID] = *ev.Created
				changed = true
			}
			if ev.Archived != nil {
				if _, ok := byID[ev.Archived.ContractID]; ok {
					delete(byID, ev.Archived.ContractID)
					order = removeID(order, ev.Archived.ContractID)
					changed = true
				}
			}
		}

		if !live {
			// The offset marker ends initial catch-up; emit the first full
			// snapshot only then.
			if len(msg.Offset) > 0 && string(msg.Offset) != "null" {
				live = true
				s.events <- Event{Kind: EventLive}
				s.events <- Event{Kind: EventChange, Contracts: snapshot(byID, order)}
			}
			continue
		}
		if changed {
			s.events <- Event{Kind: EventChange, Contracts: snapshot(byID, order)}
		}
	}
}

func snapshot(byID map[string]ActiveContract, order []string) []ActiveContract {
	out := make([]ActiveContract, 0, len(order))
	for _, id := range order {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
