package ledger

import (
	"testing"
	"time"
)

func TestOpenBindsPartyWithoutNetworkCall(t *testing.T) {
	// Endpoints point nowhere; Open must still succeed because session
	// construction is pure.
	sess, err := Open("alice", Endpoints{
		HTTPBaseURL: "http://127.0.0.1:1/",
		WSBaseURL:   "ws://127.0.0.1:1/",
		TokenSecret: "secret",
		Timeout:     time.Second,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if sess.Party != "alice" {
		t.Fatalf("unexpected party: %s", sess.Party)
	}
	if sess.Client == nil {
		t.Fatal("expected a client on the session")
	}
}

func TestOpenFailsWithoutSigningSecret(t *testing.T) {
	if _, err := Open("alice", Endpoints{TokenSecret: ""}); err == nil {
		t.Fatal("expected error when no signing secret is configured")
	}
}
