package ledger

import (
	"time"

	"github.com/cantonlend/lending-cli/internal/token"
)

// Session is a per-invocation binding of a party's freshly minted token to
// the ledger endpoints. Sessions are not pooled or reused across commands.
type Session struct {
	Party  string
	Client Client
}

// Endpoints configures where a session connects and how its token is signed.
type Endpoints struct {
	HTTPBaseURL string
	WSBaseURL   string
	TokenSecret string
	Timeout     time.Duration
}

// Open mints a token for the party and returns a session bound to it. No
// network call occurs until the caller issues an operation.
func Open(party string, endpoints Endpoints) (*Session, error) {
	tok, err := token.IssueParty(party, endpoints.TokenSecret)
	if err != nil {
		return nil, err
	}
	client := NewClient(Config{
		HTTPBaseURL: endpoints.HTTPBaseURL,
		WSBaseURL:   endpoints.WSBaseURL,
		Token:       tok,
		Timeout:     endpoints.Timeout,
	})
	return &Session{Party: party, Client: client}, nil
}
