// Package token mints bearer tokens for the ledger JSON API sandbox.
// Production deployments authenticate through an IdP; nothing here is meant
// to survive outside development.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
)

// Scope is the audience claim the ledger JSON API expects.
const Scope = "daml_ledger_api"

// TTL is the fixed token lifetime. Callers mint a fresh token per session;
// there is no refresh.
const TTL = time.Hour

var now = time.Now

// Issue signs an HS256 token asserting the parties the holder may act as and
// read as. readAs is always the union of both sets.
func Issue(actAs, readAs []string, secret string) (string, error) {
	if len(actAs) == 0 {
		return "", clierr.New(clierr.CodeUsage, "at least one acting party is required")
	}
	if secret == "" {
		return "", clierr.New(clierr.CodeConfig, "no token signing secret is configured")
	}

	claims := jwt.MapClaims{
		"sub":    actAs[0],
		"scope":  Scope,
		"actAs":  actAs,
		"readAs": union(actAs, readAs),
		"exp":    now().Add(TTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "sign token", err)
	}
	return signed, nil
}

// IssueParty mints a token for a single party that can act as and read as
// that party.
func IssueParty(party, secret string) (string, error) {
	return Issue([]string{party}, []string{party}, secret)
}

func union(actAs, readAs []string) []string {
	out := make([]string, 0, len(actAs)+len(readAs))
	seen := make(map[string]struct{}, len(actAs)+len(readAs))
	for _, p := range actAs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range readAs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
