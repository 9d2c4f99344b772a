package policy

import "testing"

func TestCheckCommandAllowed(t *testing.T) {
	if err := CheckCommandAllowed(nil, "list-loans"); err != nil {
		t.Fatalf("unexpected error with empty allowlist: %v", err)
	}
	if err := CheckCommandAllowed([]string{"list-loans"}, "list-loans"); err != nil {
		t.Fatalf("expected command to be allowed: %v", err)
	}
	if err := CheckCommandAllowed([]string{"List-Loans "}, "list-loans"); err != nil {
		t.Fatalf("expected normalized match: %v", err)
	}
	if err := CheckCommandAllowed([]string{"list-requests"}, "fund"); err == nil {
		t.Fatal("expected command to be blocked")
	}
}
