package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cantonlend/lending-cli/internal/version"
)

func TestTrimRootPath(t *testing.T) {
	if got := trimRootPath("lending amend propose"); got != "amend propose" {
		t.Fatalf("unexpected trim result: %s", got)
	}
}

func TestRunnerVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	if code := r.Run([]string{"version"}); code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), version.CLIVersion) {
		t.Fatalf("version missing from output: %s", stdout.String())
	}
}

func TestRunnerSchema(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	if code := r.Run([]string{"schema", "list-loans"}); code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
	var described map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &described); err != nil {
		t.Fatalf("schema output is not JSON: %v output=%s", err, stdout.String())
	}
	raw := stdout.String()
	if !strings.Contains(raw, `"party"`) || !strings.Contains(raw, `"status"`) {
		t.Fatalf("schema missing flags: %s", raw)
	}
}

func TestRunnerUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	if code := r.Run([]string{"liquidate"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Error:") {
		t.Fatalf("missing error line: %s", stderr.String())
	}
}

func TestRunnerMissingRequiredFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	// Rejected by the flag layer; no ledger endpoint is ever contacted.
	if code := r.Run([]string{"accept", "--lender", "Bob"}); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "contract") {
		t.Fatalf("expected missing-flag message, got: %s", stderr.String())
	}
}

func TestRunnerEnableCommandsBlocks(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	code := r.Run([]string{"list-loans", "--party", "Alice", "--enable-commands", "version"})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "blocked") {
		t.Fatalf("expected policy message, got: %s", stderr.String())
	}
}

func TestRunnerEnableCommandsAllows(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunnerWithWriters(&stdout, &stderr)
	if code := r.Run([]string{"version", "--enable-commands", "version"}); code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%s", code, stderr.String())
	}
}

func TestIsLikelyUsageError(t *testing.T) {
	cases := map[string]bool{
		"unknown flag: --foo":          true,
		"required flag(s) \"contract\"": true,
		"ledger unavailable":           false,
	}
	for msg, want := range cases {
		if got := isLikelyUsageError(errString(msg)); got != want {
			t.Fatalf("isLikelyUsageError(%q) = %v, want %v", msg, got, want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
