package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	clierr "github.com/cantonlend/lending-cli/internal/errors"
)

// Config binds a session's token to the ledger endpoints.
type Config struct {
	HTTPBaseURL string
	WSBaseURL   string
	Token       string
	Timeout     time.Duration
}

type httpClient struct {
	http      *http.Client
	baseURL   string
	wsBaseURL string
	token     string
	userAgent string
}

// NewClient builds a JSON API client. Pure construction; no network call
// happens until an operation is issued.
func NewClient(cfg Config) Client {
	return &httpClient{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.HTTPBaseURL,
		wsBaseURL: cfg.WSBaseURL,
		token:     cfg.Token,
		userAgent: "lending-cli/1.0",
	}
}

// apiResponse is the JSON API envelope: result on success, errors on
// rejection.
type apiResponse struct {
	Status int             `json:"status"`
	Result json.RawMessage `json:"result"`
	Errors []string        `json:"errors"`
}

func (c *httpClient) Create(ctx context.Context, template TemplateID, payload any) (CreateResult, error) {
	body := map[string]any{"templateId": string(template), "payload": payload}
	var result CreateResult
	if err := c.post(ctx, "v1/create", body, &result); err != nil {
		return CreateResult{}, err
	}
	if result.ContractID == "" {
		return CreateResult{}, clierr.New(clierr.CodeInternal, "ledger returned no contract id for create")
	}
	return result, nil
}

func (c *httpClient) Exercise(ctx context.Context, template TemplateID, contractID, choice string, argument any) (json.RawMessage, error) {
	if argument == nil {
		argument = map[string]any{}
	}
	body := map[string]any{
		"templateId": string(template),
		"contractId": contractID,
		"choice":     choice,
		"argument":   argument,
	}
	var result struct {
		ExerciseResult json.RawMessage `json:"exerciseResult"`
	}
	if err := c.post(ctx, "v1/exercise", body, &result); err != nil {
		return nil, err
	}
	return result.ExerciseResult, nil
}

func (c *httpClient) Query(ctx context.Context, template TemplateID) ([]ActiveContract, error) {
	body := map[string]any{"templateIds": []string{string(template)}}
	var result []ActiveContract
	if err := c.post(ctx, "v1/query", body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, result any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(buf))
	if err != nil {
		return clierr.Wrap(clierr.CodeInternal, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return mapNetError(err)
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "read ledger response", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return clierr.New(clierr.CodeAuth, "ledger authentication failed")
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return clierr.New(clierr.CodeUnavailable, fmt.Sprintf("ledger unavailable (status %d)", resp.StatusCode))
	}

	var api apiResponse
	if err := json.Unmarshal(respBody, &api); err != nil {
		return clierr.Wrap(clierr.CodeUnavailable, "decode ledger response", err)
	}
	// Business-rule rejections come back as 4xx with an errors list; the
	// ledger's own message is surfaced verbatim, not reclassified.
	if len(api.Errors) > 0 {
		return clierr.New(clierr.CodeRejected, strings.Join(api.Errors, "; "))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return clierr.New(clierr.CodeRejected, fmt.Sprintf("ledger rejected command (status %d)", resp.StatusCode))
	}

	if result == nil || api.Result == nil {
		return nil
	}
	if err := json.Unmarshal(api.Result, result); err != nil {
		return clierr.Wrap(clierr.CodeInternal, "decode ledger result", err)
	}
	return nil
}

func (c *httpClient) endpoint(path string) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/" + path
}

func (c *httpClient) wsEndpoint(path string) string {
	return strings.TrimSuffix(c.wsBaseURL, "/") + "/" + path
}

func mapNetError(err error) error {
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return clierr.Wrap(clierr.CodeUnavailable, "ledger request timed out", err)
	}
	return clierr.Wrap(clierr.CodeUnavailable, "ledger request failed", err)
}
