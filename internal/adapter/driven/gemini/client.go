// Package gemini implements the Assistant port against the Gemini
// generateContent REST endpoint with structured JSON output.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

// Defaults used when no option overrides them.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash-preview-05-20"
	DefaultTimeout = 30 * time.Second
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// apiKeyHeader carries the API key so it never appears in request URLs or in
// the *url.Error values built from them.
const apiKeyHeader = "x-goog-api-key"

// Compile-time interface satisfaction check.
var _ driven.Assistant = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests to point at httptest servers.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithModel selects the model used for generateContent calls.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithHTTPClient replaces the default cached HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger used for failure warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client calls the Gemini API. A Client built with an empty API key is
// disabled: every call fails with driven.ErrAssistantDisabled without touching
// the network.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client whose transport is an in-memory httpcache layer,
// so repeated model lookups are answered from cache when the API allows it.
func NewClient(apiKey string, opts ...Option) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		http:    &http.Client{Transport: cacheTransport, Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client has an API key.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string                `json:"responseMimeType"`
	ResponseSchema   driven.ResponseSchema `json:"responseSchema"`
}

// generateRequest is the JSON body sent to models/{model}:generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// generateResponse holds the subset of the response that is inspected.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// apiErrorResponse is the error envelope returned with non-200 statuses.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt with a JSON response schema and returns the first
// candidate's text as raw JSON. Missing candidates, non-200 statuses and text
// that is not valid JSON are all reported as errors.
func (c *Client) Generate(ctx context.Context, prompt string, schema driven.ResponseSchema) (json.RawMessage, error) {
	if !c.Enabled() {
		return nil, driven.ErrAssistantDisabled
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(":generateContent"), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("gemini: read response: %w", err)
	}

	c.logger.Debug("gemini: generate", "model", c.model, "status", resp.StatusCode, "latency", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: no candidates found or incomplete response")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	if !json.Valid([]byte(text)) {
		return nil, errors.New("gemini: candidate text is not valid JSON")
	}

	return json.RawMessage(text), nil
}

// Ping looks up the configured model. It is a GET, so the cache transport can
// answer repeated calls without a round trip.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return driven.ErrAssistantDisabled
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(""), nil)
	if err != nil {
		return fmt.Errorf("gemini: create ping request: %w", err)
	}
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gemini: ping %s: %w", c.model, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return apiError(resp.StatusCode, body)
	}

	return nil
}

// endpoint builds {base}/v1beta/models/{model}{suffix}.
func (c *Client) endpoint(suffix string) string {
	return fmt.Sprintf("%s/v1beta/models/%s%s", c.baseURL, url.PathEscape(c.model), suffix)
}

func apiError(status int, body []byte) error {
	var errResp apiErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("gemini: API error %d: %s: %s", status, errResp.Error.Status, errResp.Error.Message)
	}
	return fmt.Errorf("gemini: API error %d", status)
}
