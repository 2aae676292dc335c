// Package relay defines the narrow contract to the hosted text-generation
// model: instruction text in, raw text out, bounded timeout. The core assumes
// nothing about the provider behind the relay.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chessmind/internal/core"
)

const DefaultTimeout = 30 * time.Second

// Request is the outbound decision payload.
type Request struct {
	Instruction string  `json:"instruction"`
	Temperature float64 `json:"temperature"`
	Task        string  `json:"task"`
	Position    string  `json:"position"`
	UserMessage string  `json:"userMessage,omitempty"`
}

// Response carries the raw generated text or a relay-side error.
type Response struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Client is the boundary the decision core talks through.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// HTTPClient posts requests to a relay endpoint as JSON. All failures,
// including the client timeout, surface as core.ErrTransport so the adapter's
// retry policy treats them uniformly.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: encode request: %v", core.ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: read response: %v", core.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("%w: relay returned status %d", core.ErrTransport, resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Response{}, fmt.Errorf("%w: decode response: %v", core.ErrTransport, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unspecified relay error"
		}
		return Response{}, fmt.Errorf("%w: %s", core.ErrTransport, msg)
	}
	return out, nil
}
