// Package relayclient posts a transcript to the relay endpoint.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tanya-chat/internal/types"
)

// ErrBadJSON means the relay answered with a body that is not JSON.
var ErrBadJSON = errors.New("relay reply is not JSON")

type Client struct {
	httpClient *http.Client
	url        string
}

func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}, url: url}
}

// NewWithHTTPClient is used by tests to point at an httptest server.
func NewWithHTTPClient(url string, hc *http.Client) *Client {
	return &Client{httpClient: hc, url: url}
}

// Post sends {contents} and decodes the reply whatever its status; the relay
// reports failures in the body.
func (c *Client) Post(ctx context.Context, contents []types.Content) (*types.ChatResponse, error) {
	b, err := json.Marshal(types.ChatPayload{Contents: contents})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read relay reply: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w (status %d)", ErrBadJSON, resp.StatusCode)
	}
	// Any JSON decodes; a wrong shape surfaces as a reply with no answer.
	var out types.ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w (status %d): %v", ErrBadJSON, resp.StatusCode, err)
	}
	return &out, nil
}
