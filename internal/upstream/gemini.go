package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// GeminiRelay posts {contents} to the generateContent endpoint with the API
// key as a query parameter.
type GeminiRelay struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewGeminiRelay(apiKey, baseURL, model string, httpClient *http.Client) *GeminiRelay {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeminiRelay{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

func (g *GeminiRelay) endpoint() string {
	q := url.Values{}
	q.Set("key", g.apiKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", g.baseURL, url.PathEscape(g.model), q.Encode())
}

func (g *GeminiRelay) Forward(ctx context.Context, contents json.RawMessage) (*Response, error) {
	b, err := json.Marshal(map[string]json.RawMessage{"contents": contents})
	if err != nil {
		return nil, fmt.Errorf("encode upstream body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, g.redact(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return &Response{StatusCode: resp.StatusCode, ContentType: ct, Body: body}, nil
}

// redact strips the API key from transport errors, which embed the request URL.
func (g *GeminiRelay) redact(err error) error {
	if g.apiKey == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(g.apiKey), "REDACTED")
	msg = strings.ReplaceAll(msg, g.apiKey, "REDACTED")
	return fmt.Errorf("upstream request failed: %s", msg)
}
