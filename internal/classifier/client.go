package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docingest/internal/model"
	"docingest/internal/upload"
)

// ErrMalformedResponse is returned when the classifier body does not match the expected shape.
var ErrMalformedResponse = errors.New("malformed classifier response")

// Client posts the payload as multipart "file" to the classifier endpoint and parses its
// {"sensitive_info": [{type, value, start, end}]} body.
type Client struct {
	url    string
	client *http.Client
}

var _ Classifier = (*Client)(nil)

// NewClient builds a client for baseURL+path. The per-call bound is applied by Adapter.
func NewClient(baseURL, path string) *Client {
	return &Client{
		url:    strings.TrimRight(baseURL, "/") + path,
		client: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (c *Client) Classify(ctx context.Context, payload []byte, filename string) ([]model.Span, error) {
	body, ct, err := upload.MultipartBody(filename, payload)
	if err != nil {
		return nil, fmt.Errorf("build classifier request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", ct)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
	return ParseResponse(raw)
}

type rawSpan struct {
	Type  *string `json:"type"`
	Value *string `json:"value"`
	Start *int    `json:"start"`
	End   *int    `json:"end"`
}

// ParseResponse decodes a classifier body. Every span must carry type, value and integer
// start/end, and the sensitive_info array itself must be present.
func ParseResponse(raw []byte) ([]model.Span, error) {
	var body struct {
		SensitiveInfo *[]rawSpan `json:"sensitive_info"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.SensitiveInfo == nil {
		return nil, fmt.Errorf("%w: missing sensitive_info", ErrMalformedResponse)
	}

	spans := make([]model.Span, 0, len(*body.SensitiveInfo))
	for i, s := range *body.SensitiveInfo {
		if s.Type == nil || s.Value == nil || s.Start == nil || s.End == nil {
			return nil, fmt.Errorf("%w: span %d is incomplete", ErrMalformedResponse, i)
		}
		spans = append(spans, model.Span{Type: *s.Type, Value: *s.Value, Start: *s.Start, End: *s.End})
	}
	return spans, nil
}
