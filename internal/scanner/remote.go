package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docingest/internal/model"
	"docingest/internal/upload"
)

// Remote calls an out-of-process scan endpoint with the payload as multipart "file".
type Remote struct {
	url    string
	client *http.Client
}

var _ Scanner = (*Remote)(nil)

// NewRemote builds a client for baseURL+path bounded by timeout.
func NewRemote(baseURL, path string, timeout time.Duration) *Remote {
	return &Remote{
		url: strings.TrimRight(baseURL, "/") + path,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (r *Remote) Scan(ctx context.Context, payload []byte, filename string) (model.Verdict, error) {
	body, ct, err := upload.MultipartBody(filename, payload)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("build scan request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, body)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", ct)

	resp, err := r.client.Do(req)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("call scanner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return model.Verdict{}, fmt.Errorf("scanner returned status %d", resp.StatusCode)
	}

	var v model.Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return model.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	return v, nil
}

// HashOnly reports every payload clean and only fills in its content hash.
// It stands in when no scan endpoint is configured.
type HashOnly struct{}

func (HashOnly) Scan(_ context.Context, payload []byte, _ string) (model.Verdict, error) {
	return model.Verdict{ContentHash: ContentHash(payload)}, nil
}
