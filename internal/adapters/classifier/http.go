package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
	"github.com/google/uuid"
)

// Endpoint paths on the classification service.
const (
	ClassifyPath  = "/api/swing/classify"
	LastSwingPath = "/api/last-swing"
)

const (
	defaultTimeout  = 5 * time.Second
	maxErrorBody    = 4 << 10
	maxResponseBody = 1 << 20
)

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// HTTPClient is the JSON/HTTP Classifier.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify posts a window to the classify endpoint.
func (c *HTTPClient) Classify(ctx context.Context, req model.SwingRequest) (model.SwingResponse, error) {
	const op = "classify"
	body, err := json.Marshal(req)
	if err != nil {
		return model.SwingResponse{}, fmt.Errorf("classifier %s: encode request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ClassifyPath, bytes.NewReader(body))
	if err != nil {
		return model.SwingResponse{}, fmt.Errorf("classifier %s: build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(op, httpReq)
}

// LastSwing fetches the latest result for playerID and sessionID.
func (c *HTTPClient) LastSwing(ctx context.Context, playerID, sessionID string) (model.SwingResponse, error) {
	const op = "last-swing"
	u, err := url.Parse(c.baseURL + LastSwingPath)
	if err != nil {
		return model.SwingResponse{}, fmt.Errorf("classifier %s: parse url: %w", op, err)
	}
	q := u.Query()
	q.Set("player_id", playerID)
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.SwingResponse{}, fmt.Errorf("classifier %s: build request: %w", op, err)
	}
	return c.do(op, httpReq)
}

func (c *HTTPClient) do(op string, req *http.Request) (model.SwingResponse, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.SwingResponse{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && op == "last-swing" {
		_, _ = io.Copy(io.Discard, resp.Body)
		return model.SwingResponse{}, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return model.SwingResponse{}, &ServerError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return model.SwingResponse{}, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	var out model.SwingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return model.SwingResponse{}, &ServerError{
			Op:     op,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return out, nil
}
