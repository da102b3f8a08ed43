package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medical-assistant/internal/platform/apperr"
)

// Client talks to the external diagnosis service.
type Client interface {
	Diagnose(ctx context.Context, req Request) (*Result, error)
	HealthCheck(ctx context.Context) (*Health, error)
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the service at baseURL.
// The timeout is the only deadline this layer enforces.
func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpClient) Diagnose(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Internal("encode diagnosis request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diagnose", bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Internal("build diagnosis request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var result Result
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) HealthCheck(ctx context.Context) (*Health, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health-check", nil)
	if err != nil {
		return nil, apperr.Internal("build health-check request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var health Health
	if err := c.do(httpReq, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.External("diagnosis service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return apperr.External("diagnosis service error",
			fmt.Errorf("%s %s returned %s: %s", req.Method, req.URL.Path, resp.Status, strings.TrimSpace(string(bodyBytes))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.External("malformed diagnosis service response", err)
	}
	return nil
}
