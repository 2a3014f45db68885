package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxElapsed  = 30 * time.Second
)

// HTTPFacility issues HTTP requests on behalf of a plugin, retrying
// transient failures (transport errors and 5xx responses) with
// exponential backoff.
type HTTPFacility struct {
	client     *http.Client
	maxElapsed time.Duration
}

func newHTTPFacility() *HTTPFacility {
	return &HTTPFacility{
		client:     &http.Client{Timeout: defaultHTTPTimeout},
		maxElapsed: defaultMaxElapsed,
	}
}

// Do sends the request, retrying until a non-5xx response arrives or the
// backoff budget runs out. The caller owns the response body.
func (h *HTTPFacility) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response

	operation := func() error {
		r, err := h.client.Do(req)
		if err != nil {
			return err
		}
		if r.StatusCode >= http.StatusInternalServerError {
			r.Body.Close()
			return fmt.Errorf("server error: %s", r.Status)
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(h.newBackoff(), req.Context())
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get fetches a URL.
func (h *HTTPFacility) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return h.Do(req)
}

// PostJSON posts in as a JSON body and decodes the JSON response into out.
// Requests with bodies are rebuilt per attempt so retries stay safe.
func (h *HTTPFacility) PostJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("server error: %s", resp.Status)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(fmt.Errorf("request rejected: %s", resp.Status))
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(h.newBackoff(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

func (h *HTTPFacility) newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = h.maxElapsed
	return b
}
