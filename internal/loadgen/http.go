package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/mentormatch/internal/domain/model"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// httpClient wraps http.Client with the run's timeout and base URL.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// get performs a GET and returns status and body.
func (c *httpClient) get(ctx context.Context, path string, query url.Values) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

// suggestions fetches and decodes GET /suggestions for one seed.
func (c *httpClient) suggestions(ctx context.Context, seed model.Profile, limit int) (suggestionsResponse, error) {
	q := url.Values{}
	q.Set("user_id", seed.ID)
	q.Set("role", string(seed.Role))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out suggestionsResponse
	status, body, err := c.get(ctx, "/suggestions", q)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, fmt.Errorf("suggestions for %s: status %d", seed.ID, status)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode suggestions for %s: %w", seed.ID, err)
	}
	return out, nil
}
