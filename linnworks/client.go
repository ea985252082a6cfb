package linnworks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"
)

const (
	maxRetries     = 4
	initialBackoff = 500 * time.Millisecond
)

// Client issues authenticated calls against the account's Linnworks API
// server, retrying rate limits and transient upstream failures
type Client struct {
	httpClient *http.Client
	server     string
	token      string
	userAgent  string
}

func NewClient(server string, token string, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		server:     strings.TrimSuffix(server, "/"),
		token:      token,
		userAgent:  userAgent,
	}
}

// Post calls the endpoint at path with a JSON payload and returns the decoded
// response. Array responses are normalised to {"results": [...]} so callers
// always receive a map.
func (c *Client) Post(path string, payload interface{}) (map[string]interface{}, error) {
	var body []byte

	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(initialBackoff))
	err := retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		var requestErr error
		body, requestErr = c.post(path, payload)
		return requestErr
	})
	if err != nil {
		return nil, err
	}

	return normaliseResponse(body, path)
}

func (c *Client) post(path string, payload interface{}) ([]byte, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request payload: %w", err)
	}

	req, err := http.NewRequest("POST", c.server+path, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// transport failure, worth retrying
		return nil, retry.RetryableError(fmt.Errorf("error executing request: %w", err))
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("error reading response body: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		log.WithFields(log.Fields{"path": path, "status": resp.StatusCode}).Warn("retryable response from Linnworks")
		return nil, retry.RetryableError(&UpstreamError{Status: resp.StatusCode, Path: path, Body: excerpt(responseBody)})
	}

	if resp.StatusCode >= 400 {
		return nil, &UpstreamError{Status: resp.StatusCode, Path: path, Body: excerpt(responseBody)}
	}

	return responseBody, nil
}

// normaliseResponse decodes the response, wrapping top-level arrays in a
// {"results": [...]} map
func normaliseResponse(body []byte, path string) (map[string]interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("error unmarshalling response from %s: %w", path, err)
	}

	switch d := data.(type) {
	case map[string]interface{}:
		return d, nil
	case []interface{}:
		return map[string]interface{}{"results": d}, nil
	default:
		return nil, fmt.Errorf("unexpected response shape from %s", path)
	}
}

func excerpt(body []byte) string {
	const max = 256
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
