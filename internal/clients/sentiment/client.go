package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var ErrBadResponse = errors.New("sentiment: bad response")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Result is the model's verdict: Level 0 is negative, 1 positive, and
// Intensity lies in [0, 1].
type Result struct {
	Level     int     `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

func (r Result) Label() string {
	if r.Level == 1 {
		return "positive"
	}
	return "negative"
}

type analyzeResponse struct {
	Emotion   json.RawMessage `json:"emotion"`
	Intensity float64         `json:"intensity"`
}

func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emotion/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var raw analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	level, err := parseLevel(raw.Emotion)
	if err != nil {
		return nil, err
	}
	if raw.Intensity < 0 || raw.Intensity > 1 {
		return nil, fmt.Errorf("%w: intensity %v out of range", ErrBadResponse, raw.Intensity)
	}
	return &Result{Level: level, Intensity: raw.Intensity}, nil
}

// The service marshals the class as a string ("0"/"1"); older builds sent
// a bare number.
func parseLevel(raw json.RawMessage) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil || (n != 0 && n != 1) {
		return 0, fmt.Errorf("%w: emotion %q", ErrBadResponse, s)
	}
	return n, nil
}
