package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/msalah0e/subtick/internal/preset"
)

// DefaultBaseURL is the public YouTube Data API host.
const DefaultBaseURL = "https://youtube.googleapis.com"

// ErrHidden is returned for channels that hide their subscriber count.
var ErrHidden = errors.New("subscriber count is hidden")

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 4 << 10

// StatusError is a non-success HTTP response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error getting subscriber count: %d %s: %s",
		e.Code, http.StatusText(e.Code), e.Body)
}

type channelsResponse struct {
	Items []struct {
		Statistics struct {
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Client queries the channels endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client for baseURL (DefaultBaseURL when empty) whose
// requests give up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Fetch returns the current subscriber count of cred.ResourceID using
// cred.Secret as the API key.
func (c *Client) Fetch(ctx context.Context, cred preset.Credential) (uint32, error) {
	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", cred.ResourceID)
	q.Set("key", cred.Secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/youtube/v3/channels?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to request subscriber count: %w", redact(err, cred.Secret))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload channelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode subscriber count: %w", err)
	}
	if len(payload.Items) == 0 {
		return 0, fmt.Errorf("channel %q not found", cred.ResourceID)
	}

	stats := payload.Items[0].Statistics
	if stats.HiddenSubscriberCount {
		return 0, ErrHidden
	}
	n, err := strconv.ParseUint(stats.SubscriberCount, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse subscriber count %q: %w", stats.SubscriberCount, err)
	}
	return uint32(n), nil
}

// redact keeps the API key out of transport errors, which quote the URL.
func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		clean := *uerr
		clean.URL = strings.ReplaceAll(uerr.URL, url.QueryEscape(secret), "REDACTED")
		return &clean
	}
	return err
}
