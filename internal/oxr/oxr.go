// Package oxr is a client for the openexchangerates.org latest-rates API.
package oxr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// DefaultAPIURL is the production endpoint for latest rates.
const DefaultAPIURL = "https://openexchangerates.org/api/latest.json"

// Rates is the provider's answer: every requested symbol mapped to its
// exchange rate against base, as of timestamp.
type Rates struct {
	Base      string             `json:"base"`
	Timestamp int64              `json:"timestamp"`
	Rates     map[string]float64 `json:"rates"`
}

// Provider fetches the latest exchange rates. base and symbols may be
// empty, in which case the provider applies its defaults.
type Provider interface {
	Latest(ctx context.Context, base string, symbols []string) (*Rates, error)
}

// StatusError reports a non-200 answer from the rates API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rates api returned status %d", e.Code)
}

// DecodeError reports an unusable response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding rates response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Client struct {
	apiURL string
	appID  string
	client *http.Client
	log    *zap.Logger
}

func NewClient(apiURL, appID string, logger *zap.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		appID:  appID,
		client: &http.Client{},
		log:    logger,
	}
}

func (c *Client) Latest(ctx context.Context, base string, symbols []string) (*Rates, error) {
	payload := url.Values{}
	payload.Set("app_id", c.appID)
	if base != "" {
		payload.Set("base", base)
	}
	if len(symbols) > 0 {
		payload.Set("symbols", strings.Join(symbols, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+payload.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building rates request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching rates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.log.Error("rates api request failed", zap.Int("status", res.StatusCode))
		return nil, &StatusError{Code: res.StatusCode}
	}

	var rates Rates
	if err := json.NewDecoder(res.Body).Decode(&rates); err != nil {
		c.log.Error("rates api response unreadable", zap.Error(err))
		return nil, &DecodeError{Err: err}
	}
	if rates.Rates == nil {
		c.log.Error("rates api response missing rates")
		return nil, &DecodeError{Err: fmt.Errorf("no rates in response")}
	}

	return &rates, nil
}
