// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/veilmail/veil/lib/netutil"
)

// clientIDHeader carries the stable per-account client UUID on every
// session request. The service keys client trust on it.
const clientIDHeader = "X-Veil-Client"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the account service (e.g., "https://api.veilmail.example").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is
	// used. Sessions derive their own client from it so that each account
	// carries its own cookie jar over the shared transport.
	HTTPClient *http.Client
	// UserAgent is sent on every request. If empty, "veil" is used.
	UserAgent string
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated handle on the account service.
// It holds the base URL and HTTP transport, shared across Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated account-service client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("relay: BaseURL is required")
	}

	// Validate the URL structure. We store the string form (with trailing
	// slash stripped) and build request URLs by direct concatenation,
	// which avoids double-encoding of path segments that already carry
	// URL escapes (alias IDs pass through url.PathEscape).
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("relay: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "veil"
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Ping checks that the account service is reachable and answering.
// This is an unauthenticated endpoint — useful before prompting the
// user through a sign-in flow that would fail on the first request
// anyway.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.doRequest(ctx, nil, "", http.MethodGet, "/v1/ping", nil); err != nil {
		return fmt.Errorf("relay: ping failed: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request to the account service and returns
// the response body. On 2xx, returns the body. On 4xx/5xx, returns a
// *APIError alongside the raw body.
//
// httpClient may be nil for unauthenticated endpoints, in which case the
// client's own transport is used; sessions pass their jar-carrying
// client. clientID may be empty for unauthenticated endpoints. query may
// be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, httpClient *http.Client, clientID, method, path string, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("relay: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("relay: failed to create request: %w", err)
	}

	request.Header.Set("User-Agent", c.userAgent)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if clientID != "" {
		request.Header.Set(clientIDHeader, clientID)
	}

	if httpClient == nil {
		httpClient = c.httpClient
	}
	response, err := httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("relay: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("relay: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// All service error responses use the same JSON shape.
	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Code == "" {
		// The service returned a non-JSON error, likely from an
		// intermediary. Fail loud with the raw body.
		return nil, fmt.Errorf("relay: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiErr.StatusCode = response.StatusCode

	return responseBody, &apiErr
}
