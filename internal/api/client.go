// Package api provides the typed HTTP gateway to the remote school API
// and the reachability boundary.
package api

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

	apperrors "github.com/scholaris-app/scholaris/core/internal/errors"
	"github.com/scholaris-app/scholaris/core/internal/session"
)

// Client is the gateway to the remote API. Every request carries the
// bearer token and tenant scope from the session provider; every failure
// is categorized into the shared error taxonomy so callers never inspect
// status codes themselves.
type Client struct {
	baseURL    string
	session    session.Provider
	httpClient *http.Client
}

// NewClient creates a gateway for one API base URL.
func NewClient(baseURL string, timeout time.Duration, provider session.Provider) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: provider,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// Do executes a raw request and returns the response body. This is the
// replay path for queued mutations, where the payload was captured at
// enqueue time and the caller has no response type.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	token, err := c.session.Token()
	if err != nil {
		return nil, err
	}
	tenant, err := c.session.TenantID()
	if err != nil {
		return nil, err
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalid, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-School-ID", tenant)
	req.Header.Set("Accept", "application/json")
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrNetwork, "failed to read response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}
	return nil, categorize(resp.StatusCode, data)
}

// categorize maps an HTTP status to the gateway error taxonomy.
func categorize(status int, body []byte) error {
	msg := fmt.Sprintf("status %d", status)
	if len(body) > 0 && len(body) <= 512 {
		msg = fmt.Sprintf("status %d: %s", status, body)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.New(apperrors.ErrUnauthorized, msg)
	case status == http.StatusNotFound:
		return apperrors.New(apperrors.ErrNotFound, msg)
	case status >= 400 && status < 500:
		return apperrors.New(apperrors.ErrValidation, msg)
	default:
		return apperrors.New(apperrors.ErrServer, msg)
	}
}

// Get executes a GET request and decodes the JSON response into T.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	data, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apperrors.Wrap(apperrors.ErrDecode, "unexpected response shape for "+path, err)
	}
	return out, nil
}

// Post executes a POST request with a JSON body and decodes the response.
func Post[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	return send[T](ctx, c, http.MethodPost, path, body)
}

// Put executes a PUT request with a JSON body and decodes the response.
func Put[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	return send[T](ctx, c, http.MethodPut, path, body)
}

// Delete executes a DELETE request, discarding any response body.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func send[T any](ctx context.Context, c *Client, method, path string, body interface{}) (T, error) {
	var out T

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return out, apperrors.Wrap(apperrors.ErrInvalid, "failed to encode request body", err)
		}
	}

	data, err := c.Do(ctx, method, path, nil, payload)
	if err != nil {
		return out, err
	}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apperrors.Wrap(apperrors.ErrDecode, "unexpected response shape for "+path, err)
	}
	return out, nil
}
