// Package api is the typed client for the gateway REST API. Every endpoint
// gets an explicit result type parsed at the boundary; transport and backend
// failures are converted into the small error taxonomy in errors.go at the
// call site, never propagated raw.
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

	"cryptopay/internal/client/session"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Manager
}

// New builds a client for the gateway at serverURL (scheme://host, no /api
// suffix). The session manager supplies bearer tokens and is cleared by the
// client whenever the gateway answers 401.
func New(serverURL string, sess *session.Manager) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
	}
}

// do runs one JSON round trip. authed requests fail fast with
// ErrAuthentication when no token is held, so a logout from another view
// cannot lead to a silent retry with stale credentials.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	resp, err := c.send(ctx, method, path, query, body, authed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, authed); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Endpoint: path, Err: err}
	}
	return nil
}

// doRaw is do for non-JSON responses (the PDF report).
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, authed bool) ([]byte, error) {
	resp, err := c.send(ctx, method, path, query, nil, authed)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, authed); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, authed bool) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		tok := c.session.Current().AccessToken
		if tok == "" {
			return nil, ErrAuthentication
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return c.http.Do(req)
}

func (c *Client) checkStatus(resp *http.Response, authed bool) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if authed {
			_ = c.session.Clear()
		}
		return ErrAuthentication
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return "request failed"
}

func pathID(format, id string) string {
	return fmt.Sprintf(format, url.PathEscape(id))
}
