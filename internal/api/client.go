// Package api is the client for the recorder's personal-data REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mwinther/recollect/internal/audit"
)

const (
	// DefaultPageLimit is the fixed page size for both endpoints.
	DefaultPageLimit = 10

	// maxPages bounds both pagination loops so a misbehaving server
	// (stale page echoes, cursor cycles) cannot spin forever.
	maxPages = 1000

	requestTimeout = 30 * time.Second
)

// Client issues paginated requests against the personal-data API.
type Client struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
	sink    audit.Sink
}

// New creates a Client. The API key may be empty; callers are expected to
// guard sync operations before any request is made.
func New(baseURL, apiKey string, limit int, sink audit.Sink) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		limit:   limit,
		client:  &http.Client{Timeout: requestTimeout},
		sink:    sink,
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// record appends an entry to the audit sink. Sink failures must never abort
// a fetch, so they are reported on stderr and dropped.
func (c *Client) record(kind audit.Kind, summary, detail string) {
	err := c.sink.Record(audit.Entry{
		At:      time.Now(),
		Kind:    kind,
		Summary: summary,
		Detail:  detail,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: %v\n", err)
	}
}

// getJSON performs one GET against u and decodes the body into v.
// The request, its response, and any failure are recorded to the audit sink.
func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	c.record(audit.KindRequest, "GET "+u, "")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		rerr := &RequestError{URL: u, Err: err}
		c.record(audit.KindError, "GET "+u, rerr.Error())
		return rerr
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		rerr := &RequestError{URL: u, Err: err}
		c.record(audit.KindError, "GET "+u, rerr.Error())
		return rerr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &RequestError{URL: u, StatusCode: resp.StatusCode}
		c.record(audit.KindError, "GET "+u, rerr.Error())
		return rerr
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		derr := &DecodeError{URL: u, Err: err}
		c.record(audit.KindError, "GET "+u, derr.Error())
		return derr
	}

	c.record(audit.KindResponse, fmt.Sprintf("GET %s: HTTP %d", u, resp.StatusCode), "")
	return nil
}

// shapeError records and returns a DecodeError for a body that parsed as
// JSON but lacks the expected envelope.
func (c *Client) shapeError(u, msg string) error {
	derr := &DecodeError{URL: u, Err: errors.New(msg)}
	c.record(audit.KindError, "GET "+u, derr.Error())
	return derr
}
