// internal/dict/client.go
//
// HTTP client for the external word-definition service.
// Responsibilities:
//   - Single bounded lookup attempt per word (no retries).
//   - Distinguish "word exists" / "word does not exist" from transport
//     failure; callers fail closed on the latter.
//
// Protocol: GET <base>/<word> — 200 means the word exists, 404 means it
// does not. Any other status, a transport error, or a timeout is returned
// as an error.

package dict

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single lookup so a round never hangs on the
// dictionary service.
const DefaultTimeout = 3 * time.Second

// Lookup is the dictionary dependency the validator consumes.
// Implementations must be safe for concurrent use.
type Lookup interface {
	// IsValidWord reports whether word exists in the dictionary.
	// The error return is for transport failure only; a definitive
	// "no such word" is (false, nil).
	IsValidWord(ctx context.Context, word string) (bool, error)
}

// Client is a Lookup backed by an HTTP word-definition service.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-lookup deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New constructs a Client for the given base URL, e.g.
// https://api.dictionaryapi.dev/api/v2/entries/en
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// IsValidWord performs one bounded lookup for word.
func (c *Client) IsValidWord(ctx context.Context, word string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.base + "/" + url.PathEscape(strings.ToLower(strings.TrimSpace(word)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("dict: unexpected status %d for %q", res.StatusCode, word)
	}
}
