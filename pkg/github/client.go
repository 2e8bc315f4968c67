// Package github resolves commit author identities from GitHub
// accounts.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/dsimansk/syndesis-rest/pkg/log"
	"github.com/dsimansk/syndesis-rest/pkg/publish"
)

const defaultTimeout = 30 * time.Second

// lowRateThreshold is the remaining-request count below which lookups
// log a warning.
const lowRateThreshold = 50

// Client wraps the GitHub API for author lookups.
type Client struct {
	gh *gh.Client
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at a different API endpoint (GitHub
// Enterprise, test servers).
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the HTTP timeout for API calls.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient supplies a custom HTTP client. Overrides WithTimeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

// NewClient creates a GitHub client. An empty token makes
// unauthenticated calls, which GitHub rate-limits aggressively.
func NewClient(token string, opts ...Option) (*Client, error) {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		timeout := httpClient.Timeout
		httpClient = oauth2.NewClient(ctx, src)
		// oauth2.NewClient only carries over the transport
		httpClient.Timeout = timeout
	}

	client := gh.NewClient(httpClient)
	if o.baseURL != "" {
		parsed, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", o.baseURL, err)
		}
		client.BaseURL = parsed
	}

	return &Client{gh: client}, nil
}

// ResolveAuthor looks up a GitHub account and returns the commit
// author identity to publish with. The display name falls back to the
// login, and a missing public email falls back to the account's
// noreply address.
func (c *Client) ResolveAuthor(ctx context.Context, login string) (publish.Author, error) {
	if login == "" {
		return publish.Author{}, fmt.Errorf("login is empty")
	}

	user, resp, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		return publish.Author{}, fmt.Errorf("failed to fetch user %s: %w", login, err)
	}
	logRateLimit(resp)

	author := publish.Author{
		Name:  user.GetName(),
		Email: user.GetEmail(),
		Login: user.GetLogin(),
	}
	if author.Login == "" {
		author.Login = login
	}
	if author.Name == "" {
		author.Name = author.Login
	}
	if author.Email == "" {
		author.Email = fmt.Sprintf("%s@users.noreply.github.com", author.Login)
	}
	return author, nil
}

func logRateLimit(resp *gh.Response) {
	if resp == nil {
		return
	}
	if rateLimitLow(resp.Rate) {
		log.Warn("github api rate limit is low",
			"remaining", resp.Rate.Remaining,
			"limit", resp.Rate.Limit,
			"reset", resp.Rate.Reset.Time)
		return
	}
	log.Debug("github api rate limit", "remaining", resp.Rate.Remaining)
}

// rateLimitLow reports whether the rate window is close to exhausted.
// A zero Limit means the response carried no rate headers at all, so
// there is nothing to warn about; an exhausted window (Remaining == 0
// with headers present) does warrant the warning.
func rateLimitLow(rate gh.Rate) bool {
	return rate.Limit > 0 && rate.Remaining < lowRateThreshold
}
