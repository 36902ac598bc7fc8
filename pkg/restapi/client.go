package restapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/datazip-inc/greenhouse-tap/utils"
	"github.com/datazip-inc/greenhouse-tap/utils/logger"
)

// Page is one decoded response together with the cursor for the next one
type Page struct {
	Records []map[string]any
	Next    *url.URL
}

// ParamsFunc builds the query of a page request from the previous page's cursor
type ParamsFunc func(next *url.URL) url.Values

// Client issues authorized GET requests against a JSON REST API, one at a time
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	auth       Authenticator
	paginator  Paginator
	maxRetries int
	retryDelay time.Duration
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithPaginator(paginator Paginator) Option {
	return func(c *Client) {
		c.paginator = paginator
	}
}

// WithMaxRetries bounds the attempts made for a page answering 429 or 5xx
func WithMaxRetries(maxRetries int) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = delay
	}
}

func NewClient(baseURL string, auth Authenticator, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url[%s]: %s", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url[%s]: scheme and host required", baseURL)
	}
	if auth == nil {
		return nil, fmt.Errorf("authenticator not provided")
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
		auth:       auth,
		paginator:  LinkHeaderPaginator{},
		maxRetries: constants.DefaultMaxRetries,
		retryDelay: constants.DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// URL joins the path to the base url and attaches the query
func (c *Client) URL(path string, params url.Values) *url.URL {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(path, "/")
	u.RawQuery = params.Encode()

	return &u
}

// Get fetches one page, retrying 429 and 5xx responses with backoff
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Page, error) {
	target := c.URL(path, params)

	var page *Page
	err := utils.RetryOnBackoff(ctx, c.maxRetries, c.retryDelay, func() error {
		var err error
		page, err = c.do(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// Paginate requests path page after page until the paginator finds no next
// page, handing each page's records to fn
func (c *Client) Paginate(ctx context.Context, path string, params ParamsFunc, fn func(records []map[string]any) error) error {
	var next *url.URL
	seen := map[string]struct{}{}

	for {
		page, err := c.Get(ctx, path, params(next))
		if err != nil {
			return err
		}

		if err := fn(page.Records); err != nil {
			return err
		}

		if page.Next == nil {
			return nil
		}
		if _, looped := seen[page.Next.String()]; looped {
			return fmt.Errorf("pagination loop detected at %s", page.Next.Redacted())
		}
		seen[page.Next.String()] = struct{}{}
		next = page.Next
	}
}

func (c *Client) do(ctx context.Context, target *url.URL) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %s", constants.ErrNonRetryable, err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.auth.Authenticate(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrNonRetryable, err)
	}

	logger.Debugf("GET %s", target.Redacted())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("GET %s failed: %s", target.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: target.Redacted(), Body: strings.TrimSpace(string(body))}
		if statusErr.Retryable() {
			return nil, statusErr
		}
		return nil, fmt.Errorf("%w: %w", constants.ErrNonRetryable, statusErr)
	}

	records, err := ParseRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %s", constants.ErrNonRetryable, target.Redacted(), err)
	}

	return &Page{
		Records: records,
		Next:    c.paginator.GetNext(resp),
	}, nil
}
