package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/shelf/internal/shelf"
)

// ErrClientNil is returned when a method is called on a nil *Client.
var ErrClientNil = errors.New("client is nil")

// Client talks to the shelfd HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7488"
	defaultUserAgent = "shelf/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided host:port (or URL) value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Ping checks that the daemon is answering.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return ErrClientNil
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// Post stores a book through the daemon.
func (c *Client) Post(ctx context.Context, book shelf.Book) (shelf.BookResource, error) {
	if c == nil {
		return shelf.BookResource{}, ErrClientNil
	}
	var payload shelf.BookResource
	if err := c.do(ctx, http.MethodPost, "/api/books", book, &payload); err != nil {
		return shelf.BookResource{}, err
	}
	return payload, nil
}

// FetchAll retrieves every stored book.
func (c *Client) FetchAll(ctx context.Context) (shelf.Normalized, error) {
	if c == nil {
		return shelf.Normalized{}, ErrClientNil
	}
	return c.fetchNormalized(ctx, "/api/books")
}

// Suggest retrieves the suggestion list.
func (c *Client) Suggest(ctx context.Context) (shelf.Normalized, error) {
	if c == nil {
		return shelf.Normalized{}, ErrClientNil
	}
	return c.fetchNormalized(ctx, "/api/suggestions")
}

func (c *Client) fetchNormalized(ctx context.Context, path string) (shelf.Normalized, error) {
	payload := shelf.NewNormalized()
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return shelf.Normalized{}, err
	}
	if payload.ByID == nil {
		payload.ByID = make(map[int]shelf.BookResource)
	}
	if payload.IDs == nil {
		payload.IDs = []int{}
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse courier url %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
