// Package remote implements the catalog.Store boundary over the
// document store's HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disenocorptpc-dot/wonderwoods/internal/catalog"
	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
)

// Client talks to a wonderwoods store server. It signs in lazily and
// transparently refreshes its session when a token expires.
type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a client for the server at baseURL. The access key
// may be empty when the server runs with open access.
func NewClient(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessKey:  accessKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Init opens a session and creates the aggregate if absent.
func (c *Client) Init(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/catalog", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("initializing catalog: %s", responseError(resp))
	}
	return nil
}

// Catalog fetches the aggregate document and its revision.
func (c *Client) Catalog(ctx context.Context) (*model.Catalog, int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/catalog", nil, "")
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("fetching catalog: %s", responseError(resp))
	}

	var doc model.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("decoding catalog: %w", err)
	}

	revision, err := strconv.ParseInt(strings.Trim(resp.Header.Get("ETag"), `"`), 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing catalog revision: %w", err)
	}
	return &doc, revision, nil
}

// AppendItem appends one item with union semantics.
func (c *Client) AppendItem(ctx context.Context, item model.Item) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/catalog/items", item, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("appending item: %s", responseError(resp))
	}
	return nil
}

// ReplaceItems overwrites the item list, conditionally when revision
// is positive. Returns the new revision.
func (c *Client) ReplaceItems(ctx context.Context, items []model.Item, revision int64) (int64, error) {
	ifMatch := ""
	if revision > 0 {
		ifMatch = fmt.Sprintf("%q", strconv.FormatInt(revision, 10))
	}

	body := struct {
		Items []model.Item `json:"items"`
	}{Items: items}

	resp, err := c.do(ctx, http.MethodPut, "/api/catalog/items", body, ifMatch)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusPreconditionFailed:
		return 0, fmt.Errorf("replacing items: %w", catalog.ErrConflict)
	default:
		return 0, fmt.Errorf("replacing items: %s", responseError(resp))
	}

	newRev, err := strconv.ParseInt(strings.Trim(resp.Header.Get("ETag"), `"`), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing new revision: %w", err)
	}
	return newRev, nil
}

// SaveImage upserts one encoded image payload.
func (c *Client) SaveImage(ctx context.Context, id, payload string) error {
	body := struct {
		Content string `json:"content"`
	}{Content: payload}

	resp, err := c.do(ctx, http.MethodPut, "/api/catalog/images/"+id, body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("saving image: %s", responseError(resp))
	}
	return nil
}

// Image fetches one stored payload; a miss is catalog.ErrNotFound.
func (c *Client) Image(ctx context.Context, id string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/catalog/images/"+id, nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("image %s: %w", id, catalog.ErrNotFound)
	default:
		return "", fmt.Errorf("fetching image: %s", responseError(resp))
	}

	var blob model.ImageBlob
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	return blob.Content, nil
}

// do issues an authenticated request, signing in on first use and
// retrying once with a fresh session on 401.
func (c *Client) do(ctx context.Context, method, path string, body any, ifMatch string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.sessionToken(ctx, attempt > 0)
		if err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if ifMatch != "" {
			req.Header.Set("If-Match", ifMatch)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", catalog.ErrConnection, err)
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			continue
		}
		return resp, nil
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// sessionToken returns the cached token, opening a new anonymous
// session when there is none or when force is set.
func (c *Client) sessionToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{"accessKey": c.accessKey})
	if err != nil {
		return "", fmt.Errorf("encoding session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/session", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", catalog.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("opening session: %s", responseError(resp))
	}

	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decoding session response: %w", err)
	}
	if session.Token == "" {
		return "", fmt.Errorf("opening session: empty token")
	}

	c.token = session.Token
	return c.token, nil
}

// responseError extracts the server's error message, falling back to
// the HTTP status.
func responseError(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return fmt.Sprintf("%s (%s)", body.Error, resp.Status)
	}
	return resp.Status
}
