package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/versemate-seed-db/internal/config"
	"github.com/versemate-seed-db/internal/models"
)

// ErrUnexpectedStatus is returned for any non-2xx response
var ErrUnexpectedStatus = errors.New("unexpected status")

// maxErrorBody caps how much of an error response is echoed back
const maxErrorBody = 512

// Payload is a decoded response together with its serialized size as
// produced by encodeASCII
type Payload[T any] struct {
	Data      T
	SizeBytes int64
}

// OfflineClient reads the offline content endpoints of the VerseMate API.
// Requests are never retried; the first failure is returned to the caller.
type OfflineClient struct {
	cfg        *config.Config
	httpClient *http.Client
	out        io.Writer
}

// NewOfflineClient creates a client that logs each request to out
func NewOfflineClient(cfg *config.Config, out io.Writer) *OfflineClient {
	if out == nil {
		out = io.Discard
	}
	return &OfflineClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		out:        out,
	}
}

// FetchJSON GETs path relative to the API URL and decodes the body into v.
// It returns the size of the payload re-encoded by encodeASCII, which is
// what offline_metadata.size_bytes records.
func (c *OfflineClient) FetchJSON(ctx context.Context, path string, v any) (int64, error) {
	endpoint := c.cfg.APIURL + path
	fmt.Fprintf(c.out, "  Fetching %s ...\n", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return 0, fmt.Errorf("GET %s: %w %d: %s", endpoint, ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if !utf8.Valid(body) {
		return 0, fmt.Errorf("decode %s: body is not valid UTF-8", endpoint)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return 0, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	encoded, err := encodeASCII(body)
	if err != nil {
		return 0, fmt.Errorf("measure %s: %w", endpoint, err)
	}

	return int64(len(encoded)), nil
}

// Manifest fetches /offline/manifest
func (c *OfflineClient) Manifest(ctx context.Context) (*models.Manifest, error) {
	var m models.Manifest
	if _, err := c.FetchJSON(ctx, "/offline/manifest", &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// BibleVerses fetches every verse of a Bible version
func (c *OfflineClient) BibleVerses(ctx context.Context, version string) (Payload[[]models.Verse], error) {
	return fetch[[]models.Verse](ctx, c, "/offline/bible/"+url.PathEscape(version))
}

// Commentaries fetches every commentary entry for a language
func (c *OfflineClient) Commentaries(ctx context.Context, language string) (Payload[[]models.Commentary], error) {
	return fetch[[]models.Commentary](ctx, c, "/offline/commentaries/"+url.PathEscape(language))
}

// Topics fetches the topics bundle for a language
func (c *OfflineClient) Topics(ctx context.Context, language string) (Payload[models.TopicsBundle], error) {
	return fetch[models.TopicsBundle](ctx, c, "/offline/topics/"+url.PathEscape(language))
}

func fetch[T any](ctx context.Context, c *OfflineClient, path string) (Payload[T], error) {
	var p Payload[T]
	size, err := c.FetchJSON(ctx, path, &p.Data)
	if err != nil {
		return Payload[T]{}, err
	}
	p.SizeBytes = size
	return p, nil
}
