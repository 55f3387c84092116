// Package openml is a client for the OpenML REST API with a read-through
// on-disk cache. The central operation is GetFlow, which materializes a
// flow description, its nested component flows included, from the local
// cache or the server.
package openml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/Crozal/openml-go/flow"
	"github.com/Crozal/openml-go/internal/api"
	"github.com/Crozal/openml-go/internal/cache"
	"github.com/Crozal/openml-go/internal/logx"
	"github.com/Crozal/openml-go/internal/paths"
)

var (
	// ErrInvalidArgument indicates a malformed argument from the caller.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotCached indicates cache-only mode found no local copy.
	ErrNotCached = cache.ErrNotCached

	// ErrNotFound indicates the server knows no object with the given id.
	ErrNotFound = api.ErrNotFound
)

// Client talks to an OpenML server through the local object cache.
type Client struct {
	api    *api.Client
	store  *cache.Store
	logger *slog.Logger
}

type clientOptions struct {
	server     string
	apiKey     string
	cacheDir   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithServer sets the API base URL.
func WithServer(server string) Option {
	return func(o *clientOptions) { o.server = server }
}

// WithAPIKey sets the OpenML API key.
func WithAPIKey(key string) Option {
	return func(o *clientOptions) { o.apiKey = key }
}

// WithCacheDir sets the root directory of the local object cache.
func WithCacheDir(dir string) Option {
	return func(o *clientOptions) { o.cacheDir = dir }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = client }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) { o.timeout = timeout }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = logger }
}

// New creates a Client, opening the cache index under the cache directory.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := clientOptions{
		server:   api.DefaultServer,
		cacheDir: paths.CacheDir(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := []api.Option{api.WithServer(o.server)}
	if o.apiKey != "" {
		apiOpts = append(apiOpts, api.WithAPIKey(o.apiKey))
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(o.httpClient))
	}
	if o.timeout > 0 {
		apiOpts = append(apiOpts, api.WithTimeout(o.timeout))
	}
	apiClient := api.NewClient(apiOpts...)

	store, err := cache.NewStore(ctx, o.cacheDir, apiClient, o.logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    apiClient,
		store:  store,
		logger: logx.WithComponent(o.logger, "openml"),
	}, nil
}

// Close releases the cache index.
func (c *Client) Close() error {
	return c.store.Close()
}

// Available reports whether the configured server is reachable.
func (c *Client) Available(ctx context.Context) bool {
	return c.api.IsAvailable(ctx)
}

// Server returns the configured API base URL.
func (c *Client) Server() string {
	return c.api.Server()
}

type getOptions struct {
	cacheOnly bool
}

// GetOption configures a single retrieval.
type GetOption func(*getOptions)

// CacheOnly forbids network fallback: retrieval fails with ErrNotCached
// when no local copy of the object exists.
func CacheOnly() GetOption {
	return func(o *getOptions) { o.cacheOnly = true }
}

// GetFlow retrieves the flow with the given id, from the cache when
// possible, and parses it into a Flow tree. When a non-metadata artifact
// file accompanies the document, its local path is attached as BinaryPath
// or SourcePath depending on how the file is marked.
func (c *Client) GetFlow(ctx context.Context, id int64, opts ...GetOption) (*flow.Flow, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: flow id must be non-negative, got %d", ErrInvalidArgument, id)
	}

	var o getOptions
	for _, opt := range opts {
		opt(&o)
	}

	doc, files, err := c.store.Fetch(ctx, "flow", id, o.cacheOnly)
	if err != nil {
		return nil, err
	}

	f, err := flow.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("flow %d: %w", id, err)
	}

	attachArtifact(f, files)
	c.logger.Debug("flow retrieved", "id", f.ID, "name", f.Name, "components", len(f.Components))
	return f, nil
}

// attachArtifact picks the first non-metadata file, by filename order, as
// the flow's primary artifact. Only one such file is expected; with
// several, first wins.
func attachArtifact(f *flow.Flow, files map[string]cache.File) {
	names := make([]string, 0, len(files))
	for name := range files {
		if name != cache.MetadataFile {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	file := files[names[0]]
	if file.Binary {
		f.BinaryPath = file.Path
	} else {
		f.SourcePath = file.Path
	}
}

// CachedObject summarizes one object held in the local cache.
type CachedObject struct {
	Kind      string
	ID        int64
	Files     int
	Size      int64
	FetchedAt time.Time
}

// CachedObjects lists the contents of the local cache, oldest fetch first.
func (c *Client) CachedObjects(ctx context.Context) ([]CachedObject, error) {
	objects, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CachedObject, 0, len(objects))
	for _, o := range objects {
		out = append(out, CachedObject{
			Kind:      o.Kind,
			ID:        o.ID,
			Files:     o.Files,
			Size:      o.Size,
			FetchedAt: o.FetchedAt,
		})
	}
	return out, nil
}

// ClearCache removes cached objects. An empty kind clears every kind; an
// id below zero clears every object of the kind. Returns the number of
// objects removed.
func (c *Client) ClearCache(ctx context.Context, kind string, id int64) (int, error) {
	return c.store.Clear(ctx, kind, id)
}
