package client

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// PageSize is the number of stored generations requested per feed page
const PageSize = 20

// FetchResult is one page read outcome. Err is empty on success; on
// failure Data is empty and Err carries the message. Fetching never
// returns a Go error: callers branch on Err.
type FetchResult struct {
	Data []GenerationRecord
	Err  string
}

// Fetcher issues one paginated feed read per call, with no retries
type Fetcher interface {
	FetchImages(ctx context.Context, query FeedQuery) FetchResult
}

// HTTPFetcher reads the feed through the API client and expands each
// row's delimited image path into one record per URL.
type HTTPFetcher struct {
	api    *APIClient
	token  string
	logger *zap.Logger
}

// NewHTTPFetcher creates a fetcher bound to a viewer token. An empty
// token fetches the feed anonymously.
func NewHTTPFetcher(api *APIClient, token string, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		api:    api,
		token:  token,
		logger: logger.Named("fetcher"),
	}
}

// FetchImages fetches one page. A row whose image path holds several
// comma-joined URLs yields one record per URL, all other fields copied.
func (f *HTTPFetcher) FetchImages(ctx context.Context, query FeedQuery) FetchResult {
	rows, err := f.api.FetchFeed(ctx, f.token, query)
	if err != nil {
		f.logger.Error("Feed fetch failed", zap.Error(err))
		return FetchResult{Data: []GenerationRecord{}, Err: err.Error()}
	}

	data := make([]GenerationRecord, 0, len(rows))
	for _, row := range rows {
		for _, path := range strings.Split(row.ImagePath, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			record := row
			record.ImagePath = path
			data = append(data, record)
		}
	}

	return FetchResult{Data: data}
}

// Phase is the gallery controller's pagination state
type Phase int

const (
	// PhaseInitialLoading is the first page fetch after mount
	PhaseInitialLoading Phase = iota
	// PhaseIdle means the gallery is ready for the next sentinel trigger
	PhaseIdle
	// PhaseLoadingMore means a page fetch is in flight
	PhaseLoadingMore
	// PhaseExhausted means the feed returned a short page; the sentinel
	// detaches and no further fetch happens without a remount
	PhaseExhausted
)

// Gallery accumulates feed pages and owns the pagination cursor. The
// sentinel trigger is inert while a fetch is in flight or the feed is
// exhausted, so at most one page fetch runs at a time.
type Gallery struct {
	fetcher Fetcher
	query   FeedQuery
	logger  *zap.Logger

	mu      sync.Mutex
	phase   Phase
	records []GenerationRecord
	cursor  int
	hasMore bool
}

// NewGallery creates a gallery over the fetcher. The query's Limit and
// Offset are owned by the gallery; the remaining fields filter the feed.
func NewGallery(fetcher Fetcher, query FeedQuery, logger *zap.Logger) *Gallery {
	return &Gallery{
		fetcher: fetcher,
		query:   query,
		logger:  logger.Named("gallery"),
		phase:   PhaseInitialLoading,
		records: []GenerationRecord{},
		hasMore: true,
	}
}

// Load fetches the first page, replacing any accumulated records
func (g *Gallery) Load(ctx context.Context) {
	g.mu.Lock()
	g.phase = PhaseInitialLoading
	g.mu.Unlock()

	result := g.fetch(ctx, 0)

	g.mu.Lock()
	defer g.mu.Unlock()

	if result.Err != "" {
		g.logger.Error("Initial page load failed", zap.String("error", result.Err))
		g.phase = PhaseIdle
		return
	}

	g.records = result.Data
	g.cursor = len(result.Data)
	g.hasMore = len(result.Data) == PageSize
	if g.hasMore {
		g.phase = PhaseIdle
	} else {
		g.phase = PhaseExhausted
	}
}

// OnSentinelVisible is the scroll trigger. It fetches the next page when
// the gallery is idle with more rows expected; otherwise it is a no-op.
// A failed fetch keeps the cursor, so the same page is retried on the
// next trigger.
func (g *Gallery) OnSentinelVisible(ctx context.Context) {
	g.mu.Lock()
	if g.phase != PhaseIdle || !g.hasMore {
		g.mu.Unlock()
		return
	}
	g.phase = PhaseLoadingMore
	offset := g.cursor
	g.mu.Unlock()

	result := g.fetch(ctx, offset)

	g.mu.Lock()
	defer g.mu.Unlock()

	if result.Err != "" {
		g.logger.Error("Page load failed",
			zap.Int("offset", offset),
			zap.String("error", result.Err),
		)
		g.phase = PhaseIdle
		return
	}

	g.records = append(g.records, result.Data...)
	g.cursor += len(result.Data)
	g.hasMore = len(result.Data) >= PageSize
	if g.hasMore {
		g.phase = PhaseIdle
	} else {
		g.phase = PhaseExhausted
	}
}

func (g *Gallery) fetch(ctx context.Context, offset int) FetchResult {
	query := g.query
	query.Limit = PageSize
	query.Offset = offset
	return g.fetcher.FetchImages(ctx, query)
}

// Records returns the accumulated display records
func (g *Gallery) Records() []GenerationRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.records
}

// Phase returns the current pagination phase
func (g *Gallery) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Cursor returns the row offset of the next page
func (g *Gallery) Cursor() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cursor
}

// HasMore reports whether another page is expected
func (g *Gallery) HasMore() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasMore
}

// SentinelAttached reports whether the scroll sentinel should render.
// An exhausted gallery drops it, which makes further triggers impossible.
func (g *Gallery) SentinelAttached() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase != PhaseExhausted
}
