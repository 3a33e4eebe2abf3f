package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	klipy "github.com/klipy/klipy-go"
	"github.com/klipy/klipy-go/apiclient"
	"github.com/klipy/klipy-go/internal/middleware"
	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
	"github.com/klipy/klipy-go/tracking"
)

type feedCall struct {
	op    string
	query string
	page  int
	slug  string
	extra string
}

type feedStub struct {
	mu     sync.Mutex
	calls  []feedCall
	result media.PaginatedResult[media.Item]
	cats   media.Categories
	err    error
}

func (f *feedStub) record(c feedCall) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *feedStub) last(t *testing.T) feedCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "expected feed to be called")
	return f.calls[len(f.calls)-1]
}

func (f *feedStub) Trending(_ context.Context, page int, _ ...service.PageOption) (media.PaginatedResult[media.Item], error) {
	f.record(feedCall{op: "trending", page: page})
	return f.result, f.err
}

func (f *feedStub) Search(_ context.Context, query string, page int, _ ...service.PageOption) (media.PaginatedResult[media.Item], error) {
	f.record(feedCall{op: "search", query: query, page: page})
	return f.result, f.err
}

func (f *feedStub) Categories(context.Context) (media.Categories, error) {
	f.record(feedCall{op: "categories"})
	return f.cats, f.err
}

func (f *feedStub) Recent(_ context.Context, page int, _ ...service.PageOption) (media.PaginatedResult[media.Item], error) {
	f.record(feedCall{op: "recent", page: page})
	return f.result, f.err
}

func (f *feedStub) HideFromRecent(_ context.Context, slug string) error {
	f.record(feedCall{op: "hide", slug: slug})
	return f.err
}

func (f *feedStub) TrackView(_ context.Context, slug string) error {
	f.record(feedCall{op: "view", slug: slug})
	return f.err
}

func (f *feedStub) TrackShare(_ context.Context, slug string) error {
	f.record(feedCall{op: "share", slug: slug})
	return f.err
}

func (f *feedStub) Report(_ context.Context, slug, reason string) error {
	f.record(feedCall{op: "report", slug: slug, extra: reason})
	return f.err
}

type resolverStub struct {
	feed  *feedStub
	err   error
	kinds []media.Type
}

func (r *resolverStub) ServiceFor(t media.Type) (service.Feed, error) {
	r.kinds = append(r.kinds, t)
	if r.err != nil {
		return nil, r.err
	}
	return r.feed, nil
}

type categorySourceStub struct {
	feed *feedStub
}

func (c categorySourceStub) Categories(ctx context.Context, _ media.Type) (media.Categories, error) {
	return c.feed.Categories(ctx)
}

type queueStub struct {
	events []tracking.Event
	err    error
}

func (q *queueStub) Enqueue(_ context.Context, ev tracking.Event) error {
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, ev)
	return nil
}

func gifItem(id, w, h int) media.Item {
	f := &media.File{
		GIF:  media.FileVariant{URL: "g.gif", Width: w, Height: h},
		WebP: media.FileVariant{URL: "g.webp", Width: w, Height: h},
	}
	return media.Item{ID: id, Slug: "s", Type: media.TypeGif, SM: f}
}

func newTestRouter(feed *feedStub, queue TrackingQueue) (http.Handler, *resolverStub, *middleware.Metrics) {
	resolver := &resolverStub{feed: feed}
	metrics := middleware.NewMetrics()
	router := NewRouter(Dependencies{
		Feeds:      resolver,
		Categories: categorySourceStub{feed: feed},
		Tracking:   queue,
		Metrics:    metrics,
		RowHeight:  100,
	})
	return router, resolver, metrics
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTrendingReturnsItemsAndRows(t *testing.T) {
	feed := &feedStub{result: media.PaginatedResult[media.Item]{
		Items:       []media.Item{gifItem(1, 2, 1), gifItem(2, 1, 1), gifItem(3, 3, 1)},
		CurrentPage: 2,
		PerPage:     3,
		HasNext:     true,
	}}
	router, resolver, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodGet, "/api/v1/stickers/trending?page=2&width=450", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, feedCall{op: "trending", page: 2}, feed.last(t))
	assert.Equal(t, []media.Type{media.TypeSticker}, resolver.kinds)

	var resp feedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 3)
	assert.True(t, resp.HasNext)
	assert.Equal(t, 2, resp.CurrentPage)
	require.Len(t, resp.Rows, 2)
	assert.Len(t, resp.Rows[0].Items, 2)
	assert.Len(t, resp.Rows[1].Items, 1)
}

func TestFeedWithoutWidthOmitsRows(t *testing.T) {
	feed := &feedStub{}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodGet, "/api/v1/gifs/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"rows"`)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
	assert.Equal(t, feedCall{op: "recent", page: 1}, feed.last(t))
}

func TestFeedQueryValidation(t *testing.T) {
	router, _, _ := newTestRouter(&feedStub{}, nil)

	for _, target := range []string{
		"/api/v1/gifs/trending?page=0",
		"/api/v1/gifs/trending?page=abc",
		"/api/v1/gifs/trending?per_page=500",
		"/api/v1/gifs/trending?width=-1",
		"/api/v1/gifs/trending?row_height=0",
		"/api/v1/gifs/search",
	} {
		assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, target, nil).Code, target)
	}

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/memes/trending", nil).Code)
}

func TestSearchPassesQuery(t *testing.T) {
	feed := &feedStub{}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodGet, "/api/v1/clips/search?q=happy+cat&per_page=10&locale=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, feedCall{op: "search", query: "happy cat", page: 1}, feed.last(t))
}

func TestUpstreamErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"status", &apiclient.HTTPStatusError{StatusCode: 404}, http.StatusBadGateway, "status"},
		{"decoding", &apiclient.DecodingError{Type: "x", Err: errors.New("bad")}, http.StatusBadGateway, "decoding"},
		{"transport", &apiclient.TransportError{Op: "get", Err: errors.New("refused")}, http.StatusGatewayTimeout, "transport"},
		{"oversized", &apiclient.TransportError{Op: "read", Err: apiclient.ErrResponseTooLarge}, http.StatusGatewayTimeout, "transport"},
		{"invalid url", &apiclient.InvalidURLError{Raw: "gifs/view/..", Err: errors.New("bad segment")}, http.StatusInternalServerError, "invalid_url"},
		{"config", &klipy.ConfigurationError{Missing: "customer id"}, http.StatusServiceUnavailable, "configuration"},
		{"service config", service.ErrCustomerIDRequired, http.StatusServiceUnavailable, "configuration"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _, _ := newTestRouter(&feedStub{err: tc.err}, nil)

			rec := serve(router, http.MethodGet, "/api/v1/gifs/trending", nil)
			assert.Equal(t, tc.status, rec.Code)

			metricsRec := serve(router, http.MethodGet, "/metrics", nil)
			assert.Contains(t, metricsRec.Body.String(), `klipy_preview_upstream_errors_total{kind="`+tc.kind+`"} 1`)
		})
	}
}

func TestUpstreamStatusIsEchoed(t *testing.T) {
	router, _, _ := newTestRouter(&feedStub{err: &apiclient.HTTPStatusError{StatusCode: 429}}, nil)

	rec := serve(router, http.MethodGet, "/api/v1/gifs/trending", nil)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 429, body.UpstreamStatus)
}

func TestResolverErrorMapsToUnavailable(t *testing.T) {
	router := NewRouter(Dependencies{Feeds: &resolverStub{err: &klipy.ConfigurationError{Missing: "customer id"}}})

	rec := serve(router, http.MethodGet, "/api/v1/gifs/trending", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCategories(t *testing.T) {
	feed := &feedStub{cats: media.Categories{{Name: "Love", Query: "love"}}}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodGet, "/api/v1/gifs/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []media.Category `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Categories, 1)
	assert.Equal(t, "love", body.Categories[0].Query)
}

func TestTrackingIsQueued(t *testing.T) {
	feed := &feedStub{}
	queue := &queueStub{}
	router, _, _ := newTestRouter(feed, queue)

	assert.Equal(t, http.StatusAccepted, serve(router, http.MethodPost, "/api/v1/gifs/happy-cat/view", nil).Code)
	assert.Equal(t, http.StatusAccepted, serve(router, http.MethodPost, "/api/v1/clips/dance/share", nil).Code)

	require.Len(t, queue.events, 2)
	assert.Equal(t, tracking.KindView, queue.events[0].Kind)
	assert.Equal(t, "happy-cat", queue.events[0].Slug)
	assert.NotNil(t, queue.events[0].Feed)
	assert.Equal(t, tracking.KindShare, queue.events[1].Kind)
	assert.Equal(t, "dance", queue.events[1].Slug)

	queue.err = tracking.ErrDispatcherClosed
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodPost, "/api/v1/gifs/x/view", nil).Code)
}

func TestTrackingWithoutQueueCallsFeed(t *testing.T) {
	feed := &feedStub{}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodPost, "/api/v1/gifs/happy-cat/share", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, feedCall{op: "share", slug: "happy-cat"}, feed.last(t))
}

func TestReport(t *testing.T) {
	feed := &feedStub{}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodPost, "/api/v1/stickers/bad/report", []byte(`{"reason":"spam"}`))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, feedCall{op: "report", slug: "bad", extra: "spam"}, feed.last(t))

	rec = serve(router, http.MethodPost, "/api/v1/stickers/bad/report", []byte(`{"reason":"  "}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty reason")
	rec = serve(router, http.MethodPost, "/api/v1/stickers/bad/report", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "invalid body")
}

func TestHideFromRecent(t *testing.T) {
	feed := &feedStub{}
	router, _, _ := newTestRouter(feed, nil)

	rec := serve(router, http.MethodDelete, "/api/v1/gifs/recent/old-one", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, feedCall{op: "hide", slug: "old-one"}, feed.last(t))
}

func TestRouterFallbacks(t *testing.T) {
	router, _, _ := newTestRouter(&feedStub{}, nil)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, http.MethodPut, "/api/v1/gifs/trending", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/healthz", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(&feedStub{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/gifs/trending", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
