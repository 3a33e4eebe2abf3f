package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/klipy/klipy-go/layout"
	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
)

const maxPerPage = 100

// FeedHandler serves paginated feeds, optionally packed into rows.
type FeedHandler struct {
	Feeds     FeedResolver
	RowHeight float64
	Upstream  UpstreamRecorder
}

type feedResponse struct {
	Items       []media.Item   `json:"items"`
	Rows        []layout.Row   `json:"rows,omitempty"`
	CurrentPage int            `json:"current_page"`
	PerPage     int            `json:"per_page"`
	HasNext     bool           `json:"has_next"`
	Meta        media.GridMeta `json:"meta"`
}

type feedQuery struct {
	page      int
	opts      []service.PageOption
	width     float64
	rowHeight float64
}

// Trending handles GET /api/v1/:kind/trending.
func (h FeedHandler) Trending(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, feed service.Feed, q feedQuery) (media.PaginatedResult[media.Item], error) {
		return feed.Trending(ctx, q.page, q.opts...)
	})
}

// Search handles GET /api/v1/:kind/search?q=.
func (h FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		respondError(r.Context(), w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	h.serve(w, r, func(ctx context.Context, feed service.Feed, q feedQuery) (media.PaginatedResult[media.Item], error) {
		return feed.Search(ctx, term, q.page, q.opts...)
	})
}

// Recent handles GET /api/v1/:kind/recent.
func (h FeedHandler) Recent(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, feed service.Feed, q feedQuery) (media.PaginatedResult[media.Item], error) {
		return feed.Recent(ctx, q.page, q.opts...)
	})
}

type fetchFunc func(ctx context.Context, feed service.Feed, q feedQuery) (media.PaginatedResult[media.Item], error)

func (h FeedHandler) serve(w http.ResponseWriter, r *http.Request, fetch fetchFunc) {
	ctx := r.Context()

	q, msg := h.parseQuery(r)
	if msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	feed, _, ok := resolveFeed(w, r, h.Feeds, h.Upstream)
	if !ok {
		return
	}

	res, err := fetch(ctx, feed, q)
	if err != nil {
		respondUpstream(ctx, w, h.Upstream, err)
		return
	}

	resp := feedResponse{
		Items:       res.Items,
		CurrentPage: res.CurrentPage,
		PerPage:     res.PerPage,
		HasNext:     res.HasNext,
		Meta:        res.GridMeta,
	}
	if resp.Items == nil {
		resp.Items = []media.Item{}
	}
	if q.width > 0 {
		resp.Rows = layout.Rows(res.Items, q.rowHeight, q.width)
	}
	respondJSON(ctx, w, http.StatusOK, resp)
}

// parseQuery returns a non-empty message when the query is invalid.
func (h FeedHandler) parseQuery(r *http.Request) (feedQuery, string) {
	values := r.URL.Query()
	q := feedQuery{page: 1, rowHeight: h.RowHeight}
	if q.rowHeight <= 0 {
		q.rowHeight = 100
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, "page must be a positive integer"
		}
		q.page = page
	}
	if raw := values.Get("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 || perPage > maxPerPage {
			return q, "per_page must be between 1 and 100"
		}
		q.opts = append(q.opts, service.WithPerPage(perPage))
	}
	if locale := strings.TrimSpace(values.Get("locale")); locale != "" {
		q.opts = append(q.opts, service.WithLocale(locale))
	}
	if raw := values.Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil || width <= 0 {
			return q, "width must be a positive number"
		}
		q.width = width
	}
	if raw := values.Get("row_height"); raw != "" {
		height, err := strconv.ParseFloat(raw, 64)
		if err != nil || height <= 0 {
			return q, "row_height must be a positive number"
		}
		q.rowHeight = height
	}
	return q, ""
}
