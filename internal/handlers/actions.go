package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/klipy/klipy-go/internal/logging"
	"github.com/klipy/klipy-go/tracking"
)

const maxReportBody = 4 << 10

// CategoryHandler lists the categories of a media kind.
type CategoryHandler struct {
	Categories CategorySource
	Upstream   UpstreamRecorder
}

// List handles GET /api/v1/:kind/categories.
func (h CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	kind, ok := kindFromPath(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "unknown media kind")
		return
	}
	if h.Categories == nil {
		respondError(ctx, w, http.StatusServiceUnavailable, "klipy client is not configured")
		return
	}

	categories, err := h.Categories.Categories(ctx, kind)
	if err != nil {
		respondUpstream(ctx, w, h.Upstream, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"categories": categories})
}

// ActionHandler serves the write endpoints: tracking, reports and hiding.
type ActionHandler struct {
	Feeds    FeedResolver
	Queue    TrackingQueue
	Upstream UpstreamRecorder
}

// View handles POST /api/v1/:kind/:slug/view.
func (h ActionHandler) View(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, tracking.KindView)
}

// Share handles POST /api/v1/:kind/:slug/share.
func (h ActionHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.track(w, r, tracking.KindShare)
}

func (h ActionHandler) track(w http.ResponseWriter, r *http.Request, kind tracking.Kind) {
	ctx := r.Context()

	slug, ok := slugFromPath(w, r)
	if !ok {
		return
	}
	feed, _, ok := resolveFeed(w, r, h.Feeds, h.Upstream)
	if !ok {
		return
	}

	if h.Queue == nil {
		var err error
		if kind == tracking.KindShare {
			err = feed.TrackShare(ctx, slug)
		} else {
			err = feed.TrackView(ctx, slug)
		}
		if err != nil {
			respondUpstream(ctx, w, h.Upstream, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.Queue.Enqueue(ctx, tracking.Event{Kind: kind, Slug: slug, Feed: feed}); err != nil {
		if errors.Is(err, tracking.ErrDispatcherClosed) {
			respondError(ctx, w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}
		logging.FromContext(ctx).Error("enqueue tracking event", "kind", kind, "slug", slug, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to queue event")
		return
	}
	respondJSON(ctx, w, http.StatusAccepted, map[string]string{"status": "queued"})
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// Report handles POST /api/v1/:kind/:slug/report.
func (h ActionHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slug, ok := slugFromPath(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxReportBody)).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("invalid report payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		respondError(ctx, w, http.StatusBadRequest, "reason is required")
		return
	}

	feed, _, ok := resolveFeed(w, r, h.Feeds, h.Upstream)
	if !ok {
		return
	}
	if err := feed.Report(ctx, slug, req.Reason); err != nil {
		respondUpstream(ctx, w, h.Upstream, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Hide handles DELETE /api/v1/:kind/recent/:slug.
func (h ActionHandler) Hide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slug, ok := slugFromPath(w, r)
	if !ok {
		return
	}
	feed, _, ok := resolveFeed(w, r, h.Feeds, h.Upstream)
	if !ok {
		return
	}
	if err := feed.HideFromRecent(ctx, slug); err != nil {
		respondUpstream(ctx, w, h.Upstream, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func slugFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := strings.TrimSpace(httprouter.ParamsFromContext(r.Context()).ByName("slug"))
	if slug == "" {
		respondError(r.Context(), w, http.StatusBadRequest, "slug is required")
		return "", false
	}
	return slug, true
}
