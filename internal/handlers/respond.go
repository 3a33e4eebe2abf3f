package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	klipy "github.com/klipy/klipy-go"
	"github.com/klipy/klipy-go/apiclient"
	"github.com/klipy/klipy-go/internal/logging"
	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
)

// UpstreamRecorder counts failed API calls by kind.
type UpstreamRecorder interface {
	UpstreamError(kind string)
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	respondJSON(ctx, w, status, errorResponse{Error: msg})
}

// respondUpstream maps an SDK error onto the preview server's status codes.
func respondUpstream(ctx context.Context, w http.ResponseWriter, rec UpstreamRecorder, err error) {
	kind, status, body := classify(err)
	if rec != nil {
		rec.UpstreamError(kind)
	}
	logging.FromContext(ctx).Warn("klipy call failed", "kind", kind, "error", err)
	respondJSON(ctx, w, status, body)
}

func classify(err error) (string, int, errorResponse) {
	var (
		statusErr    *apiclient.HTTPStatusError
		decodeErr    *apiclient.DecodingError
		transportErr *apiclient.TransportError
		urlErr       *apiclient.InvalidURLError
	)

	switch {
	case errors.Is(err, klipy.ErrNotConfigured):
		return "configuration", http.StatusServiceUnavailable, errorResponse{Error: "klipy client is not configured"}
	case errors.Is(err, klipy.ErrNoServiceForType):
		return "configuration", http.StatusNotFound, errorResponse{Error: "unknown media kind"}
	case errors.As(err, &statusErr):
		return "status", http.StatusBadGateway, errorResponse{
			Error:          "klipy api returned an error",
			UpstreamStatus: statusErr.StatusCode,
		}
	case errors.As(err, &decodeErr):
		return "decoding", http.StatusBadGateway, errorResponse{Error: "klipy api returned an unreadable response"}
	case errors.As(err, &transportErr):
		return "transport", http.StatusGatewayTimeout, errorResponse{Error: "klipy api unreachable"}
	case errors.As(err, &urlErr):
		return "invalid_url", http.StatusInternalServerError, errorResponse{Error: "klipy api url is invalid"}
	default:
		return "unknown", http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

// kindFromPath maps the :kind route segment onto a media type.
func kindFromPath(r *http.Request) (media.Type, bool) {
	switch httprouter.ParamsFromContext(r.Context()).ByName("kind") {
	case "gifs":
		return media.TypeGif, true
	case "stickers":
		return media.TypeSticker, true
	case "clips":
		return media.TypeClip, true
	default:
		return "", false
	}
}

// resolveFeed writes the error response itself and returns ok=false on failure.
func resolveFeed(w http.ResponseWriter, r *http.Request, feeds FeedResolver, rec UpstreamRecorder) (service.Feed, media.Type, bool) {
	ctx := r.Context()

	kind, ok := kindFromPath(r)
	if !ok {
		respondError(ctx, w, http.StatusNotFound, "unknown media kind")
		return nil, "", false
	}
	if feeds == nil {
		logging.FromContext(ctx).Error("feed resolver unavailable")
		respondError(ctx, w, http.StatusServiceUnavailable, "klipy client is not configured")
		return nil, "", false
	}

	feed, err := feeds.ServiceFor(kind)
	if err != nil {
		respondUpstream(ctx, w, rec, err)
		return nil, "", false
	}
	return feed, kind, true
}
