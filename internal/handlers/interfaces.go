package handlers

import (
	"context"

	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
	"github.com/klipy/klipy-go/tracking"
)

// FeedResolver hands out the service for a media type. *klipy.SDK satisfies it.
type FeedResolver interface {
	ServiceFor(t media.Type) (service.Feed, error)
}

// CategorySource lists categories per media type, typically through a cache.
type CategorySource interface {
	Categories(ctx context.Context, kind media.Type) (media.Categories, error)
}

// TrackingQueue schedules asynchronous view and share events.
type TrackingQueue interface {
	Enqueue(ctx context.Context, ev tracking.Event) error
}
