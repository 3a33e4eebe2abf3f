package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/klipy/klipy-go/apiclient"
	"github.com/klipy/klipy-go/endpoint"
	"github.com/klipy/klipy-go/media"
)

const (
	// DefaultPerPage is the page size used unless WithPerPage overrides it.
	DefaultPerPage = 24
	// DefaultLocale is the locale used unless WithLocale overrides it.
	DefaultLocale = "ka"
)

var (
	// ErrNotConfigured indicates a service cannot be built from the settings
	// it was given.
	ErrNotConfigured = errors.New("klipy: not configured")
	// ErrCustomerIDRequired indicates a service was built without a customer
	// id. It matches ErrNotConfigured with errors.Is.
	ErrCustomerIDRequired = fmt.Errorf("%w: customer id is required", ErrNotConfigured)
	// ErrUnknownPrefix indicates the path prefix does not name a media service.
	ErrUnknownPrefix = errors.New("klipy service: unknown path prefix")
)

// Feed is the operation set shared by every media service.
type Feed interface {
	Trending(ctx context.Context, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error)
	Search(ctx context.Context, query string, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error)
	Categories(ctx context.Context) (media.Categories, error)
	Recent(ctx context.Context, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error)
	HideFromRecent(ctx context.Context, slug string) error
	TrackView(ctx context.Context, slug string) error
	TrackShare(ctx context.Context, slug string) error
	Report(ctx context.Context, slug, reason string) error
}

// Service talks to one media service. T is the wire type of its items.
type Service[T media.WireItem] struct {
	client     *apiclient.Client
	baseURL    string
	customerID string
	prefix     endpoint.Prefix
}

// GifService, StickerService and ClipService are the three concrete services.
type (
	GifService     = Service[media.GifItem]
	StickerService = Service[media.StickerItem]
	ClipService    = Service[media.ClipItem]
)

var (
	_ Feed = (*GifService)(nil)
	_ Feed = (*StickerService)(nil)
	_ Feed = (*ClipService)(nil)
)

// New builds a service. The customer id is captured for every call.
func New[T media.WireItem](client *apiclient.Client, baseURL, customerID string, prefix endpoint.Prefix) (*Service[T], error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrCustomerIDRequired
	}
	if !prefix.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	if client == nil {
		client = apiclient.New()
	}
	return &Service[T]{
		client:     client,
		baseURL:    baseURL,
		customerID: customerID,
		prefix:     prefix,
	}, nil
}

// NewGifs builds the GIF service.
func NewGifs(client *apiclient.Client, baseURL, customerID string) (*GifService, error) {
	return New[media.GifItem](client, baseURL, customerID, endpoint.PrefixGifs)
}

// NewStickers builds the sticker service.
func NewStickers(client *apiclient.Client, baseURL, customerID string) (*StickerService, error) {
	return New[media.StickerItem](client, baseURL, customerID, endpoint.PrefixStickers)
}

// NewClips builds the clip service.
func NewClips(client *apiclient.Client, baseURL, customerID string) (*ClipService, error) {
	return New[media.ClipItem](client, baseURL, customerID, endpoint.PrefixClips)
}

// Prefix returns the path prefix the service talks to.
func (s *Service[T]) Prefix() endpoint.Prefix { return s.prefix }

// CustomerID returns the customer id captured at construction.
func (s *Service[T]) CustomerID() string { return s.customerID }

// Trending fetches one page of trending items.
func (s *Service[T]) Trending(ctx context.Context, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error) {
	o := pageOptions(opts)
	return s.fetchPage(ctx, endpoint.NewTrending(s.prefix, page, o.perPage, s.customerID, o.locale))
}

// Search fetches one page of results for query.
func (s *Service[T]) Search(ctx context.Context, query string, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error) {
	o := pageOptions(opts)
	return s.fetchPage(ctx, endpoint.NewSearch(s.prefix, query, page, o.perPage, s.customerID, o.locale))
}

// Categories lists the service's categories.
func (s *Service[T]) Categories(ctx context.Context) (media.Categories, error) {
	return apiclient.Execute[media.Categories](ctx, s.client, endpoint.NewCategories(s.prefix), s.baseURL)
}

// Recent fetches one page of the customer's recently used items. The locale
// option is ignored.
func (s *Service[T]) Recent(ctx context.Context, page int, opts ...PageOption) (media.PaginatedResult[media.Item], error) {
	o := pageOptions(opts)
	return s.fetchPage(ctx, endpoint.NewRecent(s.prefix, s.customerID, page, o.perPage))
}

// HideFromRecent removes slug from the customer's recent items.
func (s *Service[T]) HideFromRecent(ctx context.Context, slug string) error {
	return s.ack(ctx, endpoint.NewHideFromRecent(s.prefix, s.customerID, slug))
}

// TrackView records a view of slug.
func (s *Service[T]) TrackView(ctx context.Context, slug string) error {
	return s.ack(ctx, endpoint.NewView(s.prefix, slug, s.customerID))
}

// TrackShare records a share of slug.
func (s *Service[T]) TrackShare(ctx context.Context, slug string) error {
	return s.ack(ctx, endpoint.NewShare(s.prefix, slug, s.customerID))
}

// Report flags slug with reason.
func (s *Service[T]) Report(ctx context.Context, slug, reason string) error {
	return s.ack(ctx, endpoint.NewReport(s.prefix, slug, s.customerID, reason))
}

func (s *Service[T]) fetchPage(ctx context.Context, e endpoint.Endpoint) (media.PaginatedResult[media.Item], error) {
	env, err := apiclient.Execute[media.Envelope[T]](ctx, s.client, e, s.baseURL)
	if err != nil {
		return media.PaginatedResult[media.Item]{}, err
	}
	return media.ToDomain(env), nil
}

func (s *Service[T]) ack(ctx context.Context, e endpoint.Endpoint) error {
	_, err := apiclient.Execute[apiclient.Ack](ctx, s.client, e, s.baseURL)
	return err
}
