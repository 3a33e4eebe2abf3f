// Package klipy is the entry point of the Klipy media SDK. Setup builds an SDK
// value from a Config; the SDK hands out the GIF, sticker and clip services.
package klipy

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/klipy/klipy-go/apiclient"
	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.klipy.co"

// Config is passed to Setup.
type Config struct {
	// APIKey is required and cannot be changed after Setup.
	APIKey string
	// CustomerID identifies the end user. It can be set later with
	// UpdateCustomerID.
	CustomerID *string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	HTTPClient   apiclient.HTTPDoer
	AdParameters apiclient.AdParameterSource
	UserAgent    apiclient.UserAgentSource
	Logger       *slog.Logger
}

// SDK holds the configuration shared by all services.
type SDK struct {
	apiKey  string
	baseURL string
	client  *apiclient.Client
	logger  *slog.Logger

	mu         sync.RWMutex
	customerID *string
}

// Setup validates cfg and builds an SDK.
func Setup(cfg Config) (*SDK, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("klipy: invalid base url %q", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []apiclient.Option{apiclient.WithLogger(logger)}
	if cfg.HTTPClient != nil {
		opts = append(opts, apiclient.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.AdParameters != nil {
		opts = append(opts, apiclient.WithAdParameters(cfg.AdParameters))
	}
	if cfg.UserAgent != nil {
		opts = append(opts, apiclient.WithUserAgent(cfg.UserAgent))
	}

	sdk := &SDK{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  apiclient.New(opts...),
		logger:  logger,
	}
	sdk.UpdateCustomerID(cfg.CustomerID)
	return sdk, nil
}

// UpdateCustomerID replaces the customer id. Nil or blank clears it. Services
// obtained earlier keep the id they were built with.
func (s *SDK) UpdateCustomerID(id *string) {
	var next *string
	if id != nil && strings.TrimSpace(*id) != "" {
		v := *id
		next = &v
	}

	s.mu.Lock()
	s.customerID = next
	s.mu.Unlock()
}

// CustomerID returns the current customer id and whether one is set.
func (s *SDK) CustomerID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.customerID == nil {
		return "", false
	}
	return *s.customerID, true
}

// APIURL returns the versioned base every endpoint path is resolved against.
func (s *SDK) APIURL() string {
	return s.baseURL + "/api/v1/" + url.PathEscape(s.apiKey) + "/"
}

// Client returns the shared request pipeline.
func (s *SDK) Client() *apiclient.Client {
	return s.client
}

// Gifs returns the GIF service for the current customer.
func (s *SDK) Gifs() (*service.GifService, error) {
	id, err := s.requireCustomer()
	if err != nil {
		return nil, err
	}
	return service.NewGifs(s.client, s.APIURL(), id)
}

// Stickers returns the sticker service for the current customer.
func (s *SDK) Stickers() (*service.StickerService, error) {
	id, err := s.requireCustomer()
	if err != nil {
		return nil, err
	}
	return service.NewStickers(s.client, s.APIURL(), id)
}

// Clips returns the clip service for the current customer.
func (s *SDK) Clips() (*service.ClipService, error) {
	id, err := s.requireCustomer()
	if err != nil {
		return nil, err
	}
	return service.NewClips(s.client, s.APIURL(), id)
}

// ServiceFor returns the service that serves items of type t.
func (s *SDK) ServiceFor(t media.Type) (service.Feed, error) {
	var (
		feed service.Feed
		err  error
	)
	switch t {
	case media.TypeGif:
		feed, err = asFeed(s.Gifs())
	case media.TypeSticker:
		feed, err = asFeed(s.Stickers())
	case media.TypeClip:
		feed, err = asFeed(s.Clips())
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoServiceForType, t)
	}
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// asFeed keeps a nil service from turning into a non-nil interface.
func asFeed[T media.WireItem](svc *service.Service[T], err error) (service.Feed, error) {
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *SDK) requireCustomer() (string, error) {
	id, ok := s.CustomerID()
	if !ok {
		s.logger.Warn("klipy service requested without customer id")
		return "", &ConfigurationError{Missing: "customer id"}
	}
	return id, nil
}
