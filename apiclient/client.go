package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/klipy/klipy-go/endpoint"
	"github.com/klipy/klipy-go/internal/logging"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// HTTPDoer is the transport used to send requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client executes endpoint descriptors against the Klipy API. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	http      HTTPDoer
	adParams  AdParameterSource
	userAgent UserAgentSource
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithAdParameters sets the source merged into every request's parameters.
func WithAdParameters(src AdParameterSource) Option {
	return func(c *Client) { c.adParams = src }
}

// WithUserAgent sets the source of the User-Agent header.
func WithUserAgent(src UserAgentSource) Option {
	return func(c *Client) { c.userAgent = src }
}

// WithRateLimiter makes every call wait for a token before it is sent. There
// is no limiter unless one is supplied.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger used when the call context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a Client with a 15s timeout transport and no ad parameters.
func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BodyDecoder lets a response type take over decoding of the raw body.
type BodyDecoder interface {
	DecodeBody(body []byte) error
}

// Ack is the result of fire-and-forget calls. Any 2xx body, including an empty
// one, decodes into it.
type Ack struct{}

func (*Ack) DecodeBody([]byte) error { return nil }

// Execute sends e to baseURL once and decodes a 2xx body into T.
func Execute[T any](ctx context.Context, c *Client, e endpoint.Endpoint, baseURL string) (T, error) {
	return ExecuteDescriptor[T](ctx, c, endpoint.Describe(e), baseURL)
}

// ExecuteDescriptor is Execute for an already described endpoint.
func ExecuteDescriptor[T any](ctx context.Context, c *Client, d endpoint.Descriptor, baseURL string) (T, error) {
	var out T

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.Ensure(ctx, c.logger)
	ctx, span := logging.StartSpanLevel(ctx, "klipy."+string(d.Method)+" "+d.Path, slog.LevelDebug)
	logger := span.Logger()

	req, err := c.buildRequest(ctx, d, baseURL)
	if err != nil {
		span.End(slog.String("error", err.Error()))
		return out, err
	}

	body, status, err := c.send(ctx, req)
	if err != nil {
		span.End(slog.String("error", err.Error()))
		return out, err
	}

	logger.Debug("klipy response received",
		slog.Int("status", status),
		slog.Int("bytes", len(body)),
	)

	if status < 200 || status > 299 {
		err := &HTTPStatusError{StatusCode: status, Body: body}
		span.End(slog.Int("status", status), slog.String("error", err.Error()))
		return out, err
	}

	if err := decode(body, &out); err != nil {
		logger.Debug("klipy decode failed", slog.String("body", string(body)))
		err = &DecodingError{Type: typeName[T](), Body: body, Err: err}
		span.End(slog.Int("status", status), slog.String("error", err.Error()))
		return out, err
	}

	span.End(slog.Int("status", status))
	return out, nil
}

func (c *Client) buildRequest(ctx context.Context, d endpoint.Descriptor, baseURL string) (*http.Request, error) {
	target, err := resolveURL(baseURL, d.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	switch d.Encoding {
	case endpoint.EncodingURL:
		params := MergeParameters(d.Parameters, c.adParameters(ctx))
		if len(params) > 0 {
			target.RawQuery = encodeQuery(params)
		}
	case endpoint.EncodingJSON:
		if d.Parameters != nil {
			payload, err := json.Marshal(MergeParameters(d.Parameters, c.adParameters(ctx)))
			if err != nil {
				return nil, &InvalidURLError{Raw: target.String(), Err: fmt.Errorf("encode body: %w", err)}
			}
			body = bytes.NewReader(payload)
		}
	default:
		return nil, &InvalidURLError{Raw: target.String(), Err: fmt.Errorf("unknown encoding %v", d.Encoding)}
	}

	req, err := http.NewRequestWithContext(ctx, string(d.Method), target.String(), body)
	if err != nil {
		return nil, &InvalidURLError{Raw: target.String(), Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.userAgent != nil {
		if ua := c.userAgent.UserAgent(); ua != "" {
			req.Header.Set("User-Agent", ua)
		}
	}
	for k, v := range d.Headers {
		req.Header.Add(k, v)
	}

	logging.FromContext(ctx).Debug("klipy request built",
		slog.String("method", req.Method),
		slog.String("url", redactKey(target)),
		slog.String("encoding", d.Encoding.String()),
	)
	return req, nil
}

func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, &TransportError{Op: "wait", URL: req.URL.Path, Err: err}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Op: strings.ToLower(req.Method), URL: req.URL.Path, Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Op: "read", URL: req.URL.Path, Err: err}
	}
	if len(body) > maxBodyBytes {
		return nil, resp.StatusCode, &TransportError{Op: "read", URL: req.URL.Path, Err: ErrResponseTooLarge}
	}
	return body, resp.StatusCode, nil
}

func (c *Client) adParameters(ctx context.Context) map[string]any {
	if c.adParams == nil {
		return nil
	}
	return c.adParams.AdParameters(ctx)
}

func resolveURL(baseURL, path string) (*url.URL, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &InvalidURLError{Raw: baseURL, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &InvalidURLError{Raw: baseURL, Err: errors.New("base url must be absolute")}
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
		if base.RawPath != "" {
			base.RawPath += "/"
		}
	}

	rel := strings.TrimPrefix(path, "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return nil, &InvalidURLError{Raw: path, Err: fmt.Errorf("invalid path segment %q", seg)}
		}
	}

	ref, err := url.Parse(rel)
	if err != nil {
		return nil, &InvalidURLError{Raw: path, Err: err}
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, &InvalidURLError{Raw: path, Err: errors.New("endpoint path must be relative")}
	}
	return base.ResolveReference(ref), nil
}

func decode(body []byte, out any) error {
	if d, ok := out.(BodyDecoder); ok {
		return d.DecodeBody(body)
	}
	return json.Unmarshal(body, out)
}

// unwrapURLError drops the *url.Error layer; TransportError already records
// the operation and URL.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// redactKey hides the API key segment that follows /api/v1/.
func redactKey(u *url.URL) string {
	clone := *u
	parts := strings.Split(clone.Path, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "v1" && i > 0 && parts[i-1] == "api" && parts[i+1] != "" {
			parts[i+1] = "***"
			break
		}
	}
	clone.Path = strings.Join(parts, "/")
	clone.RawPath = ""
	return clone.String()
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
