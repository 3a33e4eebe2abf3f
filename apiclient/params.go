package apiclient

import (
	"context"
	"fmt"
	"net/url"
)

// AdParameterSource supplies device and ad-sizing parameters that ride along
// with every request.
type AdParameterSource interface {
	AdParameters(ctx context.Context) map[string]any
}

// AdParametersFunc adapts a function to AdParameterSource.
type AdParametersFunc func(ctx context.Context) map[string]any

func (f AdParametersFunc) AdParameters(ctx context.Context) map[string]any {
	return f(ctx)
}

// UserAgentSource supplies the User-Agent header value. An empty string
// leaves the header to the transport.
type UserAgentSource interface {
	UserAgent() string
}

// UserAgentFunc adapts a function to UserAgentSource.
type UserAgentFunc func() string

func (f UserAgentFunc) UserAgent() string {
	return f()
}

// MergeParameters returns a new map holding ad parameters overlaid by the
// domain parameters; on a key collision the domain value wins.
func MergeParameters(domain, ad map[string]any) map[string]any {
	merged := make(map[string]any, len(domain)+len(ad))
	for k, v := range ad {
		merged[k] = v
	}
	for k, v := range domain {
		merged[k] = v
	}
	return merged
}

func encodeQuery(params map[string]any) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}
