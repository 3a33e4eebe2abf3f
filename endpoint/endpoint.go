package endpoint

import (
	"fmt"
	"net/url"
)

// Method is an HTTP verb understood by the request pipeline.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Encoding selects where request parameters travel.
type Encoding int

const (
	// EncodingURL serializes parameters into the query string.
	EncodingURL Encoding = iota
	// EncodingJSON serializes parameters into a JSON request body.
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingURL:
		return "url"
	case EncodingJSON:
		return "json"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// DefaultEncoding returns the encoding used when an endpoint does not pick one.
func DefaultEncoding(m Method) Encoding {
	switch m {
	case MethodGet, MethodDelete:
		return EncodingURL
	default:
		return EncodingJSON
	}
}

// Descriptor is the wire-level description of a single API call.
type Descriptor struct {
	Path       string
	Method     Method
	Parameters map[string]any
	Encoding   Encoding
	Headers    map[string]string
}

// Prefix is the path segment that selects a media service.
type Prefix string

const (
	PrefixGifs     Prefix = "gifs"
	PrefixStickers Prefix = "stickers"
	PrefixClips    Prefix = "clips"
)

// Valid reports whether p names one of the known media services.
func (p Prefix) Valid() bool {
	switch p {
	case PrefixGifs, PrefixStickers, PrefixClips:
		return true
	}
	return false
}

// Endpoint is one logical operation against a media service. The set of
// implementations is closed; Describe switches over all of them.
type Endpoint interface {
	prefix() Prefix
	sealed()
}

type base struct {
	Prefix Prefix
}

func (b base) prefix() Prefix { return b.Prefix }
func (base) sealed()          {}

// Trending lists the currently popular items.
type Trending struct {
	base
	Page       int
	PerPage    int
	CustomerID string
	Locale     string
}

// Search runs a full-text query.
type Search struct {
	base
	Query      string
	Page       int
	PerPage    int
	CustomerID string
	Locale     string
}

// Categories lists the browsable categories.
type Categories struct {
	base
}

// Recent lists items the customer used recently.
type Recent struct {
	base
	CustomerID string
	Page       int
	PerPage    int
}

// HideFromRecent removes an item from the customer's recent list.
type HideFromRecent struct {
	base
	CustomerID string
	Slug       string
}

// View records that the customer displayed an item.
type View struct {
	base
	Slug       string
	CustomerID string
}

// Share records that the customer sent an item.
type Share struct {
	base
	Slug       string
	CustomerID string
}

// Report flags an item for moderation.
type Report struct {
	base
	Slug       string
	CustomerID string
	Reason     string
}

func NewTrending(p Prefix, page, perPage int, customerID, locale string) Trending {
	return Trending{base: base{p}, Page: page, PerPage: perPage, CustomerID: customerID, Locale: locale}
}

func NewSearch(p Prefix, query string, page, perPage int, customerID, locale string) Search {
	return Search{base: base{p}, Query: query, Page: page, PerPage: perPage, CustomerID: customerID, Locale: locale}
}

func NewCategories(p Prefix) Categories {
	return Categories{base: base{p}}
}

func NewRecent(p Prefix, customerID string, page, perPage int) Recent {
	return Recent{base: base{p}, CustomerID: customerID, Page: page, PerPage: perPage}
}

func NewHideFromRecent(p Prefix, customerID, slug string) HideFromRecent {
	return HideFromRecent{base: base{p}, CustomerID: customerID, Slug: slug}
}

func NewView(p Prefix, slug, customerID string) View {
	return View{base: base{p}, Slug: slug, CustomerID: customerID}
}

func NewShare(p Prefix, slug, customerID string) Share {
	return Share{base: base{p}, Slug: slug, CustomerID: customerID}
}

func NewReport(p Prefix, slug, customerID, reason string) Report {
	return Report{base: base{p}, Slug: slug, CustomerID: customerID, Reason: reason}
}

// Describe expands an endpoint into its path, method, parameters and encoding.
func Describe(e Endpoint) Descriptor {
	p := string(e.prefix())

	var d Descriptor
	switch e := e.(type) {
	case Trending:
		d = Descriptor{
			Path:   p + "/trending",
			Method: MethodGet,
			Parameters: map[string]any{
				"page":        e.Page,
				"per_page":    e.PerPage,
				"customer_id": e.CustomerID,
				"locale":      e.Locale,
			},
		}
	case Search:
		d = Descriptor{
			Path:   p + "/search",
			Method: MethodGet,
			Parameters: map[string]any{
				"q":           e.Query,
				"page":        e.Page,
				"per_page":    e.PerPage,
				"customer_id": e.CustomerID,
				"locale":      e.Locale,
			},
		}
	case Categories:
		d = Descriptor{Path: p + "/categories", Method: MethodGet}
	case Recent:
		d = Descriptor{
			Path:   p + "/recent/" + url.PathEscape(e.CustomerID),
			Method: MethodGet,
			Parameters: map[string]any{
				"page":     e.Page,
				"per_page": e.PerPage,
			},
		}
	case HideFromRecent:
		d = Descriptor{
			Path:       p + "/recent/" + url.PathEscape(e.CustomerID),
			Method:     MethodDelete,
			Parameters: map[string]any{"slug": e.Slug},
		}
	case View:
		d = Descriptor{
			Path:       p + "/view/" + url.PathEscape(e.Slug),
			Method:     MethodPost,
			Parameters: map[string]any{"customer_id": e.CustomerID},
		}
	case Share:
		d = Descriptor{
			Path:       p + "/share/" + url.PathEscape(e.Slug),
			Method:     MethodPost,
			Parameters: map[string]any{"customer_id": e.CustomerID},
		}
	case Report:
		d = Descriptor{
			Path:   p + "/report/" + url.PathEscape(e.Slug),
			Method: MethodPost,
			Parameters: map[string]any{
				"customer_id": e.CustomerID,
				"reason":      e.Reason,
			},
		}
	default:
		panic(fmt.Sprintf("endpoint: unhandled endpoint %T", e))
	}

	d.Encoding = DefaultEncoding(d.Method)
	return d
}
