package media

// GridMeta carries server hints for grid rendering.
type GridMeta struct {
	ItemMinWidth       int `json:"item_min_width"`
	AdMaxResizePercent int `json:"ad_max_resize_percent"`
}

// Page is the paginated body nested inside every feed response.
type Page[T any] struct {
	Data        []T      `json:"data"`
	CurrentPage int      `json:"current_page"`
	PerPage     int      `json:"per_page"`
	HasNext     bool     `json:"has_next"`
	Meta        GridMeta `json:"meta"`
}

// Envelope is the top-level shape of a feed response.
type Envelope[T any] struct {
	Result bool    `json:"result"`
	Data   Page[T] `json:"data"`
}

// PaginatedResult is one fetched page. Callers own merging successive pages.
type PaginatedResult[T any] struct {
	Items       []T      `json:"items"`
	CurrentPage int      `json:"current_page"`
	PerPage     int      `json:"per_page"`
	HasNext     bool     `json:"has_next"`
	GridMeta    GridMeta `json:"meta"`
}

// ToDomain normalizes a decoded feed response. Every wire item is kept, including
// malformed ones, so the item count always matches the payload.
func ToDomain[T WireItem](env Envelope[T]) PaginatedResult[Item] {
	page := env.Data

	offset := 0
	if page.CurrentPage > 1 && page.PerPage > 0 {
		offset = (page.CurrentPage - 1) * page.PerPage
	}

	items := make([]Item, 0, len(page.Data))
	for i, raw := range page.Data {
		items = append(items, raw.Domain(offset+i))
	}

	return PaginatedResult[Item]{
		Items:       items,
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
		HasNext:     page.HasNext,
		GridMeta:    page.Meta,
	}
}
