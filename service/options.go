package service

// PageOption overrides a paging default.
type PageOption func(*pageConfig)

type pageConfig struct {
	perPage int
	locale  string
}

// WithPerPage sets the page size. Non-positive values keep the default.
func WithPerPage(n int) PageOption {
	return func(c *pageConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithLocale sets the content locale. Empty values keep the default.
func WithLocale(locale string) PageOption {
	return func(c *pageConfig) {
		if locale != "" {
			c.locale = locale
		}
	}
}

func pageOptions(opts []PageOption) pageConfig {
	c := pageConfig{perPage: DefaultPerPage, locale: DefaultLocale}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}
