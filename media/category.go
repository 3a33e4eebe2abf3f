package media

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Category is one browsable topic of a media service.
type Category struct {
	Name       string `json:"name"`
	Query      string `json:"query"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Categories is the decoded body of a categories response.
type Categories []Category

var errInvalidJSON = errors.New("invalid json")

// UnmarshalJSON accepts either {"data":{"categories":[{...}]}} or a bare list of
// names in {"data":[...]}.
func (c *Categories) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errInvalidJSON
	}

	data := gjson.GetBytes(b, "data")
	list := data
	if !list.IsArray() {
		list = data.Get("categories")
	}
	if !list.IsArray() {
		return fmt.Errorf("categories: unexpected data type %s", data.Type)
	}

	out := make(Categories, 0, len(list.Array()))
	var parseErr error
	list.ForEach(func(_, value gjson.Result) bool {
		switch {
		case value.Type == gjson.String:
			out = append(out, Category{Name: value.String(), Query: value.String()})
		case value.IsObject():
			name := value.Get("category").String()
			if name == "" {
				name = value.Get("name").String()
			}
			query := value.Get("query").String()
			if query == "" {
				query = name
			}
			out = append(out, Category{
				Name:       name,
				Query:      query,
				PreviewURL: value.Get("preview_url").String(),
			})
		default:
			parseErr = fmt.Errorf("categories: unexpected entry type %s", value.Type)
			return false
		}
		return true
	})
	if parseErr != nil {
		return parseErr
	}

	*c = out
	return nil
}
