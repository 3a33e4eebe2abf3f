package layout

import (
	"strconv"
	"strings"

	"github.com/klipy/klipy-go/media"
)

// Row is one justified line of items.
type Row struct {
	Items     []media.Item `json:"items"`
	RowHeight float64      `json:"row_height"`
	RowWidth  float64      `json:"row_width"`
}

// ID joins the ids of the row's items with "-".
func (r Row) ID() string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = strconv.Itoa(item.ID)
	}
	return strings.Join(ids, "-")
}

// PossibleHeight is the height the row takes when stretched to forWidth.
func (r Row) PossibleHeight(forWidth float64) float64 {
	if forWidth <= 0 || r.RowWidth <= 0 {
		return 0
	}
	return r.RowHeight * (forWidth / r.RowWidth)
}

// Rows packs items greedily into rows no wider than maxWidth at rowHeight.
// Items keep their input order. Items that size to zero are dropped. A row
// only exceeds maxWidth when a single item is wider than maxWidth.
func Rows(items []media.Item, rowHeight, maxWidth float64) []Row {
	var (
		rows   []Row
		cur    []media.Item
		width  float64
		height = rowHeight
	)

	for _, item := range items {
		size := PreviewSize(item, rowHeight)
		if size.Width <= 0 || size.Height <= 0 {
			continue
		}

		if len(cur) > 0 && width+size.Width > maxWidth {
			rows = append(rows, Row{Items: cur, RowHeight: height, RowWidth: width})
			cur = nil
			width = 0
			height = rowHeight
		}

		cur = append(cur, item)
		width += size.Width
		if size.Height > height {
			height = size.Height
		}
	}

	if len(cur) > 0 {
		rows = append(rows, Row{Items: cur, RowHeight: height, RowWidth: width})
	}
	return rows
}

// Relayout returns copies of rows with RowHeight rescaled to fill width.
func Relayout(rows []Row, width float64) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			Items:     r.Items,
			RowHeight: r.PossibleHeight(width),
			RowWidth:  width,
		}
	}
	return out
}
