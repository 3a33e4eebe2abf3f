package media

// Type classifies a feed item.
type Type string

const (
	TypeGif     Type = "gif"
	TypeSticker Type = "sticker"
	TypeClip    Type = "clip"
	TypeAd      Type = "ad"
)

// FileVariant is one encoded rendition of a format.
type FileVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// File groups the formats available for one resolution tier. GIF and WebP
// are always present; sizing reads the GIF variant.
type File struct {
	MP4  *FileVariant `json:"mp4,omitempty"`
	GIF  FileVariant  `json:"gif"`
	WebP FileVariant  `json:"webp"`
}

// AdContentProperties describes an ad slot whose size is set by the server.
type AdContentProperties struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Content string `json:"content"`
}

// Item is the normalized representation of any feed entry.
type Item struct {
	ID          int                  `json:"id"`
	Title       string               `json:"title"`
	Slug        string               `json:"slug"`
	BlurPreview *string              `json:"blur_preview,omitempty"`
	Type        Type                 `json:"type"`
	Ad          *AdContentProperties `json:"ad,omitempty"`

	HD *File `json:"hd,omitempty"`
	MD *File `json:"md,omitempty"`
	SM *File `json:"sm,omitempty"`
	XS *File `json:"xs,omitempty"`

	Single *File `json:"single,omitempty"`
}

// Equal compares items by ID only, so list diffing treats a refreshed copy
// of an item as the same entry.
func (i Item) Equal(other Item) bool {
	return i.ID == other.ID
}

// IsAd reports whether the item is an ad slot.
func (i Item) IsAd() bool {
	return i.Type == TypeAd
}

// HasFile reports whether at least one resolution tier is populated.
func (i Item) HasFile() bool {
	return firstFile(i.Single, i.HD, i.MD, i.SM, i.XS) != nil
}

// MediaFile returns the playback asset: single, hd, md, sm, xs.
func (i Item) MediaFile() *File {
	return firstFile(i.Single, i.HD, i.MD, i.SM, i.XS)
}

// PreviewFile returns the thumbnail asset: single, sm, xs, md, hd.
func (i Item) PreviewFile() *File {
	return firstFile(i.Single, i.SM, i.XS, i.MD, i.HD)
}

// CompactFile returns the mid-size asset: single, md, hd, sm, xs.
func (i Item) CompactFile() *File {
	return firstFile(i.Single, i.MD, i.HD, i.SM, i.XS)
}

func firstFile(files ...*File) *File {
	for _, f := range files {
		if f != nil {
			return f
		}
	}
	return nil
}
