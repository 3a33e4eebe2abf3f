package media

// WireItem is implemented by the per-service payload types. Domain converts
// the payload into an Item; position is the item's zero-based index within
// the whole feed and only matters for ads, which carry no server id.
type WireItem interface {
	Domain(position int) Item
}

type wireVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size,omitempty"`
}

func (v *wireVariant) variant() *FileVariant {
	if v == nil {
		return nil
	}
	return &FileVariant{URL: v.URL, Width: v.Width, Height: v.Height}
}

type wireFile struct {
	GIF  *wireVariant `json:"gif,omitempty"`
	WebP *wireVariant `json:"webp,omitempty"`
	MP4  *wireVariant `json:"mp4,omitempty"`
}

// file returns nil when a mandatory format is missing.
func (f *wireFile) file() *File {
	if f == nil || f.GIF == nil || f.WebP == nil {
		return nil
	}
	return &File{
		MP4:  f.MP4.variant(),
		GIF:  *f.GIF.variant(),
		WebP: *f.WebP.variant(),
	}
}

type tieredFiles struct {
	HD *wireFile `json:"hd,omitempty"`
	MD *wireFile `json:"md,omitempty"`
	SM *wireFile `json:"sm,omitempty"`
	XS *wireFile `json:"xs,omitempty"`
}

type adFields struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Content string `json:"content,omitempty"`
}

func (a adFields) domain(position int) Item {
	return Item{
		ID:   adID(position),
		Type: TypeAd,
		Ad: &AdContentProperties{
			Width:   a.Width,
			Height:  a.Height,
			Content: a.Content,
		},
	}
}

// adID gives ads a negative id unique within a feed.
func adID(position int) int {
	return -(position + 1)
}

type tieredItem struct {
	ID          int          `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	BlurPreview *string      `json:"blur_preview,omitempty"`
	Type        string       `json:"type"`
	File        *tieredFiles `json:"file,omitempty"`
	adFields
}

func (t tieredItem) domain(kind Type, position int) Item {
	if Type(t.Type) == TypeAd {
		return t.adFields.domain(position)
	}

	item := Item{
		ID:          t.ID,
		Title:       t.Title,
		Slug:        t.Slug,
		BlurPreview: t.BlurPreview,
		Type:        kind,
	}
	if t.File != nil {
		item.HD = t.File.HD.file()
		item.MD = t.File.MD.file()
		item.SM = t.File.SM.file()
		item.XS = t.File.XS.file()
	}
	return item
}

// GifItem is a GIF as returned by the gifs endpoints.
type GifItem struct {
	tieredItem
}

func (g GifItem) Domain(position int) Item {
	return g.tieredItem.domain(TypeGif, position)
}

// StickerItem is a sticker as returned by the stickers endpoints.
type StickerItem struct {
	tieredItem
}

func (s StickerItem) Domain(position int) Item {
	return s.tieredItem.domain(TypeSticker, position)
}

type clipFormat struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type clipFiles struct {
	MP4  string `json:"mp4,omitempty"`
	GIF  string `json:"gif,omitempty"`
	WebP string `json:"webp,omitempty"`
}

type clipFileMeta struct {
	MP4  clipFormat `json:"mp4"`
	GIF  clipFormat `json:"gif"`
	WebP clipFormat `json:"webp"`
}

// ClipItem is a video clip. Clips ship a single file whose formats are plain
// URLs with dimensions in a sibling file_meta object.
type ClipItem struct {
	ID          int           `json:"id"`
	URL         string        `json:"url,omitempty"`
	Slug        string        `json:"slug"`
	Title       string        `json:"title"`
	BlurPreview *string       `json:"blur_preview,omitempty"`
	Type        string        `json:"type"`
	File        *clipFiles    `json:"file,omitempty"`
	FileMeta    *clipFileMeta `json:"file_meta,omitempty"`
	adFields
}

func (c ClipItem) Domain(position int) Item {
	if Type(c.Type) == TypeAd {
		return c.adFields.domain(position)
	}

	item := Item{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		BlurPreview: c.BlurPreview,
		Type:        TypeClip,
	}
	if c.File == nil || c.File.GIF == "" || c.File.WebP == "" {
		return item
	}

	var meta clipFileMeta
	if c.FileMeta != nil {
		meta = *c.FileMeta
	}

	single := &File{
		GIF:  FileVariant{URL: c.File.GIF, Width: meta.GIF.Width, Height: meta.GIF.Height},
		WebP: FileVariant{URL: c.File.WebP, Width: meta.WebP.Width, Height: meta.WebP.Height},
	}
	if c.File.MP4 != "" {
		single.MP4 = &FileVariant{URL: c.File.MP4, Width: meta.MP4.Width, Height: meta.MP4.Height}
	}
	item.Single = single
	return item
}
