package media

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(name string, w, h int) *File {
	return &File{
		GIF:  FileVariant{URL: name + ".gif", Width: w, Height: h},
		WebP: FileVariant{URL: name + ".webp", Width: w, Height: h},
	}
}

func TestResolutionChains(t *testing.T) {
	hd, md, sm, xs := file("hd", 4, 4), file("md", 3, 3), file("sm", 2, 2), file("xs", 1, 1)

	item := Item{ID: 1, HD: hd, MD: md, SM: sm, XS: xs}
	assert.Same(t, hd, item.MediaFile())
	assert.Same(t, sm, item.PreviewFile())
	assert.Same(t, md, item.CompactFile())

	item = Item{ID: 1, HD: hd}
	assert.Same(t, hd, item.MediaFile())
	assert.Same(t, hd, item.PreviewFile())
	assert.Same(t, hd, item.CompactFile())

	item = Item{ID: 1, MD: md, XS: xs}
	assert.Same(t, md, item.MediaFile())
	assert.Same(t, xs, item.PreviewFile())
	assert.Same(t, md, item.CompactFile())

	item = Item{ID: 1, SM: sm, XS: xs}
	assert.Same(t, sm, item.MediaFile())
	assert.Same(t, sm, item.PreviewFile())
	assert.Same(t, sm, item.CompactFile())
}

func TestResolutionChainsAgreeOnSingleFile(t *testing.T) {
	single := file("single", 5, 5)
	item := Item{ID: 1, Single: single, HD: file("hd", 1, 1), SM: file("sm", 1, 1)}

	assert.Same(t, single, item.MediaFile())
	assert.Same(t, single, item.PreviewFile())
	assert.Same(t, single, item.CompactFile())
}

func TestResolutionChainsTotal(t *testing.T) {
	tiers := []*File{file("single", 1, 1), file("hd", 1, 1), file("md", 1, 1), file("sm", 1, 1), file("xs", 1, 1)}

	// every non-empty subset of tiers resolves for all three chains
	for mask := 1; mask < 1<<len(tiers); mask++ {
		var item Item
		pick := func(i int) *File {
			if mask&(1<<i) != 0 {
				return tiers[i]
			}
			return nil
		}
		item.Single, item.HD, item.MD, item.SM, item.XS = pick(0), pick(1), pick(2), pick(3), pick(4)

		require.True(t, item.HasFile())
		require.NotNil(t, item.MediaFile())
		require.NotNil(t, item.PreviewFile())
		require.NotNil(t, item.CompactFile())
	}

	var empty Item
	assert.False(t, empty.HasFile())
	assert.Nil(t, empty.MediaFile())
}

func TestItemEqualUsesID(t *testing.T) {
	a := Item{ID: 7, Title: "one"}
	b := Item{ID: 7, Title: "two", Type: TypeClip}
	c := Item{ID: 8, Title: "one"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

const gifPage = `{
  "result": true,
  "data": {
    "data": [
      {
        "id": 101, "slug": "dancing-cat", "title": "Dancing cat", "type": "gif",
        "blur_preview": "data:image/jpeg;base64,AAA",
        "file": {
          "hd": {"gif": {"url": "hd.gif", "width": 498, "height": 280, "size": 1024},
                 "webp": {"url": "hd.webp", "width": 498, "height": 280},
                 "mp4": {"url": "hd.mp4", "width": 498, "height": 280}},
          "sm": {"gif": {"url": "sm.gif", "width": 220, "height": 124},
                 "webp": {"url": "sm.webp", "width": 220, "height": 124}},
          "xs": {"gif": {"url": "xs.gif", "width": 90, "height": 50}}
        }
      },
      {"type": "ad", "width": 300, "height": 250, "content": "<div>ad</div>"},
      {"id": 102, "slug": "broken", "title": "Broken", "type": "gif"}
    ],
    "current_page": 2,
    "per_page": 3,
    "has_next": true,
    "meta": {"item_min_width": 50, "ad_max_resize_percent": 45}
  }
}`

func TestToDomainGifPage(t *testing.T) {
	var env Envelope[GifItem]
	require.NoError(t, json.Unmarshal([]byte(gifPage), &env))

	page := ToDomain(env)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.PerPage)
	assert.True(t, page.HasNext)
	assert.Equal(t, GridMeta{ItemMinWidth: 50, AdMaxResizePercent: 45}, page.GridMeta)
	require.Len(t, page.Items, 3)

	gif := page.Items[0]
	assert.Equal(t, 101, gif.ID)
	assert.Equal(t, TypeGif, gif.Type)
	require.NotNil(t, gif.BlurPreview)
	assert.Equal(t, "data:image/jpeg;base64,AAA", *gif.BlurPreview)
	require.NotNil(t, gif.HD)
	require.NotNil(t, gif.HD.MP4)
	assert.Equal(t, "hd.mp4", gif.HD.MP4.URL)
	assert.Nil(t, gif.MD)
	require.NotNil(t, gif.SM)
	assert.Nil(t, gif.SM.MP4)
	assert.Nil(t, gif.XS, "tier without webp is dropped")
	assert.Equal(t, "sm.gif", gif.PreviewFile().GIF.URL)
	assert.Equal(t, "hd.gif", gif.MediaFile().GIF.URL)

	ad := page.Items[1]
	assert.Equal(t, TypeAd, ad.Type)
	assert.Equal(t, -5, ad.ID, "ads are numbered from their feed position")
	require.NotNil(t, ad.Ad)
	assert.Equal(t, AdContentProperties{Width: 300, Height: 250, Content: "<div>ad</div>"}, *ad.Ad)

	broken := page.Items[2]
	assert.Equal(t, 102, broken.ID)
	assert.False(t, broken.HasFile())
}

func TestToDomainStickerType(t *testing.T) {
	body := `{"result":true,"data":{"data":[{"id":5,"slug":"s","title":"t","type":"sticker",
		"file":{"md":{"gif":{"url":"a","width":1,"height":1},"webp":{"url":"b","width":1,"height":1}}}}],
		"current_page":1,"per_page":24,"has_next":false,"meta":{"item_min_width":0,"ad_max_resize_percent":0}}}`

	var env Envelope[StickerItem]
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	page := ToDomain(env)
	require.Len(t, page.Items, 1)
	assert.Equal(t, TypeSticker, page.Items[0].Type)
	assert.NotNil(t, page.Items[0].MD)
}

func TestToDomainClipPage(t *testing.T) {
	body := `{"result":true,"data":{"data":[
		{"id":9,"url":"https://klipy.co/clips/x","slug":"x","title":"Clip","type":"clip",
		 "file":{"mp4":"x.mp4","gif":"x.gif","webp":"x.webp"},
		 "file_meta":{"mp4":{"width":640,"height":360},"gif":{"width":320,"height":180},"webp":{"width":320,"height":180}}},
		{"id":10,"slug":"y","title":"No file","type":"clip"},
		{"type":"ad","width":320,"height":50,"content":"<ad/>"}
	],"current_page":1,"per_page":24,"has_next":false,"meta":{"item_min_width":50,"ad_max_resize_percent":45}}}`

	var env Envelope[ClipItem]
	require.NoError(t, json.Unmarshal([]byte(body), &env))

	page := ToDomain(env)
	require.Len(t, page.Items, 3)

	clip := page.Items[0]
	assert.Equal(t, TypeClip, clip.Type)
	require.NotNil(t, clip.Single)
	assert.Equal(t, FileVariant{URL: "x.gif", Width: 320, Height: 180}, clip.Single.GIF)
	require.NotNil(t, clip.Single.MP4)
	assert.Equal(t, 640, clip.Single.MP4.Width)
	assert.Same(t, clip.Single, clip.PreviewFile())

	assert.False(t, page.Items[1].HasFile())
	assert.Equal(t, -3, page.Items[2].ID)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	var env Envelope[GifItem]
	require.NoError(t, json.Unmarshal([]byte(gifPage), &env))

	encoded, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope[GifItem]
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	before, after := ToDomain(env), ToDomain(decoded)
	assert.Equal(t, before.CurrentPage, after.CurrentPage)
	assert.Equal(t, before.PerPage, after.PerPage)
	assert.Equal(t, before.HasNext, after.HasNext)
	assert.Equal(t, len(before.Items), len(after.Items))
	assert.Equal(t, before.Items, after.Items)
}

func TestCategoriesDecoding(t *testing.T) {
	var objects Categories
	require.NoError(t, json.Unmarshal([]byte(`{"result":true,"data":{"categories":[
		{"category":"Happy","query":"happy","preview_url":"happy.gif"},
		{"name":"Sad"}
	]}}`), &objects))
	assert.Equal(t, Categories{
		{Name: "Happy", Query: "happy", PreviewURL: "happy.gif"},
		{Name: "Sad", Query: "Sad"},
	}, objects)

	var names Categories
	require.NoError(t, json.Unmarshal([]byte(`{"result":true,"data":["love","wow"]}`), &names))
	assert.Equal(t, Categories{{Name: "love", Query: "love"}, {Name: "wow", Query: "wow"}}, names)

	var bad Categories
	assert.Error(t, json.Unmarshal([]byte(`{"result":true,"data":{"items":1}}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"result":true,"data":[1,2]}`), &bad))
}
