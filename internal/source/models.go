package source

import "errors"

// Family distinguishes structured APIs from scraped documents.
type Family string

const (
	FamilyAPI    Family = "api"
	FamilyScrape Family = "scrape"
)

// MediaRef kinds.
const (
	MediaCover     = "cover"
	MediaPoster    = "poster"
	MediaThumbnail = "thumbnail"
	MediaImage     = "image"
	MediaSample    = "sample"
	MediaVideo     = "video"
	MediaTrailer   = "trailer"
)

type MediaRef struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// Item is the normalized shape every adapter produces. Fields an upstream
// does not provide stay at their zero value; nothing is invented. Extra holds
// source-specific fields under a separate bag so they never collide with the
// common ones.
type Item struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	MediaRefs   []MediaRef     `json:"media_refs"`
	Tags        []string       `json:"tags"`
	Score       *float64       `json:"score,omitempty"`
	Status      string         `json:"status,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Validate checks the fields every item must carry.
func (i *Item) Validate() error {
	if i.ID == "" {
		return errors.New("item id is required")
	}
	if i.Source == "" {
		return errors.New("item source is required")
	}
	return nil
}

// SetExtra records a source-specific field, skipping zero values.
func (i *Item) SetExtra(name string, value any) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		if v == "" {
			return
		}
	case *int:
		if v == nil {
			return
		}
		value = *v
	case *string:
		if v == nil || *v == "" {
			return
		}
		value = *v
	}
	if i.Extra == nil {
		i.Extra = make(map[string]any)
	}
	i.Extra[name] = value
}

// AddMedia appends a media reference when url is non-empty.
func (i *Item) AddMedia(kind, url string) {
	if url == "" {
		return
	}
	i.MediaRefs = append(i.MediaRefs, MediaRef{Kind: kind, URL: url})
}

// NewItem returns an item with empty, non-nil collections so the JSON shape
// is stable across sources.
func NewItem(source, id string) Item {
	return Item{
		ID:        id,
		Source:    source,
		MediaRefs: []MediaRef{},
		Tags:      []string{},
	}
}

// SearchQuery is the adapter-level search request. Page is 1-based; adapters
// translate it to whatever their upstream uses.
type SearchQuery struct {
	Query   string
	Page    int
	Limit   int
	Filters map[string]string
}
