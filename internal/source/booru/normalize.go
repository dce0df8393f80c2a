package booru

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"contentgw/internal/source"
)

type post struct {
	ID         flexInt `json:"id"`
	Tags       string  `json:"tags"`
	Score      flexInt `json:"score"`
	Rating     string  `json:"rating"`
	Width      flexInt `json:"width"`
	Height     flexInt `json:"height"`
	FileURL    string  `json:"file_url"`
	SampleURL  string  `json:"sample_url"`
	PreviewURL string  `json:"preview_url"`
	Image      string  `json:"image"`
	Source     string  `json:"source"`
	CreatedAt  string  `json:"created_at"`
	Owner      string  `json:"owner"`
	CreatorID  flexInt `json:"creator_id"`
	FileSize   flexInt `json:"file_size"`
}

// flexInt accepts both JSON numbers and numeric strings; hosts disagree.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*f = flexInt(n)
	return nil
}

// decodePosts accepts a bare array, an object wrapping the array under
// "post", or an empty body (no results).
func decodePosts(body []byte) ([]post, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	switch body[0] {
	case '[':
		var posts []post
		if err := json.Unmarshal(body, &posts); err != nil {
			return nil, err
		}
		return posts, nil
	case '{':
		var wrapped struct {
			Post []post `json:"post"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Post, nil
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", body[0])
	}
}

func isVideo(name string) bool {
	name = strings.ToLower(name)
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return strings.HasSuffix(name, ".webm") || strings.HasSuffix(name, ".mp4")
}

func (a *Adapter) normalize(p post) source.Item {
	id := strconv.FormatInt(int64(p.ID), 10)
	item := source.NewItem(a.cfg.ID, id)
	item.URL = a.cfg.SiteURL + "/index.php?page=post&s=view&id=" + id
	item.Tags = source.SplitTags(p.Tags)
	score := float64(p.Score)
	item.Score = &score

	mediaType := source.MediaImage
	if isVideo(p.FileURL) || isVideo(p.Image) {
		mediaType = source.MediaVideo
	}
	item.AddMedia(mediaType, p.FileURL)
	item.AddMedia(source.MediaSample, p.SampleURL)
	item.AddMedia(source.MediaThumbnail, p.PreviewURL)

	item.SetExtra("media_type", mediaType)
	item.SetExtra("rating", p.Rating)
	if p.Width > 0 && p.Height > 0 {
		item.SetExtra("width", int(p.Width))
		item.SetExtra("height", int(p.Height))
	}
	if p.FileSize > 0 {
		item.SetExtra("file_size", int(p.FileSize))
	}
	item.SetExtra("created_at", p.CreatedAt)
	item.SetExtra("origin", p.Source)
	item.SetExtra("owner", p.Owner)
	if p.CreatorID > 0 {
		item.SetExtra("creator_id", int(p.CreatorID))
	}
	if a.cfg.Name != "" {
		item.SetExtra("site", a.cfg.Name)
	}
	return item
}
