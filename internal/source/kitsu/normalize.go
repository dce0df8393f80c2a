package kitsu

import (
	"strconv"

	"contentgw/internal/source"
)

const siteURL = "https://kitsu.io/anime/"

type listDocument struct {
	Data     []resource `json:"data"`
	Included []included `json:"included"`
}

type singleDocument struct {
	Data     resource   `json:"data"`
	Included []included `json:"included"`
}

type resource struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Attributes    attributes    `json:"attributes"`
	Relationships relationships `json:"relationships"`
}

type attributes struct {
	Slug           string            `json:"slug"`
	Titles         map[string]string `json:"titles"`
	CanonicalTitle string            `json:"canonicalTitle"`
	Synopsis       string            `json:"synopsis"`
	AverageRating  *string           `json:"averageRating"`
	RatingRank     *int              `json:"ratingRank"`
	PopularityRank *int              `json:"popularityRank"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	Status         string            `json:"status"`
	Subtype        string            `json:"subtype"`
	EpisodeCount   *int              `json:"episodeCount"`
	EpisodeLength  *int              `json:"episodeLength"`
	AgeRating      string            `json:"ageRating"`
	AgeRatingGuide string            `json:"ageRatingGuide"`
	NSFW           bool              `json:"nsfw"`
	PosterImage    *imageSet         `json:"posterImage"`
	CoverImage     *imageSet         `json:"coverImage"`
}

type imageSet struct {
	Tiny     string `json:"tiny"`
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Original string `json:"original"`
}

func (s *imageSet) best() string {
	if s == nil {
		return ""
	}
	for _, u := range []string{s.Large, s.Medium, s.Original, s.Small, s.Tiny} {
		if u != "" {
			return u
		}
	}
	return ""
}

type relationships struct {
	Categories struct {
		Data []resourceRef `json:"data"`
	} `json:"categories"`
}

type resourceRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type included struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		Title string `json:"title"`
		Name  string `json:"name"`
	} `json:"attributes"`
}

// indexIncluded maps "type/id" of side-loaded resources to their display name.
func indexIncluded(inc []included) map[string]string {
	names := make(map[string]string, len(inc))
	for _, r := range inc {
		name := r.Attributes.Title
		if name == "" {
			name = r.Attributes.Name
		}
		if name != "" {
			names[r.Type+"/"+r.ID] = name
		}
	}
	return names
}

func normalizeAll(data []resource, inc []included) []source.Item {
	names := indexIncluded(inc)
	items := make([]source.Item, 0, len(data))
	for _, r := range data {
		if r.ID == "" {
			continue
		}
		items = append(items, normalize(r, names))
	}
	return items
}

func normalize(r resource, names map[string]string) source.Item {
	attr := r.Attributes
	item := source.NewItem(ID, r.ID)
	item.Title = preferredTitle(attr)
	item.Description = attr.Synopsis
	item.Status = attr.Status
	if attr.Slug != "" {
		item.URL = siteURL + attr.Slug
	}
	if attr.AverageRating != nil {
		if score, err := strconv.ParseFloat(*attr.AverageRating, 64); err == nil {
			item.Score = &score
		}
	}

	item.AddMedia(source.MediaPoster, attr.PosterImage.best())
	item.AddMedia(source.MediaCover, attr.CoverImage.best())

	tags := make([]string, 0, len(r.Relationships.Categories.Data))
	for _, ref := range r.Relationships.Categories.Data {
		if name, ok := names[ref.Type+"/"+ref.ID]; ok {
			tags = append(tags, name)
		}
	}
	item.Tags = source.NormalizeTags(tags)

	item.SetExtra("subtype", attr.Subtype)
	item.SetExtra("episode_count", attr.EpisodeCount)
	item.SetExtra("episode_length", attr.EpisodeLength)
	if attr.EpisodeCount != nil && attr.EpisodeLength != nil {
		item.SetExtra("total_length", (*attr.EpisodeCount)*(*attr.EpisodeLength))
	}
	item.SetExtra("rating_rank", attr.RatingRank)
	item.SetExtra("popularity_rank", attr.PopularityRank)
	item.SetExtra("start_date", attr.StartDate)
	item.SetExtra("end_date", attr.EndDate)
	item.SetExtra("age_rating", attr.AgeRating)
	item.SetExtra("age_rating_guide", attr.AgeRatingGuide)
	if attr.NSFW {
		item.SetExtra("nsfw", true)
	}
	if len(attr.Titles) > 0 {
		item.SetExtra("titles", attr.Titles)
	}
	return item
}

// preferredTitle picks English, then romanized Japanese, then the canonical title.
func preferredTitle(attr attributes) string {
	for _, k := range []string{"en", "en_jp"} {
		if t := attr.Titles[k]; t != "" {
			return t
		}
	}
	return attr.CanonicalTitle
}
