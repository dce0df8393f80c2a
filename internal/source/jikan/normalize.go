package jikan

import (
	"strconv"

	"contentgw/internal/source"
)

type listResponse struct {
	Data []anime `json:"data"`
}

type singleResponse struct {
	Data anime `json:"data"`
}

type anime struct {
	MalID        int          `json:"mal_id"`
	URL          string       `json:"url"`
	Title        string       `json:"title"`
	TitleEnglish string       `json:"title_english"`
	TitleJapan   string       `json:"title_japanese"`
	Synopsis     string       `json:"synopsis"`
	Type         string       `json:"type"`
	Episodes     *int         `json:"episodes"`
	Duration     string       `json:"duration"`
	Rating       string       `json:"rating"`
	Score        *float64     `json:"score"`
	Rank         *int         `json:"rank"`
	Popularity   *int         `json:"popularity"`
	Members      *int         `json:"members"`
	Status       string       `json:"status"`
	Season       string       `json:"season"`
	Year         *int         `json:"year"`
	Images       images       `json:"images"`
	Trailer      trailer      `json:"trailer"`
	Genres       []namedEntry `json:"genres"`
	Themes       []namedEntry `json:"themes"`
	Demographics []namedEntry `json:"demographics"`
	Studios      []namedEntry `json:"studios"`
}

type images struct {
	JPG struct {
		ImageURL      string `json:"image_url"`
		SmallImageURL string `json:"small_image_url"`
		LargeImageURL string `json:"large_image_url"`
	} `json:"jpg"`
	WebP struct {
		ImageURL string `json:"image_url"`
	} `json:"webp"`
}

type trailer struct {
	URL      string `json:"url"`
	EmbedURL string `json:"embed_url"`
}

type namedEntry struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

func normalizeAll(data []anime) []source.Item {
	items := make([]source.Item, 0, len(data))
	for _, a := range data {
		if a.MalID == 0 {
			continue
		}
		items = append(items, normalize(a))
	}
	return items
}

func normalize(a anime) source.Item {
	item := source.NewItem(ID, strconv.Itoa(a.MalID))
	item.Title = a.Title
	if item.Title == "" {
		item.Title = a.TitleEnglish
	}
	item.Description = a.Synopsis
	item.URL = a.URL
	item.Status = a.Status
	item.Score = a.Score

	cover := a.Images.JPG.LargeImageURL
	if cover == "" {
		cover = a.Images.JPG.ImageURL
	}
	item.AddMedia(source.MediaCover, cover)
	item.AddMedia(source.MediaThumbnail, a.Images.JPG.SmallImageURL)
	trailerURL := a.Trailer.URL
	if trailerURL == "" {
		trailerURL = a.Trailer.EmbedURL
	}
	item.AddMedia(source.MediaTrailer, trailerURL)

	tags := make([]string, 0, len(a.Genres)+len(a.Themes)+len(a.Demographics))
	for _, group := range [][]namedEntry{a.Genres, a.Themes, a.Demographics} {
		for _, e := range group {
			tags = append(tags, e.Name)
		}
	}
	item.Tags = source.NormalizeTags(tags)

	item.SetExtra("type", a.Type)
	item.SetExtra("episodes", a.Episodes)
	item.SetExtra("duration", a.Duration)
	item.SetExtra("rating", a.Rating)
	item.SetExtra("rank", a.Rank)
	item.SetExtra("popularity", a.Popularity)
	item.SetExtra("members", a.Members)
	item.SetExtra("season", a.Season)
	item.SetExtra("year", a.Year)
	item.SetExtra("title_english", a.TitleEnglish)
	item.SetExtra("title_japanese", a.TitleJapan)
	if len(a.Studios) > 0 {
		studios := make([]string, 0, len(a.Studios))
		for _, s := range a.Studios {
			studios = append(studios, s.Name)
		}
		item.SetExtra("studios", studios)
	}
	return item
}
