package listing

import (
	"html"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Entry is one listing block as found in markup. Any field except ID and
// Link may be empty.
type Entry struct {
	ID       string
	Link     string
	Title    string
	Duration string
	Thumb    string
	Meta     string
}

// Extractor pulls entries out of a parsed listing page. Implementations must
// tolerate markup drift by returning fewer entries, never by failing.
type Extractor interface {
	Extract(doc *goquery.Document, page *url.URL, limit int) []Entry
}

// Selectors are CSS selectors evaluated relative to each block.
type Selectors struct {
	Block    string
	Link     string
	Title    string
	Duration string
	Thumb    string
	Meta     string
}

// SelectorExtractor is the CSS selector Extractor.
type SelectorExtractor struct {
	sel    Selectors
	policy *bluemonday.Policy
}

func NewSelectorExtractor(sel Selectors) *SelectorExtractor {
	return &SelectorExtractor{sel: sel, policy: bluemonday.StrictPolicy()}
}

// Extract walks the item blocks in document order. An item linked from more
// than one block, such as a featured strip and the main grid, is kept once.
func (e *SelectorExtractor) Extract(doc *goquery.Document, page *url.URL, limit int) []Entry {
	entries := make([]Entry, 0, limit)
	seen := make(map[string]struct{}, limit)
	doc.Find(e.sel.Block).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		link := block.Find(e.sel.Link).First()
		href, ok := resolve(page, link.AttrOr("href", ""))
		if !ok {
			return true
		}
		id := idFromLink(href)
		if id == "" {
			return true
		}
		if _, dup := seen[id]; dup {
			return true
		}
		seen[id] = struct{}{}

		entry := Entry{ID: id, Link: href.String()}
		if e.sel.Title != "" {
			entry.Title = e.text(block.Find(e.sel.Title).First())
		}
		if entry.Title == "" {
			entry.Title = e.plain(link.AttrOr("title", ""))
		}
		if e.sel.Duration != "" {
			entry.Duration = e.text(block.Find(e.sel.Duration).First())
		}
		if e.sel.Meta != "" {
			entry.Meta = e.text(block.Find(e.sel.Meta).First())
		}
		if e.sel.Thumb != "" {
			img := block.Find(e.sel.Thumb).First()
			raw := img.AttrOr("data-src", "")
			if raw == "" {
				raw = img.AttrOr("src", "")
			}
			if u, ok := resolve(page, raw); ok {
				entry.Thumb = u.String()
			}
		}
		entries = append(entries, entry)
		return len(entries) < limit
	})
	return entries
}

// text returns the sanitized visible text of s.
func (e *SelectorExtractor) text(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	inner, err := s.Html()
	if err != nil {
		return ""
	}
	return e.plain(inner)
}

func (e *SelectorExtractor) plain(fragment string) string {
	stripped := html.UnescapeString(e.policy.Sanitize(fragment))
	return strings.Join(strings.Fields(stripped), " ")
}

// resolve makes raw absolute against page and accepts only http(s) links.
func resolve(page *url.URL, raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	u := page.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// idFromLink takes the last non-empty path segment of the item link.
func idFromLink(u *url.URL) string {
	p := strings.TrimRight(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
