package safety

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrInvalidURL = errors.New("invalid url")

type URLClass string

const (
	URLSafe         URLClass = "safe"
	URLMostlySafe   URLClass = "mostly_safe"
	URLQuestionable URLClass = "questionable"
	URLSuspicious   URLClass = "suspicious"
	URLUnsafe       URLClass = "unsafe"
)

var knownSafeDomains = []string{
	"reddit.com", "twitter.com", "instagram.com",
	"pixiv.net", "deviantart.com", "artstation.com",
}

var suspiciousHostWords = []string{"xxx", "porn", "sex", "adult", "nude"}

var suspiciousTLD = regexp.MustCompile(`(?i)\.(xxx|adult|porn|sex)$`)

type URLChecks struct {
	HTTPS         bool `json:"https"`
	KnownSafe     bool `json:"known_safe"`
	Suspicious    bool `json:"suspicious"`
	SuspiciousTLD bool `json:"suspicious_tld"`
}

type URLAssessment struct {
	URL            string    `json:"url"`
	Domain         string    `json:"domain"`
	SafetyScore    int       `json:"safety_score"`
	Classification URLClass  `json:"classification"`
	Checks         URLChecks `json:"checks"`
}

// AssessURL scores a URL from its scheme and host alone; nothing is fetched.
// The score starts neutral at 50.
func AssessURL(raw string) (URLAssessment, error) {
	u, err := parseWebURL(raw)
	if err != nil {
		return URLAssessment{}, err
	}
	domain := strings.ToLower(u.Hostname())
	checks := URLChecks{
		HTTPS:         u.Scheme == "https",
		KnownSafe:     containsAny(domain, knownSafeDomains),
		Suspicious:    containsAny(domain, suspiciousHostWords),
		SuspiciousTLD: suspiciousTLD.MatchString(domain),
	}

	score := 50
	if checks.HTTPS {
		score += 10
	}
	if checks.KnownSafe {
		score += 30
	}
	if checks.Suspicious {
		score -= 40
	}
	if checks.SuspiciousTLD {
		score -= 30
	}
	score = clamp(score, 0, 100)

	return URLAssessment{
		URL:            raw,
		Domain:         domain,
		SafetyScore:    score,
		Classification: urlBand(score),
		Checks:         checks,
	}, nil
}

func urlBand(score int) URLClass {
	switch {
	case score >= 80:
		return URLSafe
	case score >= 60:
		return URLMostlySafe
	case score >= 40:
		return URLQuestionable
	case score >= 20:
		return URLSuspicious
	default:
		return URLUnsafe
	}
}

// ImageModeration is a URL-based verdict on an image. Pixel content is never
// inspected, so Basis is always "url".
type ImageModeration struct {
	ImageURL       string        `json:"image_url"`
	Safe           bool          `json:"safe"`
	Classification string        `json:"classification"`
	Reason         string        `json:"reason,omitempty"`
	Basis          string        `json:"basis"`
	URLSafety      URLAssessment `json:"url_safety"`
}

// ModerateImage blocks images whose URL assesses as unsafe.
func ModerateImage(raw string) (ImageModeration, error) {
	assessment, err := AssessURL(raw)
	if err != nil {
		return ImageModeration{}, err
	}
	m := ImageModeration{
		ImageURL:       raw,
		Safe:           true,
		Classification: "safe",
		Basis:          "url",
		URLSafety:      assessment,
	}
	if assessment.Classification == URLUnsafe {
		m.Safe = false
		m.Classification = "blocked"
		m.Reason = "URL flagged as unsafe"
	}
	return m, nil
}

func parseWebURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return u, nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
