package aggregate

import (
	"context"
	"strings"
	"unicode/utf8"

	"contentgw/internal/cache"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/safety"
	"contentgw/internal/source"
)

const (
	queryClassifyText  = "classify_text"
	queryClassifyURL   = "classify_url"
	queryModerateImage = "moderate_image"

	// safetySource labels safety operations in logs and metrics.
	safetySource = "safety"

	MaxTextLength = 10000
)

// ContentAnalysis combines the text verdict with an optional image verdict.
type ContentAnalysis struct {
	OverallSafe bool                    `json:"overall_safe"`
	OverallRisk safety.RiskLevel        `json:"overall_risk"`
	Text        safety.Result           `json:"text_analysis"`
	Image       *safety.ImageModeration `json:"image_analysis,omitempty"`
	Warnings    []safety.Warning        `json:"warnings"`
}

func never[T any](T) bool { return false }

// ClassifyText scores text and, when imageURL is set, moderates the image
// too. An unsafe image makes the whole analysis unsafe.
func (s *Service) ClassifyText(ctx context.Context, identity, text, imageURL string) Result[ContentAnalysis] {
	if strings.TrimSpace(text) == "" {
		return reject[ContentAnalysis](ctx, s, queryClassifyText, safetySource, source.InvalidInput(safetySource, "text is required"))
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return reject[ContentAnalysis](ctx, s, queryClassifyText, safetySource, source.InvalidInput(safetySource, "text exceeds 10000 characters"))
	}
	var image *safety.ImageModeration
	if imageURL != "" {
		m, err := safety.ModerateImage(imageURL)
		if err != nil {
			return reject[ContentAnalysis](ctx, s, queryClassifyText, safetySource, source.InvalidInput(safetySource, "image url must be an absolute http(s) URL"))
		}
		image = &m
	}

	// Text is hashed into the key, never stored in it.
	params := cache.Params{"text": text}.Set("image", imageURL)
	return execute(ctx, s, s.safetyCall(queryClassifyText, params, identity),
		func(context.Context) (ContentAnalysis, error) {
			return analyze(text, image), nil
		}, never[ContentAnalysis])
}

func analyze(text string, image *safety.ImageModeration) ContentAnalysis {
	r := safety.Classify(text)
	a := ContentAnalysis{
		OverallSafe: true,
		OverallRisk: safety.RiskLow,
		Text:        r,
		Image:       image,
		Warnings:    r.Warnings,
	}
	switch r.Classification {
	case safety.ClassNSFW:
		a.OverallSafe = false
		a.OverallRisk = safety.RiskHigh
	case safety.ClassMature:
		a.OverallRisk = safety.RiskMedium
	}
	if image != nil && !image.Safe {
		a.OverallSafe = false
		a.OverallRisk = safety.RiskHigh
	}
	return a
}

// ClassifyURL assesses a URL from its scheme and host.
func (s *Service) ClassifyURL(ctx context.Context, identity, rawURL string) Result[safety.URLAssessment] {
	assessment, err := safety.AssessURL(rawURL)
	if err != nil {
		return reject[safety.URLAssessment](ctx, s, queryClassifyURL, safetySource, source.InvalidInput(safetySource, "url must be an absolute http(s) URL"))
	}
	params := cache.Params{}.Set("url", rawURL)
	return execute(ctx, s, s.safetyCall(queryClassifyURL, params, identity),
		func(context.Context) (safety.URLAssessment, error) {
			return assessment, nil
		}, never[safety.URLAssessment])
}

func (s *Service) ModerateImage(ctx context.Context, identity, imageURL string) Result[safety.ImageModeration] {
	verdict, err := safety.ModerateImage(imageURL)
	if err != nil {
		return reject[safety.ImageModeration](ctx, s, queryModerateImage, safetySource, source.InvalidInput(safetySource, "image url must be an absolute http(s) URL"))
	}
	params := cache.Params{}.Set("url", imageURL)
	return execute(ctx, s, s.safetyCall(queryModerateImage, params, identity),
		func(context.Context) (safety.ImageModeration, error) {
			return verdict, nil
		}, never[safety.ImageModeration])
}

func (s *Service) safetyCall(operation string, params cache.Params, identity string) call {
	return call{
		operation: operation,
		source:    safetySource,
		key:       cache.NewKey(operation, params),
		identity:  identity,
		policy:    models.PolicyClassify,
		admitter:  s.admitterFor(models.PolicyClassify),
		ttl:       s.safetyTTL,
	}
}
