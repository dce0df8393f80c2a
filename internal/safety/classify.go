// Package safety scores content for adult material with fixed keyword
// heuristics. Everything here is pure: no I/O, no clock, no randomness.
package safety

import "strings"

type Classification string

const (
	ClassSafe       Classification = "safe"
	ClassSuggestive Classification = "suggestive"
	ClassMature     Classification = "mature"
	ClassNSFW       Classification = "nsfw"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	riskWeight       = 20
	mitigatingWeight = 10
)

// riskKeywords raise the NSFW score. Matching is substring containment, so
// short entries like "ass" also hit inside longer words.
var riskKeywords = []string{
	"adult", "mature", "explicit", "nsfw", "nude", "naked",
	"sexual", "erotic", "porn", "xxx", "sex",
	"breast", "ass", "genitals", "penis", "vagina",
	"intercourse", "oral", "masturbation", "orgasm",
}

// mitigatingKeywords suggest an artistic, educational or fandom context.
var mitigatingKeywords = []string{
	"art", "anime", "manga", "character", "design",
	"fashion", "style", "cosplay", "modeling",
	"health", "medical", "educational", "science",
}

type Signals struct {
	Risk       []string `json:"risk"`
	Mitigating []string `json:"mitigating"`
}

// Result is the outcome of Classify. SafetyScore is clamped to [0, 100];
// Classification and RiskLevel are derived from the unclamped NSFWScore.
type Result struct {
	Classification Classification `json:"classification"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	SafetyScore    int            `json:"safety_score"`
	NSFWScore      int            `json:"nsfw_score"`
	SafeScore      int            `json:"safe_score"`
	Signals        Signals        `json:"signals"`
	TextLength     int            `json:"text_length"`
	Recommendation string         `json:"recommendation"`
	Warnings       []Warning      `json:"warnings"`
}

// Classify scores text against the keyword sets.
//
// Bands, evaluated on NSFWScore in this order:
//  1. > 60 nsfw, high risk
//  2. > 30 mature, medium risk
//  3. > 10 suggestive, low risk
//  4. otherwise safe, low risk
func Classify(text string) Result {
	lower := strings.ToLower(text)
	risk := matches(lower, riskKeywords)
	mitigating := matches(lower, mitigatingKeywords)

	nsfwScore := riskWeight * len(risk)
	safeScore := mitigatingWeight * len(mitigating)

	class, level := band(nsfwScore)
	r := Result{
		Classification: class,
		RiskLevel:      level,
		SafetyScore:    clamp(100-nsfwScore+safeScore, 0, 100),
		NSFWScore:      nsfwScore,
		SafeScore:      safeScore,
		Signals:        Signals{Risk: risk, Mitigating: mitigating},
		TextLength:     len([]rune(text)),
		Recommendation: Recommendation(class),
	}
	r.Warnings = Warnings(r)
	return r
}

func band(nsfwScore int) (Classification, RiskLevel) {
	switch {
	case nsfwScore > 60:
		return ClassNSFW, RiskHigh
	case nsfwScore > 30:
		return ClassMature, RiskMedium
	case nsfwScore > 10:
		return ClassSuggestive, RiskLow
	default:
		return ClassSafe, RiskLow
	}
}

func matches(lower string, keywords []string) []string {
	found := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return found
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// HasRisk reports whether any risk keyword matched.
func (r Result) HasRisk() bool {
	return len(r.Signals.Risk) > 0
}

// RequiresAgeVerification is true for content that should sit behind the gate.
func (r Result) RequiresAgeVerification() bool {
	return r.Classification == ClassNSFW || r.Classification == ClassMature
}
