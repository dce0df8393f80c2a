package safety

// Warning is a user-facing content notice.
type Warning struct {
	Type           string    `json:"type"`
	Level          RiskLevel `json:"level"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

func Recommendation(c Classification) string {
	switch c {
	case ClassNSFW:
		return "Content contains explicit adult material. Age verification required."
	case ClassMature:
		return "Content may be inappropriate for minors. Proceed with caution."
	case ClassSuggestive:
		return "Content may contain mild adult themes. Consider user discretion."
	case ClassSafe:
		return "Content appears safe for general audiences."
	default:
		return "Content classification unclear. Review manually."
	}
}

// Warnings derives notices from a classification. The result is never nil.
func Warnings(r Result) []Warning {
	warnings := []Warning{}
	switch r.Classification {
	case ClassNSFW:
		warnings = append(warnings, Warning{
			Type:           "explicit_content",
			Level:          RiskHigh,
			Message:        "Contains explicit adult content",
			Recommendation: "18+ only",
		})
	case ClassMature:
		warnings = append(warnings, Warning{
			Type:           "mature_content",
			Level:          RiskMedium,
			Message:        "Contains mature themes",
			Recommendation: "Consider user discretion",
		})
	}
	if r.RiskLevel == RiskHigh {
		warnings = append(warnings, Warning{
			Type:           "high_risk",
			Level:          RiskHigh,
			Message:        "High risk content detected",
			Recommendation: "Additional review recommended",
		})
	}
	return warnings
}
