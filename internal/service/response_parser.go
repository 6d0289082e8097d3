package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

// ParseAnswerResponse extracts the display text, confidence and answerability
// from raw model output. Malformed or missing annotations fall back to defaults.
func ParseAnswerResponse(raw string) domain.ParsedAnswer {
	parsed := domain.ParsedAnswer{
		Text:          strings.TrimSpace(raw),
		Confidence:    domain.DefaultConfidence,
		Answerability: domain.AnswerabilityYes,
	}

	if idx := strings.LastIndex(raw, ConfidenceMarker); idx >= 0 {
		if score, ok := parseConfidence(raw[idx+len(ConfidenceMarker):]); ok {
			parsed.Confidence = score
		}
		parsed.Text = strings.TrimSpace(raw[:idx])
	}

	if strings.Contains(raw, InsufficientDataSentinel) {
		parsed.Answerability = domain.AnswerabilityPartial
	}

	return parsed
}

// parseConfidence reads the first token of the trailing segment as a score in [0, 1]
func parseConfidence(segment string) (float64, bool) {
	fields := strings.Fields(segment)
	if len(fields) == 0 {
		return 0, false
	}
	score, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(score) {
		return 0, false
	}
	return math.Max(0, math.Min(1, score)), true
}
