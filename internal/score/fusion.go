package score

import (
	"math"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// Weights for fusing text and image scores when both branches produced
// a direct credibility score.
const (
	textWeight  = 0.6
	imageWeight = 0.4
)

// Flat penalties applied when the image branch carries only secondary
// signals instead of a direct score.
const (
	reusePenalty        = 25
	metadataRiskPenalty = 15
)

// Final fuses the two branch outcomes into the request-level result.
// Baseline is the text score (100 when the text branch was skipped or
// carries no score). An image with a direct score is averaged in at
// 0.6/0.4 when text is present, or used as-is when text was skipped.
// An image without a direct score applies flat penalties from its
// secondary signals instead.
func Final(text *analysis.TextOutcome, image *analysis.ImageOutcome) analysis.FinalResult {
	textSkipped := text == nil || text.Status == analysis.StatusSkipped

	final := 100
	if !textSkipped && text.CredibilityScore != nil {
		final = *text.CredibilityScore
	}

	if !imageSkipped(image) {
		switch {
		case image.CredibilityScore != nil && !textSkipped:
			textScore := 100
			if text.CredibilityScore != nil {
				textScore = *text.CredibilityScore
			}
			final = int(math.Round(float64(textScore)*textWeight + float64(*image.CredibilityScore)*imageWeight))
		case image.CredibilityScore != nil:
			final = *image.CredibilityScore
		default:
			if reuseIndicated(image) {
				final -= reusePenalty
			}
			if metadataRiskIndicated(image) {
				final -= metadataRiskPenalty
			}
		}
	}

	final = clamp(final)
	return analysis.FinalResult{
		FinalScore:   final,
		FinalVerdict: fusionVerdict(final),
	}
}

func imageSkipped(image *analysis.ImageOutcome) bool {
	return image == nil || image.Status == analysis.StatusSkipped
}

func reuseIndicated(image *analysis.ImageOutcome) bool {
	if image.Reused {
		return true
	}
	return image.Tracing != nil && image.Tracing.ReusedLikelihood == analysis.RiskHigh
}

func metadataRiskIndicated(image *analysis.ImageOutcome) bool {
	if image.Metadata == nil {
		return false
	}
	if image.Metadata.PossibleAI {
		return true
	}
	return image.Metadata.MetadataRisk != "" && image.Metadata.MetadataRisk != analysis.RiskLow
}
