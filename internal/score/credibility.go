// Package score holds the heuristic scorers and the fusion policy that
// turn independent credibility signals into a single verdict.
package score

import (
	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// Two verdict scales are in play and kept distinct on purpose: the
// image-credibility heuristic maps its own score at >=70/>=40, while
// final fusion and the combined image score map at >=75/>=40.
// Unifying them would change observable behavior.
const (
	heuristicReliableMin = 70
	fusionReliableMin    = 75
	questionableMin      = 40
)

// ImageCredibility scores an image from its heuristic signals and the
// service-reported AI-generation probability. Starts at 100, subtracts
// for metadata and reuse risk, then applies the AI-probability ceiling.
func ImageCredibility(meta analysis.MetadataSignal, tracing analysis.TracingSignal, aiProbability int) (int, analysis.Verdict) {
	score := 100

	switch meta.MetadataRisk {
	case analysis.RiskMedium:
		score -= 20
	case analysis.RiskHigh:
		score -= 40
	}

	switch tracing.ReusedLikelihood {
	case analysis.RiskMedium:
		score -= 20
	case analysis.RiskHigh:
		score -= 40
	}

	// The ceiling wins over the subtractive signals: a likely-AI image
	// can never score above the cap no matter how clean it looks.
	switch {
	case aiProbability >= 80:
		score = min(score, 20)
	case aiProbability >= 50:
		score = min(score, 50)
	case aiProbability >= 20:
		score -= 15
	}

	score = clamp(score)
	return score, heuristicVerdict(score)
}

// CombinedImageVerdict re-derives the verdict for a combined image score.
// Thresholds on the number are the single source of truth; this
// overrides whatever verdict strings the individual sources produced.
func CombinedImageVerdict(score int) analysis.Verdict {
	return fusionVerdict(score)
}

func heuristicVerdict(score int) analysis.Verdict {
	switch {
	case score >= heuristicReliableMin:
		return analysis.VerdictReliable
	case score >= questionableMin:
		return analysis.VerdictQuestionable
	default:
		return analysis.VerdictHighRisk
	}
}

func fusionVerdict(score int) analysis.Verdict {
	switch {
	case score >= fusionReliableMin:
		return analysis.VerdictReliable
	case score >= questionableMin:
		return analysis.VerdictQuestionable
	default:
		return analysis.VerdictHighRisk
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
