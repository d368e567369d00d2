package score

import (
	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// Size thresholds for the byte-buffer heuristics. These are policy
// values carried over unchanged; they are deliberately coarse and do
// not parse real image metadata.
const (
	possibleAIMaxKB   = 30
	metadataRiskMinMB = 5
	reusedImageMaxKB  = 50
	kilobyte          = 1024
	megabyte          = 1024 * 1024
)

// AnalyzeMetadata derives a metadata signal purely from buffer size.
func AnalyzeMetadata(buf []byte) analysis.MetadataSignal {
	if len(buf) == 0 {
		return analysis.MetadataSignal{
			HasMetadata:  false,
			PossibleAI:   false,
			MetadataRisk: analysis.RiskLow,
		}
	}

	risk := analysis.RiskLow
	if len(buf) > metadataRiskMinMB*megabyte {
		risk = analysis.RiskMedium
	}

	return analysis.MetadataSignal{
		HasMetadata:  true,
		PossibleAI:   len(buf) < possibleAIMaxKB*kilobyte,
		MetadataRisk: risk,
	}
}

// TraceImage derives a reuse signal purely from buffer size.
func TraceImage(buf []byte) analysis.TracingSignal {
	if len(buf) == 0 {
		return analysis.TracingSignal{
			ReusedLikelihood: analysis.RiskLow,
			Reason:           "Empty image buffer",
		}
	}

	if len(buf) < reusedImageMaxKB*kilobyte {
		return analysis.TracingSignal{
			ReusedLikelihood: analysis.RiskHigh,
			Reason:           "Small file size suggests potential reuse",
		}
	}

	return analysis.TracingSignal{
		ReusedLikelihood: analysis.RiskLow,
		Reason:           "File size indicates original content",
	}
}
