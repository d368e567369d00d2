package analysis

// Verdict is the closed set of credibility labels.
type Verdict string

const (
	VerdictReliable     Verdict = "Reliable"
	VerdictQuestionable Verdict = "Questionable"
	VerdictHighRisk     Verdict = "High Risk"
)

// NormalizeVerdict coerces an untrusted label into the closed set.
// Anything that is not exactly one of the three verdicts becomes
// High Risk. This is the single fail-closed gate for every verdict
// string obtained from an external service.
func NormalizeVerdict(v string) Verdict {
	switch Verdict(v) {
	case VerdictReliable, VerdictQuestionable, VerdictHighRisk:
		return Verdict(v)
	default:
		return VerdictHighRisk
	}
}
