package analysis

import "testing"

func TestNormalizeVerdict(t *testing.T) {
	cases := []struct {
		in       string
		expected Verdict
	}{
		{"Reliable", VerdictReliable},
		{"Questionable", VerdictQuestionable},
		{"High Risk", VerdictHighRisk},
		{"banana", VerdictHighRisk},
		{"", VerdictHighRisk},
		{"reliable", VerdictHighRisk},
		{"HIGH RISK", VerdictHighRisk},
		{"Reliable ", VerdictHighRisk},
	}

	for _, c := range cases {
		if got := NormalizeVerdict(c.in); got != c.expected {
			t.Errorf("NormalizeVerdict(%q) = %q, expected %q", c.in, got, c.expected)
		}
	}
}
