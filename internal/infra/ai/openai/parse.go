package openai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// stripFences removes a markdown code fence wrapper if the model added
// one despite the JSON-only instruction.
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// parseTextFindings validates the text-risk response contract. The four
// required fields must all be present; riskKeywordsFound defaults to an
// empty list when missing or wrongly shaped.
func parseTextFindings(content string) (*analysis.TextFindings, error) {
	var raw struct {
		RiskLevel         *string         `json:"riskLevel"`
		CredibilityScore  *float64        `json:"credibilityScore"`
		Verdict           *string         `json:"verdict"`
		RiskKeywordsFound json.RawMessage `json:"riskKeywordsFound"`
		Explanation       *string         `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("parse text analysis response: %w", err)
	}
	if raw.RiskLevel == nil || raw.CredibilityScore == nil || raw.Verdict == nil || raw.Explanation == nil {
		return nil, fmt.Errorf("text analysis response missing required fields")
	}

	keywords := []string{}
	if len(raw.RiskKeywordsFound) > 0 {
		// Wrong shape degrades to empty, not to a failed call.
		_ = json.Unmarshal(raw.RiskKeywordsFound, &keywords)
		if keywords == nil {
			keywords = []string{}
		}
	}

	return &analysis.TextFindings{
		RiskLevel:         analysis.RiskLevel(*raw.RiskLevel),
		CredibilityScore:  roundScore(*raw.CredibilityScore),
		Verdict:           analysis.Verdict(*raw.Verdict),
		RiskKeywordsFound: keywords,
		Explanation:       *raw.Explanation,
	}, nil
}

// parseImageFindings validates the image-risk response contract.
// Required: riskLevel, credibilityScore, verdict, explanation. All the
// forensic extras are optional with documented defaults.
func parseImageFindings(content string) (*analysis.ImageFindings, error) {
	var raw struct {
		RiskLevel              *string         `json:"riskLevel"`
		CredibilityScore       *float64        `json:"credibilityScore"`
		Verdict                *string         `json:"verdict"`
		Explanation            *string         `json:"explanation"`
		ExtractedText          string          `json:"extractedText"`
		TextVerification       string          `json:"textVerification"`
		ImageContent           string          `json:"imageContent"`
		ConveyedMessage        string          `json:"conveyedMessage"`
		VeracityCheck          string          `json:"veracityCheck"`
		VisualRedFlags         json.RawMessage `json:"visualRedFlags"`
		AIGeneratedProbability float64         `json:"aiGeneratedProbability"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("parse image analysis response: %w", err)
	}
	if raw.RiskLevel == nil || raw.CredibilityScore == nil || raw.Verdict == nil || raw.Explanation == nil {
		return nil, fmt.Errorf("image analysis response missing required fields")
	}

	redFlags := []string{}
	if len(raw.VisualRedFlags) > 0 {
		_ = json.Unmarshal(raw.VisualRedFlags, &redFlags)
		if redFlags == nil {
			redFlags = []string{}
		}
	}

	return &analysis.ImageFindings{
		RiskLevel:              analysis.RiskLevel(*raw.RiskLevel),
		CredibilityScore:       roundScore(*raw.CredibilityScore),
		Verdict:                analysis.Verdict(*raw.Verdict),
		Explanation:            *raw.Explanation,
		ExtractedText:          raw.ExtractedText,
		TextVerification:       raw.TextVerification,
		ImageContent:           raw.ImageContent,
		ConveyedMessage:        raw.ConveyedMessage,
		VeracityCheck:          raw.VeracityCheck,
		VisualRedFlags:         redFlags,
		AIGeneratedProbability: roundScore(raw.AIGeneratedProbability),
	}, nil
}

func roundScore(f float64) int {
	return int(math.Round(f))
}
