package analysis

import (
	"encoding/json"
	"time"
)

// ContentType enum
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Status enum for branch outcomes
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusProcessed Status = "processed"
)

// MetadataSignal is the coarse size-based metadata heuristic result.
type MetadataSignal struct {
	HasMetadata  bool      `json:"hasMetadata"`
	PossibleAI   bool      `json:"possibleAI"`
	MetadataRisk RiskLevel `json:"metadataRisk"`
}

// TracingSignal is the coarse size-based reuse heuristic result.
type TracingSignal struct {
	ReusedLikelihood RiskLevel `json:"reusedLikelihood"`
	Reason           string    `json:"reason"`
}

// TextOutcome is the analysis result for one piece of text. A skipped
// branch carries only Status; a processed one carries the scored fields.
type TextOutcome struct {
	Status            Status    `json:"status,omitempty"`
	RiskLevel         RiskLevel `json:"riskLevel,omitempty"`
	RiskKeywordsFound []string  `json:"riskKeywordsFound,omitempty"`
	CredibilityScore  *int      `json:"credibilityScore,omitempty"`
	Verdict           Verdict   `json:"verdict,omitempty"`
	Explanation       string    `json:"explanation,omitempty"`
}

// ImageFindings is the richer result returned by the image-risk service.
// Verdict is normalized before the value leaves the orchestrator.
type ImageFindings struct {
	RiskLevel              RiskLevel `json:"riskLevel"`
	Verdict                Verdict   `json:"verdict"`
	CredibilityScore       int       `json:"credibilityScore"`
	ExtractedText          string    `json:"extractedText"`
	TextVerification       string    `json:"textVerification"`
	ImageContent           string    `json:"imageContent"`
	ConveyedMessage        string    `json:"conveyedMessage"`
	VeracityCheck          string    `json:"veracityCheck"`
	Explanation            string    `json:"explanation"`
	VisualRedFlags         []string  `json:"visualRedFlags"`
	AIGeneratedProbability int       `json:"aiGeneratedProbability"`
}

// ImageOutcome is the combined analysis result for one image.
// CredibilityScore is a pointer: cached records written by older
// revisions may lack a direct score, and the fusion policy treats that
// case differently from a zero score.
type ImageOutcome struct {
	Status           Status          `json:"status"`
	Error            string          `json:"error,omitempty"`
	Reused           bool            `json:"reused,omitempty"`
	Metadata         *MetadataSignal `json:"metadata,omitempty"`
	Tracing          *TracingSignal  `json:"tracing,omitempty"`
	LLMAnalysis      *ImageFindings  `json:"llmAnalysis,omitempty"`
	CredibilityScore *int            `json:"credibilityScore,omitempty"`
	Verdict          Verdict         `json:"verdict,omitempty"`
}

// TextFindings is the boundary-validated response of the text-risk
// service, before verdict normalization.
type TextFindings struct {
	RiskLevel         RiskLevel
	CredibilityScore  int
	Verdict           Verdict
	RiskKeywordsFound []string
	Explanation       string
}

// FinalResult is the fused verdict. Derived per request, never persisted.
type FinalResult struct {
	FinalScore   int     `json:"finalScore"`
	FinalVerdict Verdict `json:"finalVerdict"`
}

// Record is one cached analysis, keyed by content fingerprint. Only the
// fingerprint and the analysis document are stored, never raw content.
// Records are immutable once written; re-storing the same fingerprint is
// an idempotent upsert.
type Record struct {
	Hash      string          `json:"hash"`
	Type      ContentType     `json:"type"`
	Analysis  json.RawMessage `json:"analysis"`
	CreatedAt time.Time       `json:"createdAt"`
}

// FetchedImage holds the raw bytes of a retrieved image.
type FetchedImage struct {
	Data     []byte
	MIMEType string
}
