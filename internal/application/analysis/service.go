// Package analysis implements the orchestrator: it drives the text and
// image pipelines, deduplicates work through the fingerprint cache, and
// fuses both outcomes into one verdict.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/trustlens/trustlens/internal/application"
	"github.com/trustlens/trustlens/internal/cache"
	domain "github.com/trustlens/trustlens/internal/domain/analysis"
	"github.com/trustlens/trustlens/internal/fingerprint"
	"github.com/trustlens/trustlens/internal/middleware"
	"github.com/trustlens/trustlens/internal/score"
)

// Request is the validated analyze input. At least one field is set.
type Request struct {
	Text     string
	ImageURL string
}

// Response is the combined analyze result. When both branches produced
// a fingerprint, the top-level Hash/Reused pair carries the image's
// values; the text hash is still computed and used for its own caching.
// That precedence is long-standing observable behavior, kept as-is.
type Response struct {
	Success       bool                 `json:"success"`
	TextAnalysis  *domain.TextOutcome  `json:"textAnalysis"`
	ImageAnalysis *domain.ImageOutcome `json:"imageAnalysis"`
	FinalResult   domain.FinalResult   `json:"finalResult"`
	Hash          string               `json:"hash,omitempty"`
	Reused        *bool                `json:"reused,omitempty"`
}

// Service orchestrates the analysis pipelines. Archive may be nil.
// Service is safe for concurrent use.
type Service struct {
	Cache   *cache.Cache
	Text    domain.TextAnalyzer
	Image   domain.ImageAnalyzer
	Fetcher domain.Fetcher
	Archive domain.Archiver
	Clock   application.Clock
}

type textResult struct {
	outcome *domain.TextOutcome
	hash    string
	reused  bool
	err     error
}

type imageResult struct {
	outcome *domain.ImageOutcome
	hash    string
	reused  bool
}

// Analyze runs both branches, fuses the outcomes, and returns the
// combined response. Only input validation and a text-service failure
// abort the request; every other failure degrades to a documented
// fallback so a best-effort verdict is still returned.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	if req.Text == "" && req.ImageURL == "" {
		return nil, fmt.Errorf("%w: either text or imageUrl is required", domain.ErrInvalidInput)
	}

	// The branches share no mutable state and run concurrently; each
	// external call inside them is independently timeout-bounded.
	var (
		wg  sync.WaitGroup
		txt textResult
		img imageResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		txt = s.runTextBranch(ctx, req.Text)
	}()
	go func() {
		defer wg.Done()
		img = s.runImageBranch(ctx, req.ImageURL)
	}()
	wg.Wait()

	if txt.err != nil {
		return nil, txt.err
	}

	resp := &Response{
		Success:       true,
		TextAnalysis:  txt.outcome,
		ImageAnalysis: img.outcome,
		FinalResult:   score.Final(txt.outcome, img.outcome),
	}

	if txt.hash != "" {
		reused := txt.reused
		resp.Hash = txt.hash
		resp.Reused = &reused
	}
	if img.hash != "" {
		reused := img.reused
		resp.Hash = img.hash
		resp.Reused = &reused
	}

	return resp, nil
}

// runTextBranch analyzes the text, reusing a cached outcome when the
// fingerprint is known. A service failure is fatal to the request and
// leaves the cache untouched.
func (s *Service) runTextBranch(ctx context.Context, text string) textResult {
	if text == "" {
		return textResult{outcome: &domain.TextOutcome{Status: domain.StatusSkipped}}
	}

	hash := fingerprint.Text(text)

	if rec, found := s.Cache.Lookup(ctx, hash); found {
		var outcome domain.TextOutcome
		if err := json.Unmarshal(rec.Analysis, &outcome); err == nil {
			log.Printf("reusing cached text analysis hash=%.16s", hash)
			middleware.IncrementCacheHits()
			return textResult{outcome: &outcome, hash: hash, reused: true}
		}
		log.Printf("discarding undecodable cached text analysis hash=%.16s", hash)
	}
	middleware.IncrementCacheMisses()

	findings, err := s.Text.AnalyzeText(ctx, text)
	if err != nil {
		return textResult{err: fmt.Errorf("%w: text analysis failed: %v", domain.ErrAnalysisUnavailable, err)}
	}

	scoreVal := findings.CredibilityScore
	outcome := &domain.TextOutcome{
		Status:            domain.StatusProcessed,
		RiskLevel:         findings.RiskLevel,
		RiskKeywordsFound: findings.RiskKeywordsFound,
		CredibilityScore:  &scoreVal,
		Verdict:           domain.NormalizeVerdict(string(findings.Verdict)),
		Explanation:       findings.Explanation,
	}

	s.persist(ctx, hash, domain.ContentTypeText, outcome)
	return textResult{outcome: outcome, hash: hash}
}

// runImageBranch retrieves and analyzes the image. Every failure inside
// this branch degrades: retrieval failure skips the branch, and each of
// the two heuristics and the service call independently falls back to
// an empty signal.
func (s *Service) runImageBranch(ctx context.Context, imageURL string) imageResult {
	if imageURL == "" {
		return imageResult{outcome: &domain.ImageOutcome{Status: domain.StatusSkipped}}
	}

	fetched, err := s.Fetcher.FetchImage(ctx, imageURL)
	if err != nil {
		log.Printf("image retrieval failed url=%s: %v", imageURL, err)
		return imageResult{outcome: &domain.ImageOutcome{
			Status: domain.StatusSkipped,
			Error:  err.Error(),
		}}
	}

	hash := fingerprint.Image(fetched.Data)

	if rec, found := s.Cache.Lookup(ctx, hash); found {
		var outcome domain.ImageOutcome
		if err := json.Unmarshal(rec.Analysis, &outcome); err == nil {
			log.Printf("reusing cached image analysis hash=%.16s", hash)
			middleware.IncrementCacheHits()
			outcome.Reused = true
			return imageResult{outcome: &outcome, hash: hash, reused: true}
		}
		log.Printf("discarding undecodable cached image analysis hash=%.16s", hash)
	}
	middleware.IncrementCacheMisses()

	meta := safeMetadata(fetched.Data)
	tracing := safeTracing(fetched.Data)

	findings, err := s.Image.AnalyzeImage(ctx, fetched.Data, fetched.MIMEType)
	if err != nil {
		// Non-fatal: the fused score still comes from the heuristics.
		log.Printf("image analysis service failed hash=%.16s: %v", hash, err)
		findings = nil
	}

	aiProbability := 0
	if findings != nil {
		aiProbability = findings.AIGeneratedProbability
		findings.Verdict = domain.NormalizeVerdict(string(findings.Verdict))
	}

	heuristicScore, _ := score.ImageCredibility(meta, tracing, aiProbability)

	combined := heuristicScore
	if findings != nil && findings.CredibilityScore < combined {
		// Fail-low: when independent signals disagree, the more
		// cautious value wins.
		combined = findings.CredibilityScore
	}

	outcome := &domain.ImageOutcome{
		Status:           domain.StatusProcessed,
		Metadata:         &meta,
		Tracing:          &tracing,
		LLMAnalysis:      findings,
		CredibilityScore: &combined,
		// Thresholds on the combined number are the single source of
		// truth; both sources' verdict strings are overridden here.
		Verdict: score.CombinedImageVerdict(combined),
	}

	s.persist(ctx, hash, domain.ContentTypeImage, outcome)
	return imageResult{outcome: outcome, hash: hash}
}

// persist stores a complete outcome under its fingerprint and archives
// the document. Both are best-effort; failures never reach the caller.
func (s *Service) persist(ctx context.Context, hash string, contentType domain.ContentType, outcome any) {
	doc, err := json.Marshal(outcome)
	if err != nil {
		log.Printf("encode outcome hash=%.16s: %v", hash, err)
		return
	}

	rec := &domain.Record{
		Hash:      hash,
		Type:      contentType,
		Analysis:  doc,
		CreatedAt: s.Clock.Now().UTC(),
	}
	s.Cache.Save(ctx, rec)

	if s.Archive != nil {
		if _, err := s.Archive.Archive(ctx, rec); err != nil {
			log.Printf("archive outcome hash=%.16s: %v", hash, err)
		}
	}
}

// safeMetadata shields the orchestrator from a heuristic panic; the
// branch continues with an empty signal.
func safeMetadata(buf []byte) (sig domain.MetadataSignal) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("metadata heuristic panicked: %v", r)
			sig = domain.MetadataSignal{}
		}
	}()
	return score.AnalyzeMetadata(buf)
}

func safeTracing(buf []byte) (sig domain.TracingSignal) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("tracing heuristic panicked: %v", r)
			sig = domain.TracingSignal{}
		}
	}()
	return score.TraceImage(buf)
}
