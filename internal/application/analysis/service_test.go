package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trustlens/trustlens/internal/cache"
	domain "github.com/trustlens/trustlens/internal/domain/analysis"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeTextAnalyzer struct {
	findings *domain.TextFindings
	err      error
	calls    int
}

func (f *fakeTextAnalyzer) AnalyzeText(_ context.Context, _ string) (*domain.TextFindings, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.findings
	return &out, nil
}

type fakeImageAnalyzer struct {
	findings *domain.ImageFindings
	err      error
	calls    int
}

func (f *fakeImageAnalyzer) AnalyzeImage(_ context.Context, _ []byte, _ string) (*domain.ImageFindings, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.findings
	return &out, nil
}

type fakeFetcher struct {
	image *domain.FetchedImage
	err   error
	calls int
}

func (f *fakeFetcher) FetchImage(_ context.Context, _ string) (*domain.FetchedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

type fakeArchiver struct {
	calls int
	err   error
}

func (f *fakeArchiver) Archive(_ context.Context, _ *domain.Record) (string, error) {
	f.calls++
	return "http://archive/object.json", f.err
}

func newService(text *fakeTextAnalyzer, image *fakeImageAnalyzer, fetcher *fakeFetcher) *Service {
	return &Service{
		Cache:   cache.New(nil, time.Minute),
		Text:    text,
		Image:   image,
		Fetcher: fetcher,
		Clock:   fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func highRiskTextFindings() *domain.TextFindings {
	return &domain.TextFindings{
		RiskLevel:         domain.RiskHigh,
		CredibilityScore:  15,
		Verdict:           domain.VerdictHighRisk,
		RiskKeywordsFound: []string{"aliens"},
		Explanation:       "sensational unverified claim",
	}
}

// A buffer large enough to avoid the small-file heuristics and small
// enough to avoid the oversize one: heuristic score stays at 100.
func neutralImage() *domain.FetchedImage {
	return &domain.FetchedImage{Data: make([]byte, 100*1024), MIMEType: "image/jpeg"}
}

func TestAnalyze_RequiresInput(t *testing.T) {
	svc := newService(&fakeTextAnalyzer{}, &fakeImageAnalyzer{}, &fakeFetcher{})

	_, err := svc.Analyze(context.Background(), Request{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyze_TextOnly(t *testing.T) {
	text := &fakeTextAnalyzer{findings: highRiskTextFindings()}
	svc := newService(text, &fakeImageAnalyzer{}, &fakeFetcher{})

	resp, err := svc.Analyze(context.Background(), Request{Text: "Breaking: aliens land in NYC, scientists baffled!!!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.FinalResult.FinalScore != 15 {
		t.Errorf("finalScore = %d, expected 15", resp.FinalResult.FinalScore)
	}
	if resp.FinalResult.FinalVerdict != domain.VerdictHighRisk {
		t.Errorf("finalVerdict = %s", resp.FinalResult.FinalVerdict)
	}
	if resp.ImageAnalysis.Status != domain.StatusSkipped {
		t.Errorf("image branch should be skipped, got %s", resp.ImageAnalysis.Status)
	}
	if resp.Hash == "" || len(resp.Hash) != 64 {
		t.Errorf("expected 64-char hash, got %q", resp.Hash)
	}
	if resp.Reused == nil || *resp.Reused {
		t.Error("first analysis must not be marked reused")
	}
}

func TestAnalyze_RepeatedTextReusesCache(t *testing.T) {
	text := &fakeTextAnalyzer{findings: highRiskTextFindings()}
	svc := newService(text, &fakeImageAnalyzer{}, &fakeFetcher{})
	ctx := context.Background()

	first, err := svc.Analyze(ctx, Request{Text: "Breaking: aliens land in NYC"})
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Same content modulo case and whitespace must hit the cache.
	second, err := svc.Analyze(ctx, Request{Text: "  BREAKING: ALIENS LAND IN NYC  "})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if text.calls != 1 {
		t.Errorf("text service called %d times, expected 1", text.calls)
	}
	if second.Reused == nil || !*second.Reused {
		t.Error("second call must be marked reused")
	}
	if second.Hash != first.Hash {
		t.Error("fingerprints must match across normalized duplicates")
	}
	if *second.TextAnalysis.CredibilityScore != 15 {
		t.Errorf("cached score = %d", *second.TextAnalysis.CredibilityScore)
	}
}

func TestAnalyze_TextServiceFailureIsFatal(t *testing.T) {
	text := &fakeTextAnalyzer{err: errors.New("upstream 500")}
	svc := newService(text, &fakeImageAnalyzer{}, &fakeFetcher{})

	_, err := svc.Analyze(context.Background(), Request{Text: "some analyzable text"})
	if !errors.Is(err, domain.ErrAnalysisUnavailable) {
		t.Fatalf("expected ErrAnalysisUnavailable, got %v", err)
	}

	// Nothing may be cached: a retry after recovery must re-analyze.
	text.err = nil
	text.findings = highRiskTextFindings()
	if _, err := svc.Analyze(context.Background(), Request{Text: "some analyzable text"}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if text.calls != 2 {
		t.Errorf("expected 2 service calls (no partial record cached), got %d", text.calls)
	}
}

func TestAnalyze_ImageFetchFailureDegrades(t *testing.T) {
	text := &fakeTextAnalyzer{findings: highRiskTextFindings()}
	fetcher := &fakeFetcher{err: errors.New("timeout after 5s")}
	svc := newService(text, &fakeImageAnalyzer{}, fetcher)

	resp, err := svc.Analyze(context.Background(), Request{
		Text:     "some analyzable text",
		ImageURL: "https://example.com/gone.jpg",
	})
	if err != nil {
		t.Fatalf("fetch failure must not be fatal: %v", err)
	}

	if resp.ImageAnalysis.Status != domain.StatusSkipped {
		t.Errorf("expected skipped image branch, got %s", resp.ImageAnalysis.Status)
	}
	if resp.ImageAnalysis.Error == "" {
		t.Error("expected a recorded failure reason")
	}
	// Text baseline stands when the image branch is skipped.
	if resp.FinalResult.FinalScore != 15 {
		t.Errorf("finalScore = %d, expected 15", resp.FinalResult.FinalScore)
	}
}

func TestAnalyze_WeightedFusion(t *testing.T) {
	text := &fakeTextAnalyzer{findings: &domain.TextFindings{
		RiskLevel:        domain.RiskLow,
		CredibilityScore: 80,
		Verdict:          domain.VerdictReliable,
		Explanation:      "credible",
	}}
	image := &fakeImageAnalyzer{findings: &domain.ImageFindings{
		RiskLevel:        domain.RiskMedium,
		CredibilityScore: 60,
		Verdict:          domain.VerdictQuestionable,
		Explanation:      "some doubts",
	}}
	svc := newService(text, image, &fakeFetcher{image: neutralImage()})

	resp, err := svc.Analyze(context.Background(), Request{
		Text:     "a perfectly reasonable statement",
		ImageURL: "https://example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Heuristics are clean (score 100), so min(60, 100) = 60 for the
	// image, then round(0.6*80 + 0.4*60) = 72.
	if *resp.ImageAnalysis.CredibilityScore != 60 {
		t.Errorf("image score = %d, expected 60", *resp.ImageAnalysis.CredibilityScore)
	}
	if resp.FinalResult.FinalScore != 72 {
		t.Errorf("finalScore = %d, expected 72", resp.FinalResult.FinalScore)
	}
	if resp.FinalResult.FinalVerdict != domain.VerdictQuestionable {
		t.Errorf("finalVerdict = %s, expected Questionable", resp.FinalResult.FinalVerdict)
	}
}

func TestAnalyze_ImageServiceFailureFallsBackToHeuristics(t *testing.T) {
	image := &fakeImageAnalyzer{err: errors.New("vision endpoint down")}
	// 20KB buffer: tracing flags high reuse likelihood (-40).
	small := &domain.FetchedImage{Data: make([]byte, 20*1024), MIMEType: "image/png"}
	svc := newService(&fakeTextAnalyzer{}, image, &fakeFetcher{image: small})

	resp, err := svc.Analyze(context.Background(), Request{ImageURL: "https://example.com/a.png"})
	if err != nil {
		t.Fatalf("image service failure must not be fatal: %v", err)
	}

	if resp.ImageAnalysis.Status != domain.StatusProcessed {
		t.Errorf("expected processed branch, got %s", resp.ImageAnalysis.Status)
	}
	if resp.ImageAnalysis.LLMAnalysis != nil {
		t.Error("expected no service findings")
	}
	if *resp.ImageAnalysis.CredibilityScore != 60 {
		t.Errorf("heuristic-only score = %d, expected 60", *resp.ImageAnalysis.CredibilityScore)
	}
	if resp.ImageAnalysis.Verdict != domain.VerdictQuestionable {
		t.Errorf("verdict = %s", resp.ImageAnalysis.Verdict)
	}
}

func TestAnalyze_AIProbabilityCapsCombinedScore(t *testing.T) {
	image := &fakeImageAnalyzer{findings: &domain.ImageFindings{
		RiskLevel:              domain.RiskLow,
		CredibilityScore:       85,
		Verdict:                domain.VerdictReliable,
		Explanation:            "looks fine at a glance",
		AIGeneratedProbability: 90,
	}}
	svc := newService(&fakeTextAnalyzer{}, image, &fakeFetcher{image: neutralImage()})

	resp, err := svc.Analyze(context.Background(), Request{ImageURL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Heuristic caps at 20 for aiProbability >= 80; min(85, 20) = 20
	// and the re-derived verdict overrides the service's "Reliable".
	if *resp.ImageAnalysis.CredibilityScore != 20 {
		t.Errorf("combined score = %d, expected 20", *resp.ImageAnalysis.CredibilityScore)
	}
	if resp.ImageAnalysis.Verdict != domain.VerdictHighRisk {
		t.Errorf("verdict = %s, expected High Risk", resp.ImageAnalysis.Verdict)
	}
}

func TestAnalyze_MalformedVerdictNormalized(t *testing.T) {
	text := &fakeTextAnalyzer{findings: &domain.TextFindings{
		RiskLevel:        domain.RiskLow,
		CredibilityScore: 90,
		Verdict:          "banana",
		Explanation:      "fine",
	}}
	svc := newService(text, &fakeImageAnalyzer{}, &fakeFetcher{})

	resp, err := svc.Analyze(context.Background(), Request{Text: "a perfectly fine sentence"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TextAnalysis.Verdict != domain.VerdictHighRisk {
		t.Errorf("unrecognized verdict must fail closed, got %s", resp.TextAnalysis.Verdict)
	}
}

func TestAnalyze_ImageHashTakesPrecedence(t *testing.T) {
	text := &fakeTextAnalyzer{findings: highRiskTextFindings()}
	image := &fakeImageAnalyzer{findings: &domain.ImageFindings{
		RiskLevel:        domain.RiskLow,
		CredibilityScore: 90,
		Verdict:          domain.VerdictReliable,
		Explanation:      "fine",
	}}
	fetched := neutralImage()
	svc := newService(text, image, &fakeFetcher{image: fetched})

	resp, err := svc.Analyze(context.Background(), Request{
		Text:     "some analyzable text",
		ImageURL: "https://example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	imageOnly, err := svc.Analyze(context.Background(), Request{ImageURL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Hash != imageOnly.Hash {
		t.Error("combined request must expose the image hash at top level")
	}
}

func TestAnalyze_RepeatedImageReusesCache(t *testing.T) {
	image := &fakeImageAnalyzer{findings: &domain.ImageFindings{
		RiskLevel:        domain.RiskLow,
		CredibilityScore: 90,
		Verdict:          domain.VerdictReliable,
		Explanation:      "fine",
	}}
	svc := newService(&fakeTextAnalyzer{}, image, &fakeFetcher{image: neutralImage()})
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, Request{ImageURL: "https://example.com/a.jpg"}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.Analyze(ctx, Request{ImageURL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if image.calls != 1 {
		t.Errorf("image service called %d times, expected 1", image.calls)
	}
	if !second.ImageAnalysis.Reused {
		t.Error("cached image outcome must be marked reused")
	}
	if second.Reused == nil || !*second.Reused {
		t.Error("top-level reused flag must be set")
	}
}

func TestAnalyze_ArchiverBestEffort(t *testing.T) {
	text := &fakeTextAnalyzer{findings: highRiskTextFindings()}
	archiver := &fakeArchiver{err: errors.New("bucket gone")}
	svc := newService(text, &fakeImageAnalyzer{}, &fakeFetcher{})
	svc.Archive = archiver

	if _, err := svc.Analyze(context.Background(), Request{Text: "some analyzable text"}); err != nil {
		t.Fatalf("archive failure must not surface: %v", err)
	}
	if archiver.calls != 1 {
		t.Errorf("archiver calls = %d", archiver.calls)
	}
}
