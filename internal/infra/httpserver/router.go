package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/trustlens/trustlens/internal/application/analysis"
	domain "github.com/trustlens/trustlens/internal/domain/analysis"
	"github.com/trustlens/trustlens/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
}

// NewRouter wires the analyze endpoints plus health and metrics behind
// the logging, metrics, and CORS middleware stack.
func NewRouter(analysisSvc *appanalysis.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{analysisSvc: analysisSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler())

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyze", r.handleAnalyzeInfo)
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if errors.Is(err, domain.ErrAnalysisUnavailable) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

// POST /api/analyze
// Body: {"text": "...", "imageUrl": "..."} with at least one field set.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text     string `json:"text"`
		ImageURL string `json:"imageUrl"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domain.ErrInvalidInput
	}

	body.Text = middleware.SanitizeString(body.Text)
	if err := middleware.ValidateAnalyzeInput(body.Text, body.ImageURL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil
	}

	middleware.IncrementAnalyses()
	resp, err := r.analysisSvc.Analyze(req.Context(), appanalysis.Request{
		Text:     body.Text,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /api/analyze returns a usage document so browser probes get a
// helpful answer instead of a method error.
func (r *Router) handleAnalyzeInfo(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message": "submit content for analysis with POST",
		"method":  "POST",
		"body": map[string]string{
			"text":     "optional, text to analyze (min 5 characters)",
			"imageUrl": "optional, http(s) URL of an image to analyze",
		},
	})
}
