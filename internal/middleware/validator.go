package middleware

import (
	"fmt"
	"net/url"
	"strings"
)

// Input validation for analyze requests. Validation happens at this
// layer so the orchestrator never runs with side effects on bad input.

const minTextLength = 5

// ValidateAnalyzeInput checks the text/imageUrl pair: at least one must
// be present, text must carry a minimum length, and the image URL must
// use an http or https scheme.
func ValidateAnalyzeInput(text, imageURL string) error {
	if strings.TrimSpace(text) == "" && imageURL == "" {
		return fmt.Errorf("either text or imageUrl is required")
	}
	if text != "" {
		if err := ValidateText(text); err != nil {
			return err
		}
	}
	if imageURL != "" {
		if err := ValidateImageURL(imageURL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateText enforces the minimum analyzable length.
func ValidateText(text string) error {
	if len(strings.TrimSpace(text)) < minTextLength {
		return fmt.Errorf("text must be at least %d characters", minTextLength)
	}
	return nil
}

// ValidateImageURL checks the URL parses and uses http/https.
func ValidateImageURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid imageUrl format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid imageUrl scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("imageUrl must include a host")
	}
	return nil
}

// SanitizeString removes null bytes and control characters from input
// before it is logged or forwarded.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
