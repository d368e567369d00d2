package analysis

import "errors"

// ErrNotFound indicates the backing store has no record for a fingerprint.
var ErrNotFound = errors.New("analysis record not found")

// ErrAnalysisUnavailable indicates the text-risk service could not
// produce a result. This is the only branch failure fatal to a request.
var ErrAnalysisUnavailable = errors.New("analysis service unavailable")

// ErrInvalidInput indicates the request failed validation.
var ErrInvalidInput = errors.New("invalid input")
