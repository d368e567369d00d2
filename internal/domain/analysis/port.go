package analysis

import "context"

// Store port for the cache backing store. Get returns ErrNotFound when
// no record exists for the fingerprint; any other error is a backing
// store failure, which callers treat as a miss.
type Store interface {
	Get(ctx context.Context, hash string) (*Record, error)
	Put(ctx context.Context, rec *Record) error
}

// TextAnalyzer port for the text-risk service.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (*TextFindings, error)
}

// ImageAnalyzer port for the image-risk service.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*ImageFindings, error)
}

// Fetcher port for image retrieval.
type Fetcher interface {
	FetchImage(ctx context.Context, url string) (*FetchedImage, error)
}

// Archiver port for the optional audit archive of analysis documents.
type Archiver interface {
	Archive(ctx context.Context, rec *Record) (string, error)
}
