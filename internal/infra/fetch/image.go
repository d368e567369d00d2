// Package fetch retrieves remote images for analysis. Retrieval is
// bounded (timeout, byte limit, redirect cap) and can fall back to a
// page's og:image reference when a URL points at HTML instead of bytes.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxBytes = 10 * 1024 * 1024
	maxRedirects    = 3
)

// Client downloads images over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	timeout    time.Duration
}

// NewClient creates an image retrieval client.
func NewClient(timeout time.Duration, userAgent string, maxBytes int64) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Client{
		httpClient: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		timeout:   timeout,
	}
}

// FetchImage resolves a URL to raw image bytes. Instagram post URLs are
// rewritten to their media endpoint first; a URL that serves HTML is
// scraped for an og:image reference, followed at most once.
func (c *Client) FetchImage(ctx context.Context, rawURL string) (*analysis.FetchedImage, error) {
	if media := instagramMediaURL(rawURL); media != "" {
		if img, err := c.fetch(ctx, media, false); err == nil {
			return img, nil
		}
		// Direct extraction failed, fall through to the normal path.
	}
	return c.fetch(ctx, rawURL, true)
}

func (c *Client) fetch(ctx context.Context, rawURL string, followOG bool) (*analysis.FetchedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	if !strings.HasPrefix(contentType, "image/") {
		if followOG {
			if og := extractOGImage(bytes.NewReader(body)); og != "" {
				return c.fetch(ctx, resolveRef(rawURL, og), false)
			}
		}
		return nil, fmt.Errorf("url did not return an image (Content-Type: %s)", contentType)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("downloaded data is not a valid image: %w", err)
	}

	return &analysis.FetchedImage{Data: body, MIMEType: DetectMIME(body)}, nil
}

// DetectMIME sniffs the image type from magic bytes, defaulting to
// image/jpeg for anything unrecognized.
func DetectMIME(b []byte) string {
	switch {
	case len(b) >= 8 && bytes.Equal(b[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "image/png"
	case len(b) >= 2 && b[0] == 0xff && b[1] == 0xd8:
		return "image/jpeg"
	case len(b) >= 6 && (bytes.Equal(b[:6], []byte("GIF87a")) || bytes.Equal(b[:6], []byte("GIF89a"))):
		return "image/gif"
	case len(b) >= 12 && bytes.Equal(b[:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// instagramMediaURL rewrites an Instagram post or reel URL to the
// /media/ endpoint that serves the image directly. Returns "" when the
// URL is not a rewritable Instagram link.
func instagramMediaURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if !strings.Contains(parsed.Host, "instagram.com") {
		return ""
	}
	if !strings.Contains(parsed.Path, "/p/") && !strings.Contains(parsed.Path, "/reels/") {
		return ""
	}

	base := rawURL
	if idx := strings.IndexByte(base, '?'); idx >= 0 {
		base = base[:idx]
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "media/?size=l"
}

// extractOGImage returns the og:image content of an HTML document, or
// "" when none is present or the document cannot be parsed.
func extractOGImage(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	var result string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if result != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var property, content string
			for _, attr := range n.Attr {
				switch attr.Key {
				case "property":
					property = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if property == "og:image" && content != "" {
				result = content
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return result
}

// resolveRef resolves a possibly-relative og:image reference against
// the page URL.
func resolveRef(pageURL, ref string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return resolved.String()
}
