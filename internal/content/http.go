package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultURLTemplate = "https://5minanswer.com/wp-content/uploads/2025/10/Class-{class}{Subject}-Chapter-{chapter}.docx"

// maxDocBytes bounds how much of a chapter document is read.
const maxDocBytes = 32 << 20

// HTTPFetcher downloads a chapter .docx from a URL template. Placeholders:
// {class}, {chapter}, {subject} (as given) and {Subject} (capitalized).
type HTTPFetcher struct {
	client   *http.Client
	template string
}

func NewHTTPFetcher(template string, timeout time.Duration) *HTTPFetcher {
	if template == "" {
		template = DefaultURLTemplate
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}, template: template}
}

func (f *HTTPFetcher) URL(ref ChapterRef) string {
	return strings.NewReplacer(
		"{class}", strconv.Itoa(ref.ClassLevel),
		"{chapter}", strconv.Itoa(ref.Chapter),
		"{subject}", ref.Subject,
		"{Subject}", capitalize(ref.Subject),
	).Replace(f.template)
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref ChapterRef) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(ref), nil)
	if err != nil {
		return "", fmt.Errorf("content: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", ErrContentUnavailable, ref, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrContentUnavailable, err)
	}
	text, err := ExtractDOCX(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	return text, nil
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
