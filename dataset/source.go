package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ============================================================================
// SOURCES — where dataset files come from
// ============================================================================

// Source opens a named dataset file.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads files from a local directory.
type DirSource struct {
	Root string
}

func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Root, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// HTTPSource fetches files relative to a base URL.
type HTTPSource struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPSource creates a source with a client timeout. A zero timeout
// means 30 seconds.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	url := s.BaseURL + "/" + strings.TrimLeft(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
