// Package artifacts downloads image artifacts referenced by inbound events.
// The backend sends image URLs rather than inline bytes; fetching them to a
// local directory lets the user open them outside the terminal.
package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

type Fetcher struct {
	dir    string
	client *http.Client
}

func NewFetcher(dir string) *Fetcher {
	return &Fetcher{
		dir: dir,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

// Fetch downloads one artifact and returns the local path it was written to.
// Failures are the caller's to surface; the referenced URL stays usable
// either way.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	ctx, span := tracer.Start(ctx, "fetch artifact")
	defer span.End()

	localPath, err := f.fetch(ctx, rawURL)
	if err != nil {
		recordedErr := fmt.Errorf("failed to fetch artifact: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return "", recordedErr
	}

	logger.Info("Fetched artifact", "url", rawURL, "path", localPath)
	return localPath, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare artifact dir: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	response, err := f.client.Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", response.StatusCode)
	}

	localPath := filepath.Join(f.dir, localName(rawURL))
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, response.Body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return localPath, nil
}

// localName derives a collision-free file name, keeping the remote base name
// when the URL has one.
func localName(rawURL string) string {
	base := "artifact.png"
	if parsed, err := url.Parse(rawURL); err == nil {
		if name := path.Base(parsed.Path); name != "." && name != "/" && name != "" {
			base = name
		}
	}
	return uuid.NewString()[:8] + "-" + base
}
