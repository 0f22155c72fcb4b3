package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	fetchTimeout = 30 * time.Second
	maxImageSize = 20 << 20 // 20 MiB per image
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Relocator fetches a listing's source images and re-hosts them in the
// Store. Output order always equals input order minus failed fetches; a
// failed image is skipped and recorded, never fatal for the listing.
type Relocator struct {
	store   Store
	client  *http.Client
	workers int
}

// NewRelocator creates a relocator with a bounded fetch pool. workers caps
// concurrent downloads so neither the source CDN nor local disk is swamped.
func NewRelocator(store Store, workers int) *Relocator {
	if workers < 1 {
		workers = 1
	}
	return &Relocator{
		store:   store,
		client:  &http.Client{Timeout: fetchTimeout},
		workers: workers,
	}
}

// Relocate re-hosts sourceURLs for one listing and returns the destination
// URLs in source order. A previous run's uploads for the same listing are
// deleted first, so repeated syncs do not accumulate orphaned files.
// Per-image failures are returned alongside the surviving URLs.
func (r *Relocator) Relocate(ctx context.Context, externalID string, sourceURLs []string) ([]string, []error) {
	if len(sourceURLs) == 0 {
		return nil, nil
	}

	if err := r.store.RemoveAll(externalID); err != nil {
		fmt.Printf("  ⚠️  Could not clear previous images for %s: %v\n", externalID, err)
	}

	// Results are slotted by source index so the pool's completion order
	// never affects output order.
	results := make([]string, len(sourceURLs))
	fetchErrs := make([]error, len(sourceURLs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, r.workers)

	for i, src := range sourceURLs {
		wg.Add(1)
		sem <- struct{}{}

		go func(index int, sourceURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			dest, err := r.relocateOne(ctx, externalID, index, sourceURL)
			if err != nil {
				fetchErrs[index] = fmt.Errorf("image %d (%s): %w", index, sourceURL, err)
				return
			}
			results[index] = dest
		}(i, src)
	}

	wg.Wait()

	var destinations []string
	var errs []error
	for i := range sourceURLs {
		if fetchErrs[i] != nil {
			errs = append(errs, fetchErrs[i])
			continue
		}
		if results[i] != "" {
			destinations = append(destinations, results[i])
		}
	}

	return destinations, errs
}

func (r *Relocator) relocateOne(ctx context.Context, externalID string, index int, sourceURL string) (string, error) {
	data, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	// Index prefix keeps on-disk listings browsable in display order; the
	// uuid nonce makes names collision-free across concurrent runs.
	filename := fmt.Sprintf("%d-%s%s", index, uuid.NewString(), extensionFor(contentType))
	return r.store.Put(externalID, filename, data)
}

func (r *Relocator) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, "", fmt.Errorf("read failed: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/avif":
		return ".avif"
	default:
		return ".jpg"
	}
}
