package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeStore struct {
	mu      sync.Mutex
	puts    []string
	removed []string
}

func (f *fakeStore) Put(externalID, filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, filename)
	return "/images/cars/" + externalID + "/" + filename, nil
}

func (f *fakeStore) RemoveAll(externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, externalID)
	return nil
}

func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes-" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRelocatePreservesSourceOrder(t *testing.T) {
	srv := newImageServer(t)
	store := &fakeStore{}
	r := NewRelocator(store, 4)

	srcs := []string{
		srv.URL + "/a.jpg",
		srv.URL + "/b.jpg",
		srv.URL + "/c.jpg",
		srv.URL + "/d.jpg",
	}

	dests, errs := r.Relocate(context.Background(), "car-1", srcs)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(dests) != 4 {
		t.Fatalf("expected 4 destinations, got %d", len(dests))
	}

	// Index prefix in the filename must match source position
	for i, dest := range dests {
		name := dest[strings.LastIndex(dest, "/")+1:]
		if !strings.HasPrefix(name, string(rune('0'+i))+"-") {
			t.Errorf("destination %d has wrong index prefix: %s", i, name)
		}
	}

	if len(store.removed) != 1 || store.removed[0] != "car-1" {
		t.Fatalf("expected previous images cleared once, got %v", store.removed)
	}
}

func TestRelocateSkipsFailedImages(t *testing.T) {
	srv := newImageServer(t)
	store := &fakeStore{}
	r := NewRelocator(store, 2)

	srcs := []string{
		srv.URL + "/first.jpg",
		srv.URL + "/missing.jpg",
		srv.URL + "/third.jpg",
	}

	dests, errs := r.Relocate(context.Background(), "car-2", srcs)
	if len(dests) != 2 {
		t.Fatalf("expected 2 surviving images, got %d", len(dests))
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "missing.jpg") {
		t.Fatalf("error should name the failed source: %v", errs[0])
	}

	// Survivors keep their original index prefixes (0 and 2)
	first := dests[0][strings.LastIndex(dests[0], "/")+1:]
	second := dests[1][strings.LastIndex(dests[1], "/")+1:]
	if !strings.HasPrefix(first, "0-") || !strings.HasPrefix(second, "2-") {
		t.Fatalf("unexpected index prefixes: %s, %s", first, second)
	}
}

func TestRelocateEmptyInput(t *testing.T) {
	store := &fakeStore{}
	r := NewRelocator(store, 2)

	dests, errs := r.Relocate(context.Background(), "car-3", nil)
	if dests != nil || errs != nil {
		t.Fatalf("expected no work for empty input, got %v %v", dests, errs)
	}
	if len(store.removed) != 0 {
		t.Fatal("empty input must not clear previous images")
	}
}

func TestDiskStorePutAndRemoveAll(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/images/")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	url, err := store.Put("car-9", "0-abc.jpg", []byte("data"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if url != "/images/cars/car-9/0-abc.jpg" {
		t.Fatalf("unexpected URL: %s", url)
	}

	path := filepath.Join(dir, "cars", "car-9", "0-abc.jpg")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if err := store.RemoveAll("car-9"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected file removed")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"image/avif": ".avif",
		"image/jpeg": ".jpg",
		"":           ".jpg",
	}
	for contentType, want := range tests {
		if got := extensionFor(contentType); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", contentType, got, want)
		}
	}
}
