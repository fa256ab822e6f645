package mediasearch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/unsplash/search/photos", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Client-ID unsplash-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		results := []any{}
		if r.URL.Query().Get("query") != "nothing" {
			results = append(results, map[string]any{"urls": map[string]any{"regular": server.URL + "/files/photo.jpg"}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	mux.HandleFunc("/google", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("searchType") != "image" || q.Get("cx") != "cx-1" || q.Get("key") != "google-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{map[string]any{"link": server.URL + "/files/google.jpg"}}})
	})
	mux.HandleFunc("/tenor/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_key") != "client" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{
			map[string]any{"media_formats": map[string]any{"mp4": map[string]any{"url": server.URL + "/files/clip.mp4"}}},
		}})
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes:" + r.URL.Path))
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testClient(server *httptest.Server) *Client {
	return NewClient(Config{
		UnsplashAccessKey:    "unsplash-key",
		UnsplashBaseURL:      server.URL + "/unsplash",
		GoogleAPIKey:         "google-key",
		GoogleSearchEngineID: "cx-1",
		GoogleBaseURL:        server.URL + "/google",
		TenorAPIKey:          "tenor-key",
		TenorClientKey:       "client",
		TenorBaseURL:         server.URL + "/tenor",
	})
}

func TestSearchProviders(t *testing.T) {
	server := newProviderServer(t)
	client := testClient(server)
	ctx := context.Background()

	if got, err := client.SearchUnsplash(ctx, "docker whale"); err != nil || got != server.URL+"/files/photo.jpg" {
		t.Fatalf("SearchUnsplash = %q, %v", got, err)
	}
	if _, err := client.SearchUnsplash(ctx, "nothing"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if got, err := client.SearchGoogle(ctx, "docker whale"); err != nil || got != server.URL+"/files/google.jpg" {
		t.Fatalf("SearchGoogle = %q, %v", got, err)
	}
	if got, err := client.SearchTenor(ctx, "mind blown"); err != nil || got != server.URL+"/files/clip.mp4" {
		t.Fatalf("SearchTenor = %q, %v", got, err)
	}
}

func TestSearchWithoutCredentials(t *testing.T) {
	client := NewClient(Config{})
	ctx := context.Background()
	if client.ImageConfigured() || client.GIFConfigured() {
		t.Fatal("expected providers to report unconfigured")
	}
	for _, search := range []func(context.Context, string) (string, error){client.SearchUnsplash, client.SearchGoogle, client.SearchTenor} {
		if _, err := search(ctx, "x"); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	}
}

func TestDownloadWritesFile(t *testing.T) {
	server := newProviderServer(t)
	client := testClient(server)
	dest := filepath.Join(t.TempDir(), "image", "1.jpg")
	n, err := client.Download(context.Background(), server.URL+"/files/photo.jpg", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "bytes:/files/photo.jpg" || n != int64(len(data)) {
		t.Fatalf("unexpected download %q (%d)", data, n)
	}
	if _, err := client.Download(context.Background(), server.URL+"/missing", filepath.Join(t.TempDir(), "x.jpg")); err == nil {
		t.Fatal("expected error for 404")
	}
}
