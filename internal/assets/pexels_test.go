package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelforge/internal/script"
)

func TestPexelsSearchPhotos(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"photos":[{"width":1080,"height":1920,"alt":"city at night","src":{"original":"http://img/original.jpg","large2x":"http://img/large2x.jpg"}}]}`))
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewPexelsClient: %v", err)
	}

	candidates, err := client.Search(context.Background(), []string{"city", "night"}, script.MediaTypeImage, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotAuth != "test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotPath != "/v1/search" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery != "city night" {
		t.Fatalf("query = %q", gotQuery)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidate count = %d", len(candidates))
	}
	c := candidates[0]
	if c.DownloadURL != "http://img/large2x.jpg" || c.SecondaryURL != "http://img/original.jpg" {
		t.Fatalf("urls = %q / %q", c.DownloadURL, c.SecondaryURL)
	}
	if c.Title != "city at night" {
		t.Fatalf("title = %q", c.Title)
	}
}

func TestPexelsSearchVideosUsesVideoEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"videos":[{"width":1080,"height":1920,"video_files":[{"link":"http://vid/a.mp4"},{"link":"http://vid/b.mp4"}],"user":{"name":"someone"}}]}`))
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := client.Search(context.Background(), []string{"waves"}, script.MediaTypeVideo, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidate count = %d", len(candidates))
	}
	if candidates[0].Type != script.MediaTypeVideo {
		t.Fatalf("type = %s", candidates[0].Type)
	}
	if candidates[0].SecondaryURL != "http://vid/b.mp4" {
		t.Fatalf("secondary = %q", candidates[0].SecondaryURL)
	}
}

func TestPexelsSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"photos":[]}`))
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	candidates, err := client.Search(context.Background(), []string{"nothing"}, script.MediaTypeImage, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestPexelsSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Search(context.Background(), []string{"x"}, script.MediaTypeImage, 3); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestPexelsDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "asset.jpg")
	if err := client.Download(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("payload = %q", data)
	}
}

func TestPexelsDownloadRejectsEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewPexelsClient(PexelsConfig{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "asset.jpg")
	if err := client.Download(context.Background(), server.URL, dest); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestPexelsRequiresAPIKey(t *testing.T) {
	if _, err := NewPexelsClient(PexelsConfig{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
