package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/fileutil"
	"reelforge/internal/script"
	"reelforge/internal/services"
)

const (
	defaultPexelsBaseURL   = "https://api.pexels.com"
	defaultSearchTimeout   = 15 * time.Second
	defaultDownloadTimeout = 60 * time.Second
)

// PexelsConfig describes the Pexels client configuration.
type PexelsConfig struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration
	HTTPClient      *http.Client
}

// PexelsClient wraps the Pexels photo and video search API.
type PexelsClient struct {
	apiKey     string
	baseURL    *url.URL
	search     *http.Client
	downloader *http.Client
}

// NewPexelsClient creates a PexelsClient from the supplied configuration.
func NewPexelsClient(cfg PexelsConfig) (*PexelsClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "pexels", "api key is required", nil)
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultPexelsBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "assets", "pexels", "parse base url", err)
	}

	searchClient := cfg.HTTPClient
	if searchClient == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = defaultSearchTimeout
		}
		searchClient = &http.Client{Timeout: timeout}
	}
	downloadTimeout := cfg.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = defaultDownloadTimeout
	}

	return &PexelsClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		search:     searchClient,
		downloader: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Name identifies this provider in asset provenance metadata.
func (c *PexelsClient) Name() string { return "pexels" }

// Search queries the photo or video endpoint depending on the media-type
// hint and returns candidates in provider relevance order.
func (c *PexelsClient) Search(ctx context.Context, keywords []string, mediaType script.MediaType, limit int) ([]Candidate, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var endpoint *url.URL
	if mediaType == script.MediaTypeVideo {
		endpoint = c.baseURL.JoinPath("videos", "search")
	} else {
		endpoint = c.baseURL.JoinPath("v1", "search")
	}
	params := url.Values{}
	params.Set("query", strings.Join(keywords, " "))
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("orientation", "portrait")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: build search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.search.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "assets", "pexels search", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, services.Wrap(services.ErrTransient, "assets", "pexels search",
			fmt.Sprintf("status %s: %s", resp.Status, strings.TrimSpace(string(body))), nil)
	}

	if mediaType == script.MediaTypeVideo {
		return decodeVideoResults(resp.Body)
	}
	return decodePhotoResults(resp.Body)
}

// Download fetches url to dest, writing through a temporary file. An empty
// payload is treated as a failure.
func (c *PexelsClient) Download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("pexels: build download request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.downloader.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assets", "download", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return services.Wrap(services.ErrTransient, "assets", "download",
			fmt.Sprintf("status %s for %s", resp.Status, rawURL), nil)
	}

	if err := writeStream(resp.Body, dest); err != nil {
		return err
	}

	ok, err := fileutil.NonEmptyFile(dest)
	if err != nil {
		return err
	}
	if !ok {
		return services.Wrap(services.ErrTransient, "assets", "download",
			fmt.Sprintf("empty payload from %s", rawURL), nil)
	}
	return nil
}

func writeStream(r io.Reader, dest string) error {
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create download file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write download: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close download: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

func decodePhotoResults(r io.Reader) ([]Candidate, error) {
	var payload struct {
		Photos []struct {
			Width  int    `json:"width"`
			Height int    `json:"height"`
			Alt    string `json:"alt"`
			Src    struct {
				Original string `json:"original"`
				Large2x  string `json:"large2x"`
				Large    string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pexels: decode photo response: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Photos))
	for _, photo := range payload.Photos {
		primary := photo.Src.Large2x
		if primary == "" {
			primary = photo.Src.Original
		}
		if primary == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:        photo.Alt,
			Type:         script.MediaTypeImage,
			Width:        photo.Width,
			Height:       photo.Height,
			DownloadURL:  primary,
			SecondaryURL: photo.Src.Original,
		})
	}
	return candidates, nil
}

func decodeVideoResults(r io.Reader) ([]Candidate, error) {
	var payload struct {
		Videos []struct {
			Width      int `json:"width"`
			Height     int `json:"height"`
			VideoFiles []struct {
				Link     string `json:"link"`
				Width    int    `json:"width"`
				Height   int    `json:"height"`
				FileType string `json:"file_type"`
			} `json:"video_files"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"videos"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pexels: decode video response: %w", err)
	}

	candidates := make([]Candidate, 0, len(payload.Videos))
	for _, video := range payload.Videos {
		if len(video.VideoFiles) == 0 {
			continue
		}
		// The first file is the provider's preferred rendition; a second
		// file, when present, serves as the retry URL.
		candidate := Candidate{
			Title:       video.User.Name,
			Type:        script.MediaTypeVideo,
			Width:       video.Width,
			Height:      video.Height,
			DownloadURL: video.VideoFiles[0].Link,
		}
		if len(video.VideoFiles) > 1 {
			candidate.SecondaryURL = video.VideoFiles[1].Link
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
