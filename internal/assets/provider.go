package assets

import (
	"context"

	"reelforge/internal/script"
)

// Candidate is one search result from a media provider, ordered by provider
// relevance. DownloadURL is the preferred fetch location; SecondaryURL, when
// present, is retried once if the primary download fails.
type Candidate struct {
	Title        string
	Type         script.MediaType
	Width        int
	Height       int
	DownloadURL  string
	SecondaryURL string
}

// Provider searches a stock media catalog and fetches files from it. Search
// must tolerate empty result sets; Download writes the fetched payload to
// dest and fails on empty responses.
type Provider interface {
	Name() string
	Search(ctx context.Context, keywords []string, mediaType script.MediaType, limit int) ([]Candidate, error)
	Download(ctx context.Context, url, dest string) error
}

// Synthesizer renders a local placeholder image from descriptive text at the
// target frame size. It may fail (missing rendering backend, unwritable
// destination) and the resolver cascade absorbs that failure.
type Synthesizer interface {
	Render(text string, width, height int, dest string) error
}
