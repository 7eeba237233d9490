package adapter

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/scrape"
)

const youtubeItemLimit = 15

// YouTubeAdapter fetches channel and playlist uploads through YouTube's
// public video feeds. The resolver has already rewritten the source URL
// into its canonical videos.xml form.
type YouTubeAdapter struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ scrape.Adapter = (*YouTubeAdapter)(nil)

// NewYouTube wires an HTTP client; nil selects a 20s-timeout default.
func NewYouTube(client *http.Client) *YouTubeAdapter {
	return &YouTubeAdapter{client: defaultClient(client), parser: gofeed.NewParser()}
}

// Platform identifies the adapter inside the registry.
func (a *YouTubeAdapter) Platform() domain.Platform {
	return domain.PlatformYouTube
}

// Fetch downloads the channel or playlist feed and maps entries to raw
// items. A source without a canonical feed id cannot be served and is a
// permanent failure for this run.
func (a *YouTubeAdapter) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	if source.CanonicalFeedID == "" {
		return nil, permanentf("source %s has no canonical feed id", source.ID)
	}

	body, err := fetchBody(ctx, a.client, source.CanonicalFeedID)
	if err != nil {
		return nil, err
	}

	parsed, err := a.parser.ParseString(body)
	if err != nil {
		return nil, permanentf("parse video feed %s: %v", source.CanonicalFeedID, err)
	}

	return feedItems(parsed, source, youtubeItemLimit), nil
}
