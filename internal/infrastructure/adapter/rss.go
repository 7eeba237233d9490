package adapter

import (
	"context"
	"net/http"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/scrape"
)

const rssItemLimit = 20

// RSSAdapter fetches RSS and Atom feeds.
type RSSAdapter struct {
	client *http.Client
	parser *gofeed.Parser
}

var _ scrape.Adapter = (*RSSAdapter)(nil)

// NewRSS wires an HTTP client; nil selects a 20s-timeout default.
func NewRSS(client *http.Client) *RSSAdapter {
	return &RSSAdapter{client: defaultClient(client), parser: gofeed.NewParser()}
}

// Platform identifies the adapter inside the registry.
func (a *RSSAdapter) Platform() domain.Platform {
	return domain.PlatformRSS
}

// Fetch downloads and parses the source's feed. A feed that fails to
// parse is a permanent failure: retrying a malformed document within
// the run cannot help.
func (a *RSSAdapter) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	feedURL := source.CanonicalFeedID
	if feedURL == "" {
		feedURL = source.URL
	}

	body, err := fetchBody(ctx, a.client, feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := a.parser.ParseString(body)
	if err != nil {
		return nil, permanentf("parse feed %s: %v", feedURL, err)
	}

	return feedItems(parsed, source, rssItemLimit), nil
}
