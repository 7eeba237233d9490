package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/scrape"
)

const socialItemLimit = 10

// postSelectors cover the markup variants social profile pages serve to
// anonymous clients.
var postSelectors = []string{
	`article[data-testid="tweet"]`, `[data-testid="tweet"]`, `article`,
}

// SocialAdapter scrapes public profile pages for Instagram and Twitter
// sources. When the page yields no parseable posts it falls back to a
// single profile-level item so the source still produces something the
// quality filter can judge.
type SocialAdapter struct {
	client     *http.Client
	platform   domain.Platform
	profileURL func(handle string) string
}

var _ scrape.Adapter = (*SocialAdapter)(nil)

// NewInstagram builds the Instagram profile variant.
func NewInstagram(client *http.Client) *SocialAdapter {
	return &SocialAdapter{
		client:   defaultClient(client),
		platform: domain.PlatformInstagram,
		profileURL: func(handle string) string {
			return "https://www.instagram.com/" + handle + "/"
		},
	}
}

// NewTwitter builds the Twitter/X profile variant.
func NewTwitter(client *http.Client) *SocialAdapter {
	return &SocialAdapter{
		client:   defaultClient(client),
		platform: domain.PlatformTwitter,
		profileURL: func(handle string) string {
			return "https://x.com/" + handle
		},
	}
}

// Platform identifies the adapter inside the registry.
func (a *SocialAdapter) Platform() domain.Platform {
	return a.platform
}

// Fetch downloads the profile page and extracts posts. The canonical id
// is the profile handle produced by the resolver.
func (a *SocialAdapter) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	handle := source.CanonicalFeedID
	if handle == "" {
		return nil, permanentf("source %s has no profile handle", source.ID)
	}

	pageURL := a.profileURL(handle)
	body, err := fetchBody(ctx, a.client, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, permanentf("parse profile %s: %v", pageURL, err)
	}

	items := a.extractPosts(doc, source, pageURL)
	if len(items) == 0 {
		items = a.profileFallback(doc, source, pageURL, handle)
	}
	return items, nil
}

func (a *SocialAdapter) extractPosts(doc *goquery.Document, source domain.Source, pageURL string) []domain.RawItem {
	var posts *goquery.Selection
	for _, selector := range postSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			posts = found
			break
		}
	}
	if posts == nil {
		return nil
	}

	items := make([]domain.RawItem, 0, socialItemLimit)
	posts.EachWithBreak(func(i int, post *goquery.Selection) bool {
		if len(items) >= socialItemLimit {
			return false
		}

		text := strings.TrimSpace(post.Text())
		if text == "" {
			return true
		}

		title := text
		if runes := []rune(title); len(runes) > 100 {
			title = string(runes[:100])
		}

		link := pageURL
		if href, ok := post.Find("a[href]").First().Attr("href"); ok && strings.HasPrefix(href, "http") {
			link = href
		}

		items = append(items, domain.RawItem{
			SourceID:    source.ID,
			ExternalID:  fmt.Sprintf("%s#%d", link, i),
			Title:       title,
			Body:        text,
			Link:        link,
			PublishedAt: time.Now().UTC(),
		})
		return true
	})

	return items
}

// profileFallback emits one item built from the page's Open Graph
// metadata; the quality filter decides whether it is worth keeping.
func (a *SocialAdapter) profileFallback(doc *goquery.Document, source domain.Source, pageURL, handle string) []domain.RawItem {
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	description, _ := doc.Find(`meta[property="og:description"]`).Attr("content")

	if title == "" {
		title = fmt.Sprintf("%s profile @%s", a.platform, handle)
	}

	return []domain.RawItem{{
		SourceID:    source.ID,
		ExternalID:  pageURL,
		Title:       title,
		Body:        description,
		Link:        pageURL,
		PublishedAt: time.Now().UTC(),
	}}
}
