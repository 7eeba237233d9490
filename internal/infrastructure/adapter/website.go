package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/scrape"
)

const websiteItemLimit = 10

// articleSelectors are tried in order; the first one that matches wins.
var articleSelectors = []string{
	"article", ".post", ".entry", ".blog-post", ".news-item",
}

// WebsiteAdapter scrapes article-shaped blocks from a generic page.
type WebsiteAdapter struct {
	client *http.Client
}

var _ scrape.Adapter = (*WebsiteAdapter)(nil)

// NewWebsite wires an HTTP client; nil selects a 20s-timeout default.
func NewWebsite(client *http.Client) *WebsiteAdapter {
	return &WebsiteAdapter{client: defaultClient(client)}
}

// Platform identifies the adapter inside the registry.
func (a *WebsiteAdapter) Platform() domain.Platform {
	return domain.PlatformWebsite
}

// Fetch downloads the page and extracts article blocks. A page with no
// extractable blocks yields zero items, not an error.
func (a *WebsiteAdapter) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	pageURL := source.CanonicalFeedID
	if pageURL == "" {
		pageURL = source.URL
	}

	body, err := fetchBody(ctx, a.client, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, permanentf("parse page %s: %v", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, permanentf("invalid page url %s: %v", pageURL, err)
	}

	return extractArticles(doc, base, source), nil
}

func extractArticles(doc *goquery.Document, base *url.URL, source domain.Source) []domain.RawItem {
	var blocks *goquery.Selection
	for _, selector := range articleSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			blocks = found
			break
		}
	}
	if blocks == nil {
		return nil
	}

	items := make([]domain.RawItem, 0, websiteItemLimit)
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		if len(items) >= websiteItemLimit {
			return false
		}

		title := firstText(block, "h1", "h2", "h3")
		if title == "" {
			return true
		}

		body := blockBody(block)
		link := blockLink(block, base)

		items = append(items, domain.RawItem{
			SourceID:   source.ID,
			ExternalID: link,
			Title:      title,
			Body:       body,
			Link:       link,
		})
		return true
	})

	return items
}

// firstText returns the trimmed text of the first matching child.
func firstText(block *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(block.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// blockBody joins paragraph text inside the block.
func blockBody(block *goquery.Selection) string {
	var parts []string
	block.Find("p").Each(func(i int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func blockLink(block *goquery.Selection, base *url.URL) string {
	href, ok := block.Find("a[href]").First().Attr("href")
	if !ok || href == "" {
		return base.String()
	}

	ref, err := url.Parse(href)
	if err != nil {
		return base.String()
	}
	return base.ResolveReference(ref).String()
}
