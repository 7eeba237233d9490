package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
)

const (
	youtubeFeedBase = "https://www.youtube.com/feeds/videos.xml"
	maxPageBytes    = 2 << 20
)

// commonFeedPaths are probed during auto-discovery when a page declares
// no alternate feed link.
var commonFeedPaths = []string{"/feed", "/rss.xml", "/atom.xml"}

var channelIDExpr = regexp.MustCompile(`"channelId"\s*:\s*"(UC[0-9A-Za-z_-]{10,})"`)

// Resolver classifies a raw URL into a platform type and canonical
// feed/profile identifier. Resolution is idempotent: the same URL always
// yields the same result, and the only side effect is the discovery
// HTTP call for unclassified URLs and single-video YouTube links.
type Resolver struct {
	client *http.Client
}

// New wires an HTTP client; a 15s-timeout default is used when nil.
func New(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Resolver{client: client}
}

// Resolve returns the platform tag and canonical id for rawURL, or a
// *domain.ResolutionError when the URL cannot be classified.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (domain.Platform, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return "", "", &domain.ResolutionError{URL: rawURL, Reason: "not an absolute URL"}
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	switch {
	case host == "youtube.com" || host == "youtu.be" || host == "m.youtube.com":
		return r.resolveYouTube(ctx, parsed)
	case host == "instagram.com":
		return resolveProfile(parsed, domain.PlatformInstagram)
	case host == "twitter.com" || host == "x.com":
		return resolveProfile(parsed, domain.PlatformTwitter)
	}

	if looksLikeFeed(parsed) {
		return domain.PlatformRSS, parsed.String(), nil
	}

	if feedURL := r.discoverFeed(ctx, parsed); feedURL != "" {
		return domain.PlatformRSS, feedURL, nil
	}

	return domain.PlatformWebsite, parsed.String(), nil
}

// resolveYouTube rewrites any supported YouTube URL shape to the channel
// or playlist feed that serves it. Single-video and handle URLs are
// resolved to the parent channel by scanning the page for its channel id.
func (r *Resolver) resolveYouTube(ctx context.Context, u *url.URL) (domain.Platform, string, error) {
	path := u.Path

	switch {
	case strings.Contains(path, "/feeds/videos.xml"):
		return domain.PlatformYouTube, u.String(), nil

	case strings.Contains(path, "/channel/"):
		id := strings.SplitN(strings.SplitN(path, "/channel/", 2)[1], "/", 2)[0]
		if id == "" {
			return "", "", &domain.ResolutionError{URL: u.String(), Reason: "empty channel id"}
		}
		return domain.PlatformYouTube, youtubeFeedBase + "?channel_id=" + id, nil

	case strings.Contains(path, "/playlist"):
		id := u.Query().Get("list")
		if id == "" {
			return "", "", &domain.ResolutionError{URL: u.String(), Reason: "playlist URL without list parameter"}
		}
		return domain.PlatformYouTube, youtubeFeedBase + "?playlist_id=" + id, nil
	}

	// Video, handle, /c/ and /user/ URLs all carry the channel id only
	// inside the page markup.
	needsPage := strings.Contains(path, "/watch") ||
		strings.HasSuffix(strings.ToLower(u.Host), "youtu.be") ||
		strings.HasPrefix(path, "/@") ||
		strings.HasPrefix(path, "/c/") ||
		strings.HasPrefix(path, "/user/")
	if !needsPage {
		return "", "", &domain.ResolutionError{URL: u.String(), Reason: "unsupported YouTube URL shape"}
	}

	channelID, err := r.extractChannelID(ctx, u.String())
	if err != nil {
		return "", "", &domain.ResolutionError{URL: u.String(), Reason: err.Error()}
	}
	return domain.PlatformYouTube, youtubeFeedBase + "?channel_id=" + channelID, nil
}

func (r *Resolver) extractChannelID(ctx context.Context, pageURL string) (string, error) {
	body, err := r.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	match := channelIDExpr.FindStringSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("no channel id in page")
	}
	return match[1], nil
}

// resolveProfile extracts the profile handle from the first path segment.
func resolveProfile(u *url.URL, platform domain.Platform) (domain.Platform, string, error) {
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	handle := ""
	if len(segments) > 0 {
		handle = segments[0]
	}

	if handle == "" || reservedHandle(handle) {
		return "", "", &domain.ResolutionError{URL: u.String(), Reason: "no profile handle in URL"}
	}
	return platform, strings.TrimPrefix(handle, "@"), nil
}

func reservedHandle(handle string) bool {
	switch strings.ToLower(handle) {
	case "p", "stories", "tv", "reel", "explore",
		"home", "search", "notifications", "messages", "i":
		return true
	}
	return false
}

func looksLikeFeed(u *url.URL) bool {
	lower := strings.ToLower(u.Path)
	if strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".rss") || strings.HasSuffix(lower, ".atom") {
		return true
	}
	return strings.HasSuffix(strings.TrimSuffix(lower, "/"), "/feed")
}

// discoverFeed fetches the page and returns the first working feed URL,
// preferring declared <link rel="alternate"> tags over common paths.
func (r *Resolver) discoverFeed(ctx context.Context, u *url.URL) string {
	body, err := r.fetch(ctx, u.String())
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var candidates []string
	doc.Find(`link[rel="alternate"]`).Each(func(i int, sel *goquery.Selection) {
		feedType, _ := sel.Attr("type")
		if feedType != "application/rss+xml" && feedType != "application/atom+xml" {
			return
		}
		if href, ok := sel.Attr("href"); ok && href != "" {
			candidates = append(candidates, absoluteURL(u, href))
		}
	})

	for _, path := range commonFeedPaths {
		candidates = append(candidates, absoluteURL(u, path))
	}

	for _, candidate := range candidates {
		if r.validFeed(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

// validFeed confirms the candidate actually parses as RSS or Atom.
func (r *Resolver) validFeed(ctx context.Context, feedURL string) bool {
	body, err := r.fetch(ctx, feedURL)
	if err != nil {
		return false
	}
	_, err = gofeed.NewParser().ParseString(body)
	return err == nil
}

func (r *Resolver) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return string(body), nil
}

func absoluteURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
