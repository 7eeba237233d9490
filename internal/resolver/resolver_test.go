package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ContentCurator/internal/domain"
)

func TestResolveYouTubeURLShapes(t *testing.T) {
	t.Parallel()

	r := New(nil)
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			"feed passthrough",
			"https://www.youtube.com/feeds/videos.xml?channel_id=UCabcdefghij",
			"https://www.youtube.com/feeds/videos.xml?channel_id=UCabcdefghij",
		},
		{
			"channel url",
			"https://www.youtube.com/channel/UCabcdefghij/videos",
			"https://www.youtube.com/feeds/videos.xml?channel_id=UCabcdefghij",
		},
		{
			"playlist url",
			"https://www.youtube.com/playlist?list=PL123456",
			"https://www.youtube.com/feeds/videos.xml?playlist_id=PL123456",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			platform, canonical, err := r.Resolve(context.Background(), tc.url)
			if err != nil {
				t.Fatalf("Resolve(%s) error = %v", tc.url, err)
			}
			if platform != domain.PlatformYouTube {
				t.Fatalf("platform = %s, want youtube", platform)
			}
			if canonical != tc.want {
				t.Fatalf("canonical = %s, want %s", canonical, tc.want)
			}
		})
	}
}

func TestResolveSocialProfiles(t *testing.T) {
	t.Parallel()

	r := New(nil)
	cases := []struct {
		url      string
		platform domain.Platform
		handle   string
	}{
		{"https://www.instagram.com/natgeo/", domain.PlatformInstagram, "natgeo"},
		{"https://twitter.com/nasa", domain.PlatformTwitter, "nasa"},
		{"https://x.com/nasa/status/123", domain.PlatformTwitter, "nasa"},
	}

	for _, tc := range cases {
		tc := tc
		platform, handle, err := r.Resolve(context.Background(), tc.url)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", tc.url, err)
		}
		if platform != tc.platform || handle != tc.handle {
			t.Fatalf("Resolve(%s) = %s %s, want %s %s", tc.url, platform, handle, tc.platform, tc.handle)
		}
	}
}

func TestResolveRejectsReservedSocialPaths(t *testing.T) {
	t.Parallel()

	r := New(nil)
	var resolutionErr *domain.ResolutionError
	_, _, err := r.Resolve(context.Background(), "https://www.instagram.com/explore/")
	if !errors.As(err, &resolutionErr) {
		t.Fatalf("Resolve(explore) error = %v, want ResolutionError", err)
	}
}

func TestResolveFeedLikeURLs(t *testing.T) {
	t.Parallel()

	r := New(nil)
	for _, rawURL := range []string{
		"https://blog.example.com/rss.xml",
		"https://blog.example.com/posts.atom",
		"https://blog.example.com/feed",
	} {
		platform, canonical, err := r.Resolve(context.Background(), rawURL)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", rawURL, err)
		}
		if platform != domain.PlatformRSS || canonical != rawURL {
			t.Fatalf("Resolve(%s) = %s %s", rawURL, platform, canonical)
		}
	}
}

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Example Blog</title><link>https://example.com</link>
<item><title>Post</title><link>https://example.com/post</link></item>
</channel></rss>`

func TestResolveDiscoversDeclaredFeed(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/blog", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head>
<link rel="alternate" type="application/rss+xml" href="%s/custom-feed.xml">
</head><body>blog</body></html>`, server.URL)
	})
	mux.HandleFunc("/custom-feed.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleFeed)
	})

	r := New(server.Client())
	platform, canonical, err := r.Resolve(context.Background(), server.URL+"/blog")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if platform != domain.PlatformRSS {
		t.Fatalf("platform = %s, want rss", platform)
	}
	if canonical != server.URL+"/custom-feed.xml" {
		t.Fatalf("canonical = %s", canonical)
	}
}

func TestResolveProbesCommonFeedPaths(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, "<html><head></head><body>no declared feed</body></html>")
		case "/feed":
			fmt.Fprint(w, sampleFeed)
		default:
			http.NotFound(w, r)
		}
	})

	r := New(server.Client())
	platform, canonical, err := r.Resolve(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if platform != domain.PlatformRSS || canonical != server.URL+"/feed" {
		t.Fatalf("Resolve() = %s %s", platform, canonical)
	}
}

func TestResolveFallsBackToWebsite(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "<html><body>plain page, no feeds anywhere</body></html>")
	}))
	defer server.Close()

	r := New(server.Client())
	platform, canonical, err := r.Resolve(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if platform != domain.PlatformWebsite {
		t.Fatalf("platform = %s, want website", platform)
	}
	if canonical == "" {
		t.Fatalf("canonical is empty")
	}
}

func TestResolveRejectsGarbage(t *testing.T) {
	t.Parallel()

	r := New(nil)
	for _, rawURL := range []string{"", "not a url", "/relative/path"} {
		var resolutionErr *domain.ResolutionError
		if _, _, err := r.Resolve(context.Background(), rawURL); !errors.As(err, &resolutionErr) {
			t.Fatalf("Resolve(%q) error = %v, want ResolutionError", rawURL, err)
		}
	}
}
