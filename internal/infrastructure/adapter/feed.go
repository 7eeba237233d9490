package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
)

func transientf(format string, args ...any) error {
	return domain.TransientFetch(fmt.Errorf(format, args...))
}

func permanentf(format string, args ...any) error {
	return domain.PermanentFetch(fmt.Errorf(format, args...))
}

// feedItems maps parsed feed entries to raw items, newest first as the
// feed orders them. Entries without a usable link are skipped.
func feedItems(parsed *gofeed.Feed, source domain.Source, limit int) []domain.RawItem {
	items := make([]domain.RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}

		link := entry.Link
		if link == "" && strings.HasPrefix(entry.GUID, "http") {
			link = entry.GUID
		}
		if link == "" {
			continue
		}

		externalID := entry.GUID
		if externalID == "" {
			externalID = link
		}

		items = append(items, domain.RawItem{
			SourceID:    source.ID,
			ExternalID:  externalID,
			Title:       entry.Title,
			Body:        entryBody(entry),
			Link:        link,
			PublishedAt: entryTime(entry),
		})
	}
	return items
}

// entryBody prefers full content over the summary field.
func entryBody(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}

func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Now().UTC()
}
