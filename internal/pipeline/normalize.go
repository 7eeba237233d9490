package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

var (
	whitespaceExpr  = regexp.MustCompile(`\s+`)
	htmlTagExpr     = regexp.MustCompile(`<[^>]+>`)
	replyPrefixExpr = regexp.MustCompile(`(?i)^(RE:|FW:|AW:)\s*`)

	// spamExprs reject promotional boilerplate regardless of length.
	spamExprs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(click here|subscribe now|follow us)`),
		regexp.MustCompile(`(?i)(limited time|act now|urgent)`),
		regexp.MustCompile(`(?i)(free gift|100% free|no cost)`),
	}
)

// Normalizer converts raw adapter output into canonical content records
// and rejects records violating the quality thresholds. Rejected items
// never produce a ContentRecord; no truncation is performed.
type Normalizer struct {
	thresholds config.QualityConfig
}

// NewNormalizer binds the quality thresholds.
func NewNormalizer(thresholds config.QualityConfig) *Normalizer {
	return &Normalizer{thresholds: thresholds}
}

// Record builds a pending ContentRecord from a raw item, or fails with
// domain.ErrQualityRejected when the item is outside the thresholds.
func (n *Normalizer) Record(item domain.RawItem) (domain.ContentRecord, error) {
	title := cleanTitle(item.Title)
	body := cleanBody(item.Body)

	if err := n.check(title, body); err != nil {
		return domain.ContentRecord{}, err
	}

	return domain.ContentRecord{
		ID:           uuid.NewString(),
		SourceID:     item.SourceID,
		Title:        title,
		Body:         body,
		Link:         item.Link,
		ContentHash:  ContentHash(title, body),
		QualityScore: qualityScore(title, body),
		State:        domain.StatePending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (n *Normalizer) check(title, body string) error {
	t := n.thresholds
	// Thresholds count characters, not bytes, so non-ASCII content is
	// judged the same as ASCII.
	titleLen := utf8.RuneCountInString(title)
	bodyLen := utf8.RuneCountInString(body)
	switch {
	case titleLen < t.MinTitleLength:
		return fmt.Errorf("%w: title too short (%d < %d)", domain.ErrQualityRejected, titleLen, t.MinTitleLength)
	case titleLen > t.MaxTitleLength:
		return fmt.Errorf("%w: title too long (%d > %d)", domain.ErrQualityRejected, titleLen, t.MaxTitleLength)
	case bodyLen < t.MinContentLength:
		return fmt.Errorf("%w: body too short (%d < %d)", domain.ErrQualityRejected, bodyLen, t.MinContentLength)
	case bodyLen > t.MaxContentLength:
		return fmt.Errorf("%w: body too long (%d > %d)", domain.ErrQualityRejected, bodyLen, t.MaxContentLength)
	}

	combined := title + " " + body
	for _, expr := range spamExprs {
		if expr.MatchString(combined) {
			return fmt.Errorf("%w: spam pattern %q", domain.ErrQualityRejected, expr.String())
		}
	}
	return nil
}

// ContentHash derives the dedup key from case-folded,
// whitespace-collapsed title and body, so trivial formatting differences
// from re-scraping the same item do not produce duplicates.
func ContentHash(title, body string) string {
	fold := func(s string) string {
		return whitespaceExpr.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
	}
	sum := sha256.Sum256([]byte(fold(title) + "\n" + fold(body)))
	return hex.EncodeToString(sum[:])
}

// qualityScore is informational only: it never filters beyond the hard
// length thresholds. Longer bodies score higher, title-only items lower.
func qualityScore(title, body string) float64 {
	score := 40.0
	if len(body) > 0 {
		score += 20
	}
	switch {
	case len(body) > 2000:
		score += 30
	case len(body) > 500:
		score += 20
	case len(body) > 100:
		score += 10
	}
	if len(title) >= 30 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

func cleanTitle(title string) string {
	title = whitespaceExpr.ReplaceAllString(strings.TrimSpace(title), " ")
	return strings.TrimSpace(replyPrefixExpr.ReplaceAllString(title, ""))
}

func cleanBody(body string) string {
	body = htmlTagExpr.ReplaceAllString(body, " ")
	return whitespaceExpr.ReplaceAllString(strings.TrimSpace(body), " ")
}
