package journal

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxFeedTopics = 5

// topicsFromFeed pulls recent article titles from a syndication feed the page
// advertises, used when no topics were found in the markup itself. Feed
// problems are never fatal; the scrape simply carries no topics.
func (s *Scraper) topicsFromFeed(ctx context.Context, doc *goquery.Document, base *url.URL) []string {
	feedURL := discoverFeedURL(doc, base)
	if feedURL == "" {
		return nil
	}

	parser := gofeed.NewParser()
	parser.Client = s.client
	parser.UserAgent = s.userAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		log.Printf("Journal feed %s not usable: %v", feedURL, err)
		return nil
	}

	var topics []string
	for _, item := range feed.Items {
		if len(topics) >= maxFeedTopics {
			break
		}
		title := strings.TrimSpace(item.Title)
		if len(title) > 10 && len(title) < 200 {
			topics = append(topics, title)
		}
	}
	return topics
}

// discoverFeedURL finds an advertised RSS or Atom feed link and resolves it
// against the page URL.
func discoverFeedURL(doc *goquery.Document, base *url.URL) string {
	var feedURL string
	doc.Find(`link[type="application/rss+xml"], link[type="application/atom+xml"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		feedURL = base.ResolveReference(ref).String()
		return false
	})
	return feedURL
}
