// Package journal scrapes publisher pages for journal identity, scope, and
// submission guidance. Scraping arbitrary third-party HTML is unreliable by
// nature, so GetInfo never fails: on any error it degrades to a synthesized
// record derived from the URL alone.
package journal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Info describes a target journal. Produced fresh per request, never stored.
type Info struct {
	URL          string    `json:"url"`
	Name         string    `json:"name"`
	Scope        string    `json:"scope"`
	Guidelines   string    `json:"guidelines"`
	Publisher    string    `json:"publisher"`
	Keywords     []string  `json:"keywords,omitempty"`
	RecentTopics []string  `json:"recentTopics,omitempty"`
	ScrapedAt    time.Time `json:"scrapedAt"`
	Fallback     bool      `json:"fallback,omitempty"`
}

// scraped holds the raw per-field results of one scrape pass. Empty fields
// are fields the heuristics could not fill.
type scraped struct {
	name         string
	scope        string
	guidelines   string
	publisher    string
	keywords     []string
	recentTopics []string
}

// Scraper fetches and interprets journal pages.
type Scraper struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewScraper creates a Scraper with the given fetch timeout and User-Agent.
// Publisher sites tend to reject default client identifiers, so the
// User-Agent should look like a desktop browser.
func NewScraper(timeout time.Duration, userAgent string) *Scraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		now:       time.Now,
	}
}

// GetInfo returns journal metadata for the given URL. It always returns a
// usable record: scraped fields where the heuristics succeeded, known-journal
// table fields where they did not, and a URL-derived fallback record if the
// page could not be fetched or parsed at all.
func (s *Scraper) GetInfo(ctx context.Context, journalURL string) Info {
	found, err := s.scrape(ctx, journalURL)
	if err != nil {
		log.Printf("Journal scraping failed for %s: %v", journalURL, err)
		return s.fallbackInfo(journalURL)
	}

	merged := overlayKnown(journalURL, *found)

	return Info{
		URL:          journalURL,
		Name:         orDefault(merged.name, "Unknown Journal"),
		Scope:        orDefault(merged.scope, "General academic research"),
		Guidelines:   orDefault(merged.guidelines, "Standard academic guidelines"),
		Publisher:    orDefault(merged.publisher, "Unknown Publisher"),
		Keywords:     merged.keywords,
		RecentTopics: merged.recentTopics,
		ScrapedAt:    s.now().UTC(),
	}
}

func (s *Scraper) scrape(ctx context.Context, journalURL string) (*scraped, error) {
	parsedURL, err := validateURL(journalURL)
	if err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx, journalURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing journal page: %w", err)
	}

	found := &scraped{
		name:         firstMatch(doc, nameProbes, 5, 200, trimTitleSuffix),
		scope:        firstMatch(doc, scopeProbes, 50, 1000, nil),
		guidelines:   collectGuidelines(doc),
		publisher:    extractPublisher(doc),
		keywords:     extractKeywords(doc),
		recentTopics: extractRecentTopics(doc),
	}

	if found.scope == "" {
		found.scope = readabilityScope(body, parsedURL)
	}
	if len(found.recentTopics) == 0 {
		found.recentTopics = s.topicsFromFeed(ctx, doc, parsedURL)
	}

	return found, nil
}

func (s *Scraper) fetch(ctx context.Context, journalURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, journalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching journal page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("journal page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading journal page: %w", err)
	}
	return body, nil
}

func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid journal URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid journal URL: %s", raw)
	}
	return u, nil
}

// probe is one CSS-selector candidate in an extraction cascade. When attr is
// set the value is read from that attribute instead of the element text.
type probe struct {
	selector string
	attr     string
}

var nameProbes = []probe{
	{selector: "title"},
	{selector: "h1"},
	{selector: ".journal-title"},
	{selector: ".journal-name"},
	{selector: "[data-journal-title]"},
	{selector: ".site-title"},
	{selector: ".brand-title"},
}

var scopeProbes = []probe{
	{selector: ".journal-description"},
	{selector: ".about-journal"},
	{selector: ".journal-scope"},
	{selector: ".description"},
	{selector: `meta[name="description"]`, attr: "content"},
	{selector: ".journal-aims"},
	{selector: ".aims-scope"},
}

var guidelinesSelectors = []string{
	".submission-guidelines",
	".author-guidelines",
	".instructions-authors",
	".guidelines",
	`[href*="submission"]`,
	`[href*="guidelines"]`,
	`[href*="authors"]`,
}

var publisherProbes = []probe{
	{selector: ".publisher"},
	{selector: ".publisher-name"},
	{selector: "[data-publisher]"},
	{selector: ".copyright"},
	{selector: "footer .publisher"},
}

var knownPublisherNames = []string{
	"springer", "elsevier", "ieee", "acm", "nature", "wiley", "taylor", "sage",
}

// firstMatch evaluates probes in order and returns the first value whose
// length falls strictly between minLen and maxLen.
func firstMatch(doc *goquery.Document, probes []probe, minLen, maxLen int, clean func(string) string) string {
	for _, p := range probes {
		sel := doc.Find(p.selector).First()
		if sel.Length() == 0 {
			continue
		}

		var text string
		if p.attr != "" {
			text, _ = sel.Attr(p.attr)
		} else {
			text = sel.Text()
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if clean != nil {
			text = clean(text)
		}
		if len(text) > minLen && len(text) < maxLen {
			return text
		}
	}
	return ""
}

var (
	pipeSuffix = regexp.MustCompile(`\s*\|\s*.*$`)
	dashSuffix = regexp.MustCompile(`\s*-\s*.*$`)
)

// trimTitleSuffix strips "| site" and "- suffix" tails from page titles.
func trimTitleSuffix(title string) string {
	title = pipeSuffix.ReplaceAllString(title, "")
	title = dashSuffix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// collectGuidelines accumulates the text of every matching element longer
// than 20 characters, unlike the first-match cascades.
func collectGuidelines(doc *goquery.Document) string {
	var parts []string
	for _, selector := range guidelinesSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				parts = append(parts, text)
			}
		})
	}
	return strings.Join(parts, " | ")
}

func extractPublisher(doc *goquery.Document) string {
	if publisher := firstMatch(doc, publisherProbes, 3, 100, nil); publisher != "" {
		return publisher
	}

	// Last resort: scan the page body for well-known publisher names.
	pageText := strings.ToLower(doc.Find("body").Text())
	for _, name := range knownPublisherNames {
		if strings.Contains(pageText, name) {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return ""
}

func extractKeywords(doc *goquery.Document) []string {
	var keywords []string

	if meta, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, k := range strings.Split(meta, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}

	doc.Find(".subject-area, .keyword, .topic").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" && len(text) < 50 {
			keywords = append(keywords, text)
		}
	})

	if len(keywords) > 10 {
		keywords = keywords[:10]
	}
	return keywords
}

func extractRecentTopics(doc *goquery.Document) []string {
	var topics []string
	doc.Find(".article-title, .paper-title, h2, h3").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		text := strings.TrimSpace(sel.Text())
		if len(text) > 10 && len(text) < 200 {
			topics = append(topics, text)
		}
		return true
	})
	return topics
}

// readabilityScope runs readability extraction over the page and uses its
// excerpt as a scope description when the selector cascade found nothing.
func readabilityScope(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	excerpt := strings.TrimSpace(article.Excerpt)
	if len(excerpt) > 50 && len(excerpt) < 1000 {
		return excerpt
	}
	return ""
}

func (s *Scraper) fallbackInfo(journalURL string) Info {
	return Info{
		URL:        journalURL,
		Name:       nameFromURL(journalURL),
		Scope:      "Academic research journal - scope could not be determined",
		Guidelines: "Standard academic guidelines apply - original research, proper methodology, clear writing",
		Publisher:  "Unknown Publisher",
		ScrapedAt:  s.now().UTC(),
		Fallback:   true,
	}
}

var genericHostLabels = map[string]bool{
	"www": true, "com": true, "org": true, "net": true, "edu": true,
	"journal": true, "journals": true,
}

// nameFromURL derives a display name from the URL's hostname: generic labels
// and TLDs are dropped, the first remaining label is capitalized, and
// " Journal" is appended.
func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "Unknown Journal"
	}

	for _, part := range strings.Split(u.Hostname(), ".") {
		if part == "" || genericHostLabels[strings.ToLower(part)] {
			continue
		}
		return strings.ToUpper(part[:1]) + part[1:] + " Journal"
	}
	return "Unknown Journal"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
