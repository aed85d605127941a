package journal

import "strings"

// knownJournal is a static record used to backfill fields the scraper could
// not find for major publishers. Scraped values always win per-field.
type knownJournal struct {
	urlPattern string
	name       string
	publisher  string
	scope      string
	guidelines string
}

var knownJournals = []knownJournal{
	{
		urlPattern: "nature.com",
		name:       "Nature",
		publisher:  "Nature Publishing Group",
		scope:      "Multidisciplinary science journal covering all areas of science and technology",
		guidelines: "High-impact research with broad significance. Strict formatting requirements.",
	},
	{
		urlPattern: "ieee.org",
		name:       "IEEE Journals",
		publisher:  "IEEE",
		scope:      "Engineering, computer science, and technology research",
		guidelines: "Technical rigor, reproducibility, and practical applications required.",
	},
	{
		urlPattern: "springer.com",
		name:       "Springer Journals",
		publisher:  "Springer",
		scope:      "Academic research across multiple disciplines",
		guidelines: "Peer-reviewed research with clear methodology and significant contributions.",
	},
	{
		urlPattern: "elsevier.com",
		name:       "Elsevier Journals",
		publisher:  "Elsevier",
		scope:      "Scientific and technical research publications",
		guidelines: "Original research with clear impact and rigorous methodology.",
	},
	{
		urlPattern: "acm.org",
		name:       "ACM Journals",
		publisher:  "Association for Computing Machinery",
		scope:      "Computer science and information technology research",
		guidelines: "Technical innovation, reproducible results, and clear contributions to computing.",
	},
}

// overlayKnown merges a known-journal record under the scraped fields when
// the URL matches the record's pattern. The table seeds the record; any field
// the scrape actually filled overwrites the table value.
func overlayKnown(journalURL string, found scraped) scraped {
	lower := strings.ToLower(journalURL)
	for _, k := range knownJournals {
		if !strings.Contains(lower, strings.ToLower(k.urlPattern)) {
			continue
		}
		merged := found
		if merged.name == "" {
			merged.name = k.name
		}
		if merged.publisher == "" {
			merged.publisher = k.publisher
		}
		if merged.scope == "" {
			merged.scope = k.scope
		}
		if merged.guidelines == "" {
			merged.guidelines = k.guidelines
		}
		return merged
	}
	return found
}
