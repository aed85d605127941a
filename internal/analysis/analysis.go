// Package analysis turns raw model output into the structured review shown to
// the user.
package analysis

import (
	"strings"
	"time"
)

// Type identifies which review flow produced a result.
type Type string

const (
	PreSubmission Type = "pre-submission"
	PostRejection Type = "post-rejection"
)

// Subsection is a third-level markdown heading and its accumulated text.
type Subsection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Section is a second-level markdown heading, its accumulated text, and any
// subsections beneath it. Nesting stops at two levels.
type Section struct {
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Subsections []Subsection `json:"subsections"`
}

// Result is the structured review returned to the client.
type Result struct {
	Sections     []Section `json:"sections"`
	AnalysisType Type      `json:"analysisType"`
	Timestamp    time.Time `json:"timestamp"`
	IsMock       bool      `json:"isMock,omitempty"`
}

// Parse scans a markdown document top to bottom and builds the section tree.
// "## " lines open sections, "### " lines open subsections, every other
// non-blank line accumulates into whichever is currently open. Blank lines are
// dropped. Duplicate headings produce duplicate sibling entries; nothing is
// merged. Input that yields no sections at all comes back as a single section
// holding the full text.
func Parse(text string, analysisType Type) *Result {
	var (
		sections   []Section
		current    = Section{Title: "Full Response", Subsections: []Subsection{}}
		subsection *Subsection
	)

	closeSubsection := func() {
		if subsection != nil {
			current.Subsections = append(current.Subsections, *subsection)
			subsection = nil
		}
	}
	closeSection := func() {
		closeSubsection()
		if current.Content != "" || len(current.Subsections) > 0 {
			sections = append(sections, current)
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "## "):
			closeSection()
			current = Section{
				Title:       strings.TrimSpace(strings.TrimPrefix(line, "## ")),
				Subsections: []Subsection{},
			}
		case strings.HasPrefix(line, "### "):
			closeSubsection()
			subsection = &Subsection{
				Title: strings.TrimSpace(strings.TrimPrefix(line, "### ")),
			}
		case line != "":
			if subsection != nil {
				subsection.Content += line + "\n"
			} else {
				current.Content += line + "\n"
			}
		}
	}
	closeSection()

	if len(sections) == 0 {
		sections = []Section{{
			Title:       "Analysis Results",
			Content:     text,
			Subsections: []Subsection{},
		}}
	}

	return &Result{
		Sections:     sections,
		AnalysisType: analysisType,
		Timestamp:    time.Now().UTC(),
	}
}
