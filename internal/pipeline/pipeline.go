// Package pipeline runs one manuscript analysis end to end: extract text,
// scrape journal metadata, build the prompt, call the model through the retry
// controller, and shape the API response envelope.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/draftvista/draftvista/internal/analysis"
	"github.com/draftvista/draftvista/internal/extract"
	"github.com/draftvista/draftvista/internal/journal"
	"github.com/draftvista/draftvista/internal/prompt"
)

// MetadataSource yields journal metadata for a URL. It never fails; scrape
// problems degrade to a fallback record.
type MetadataSource interface {
	GetInfo(ctx context.Context, journalURL string) journal.Info
}

// Analyzer sends a prompt to the model and returns the parsed review.
type Analyzer interface {
	Analyze(ctx context.Context, promptText string, analysisType analysis.Type) (*analysis.Result, error)
}

// Request is one analysis job as received from the HTTP layer. FilePath points
// at the stored upload; the server deletes it after Run returns.
type Request struct {
	FilePath         string
	Filename         string
	Size             int64
	JournalURL       string
	ReviewerComments string
	Type             analysis.Type
}

// Response is the serialized success envelope.
type Response struct {
	Success      bool             `json:"success"`
	AnalysisType analysis.Type    `json:"analysisType"`
	Manuscript   ManuscriptMeta   `json:"manuscript"`
	Journal      JournalMeta      `json:"journal"`
	Analysis     *analysis.Result `json:"analysis"`
	Timestamp    time.Time        `json:"timestamp"`
}

type ManuscriptMeta struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

type JournalMeta struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Pipeline wires the stages together. All collaborators are injected.
type Pipeline struct {
	metadata MetadataSource
	analyzer Analyzer
	now      func() time.Time
}

// New creates a Pipeline.
func New(metadata MetadataSource, analyzer Analyzer) *Pipeline {
	return &Pipeline{metadata: metadata, analyzer: analyzer, now: time.Now}
}

// Run executes the analysis for one request. Extraction failures are the only
// error source before the model call; scraping always yields usable metadata.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	manuscriptText, err := extract.Text(req.FilePath)
	if err != nil {
		return nil, err
	}
	log.Printf("Extracted %d characters from %s", len(manuscriptText), req.Filename)

	info := p.metadata.GetInfo(ctx, req.JournalURL)
	log.Printf("Journal metadata for %s: %q (fallback=%v)", req.JournalURL, info.Name, info.Fallback)

	var promptText string
	switch req.Type {
	case analysis.PostRejection:
		promptText = prompt.PostRejection(manuscriptText, info, req.ReviewerComments)
	default:
		promptText = prompt.PreSubmission(manuscriptText, info)
	}

	result, err := p.analyzer.Analyze(ctx, promptText, req.Type)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	return &Response{
		Success:      true,
		AnalysisType: req.Type,
		Manuscript:   ManuscriptMeta{Filename: req.Filename, Size: req.Size},
		Journal:      JournalMeta{URL: req.JournalURL, Name: info.Name},
		Analysis:     result,
		Timestamp:    p.now().UTC(),
	}, nil
}
