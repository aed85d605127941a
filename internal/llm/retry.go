package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/draftvista/draftvista/internal/analysis"
)

// DefaultRetries is the number of additional attempts after the first call.
const DefaultRetries = 2

// The two flows back off for different fixed delays between attempts. The
// delays are flat: no jitter, no exponential growth.
const (
	preSubmissionDelay = 3000 * time.Millisecond
	postRejectionDelay = 1500 * time.Millisecond
)

// Controller wraps oracle calls with a bounded retry loop, then either parses
// the response, substitutes the mock result when the service is unreachable,
// or surfaces a classified error.
type Controller struct {
	oracle  Oracle
	retries int
	sleep   func(time.Duration)
}

// NewController creates a Controller. sleep may be nil, in which case
// time.Sleep is used; tests inject a recording stub instead.
func NewController(oracle Oracle, retries int, sleep func(time.Duration)) *Controller {
	if retries < 0 {
		retries = DefaultRetries
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Controller{oracle: oracle, retries: retries, sleep: sleep}
}

// Analyze sends the prompt and returns the parsed review. Every error,
// transient or permanent, consumes the retry budget before classification;
// only then are unreachable-service errors converted into the mock response.
func (c *Controller) Analyze(ctx context.Context, promptText string, analysisType analysis.Type) (*analysis.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			log.Printf("Retrying model call (%d of %d)", attempt, c.retries)
			c.sleep(retryDelay(analysisType))
		}

		text, err := c.oracle.GenerateContent(ctx, promptText)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("received empty response from the AI model")
		}
		if err == nil {
			return analysis.Parse(text, analysisType), nil
		}
		lastErr = err
		log.Printf("Model call failed: %v", err)
	}

	if isUnreachable(lastErr) {
		log.Println("Model unreachable after retries, serving mock response")
		return analysis.Mock(analysisType), nil
	}
	return nil, classify(lastErr, analysisType)
}

// isUnreachable reports whether the error looks like the service cannot be
// reached at all, which downgrades to the mock response instead of failing
// the request.
func isUnreachable(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"unavailable", "connection", "timeout", "ECONNREFUSED"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// classify maps a final error onto a user-facing category by ordered
// substring match; the first hit wins. There is no timeout category here:
// isUnreachable matches "timeout" before classification runs and the
// controller serves the mock response instead.
func classify(err error, analysisType analysis.Type) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return errors.New("The AI model is currently unavailable. Please try again later.")
	case strings.Contains(msg, "quota") || strings.Contains(msg, "exceeded"):
		return errors.New("API quota exceeded. Please check your API key or try again later.")
	case strings.Contains(msg, "API key") || strings.Contains(msg, "authentication"):
		return errors.New("Invalid API key. Please check your Google AI API key configuration.")
	case strings.Contains(msg, "content policy"):
		return errors.New("The content was blocked by the AI service. Please try with different content.")
	case strings.Contains(msg, "model"):
		return errors.New("The selected AI model is not available. Please contact support.")
	case strings.Contains(msg, "rate limit"):
		return errors.New("Rate limit exceeded. Please wait a few minutes before trying again.")
	}

	if analysisType == analysis.PostRejection {
		return fmt.Errorf("Post-rejection analysis failed: %v", err)
	}
	return fmt.Errorf("Analysis failed: %v", err)
}

func retryDelay(analysisType analysis.Type) time.Duration {
	if analysisType == analysis.PostRejection {
		return postRejectionDelay
	}
	return preSubmissionDelay
}
