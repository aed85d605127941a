package analysis

import "time"

const mockResponse = `# AI-Generated Manuscript Review Report

## Executive Summary
This is a placeholder response as the AI service is currently unavailable. Please check your internet connection and try again later. Below is a sample of the analysis you would receive when the service is available.

## Detailed Section Assessment
### 1. Title and Abstract
- **Assessment**: Unable to assess due to service unavailability
- **Recommendations**: Please try again when the service is available

### 2. Introduction
- **Assessment**: Unable to assess due to service unavailability
- **Recommendations**: Please try again when the service is available

## Rigor Assessment
### 1. Originality and Impact
- **Assessment**: Unable to assess due to service unavailability
- **Recommendations**: Please try again when the service is available

## Writing Assessment
### 1. Language and Style
- **Assessment**: Unable to assess due to service unavailability
- **Recommendations**: Please try again when the service is available

## Overall Recommendations
1. Try again later when the AI service is available
2. Check your internet connection
3. Verify your API key is valid and has sufficient quota
`

const mockPostRejectionNote = "\n\n## Note: This is a mock response. The actual analysis would include detailed feedback on the reviewer comments."

// Mock builds the placeholder result served when the model is unreachable.
// It is a single fixed section, not parsed markdown.
func Mock(analysisType Type) *Result {
	content := mockResponse
	if analysisType == PostRejection {
		content += mockPostRejectionNote
	}
	return &Result{
		Sections: []Section{{
			Title:       "API Service Unavailable",
			Content:     content,
			Subsections: []Subsection{},
		}},
		AnalysisType: analysisType,
		Timestamp:    time.Now().UTC(),
		IsMock:       true,
	}
}
