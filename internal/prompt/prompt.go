// Package prompt renders manuscript text and journal metadata into the fixed
// review prompts sent to the model. The headings in these templates are a
// contract with the response parser: the model is told to answer in "## " /
// "### " sections, which is what the parser walks.
package prompt

import (
	"fmt"
	"strings"

	"github.com/draftvista/draftvista/internal/journal"
)

// MaxManuscriptChars caps how much manuscript text is interpolated into a
// prompt, guarding the model's token budget.
const MaxManuscriptChars = 30000

const preSubmissionTemplate = `You are an expert academic reviewer with extensive experience in reviewing for high-impact journals.
TARGET JOURNAL: %s
JOURNAL SCOPE: %s
SUBMISSION GUIDELINES: %s
YOUR TASK: Provide a comprehensive, detailed review following this exact structure:

# AI-Generated Manuscript Review Report
## Executive Summary
[Provide a 3-5 sentence overview of the manuscript's strengths, weaknesses, and overall assessment]

## Detailed Section Assessment
### 1. Title and Abstract
- **Assessment**: [Concise evaluation of clarity, informativeness, and alignment with content]
- **Recommendations**: [Specific, actionable suggestions]

### 2. Introduction
- **Assessment**: [Evaluation of literature review, gap identification, and rationale]
- **Recommendations**: [Specific suggestions for improvement]

### 3. Methodology
- **Assessment**: [Evaluation of rigor, reproducibility, and appropriateness]
- **Recommendations**: [Specific methodological improvements]

### 4. Results
- **Assessment**: [Evaluation of data presentation and analysis]
- **Recommendations**: [Specific suggestions for improvement]

### 5. Discussion and Conclusion
- **Assessment**: [Evaluation of interpretation and implications]
- **Recommendations**: [Specific suggestions for improvement]

## Rigor Assessment
### 1. Originality and Impact
- **Assessment**: [Evaluation of novelty and contribution]
- **Recommendations**: [Specific suggestions for improvement]

### 2. Technical Soundness
- **Assessment**: [Evaluation of methodology and analysis]
- **Recommendations**: [Specific suggestions for improvement]

## Writing Assessment
### 1. Language and Style
- **Assessment**: [Evaluation of clarity, conciseness, and academic tone]
- **Recommendations**: [Specific suggestions for improvement]

### 2. Structure and Flow
- **Assessment**: [Evaluation of logical organization]
- **Recommendations**: [Specific suggestions for improvement]

## Overall Recommendations
1. [Priority 1 recommendation]
2. [Priority 2 recommendation]
3. [Priority 3 recommendation]

## Suitability for Target Journal
- **Assessment**: [Specific evaluation of fit with the target journal]
- **Recommendations**: [Specific suggestions for improving fit]

INSTRUCTIONS:
1. Be specific, constructive, and provide examples from the text.
2. Use clear section headers and maintain a professional, academic tone.
3. Focus on actionable feedback that the authors can implement.
4. Ensure all sections are addressed, even if briefly.
5. If a section is missing or cannot be evaluated, state this explicitly.

MANUSCRIPT CONTENT (first 30,000 characters):
%s`

const postRejectionTemplate = `You are an experienced academic reviewer with expertise in helping authors respond to reviewer comments and improve their manuscripts.
TARGET JOURNAL: %s
JOURNAL SCOPE: %s
YOUR TASK: Provide a detailed analysis of the reviewer comments and specific guidance for the authors to address them effectively.

# Response to Reviewer Comments - Analysis and Recommendations
## Summary of Reviewers' Concerns
[Provide a concise summary of the main concerns raised by the reviewers]

## Detailed Response to Each Comment
For each major comment from the reviewers, provide:
1. **Reviewer Comment**: [The exact comment]
2. **Our Interpretation**: [Clarify what the reviewer is asking for]
3. **Suggested Response**: [How to address the comment]
4. **Manuscript Changes**: [Specific changes needed in the manuscript]

## Overall Strategy for Revision
1. [Key strategy point 1]
2. [Key strategy point 2]
3. [Key strategy point 3]

## Specific Recommendations by Section
### 1. Introduction
- [Specific recommendations]

### 2. Methods
- [Specific recommendations]

### 3. Results
- [Specific recommendations]

### 4. Discussion
- [Specific recommendations]

## Additional Suggestions
- [Any other suggestions not directly related to reviewer comments]

REVIEWER COMMENTS:
%s

MANUSCRIPT CONTENT (first 30,000 characters):
%s

INSTRUCTIONS:
1. Be thorough but concise in your analysis.
2. Provide specific, actionable recommendations.
3. Maintain a constructive, professional tone.
4. Where possible, suggest specific text changes or additions.
5. Focus on addressing the reviewers' concerns while maintaining the integrity of the research.`

// PreSubmission renders the structured review prompt for a manuscript that
// has not been submitted yet.
func PreSubmission(manuscriptText string, info journal.Info) string {
	return fmt.Sprintf(preSubmissionTemplate,
		journalName(info),
		info.Scope,
		info.Guidelines,
		Truncate(manuscriptText))
}

// PostRejection renders the reviewer-response prompt. Reviewer comments are
// required input; the HTTP layer rejects requests without them before the
// builder runs.
func PostRejection(manuscriptText string, info journal.Info, reviewerComments string) string {
	return fmt.Sprintf(postRejectionTemplate,
		journalName(info),
		info.Scope,
		reviewerComments,
		Truncate(manuscriptText))
}

// Truncate hard-caps manuscript text at MaxManuscriptChars.
func Truncate(text string) string {
	if len(text) > MaxManuscriptChars {
		return text[:MaxManuscriptChars]
	}
	return text
}

func journalName(info journal.Info) string {
	if strings.TrimSpace(info.Name) == "" {
		return "Not specified"
	}
	return info.Name
}
