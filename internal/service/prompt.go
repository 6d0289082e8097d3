package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

const (
	// InsufficientDataSentinel is emitted by the model when the context cannot answer the question
	InsufficientDataSentinel = "INSUFFICIENT_DATA"
	// ConfidenceMarker precedes the trailing confidence score in model output
	ConfidenceMarker = "CONFIDENCE:"

	contextSeparator = "\n\n---\n\n"
)

// BuildContext renders retrieved chunks as source-tagged passages in input order.
// The order matters: citation numbering later follows it.
func BuildContext(chunks []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, fmt.Sprintf("[Source: %s, Page %d]\n%s", c.Metadata.DocName, c.Metadata.Page, c.Text))
	}
	return strings.Join(parts, contextSeparator)
}

// BuildAnswerPrompt builds the prompt used for both generation variants
func BuildAnswerPrompt(question string, chunks []domain.RetrievedChunk) string {
	return fmt.Sprintf(`You are a due diligence analyst helping answer questionnaire questions based on provided documents.

CONTEXT FROM DOCUMENTS:
%s

QUESTION: %s

INSTRUCTIONS:
1. Answer the question based ONLY on the provided context
2. If the context doesn't contain enough information, say "%s" and explain what's missing
3. Include specific citations in your answer using the format [Source: DocName, Page X]
4. Be concise but thorough
5. Provide a confidence score (0.0 to 1.0) at the end in the format: %s X.X

ANSWER:`, BuildContext(chunks), question, InsufficientDataSentinel, ConfidenceMarker)
}

// BuildMergePrompt asks the model to reconcile two candidate answers into one
func BuildMergePrompt(question, answerA, answerB string) string {
	return fmt.Sprintf(`You are reviewing two AI-generated answers to the same due diligence question.
Your task is to create the best possible final answer by:
1. Selecting the more accurate and complete information from each
2. Correcting any errors or inconsistencies
3. Improving clarity and formatting
4. Consolidating citations (remove duplicates, keep most specific)
5. Determining the final confidence score

QUESTION: %s

ANSWER A:
%s

ANSWER B:
%s

Create the optimal merged answer. Keep the same format with citations and end with %s X.X

FINAL ANSWER:`, question, answerA, answerB, ConfidenceMarker)
}
