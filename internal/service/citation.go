package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloo-solutions/diligence/internal/domain"
)

var (
	inlineSourcePattern = regexp.MustCompile(`(?i)\[Source:\s*([^\]]+?),?\s*Page\s*(\d+)\]`)
	strayAnnotation     = regexp.MustCompile(`(?i)\s*\(Source:[^)]*?,?\s*Page\s*\d+\)`)
)

type citationKey struct {
	docName string
	page    int
}

func newCitationKey(docName string, page int) citationKey {
	return citationKey{docName: strings.ToLower(strings.TrimSpace(docName)), page: page}
}

// FormatCitations numbers the sources an answer refers to and rewrites inline
// [Source: Name, Page N] mentions as [N].
//
// Numbers are assigned while scanning chunks in retrieval order, so they can
// appear out of sequence in the text when the model cites sources in a
// different order than they were retrieved.
func FormatCitations(text string, chunks []domain.RetrievedChunk) (string, []domain.Citation) {
	citations := make([]domain.Citation, 0)
	numbers := make(map[citationKey]int)
	lower := strings.ToLower(text)

	for _, c := range chunks {
		key := newCitationKey(c.Metadata.DocName, c.Metadata.Page)
		if _, seen := numbers[key]; seen {
			continue
		}
		mentioned := strings.Contains(lower, strings.ToLower(c.Metadata.DocName)) ||
			strings.Contains(lower, fmt.Sprintf("page %d", c.Metadata.Page))
		if !mentioned {
			continue
		}

		num := len(citations) + 1
		numbers[key] = num
		citations = append(citations, domain.Citation{
			Num:     num,
			DocID:   c.Metadata.DocID,
			DocName: c.Metadata.DocName,
			Page:    c.Metadata.Page,
			Text:    domain.CitationExcerpt(c.Text),
			ChunkID: c.ID,
		})
	}

	formatted := inlineSourcePattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := inlineSourcePattern.FindStringSubmatch(match)
		name := strings.TrimSpace(groups[1])
		page, err := strconv.Atoi(groups[2])
		if err != nil {
			return match
		}

		key := newCitationKey(name, page)
		num, ok := numbers[key]
		if !ok {
			// the model cited a source that was not among the retrieved chunks
			num = len(citations) + 1
			numbers[key] = num
			citations = append(citations, domain.Citation{
				Num:     num,
				DocName: name,
				Page:    page,
			})
		}
		return fmt.Sprintf("[%d]", num)
	})

	formatted = strayAnnotation.ReplaceAllString(formatted, "")

	return formatted, citations
}
