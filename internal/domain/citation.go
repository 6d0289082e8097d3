package domain

import "unicode/utf8"

// CitationExcerptMaxChars bounds the chunk excerpt stored on a citation
const CitationExcerptMaxChars = 200

// Citation links a numbered inline marker to the chunk it came from.
// Num is 1-based and unique per answer; (DocName, Page) is the uniqueness key.
type Citation struct {
	Num     int    `json:"num"`
	DocID   string `json:"doc_id"`
	DocName string `json:"doc_name"`
	Page    int    `json:"page"`
	Text    string `json:"text"`
	ChunkID string `json:"chunk_id"`
}

// CitationExcerpt truncates chunk text to CitationExcerptMaxChars characters,
// appending an ellipsis when anything was cut.
func CitationExcerpt(text string) string {
	if utf8.RuneCountInString(text) <= CitationExcerptMaxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:CitationExcerptMaxChars]) + "..."
}
