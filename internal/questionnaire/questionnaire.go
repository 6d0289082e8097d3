// Package questionnaire loads the sample due-diligence questionnaire that
// projects are assembled from.
package questionnaire

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultQuestionType is assigned to questions that do not declare a type
const DefaultQuestionType = "factual"

// Question is one selectable sample question
type Question struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
	Type string `yaml:"type" json:"type"`
}

// Section groups questions under a heading such as "Financial"
type Section struct {
	Name      string     `yaml:"name" json:"name"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Questionnaire is the full set of sample questions
type Questionnaire struct {
	Sections []Section `yaml:"sections" json:"sections"`
}

// Entry is a question resolved together with its section name
type Entry struct {
	Section  string
	Question Question
}

// Load reads a questionnaire file. YAML and JSON are both accepted.
// A missing file yields an empty questionnaire.
func Load(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Questionnaire{Sections: []Section{}}, nil
		}
		return nil, fmt.Errorf("failed to read questionnaire: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates questionnaire content
func Parse(data []byte) (*Questionnaire, error) {
	var q Questionnaire
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questionnaire: %w", err)
	}
	if q.Sections == nil {
		q.Sections = []Section{}
	}

	seen := make(map[string]struct{})
	for si := range q.Sections {
		section := &q.Sections[si]
		section.Name = strings.TrimSpace(section.Name)
		if section.Name == "" {
			return nil, fmt.Errorf("section %d has no name", si)
		}
		for qi := range section.Questions {
			question := &section.Questions[qi]
			question.ID = strings.TrimSpace(question.ID)
			question.Text = strings.TrimSpace(question.Text)
			if question.ID == "" || question.Text == "" {
				return nil, fmt.Errorf("section %q: question %d needs an id and text", section.Name, qi)
			}
			if _, dup := seen[question.ID]; dup {
				return nil, fmt.Errorf("duplicate question id %q", question.ID)
			}
			seen[question.ID] = struct{}{}
			if question.Type == "" {
				question.Type = DefaultQuestionType
			}
		}
	}

	return &q, nil
}

// Lookup finds a question by id
func (q *Questionnaire) Lookup(id string) (Entry, bool) {
	for _, section := range q.Sections {
		for _, question := range section.Questions {
			if question.ID == id {
				return Entry{Section: section.Name, Question: question}, true
			}
		}
	}
	return Entry{}, false
}

// Count returns the number of questions across all sections
func (q *Questionnaire) Count() int {
	n := 0
	for _, section := range q.Sections {
		n += len(section.Questions)
	}
	return n
}
