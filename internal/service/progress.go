package service

import "encoding/json"

// Stage names a step of the per-question answer pipeline
type Stage string

const (
	StageRetrievingContext   Stage = "retrieving_context"
	StageParallelGeneration  Stage = "parallel_generation"
	StageMergingAnswers      Stage = "merging_answers"
	StageFormattingCitations Stage = "formatting_citations"
	StageComplete            Stage = "complete"
	StageCached              Stage = "cached"
	StageError               Stage = "error"
)

// EventType distinguishes the three kinds of progress events
type EventType string

const (
	EventTypeProgress EventType = "progress"
	EventTypeError    EventType = "error"
	EventTypeComplete EventType = "complete"
)

// ProgressEvent is one observation pushed to a streaming consumer.
// Complete events carry the batch summary in Result and serialize as the
// summary itself plus the type field.
type ProgressEvent struct {
	Type       EventType                `json:"type"`
	Stage      Stage                    `json:"stage,omitempty"`
	ProjectID  string                   `json:"project_id,omitempty"`
	QuestionID string                   `json:"question_id,omitempty"`
	Current    int                      `json:"current,omitempty"`
	Total      int                      `json:"total,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Result     *ProjectGenerationResult `json:"result,omitempty"`
}

func (e ProgressEvent) MarshalJSON() ([]byte, error) {
	if e.Type == EventTypeComplete && e.Result != nil {
		return json.Marshal(struct {
			Type EventType `json:"type"`
			*ProjectGenerationResult
		}{Type: e.Type, ProjectGenerationResult: e.Result})
	}
	type plain ProgressEvent
	return json.Marshal(plain(e))
}

// ProgressFunc receives pipeline events. It must not block for long; the
// pipeline calls it synchronously between stages.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) emit(event ProgressEvent) {
	if f != nil {
		f(event)
	}
}
