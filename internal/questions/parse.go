// Package questions turns raw text-generation replies into validated
// multiple-choice questions.
package questions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pavelanni/quizgen/internal/model"
)

//go:embed schema.json
var schemaJSON string

// schemaURL is absolute so the compiler never resolves it against the
// working directory; it shows up in validation error locations.
const schemaURL = "mem://quizgen/questions.json"

var schema = jsonschema.MustCompileString(schemaURL, schemaJSON)

// ErrMalformedGeneration is matched by every parse failure.
var ErrMalformedGeneration = errors.New("malformed generation")

// Parse stages reported by MalformedError.
const (
	StageJSON   = "json"
	StageSchema = "schema"
)

// MalformedError reports why a reply could not be turned into questions.
// Stage is StageJSON for syntax errors and StageSchema for documents that
// decode but miss or mistype required fields.
type MalformedError struct {
	Stage string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Stage == StageSchema {
		return "LLM response does not match the question schema: " + e.Err.Error()
	}
	return "Failed to parse LLM response as JSON: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() []error {
	return []error{ErrMalformedGeneration, e.Err}
}

// StripFence removes an optional markdown code fence around a reply.
// A json-tagged fence is preferred; a bare fence is the fallback.
func StripFence(raw string) string {
	content := strings.TrimSpace(raw)
	if _, after, ok := strings.Cut(content, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(content, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return content
}

type payload struct {
	Questions []model.Question `json:"questions,omitempty"`
}

// Parse decodes a model reply of the form {"questions": [...]}.
// Questions without an "id" key get "q<n>" from their 1-based position; an
// id that is present is kept as is, even when empty.
func Parse(raw string) ([]model.Question, error) {
	content := StripFence(raw)

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, &MalformedError{Stage: StageJSON, Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &MalformedError{Stage: StageSchema, Err: err}
	}

	var p payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return nil, &MalformedError{Stage: StageSchema, Err: err}
	}

	obj, _ := doc.(map[string]any)
	items, _ := obj["questions"].([]any)
	out := make([]model.Question, 0, len(p.Questions))
	for i, q := range p.Questions {
		if !hasID(items, i) {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		out = append(out, q)
	}
	return out, nil
}

func hasID(items []any, i int) bool {
	if i >= len(items) {
		return false
	}
	item, _ := items[i].(map[string]any)
	_, ok := item["id"]
	return ok
}

// Validate checks questions that did not come from Parse, such as those
// read from an exam file, against the same schema.
func Validate(qs []model.Question) error {
	data, err := json.Marshal(payload{Questions: qs})
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode questions: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("questions do not match the question schema: %w", err)
	}
	return nil
}
