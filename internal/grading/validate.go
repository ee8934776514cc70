// Package grading validates submitted answers and scores them.
package grading

import (
	"sort"
	"strings"

	"github.com/pavelanni/quizgen/internal/model"
)

// Validate checks a submission against the question set. Every rule is
// evaluated; the returned messages are ordered by rule and are nil when the
// submission may be graded.
func Validate(questions []model.Question, answers []model.SubmittedAnswer) []string {
	var errs []string

	if len(questions) == 0 {
		errs = append(errs, "No questions available to validate")
	}
	if len(answers) == 0 {
		errs = append(errs, "No student answers provided")
	}

	questionIDs := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		questionIDs[q.ID] = struct{}{}
	}
	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = struct{}{}
	}

	var missing []string
	for id := range questionIDs {
		if _, ok := answered[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		errs = append(errs, "Missing answers for questions: "+strings.Join(missing, ", "))
	}

	seen := make(map[string]struct{}, len(answers))
	var duplicates []string
	for _, a := range answers {
		if _, ok := seen[a.QuestionID]; ok {
			duplicates = append(duplicates, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}
	if len(duplicates) > 0 {
		errs = append(errs, "Duplicate answers for questions: "+strings.Join(duplicates, ", "))
	}

	var invalid []string
	for _, a := range answers {
		if !a.Label.Valid() {
			invalid = append(invalid, a.QuestionID+": "+string(a.Label))
		}
		if _, ok := questionIDs[a.QuestionID]; !ok {
			invalid = append(invalid, a.QuestionID+": Invalid question ID")
		}
	}
	if len(invalid) > 0 {
		errs = append(errs, "Invalid answer format: "+strings.Join(invalid, ", "))
	}

	return errs
}
