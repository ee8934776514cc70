package questions

import (
	"errors"
	"fmt"

	"github.com/pavelanni/quizgen/internal/model"
)

// Bounds on the number of questions a generation may produce.
const (
	MinQuestions = 5
	MaxQuestions = 25
)

var (
	ErrNoOutcomes         = errors.New("no learning outcomes provided")
	ErrTooFewQuestions    = errors.New("too few questions")
	ErrTooManyQuestions   = errors.New("too many questions")
	ErrIncompleteCoverage = errors.New("incomplete outcome coverage")
)

// CheckError carries the user-facing message of a failed check. It unwraps
// to one of the Err* sentinels above.
type CheckError struct {
	Kind error
	Msg  string
}

func (e *CheckError) Error() string { return e.Msg }

func (e *CheckError) Unwrap() error { return e.Kind }

func checkErrorf(kind error, format string, args ...any) error {
	return &CheckError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Check applies the post-generation rules in order; the first violation wins.
//
// Coverage compares the number of distinct outcome tags with the number of
// supplied outcomes. It does not require the tags to equal the outcome strings.
func Check(qs []model.Question, outcomes []string) error {
	if len(qs) < MinQuestions {
		return checkErrorf(ErrTooFewQuestions, "Expected at least %d questions, but generated %d questions",
			MinQuestions, len(qs))
	}
	if len(qs) > MaxQuestions {
		return checkErrorf(ErrTooManyQuestions, "Expected at most %d questions, but generated %d questions",
			MaxQuestions, len(qs))
	}

	covered := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		covered[q.OutcomeTag] = struct{}{}
	}
	if len(covered) < len(outcomes) {
		return checkErrorf(ErrIncompleteCoverage, "Not all learning outcomes are covered. Covered: %d, Required: %d",
			len(covered), len(outcomes))
	}
	return nil
}
