package grading

import (
	"math"

	"github.com/pavelanni/quizgen/internal/model"
)

// Result is the outcome of grading a validated submission.
type Result struct {
	RawScore   int
	Percentage float64 // unrounded, used for the pass decision
	Passed     bool
	Report     model.GradingReport
}

// Grade scores answers against the correct labels of questions. A question
// without a submitted answer counts as incorrect. Passing is inclusive:
// a percentage equal to passingScore passes.
func Grade(questions []model.Question, answers []model.SubmittedAnswer, passingScore float64) Result {
	submitted := make(map[string]model.Label, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.Label
	}

	correct := 0
	results := make([]model.QuestionResult, 0, len(questions))
	for _, q := range questions {
		var answer *model.Label
		if l, ok := submitted[q.ID]; ok {
			answer = &l
		}
		isCorrect := answer != nil && *answer == q.CorrectLabel
		if isCorrect {
			correct++
		}
		results = append(results, model.QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Prompt,
			StudentAnswer: answer,
			CorrectAnswer: q.CorrectLabel,
			IsCorrect:     isCorrect,
			OutcomeTag:    q.OutcomeTag,
		})
	}

	total := len(questions)
	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) * 100 / float64(total)
	}
	passed := total > 0 && percentage >= passingScore

	return Result{
		RawScore:   correct,
		Percentage: percentage,
		Passed:     passed,
		Report: model.GradingReport{
			TotalQuestions:   total,
			CorrectAnswers:   correct,
			IncorrectAnswers: total - correct,
			RawScore:         correct,
			Percentage:       round2(percentage),
			PassingScore:     passingScore,
			Passed:           passed,
			QuestionResults:  results,
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
