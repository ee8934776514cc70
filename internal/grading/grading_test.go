package grading

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pavelanni/quizgen/internal/model"
)

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("Question %d?", i+1),
			Choices: map[model.Label]string{
				model.LabelA: "a", model.LabelB: "b", model.LabelC: "c", model.LabelD: "d",
			},
			CorrectLabel: model.LabelB,
			OutcomeTag:   "outcome",
		}
	}
	return qs
}

// answerAll answers every question, getting the first `right` correct.
func answerAll(qs []model.Question, right int) []model.SubmittedAnswer {
	answers := make([]model.SubmittedAnswer, len(qs))
	for i, q := range qs {
		label := model.LabelA
		if i < right {
			label = q.CorrectLabel
		}
		answers[i] = model.SubmittedAnswer{QuestionID: q.ID, Label: label}
	}
	return answers
}

func TestValidateComplete(t *testing.T) {
	qs := makeQuestions(5)
	if errs := Validate(qs, answerAll(qs, 2)); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	qs := makeQuestions(5)

	tests := []struct {
		name      string
		questions []model.Question
		answers   []model.SubmittedAnswer
		want      []string
	}{
		{
			name:      "nothing at all",
			questions: nil,
			answers:   nil,
			want:      []string{"No questions available to validate", "No student answers provided"},
		},
		{
			name:      "no answers",
			questions: qs[:2],
			answers:   nil,
			want:      []string{"No student answers provided", "Missing answers for questions: q1, q2"},
		},
		{
			name:      "no questions",
			questions: nil,
			answers:   []model.SubmittedAnswer{{QuestionID: "q1", Label: "A"}},
			want:      []string{"No questions available to validate", "Invalid answer format: q1: Invalid question ID"},
		},
		{
			name:      "two missing sorted",
			questions: qs,
			answers: []model.SubmittedAnswer{
				{QuestionID: "q4", Label: "A"},
				{QuestionID: "q1", Label: "B"},
				{QuestionID: "q2", Label: "C"},
			},
			want: []string{"Missing answers for questions: q3, q5"},
		},
		{
			name:      "duplicate on otherwise complete set",
			questions: qs,
			answers:   append(answerAll(qs, 5), model.SubmittedAnswer{QuestionID: "q3", Label: "A"}),
			want:      []string{"Duplicate answers for questions: q3"},
		},
		{
			name:      "duplicates in encounter order",
			questions: qs,
			answers: append(answerAll(qs, 5),
				model.SubmittedAnswer{QuestionID: "q5", Label: "A"},
				model.SubmittedAnswer{QuestionID: "q2", Label: "A"},
			),
			want: []string{"Duplicate answers for questions: q5, q2"},
		},
		{
			name:      "bad label and unknown id",
			questions: qs[:2],
			answers: []model.SubmittedAnswer{
				{QuestionID: "q1", Label: "E"},
				{QuestionID: "q2", Label: "a"},
				{QuestionID: "q9", Label: "B"},
			},
			want: []string{"Invalid answer format: q1: E, q2: a, q9: Invalid question ID"},
		},
		{
			name:      "bad label on unknown id gives two entries",
			questions: qs[:1],
			answers: []model.SubmittedAnswer{
				{QuestionID: "q1", Label: "A"},
				{QuestionID: "zz", Label: "X"},
			},
			want: []string{"Invalid answer format: zz: X, zz: Invalid question ID"},
		},
		{
			name:      "all categories",
			questions: qs[:3],
			answers: []model.SubmittedAnswer{
				{QuestionID: "q1", Label: "A"},
				{QuestionID: "q1", Label: "F"},
				{QuestionID: "q7", Label: "C"},
			},
			want: []string{
				"Missing answers for questions: q2, q3",
				"Duplicate answers for questions: q1",
				"Invalid answer format: q1: F, q7: Invalid question ID",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.questions, tt.answers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() =\n  %q\nwant\n  %q", got, tt.want)
			}
		})
	}
}

func TestGradeThreshold(t *testing.T) {
	qs := makeQuestions(10)
	answers := answerAll(qs, 7)

	tests := []struct {
		threshold float64
		passed    bool
	}{
		{70.0, true},
		{70.1, false},
		{0, true},
		{100, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("threshold %.1f", tt.threshold), func(t *testing.T) {
			res := Grade(qs, answers, tt.threshold)
			if res.RawScore != 7 {
				t.Errorf("RawScore = %d, want 7", res.RawScore)
			}
			if res.Percentage != 70.0 {
				t.Errorf("Percentage = %v, want 70", res.Percentage)
			}
			if res.Passed != tt.passed {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.passed)
			}
			if res.Report.Passed != tt.passed || res.Report.PassingScore != tt.threshold {
				t.Errorf("report disagrees with result: %+v", res.Report)
			}
		})
	}
}

func TestGradeReport(t *testing.T) {
	qs := makeQuestions(3)
	answers := answerAll(qs, 2)
	res := Grade(qs, answers, 50)

	r := res.Report
	if r.TotalQuestions != 3 || r.CorrectAnswers != 2 || r.IncorrectAnswers != 1 || r.RawScore != 2 {
		t.Errorf("unexpected totals: %+v", r)
	}
	if r.Percentage != 66.67 {
		t.Errorf("report Percentage = %v, want 66.67", r.Percentage)
	}
	if res.Percentage == r.Percentage {
		t.Error("result percentage should stay unrounded")
	}
	if len(r.QuestionResults) != 3 {
		t.Fatalf("expected 3 question results, got %d", len(r.QuestionResults))
	}
	for i, qr := range r.QuestionResults {
		if qr.QuestionID != qs[i].ID {
			t.Errorf("result %d id = %q, want %q", i, qr.QuestionID, qs[i].ID)
		}
		if qr.Question != qs[i].Prompt || qr.OutcomeTag != "outcome" || qr.CorrectAnswer != model.LabelB {
			t.Errorf("result %d fields not copied: %+v", i, qr)
		}
	}
	if !r.QuestionResults[0].IsCorrect || r.QuestionResults[2].IsCorrect {
		t.Error("correctness flags wrong")
	}
}

func TestGradeMissingAnswerIsIncorrect(t *testing.T) {
	qs := makeQuestions(2)
	answers := []model.SubmittedAnswer{{QuestionID: "q1", Label: model.LabelB}}
	res := Grade(qs, answers, 50)
	if res.RawScore != 1 || !res.Passed {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Report.QuestionResults[1].StudentAnswer != nil {
		t.Error("missing answer should be reported as nil")
	}
}

func TestGradeZeroQuestions(t *testing.T) {
	res := Grade(nil, nil, 0)
	if res.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", res.Percentage)
	}
	if res.Passed {
		t.Error("zero questions must not pass")
	}
}

func TestGradeDeterministic(t *testing.T) {
	qs := makeQuestions(10)
	answers := answerAll(qs, 6)
	first := Grade(qs, answers, 60)
	second := Grade(qs, answers, 60)
	if !reflect.DeepEqual(first, second) {
		t.Error("grading the same input twice gave different results")
	}
}
