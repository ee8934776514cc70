package model

// Label identifies one of the four answer choices of a question.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the valid choice labels in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD}

// Valid reports whether l is one of A, B, C or D.
func (l Label) Valid() bool {
	switch l {
	case LabelA, LabelB, LabelC, LabelD:
		return true
	}
	return false
}

// DefaultPassingScore is the passing threshold used when the caller supplies none.
const DefaultPassingScore = 70.0

// Question is a single multiple-choice question tied to one learning outcome.
type Question struct {
	ID           string           `json:"id" yaml:"id"`
	Prompt       string           `json:"question" yaml:"question"`
	Choices      map[Label]string `json:"choices" yaml:"choices"`
	CorrectLabel Label            `json:"correct_answer" yaml:"correct_answer"`
	OutcomeTag   string           `json:"learning_outcome" yaml:"learning_outcome"`
}

// SubmittedAnswer is a student's answer to one question.
type SubmittedAnswer struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Label      Label  `json:"answer" yaml:"answer"`
}

// CourseSetup is the caller-supplied exam configuration.
type CourseSetup struct {
	CourseName       string   `json:"course_name" yaml:"course_name"`
	InstructorName   string   `json:"teacher_name" yaml:"teacher_name"`
	StudentName      string   `json:"student_name" yaml:"student_name"`
	LearningOutcomes []string `json:"learning_outcomes" yaml:"learning_outcomes"`
	PassingScore     float64  `json:"passing_score" yaml:"passing_score"`
}

// GenerationStatus tracks the question generation phase.
type GenerationStatus string

const (
	GenerationNotStarted GenerationStatus = "not_started"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// ValidationStatus tracks the answer validation phase.
type ValidationStatus string

const (
	ValidationNotStarted ValidationStatus = "not_started"
	ValidationInProgress ValidationStatus = "in_progress"
	ValidationValid      ValidationStatus = "valid"
	ValidationInvalid    ValidationStatus = "invalid"
)

// FailureKind categorizes a failed generation so callers can render it
// without inspecting error text.
type FailureKind string

const (
	FailureNone               FailureKind = ""
	FailureConfiguration      FailureKind = "configuration"
	FailureNoOutcomes         FailureKind = "no_outcomes"
	FailureMalformed          FailureKind = "malformed"
	FailureTooFewQuestions    FailureKind = "too_few_questions"
	FailureTooManyQuestions   FailureKind = "too_many_questions"
	FailureIncompleteCoverage FailureKind = "incomplete_coverage"
	FailureGeneration         FailureKind = "generation"
)

// QuestionResult is the per-question line of a grading report.
type QuestionResult struct {
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	StudentAnswer *Label `json:"student_answer"`
	CorrectAnswer Label  `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	OutcomeTag    string `json:"learning_outcome"`
}

// GradingReport summarizes a graded exam.
type GradingReport struct {
	TotalQuestions   int              `json:"total_questions"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	RawScore         int              `json:"raw_score"`
	Percentage       float64          `json:"percentage"` // rounded to 2 decimals
	PassingScore     float64          `json:"passing_score"`
	Passed           bool             `json:"passed"`
	QuestionResults  []QuestionResult `json:"question_results"`
}

// State is the aggregate threaded through a workflow run.
// A fresh State is built for every request and discarded afterwards.
type State struct {
	Setup CourseSetup

	Questions         []Question
	GenerationStatus  GenerationStatus
	GenerationError   string
	GenerationFailure FailureKind

	Answers          []SubmittedAnswer
	ValidationStatus ValidationStatus
	ValidationErrors []string

	Graded     bool
	RawScore   int
	Percentage float64 // unrounded
	Passed     bool
	Report     *GradingReport

	CertificateGenerated bool
	CertificateText      string
	CompletionDate       string

	CurrentStep  string
	ErrorMessage string
}

// NewState returns a State in its initial phase for the given setup.
func NewState(setup CourseSetup) State {
	return State{
		Setup:            setup,
		GenerationStatus: GenerationNotStarted,
		ValidationStatus: ValidationNotStarted,
		CurrentStep:      "initial",
	}
}
