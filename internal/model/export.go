package model

// ExamDocument is the file format read and written by the CLI. A generated
// exam is written without answers; the student's answers are filled in
// before the document is handed to the grade command.
type ExamDocument struct {
	Setup     CourseSetup       `json:"setup" yaml:"setup"`
	Questions []Question        `json:"mcqs" yaml:"mcqs"`
	Answers   []SubmittedAnswer `json:"student_answers,omitempty" yaml:"student_answers,omitempty"`
}

// GradeOutcome is the grading response returned by the HTTP service and
// printed by the CLI. Score fields are nil when the submission did not pass
// validation.
type GradeOutcome struct {
	Success          bool           `json:"success"`
	RawScore         *int           `json:"raw_score,omitempty"`
	Percentage       *float64       `json:"percentage,omitempty"`
	Passed           *bool          `json:"passed,omitempty"`
	PassingScore     float64        `json:"passing_score"`
	TotalQuestions   int            `json:"total_questions"`
	GradingReport    *GradingReport `json:"grading_report,omitempty"`
	CertificateText  string         `json:"certificate_text,omitempty"`
	CompletionDate   string         `json:"completion_date,omitempty"`
	ValidationErrors []string       `json:"validation_errors,omitempty"`
	Error            string         `json:"error,omitempty"`
	CertificateError string         `json:"certificate_error,omitempty"`
}

// ValidationFailedMessage is the Error text of an outcome rejected by validation.
const ValidationFailedMessage = "Validation failed"

// OutcomeFromState summarizes a terminal grading state.
func OutcomeFromState(s State) GradeOutcome {
	out := GradeOutcome{
		PassingScore:   s.Setup.PassingScore,
		TotalQuestions: len(s.Questions),
	}
	if s.ValidationStatus != ValidationValid {
		out.ValidationErrors = s.ValidationErrors
		out.Error = ValidationFailedMessage
		return out
	}
	if !s.Graded {
		out.Error = s.ErrorMessage
		return out
	}

	raw, pct, passed := s.RawScore, s.Percentage, s.Passed
	out.Success = true
	out.RawScore = &raw
	out.Percentage = &pct
	out.Passed = &passed
	out.GradingReport = s.Report
	if s.CertificateGenerated {
		out.CertificateText = s.CertificateText
		out.CompletionDate = s.CompletionDate
	} else if s.Passed {
		out.CertificateError = s.ErrorMessage
	}
	return out
}
