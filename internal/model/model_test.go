package model

import "testing"

func TestLabelValid(t *testing.T) {
	tests := []struct {
		label Label
		want  bool
	}{
		{LabelA, true},
		{LabelD, true},
		{"a", false},
		{"E", false},
		{"", false},
		{"AB", false},
	}
	for _, tt := range tests {
		if got := tt.label.Valid(); got != tt.want {
			t.Errorf("Label(%q).Valid() = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestNewState(t *testing.T) {
	s := NewState(CourseSetup{CourseName: "Go", PassingScore: 70})
	if s.GenerationStatus != GenerationNotStarted {
		t.Errorf("GenerationStatus = %q, want not_started", s.GenerationStatus)
	}
	if s.ValidationStatus != ValidationNotStarted {
		t.Errorf("ValidationStatus = %q, want not_started", s.ValidationStatus)
	}
	if s.CurrentStep != "initial" {
		t.Errorf("CurrentStep = %q, want initial", s.CurrentStep)
	}
}

func TestOutcomeFromState(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		s := State{
			Setup:            CourseSetup{PassingScore: 70},
			Questions:        []Question{{ID: "q1"}, {ID: "q2"}},
			ValidationStatus: ValidationInvalid,
			ValidationErrors: []string{"No student answers provided"},
		}
		out := OutcomeFromState(s)
		if out.Success {
			t.Error("expected success=false")
		}
		if out.Error != ValidationFailedMessage {
			t.Errorf("Error = %q", out.Error)
		}
		if len(out.ValidationErrors) != 1 {
			t.Errorf("expected 1 validation error, got %d", len(out.ValidationErrors))
		}
		if out.RawScore != nil || out.Percentage != nil || out.Passed != nil {
			t.Error("score fields must be absent for invalid submissions")
		}
		if out.PassingScore != 70 || out.TotalQuestions != 2 {
			t.Errorf("PassingScore = %v, TotalQuestions = %d", out.PassingScore, out.TotalQuestions)
		}
	})

	t.Run("graded", func(t *testing.T) {
		s := State{
			ValidationStatus:     ValidationValid,
			Graded:               true,
			RawScore:             7,
			Percentage:           70,
			Passed:               true,
			Report:               &GradingReport{TotalQuestions: 10},
			CertificateGenerated: true,
			CertificateText:      "Certificate",
			CompletionDate:       "March 04, 2025",
		}
		out := OutcomeFromState(s)
		if !out.Success || out.RawScore == nil || *out.RawScore != 7 || !*out.Passed {
			t.Errorf("unexpected outcome: %+v", out)
		}
		if out.CertificateText != "Certificate" || out.CompletionDate != "March 04, 2025" {
			t.Errorf("certificate = %q, %q", out.CertificateText, out.CompletionDate)
		}
		if out.CertificateError != "" {
			t.Errorf("CertificateError = %q", out.CertificateError)
		}
	})

	t.Run("certificate failed", func(t *testing.T) {
		s := State{
			ValidationStatus: ValidationValid,
			Graded:           true,
			RawScore:         10,
			Percentage:       100,
			Passed:           true,
			ErrorMessage:     "Certificate generation failed: timeout",
		}
		out := OutcomeFromState(s)
		if !out.Success {
			t.Error("a certificate failure keeps success=true")
		}
		if out.CertificateError != s.ErrorMessage || out.Error != "" {
			t.Errorf("CertificateError = %q, Error = %q", out.CertificateError, out.Error)
		}
	})

	t.Run("zero score is reported", func(t *testing.T) {
		out := OutcomeFromState(State{ValidationStatus: ValidationValid, Graded: true})
		if out.RawScore == nil || *out.RawScore != 0 || *out.Passed {
			t.Errorf("unexpected outcome: %+v", out)
		}
	})
}
