package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pavelanni/quizgen/internal/grading"
	"github.com/pavelanni/quizgen/internal/llm"
	"github.com/pavelanni/quizgen/internal/llm/prompts"
	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/questions"
)

func (e *Engine) generateQuestions(ctx context.Context, s model.State) model.State {
	s.CurrentStep = "mcq_generation"
	s.GenerationStatus = model.GenerationInProgress

	outcomes := s.Setup.LearningOutcomes
	if len(outcomes) == 0 {
		return generationFailed(s, model.FailureNoOutcomes, "No learning outcomes provided")
	}

	prompt, err := prompts.Generation(s.Setup)
	if err != nil {
		return generationFailed(s, model.FailureGeneration, "MCQ generation failed: "+err.Error())
	}

	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return generationFailed(s, model.FailureConfiguration, "AI provider configuration error: "+err.Error())
		}
		return generationFailed(s, model.FailureGeneration, "MCQ generation failed: "+err.Error())
	}

	qs, err := questions.Parse(raw)
	if err != nil {
		slog.Debug("unparseable generation", "raw", raw)
		return generationFailed(s, model.FailureMalformed, err.Error())
	}

	if err := questions.Check(qs, outcomes); err != nil {
		kind := model.FailureGeneration
		switch {
		case errors.Is(err, questions.ErrTooFewQuestions):
			kind = model.FailureTooFewQuestions
		case errors.Is(err, questions.ErrTooManyQuestions):
			kind = model.FailureTooManyQuestions
		case errors.Is(err, questions.ErrIncompleteCoverage):
			kind = model.FailureIncompleteCoverage
		}
		return generationFailed(s, kind, err.Error())
	}

	s.Questions = qs
	s.GenerationStatus = model.GenerationCompleted
	s.GenerationFailure = model.FailureNone
	s.GenerationError = ""
	s.CurrentStep = "mcq_generation_complete"
	slog.Info("questions generated", "course", s.Setup.CourseName, "count", len(qs), "outcomes", len(outcomes))
	return s
}

func generationFailed(s model.State, kind model.FailureKind, msg string) model.State {
	slog.Warn("question generation failed", "course", s.Setup.CourseName, "kind", kind, "error", msg)
	s.Questions = nil
	s.GenerationStatus = model.GenerationFailed
	s.GenerationFailure = kind
	s.GenerationError = msg
	return s
}

func validateAnswers(_ context.Context, s model.State) model.State {
	s.CurrentStep = "validation"
	s.ValidationStatus = model.ValidationInProgress

	if errs := grading.Validate(s.Questions, s.Answers); len(errs) > 0 {
		slog.Info("answers rejected", "student", s.Setup.StudentName, "errors", len(errs))
		s.ValidationStatus = model.ValidationInvalid
		s.ValidationErrors = errs
		return s
	}

	s.ValidationStatus = model.ValidationValid
	s.ValidationErrors = nil
	s.CurrentStep = "validation_complete"
	return s
}

func gradeAnswers(_ context.Context, s model.State) model.State {
	s.CurrentStep = "grading"
	if s.ValidationStatus != model.ValidationValid {
		s.ErrorMessage = "grading requires validated answers"
		return s
	}

	res := grading.Grade(s.Questions, s.Answers, s.Setup.PassingScore)
	s.Graded = true
	s.RawScore = res.RawScore
	s.Percentage = res.Percentage
	s.Passed = res.Passed
	s.Report = &res.Report
	s.CurrentStep = "grading_complete"

	slog.Info("exam graded",
		"student", s.Setup.StudentName,
		"raw_score", res.RawScore,
		"percentage", res.Report.Percentage,
		"passed", res.Passed,
	)
	return s
}

func (e *Engine) issueCertificate(ctx context.Context, s model.State) model.State {
	if !s.Passed {
		s.CertificateGenerated = false
		s.CertificateText = ""
		s.CurrentStep = "certificate_skipped"
		return s
	}
	s.CurrentStep = "certificate_generation"

	date := e.now().Format(CompletionDateLayout)
	prompt, err := prompts.Certificate(prompts.CertificateData{
		StudentName:    s.Setup.StudentName,
		CourseName:     s.Setup.CourseName,
		InstructorName: s.Setup.InstructorName,
		CompletionDate: date,
		Percentage:     s.Percentage,
	})
	if err != nil {
		return certificateFailed(s, err)
	}

	text, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return certificateFailed(s, err)
	}
	if text == "" {
		return certificateFailed(s, errors.New("empty response"))
	}

	s.CertificateGenerated = true
	s.CertificateText = text
	s.CompletionDate = date
	s.CurrentStep = "certificate_complete"
	return s
}

func certificateFailed(s model.State, err error) model.State {
	slog.Error("certificate generation failed", "student", s.Setup.StudentName, "error", err)
	s.CertificateGenerated = false
	s.CertificateText = ""
	s.ErrorMessage = "Certificate generation failed: " + err.Error()
	return s
}
