package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/pavelanni/quizgen/internal/llm"
	"github.com/pavelanni/quizgen/internal/metrics"
	"github.com/pavelanni/quizgen/internal/model"
)

// CompletionDateLayout formats certificate completion dates.
const CompletionDateLayout = "January 02, 2006"

// Engine owns the collaborators shared by all flows. It holds no
// per-request state and may be used concurrently.
type Engine struct {
	gen llm.TextGenerator
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for certificate dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine that calls gen for question and certificate text.
func New(gen llm.TextGenerator, opts ...Option) *Engine {
	e := &Engine{gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerationFlow returns the single-node generation flow.
func (e *Engine) GenerationFlow() Flow {
	return Flow{
		Name:  "generation",
		Entry: StepGenerate,
		Nodes: map[Step]Node{StepGenerate: e.generateQuestions},
		Next:  nextGeneration,
	}
}

// GradingFlow returns the validate, grade, certificate flow.
func (e *Engine) GradingFlow() Flow {
	return Flow{
		Name:  "grading",
		Entry: StepValidate,
		Nodes: map[Step]Node{
			StepValidate:    validateAnswers,
			StepGrade:       gradeAnswers,
			StepCertificate: e.issueCertificate,
		},
		Next: nextGrading,
	}
}

// Generate runs the generation flow for a fresh state built from setup.
func (e *Engine) Generate(ctx context.Context, setup model.CourseSetup) model.State {
	s, err := e.GenerationFlow().Run(ctx, model.NewState(setup))
	if err != nil {
		slog.Error("generation flow aborted", "error", err)
		s.ErrorMessage = err.Error()
	}

	outcome := string(s.GenerationStatus)
	if s.GenerationStatus == model.GenerationFailed {
		outcome = string(s.GenerationFailure)
	}
	metrics.WorkflowRuns().WithLabelValues("generation", outcome).Inc()
	return s
}

// Grade runs the grading flow over caller-supplied questions and answers.
func (e *Engine) Grade(ctx context.Context, setup model.CourseSetup, questions []model.Question, answers []model.SubmittedAnswer) model.State {
	s := model.NewState(setup)
	s.Questions = questions
	s.Answers = answers

	s, err := e.GradingFlow().Run(ctx, s)
	if err != nil {
		slog.Error("grading flow aborted", "error", err)
		s.ErrorMessage = err.Error()
	}
	metrics.WorkflowRuns().WithLabelValues("grading", gradingOutcome(s)).Inc()
	return s
}

func gradingOutcome(s model.State) string {
	switch {
	case s.ValidationStatus != model.ValidationValid:
		return "invalid"
	case !s.Passed:
		return "failed"
	case !s.CertificateGenerated:
		return "passed_without_certificate"
	default:
		return "passed"
	}
}
