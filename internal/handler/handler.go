package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/pavelanni/quizgen/internal/i18n"
	"github.com/pavelanni/quizgen/internal/metrics"
	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/workflow"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "AI Quiz Generator"

const maxBodyBytes = 1 << 20

// Config holds handler settings.
type Config struct {
	// LLMTimeout bounds each request's workflow run. Zero means no limit.
	LLMTimeout time.Duration
	Version    string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	engine   *workflow.Engine
	config   Config
	validate *validator.Validate
}

// New creates a new Handler.
func New(engine *workflow.Engine, cfg Config) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Handler{engine: engine, config: cfg, validate: v}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/generate-exam", h.handleGenerate)
	r.Post("/grade-exam", h.handleGrade)
	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

type setupRequest struct {
	CourseName       string   `json:"course_name" validate:"required"`
	TeacherName      string   `json:"teacher_name" validate:"required"`
	StudentName      string   `json:"student_name" validate:"required"`
	LearningOutcomes []string `json:"learning_outcomes" validate:"dive,required"`
	PassingScore     *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
}

func (r setupRequest) toModel() model.CourseSetup {
	score := model.DefaultPassingScore
	if r.PassingScore != nil {
		score = *r.PassingScore
	}
	return model.CourseSetup{
		CourseName:       r.CourseName,
		InstructorName:   r.TeacherName,
		StudentName:      r.StudentName,
		LearningOutcomes: r.LearningOutcomes,
		PassingScore:     score,
	}
}

type questionRequest struct {
	ID              string            `json:"id" validate:"required"`
	Question        string            `json:"question" validate:"required"`
	Choices         map[string]string `json:"choices" validate:"len=4,dive,keys,oneof=A B C D,endkeys,required"`
	CorrectAnswer   string            `json:"correct_answer" validate:"oneof=A B C D"`
	LearningOutcome string            `json:"learning_outcome"`
}

// answerRequest is deliberately unchecked; the grading flow reports bad
// labels and unknown question IDs in its validation errors.
type answerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type gradeRequest struct {
	setupRequest
	MCQs           []questionRequest `json:"mcqs" validate:"dive"`
	StudentAnswers []answerRequest   `json:"student_answers"`
}

func (r gradeRequest) questions() []model.Question {
	qs := make([]model.Question, len(r.MCQs))
	for i, q := range r.MCQs {
		choices := make(map[model.Label]string, len(q.Choices))
		for k, v := range q.Choices {
			choices[model.Label(k)] = v
		}
		qs[i] = model.Question{
			ID:           q.ID,
			Prompt:       q.Question,
			Choices:      choices,
			CorrectLabel: model.Label(q.CorrectAnswer),
			OutcomeTag:   q.LearningOutcome,
		}
	}
	return qs
}

func (r gradeRequest) answers() []model.SubmittedAnswer {
	out := make([]model.SubmittedAnswer, len(r.StudentAnswers))
	for i, a := range r.StudentAnswers {
		out[i] = model.SubmittedAnswer{QuestionID: a.QuestionID, Label: model.Label(a.Answer)}
	}
	return out
}

type generateResponse struct {
	Success        bool             `json:"success"`
	MCQs           []model.Question `json:"mcqs"`
	TotalQuestions int              `json:"total_questions"`
	Message        string           `json:"message,omitempty"`
	Error          string           `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.workflowContext(r.Context())
	defer cancel()

	s := h.engine.Generate(ctx, req.toModel())
	if s.GenerationStatus != model.GenerationCompleted {
		writeJSON(w, http.StatusOK, generateResponse{
			Success: false,
			MCQs:    []model.Question{},
			Error:   generationError(r.Context(), s),
		})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Success:        true,
		MCQs:           s.Questions,
		TotalQuestions: len(s.Questions),
		Message:        i18n.Tp(r.Context(), "ExamGenerated", len(s.Questions)),
	})
}

// generationError renders a failed generation state for clients. Provider
// configuration problems are already worded for the operator.
func generationError(ctx context.Context, s model.State) string {
	msg := s.GenerationError
	if msg == "" {
		msg = s.ErrorMessage
	}
	if s.GenerationFailure == model.FailureConfiguration {
		return msg
	}
	return i18n.Td(ctx, "ExamGenerationFailed", map[string]any{"Error": msg})
}

func (h *Handler) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, cancel := h.workflowContext(r.Context())
	defer cancel()

	s := h.engine.Grade(ctx, req.toModel(), req.questions(), req.answers())
	out := model.OutcomeFromState(s)
	switch {
	case s.ValidationStatus != model.ValidationValid:
		out.Error = i18n.T(r.Context(), "ValidationFailed")
	case !s.Graded:
		slog.Error("grading did not complete", "error", s.ErrorMessage)
		writeError(w, http.StatusInternalServerError,
			i18n.Td(r.Context(), "GradingFailed", map[string]any{"Error": s.ErrorMessage}))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: h.config.Version,
	})
}

func (h *Handler) workflowContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.LLMTimeout > 0 {
		return context.WithTimeout(ctx, h.config.LLMTimeout)
	}
	return context.WithCancel(ctx)
}

// decode reads and validates a JSON body into dst. On failure it writes a
// 400 response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.badRequest(w, r, fmt.Errorf("decode body: %w", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.badRequest(w, r, describeValidation(err))
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Info("rejected request", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadRequest, i18n.Td(r.Context(), "InvalidRequest", map[string]any{"Error": err.Error()}))
}

// describeValidation flattens validator errors into "field: rule" pairs.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		field = strings.TrimPrefix(field, "setupRequest.")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts[i] = field + ": " + rule
	}
	return errors.New(strings.Join(parts, "; "))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
