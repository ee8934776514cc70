package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/pavelanni/quizgen/internal/llm"
	"github.com/pavelanni/quizgen/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Requested question count. The generator only enforces the wider
// bounds in package questions.
const (
	TargetMinQuestions = 10
	TargetMaxQuestions = 20
)

const (
	generationTemperature  = 0.7
	certificateTemperature = 0.7
)

type generationData struct {
	model.CourseSetup
	MinTarget int
	MaxTarget int
}

// CertificateData holds template data for certificate prompts.
type CertificateData struct {
	StudentName    string
	CourseName     string
	InstructorName string
	CompletionDate string
	Percentage     float64
}

// Generation builds the question-generation prompt for a course setup.
func Generation(setup model.CourseSetup) (llm.Prompt, error) {
	data := generationData{
		CourseSetup: setup,
		MinTarget:   TargetMinQuestions,
		MaxTarget:   TargetMaxQuestions,
	}
	return build("generate", data, generationTemperature)
}

// Certificate builds the certificate prompt for a passing student.
func Certificate(data CertificateData) (llm.Prompt, error) {
	return build("certificate", data, certificateTemperature)
}

func build(name string, data any, temperature float32) (llm.Prompt, error) {
	system, err := render(name+"_system.tmpl", data)
	if err != nil {
		return llm.Prompt{}, err
	}
	user, err := render(name+"_user.tmpl", data)
	if err != nil {
		return llm.Prompt{}, err
	}
	return llm.Prompt{System: system, User: user, Temperature: temperature}, nil
}

func render(file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", file, err)
	}
	return buf.String(), nil
}
