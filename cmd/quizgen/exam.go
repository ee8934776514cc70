package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/quizgen/internal/model"
	"github.com/pavelanni/quizgen/internal/questions"
	"github.com/pavelanni/quizgen/internal/workflow"
)

var errValidation = errors.New("submission failed validation")

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an exam from a course setup file",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("setup", "s", "", "Course setup file (YAML or JSON)")
	f.StringP("output", "o", "-", "Output file path (- for stdout; .yaml/.yml writes YAML)")
	addLLMFlags(f)
	addLogFlags(f)
	_ = cmd.MarkFlagRequired("setup")
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade the answers in an exam file and issue a certificate on pass",
		RunE:  runGrade,
	}
	f := cmd.Flags()
	f.StringP("exam", "e", "", "Exam file with student_answers (YAML or JSON)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLLMFlags(f)
	addLogFlags(f)
	_ = cmd.MarkFlagRequired("exam")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	setup := model.CourseSetup{PassingScore: model.DefaultPassingScore}
	if err := readDocument(v.GetString("setup"), &setup); err != nil {
		return err
	}
	if err := checkPassingScore(setup.PassingScore); err != nil {
		return err
	}

	gen, closeGen, err := newGenerator(cmd.Context(), v, false)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	defer closeGen()

	s := workflow.New(gen).Generate(cmd.Context(), setup)
	if s.GenerationStatus != model.GenerationCompleted {
		msg := s.GenerationError
		if msg == "" {
			msg = s.ErrorMessage
		}
		return fmt.Errorf("generate exam: %s", msg)
	}
	slog.Info("exam generated", "course", setup.CourseName, "questions", len(s.Questions))

	return writeDocument(v.GetString("output"), model.ExamDocument{Setup: setup, Questions: s.Questions})
}

func runGrade(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	doc, err := loadExam(v.GetString("exam"))
	if err != nil {
		return err
	}

	gen, closeGen, err := newGenerator(cmd.Context(), v, false)
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	defer closeGen()

	s := workflow.New(gen).Grade(cmd.Context(), doc.Setup, doc.Questions, doc.Answers)
	out := model.OutcomeFromState(s)
	if err := writeDocument(v.GetString("output"), out); err != nil {
		return err
	}

	if s.ValidationStatus != model.ValidationValid {
		for _, e := range s.ValidationErrors {
			slog.Error("invalid submission", "error", e)
		}
		return errValidation
	}
	if out.CertificateError != "" {
		slog.Warn("certificate not issued", "error", out.CertificateError)
	}
	return nil
}

// loadExam reads an exam document and applies the checks the HTTP service
// performs on grading requests.
func loadExam(path string) (model.ExamDocument, error) {
	doc := model.ExamDocument{Setup: model.CourseSetup{PassingScore: model.DefaultPassingScore}}
	if err := readDocument(path, &doc); err != nil {
		return model.ExamDocument{}, err
	}
	if err := checkPassingScore(doc.Setup.PassingScore); err != nil {
		return model.ExamDocument{}, err
	}
	if err := questions.Validate(doc.Questions); err != nil {
		return model.ExamDocument{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func checkPassingScore(score float64) error {
	if score < 0 || score > 100 {
		return fmt.Errorf("passing_score must be between 0 and 100, got %v", score)
	}
	return nil
}

// readDocument decodes a YAML or JSON file into dst. Fields absent from the
// file keep the values already in dst.
func readDocument(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeDocument(path string, v any) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(v)
	default:
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	var w io.Writer
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
