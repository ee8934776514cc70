// Package workflow sequences exam generation, answer validation, grading
// and certificate issuance as small finite-state machines.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pavelanni/quizgen/internal/model"
)

// Step names a node of a flow.
type Step string

const (
	StepGenerate    Step = "generate_questions"
	StepValidate    Step = "validate_answers"
	StepGrade       Step = "grade"
	StepCertificate Step = "certificate"
	StepEnd         Step = "end"
)

// Node runs one step. It receives the current state by value and returns
// the updated state; it must not modify slices or maps it did not allocate.
type Node func(ctx context.Context, s model.State) model.State

// Transition picks the step that follows from, given the state produced by from.
type Transition func(from Step, s model.State) Step

var (
	ErrUnknownStep   = errors.New("no node registered for step")
	ErrStepRevisited = errors.New("step already executed")
)

// Flow is a directed graph of nodes with conditional edges.
type Flow struct {
	Name  string
	Entry Step
	Nodes map[Step]Node
	Next  Transition
}

// Run drives the flow from Entry until StepEnd. Each step runs at most once.
// The returned error reports a broken flow definition, never a node failure:
// nodes record failures on the state.
func (f Flow) Run(ctx context.Context, s model.State) (model.State, error) {
	visited := make(map[Step]bool, len(f.Nodes))
	for step := f.Entry; step != StepEnd; step = f.Next(step, s) {
		if visited[step] {
			return s, fmt.Errorf("%s flow: %w: %s", f.Name, ErrStepRevisited, step)
		}
		node, ok := f.Nodes[step]
		if !ok {
			return s, fmt.Errorf("%s flow: %w: %s", f.Name, ErrUnknownStep, step)
		}
		visited[step] = true

		slog.Debug("workflow step", "flow", f.Name, "step", step)
		s = node(ctx, s)
	}
	return s, nil
}

// nextGeneration ends the generation flow after its only node.
func nextGeneration(Step, model.State) Step {
	return StepEnd
}

// nextGrading encodes validate -> (valid) grade -> (passed) certificate.
func nextGrading(from Step, s model.State) Step {
	switch from {
	case StepValidate:
		if s.ValidationStatus == model.ValidationValid {
			return StepGrade
		}
	case StepGrade:
		if s.Passed {
			return StepCertificate
		}
	}
	return StepEnd
}
