package llm

import (
	"context"
	"sync"
)

// Mock is a scripted TextGenerator for tests. Each call consumes the next
// entry of Responses (the last one repeats); Err, when set, is returned
// instead.
type Mock struct {
	Responses []string
	Err       error

	mu      sync.Mutex
	prompts []Prompt
}

// NewMock returns a Mock that replies with the given responses in order.
func NewMock(responses ...string) *Mock {
	return &Mock{Responses: responses}
}

func (m *Mock) Generate(_ context.Context, p Prompt) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, p)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	i := len(m.prompts) - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// Calls returns the number of Generate calls so far.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or the zero Prompt.
func (m *Mock) LastPrompt() Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return Prompt{}
	}
	return m.prompts[len(m.prompts)-1]
}
