package mock

import (
	"context"
	"sync/atomic"
)

// EmptyCriteriaResponse is the default completion: valid JSON with no criteria.
const EmptyCriteriaResponse = `{"inclusion": [], "exclusion": []}`

// MockCompleter is a test double for ai.Completer.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns EmptyCriteriaResponse.
	CompleteFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

	callCount atomic.Int64
}

// NewMockCompleter creates a mock completer with default behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete returns the injected completion or EmptyCriteriaResponse.
func (m *MockCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	m.callCount.Add(1)

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, maxTokens)
	}
	return EmptyCriteriaResponse, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockCompleter) Reset() {
	m.callCount.Store(0)
	m.CompleteFunc = nil
}
