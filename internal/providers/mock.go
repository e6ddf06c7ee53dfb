package providers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string

	// State
	requestCount atomic.Int64
	LastRequest  *ChatRequest
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// RequestCount returns how many requests have been made.
func (c *MockClient) RequestCount() int {
	return int(c.requestCount.Load())
}

// Chat sends a mock chat request.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)
	c.LastRequest = req

	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.ShouldFail || (c.FailAfter > 0 && int(count) > c.FailAfter) {
		result.Success = false
		result.ErrorType = "mock_error"
		result.ErrorMessage = "mock failure"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock failure")
	}

	result.Success = true
	result.Content = c.ResponseText
	result.PromptTokens = 100
	result.CompletionTokens = 50
	result.TotalTokens = 150
	result.ExecutionTime = time.Since(start)
	return result, nil
}
