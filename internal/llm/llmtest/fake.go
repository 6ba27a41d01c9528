// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/news-digest/internal/llm"
)

// FakeClient replays canned responses and records every request.
type FakeClient struct {
	mu        sync.Mutex
	Responses []string
	// Respond, when set, computes the reply instead of Responses.
	Respond func(req llm.ChatRequest) (string, error)
	// UsagePerCall is reported for each successful call.
	UsagePerCall llm.Usage
	Requests     []llm.ChatRequest
}

// New returns a FakeClient answering with responses in order.
func New(responses ...string) *FakeClient {
	return &FakeClient{
		Responses:    responses,
		UsagePerCall: llm.Usage{PromptTokens: 10, CompletionTokens: 5},
	}
}

// Chat records req and returns the next scripted response.
func (f *FakeClient) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)

	if f.Respond != nil {
		text, err := f.Respond(req)
		if err != nil {
			return nil, err
		}
		return &llm.ChatResponse{Text: text, Usage: f.UsagePerCall}, nil
	}

	idx := len(f.Requests) - 1
	if idx >= len(f.Responses) {
		return nil, fmt.Errorf("llmtest: no scripted response for call %d", idx+1)
	}
	return &llm.ChatResponse{Text: f.Responses[idx], Usage: f.UsagePerCall}, nil
}

// Calls returns the number of requests seen so far.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// GetModel reports a fixed model name.
func (f *FakeClient) GetModel(llm.ModelTier) string {
	return "fake-model"
}

// Close is a no-op.
func (f *FakeClient) Close() error {
	return nil
}
