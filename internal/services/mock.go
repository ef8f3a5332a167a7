package services

import (
	"context"

	"github.com/hmnguyen-dev/tutien-engine/pkg/narrative"
)

// MockNarrator returns canned proposals for tests and local play without an
// API key. When Proposals is exhausted (or empty) it serves the fallback.
type MockNarrator struct {
	Proposals []*narrative.Proposal
	Err       error
	PingErr   error

	// Calls records every prompt received, in order.
	Calls []narrative.TurnPrompt

	next int
}

func (m *MockNarrator) GenerateTurn(ctx context.Context, prompt narrative.TurnPrompt) (*narrative.Proposal, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.next < len(m.Proposals) {
		p := m.Proposals[m.next]
		m.next++
		return p, nil
	}
	return Fallback(prompt), nil
}

func (m *MockNarrator) Ping(ctx context.Context) error {
	return m.PingErr
}
