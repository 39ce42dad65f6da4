package sms

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// Gateway sends one SMS. The real provider client lives behind this
// interface; the dashboard layer only needs Send.
type Gateway interface {
	Send(ctx context.Context, to, body string) error
}

// MockGateway simulates a provider with a configurable failure rate.
// Used by the seeder, local development, and tests.
type MockGateway struct {
	FailureRate float64
	SenderID    string

	mu   sync.Mutex
	rng  *rand.Rand
	sent []SentMessage
}

type SentMessage struct {
	To   string
	Body string
}

func NewMockGateway(failureRate float64, senderID string, seed int64) *MockGateway {
	return &MockGateway{
		FailureRate: failureRate,
		SenderID:    senderID,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (g *MockGateway) Send(ctx context.Context, to, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rng != nil && g.rng.Float64() < g.FailureRate {
		return fmt.Errorf("mock gateway: delivery to %s failed", to)
	}
	g.sent = append(g.sent, SentMessage{To: to, Body: body})
	return nil
}

// Sent returns a copy of everything delivered so far.
func (g *MockGateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}
