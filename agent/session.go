package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/smallnest/hybridchat/graph"
)

// Session identifies one interactive conversation with an Agent. Turns are
// independent runs over fresh state; the session exists to correlate them in
// logs.
type Session struct {
	// ID identifies the session across its turns.
	ID string

	agent *Agent
}

// NewSession creates a session around the given agent.
func NewSession(a *Agent) *Session {
	return &Session{
		ID:    uuid.NewString(),
		agent: a,
	}
}

// Ask runs one conversational turn and streams the per-node updates. Each
// turn gets its own run ID in the logs.
func (s *Session) Ask(ctx context.Context, input string) *graph.StreamResult[State] {
	runID := uuid.NewString()
	s.agent.logger.Info("session %s run %s: %q", s.ID, runID, input)

	return s.agent.Stream(ctx, input)
}
