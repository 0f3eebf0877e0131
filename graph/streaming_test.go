package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_EventPerNode(t *testing.T) {
	type StreamState struct {
		Steps []string
	}

	g := NewStateGraph[StreamState]()
	g.SetSchema(NewStructSchema(StreamState{}, func(current, update StreamState) (StreamState, error) {
		current.Steps = append(current.Steps, update.Steps...)
		return current, nil
	}))

	g.AddNode("A", "First", func(ctx context.Context, state StreamState) (StreamState, error) {
		return StreamState{Steps: []string{"A"}}, nil
	})
	g.AddNode("B", "Second", func(ctx context.Context, state StreamState) (StreamState, error) {
		return StreamState{Steps: []string{"B"}}, nil
	})
	g.SetEntryPoint("A")
	g.AddEdge("A", "B")
	g.AddEdge("B", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	res := runnable.Stream(context.Background(), StreamState{})

	var events []StreamEvent[StreamState]
	for event := range res.Events {
		events = append(events, event)
	}

	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].Node)
	assert.Equal(t, "B", events[1].Node)

	// Each event carries the node's own update, not the merged state.
	assert.Equal(t, []string{"A"}, events[0].State.Steps)
	assert.Equal(t, []string{"B"}, events[1].State.Steps)

	for _, e := range events {
		assert.False(t, e.Timestamp.IsZero())
		assert.NoError(t, e.Err)
	}

	final, err := res.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, final.Steps)
}

func TestStream_TerminalErrorEvent(t *testing.T) {
	g := NewStateGraph[TestState]()

	nodeErr := errors.New("stream failure")
	g.AddNode("ok", "Works", func(ctx context.Context, state TestState) (TestState, error) {
		state.Count++
		return state, nil
	})
	g.AddNode("bad", "Fails", func(ctx context.Context, state TestState) (TestState, error) {
		return state, nodeErr
	})
	g.SetEntryPoint("ok")
	g.AddEdge("ok", "bad")
	g.AddEdge("bad", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	res := runnable.Stream(context.Background(), TestState{})

	var events []StreamEvent[TestState]
	for event := range res.Events {
		events = append(events, event)
	}

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Error(t, last.Err)
	assert.ErrorIs(t, last.Err, nodeErr)

	_, err = res.Wait()
	assert.ErrorIs(t, err, nodeErr)
}

func TestStream_WaitWithoutDrainingEvents(t *testing.T) {
	g := NewStateGraph[TestState]()

	g.AddNode("fast", "Fast", func(ctx context.Context, state TestState) (TestState, error) {
		state.Count = 42
		return state, nil
	})
	g.SetEntryPoint("fast")
	g.AddEdge("fast", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	// The event buffer absorbs the events of a short run, so Wait works
	// even when the caller never reads Events.
	res := runnable.Stream(context.Background(), TestState{})
	final, err := res.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, final.Count)
}

func TestStream_CancelledContext(t *testing.T) {
	g := NewStateGraph[TestState]()

	g.AddNode("slow", "Slow", func(ctx context.Context, state TestState) (TestState, error) {
		select {
		case <-time.After(5 * time.Second):
			return state, nil
		case <-ctx.Done():
			return state, ctx.Err()
		}
	})
	g.SetEntryPoint("slow")
	g.AddEdge("slow", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	res := runnable.Stream(ctx, TestState{})
	cancel()

	_, err = res.Wait()
	assert.ErrorIs(t, err, context.Canceled)
}
