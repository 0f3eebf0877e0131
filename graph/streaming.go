package graph

import (
	"context"
	"time"
)

// streamBufferSize is the default capacity of a stream's event channel.
const streamBufferSize = 100

// StreamEvent is emitted once per completed node during streamed execution.
// State carries the update returned by the node, not the merged state. A
// terminal event carries Err instead when the run fails.
type StreamEvent[S any] struct {
	// Timestamp when the event was produced
	Timestamp time.Time

	// Node is the name of the node that produced the update
	Node string

	// State is the update the node returned
	State S

	// Duration is how long the node took
	Duration time.Duration

	// Err is set on the terminal event of a failed run
	Err error
}

// StreamResult exposes the event channel of a streamed run plus the final
// outcome once the channel closes.
type StreamResult[S any] struct {
	// Events delivers one event per completed node and closes when the run
	// ends. Consumers should drain it.
	Events <-chan StreamEvent[S]

	done  chan struct{}
	final S
	err   error
}

// Wait blocks until the run finishes and returns the final merged state or
// the first error.
func (sr *StreamResult[S]) Wait() (S, error) {
	<-sr.done
	return sr.final, sr.err
}

// Stream executes the graph in a goroutine, emitting one StreamEvent per
// completed node.
//
// Example:
//
//	sr := app.Stream(ctx, initialState)
//	for ev := range sr.Events {
//	    fmt.Println(ev.Node)
//	}
//	finalState, err := sr.Wait()
func (r *Runnable[S]) Stream(ctx context.Context, initial S) *StreamResult[S] {
	events := make(chan StreamEvent[S], streamBufferSize)
	sr := &StreamResult[S]{
		Events: events,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sr.done)
		defer close(events)

		final, err := r.run(ctx, initial, func(ev StreamEvent[S]) {
			select {
			case events <- ev:
			case <-ctx.Done():
				// Consumer is gone; drop the event rather than block the run.
			}
		})
		if err != nil {
			select {
			case events <- StreamEvent[S]{Timestamp: time.Now(), Err: err}:
			case <-ctx.Done():
			}
		}

		sr.final = final
		sr.err = err
	}()

	return sr
}
