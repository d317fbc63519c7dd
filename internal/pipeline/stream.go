package pipeline

import (
	"context"
	"errors"

	"github.com/spacesedan/vidinsight/internal/models"
)

// ErrStreamDone terminates a fully consumed event stream. Every stream ends
// with exactly one complete or error event before this is returned.
var ErrStreamDone = errors.New("analysis stream done")

// EventStream is an ordered, terminating stream of analysis events produced
// by a running pipeline. It is single-consumer.
type EventStream struct {
	events chan models.AnalysisEvent
	done   bool
}

func newEventStream() *EventStream {
	return &EventStream{
		events: make(chan models.AnalysisEvent, 16),
	}
}

// Next blocks for the next event. It returns ErrStreamDone once the terminal
// event has been delivered, or the context error if ctx ends first.
func (s *EventStream) Next(ctx context.Context) (*models.AnalysisEvent, error) {
	if s.done {
		return nil, ErrStreamDone
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case event, ok := <-s.events:
		if !ok {
			s.done = true
			return nil, ErrStreamDone
		}
		return &event, nil
	}
}

// emit delivers an event unless the consumer's context has ended. Returns
// false when the producer should stop.
func (s *EventStream) emit(ctx context.Context, event models.AnalysisEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case s.events <- event:
		return true
	}
}

func (s *EventStream) close() {
	close(s.events)
}
