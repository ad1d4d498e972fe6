// Package trace is a small, constructor-injected debug-event sink the
// engine writes phase/iteration events to when RunOptions.Debug is enabled.
// There is no global logger singleton; callers own a Sink and decide what
// to do with it.
package trace

import (
	"fmt"
	"io"
)

// Event is one phase/iteration debug record.
type Event struct {
	Iteration int
	Phase     string
	Message   string
}

// Sink collects Events when enabled, and is a silent no-op otherwise so
// callers never have to branch on whether debug mode is on.
type Sink struct {
	enabled bool
	events  []Event
}

// NewSink creates a Sink; enabled controls whether Record does anything.
func NewSink(enabled bool) *Sink {
	return &Sink{enabled: enabled}
}

// Record appends e if the sink is enabled. Safe to call on a nil *Sink.
func (s *Sink) Record(e Event) {
	if s == nil || !s.enabled {
		return
	}
	s.events = append(s.events, e)
}

// Events returns every recorded event in record order.
func (s *Sink) Events() []Event {
	if s == nil {
		return nil
	}
	return s.events
}

// WriteTo renders every recorded event as one line to w, the way the CLI
// streams debug output to stderr.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range s.Events() {
		n, err := fmt.Fprintf(w, "[iter %d] %s: %s\n", e.Iteration, e.Phase, e.Message)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
