// Package logger provides the diagnostic sink used by the evaluation engine and
// the console and file loggers that back it.
//
// Engine components never fail because of a broken rule or schema; they degrade
// and report a Diagnostic instead. Reporting is fire-and-forget: sinks must not
// block or panic.
package logger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a non-fatal failure.
type Kind string

const (
	KindSchemaNotFound     Kind = "schema_not_found"
	KindExpression         Kind = "expression_evaluation"
	KindInvalidMeasurement Kind = "invalid_measurement"
	KindValidation         Kind = "validation"
	KindGenerationFailed   Kind = "generation_failed"
)

// Diagnostic is one non-fatal failure reported by an engine component.
type Diagnostic struct {
	ID        string
	Kind      Kind
	Component string
	Subject   string // table, field or constat id the failure concerns
	Message   string
	Time      time.Time
}

// NewDiagnostic stamps a diagnostic with a fresh id and the current time.
func NewDiagnostic(kind Kind, component, subject, message string) Diagnostic {
	return Diagnostic{
		ID:        uuid.NewString(),
		Kind:      kind,
		Component: component,
		Subject:   subject,
		Message:   message,
		Time:      time.Now(),
	}
}

// String formats the diagnostic for log lines.
func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Component, d.Message)
	}
	return fmt.Sprintf("[%s] %s %s: %s", d.Kind, d.Component, d.Subject, d.Message)
}

// Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// Nop discards every diagnostic.
type Nop struct{}

// Report implements Sink.
func (Nop) Report(Diagnostic) {}

// Tee fans a diagnostic out to several sinks.
type Tee []Sink

// Report implements Sink.
func (t Tee) Report(d Diagnostic) {
	for _, s := range t {
		if s != nil {
			s.Report(d)
		}
	}
}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Recorder keeps diagnostics in memory. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report implements Sink.
func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, d)
}

// Entries returns a copy of the recorded diagnostics.
func (r *Recorder) Entries() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many diagnostics of the given kind were recorded.
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.entries {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops all recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
