// Package monitoring abstracts error reporting for unexpected failures.
package monitoring

import (
	"sync"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// Captured is one error kept by a Recorder.
type Captured struct {
	Err  error
	Tags map[string]string
}

// Recorder keeps captured errors in memory. Panics are recovered and kept as
// errors instead of being re-raised.
type Recorder struct {
	mu     sync.Mutex
	events []Captured
}

func (r *Recorder) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, Captured{Err: err, Tags: tags})
	r.mu.Unlock()
}

func (r *Recorder) Recover() {
	if v := recover(); v != nil {
		r.CaptureException(PanicError{Value: v}, map[string]string{"panic": "true"})
	}
}

func (r *Recorder) Flush(time.Duration) {}

// Events returns a copy of the captured errors.
func (r *Recorder) Events() []Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Captured(nil), r.events...)
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (p PanicError) Error() string {
	if err, ok := p.Value.(error); ok {
		return "panic: " + err.Error()
	}
	if s, ok := p.Value.(string); ok {
		return "panic: " + s
	}
	return "panic"
}
