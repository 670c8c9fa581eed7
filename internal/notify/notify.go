// Package notify provides sinks for user facing failure messages.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Sink interface {
	Error(msg string)
}

// Log writes each message as a warn entry tagged with a fresh notification id.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log}
}

func (l *Log) Error(msg string) {
	l.log.Warn("notification",
		zap.String("notification_id", uuid.NewString()),
		zap.String("level", "error"),
		zap.String("message", msg),
	)
}

// Writer prints messages line by line, the terminal version of a toast.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Error(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintf(w.w, "error: %s\n", msg)
}

type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	copy(out, r.msgs)
	return out
}

type multi []Sink

func (m multi) Error(msg string) {
	for _, s := range m {
		s.Error(msg)
	}
}

// Multi fans a message out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}
