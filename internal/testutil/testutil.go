// Package testutil provides shared test helpers for setting up books and services.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/rolodex/internal/book"
	"github.com/starford/rolodex/internal/contactservice"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestBook opens an empty book in a temporary directory and returns it with
// the path of its backing file.
func TestBook(t *testing.T) (*book.Book, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.json")
	b, err := book.Open(path, book.WithLogger(Logger()))
	if err != nil {
		t.Fatal(err)
	}
	return b, path
}

// TestService wraps a fresh TestBook in a Service that records events.
func TestService(t *testing.T) (*contactservice.Service, *Recorder) {
	t.Helper()
	b, _ := TestBook(t)
	rec := &Recorder{}
	return contactservice.NewService(b, rec), rec
}

// Recorder is a contactservice.Notifier that remembers every event.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// ContactEvent records kind:phone.
func (r *Recorder) ContactEvent(kind, phone string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+phone)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
