// Package contactservice serializes access to a Book for adapters that serve
// requests concurrently, and announces successful changes.
package contactservice

import (
	"context"
	"strings"
	"sync"

	"github.com/starford/rolodex/internal/book"
	"github.com/starford/rolodex/internal/models"
)

// Event kinds passed to Notifier.
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventReloaded = "reloaded"
)

// Notifier receives a call after every successful mutation.
// phone is empty for EventReloaded.
type Notifier interface {
	ContactEvent(kind, phone string)
}

// ContactInput carries the fields of a new contact.
type ContactInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Service guards a Book with a mutex.
type Service struct {
	mu     sync.Mutex
	book   *book.Book
	notify Notifier
}

// NewService wraps b. n may be nil.
func NewService(b *book.Book, n Notifier) *Service {
	return &Service{book: b, notify: n}
}

// Add stores a new contact.
func (s *Service) Add(_ context.Context, in ContactInput) (models.Contact, error) {
	s.mu.Lock()
	c, err := s.book.Add(in.Name, in.Phone, in.Email, in.Address, in.Notes)
	s.mu.Unlock()
	if err != nil {
		return models.Contact{}, err
	}
	s.emit(EventCreated, c.Phone)
	return c, nil
}

// Get returns the contact keyed by phone.
func (s *Service) Get(_ context.Context, phone string) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Get(phone)
}

// Search matches query against name, phone and email.
func (s *Service) Search(_ context.Context, query string) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Search(query)
}

// List returns every contact sorted by name.
func (s *Service) List(_ context.Context) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.List()
}

// Stats returns the book statistics.
func (s *Service) Stats(_ context.Context) book.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Stats()
}

// Update applies ch to the contact keyed by phone.
func (s *Service) Update(_ context.Context, phone string, ch models.Changes) (models.Contact, error) {
	s.mu.Lock()
	c, err := s.book.Update(phone, ch)
	s.mu.Unlock()
	if err != nil {
		return models.Contact{}, err
	}
	s.emit(EventUpdated, c.Phone)
	return c, nil
}

// Delete removes the contact keyed by phone and reports whether it existed.
func (s *Service) Delete(_ context.Context, phone string) (bool, error) {
	s.mu.Lock()
	ok, err := s.book.Delete(phone)
	s.mu.Unlock()
	if err != nil || !ok {
		return ok, err
	}
	s.emit(EventDeleted, strings.TrimSpace(phone))
	return true, nil
}

// ReloadIfChanged picks up edits made to the book file by another writer.
func (s *Service) ReloadIfChanged(_ context.Context) error {
	s.mu.Lock()
	changed, err := s.book.Reload()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.emit(EventReloaded, "")
	}
	return nil
}

func (s *Service) emit(kind, phone string) {
	if s.notify != nil {
		s.notify.ContactEvent(kind, phone)
	}
}
