// Package book implements the contact store: an in-memory collection that is
// written back to a JSON file after every mutation.
//
// A Book is not safe for concurrent use. Callers that share one across
// goroutines must serialize access (see contactservice).
package book

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rolodex/internal/apperr"
	"github.com/starford/rolodex/internal/models"
	"github.com/starford/rolodex/internal/storage"
)

var (
	errRequired  = &apperr.ValidationError{Msg: "name and phone are required"}
	errDuplicate = &apperr.ValidationError{Msg: "duplicate phone"}
)

// Statistics summarises the book contents.
type Statistics struct {
	Total       int `json:"total"`
	WithEmail   int `json:"with_email"`
	WithAddress int `json:"with_address"`
}

// Book owns the contact collection and its backing file.
type Book struct {
	store    storage.Provider
	logger   *slog.Logger
	contacts []models.Contact
	sum      string // checksum of the bytes last read or written
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger used to report an unreadable backing file.
func WithLogger(l *slog.Logger) Option {
	return func(b *Book) {
		b.logger = l
	}
}

// Open returns a book backed by the file at path, rewritten in place.
func Open(path string, opts ...Option) (*Book, error) {
	return New(storage.NewFile(path, storage.ModeTruncate), opts...)
}

// New returns a book backed by store and loads its current contents.
// A missing or unparseable file yields an empty book.
func New(store storage.Provider, opts ...Option) (*Book, error) {
	b := &Book{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

// Path returns the backing file path.
func (b *Book) Path() string {
	return b.store.Path()
}

// Len returns the number of stored contacts.
func (b *Book) Len() int {
	return len(b.contacts)
}

// Add validates and stores a new contact, then saves the book.
func (b *Book) Add(name, phone, email, address, notes string) (models.Contact, error) {
	if err := checkRequired(name, phone); err != nil {
		return models.Contact{}, err
	}
	if b.indexOf(phone) >= 0 {
		return models.Contact{}, errDuplicate
	}
	c := models.NewContact(name, phone, email, address, notes)
	b.contacts = append(b.contacts, c)
	if err := b.save(); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Insert stores an already built contact, keeping its timestamps, after the
// same checks as Add. Fields are trimmed and a zero CreatedAt is stamped.
func (b *Book) Insert(c models.Contact) (models.Contact, error) {
	if err := checkRequired(c.Name, c.Phone); err != nil {
		return models.Contact{}, err
	}
	if b.indexOf(c.Phone) >= 0 {
		return models.Contact{}, errDuplicate
	}
	c = c.Trimmed()
	b.contacts = append(b.contacts, c)
	if err := b.save(); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Get returns the contact whose trimmed phone equals the trimmed phone given.
func (b *Book) Get(phone string) (models.Contact, error) {
	i := b.indexOf(phone)
	if i < 0 {
		return models.Contact{}, apperr.ErrNotFound
	}
	return b.contacts[i], nil
}

// Search returns contacts whose name, phone or email contains query,
// ignoring case, in collection order. An empty query matches everything.
func (b *Book) Search(query string) []models.Contact {
	q := strings.ToLower(query)
	out := []models.Contact{}
	for _, c := range b.contacts {
		if strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(c.Phone, q) ||
			(c.Email != "" && strings.Contains(strings.ToLower(c.Email), q)) {
			out = append(out, c)
		}
	}
	return out
}

// Update applies ch to the contact keyed by originalPhone and saves the book.
// Validation failures leave the contact untouched.
func (b *Book) Update(originalPhone string, ch models.Changes) (models.Contact, error) {
	i := b.indexOf(originalPhone)
	if i < 0 {
		return models.Contact{}, apperr.ErrNotFound
	}
	cur := b.contacts[i]

	name, phone := cur.Name, cur.Phone
	if ch.Name != nil {
		name = *ch.Name
	}
	if ch.Phone != nil {
		phone = *ch.Phone
	}
	if err := checkRequired(name, phone); err != nil {
		return models.Contact{}, err
	}
	if ch.Phone != nil && strings.TrimSpace(phone) != strings.TrimSpace(cur.Phone) {
		if j := b.indexOf(phone); j >= 0 && j != i {
			return models.Contact{}, errDuplicate
		}
	}

	b.contacts[i].Apply(ch)
	if err := b.save(); err != nil {
		return models.Contact{}, err
	}
	return b.contacts[i], nil
}

// Delete removes the contact keyed by phone. It reports false, with no
// error, when there is no such contact.
func (b *Book) Delete(phone string) (bool, error) {
	i := b.indexOf(phone)
	if i < 0 {
		return false, nil
	}
	b.contacts = slices.Delete(b.contacts, i, i+1)
	if err := b.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Contacts returns a copy of every contact in collection order.
func (b *Book) Contacts() []models.Contact {
	out := slices.Clone(b.contacts)
	if out == nil {
		out = []models.Contact{}
	}
	return out
}

// List returns every contact sorted by name, ignoring case. Equal names keep
// their collection order.
func (b *Book) List() []models.Contact {
	out := b.Contacts()
	slices.SortStableFunc(out, func(x, y models.Contact) int {
		return strings.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
	})
	return out
}

// Stats counts contacts and how many carry an email or an address.
func (b *Book) Stats() Statistics {
	s := Statistics{Total: len(b.contacts)}
	for _, c := range b.contacts {
		if strings.TrimSpace(c.Email) != "" {
			s.WithEmail++
		}
		if strings.TrimSpace(c.Address) != "" {
			s.WithAddress++
		}
	}
	return s
}

// Reload re-reads the backing file if its contents differ from what the
// book last read or wrote, and reports whether it did.
func (b *Book) Reload() (bool, error) {
	sum := ""
	data, err := b.store.Read()
	switch {
	case err == nil:
		sum = digest(data)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("book: reload: %w", err)
	}
	if sum == b.sum {
		return false, nil
	}
	if err := b.load(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Book) indexOf(phone string) int {
	phone = strings.TrimSpace(phone)
	return slices.IndexFunc(b.contacts, func(c models.Contact) bool {
		return strings.TrimSpace(c.Phone) == phone
	})
}

func (b *Book) load() error {
	b.contacts, b.sum = nil, ""

	data, err := b.store.Read()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("book: load: %w", err)
	}
	b.sum = digest(data)

	var contacts []models.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		b.logger.Warn("book: unreadable file, starting empty",
			slog.String("path", b.store.Path()),
			slog.String("error", err.Error()))
		return nil
	}
	for _, c := range contacts {
		if c.UnparsedStamps() {
			b.logger.Warn("book: timestamp not in expected layout, kept as text",
				slog.String("path", b.store.Path()),
				slog.String("phone", c.Phone))
		}
	}
	b.contacts = contacts
	return nil
}

// save rewrites the whole file. On failure the in-memory change stays in
// place and the file is stale until the next successful save.
func (b *Book) save() error {
	contacts := b.contacts
	if contacts == nil {
		contacts = []models.Contact{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(contacts); err != nil {
		return fmt.Errorf("%w: encode: %w", apperr.ErrPersist, err)
	}

	if err := b.store.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrPersist, err)
	}
	b.sum = digest(buf.Bytes())
	return nil
}

func checkRequired(name, phone string) error {
	err := validation.Errors{
		"name":  validation.Validate(strings.TrimSpace(name), validation.Required),
		"phone": validation.Validate(strings.TrimSpace(phone), validation.Required),
	}.Filter()
	if err != nil {
		return errRequired
	}
	return nil
}

// digest fingerprints file contents so Reload can skip the book's own writes.
func digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
