// Package models defines the domain types for the contact book.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// TimeLayout is the on-disk timestamp format.
const TimeLayout = "2006-01-02 15:04:05"

var errMissingKey = errors.New("record is missing the name or phone key")

// Contact is a single entry in the book. The phone number is its key.
type Contact struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	Notes      string
	CreatedAt  time.Time
	ModifiedAt time.Time

	// Stored timestamps that did not parse, written back unchanged.
	rawCreated  string
	rawModified string
}

// NewContact builds a contact from trimmed fields and stamps both timestamps.
// It does not validate; the book does.
func NewContact(name, phone, email, address, notes string) Contact {
	ts := stamp()
	return Contact{
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Email:      strings.TrimSpace(email),
		Address:    strings.TrimSpace(address),
		Notes:      strings.TrimSpace(notes),
		CreatedAt:  ts,
		ModifiedAt: ts,
	}
}

// Trimmed returns c with every field trimmed and, when CreatedAt is zero
// and no stored text stands in for it, both timestamps stamped now.
func (c Contact) Trimmed() Contact {
	for _, f := range []*string{&c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes} {
		*f = strings.TrimSpace(*f)
	}
	if c.CreatedAt.IsZero() && c.rawCreated == "" {
		c.CreatedAt = stamp()
		if c.ModifiedAt.IsZero() && c.rawModified == "" {
			c.ModifiedAt = c.CreatedAt
		}
	}
	return c
}

// stamp returns the current time at the precision the file format keeps.
func stamp() time.Time {
	return time.Now().Truncate(time.Second)
}

// Apply overwrites every field present in ch and refreshes ModifiedAt,
// even when ch carries nothing.
func (c *Contact) Apply(ch Changes) {
	assign(&c.Name, ch.Name)
	assign(&c.Phone, ch.Phone)
	assign(&c.Email, ch.Email)
	assign(&c.Address, ch.Address)
	assign(&c.Notes, ch.Notes)
	c.ModifiedAt = stamp()
	c.rawModified = ""
}

func assign(dst, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// UnparsedStamps reports whether a stored timestamp was kept as raw text
// because it did not match TimeLayout.
func (c Contact) UnparsedStamps() bool {
	return c.rawCreated != "" || c.rawModified != ""
}

func (c Contact) String() string {
	return c.Name + " - " + c.Phone
}

// Changes is a partial update. A nil field is left alone; a pointer to ""
// clears the field.
type Changes struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Notes   *string
}

// Set returns a pointer to v for building Changes literals.
func Set(v string) *string { return &v }

// ChangesFromMap picks the recognised field names out of m.
// Unknown keys are ignored.
func ChangesFromMap(m map[string]string) Changes {
	var ch Changes
	for k, v := range m {
		switch k {
		case "name":
			ch.Name = &v
		case "phone":
			ch.Phone = &v
		case "email":
			ch.Email = &v
		case "address":
			ch.Address = &v
		case "notes":
			ch.Notes = &v
		}
	}
	return ch
}

// RecordData is the persisted shape of a contact.
type RecordData struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	Notes        string `json:"notes"`
	CreatedDate  string `json:"created_date"`
	ModifiedDate string `json:"modified_date"`
}

// RecordData converts c to its persisted shape.
func (c Contact) RecordData() RecordData {
	return RecordData{
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Notes:        c.Notes,
		CreatedDate:  formatStamp(c.CreatedAt, c.rawCreated),
		ModifiedDate: formatStamp(c.ModifiedAt, c.rawModified),
	}
}

// FromRecordData rebuilds a contact from its persisted shape. Field values
// are kept as stored. A timestamp that does not parse loads as the zero time
// and its text is kept for the next save.
func FromRecordData(d RecordData) Contact {
	c := Contact{
		Name:    d.Name,
		Phone:   d.Phone,
		Email:   d.Email,
		Address: d.Address,
		Notes:   d.Notes,
	}
	c.CreatedAt, c.rawCreated = parseStamp(d.CreatedDate)
	c.ModifiedAt, c.rawModified = parseStamp(d.ModifiedDate)
	return c
}

// MarshalJSON encodes c as RecordData without HTML escaping.
func (c Contact) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c.RecordData()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes RecordData. Only an absent name or phone key is an
// error; blank values load as stored. Files written by older versions carry
// last_modified instead of modified_date.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var aux struct {
		RecordData
		Name         *string `json:"name"`
		Phone        *string `json:"phone"`
		LastModified string  `json:"last_modified"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Name == nil || aux.Phone == nil {
		return errMissingKey
	}
	aux.RecordData.Name, aux.RecordData.Phone = *aux.Name, *aux.Phone
	if aux.ModifiedDate == "" {
		aux.ModifiedDate = aux.LastModified
	}
	*c = FromRecordData(aux.RecordData)
	return nil
}

func formatStamp(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}
	return t.In(time.Local).Format(TimeLayout)
}

// parseStamp returns the parsed time, or the zero time and s itself when s
// is not in TimeLayout.
func parseStamp(s string) (time.Time, string) {
	if s == "" {
		return time.Time{}, ""
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, s
	}
	return t, ""
}
