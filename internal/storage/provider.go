// Package storage defines the backing-file abstraction for the contact book.
package storage

// Provider reads and writes the whole book file at once.
type Provider interface {
	// Path returns the location of the backing file.
	Path() string
	// Read returns the raw bytes of the file. A missing file yields an
	// error matching fs.ErrNotExist.
	Read() ([]byte, error)
	// Write replaces the file contents with data.
	Write(data []byte) error
}
