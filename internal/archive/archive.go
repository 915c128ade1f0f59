// Package archive provides a SQLite snapshot of the contact book for
// export and import.
package archive

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/rolodex/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS contacts (
	phone         TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	created_date  TEXT NOT NULL DEFAULT '',
	modified_date TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB holding one archived book.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the archive at path and applies the schema.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("archive: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Export replaces the archive contents with contacts, keeping their order.
// When two contacts share a phone the first one wins. It returns the number
// of rows written.
func (db *DB) Export(contacts []models.Contact) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(`DELETE FROM contacts`); err != nil {
		return 0, fmt.Errorf("archive: clear: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO contacts (phone, name, email, address, notes, created_date, modified_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("archive: prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, c := range contacts {
		d := c.RecordData()
		res, err := stmt.Exec(d.Phone, d.Name, d.Email, d.Address, d.Notes, d.CreatedDate, d.ModifiedDate)
		if err != nil {
			return 0, fmt.Errorf("archive: insert %s: %w", d.Phone, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			written++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("archive: commit: %w", err)
	}
	return written, nil
}

// Contacts returns the archived contacts in export order.
func (db *DB) Contacts() ([]models.Contact, error) {
	rows, err := db.conn.Query(`
		SELECT name, phone, email, address, notes, created_date, modified_date
		FROM contacts ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("archive: query: %w", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var d models.RecordData
		if err := rows.Scan(&d.Name, &d.Phone, &d.Email, &d.Address, &d.Notes, &d.CreatedDate, &d.ModifiedDate); err != nil {
			return nil, fmt.Errorf("archive: scan: %w", err)
		}
		out = append(out, models.FromRecordData(d))
	}
	return out, rows.Err()
}
