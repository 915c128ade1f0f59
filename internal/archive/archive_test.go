package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/rolodex/internal/models"
)

func testDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestSchemaCreation(t *testing.T) {
	db, _ := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM contacts`).Scan(&count); err != nil {
		t.Fatalf("contacts table missing: %v", err)
	}
}

func TestExportAndReadBack(t *testing.T) {
	db, _ := testDB(t)
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	in := []models.Contact{
		{Name: "Zed", Phone: "2", Notes: "<b>", CreatedAt: created, ModifiedAt: created.Add(time.Hour)},
		{Name: "Amy", Phone: "1", Email: "amy@x.com"},
	}

	n, err := db.Export(in)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	got, err := db.Contacts()
	if err != nil {
		t.Fatalf("Contacts: %v", err)
	}
	if diff := cmp.Diff(in, got, cmp.AllowUnexported(models.Contact{})); diff != "" {
		t.Errorf("Contacts() mismatch (-want +got):\n%s", diff)
	}
}

func TestExportReplacesContents(t *testing.T) {
	db, path := testDB(t)
	if _, err := db.Export([]models.Contact{{Name: "A", Phone: "1"}, {Name: "B", Phone: "2"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Export([]models.Contact{{Name: "C", Phone: "3"}}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Contacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Phone != "3" {
		t.Errorf("contents = %v", got)
	}
}

func TestExportDuplicatePhoneFirstWins(t *testing.T) {
	db, _ := testDB(t)
	n, err := db.Export([]models.Contact{{Name: "First", Phone: "1"}, {Name: "Second", Phone: "1"}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 1 {
		t.Errorf("written = %d, want 1", n)
	}
	got, _ := db.Contacts()
	if len(got) != 1 || got[0].Name != "First" {
		t.Errorf("contents = %v", got)
	}
}

func TestContactsEmpty(t *testing.T) {
	db, _ := testDB(t)
	got, err := db.Contacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestUnparsedTimestampSurvivesExport(t *testing.T) {
	db, _ := testDB(t)
	in := models.FromRecordData(models.RecordData{Name: "A", Phone: "1", CreatedDate: "last spring"})
	if _, err := db.Export([]models.Contact{in}); err != nil {
		t.Fatal(err)
	}
	got, err := db.Contacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RecordData().CreatedDate != "last spring" {
		t.Errorf("contents = %+v", got)
	}
}
