package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// exerciseStore runs the shared contract against any backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.Set("seat-selections", `["A-1-1"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("seat-selections")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `["A-1-1"]` {
		t.Errorf("Get = %q", got)
	}

	if err := s.Set("seat-selections", `[]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got, _ := s.Get("seat-selections"); got != `[]` {
		t.Errorf("after overwrite Get = %q", got)
	}

	if err := s.Remove("seat-selections"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Get("seat-selections"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Remove err = %v, want ErrNotFound", err)
	}
	if err := s.Remove("never-set"); err != nil {
		t.Errorf("Remove of missing key: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	if err := s.Set("darkMode", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, err := reopened.Get("darkMode"); err != nil || v != "true" {
		t.Errorf("Get after reopen = %q, %v", v, err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	if s.Recovered() != path+".corrupt" {
		t.Errorf("Recovered = %q, want %q", s.Recovered(), path+".corrupt")
	}
	if _, err := s.Get("seat-selections"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after recovery = %v, want ErrNotFound", err)
	}
	if data, err := os.ReadFile(path + ".corrupt"); err != nil || string(data) != "{not json" {
		t.Errorf("corrupt file not kept aside: %q, %v", data, err)
	}

	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	reopened, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Recovered() != "" {
		t.Error("clean file should not report recovery")
	}
	if v, _ := reopened.Get("k"); v != "v" {
		t.Errorf("Get(k) = %q, want v", v)
	}
}

func TestFileStore_WriteFailureKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	// Parent "directory" is a regular file, so every flush fails.
	s := &FileStore{path: filepath.Join(blocker, "storage.json"), values: map[string]string{"k": "old"}}

	if err := s.Set("k", "new"); err == nil {
		t.Fatal("expected Set to fail")
	}
	if v, _ := s.Get("k"); v != "old" {
		t.Errorf("value after failed Set = %q, want old", v)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	s, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	if err := s.Set("seat-selections", `["B-2-3"]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if v, err := reopened.Get("seat-selections"); err != nil || v != `["B-2-3"]` {
		t.Errorf("Get after reopen = %q, %v", v, err)
	}
}
