package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type fileRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "record.json")

	var missing fileRecord
	ok, err := ReadJSONFile(path, &missing)
	if err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}

	if err := WriteJSONFile(path, fileRecord{Name: "a", Count: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteJSONFile(path, fileRecord{Name: "b", Count: 2}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}

	var got fileRecord
	ok, err = ReadJSONFile(path, &got)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if got != (fileRecord{Name: "b", Count: 2}) {
		t.Fatalf("record = %+v", got)
	}
}

func TestReadJSONFileErrors(t *testing.T) {
	dir := t.TempDir()
	var rec fileRecord
	if _, err := ReadJSONFile(dir, &rec); err == nil {
		t.Fatalf("expected directory error")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadJSONFile(bad, &rec); err == nil {
		t.Fatalf("expected parse error")
	}
}
