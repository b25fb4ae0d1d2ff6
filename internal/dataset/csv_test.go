package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadCSV_WithHeader(t *testing.T) {
	in := "date,close\n2024-01-02,100.5\n2024-01-03, 101\n"
	rows, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !rows[0].Time.Equal(want) || rows[0].Value != 100.5 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Value != 101 {
		t.Errorf("unexpected second value: %.2f", rows[1].Value)
	}
}

func TestReadCSV_UnixAndExtraColumns(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("1700000000,0.7,ignored\n"))
	if err != nil {
		t.Fatalf("ReadCSV error: %v", err)
	}
	if len(rows) != 1 || rows[0].Time.Unix() != 1700000000 || rows[0].Value != 0.7 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadCSV_BadValueAfterHeader(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("ts,v\n2024-01-02,abc\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadCSV_BadTimestamp(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("yesterday,1\n"))
	if err == nil {
		t.Fatal("expected timestamp error")
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte("2024-01-02T15:00:00Z,42\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != 42 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
