package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.tsv", "a.tsv", "notes.txt", "UPPER.TSV", "archive.tsv.bak"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested", "deep.tsv"))
	if err := os.Mkdir(filepath.Join(dir, "folder.tsv"), 0o755); err != nil {
		t.Fatal(err)
	}

	fm := NewFileManager(dir, filepath.Join(dir, "output"), ".tsv", zerolog.Nop())
	got, err := fm.DiscoverInputFiles()
	if err != nil {
		t.Fatalf("DiscoverInputFiles: %v", err)
	}

	want := []string{filepath.Join(dir, "a.tsv"), filepath.Join(dir, "b.tsv")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiscoverInputFiles = %v, want %v", got, want)
	}
}

func TestDiscoverInputFiles_Empty(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
	}{
		{"empty directory", func(t *testing.T) string { return t.TempDir() }},
		{"missing directory", func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := NewFileManager(tt.dir(t), "", "", zerolog.Nop())
			got, err := fm.DiscoverInputFiles()
			if err != nil {
				t.Fatalf("DiscoverInputFiles: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("DiscoverInputFiles = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestNewFileManager_DefaultExtension(t *testing.T) {
	fm := NewFileManager("in", "out", "", zerolog.Nop())
	if fm.Extension != DefaultExtension {
		t.Errorf("Extension = %q, want %q", fm.Extension, DefaultExtension)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
	summary := ProcessingSummary{
		RunID:        "run-1",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		OutputFile:   filepath.Join(dir, "whales.csv"),
		TotalFiles:   2,
		Appended:     1,
		Skipped:      1,
		RowsAppended: 3,
		Files: []FileOutcome{
			{InputFile: "a.tsv", Status: "appended", Rows: 3},
			{InputFile: "b.tsv", Status: "skipped", Message: "b.tsv: missing column 'input_total'"},
		},
	}

	path, err := WriteSummaryLog(summary, dir)
	if err != nil {
		t.Fatalf("WriteSummaryLog: %v", err)
	}
	if filepath.Base(path) != "processing_summary_20240115_143022.txt" {
		t.Errorf("path = %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Run ID:         run-1", "Rows Written:   3", "missing column 'input_total'", "End of Summary"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x")
	if FileExists(path) {
		t.Error("FileExists(missing) = true")
	}
	touch(t, path)
	if !FileExists(path) {
		t.Error("FileExists(existing) = false")
	}
	if size, err := GetFileSize(path); err != nil || size != 1 {
		t.Errorf("GetFileSize = %d, %v", size, err)
	}
}
