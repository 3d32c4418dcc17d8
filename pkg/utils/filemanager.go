// =============================================================================
// whalewatch - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline:
//   - Input discovery (one directory level, exact extension match)
//   - The optional processing summary written next to the output
//   - Small file helpers
//
// Input files are never moved, renamed or modified. Re-running the pipeline
// over the same directory must produce the same output.
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultExtension is the input suffix used when none is configured.
const DefaultExtension = ".tsv"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager locates pipeline inputs and writes run artefacts.
type FileManager struct {
	// InputDir is the directory scanned for input files.
	InputDir string

	// OutputDir is the directory holding the accumulated output.
	OutputDir string

	// Extension is the case-sensitive suffix an input file must end with.
	Extension string

	log zerolog.Logger
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, outputDir, extension string, log zerolog.Logger) *FileManager {
	if extension == "" {
		extension = DefaultExtension
	}
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: extension,
		log:       log,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files directly inside InputDir whose
// names end with Extension.
//
// RETURNS:
//   - The matching paths, sorted by file name. Each path is InputDir joined
//     with the file name.
//   - An error only when InputDir exists but cannot be read.
//
// A missing input directory is logged and yields an empty list. Files in
// subdirectories are ignored, and so is a directory whose name happens to
// carry the extension.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if errors.Is(err, fs.ErrNotExist) {
		fm.log.Warn().Str("dir", fm.InputDir).Msg("input directory does not exist")
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fm.Extension) {
			continue
		}
		if !entry.Type().IsRegular() {
			// Follow symlinks; anything else (pipes, sockets) is not an input.
			info, err := os.Stat(filepath.Join(fm.InputDir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, filepath.Join(fm.InputDir, entry.Name()))
	}

	if len(files) == 0 {
		fm.log.Warn().
			Str("dir", fm.InputDir).
			Str("extension", fm.Extension).
			Msg("no input files found")
	} else {
		fm.log.Info().Int("count", len(files)).Msg("discovered input files")
	}
	return files, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID        string
	StartTime    time.Time
	EndTime      time.Time
	OutputFile   string
	TotalFiles   int
	Appended     int
	Skipped      int
	Failed       int
	RowsAppended int
	Files        []FileOutcome
}

// FileOutcome describes one input file in the summary.
type FileOutcome struct {
	InputFile   string
	Status      string
	Rows        int
	Message     string
	ProcessTime time.Duration
}

// WriteSummaryLog writes a processing summary to a text file in outputDir.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (path string, err error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close summary file: %w", closeErr)
		}
	}()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"

	fmt.Fprintf(writer, "whalewatch - Processing Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Output:         %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.OutputFile)
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Appended:       %d\n"+
		"  Skipped:        %d\n"+
		"  Failed:         %d\n"+
		"  Rows Written:   %d\n\n",
		summary.TotalFiles,
		summary.Appended,
		summary.Skipped,
		summary.Failed,
		summary.RowsAppended)

	if len(summary.Files) > 0 {
		fmt.Fprintf(writer, "Files:\n%s\n", strings.Repeat("-", 80))
		for _, f := range summary.Files {
			fmt.Fprintf(writer, "  File:   %s\n", f.InputFile)
			fmt.Fprintf(writer, "  Status: %s\n", f.Status)
			fmt.Fprintf(writer, "  Rows:   %d\n", f.Rows)
			if f.Message != "" {
				fmt.Fprintf(writer, "  Error:  %s\n", f.Message)
			}
			fmt.Fprintf(writer, "  Time:   %s\n\n", f.ProcessTime.String())
		}
	}

	writer.WriteString(rule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
