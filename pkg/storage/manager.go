package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles file storage operations and duplicate detection for one
// destination directory
type Manager struct {
	outputDir     string
	existingFiles map[string]bool
	mu            sync.Mutex
}

// NewManager creates a new storage manager, creating the destination
// directory if absent and scanning it for already-downloaded files
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:     outputDir,
		existingFiles: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the files already present in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			m.existingFiles[entry.Name()] = true
		}
	}

	return nil
}

// IsDownloaded checks whether a file with the given name already exists.
// The in-memory cache is authoritative for files saved through this
// manager; a stat double-check catches files placed there by other means.
func (m *Manager) IsDownloaded(filename string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.existingFiles[filename] {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, filename)); err == nil {
		m.existingFiles[filename] = true
		return true
	}

	return false
}

// SaveImage streams image data to the destination file. The data is
// written through a temporary file and renamed into place on success, so
// a reader failure mid-stream never leaves a partial file at the final
// path. Returns the number of bytes written.
func (m *Manager) SaveImage(r io.Reader, filename string) (int64, error) {
	finalPath := filepath.Join(m.outputDir, filename)
	tempPath := finalPath + ".tmp"

	out, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempPath)
		return written, fmt.Errorf("failed to save image data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempPath)
		return written, fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return written, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.existingFiles[filename] = true
	m.mu.Unlock()

	return written, nil
}

// Path returns the destination path for a filename
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// ExistingCount returns the number of files known to exist
func (m *Manager) ExistingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.existingFiles)
}
