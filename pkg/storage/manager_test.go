package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(filepath.Join(tempDir, "wallhaven", "anime"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// The nested destination directory is created on demand
	if _, err := os.Stat(manager.OutputDir()); err != nil {
		t.Fatalf("Expected output directory to exist: %v", err)
	}

	if manager.ExistingCount() != 0 {
		t.Error("Expected initial existing count to be 0")
	}

	if manager.IsDownloaded("wallhaven-x8qgez.jpg") {
		t.Error("Expected IsDownloaded to return false for non-existent file")
	}

	// Save an image
	testData := []byte("image bytes")
	written, err := manager.SaveImage(bytes.NewReader(testData), "wallhaven-x8qgez.jpg")
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}
	if written != int64(len(testData)) {
		t.Errorf("Expected %d bytes written, got %d", len(testData), written)
	}

	// Verify file content
	content, err := os.ReadFile(manager.Path("wallhaven-x8qgez.jpg"))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	if !manager.IsDownloaded("wallhaven-x8qgez.jpg") {
		t.Error("Expected IsDownloaded to return true for saved file")
	}

	if manager.ExistingCount() != 1 {
		t.Errorf("Expected existing count to be 1, got %d", manager.ExistingCount())
	}
}

func TestManagerScansExistingFiles(t *testing.T) {
	tempDir := t.TempDir()

	// Files placed before the manager exists are still detected
	if err := os.WriteFile(filepath.Join(tempDir, "already-here.png"), []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to create existing file: %v", err)
	}

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if !manager.IsDownloaded("already-here.png") {
		t.Error("Expected pre-existing file to be detected")
	}
	if manager.ExistingCount() != 1 {
		t.Errorf("Expected existing count to be 1, got %d", manager.ExistingCount())
	}
}

func TestManagerDetectsFilesAddedBehindItsBack(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := os.WriteFile(filepath.Join(tempDir, "surprise.jpg"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if !manager.IsDownloaded("surprise.jpg") {
		t.Error("Expected stat fallback to detect file created after scan")
	}
}

// failingReader fails partway through a read
type failingReader struct {
	data []byte
	pos  int
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, errors.New("connection reset")
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestSaveImageCleansUpPartialWrite(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	reader := &failingReader{data: []byte("some partial data")}
	_, err = manager.SaveImage(reader, "broken.jpg")
	if err == nil {
		t.Fatal("Expected save to fail with a failing reader")
	}

	// Neither the final file nor a temp file may survive
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		t.Errorf("Expected no files after failed save, found %s", entry.Name())
	}

	if manager.IsDownloaded("broken.jpg") {
		t.Error("Expected failed save not to register as downloaded")
	}
}

func TestSaveImageAtomicRename(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.SaveImage(strings.NewReader("data"), "ok.jpg"); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	// No temp file is left behind after a successful save
	if _, err := os.Stat(manager.Path("ok.jpg") + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be gone after rename")
	}
}
