// Package storage provides file management for downloaded wallpapers.
//
// The storage package handles:
//   - Creating the per-site destination directories
//   - Deriving safe filenames from image URLs
//   - Saving images with atomic write operations
//   - Detecting files that already exist on disk
//
// The Manager type is the primary interface for storage operations. It
// maintains an in-memory cache of existing filenames for fast duplicate
// detection and writes through a temporary file plus rename, so a file at
// a destination path always implies a complete download.
//
// Usage:
//
//	manager, err := storage.NewManager("downloads/wallhaven/anime")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	filename := storage.FilenameFromURL(imageURL)
//	if !manager.IsDownloaded(filename) {
//	    _, err = manager.SaveImage(imageReader, filename)
//	}
package storage
