package storage

import (
	"net/url"
	"path"
	"strings"
)

// maxBaseNameLength bounds the name portion of a derived filename so the
// full destination path stays well under filesystem limits.
const maxBaseNameLength = 64

// truncationMarker is appended when a base name gets cut.
const truncationMarker = "..."

// illegalFilenameChars are the characters no target filesystem accepts.
const illegalFilenameChars = `\/*?:"<>|`

// SanitizeFilename replaces filesystem-illegal characters with underscores
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return '_'
		}
		return r
	}, name)
}

// SanitizeFolderName removes filesystem-illegal characters entirely,
// matching how user-supplied query terms become folder names
func SanitizeFolderName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(illegalFilenameChars, r) {
			return -1
		}
		return r
	}, name)
}

// FilenameFromURL derives a safe filename from an image URL: the last path
// segment with the query string stripped, illegal characters replaced, and
// the name portion truncated to keep paths short. The extension survives
// truncation untouched.
func FilenameFromURL(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	} else if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}

	name = SanitizeFilename(path.Base(name))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}

	return truncateBaseName(name)
}

// truncateBaseName shortens the name portion (not the extension) to at
// most maxBaseNameLength runes, marking the cut
func truncateBaseName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	runes := []rune(base)
	if len(runes) <= maxBaseNameLength {
		return name
	}

	return string(runes[:maxBaseNameLength]) + truncationMarker + ext
}
