package model

import (
	"path/filepath"
	"strings"
)

// CompressedExtension is the extension of ISD archive files.
const CompressedExtension = ".gz"

// ArchiveFile describes one remote archive and where it lands locally.
//
// ArchiveFile lives only for a single download-decompress-cleanup cycle:
//   - RemoteURL is fetched into CompressedPath
//   - CompressedPath is decompressed into DecompressedPath
//   - CompressedPath is removed
type ArchiveFile struct {
	// RemoteURL is the absolute URL of the compressed archive.
	RemoteURL string

	// Filename is the link target as it appeared in the year listing.
	Filename string

	// CompressedPath is where the downloaded archive is stored.
	CompressedPath string

	// DecompressedPath is the final artifact path.
	DecompressedPath string
}

// ArchiveConfig holds local naming settings for archives.
type ArchiveConfig struct {
	// OutputDirectory is the directory archives are written to.
	OutputDirectory string

	// DecompressedExtension is appended after the ".gz" extension is stripped.
	// Empty keeps the bare name ("725300-99999-2000"); ".txt" gives
	// "725300-99999-2000.txt".
	DecompressedExtension string
}

// NewArchiveFile creates an ArchiveFile with computed local paths.
//
// Only the base name of filename is used locally, so link targets that carry
// a path never escape the output directory.
func NewArchiveFile(remoteURL, filename string, cfg *ArchiveConfig) *ArchiveFile {
	base := filepath.Base(filepath.FromSlash(filename))

	archive := &ArchiveFile{
		RemoteURL:      remoteURL,
		Filename:       filename,
		CompressedPath: filepath.Join(cfg.OutputDirectory, base),
	}
	archive.DecompressedPath = filepath.Join(cfg.OutputDirectory, decompressedName(base, cfg.DecompressedExtension))

	return archive
}

// decompressedName strips the compressed extension and appends ext.
func decompressedName(name, ext string) string {
	stripped := strings.TrimSuffix(name, CompressedExtension) + ext
	if stripped == name {
		// Never decompress onto the archive itself.
		return name + ".txt"
	}
	return stripped
}
