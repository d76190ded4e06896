// Package ioutils provides file system utilities for isd-downloader.
//
// # Directories
//
//	err := ioutils.EnsureDir("/path/to/output")
//
// # Atomic Writes
//
// Files are written to a unique staging path and renamed into place once
// complete, so a final name never refers to a half-written file:
//
//	staging := ioutils.StagingPath(finalPath)
//	// ... write staging ...
//	err := ioutils.Commit(staging, finalPath)
//
// # Decompression
//
// GunzipFile decompresses an archive using the same staging discipline:
//
//	n, err := ioutils.GunzipFile(ctx, "/data/725300-99999-2000.gz", "/data/725300-99999-2000")
package ioutils
