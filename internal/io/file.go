package ioutils

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StagingSuffix marks files that are still being written.
const StagingSuffix = ".part"

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned and its contents are
// left untouched.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// StagingPath returns a unique sibling of path to write into before renaming.
//
// Example:
//
//	StagingPath("/data/725300-99999-2000.gz")
//	// "/data/725300-99999-2000.gz.5f1c...e2.part"
func StagingPath(path string) string {
	return fmt.Sprintf("%s.%s%s", path, uuid.NewString(), StagingSuffix)
}

// Commit moves a finished staging file to its final path.
//
// The rename is atomic on the same file system, so the final path only ever
// names a complete file. An existing file at finalPath is replaced.
func Commit(stagingPath, finalPath string) error {
	if err := os.Rename(stagingPath, finalPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(finalPath), err)
	}
	return nil
}

// RemoveQuietly deletes path, ignoring a missing file.
func RemoveQuietly(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GunzipFile decompresses the gzip file at src into dst.
//
// The decompressed bytes are written to a staging sibling of dst and renamed
// into place only after the whole stream has been read and verified, so dst
// never holds a truncated result. On failure the staging file is removed.
//
// Returns the number of decompressed bytes written.
//
// Example:
//
//	n, err := GunzipFile(ctx, "/data/725300-99999-2000.gz", "/data/725300-99999-2000")
func GunzipFile(ctx context.Context, src, dst string) (n int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return 0, fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer zr.Close()

	staging := StagingPath(dst)
	out, err := os.Create(staging)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			out.Close()
			_ = RemoveQuietly(staging)
		}
	}()

	n, err = io.Copy(out, &contextReader{ctx: ctx, r: zr})
	if err != nil {
		return n, fmt.Errorf("failed to decompress %s: %w", filepath.Base(src), err)
	}

	if err = out.Close(); err != nil {
		return n, err
	}

	if err = Commit(staging, dst); err != nil {
		return n, err
	}

	return n, nil
}

// contextReader stops a copy once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
