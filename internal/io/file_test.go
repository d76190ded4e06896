package ioutils

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzip(t *testing.T, path string, content []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "a", "b", "c")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	keep := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0644))
	require.NoError(t, EnsureDir(dir))
	_, err = os.Stat(keep)
	assert.NoError(t, err, "existing contents must be left alone")
}

func TestStagingPath(t *testing.T) {
	final := filepath.Join("data", "725300-99999-2000.gz")

	a := StagingPath(final)
	b := StagingPath(final)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, final+"."))
	assert.True(t, strings.HasSuffix(a, StagingSuffix))
	assert.Equal(t, filepath.Dir(final), filepath.Dir(a))
}

func TestCommit(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(final, []byte("old"), 0644))

	staging := StagingPath(final)
	require.NoError(t, os.WriteFile(staging, []byte("new"), 0644))

	require.NoError(t, Commit(staging, final))

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	assert.Equal(t, []string{"out.txt"}, listDir(t, dir))
}

func TestRemoveQuietly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.NoError(t, RemoveQuietly(path))
	assert.NoError(t, RemoveQuietly(path))
	assert.Empty(t, listDir(t, dir))
}

func TestGunzipFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "725300-99999-2000.gz")
	dst := filepath.Join(dir, "725300-99999-2000")

	content := []byte("0123456789 observation line\n")
	content = bytes.Repeat(content, 1000)
	writeGzip(t, src, content)

	n, err := GunzipFile(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.ElementsMatch(t, []string{"725300-99999-2000.gz", "725300-99999-2000"}, listDir(t, dir))
}

func TestGunzipFile_InvalidStream(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.gz")
	dst := filepath.Join(dir, "broken")
	require.NoError(t, os.WriteFile(src, []byte("this is not gzip"), 0644))

	_, err := GunzipFile(context.Background(), src, dst)
	require.Error(t, err)
	assert.Equal(t, []string{"broken.gz"}, listDir(t, dir))
}

func TestGunzipFile_TruncatedStream(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "short.gz")
	dst := filepath.Join(dir, "short")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(bytes.Repeat([]byte("abcdefgh"), 4096))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(src, buf.Bytes()[:buf.Len()/2], 0644))

	_, err = GunzipFile(context.Background(), src, dst)
	require.Error(t, err)
	assert.Equal(t, []string{"short.gz"}, listDir(t, dir), "no partial output may remain")
}

func TestGunzipFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := GunzipFile(context.Background(), filepath.Join(dir, "missing.gz"), filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestGunzipFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.gz")
	dst := filepath.Join(dir, "a")
	writeGzip(t, src, []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GunzipFile(ctx, src, dst)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a.gz"}, listDir(t, dir))
}
