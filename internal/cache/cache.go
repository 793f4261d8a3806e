// Package cache implements the content-addressed on-disk cache that
// makes repeated analyses incremental: entries are keyed by
// (absolute_path, file_contents_hash), sharded two levels deep, and
// serialized as JSON for byte-compatible interop with the legacy cache
// format this project ports.
package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	rubyrefs "github.com/perryqh/ruby-references-go"
)

// Cache is the polymorphic interface the Parallel Driver depends on; it
// has exactly two implementations, Persistent and NoOp, chosen once at
// construction and never switched at runtime.
type Cache interface {
	Get(absolutePath string) (Result, error)
	Write(empty EmptyEntry, pf rubyrefs.ProcessedFile) error
}

// Result is either a cache hit carrying the stored ProcessedFile, or a
// miss carrying the key material (EmptyEntry) a subsequent Write needs.
type Result struct {
	Hit   bool
	File  rubyrefs.ProcessedFile
	Empty EmptyEntry
}

// EmptyEntry is the key material derived for a path before its cache
// file is read: the digests and on-disk location a miss needs to be
// written back.
type EmptyEntry struct {
	FilePath            string
	FileContentsDigest  string
	FileNameDigest      string
	CacheFilePath       string
}

// entry is the literal on-disk JSON record.
type entry struct {
	FileContentsDigest string                  `json:"file_contents_digest"`
	ProcessedFile      rubyrefs.ProcessedFile  `json:"processed_file"`
}

// New returns the Persistent cache when enabled, else the NoOp variant,
// behind the same Cache interface so the driver is unaware which it
// got.
func New(enabled bool, cacheDir string) Cache {
	if enabled {
		return &Persistent{CacheDir: cacheDir}
	}
	return &NoOp{}
}

// FileNameDigest returns hex(md5(absolutePath)), the digest used to
// derive the on-disk cache file's sharded location.
func FileNameDigest(absolutePath string) string {
	sum := md5.Sum([]byte(absolutePath))
	return fmt.Sprintf("%x", sum)
}

// ContentDigest returns hex(md5(contents)), the digest stored in and
// compared against the cache entry to detect staleness.
func ContentDigest(contents []byte) string {
	sum := md5.Sum(contents)
	return fmt.Sprintf("%x", sum)
}

// CacheFilePathFromDigest builds the two-level sharded path
// cache_dir/digest[..2]/digest[2..].
func CacheFilePathFromDigest(cacheDir, fileNameDigest string) string {
	return filepath.Join(cacheDir, fileNameDigest[:2], fileNameDigest[2:])
}

// NewEmptyEntry derives the key material for a path's current
// contents.
func NewEmptyEntry(cacheDir, absolutePath string, contents []byte) EmptyEntry {
	fileNameDigest := FileNameDigest(absolutePath)
	return EmptyEntry{
		FilePath:           absolutePath,
		FileContentsDigest: ContentDigest(contents),
		FileNameDigest:     fileNameDigest,
		CacheFilePath:      CacheFilePathFromDigest(cacheDir, fileNameDigest),
	}
}

// Persistent is the on-disk, content-addressed cache variant.
type Persistent struct {
	CacheDir string
}

// Get reads the cache entry for the path's current contents, returning
// a Miss if the entry is absent, unreadable, malformed, or stale. Read
// failures are logged and treated as a Miss rather than propagated,
// per the cache's corruption policy.
func (p *Persistent) Get(absolutePath string) (Result, error) {
	contents, err := os.ReadFile(absolutePath)
	if err != nil {
		return Result{}, fmt.Errorf("cache: read contents of %s: %w", absolutePath, err)
	}

	empty := NewEmptyEntry(p.CacheDir, absolutePath, contents)

	raw, err := os.ReadFile(empty.CacheFilePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache.read_failed", "path", empty.CacheFilePath, "error", err)
		}
		return Result{Empty: empty}, nil
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		slog.Warn("cache.corrupt", "path", empty.CacheFilePath, "error", err)
		return Result{Empty: empty}, nil
	}

	if e.FileContentsDigest != empty.FileContentsDigest {
		return Result{Empty: empty}, nil
	}

	return Result{Hit: true, File: e.ProcessedFile}, nil
}

// Write serializes {file_contents_digest, processed_file} to the
// entry's sharded path, creating parent directories as needed. Parent
// directory creation uses os.MkdirAll, which succeeds when the directory
// already exists, so concurrent writers whose entries share a shard
// directory do not conflict.
func (p *Persistent) Write(empty EmptyEntry, pf rubyrefs.ProcessedFile) error {
	e := entry{FileContentsDigest: empty.FileContentsDigest, ProcessedFile: pf}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("cache: serialize entry for %s: %w", empty.FilePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(empty.CacheFilePath), 0o755); err != nil {
		return fmt.Errorf("cache: create cache directory: %w", err)
	}

	if err := os.WriteFile(empty.CacheFilePath, data, 0o644); err != nil {
		return fmt.Errorf("cache: write cache file %s: %w", empty.CacheFilePath, err)
	}

	return nil
}

// NoOp is the cache variant used when caching is disabled: it always
// misses and silently discards writes, behind the same interface as
// Persistent so callers don't need to special-case it.
type NoOp struct{}

func (NoOp) Get(absolutePath string) (Result, error) {
	return Result{Empty: EmptyEntry{FilePath: absolutePath}}, nil
}

func (NoOp) Write(EmptyEntry, rubyrefs.ProcessedFile) error {
	return nil
}
