// Package localstore provides the durable local storage for the storefront
// client: a single JSON file of string keys and values, playing the role a
// browser's localStorage plays for the web frontend.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Store manages reading and writing the local state file.
// It provides atomic writes (write-tmp-then-rename), file locking (flock
// for cross-process, mutex for in-process), and tolerates a missing or
// corrupt file by starting from an empty state.
type Store struct {
	path   string
	mu     sync.Mutex
	data   map[string]string
	wrote  uint64 // xxhash of the last serialized write, 0 if none
	logger *slog.Logger
}

// Open loads the state file at path, creating parent directories as needed.
// A missing file yields an empty store; a corrupt file is logged and
// replaced by an empty store on the next write, never a fatal error.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		path:   path,
		data:   make(map[string]string),
		logger: logger,
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("state file not found, starting empty", "path", path)
			return s, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	// Warn if the existing file is readable by group or other; it holds
	// bearer credentials.
	if runtime.GOOS != "windows" {
		if info, statErr := os.Stat(path); statErr == nil {
			mode := info.Mode().Perm()
			if mode&0077 != 0 {
				logger.Warn("state file has too-open permissions, should be 0600",
					"path", path, "current_mode", fmt.Sprintf("%04o", mode))
			}
		}
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("state file is corrupt, starting empty", "path", path, "error", err)
		s.data = make(map[string]string)
		return s, nil
	}

	s.wrote = xxhash.Sum64(raw)
	return s, nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key and persists the full state to disk.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.save()
}

// Delete removes key and persists the full state to disk.
// Deleting an absent key still persists (no-op content, skipped by the
// change check below).
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return s.save()
}

// Path returns the configured state file path.
func (s *Store) Path() string {
	return s.path
}

// save writes the state to disk atomically. Caller must hold s.mu.
//
// The write sequence is:
//  1. Marshal state as indented JSON
//  2. Skip if the payload hash matches the last write
//  3. Acquire flock on path+".lock"
//  4. Write to path+".tmp" with 0600 permissions
//  5. Fsync the temp file
//  6. Rename path+".tmp" -> path
//  7. Release flock
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	// Unchanged content needs no rewrite.
	sum := xxhash.Sum64(data)
	if sum == s.wrote {
		return nil
	}

	lockPath := s.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer func() { _ = lockFile.Close() }()

	if err := flockLock(lockFile.Fd()); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer flockUnlock(lockFile.Fd()) //nolint:errcheck

	if err := s.writeAtomic(data); err != nil {
		return err
	}

	// Ensure 0600 permissions after rename as a safety net.
	if err := os.Chmod(s.path, 0600); err != nil {
		s.logger.Warn("failed to set permissions on state file", "error", err)
	}

	s.wrote = sum
	s.logger.Debug("state saved", "path", s.path)
	return nil
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *Store) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// cleanup closes and removes the temp file on error.
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp to state: %w", err)
	}
	return nil
}
