// Package dumpfs keeps diagnostic dump files in memory and flushes them to a
// host directory on request.
package dumpfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"
)

// DefaultQuota bounds the bytes a Store holds when no quota is given.
const DefaultQuota = 64 << 20

// validName accepts flat file names such as dump0001.png or log.html.
var validName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,32}(\.[a-zA-Z0-9]{1,4})?$`)

var (
	ErrNotFound      = errors.New("dump file not found")
	ErrInvalidName   = errors.New("invalid dump file name")
	ErrQuotaExceeded = errors.New("dump quota exceeded")
)

type file struct {
	data     []byte
	created  time.Time
	modified time.Time
}

// Store is an in-memory set of named files, safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	files map[string]*file
	dirty map[string]bool // written or deleted since the last PersistTo
	used  int
	quota int
}

// NewStore returns an empty store holding at most quota bytes. A quota of
// zero or less selects DefaultQuota.
func NewStore(quota int) *Store {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &Store{
		files: make(map[string]*file),
		dirty: make(map[string]bool),
		quota: quota,
	}
}

func checkName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Write replaces the contents of name with a copy of data.
func (s *Store) Write(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := 0
	f, exists := s.files[name]
	if exists {
		old = len(f.data)
	}
	if s.used-old+len(data) > s.quota {
		return fmt.Errorf("%w: writing %d bytes to %s", ErrQuotaExceeded, len(data), name)
	}
	if !exists {
		f = &file{created: time.Now()}
		s.files[name] = f
	}
	f.data = append([]byte(nil), data...)
	f.modified = time.Now()
	s.used += len(data) - old
	s.dirty[name] = true
	return nil
}

// Append adds data to the end of name, creating it if needed.
func (s *Store) Append(name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used+len(data) > s.quota {
		return fmt.Errorf("%w: appending %d bytes to %s", ErrQuotaExceeded, len(data), name)
	}
	f, ok := s.files[name]
	if !ok {
		f = &file{created: time.Now()}
		s.files[name] = f
	}
	f.data = append(f.data, data...)
	f.modified = time.Now()
	s.used += len(data)
	s.dirty[name] = true
	return nil
}

// Read returns a copy of the contents of name.
func (s *Store) Read(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), f.data...), nil
}

// Size returns the length of name in bytes.
func (s *Store) Size(name string) (int, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return len(f.data), nil
}

// Delete removes name. The next PersistTo removes it from the host as well.
func (s *Store) Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.used -= len(f.data)
	delete(s.files, name)
	s.dirty[name] = true
	return nil
}

// Used returns the bytes currently held.
func (s *Store) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// Free returns the bytes left under the quota.
func (s *Store) Free() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota - s.used
}

// Dirty reports whether anything changed since the last PersistTo.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// List returns the file names in sorted order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Meta returns the creation and modification times of name.
func (s *Store) Meta(name string) (created, modified time.Time, err error) {
	if err := checkName(name); err != nil {
		return time.Time{}, time.Time{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[name]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f.created, f.modified, nil
}

// LoadFrom adds the regular files of dir whose names are valid. A missing
// directory is not an error. Loaded files are not dirty.
func (s *Store) LoadFrom(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load dumps: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !validName.MatchString(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("load dumps: %w", err)
		}
		old := 0
		if f, ok := s.files[name]; ok {
			old = len(f.data)
		}
		if s.used-old+len(data) > s.quota {
			return fmt.Errorf("%w: loading %s", ErrQuotaExceeded, name)
		}
		f := &file{data: data, created: time.Now(), modified: time.Now()}
		if info, err := entry.Info(); err == nil {
			f.created, f.modified = info.ModTime(), info.ModTime()
		}
		s.files[name] = f
		s.used += len(data) - old
	}
	return nil
}

// PersistTo writes every dirty file into dir, creating it if needed, and
// removes files deleted since the last call. Files that fail to write stay
// dirty. The first error is returned.
func (s *Store) PersistTo(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist dumps: %w", err)
	}

	// Snapshot under the lock, then do the I/O without it.
	s.mu.Lock()
	writes := make(map[string]*file)
	var removes []string
	for name := range s.dirty {
		if f, ok := s.files[name]; ok {
			writes[name] = &file{data: append([]byte(nil), f.data...), modified: f.modified}
		} else {
			removes = append(removes, name)
		}
		delete(s.dirty, name)
	}
	s.mu.Unlock()

	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = fmt.Errorf("persist dumps: %w", err)
		}
	}
	for _, name := range removes {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			keep(err)
		}
	}
	for name, f := range writes {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			s.mu.Lock()
			s.dirty[name] = true
			s.mu.Unlock()
			keep(err)
			continue
		}
		_ = os.Chtimes(path, time.Now(), f.modified)
	}
	return firstErr
}
