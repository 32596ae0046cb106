// Package vfs provides the in-memory file store backing a test session.
// Files are created once from a fixture's initial content; afterwards only
// their content changes. Path lookup can be case-insensitive to mirror the
// analyzer's own file-system semantics.
package vfs

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// File is one stored fixture file. Content is the single source of truth
// for the file's characters; edits go through SetContent.
type File struct {
	path    string
	content string
	meta    map[string]string
}

// Path returns the file's path as it was loaded.
func (f *File) Path() string {
	return f.path
}

// Content returns the file's current content.
func (f *File) Content() string {
	return f.content
}

// SetContent replaces the file's content.
func (f *File) SetContent(content string) {
	f.content = content
}

// Meta returns the metadata value for key, or "".
func (f *File) Meta(key string) string {
	return f.meta[key]
}

// Store holds a fixed set of files keyed by normalized path.
//
// Store is safe for concurrent use, though a test session drives it from a
// single goroutine.
type Store struct {
	mu         sync.RWMutex
	files      map[string]*File
	order      []*File
	ignoreCase bool
}

// Entry describes one file handed to NewStore.
type Entry struct {
	Content string
	Meta    map[string]string
}

// NewStore creates a store from a path-to-entry mapping. File order follows
// order; unknown or duplicate paths in order are rejected by the caller's
// fixture validation and are not re-checked here.
func NewStore(entries map[string]Entry, order []string, ignoreCase bool) *Store {
	s := &Store{
		files:      make(map[string]*File, len(entries)),
		ignoreCase: ignoreCase,
	}
	if order == nil {
		order = make([]string, 0, len(entries))
		for p := range entries {
			order = append(order, p)
		}
		sort.Strings(order)
	}
	for _, p := range order {
		e := entries[p]
		f := &File{path: p, content: e.Content, meta: e.Meta}
		s.files[s.normalize(p)] = f
		s.order = append(s.order, f)
	}
	return s
}

// IgnoreCase reports whether path lookup folds case.
func (s *Store) IgnoreCase() bool {
	return s.ignoreCase
}

// normalize cleans a path for use as a lookup key.
func (s *Store) normalize(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if s.ignoreCase {
		p = strings.ToLower(p)
	}
	return p
}

// SamePath reports whether two paths name the same file under the store's
// case rules.
func (s *Store) SamePath(a, b string) bool {
	return s.normalize(a) == s.normalize(b)
}

// Lookup returns the file at path, or false when no file matches.
func (s *Store) Lookup(p string) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[s.normalize(p)]
	return f, ok
}

// At returns the file at load-order index i, or false when out of range.
func (s *Store) At(i int) (*File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.order) {
		return nil, false
	}
	return s.order[i], true
}

// Len returns the number of stored files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Paths returns all file paths in load order.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, len(s.order))
	for i, f := range s.order {
		paths[i] = f.path
	}
	return paths
}

// Files returns all files in load order.
func (s *Store) Files() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]*File, len(s.order))
	copy(files, s.order)
	return files
}

// DescribeAvailable renders the stored paths for not-found error messages.
func (s *Store) DescribeAvailable() string {
	return fmt.Sprintf("available files: %s", strings.Join(s.Paths(), ", "))
}
