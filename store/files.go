package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotText     = errors.New("not a text file")
	ErrFileTooBig  = errors.New("file too large")
	ErrFileNotOpen = errors.New("file not open")
)

type OpenFile struct {
	// as given to Open, used for display and glob matching
	Path     string
	MimeType string
	Size     int64
	Content  string
	Opened   time.Time
}

// OpenFileStore is the list of files open in the editor, in open order, with
// one active file.
type OpenFileStore struct {
	maxSize int64

	mu     sync.RWMutex
	files  map[string]*OpenFile // abs path -> file
	order  []string             // abs paths
	active string
}

func NewOpenFileStore(maxSize int64) *OpenFileStore {
	return &OpenFileStore{
		maxSize: maxSize,
		files:   make(map[string]*OpenFile),
	}
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Open reads path and makes it the active file. Opening an already open file
// reloads its content.
func (s *OpenFileStore) Open(path string) (OpenFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return OpenFile{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return OpenFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return OpenFile{}, fmt.Errorf("%s is a directory", path)
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return OpenFile{}, fmt.Errorf("%s: %w (%d > %d bytes)", path, ErrFileTooBig, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return OpenFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mtype := mimetype.Detect(data)
	if !isText(mtype) {
		return OpenFile{}, fmt.Errorf("%s (%s): %w", path, mtype.String(), ErrNotText)
	}

	file := &OpenFile{
		Path:     filepath.Clean(path),
		MimeType: mtype.String(),
		Size:     int64(len(data)),
		Content:  string(data),
		Opened:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[abs]; !ok {
		s.order = append(s.order, abs)
	}
	s.files[abs] = file
	s.active = abs

	return *file, nil
}

// Close closes path. It reports whether the file was open.
func (s *OpenFileStore) Close(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked(abs)
}

func (s *OpenFileStore) closeLocked(abs string) bool {
	if _, ok := s.files[abs]; !ok {
		return false
	}

	delete(s.files, abs)
	idx := slices.Index(s.order, abs)
	s.order = slices.Delete(s.order, idx, idx+1)

	if s.active == abs {
		s.active = ""
		if len(s.order) > 0 {
			s.active = s.order[min(idx, len(s.order)-1)]
		}
	}

	return true
}

// CloseMatching closes every open file whose path matches the doublestar
// pattern and returns the closed paths.
func (s *OpenFileStore) CloseMatching(pattern string) ([]string, error) {
	if !doublestar.ValidatePathPattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var closed []string
	for _, abs := range slices.Clone(s.order) {
		file := s.files[abs]
		if !doublestar.PathMatchUnvalidated(pattern, file.Path) &&
			!doublestar.PathMatchUnvalidated(pattern, abs) {
			continue
		}
		s.closeLocked(abs)
		closed = append(closed, file.Path)
	}

	return closed, nil
}

// List returns the open files in open order.
func (s *OpenFileStore) List() []OpenFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OpenFile, 0, len(s.order))
	for _, abs := range s.order {
		out = append(out, *s.files[abs])
	}
	return out
}

func (s *OpenFileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *OpenFileStore) Active() (OpenFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == "" {
		return OpenFile{}, false
	}
	return *s.files[s.active], true
}

func (s *OpenFileStore) SetActive(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[abs]; !ok {
		return ErrFileNotOpen
	}
	s.active = abs
	return nil
}

// Next makes the file after the active one active, wrapping around.
func (s *OpenFileStore) Next() (OpenFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) == 0 {
		return OpenFile{}, false
	}

	idx := slices.Index(s.order, s.active)
	s.active = s.order[(idx+1)%len(s.order)]
	return *s.files[s.active], true
}
