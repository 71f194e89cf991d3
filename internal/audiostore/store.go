package audiostore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"ytmp3/internal/services"
)

const (
	// Extension is the suffix of every converted file.
	Extension = ".mp3"
	// LockFileName is the daemon's instance lock inside the downloads directory.
	LockFileName = ".ytmp3.lock"

	maxIDLength = 19
)

// Entry describes one file in the store.
type Entry struct {
	ID      string
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Store is a directory of timestamp-named audio files.
type Store struct {
	dir    string
	lastID atomic.Int64
	now    func() time.Time
}

// New opens dir as a store, creating it when missing.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("audiostore: directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("audiostore: resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("audiostore: create %q: %w", abs, err)
	}
	return &Store{dir: abs, now: time.Now}, nil
}

// Dir returns the absolute store directory.
func (s *Store) Dir() string {
	return s.dir
}

// LockPath returns the path of the instance lock file.
func (s *Store) LockPath() string {
	return filepath.Join(s.dir, LockFileName)
}

// NewID returns the current Unix time in milliseconds as a decimal string.
// IDs handed out by one Store are strictly increasing, so two conversions
// started in the same millisecond still get distinct files.
func (s *Store) NewID() string {
	ms := s.now().UnixMilli()
	for {
		last := s.lastID.Load()
		next := ms
		if next <= last {
			next = last + 1
		}
		if s.lastID.CompareAndSwap(last, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

// ValidID reports whether id has the shape NewID produces.
func ValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Path returns the audio file path for id. Malformed IDs report ErrNotFound.
func (s *Store) Path(id string) (string, error) {
	if !ValidID(id) {
		return "", services.Wrap(services.ErrNotFound, "audiostore", "path", fmt.Sprintf("invalid id %q", id), nil)
	}
	return filepath.Join(s.dir, id+Extension), nil
}

// OutputTemplate returns the yt-dlp --output template that lands on Path(id).
func (s *Store) OutputTemplate(id string) string {
	return filepath.Join(s.dir, id+".%(ext)s")
}

// Stat describes the audio file for id.
func (s *Store) Stat(id string) (Entry, error) {
	path, err := s.Path(id)
	if err != nil {
		return Entry{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, services.Wrap(services.ErrNotFound, "audiostore", "stat", "file "+id+" not found", nil)
		}
		return Entry{}, fmt.Errorf("audiostore: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return Entry{}, services.Wrap(services.ErrNotFound, "audiostore", "stat", "file "+id+" is not a regular file", nil)
	}
	return entryFromInfo(s.dir, info), nil
}

// Open opens the audio file for id for reading.
func (s *Store) Open(id string) (*os.File, Entry, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, Entry{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Entry{}, services.Wrap(services.ErrNotFound, "audiostore", "open", "file "+id+" not found", nil)
		}
		return nil, Entry{}, fmt.Errorf("audiostore: open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, Entry{}, fmt.Errorf("audiostore: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		_ = file.Close()
		return nil, Entry{}, services.Wrap(services.ErrNotFound, "audiostore", "open", "file "+id+" is not a regular file", nil)
	}
	return file, entryFromInfo(s.dir, info), nil
}

// Remove deletes every file belonging to id, including partial downloads
// yt-dlp left with other extensions. A missing file is not an error.
func (s *Store) Remove(id string) error {
	if !ValidID(id) {
		return services.Wrap(services.ErrNotFound, "audiostore", "remove", fmt.Sprintf("invalid id %q", id), nil)
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, id+".*"))
	if err != nil {
		return fmt.Errorf("audiostore: glob %s: %w", id, err)
	}
	var errs []error
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the regular, non-hidden files in the store, oldest first.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("audiostore: list %s: %w", s.dir, err)
	}

	var out []Entry
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, entryFromInfo(s.dir, info))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ModTime.Before(out[j].ModTime)
	})
	return out, nil
}

func entryFromInfo(dir string, info fs.FileInfo) Entry {
	name := info.Name()
	id := strings.TrimSuffix(name, filepath.Ext(name))
	if !ValidID(id) {
		id = ""
	}
	return Entry{
		ID:      id,
		Name:    name,
		Path:    filepath.Join(dir, name),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}
