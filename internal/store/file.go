package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

// FileStore keeps one JSON file per document under dir/<kind>/.
type FileStore struct {
	dir string

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
}

func NewFileStore(dir string) (*FileStore, error) {
	for _, kind := range Kinds {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", kind, err)
		}
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(kind Kind, key string) string {
	return filepath.Join(s.dir, string(kind), fileName(key))
}

// fileName escapes key for use as a file name. A leading dot is escaped too so
// that keys never collide with temp files or "." and "..".
func fileName(key string) string {
	name := url.PathEscape(key)
	if strings.HasPrefix(name, ".") {
		name = "%2E" + name[1:]
	}
	return name + fileExt
}

// Put writes data through a temp file and rename so readers never see a
// partial document.
func (s *FileStore) Put(ctx context.Context, kind Kind, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("store: put %s: empty key", kind)
	}

	target := s.path(kind, key)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", kind, key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: put %s/%s: %w", kind, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", kind, key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", kind, key, err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(kind, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", kind, key, err)
	}
	return data, nil
}

func (s *FileStore) Keys(ctx context.Context, kind Kind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", kind, err)
	}

	var keys []string
	for _, e := range entries {
		if key, ok := keyFromFile(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Delete(ctx context.Context, kind Kind, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(kind, key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", kind, key, err)
	}
	return nil
}

func keyFromFile(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

// Watch reports documents created, rewritten or removed in the store
// directories, including by other processes.
func (s *FileStore) Watch(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: watch: %w", err)
	}
	for _, kind := range Kinds {
		if err := w.Add(filepath.Join(s.dir, string(kind))); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("store: watch %s: %w", kind, err)
		}
	}

	s.mu.Lock()
	s.watchers = append(s.watchers, w)
	s.mu.Unlock()

	out := make(chan Change, 16)
	go s.watch(ctx, w, out)
	return out, nil
}

func (s *FileStore) watch(ctx context.Context, w *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer w.Close()

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			key, ok := keyFromFile(filepath.Base(event.Name))
			if !ok {
				continue
			}
			kind := Kind(filepath.Base(filepath.Dir(event.Name)))
			deleted := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
			if _, err := os.Stat(event.Name); err == nil {
				deleted = false
			}

			id := string(kind) + "/" + key
			now := time.Now()
			if t, ok := last[id]; ok && now.Sub(t) < 100*time.Millisecond && !deleted {
				continue
			}
			last[id] = now

			select {
			case out <- Change{Kind: kind, Key: key, Deleted: deleted}:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("[STORE] Watch error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

// Close stops every watcher started by Watch.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, w := range s.watchers {
		errs = append(errs, w.Close())
	}
	s.watchers = nil
	return errors.Join(errs...)
}
