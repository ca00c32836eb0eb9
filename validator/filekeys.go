package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/gatehouse/go-auth-middleware/core"
)

// FileKeyProvider is a KeyProvider that loads a JWK set from a file on disk
// and reloads it when the file changes. Reloads swap the whole key set
// atomically; when the changed file cannot be parsed the previous key set
// stays in effect.
type FileKeyProvider struct {
	path      string
	logger    core.Logger
	keys      atomic.Pointer[keyMaterial]
	watcher   *fsnotify.Watcher
	closeOnce sync.Once
}

// FileKeyOption is how options for the FileKeyProvider are set up.
type FileKeyOption func(*FileKeyProvider)

// WithWatchLogger sets up a logger for reload activity. Without it reloads
// happen silently.
func WithWatchLogger(logger core.Logger) FileKeyOption {
	return func(p *FileKeyProvider) {
		p.logger = logger
	}
}

// NewFileKeyProvider sets up a FileKeyProvider for the JWK set file at path.
// The initial load must succeed; afterwards the file is watched and
// reloaded on change until Close is called.
func NewFileKeyProvider(path string, opts ...FileKeyOption) (*FileKeyProvider, error) {
	p := &FileKeyProvider{path: path}

	for _, opt := range opts {
		opt(p)
	}

	keys, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	p.keys.Store(&keyMaterial{key: keys})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not set up file watcher: %w", err)
	}

	// Watch the directory rather than the file itself so rewrites that
	// replace the file (write to temp, rename over) are still observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("could not watch %q: %w", filepath.Dir(path), err)
	}

	p.watcher = watcher
	go p.watch()

	return p, nil
}

// Key implements KeyProvider.
func (p *FileKeyProvider) Key(_ context.Context) (any, error) {
	return p.keys.Load().key, nil
}

// Close stops watching the key file. The most recently loaded key set
// remains available to Key.
func (p *FileKeyProvider) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.watcher.Close()
	})
	return err
}

func (p *FileKeyProvider) watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.reload()
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			if p.logger != nil {
				p.logger.Warn("key file watcher error", "path", p.path, "error", err)
			}
		}
	}
}

func (p *FileKeyProvider) reload() {
	keys, err := readKeyFile(p.path)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("keeping previous key set, reload failed", "path", p.path, "error", err)
		}
		return
	}

	p.keys.Store(&keyMaterial{key: keys})

	if p.logger != nil {
		p.logger.Info("reloaded key set", "path", p.path, "keys", keys.Len())
	}
}

func readKeyFile(path string) (jwk.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read key file %q: %w", path, err)
	}

	keys, err := jwk.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse key file %q: %w", path, err)
	}
	if keys.Len() == 0 {
		return nil, fmt.Errorf("key file %q contains no keys", path)
	}

	return keys, nil
}
