package plugin

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/brokkr-dev/plugboard/internal/logger"
)

// fileClassManifest is the YAML shape one manifest file declares: a list
// of ClassInfo entries a real archive scanner would have derived from
// compiled type metadata.
type fileClassManifest struct {
	Classes []ClassInfo `yaml:"classes"`
}

// WatchingMetadataProvider is a MetadataProvider backed by a directory of
// YAML manifest files, reloaded automatically whenever fsnotify reports a
// write, create, remove, or rename under dir. It gives a host the
// filesystem equivalent of a classpath that can change underneath a
// running process, without requiring a restart for PluginSearcher to see
// newly declared types.
type WatchingMetadataProvider struct {
	dir     string
	log     *logger.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu     sync.RWMutex
	byName map[string]ClassInfo
}

// NewWatchingMetadataProvider loads every *.yaml/*.yml manifest under dir
// and starts watching it for changes. Callers must call Close when done to
// release the fsnotify watcher and stop the background goroutine.
func NewWatchingMetadataProvider(dir string, log *logger.Logger) (*WatchingMetadataProvider, error) {
	p := &WatchingMetadataProvider{
		dir:    dir,
		log:    log,
		byName: make(map[string]ClassInfo),
		done:   make(chan struct{}),
	}
	if err := p.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	p.watcher = watcher

	go p.watchLoop()
	return p, nil
}

func (p *WatchingMetadataProvider) watchLoop() {
	sub := p.log.Sub("metadata-watcher")
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				sub.Error(err, "failed to reload plugin manifests")
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			sub.Error(err, "fsnotify watch error")
		case <-p.done:
			return
		}
	}
}

func (p *WatchingMetadataProvider) reload() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return err
	}

	byName := make(map[string]ClassInfo)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(p.dir, entry.Name()))
		if err != nil {
			return err
		}

		var manifest fileClassManifest
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return err
		}
		for _, c := range manifest.Classes {
			byName[c.Name] = c
		}
	}

	p.mu.Lock()
	p.byName = byName
	p.mu.Unlock()
	return nil
}

// Classes returns every currently known ClassInfo.
func (p *WatchingMetadataProvider) Classes(ctx context.Context) []ClassInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ClassInfo, 0, len(p.byName))
	for _, c := range p.byName {
		out = append(out, c)
	}
	return out
}

// ClassByName looks up one ClassInfo by name.
func (p *WatchingMetadataProvider) ClassByName(ctx context.Context, name string) (ClassInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.byName[name]
	return c, ok
}

// Close stops the background watch goroutine and releases the fsnotify
// watcher.
func (p *WatchingMetadataProvider) Close() error {
	close(p.done)
	return p.watcher.Close()
}
