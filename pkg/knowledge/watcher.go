package knowledge

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// SeedWatcher watches the seed directory and triggers a reimport when
// seed files change.
type SeedWatcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	onChange func()
	debounce time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewSeedWatcher creates a watcher and starts its event loop. onChange
// fires after a debounce window so bulk edits coalesce into one reimport.
func NewSeedWatcher(logger zerolog.Logger, onChange func()) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &SeedWatcher{
		watcher:  watcher,
		logger:   logger.With().Str("component", "seed_watcher").Logger(),
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	go sw.run()

	return sw, nil
}

// Watch starts watching a seed directory.
func (sw *SeedWatcher) Watch(dir string) error {
	return sw.watcher.Add(dir)
}

// Stop stops the watcher.
func (sw *SeedWatcher) Stop() error {
	close(sw.stopCh)
	return sw.watcher.Close()
}

func (sw *SeedWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}

			if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				sw.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Seed file change detected")
				sw.scheduleChange()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn().Err(err).Msg("Seed watcher error")

		case <-sw.stopCh:
			return
		}
	}
}

func (sw *SeedWatcher) scheduleChange() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.onChange)
}
