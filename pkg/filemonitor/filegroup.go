package filemonitor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FileChangeCallback defines the callback function signature for file change events
type FileChangeCallback func(event fsnotify.Event) error

// FileGroup is a set of files in one directory sharing callbacks. Events are
// debounced: a burst of writes produces a single callback with the last event.
type FileGroup struct {
	ID        string
	RootDir   string
	Pattern   *regexp.Regexp
	Debounce  time.Duration
	callbacks []FileChangeCallback
	mutex     sync.Mutex
	timer     *time.Timer
	pending   fsnotify.Event
}

// NewFileGroup creates a new file group. pattern is matched against the base
// name of files directly inside rootDir.
func NewFileGroup(id, rootDir, pattern string, debounce time.Duration) (*FileGroup, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}
	return &FileGroup{
		ID:       id,
		RootDir:  filepath.Clean(rootDir),
		Pattern:  re,
		Debounce: debounce,
	}, nil
}

// AddCallback adds a callback function to the file group
func (fg *FileGroup) AddCallback(callback FileChangeCallback) {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()
	fg.callbacks = append(fg.callbacks, callback)
}

// Match checks if a file path belongs to this group
func (fg *FileGroup) Match(path string) bool {
	path = filepath.Clean(path)
	relPath, err := filepath.Rel(fg.RootDir, path)
	if err != nil || strings.HasPrefix(relPath, "..") || strings.ContainsRune(relPath, filepath.Separator) {
		return false
	}
	return fg.Pattern.MatchString(filepath.Base(path))
}

// HandleEvent schedules the callbacks if the event concerns this group
func (fg *FileGroup) HandleEvent(event fsnotify.Event) {
	if !fg.Match(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	fg.mutex.Lock()
	defer fg.mutex.Unlock()
	fg.pending = event
	if fg.Debounce <= 0 {
		go fg.fire()
		return
	}
	if fg.timer != nil {
		fg.timer.Stop()
	}
	fg.timer = time.AfterFunc(fg.Debounce, fg.fire)
}

func (fg *FileGroup) fire() {
	fg.mutex.Lock()
	event := fg.pending
	callbacks := make([]FileChangeCallback, len(fg.callbacks))
	copy(callbacks, fg.callbacks)
	fg.timer = nil
	fg.mutex.Unlock()

	for _, cb := range callbacks {
		if err := cb(event); err != nil {
			log.Error().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Err(err).
				Msg("file change callback failed")
		}
	}
}

func (fg *FileGroup) stop() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()
	if fg.timer != nil {
		fg.timer.Stop()
		fg.timer = nil
	}
}
