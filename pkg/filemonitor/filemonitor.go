package filemonitor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// FileMonitor watches the root directories of its file groups
type FileMonitor struct {
	groups     map[string]*FileGroup
	watcher    *fsnotify.Watcher
	watchDirs  map[string]bool
	mutex      sync.RWMutex
	stopCh     chan struct{}
	wg         sync.WaitGroup
	isRunning  bool
	stateMutex sync.RWMutex
}

// NewFileMonitor creates a new file monitor
func NewFileMonitor() *FileMonitor {
	return &FileMonitor{
		groups:    make(map[string]*FileGroup),
		watchDirs: make(map[string]bool),
	}
}

// AddGroup adds a file group, watching its directory right away when the
// monitor is running
func (fm *FileMonitor) AddGroup(group *FileGroup) error {
	if group == nil {
		return errors.New("group cannot be nil")
	}

	fm.mutex.Lock()
	if _, exists := fm.groups[group.ID]; exists {
		fm.mutex.Unlock()
		return fmt.Errorf("group with ID '%s' already exists", group.ID)
	}
	fm.groups[group.ID] = group
	fm.mutex.Unlock()

	if fm.IsRunning() {
		if err := fm.addWatchDir(group.RootDir); err != nil {
			fm.mutex.Lock()
			delete(fm.groups, group.ID)
			fm.mutex.Unlock()
			return err
		}
	}
	return nil
}

// RemoveGroup removes a file group
func (fm *FileMonitor) RemoveGroup(id string) error {
	fm.mutex.Lock()
	defer fm.mutex.Unlock()

	group, exists := fm.groups[id]
	if !exists {
		return fmt.Errorf("group with ID '%s' does not exist", id)
	}
	group.stop()
	delete(fm.groups, id)
	return nil
}

// Start starts the file monitor
func (fm *FileMonitor) Start() error {
	fm.stateMutex.Lock()
	if fm.isRunning {
		fm.stateMutex.Unlock()
		return errors.New("file monitor is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fm.stateMutex.Unlock()
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	fm.watcher = watcher
	fm.stopCh = make(chan struct{})

	fm.mutex.Lock()
	fm.watchDirs = make(map[string]bool)
	dirs := make([]string, 0, len(fm.groups))
	for _, group := range fm.groups {
		dirs = append(dirs, group.RootDir)
	}
	fm.mutex.Unlock()

	fm.isRunning = true
	fm.stateMutex.Unlock()

	for _, dir := range dirs {
		if err := fm.addWatchDir(dir); err != nil {
			_ = fm.Stop()
			return err
		}
	}

	fm.wg.Add(1)
	go fm.watchLoop(watcher, fm.stopCh)
	return nil
}

// Stop stops the file monitor
func (fm *FileMonitor) Stop() error {
	fm.stateMutex.Lock()
	if !fm.isRunning {
		fm.stateMutex.Unlock()
		return errors.New("file monitor is not running")
	}
	watcher := fm.watcher
	close(fm.stopCh)
	fm.isRunning = false
	fm.watcher = nil
	fm.stateMutex.Unlock()

	fm.wg.Wait()

	fm.mutex.RLock()
	for _, group := range fm.groups {
		group.stop()
	}
	fm.mutex.RUnlock()

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			return fmt.Errorf("failed to close watcher: %w", err)
		}
	}
	return nil
}

// IsRunning returns whether the file monitor is running
func (fm *FileMonitor) IsRunning() bool {
	fm.stateMutex.RLock()
	defer fm.stateMutex.RUnlock()
	return fm.isRunning
}

func (fm *FileMonitor) addWatchDir(dirPath string) error {
	fm.stateMutex.RLock()
	watcher := fm.watcher
	fm.stateMutex.RUnlock()
	if watcher == nil {
		return errors.New("file monitor is not running")
	}

	fm.mutex.Lock()
	defer fm.mutex.Unlock()
	if fm.watchDirs[dirPath] {
		return nil
	}
	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch directory '%s': %w", dirPath, err)
	}
	fm.watchDirs[dirPath] = true
	log.Debug().Str("dir", dirPath).Msg("watching directory")
	return nil
}

func (fm *FileMonitor) watchLoop(watcher *fsnotify.Watcher, stopCh chan struct{}) {
	defer fm.wg.Done()

	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			fm.mutex.RLock()
			groups := make([]*FileGroup, 0, len(fm.groups))
			for _, group := range fm.groups {
				groups = append(groups, group)
			}
			fm.mutex.RUnlock()
			for _, group := range groups {
				group.HandleEvent(event)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}
