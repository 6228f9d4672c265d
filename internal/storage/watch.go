package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/pkg/filemonitor"
)

const watchDebounce = 300 * time.Millisecond

// Watcher calls OnChange when the data file is modified by someone other
// than this process.
type Watcher struct {
	file     *JSONFile
	monitor  *filemonitor.FileMonitor
	onChange func()
}

func NewWatcher(file *JSONFile, onChange func()) (*Watcher, error) {
	group, err := filemonitor.NewFileGroup(
		"data",
		filepath.Dir(file.Path()),
		"^"+regexp.QuoteMeta(filepath.Base(file.Path()))+"$",
		watchDebounce,
	)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		file:     file,
		monitor:  filemonitor.NewFileMonitor(),
		onChange: onChange,
	}
	group.AddCallback(w.handle)
	if err := w.monitor.AddGroup(group); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Start() error {
	return w.monitor.Start()
}

func (w *Watcher) Stop() error {
	return w.monitor.Stop()
}

func (w *Watcher) handle(event fsnotify.Event) error {
	content, err := os.ReadFile(w.file.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if w.file.Known(content) {
		return nil
	}
	log.Info().Str("path", w.file.Path()).Str("op", event.Op.String()).Msg("data file changed externally")
	w.onChange()
	return nil
}
