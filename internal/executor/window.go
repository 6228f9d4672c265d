package executor

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/host"
	"github.com/sjzar/advshortcut/internal/model"
)

// Size given to a freshly launched window for the fields the config leaves
// unset.
const (
	launchWidth  int32 = 800
	launchHeight int32 = 600
)

// browserProcesses are preferred when looking for the window an URL opened in.
var browserProcesses = []string{"chrome", "msedge", "firefox", "brave", "opera", "chromium"}

func (e *Executor) launch(ctx context.Context, a model.Launch) (string, error) {
	exe := filepath.Base(a.Path)
	cfg := a.WindowConfig

	if !cfg.IsEmpty() {
		if running := e.windowsOf(ctx, exe); len(running) > 0 {
			for _, w := range running {
				e.place(ctx, w, *cfg)
			}
			return fmt.Sprintf("Adjusted window for already running: %s", exe), nil
		}
	}

	pid, err := e.host.StartProcess(ctx, a.Path, a.Args)
	if err != nil {
		return "", err
	}

	if !cfg.IsEmpty() {
		if err := sleep(ctx, e.LaunchSettle); err != nil {
			return "", err
		}
		for i := 0; i < e.PollAttempts; i++ {
			if w, ok := e.windowOfPID(ctx, pid); ok {
				x, y, width, height := LaunchPlacement(*cfg)
				if err := e.host.MoveWindow(ctx, w, x, y, width, height); err != nil {
					log.Debug().Err(err).Int("pid", pid).Msg("place launched window failed")
				}
				break
			}
			if err := sleep(ctx, e.PollInterval); err != nil {
				return "", err
			}
		}
	}
	return fmt.Sprintf("Launched: %s", a.Path), nil
}

func (e *Executor) openFolder(ctx context.Context, a model.OpenFolder) (string, error) {
	before := e.snapshot(ctx, a.WindowConfig)
	if err := e.host.OpenFolder(ctx, a.Path); err != nil {
		return "", err
	}
	if !a.WindowConfig.IsEmpty() {
		if err := sleep(ctx, e.FolderSettle); err != nil {
			return "", err
		}
		after := e.windows(ctx)
		w, ok := firstNew(after, before, nil)
		if !ok {
			w, ok = titled(after, filepath.Base(filepath.Clean(a.Path)))
		}
		if ok {
			e.place(ctx, w, *a.WindowConfig)
		}
	}
	return fmt.Sprintf("Opened folder: %s", a.Path), nil
}

func (e *Executor) openURL(ctx context.Context, a model.OpenURL) (string, error) {
	if err := ValidateURL(a.URL); err != nil {
		return "", err
	}
	before := e.snapshot(ctx, a.WindowConfig)
	if err := e.host.OpenURL(ctx, a.URL); err != nil {
		return "", err
	}
	if !a.WindowConfig.IsEmpty() {
		if err := sleep(ctx, e.URLSettle); err != nil {
			return "", err
		}
		after := e.windows(ctx)
		w, ok := firstNew(after, before, isBrowser)
		if !ok {
			w, ok = firstNew(after, before, nil)
		}
		if ok {
			e.place(ctx, w, *a.WindowConfig)
		}
	}
	return fmt.Sprintf("Opened URL: %s", a.URL), nil
}

// ValidateURL accepts absolute URLs. http and https need a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return errors.InvalidParam("open_url.url", err.Error())
	}
	if u.Scheme == "" {
		return errors.InvalidParam("open_url.url", "missing scheme")
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return errors.InvalidParam("open_url.url", "missing host")
	}
	return nil
}

// LaunchPlacement is the rectangle of a new window: unset fields default to
// the top left corner at 800x600.
func LaunchPlacement(cfg model.WindowConfig) (x, y, width, height int32) {
	return host.Placement(model.WindowInfo{Width: launchWidth, Height: launchHeight}, cfg)
}

// windows lists the windows; failures count as no windows since placement is
// best effort.
func (e *Executor) windows(ctx context.Context) []model.WindowInfo {
	list, err := e.host.WindowList(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("list windows failed")
		return nil
	}
	return list
}

func (e *Executor) snapshot(ctx context.Context, cfg *model.WindowConfig) map[int64]bool {
	seen := map[int64]bool{}
	if cfg.IsEmpty() {
		return seen
	}
	for _, w := range e.windows(ctx) {
		seen[w.Hwnd] = true
	}
	return seen
}

func (e *Executor) windowsOf(ctx context.Context, processName string) []model.WindowInfo {
	var out []model.WindowInfo
	for _, w := range e.windows(ctx) {
		if host.MatchProcessName(w.ProcessName, processName) {
			out = append(out, w)
		}
	}
	return out
}

func (e *Executor) windowOfPID(ctx context.Context, pid int) (model.WindowInfo, bool) {
	for _, w := range e.windows(ctx) {
		if int(w.PID) == pid {
			return w, true
		}
	}
	return model.WindowInfo{}, false
}

func (e *Executor) place(ctx context.Context, w model.WindowInfo, cfg model.WindowConfig) {
	x, y, width, height := host.Placement(w, cfg)
	if err := e.host.MoveWindow(ctx, w, x, y, width, height); err != nil {
		log.Debug().Err(err).Str("title", w.Title).Msg("place window failed")
	}
}

func firstNew(after []model.WindowInfo, before map[int64]bool, keep func(model.WindowInfo) bool) (model.WindowInfo, bool) {
	for _, w := range after {
		if before[w.Hwnd] || (keep != nil && !keep(w)) {
			continue
		}
		return w, true
	}
	return model.WindowInfo{}, false
}

func titled(list []model.WindowInfo, part string) (model.WindowInfo, bool) {
	if part == "" || part == "." || part == string(filepath.Separator) {
		return model.WindowInfo{}, false
	}
	for _, w := range list {
		if strings.Contains(w.Title, part) {
			return w, true
		}
	}
	return model.WindowInfo{}, false
}

func isBrowser(w model.WindowInfo) bool {
	name := strings.ToLower(strings.TrimSuffix(strings.ToLower(w.ProcessName), ".exe"))
	for _, b := range browserProcesses {
		if strings.HasPrefix(name, b) {
			return true
		}
	}
	return false
}
