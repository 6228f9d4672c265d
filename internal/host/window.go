package host

import (
	"context"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// WindowList returns the visible top-level windows.
func (h *Host) WindowList(ctx context.Context) ([]model.WindowInfo, error) {
	list, err := listWindows(ctx)
	if err != nil {
		return nil, err
	}
	names := map[uint32]string{}
	for i := range list {
		if list[i].ProcessName != "" || list[i].PID == 0 {
			continue
		}
		name, ok := names[list[i].PID]
		if !ok {
			if p, err := process.NewProcessWithContext(ctx, int32(list[i].PID)); err == nil {
				name, _ = p.NameWithContext(ctx)
			}
			names[list[i].PID] = name
		}
		list[i].ProcessName = name
	}
	return list, nil
}

// MoveWindow sets the rectangle of w.
func (h *Host) MoveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error {
	return moveWindow(ctx, w, x, y, width, height)
}

// ApplyWindowConfig moves w, keeping the current value of every field cfg
// leaves unset.
func (h *Host) ApplyWindowConfig(ctx context.Context, w model.WindowInfo, cfg model.WindowConfig) error {
	x, y, width, height := Placement(w, cfg)
	return h.MoveWindow(ctx, w, x, y, width, height)
}

// WindowPosition returns the rectangle of the first window of processName.
func (h *Host) WindowPosition(ctx context.Context, processName string) (model.WindowConfig, error) {
	list, err := h.WindowList(ctx)
	if err != nil {
		return model.WindowConfig{}, err
	}
	for _, w := range list {
		if MatchProcessName(w.ProcessName, processName) {
			x, y, width, height := w.X, w.Y, w.Width, w.Height
			return model.WindowConfig{X: &x, Y: &y, Width: &width, Height: &height}, nil
		}
	}
	return model.WindowConfig{}, errors.NotFound("window of process "+processName, nil)
}

// Placement merges cfg into the current rectangle of w.
func Placement(w model.WindowInfo, cfg model.WindowConfig) (x, y, width, height int32) {
	x, y, width, height = w.X, w.Y, w.Width, w.Height
	if cfg.X != nil {
		x = *cfg.X
	}
	if cfg.Y != nil {
		y = *cfg.Y
	}
	if cfg.Width != nil {
		width = *cfg.Width
	}
	if cfg.Height != nil {
		height = *cfg.Height
	}
	return
}

// ParseWmctrl parses `wmctrl -l -G -p` output:
// id desktop pid x y width height host title...
func ParseWmctrl(out string) []model.WindowInfo {
	var list []model.WindowInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 8 {
			continue
		}
		id, err := strconv.ParseInt(fields[0], 0, 64)
		if err != nil {
			continue
		}
		nums := make([]int64, 5)
		ok := true
		for i := range nums {
			if nums[i], err = strconv.ParseInt(fields[i+2], 10, 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		list = append(list, model.WindowInfo{
			Hwnd:   id,
			Title:  strings.Join(fields[8:], " "),
			PID:    uint32(nums[0]),
			X:      int32(nums[1]),
			Y:      int32(nums[2]),
			Width:  int32(nums[3]),
			Height: int32(nums[4]),
		})
	}
	return list
}
