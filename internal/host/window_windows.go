//go:build windows

package host

import (
	"context"
	"sync"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

const (
	minWindowWidth  = 100
	minWindowHeight = 50
)

var (
	// callbacks are a limited resource; one is shared by all enumerations
	enumMu      sync.Mutex
	enumResult  []model.WindowInfo
	enumWindows = windows.NewCallback(enumWindowsProc)
)

func enumWindowsProc(hwnd windows.HWND, _ uintptr) uintptr {
	if !windows.IsWindowVisible(hwnd) {
		return 1
	}
	// owned windows are popups and tool windows
	if win.GetWindow(win.HWND(hwnd), win.GW_OWNER) != 0 {
		return 1
	}
	buf := make([]uint16, 512)
	n, _ := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if n == 0 {
		return 1
	}
	var rect win.RECT
	if !win.GetWindowRect(win.HWND(hwnd), &rect) {
		return 1
	}
	width, height := rect.Right-rect.Left, rect.Bottom-rect.Top
	if width < minWindowWidth || height < minWindowHeight {
		return 1
	}
	var pid uint32
	_, _ = windows.GetWindowThreadProcessId(hwnd, &pid)

	enumResult = append(enumResult, model.WindowInfo{
		Hwnd:   int64(hwnd),
		Title:  windows.UTF16ToString(buf[:n]),
		PID:    pid,
		X:      rect.Left,
		Y:      rect.Top,
		Width:  width,
		Height: height,
	})
	return 1
}

func listWindows(ctx context.Context) ([]model.WindowInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enumMu.Lock()
	defer enumMu.Unlock()
	enumResult = nil
	if err := windows.EnumWindows(enumWindows, nil); err != nil {
		return nil, errors.IPC("enumerate windows", err)
	}
	list := enumResult
	enumResult = nil
	return list, nil
}

func moveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error {
	hwnd := win.HWND(uintptr(w.Hwnd))
	if win.IsIconic(hwnd) {
		win.ShowWindow(hwnd, win.SW_RESTORE)
	}
	if !win.SetWindowPos(hwnd, 0, x, y, width, height, win.SWP_NOZORDER|win.SWP_NOACTIVATE) {
		return errors.IPC("move window", windows.GetLastError())
	}
	return nil
}
