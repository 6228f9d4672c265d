//go:build linux

package host

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

const wmctrl = "wmctrl"

func listWindows(ctx context.Context) ([]model.WindowInfo, error) {
	if _, err := exec.LookPath(wmctrl); err != nil {
		return nil, errors.PlatformUnsupported("window listing without wmctrl", "linux")
	}
	out, err := exec.CommandContext(ctx, wmctrl, "-l", "-G", "-p").Output()
	if err != nil {
		return nil, errors.IPC("list windows", err)
	}
	return ParseWmctrl(string(out)), nil
}

func moveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error {
	if _, err := exec.LookPath(wmctrl); err != nil {
		return errors.PlatformUnsupported("window placement without wmctrl", "linux")
	}
	id := fmt.Sprintf("0x%08x", w.Hwnd)
	geometry := fmt.Sprintf("0,%d,%d,%d,%d", x, y, width, height)
	if err := exec.CommandContext(ctx, wmctrl, "-i", "-r", id, "-e", geometry).Run(); err != nil {
		return errors.IPC("move window "+id, err)
	}
	return nil
}
