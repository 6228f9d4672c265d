//go:build !windows && !linux

package host

import (
	"context"
	"runtime"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

func listWindows(ctx context.Context) ([]model.WindowInfo, error) {
	return nil, errors.PlatformUnsupported("window listing", runtime.GOOS)
}

func moveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error {
	return errors.PlatformUnsupported("window placement", runtime.GOOS)
}
