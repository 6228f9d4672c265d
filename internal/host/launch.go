package host

import (
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
)

// StartProcess starts path detached from this process and returns its pid.
// The child is reaped in the background.
func (h *Host) StartProcess(ctx context.Context, path string, args []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return 0, errors.IPC("launch "+path, err)
	}
	pid := cmd.Process.Pid
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Int("pid", pid).Str("path", path).Msg("launched process exited")
		}
	}()
	log.Debug().Int("pid", pid).Str("path", path).Strs("args", args).Msg("process started")
	return pid, nil
}

// OpenerCommand returns the command that opens target with the desktop's
// default handler on goos.
func OpenerCommand(goos, target string, folder bool) (string, []string) {
	switch goos {
	case "windows":
		if folder {
			return "explorer", []string{target}
		}
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// OpenFolder shows path in the file manager.
func (h *Host) OpenFolder(ctx context.Context, path string) error {
	return h.open(ctx, path, true)
}

// OpenURL opens url in the default browser. On Windows a new browser window
// is requested when the default browser can be found.
func (h *Host) OpenURL(ctx context.Context, url string) error {
	if h.GOOS == "windows" {
		if ok := openInNewBrowserWindow(url); ok {
			return nil
		}
	}
	return h.open(ctx, url, false)
}

func (h *Host) open(ctx context.Context, target string, folder bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := OpenerCommand(h.GOOS, target, folder)
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return errors.IPC("open "+target, err)
	}
	go func() {
		// explorer.exe exits non-zero even on success
		_ = cmd.Wait()
	}()
	return nil
}
