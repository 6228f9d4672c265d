package host

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/util"
)

// DesktopPath returns the user's desktop directory.
func (h *Host) DesktopPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.IPC("resolve home directory", err)
	}
	if h.GOOS == "linux" {
		if dir := xdgUserDir(home, "XDG_DESKTOP_DIR"); dir != "" {
			return dir, nil
		}
	}
	if h.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			home = profile
		}
	}
	return filepath.Join(home, "Desktop"), nil
}

// xdgUserDir reads key from ~/.config/user-dirs.dirs.
func xdgUserDir(home, key string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = filepath.Join(home, ".config")
	}
	f, err := os.Open(filepath.Join(config, "user-dirs.dirs"))
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok || k != key {
			continue
		}
		v = strings.Trim(v, `"`)
		return strings.Replace(v, "$HOME", home, 1)
	}
	return ""
}

// CreateDesktopShortcut writes a launcher on the desktop that runs the
// shortcut and exits. It returns the file written.
func (h *Host) CreateDesktopShortcut(ctx context.Context, req model.DesktopShortcutRequest) (string, error) {
	if strings.TrimSpace(req.ShortcutID) == "" {
		return "", errors.RequiredParam("shortcutId")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := h.DesktopPath()
	if err != nil {
		return "", err
	}
	name, content, mode := LauncherFile(h.GOOS, h.Executable, req)
	path := filepath.Join(dir, name)
	if err := util.WriteFileAtomic(path, content, mode); err != nil {
		return "", errors.FileWriteFailed(path, err)
	}
	log.Info().Str("path", path).Str("shortcut", req.ShortcutID).Msg("desktop shortcut created")
	return path, nil
}

// LauncherFile renders the platform launcher for req.
func LauncherFile(goos, exe string, req model.DesktopShortcutRequest) (string, []byte, os.FileMode) {
	name := SafeFileName(req.Name)
	if name == "" {
		name = SafeFileName(req.ShortcutID)
	}
	args := fmt.Sprintf("--execute-shortcut %s --close-after-execution", req.ShortcutID)

	switch goos {
	case "windows":
		body := fmt.Sprintf("@echo off\r\nstart \"\" \"%s\" %s\r\n", exe, args)
		return name + ".bat", []byte(body), 0644
	case "darwin":
		body := fmt.Sprintf("#!/bin/sh\nexec \"%s\" %s\n", exe, args)
		return name + ".command", []byte(body), 0755
	default:
		icon := req.Icon
		if icon == "" || !filepath.IsAbs(icon) {
			icon = "utilities-terminal"
		}
		var b strings.Builder
		b.WriteString("[Desktop Entry]\n")
		b.WriteString("Type=Application\n")
		fmt.Fprintf(&b, "Name=%s\n", req.Name)
		fmt.Fprintf(&b, "Comment=Advanced Shortcut - %s\n", req.Name)
		fmt.Fprintf(&b, "Exec=\"%s\" %s\n", exe, args)
		fmt.Fprintf(&b, "Icon=%s\n", icon)
		b.WriteString("Terminal=false\n")
		return name + ".desktop", []byte(b.String()), 0755
	}
}

// SafeFileName drops characters not allowed in file names on any platform.
func SafeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return -1
		}
		return r
	}, name)
	return strings.Trim(strings.TrimSpace(name), ".")
}
