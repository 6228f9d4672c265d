package host

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// ResolveShortcutLink returns the target of a shortcut file.
func (h *Host) ResolveShortcutLink(ctx context.Context, path string) (model.ResolvedLink, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".lnk" {
		if h.GOOS != "windows" {
			return model.ResolvedLink{}, errors.PlatformUnsupported("resolving .lnk files", h.GOOS)
		}
		return resolveLnk(ctx, path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ResolvedLink{}, errors.FileNotFound(path)
		}
		return model.ResolvedLink{}, errors.FileReadFailed(path, err)
	}
	return ParseLinkFile(ext, b)
}

// ParseLinkFile resolves the content of a .desktop, .url or .webloc file.
func ParseLinkFile(ext string, b []byte) (model.ResolvedLink, error) {
	var link model.ResolvedLink
	switch ext {
	case ".desktop":
		entry, err := ParseDesktopEntry(bytes.NewReader(b))
		if err != nil {
			return link, errors.Validation("invalid desktop entry", err)
		}
		if entry.Type == "Link" {
			link.Path = entry.URL
		} else {
			link.Path, link.Args = SplitExec(entry.Exec)
		}
	case ".url":
		link.Path = internetShortcutURL(b)
	case ".webloc":
		var v struct {
			URL string `plist:"URL"`
		}
		if _, err := plist.Unmarshal(b, &v); err != nil {
			return link, errors.Validation("invalid webloc file", err)
		}
		link.Path = v.URL
	default:
		return link, errors.Unsupported(fmt.Sprintf("unsupported shortcut file type %q", ext))
	}
	if link.Path == "" {
		return link, errors.Validation("could not resolve shortcut target", nil)
	}
	if link.Args == nil {
		link.Args = []string{}
	}
	return link, nil
}

func internetShortcutURL(b []byte) string {
	in := false
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "[") {
			in = strings.EqualFold(line, "[InternetShortcut]")
			continue
		}
		if key, value, ok := strings.Cut(line, "="); in && ok && strings.EqualFold(key, "URL") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// resolveLnk asks the Windows shell for the link target.
func resolveLnk(ctx context.Context, path string) (model.ResolvedLink, error) {
	script := fmt.Sprintf(`$s = (New-Object -ComObject WScript.Shell).CreateShortcut('%s'); $s.TargetPath; $s.Arguments`,
		strings.ReplaceAll(path, "'", "''"))
	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script).Output()
	if err != nil {
		return model.ResolvedLink{}, errors.IPC("resolve "+path, err)
	}
	lines := strings.SplitN(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n", 2)
	link := model.ResolvedLink{Path: strings.TrimSpace(lines[0]), Args: []string{}}
	if link.Path == "" {
		return link, errors.Validation("could not resolve shortcut target", nil)
	}
	if len(lines) > 1 {
		if args := strings.TrimSpace(lines[1]); args != "" {
			_, link.Args = SplitExec("x " + args)
		}
	}
	return link, nil
}
