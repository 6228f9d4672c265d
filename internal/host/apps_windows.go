//go:build windows

package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows/registry"

	"github.com/sjzar/advshortcut/internal/model"
)

type uninstallRoot struct {
	key  registry.Key
	path string
}

var uninstallRoots = []uninstallRoot{
	{registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.LOCAL_MACHINE, `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`},
	{registry.CURRENT_USER, `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`},
}

// registryApps reads DisplayName, DisplayIcon and InstallLocation of the
// installed programs.
func registryApps(ctx context.Context) []model.InstalledApp {
	var apps []model.InstalledApp
	for _, root := range uninstallRoots {
		k, err := registry.OpenKey(root.key, root.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		names, err := k.ReadSubKeyNames(-1)
		if err != nil {
			k.Close()
			continue
		}
		for _, name := range names {
			if ctx.Err() != nil {
				break
			}
			if app, ok := readUninstallEntry(k, name); ok {
				apps = append(apps, app)
			}
		}
		k.Close()
	}
	return apps
}

func readUninstallEntry(parent registry.Key, name string) (model.InstalledApp, bool) {
	sk, err := registry.OpenKey(parent, name, registry.QUERY_VALUE)
	if err != nil {
		return model.InstalledApp{}, false
	}
	defer sk.Close()

	display, _, err := sk.GetStringValue("DisplayName")
	if err != nil || SkipUninstallEntry(display) {
		return model.InstalledApp{}, false
	}
	icon, _, _ := sk.GetStringValue("DisplayIcon")
	location, _, _ := sk.GetStringValue("InstallLocation")

	path := ""
	if exe, _ := SplitIconLocation(icon); strings.EqualFold(filepath.Ext(exe), ".exe") {
		if _, err := os.Stat(exe); err == nil {
			path = exe
		}
	}
	if path == "" && location != "" {
		path = findExeInDir(location)
	}
	if path == "" {
		return model.InstalledApp{}, false
	}
	return model.InstalledApp{Name: display, Path: path, Icon: icon}, true
}

func findExeInDir(dir string) string {
	entries, err := os.ReadDir(strings.TrimRight(dir, `\"`))
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name())
		if e.IsDir() || filepath.Ext(name) != ".exe" {
			continue
		}
		if strings.Contains(name, "unins") || strings.Contains(name, "setup") || strings.Contains(name, "update") {
			continue
		}
		return filepath.Join(dir, e.Name())
	}
	return ""
}
