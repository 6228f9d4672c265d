package host

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"howett.net/plist"

	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/pkg/util"
)

// InstalledApps lists launchable applications: .desktop entries on Linux,
// app bundles on macOS, the uninstall registry and Start Menu on Windows.
// Unreadable locations are skipped.
func (h *Host) InstalledApps(ctx context.Context) ([]model.InstalledApp, error) {
	var apps []model.InstalledApp
	switch h.GOOS {
	case "windows":
		apps = append(apps, registryApps(ctx)...)
		for _, dir := range startMenuDirs() {
			apps = append(apps, StartMenuApps(dir)...)
		}
	case "darwin":
		for _, dir := range bundleDirs() {
			apps = append(apps, BundleApps(dir)...)
		}
	default:
		for _, dir := range xdgApplicationDirs() {
			apps = append(apps, DesktopApps(dir)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return DedupApps(apps), nil
}

// DedupApps sorts by lowercase name and drops repeated names.
func DedupApps(apps []model.InstalledApp) []model.InstalledApp {
	sort.SliceStable(apps, func(i, j int) bool {
		return strings.ToLower(apps[i].Name) < strings.ToLower(apps[j].Name)
	})
	out := apps[:0]
	seen := map[string]bool{}
	for _, a := range apps {
		key := strings.ToLower(a.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func xdgApplicationDirs() []string {
	home, _ := os.UserHomeDir()
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}
	dirs := []string{filepath.Join(dataHome, "applications")}

	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(dataDirs, ":") {
		if d != "" {
			dirs = append(dirs, filepath.Join(d, "applications"))
		}
	}
	return append(dirs,
		"/var/lib/flatpak/exports/share/applications",
		filepath.Join(home, ".local", "share", "flatpak", "exports", "share", "applications"),
	)
}

// DesktopApps reads the visible application entries under dir.
func DesktopApps(dir string) []model.InstalledApp {
	files, err := util.FindFilesWithPatterns(dir, `\.desktop$`, true)
	if err != nil {
		return nil
	}
	var apps []model.InstalledApp
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		entry, err := ParseDesktopEntry(f)
		f.Close()
		if err != nil || entry.NoDisplay || entry.Hidden || entry.Name == "" {
			continue
		}
		if entry.Type != "" && entry.Type != "Application" {
			continue
		}
		program, _ := SplitExec(entry.Exec)
		if program == "" {
			continue
		}
		apps = append(apps, model.InstalledApp{Name: entry.Name, Path: program, Icon: entry.Icon})
	}
	return apps
}

func bundleDirs() []string {
	home, _ := os.UserHomeDir()
	return []string{"/Applications", "/System/Applications", filepath.Join(home, "Applications")}
}

type bundleInfo struct {
	CFBundleName        string `plist:"CFBundleName"`
	CFBundleDisplayName string `plist:"CFBundleDisplayName"`
	CFBundleExecutable  string `plist:"CFBundleExecutable"`
	CFBundleIconFile    string `plist:"CFBundleIconFile"`
}

// BundleApps reads the .app bundles directly inside dir. Path is the bundle
// executable so it can be started directly.
func BundleApps(dir string) []model.InstalledApp {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var apps []model.InstalledApp
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), ".app") {
			continue
		}
		bundle := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(filepath.Join(bundle, "Contents", "Info.plist"))
		if err != nil {
			continue
		}
		var info bundleInfo
		if _, err := plist.Unmarshal(b, &info); err != nil {
			log.Debug().Err(err).Str("bundle", bundle).Msg("decode Info.plist failed")
			continue
		}
		if info.CFBundleExecutable == "" {
			continue
		}
		name := info.CFBundleDisplayName
		if name == "" {
			name = info.CFBundleName
		}
		if name == "" {
			name = strings.TrimSuffix(e.Name(), ".app")
		}
		app := model.InstalledApp{
			Name: name,
			Path: filepath.Join(bundle, "Contents", "MacOS", info.CFBundleExecutable),
		}
		if info.CFBundleIconFile != "" {
			icon := info.CFBundleIconFile
			if filepath.Ext(icon) == "" {
				icon += ".icns"
			}
			app.Icon = filepath.Join(bundle, "Contents", "Resources", icon)
		}
		apps = append(apps, app)
	}
	return apps
}

func startMenuDirs() []string {
	return []string{
		filepath.Join(os.Getenv("APPDATA"), "Microsoft", "Windows", "Start Menu", "Programs"),
		filepath.Join(os.Getenv("ProgramData"), "Microsoft", "Windows", "Start Menu", "Programs"),
	}
}

// StartMenuApps lists the .lnk files under dir by name; the link itself is
// the path, it is resolved when a shortcut is created from it.
func StartMenuApps(dir string) []model.InstalledApp {
	files, err := util.FindFilesWithPatterns(dir, `(?i)\.lnk$`, true)
	if err != nil {
		return nil
	}
	var apps []model.InstalledApp
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.Contains(strings.ToLower(name), "uninstall") {
			continue
		}
		apps = append(apps, model.InstalledApp{Name: name, Path: path})
	}
	return apps
}

// SkipUninstallEntry filters system components and patches out of the
// uninstall registry.
func SkipUninstallEntry(name string) bool {
	return name == "" ||
		strings.HasPrefix(name, "KB") ||
		strings.Contains(name, "Update") ||
		strings.Contains(name, "Hotfix")
}

// SplitIconLocation splits `"C:\app.exe",0` into path and index.
func SplitIconLocation(loc string) (string, int) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return "", 0
	}
	path, index := loc, ""
	if i := strings.LastIndex(loc, ","); i >= 0 && !strings.Contains(loc[i:], `\`) {
		path, index = loc[:i], strings.TrimSpace(loc[i+1:])
	}
	path = strings.Trim(strings.TrimSpace(path), `"`)
	n, err := strconv.Atoi(index)
	if err != nil {
		return path, 0
	}
	return path, n
}
