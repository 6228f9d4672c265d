package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDedupProcesses(t *testing.T) {
	list := []model.ProcessInfo{
		{PID: 3, Name: "bash"},
		{PID: 1, Name: "Code"},
		{PID: 2, Name: "code"},
	}
	got := DedupProcesses(list)
	require.Len(t, got, 2)
	assert.Equal(t, "bash", got[0].Name)
	assert.Equal(t, uint32(1), got[1].PID)
}

func TestMatchProcessName(t *testing.T) {
	assert.True(t, MatchProcessName("Chrome.exe", "chrome.exe"))
	assert.True(t, MatchProcessName("chrome.exe", "chrome"))
	assert.True(t, MatchProcessName("firefox", "Firefox.EXE"))
	assert.False(t, MatchProcessName("chromium", "chrome"))
}

func TestOpenerCommand(t *testing.T) {
	tests := []struct {
		goos   string
		folder bool
		name   string
		args   []string
	}{
		{"windows", true, "explorer", []string{"C:\\tmp"}},
		{"windows", false, "rundll32", []string{"url.dll,FileProtocolHandler", "C:\\tmp"}},
		{"darwin", true, "open", []string{"C:\\tmp"}},
		{"linux", false, "xdg-open", []string{"C:\\tmp"}},
	}
	for _, tt := range tests {
		name, args := OpenerCommand(tt.goos, "C:\\tmp", tt.folder)
		assert.Equal(t, tt.name, name, tt.goos)
		assert.Equal(t, tt.args, args, tt.goos)
	}
}

func TestParseWmctrl(t *testing.T) {
	out := "0x04400003  0 1234 10   20   800  600  box Terminal - bash\n" +
		"0x05000001 -1 99   0    0    1920 30   box panel\n" +
		"garbage line\n"
	list := ParseWmctrl(out)
	require.Len(t, list, 2)
	assert.Equal(t, model.WindowInfo{
		Hwnd: 0x04400003, Title: "Terminal - bash", PID: 1234,
		X: 10, Y: 20, Width: 800, Height: 600,
	}, list[0])
	assert.Equal(t, "panel", list[1].Title)
}

func TestPlacement(t *testing.T) {
	w := model.WindowInfo{X: 1, Y: 2, Width: 3, Height: 4}
	x, width := int32(10), int32(500)
	gx, gy, gw, gh := Placement(w, model.WindowConfig{X: &x, Width: &width})
	assert.Equal(t, []int32{10, 2, 500, 4}, []int32{gx, gy, gw, gh})
}

func TestParseDesktopEntry(t *testing.T) {
	src := `# comment
[Desktop Entry]
Type=Application
Name=Editor
Name[de]=Bearbeiter
Exec=editor %F
Icon=editor
NoDisplay=false

[Desktop Action new]
Name=New Window
Exec=editor --new
`
	f, err := os.CreateTemp(t.TempDir(), "*.desktop")
	require.NoError(t, err)
	_, _ = f.WriteString(src)
	_, _ = f.Seek(0, 0)
	defer f.Close()

	e, err := ParseDesktopEntry(f)
	require.NoError(t, err)
	assert.Equal(t, "Editor", e.Name)
	assert.Equal(t, "editor %F", e.Exec)
	assert.Equal(t, "Application", e.Type)
	assert.False(t, e.NoDisplay)
}

func TestSplitExec(t *testing.T) {
	prog, args := SplitExec(`"/opt/My App/app" --flag %U 100%%`)
	assert.Equal(t, "/opt/My App/app", prog)
	assert.Equal(t, []string{"--flag", "100%"}, args)

	prog, args = SplitExec("")
	assert.Empty(t, prog)
	assert.Empty(t, args)
}

func TestDesktopApps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "editor.desktop"), "[Desktop Entry]\nType=Application\nName=Editor\nExec=/usr/bin/editor %f\nIcon=editor\n")
	writeFile(t, filepath.Join(dir, "sub", "player.desktop"), "[Desktop Entry]\nName=Player\nExec=player\n")
	writeFile(t, filepath.Join(dir, "hidden.desktop"), "[Desktop Entry]\nName=Hidden\nExec=hidden\nNoDisplay=true\n")
	writeFile(t, filepath.Join(dir, "site.desktop"), "[Desktop Entry]\nType=Link\nName=Site\nURL=https://example.com\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "Exec=nope")

	apps := DedupApps(DesktopApps(dir))
	assert.Equal(t, []model.InstalledApp{
		{Name: "Editor", Path: "/usr/bin/editor", Icon: "editor"},
		{Name: "Player", Path: "player"},
	}, apps)
}

func TestBundleApps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Notes.app", "Contents", "Info.plist"), `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>Notes</string>
	<key>CFBundleExecutable</key>
	<string>NotesBin</string>
	<key>CFBundleIconFile</key>
	<string>AppIcon</string>
</dict>
</plist>`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Broken.app"), 0755))

	apps := BundleApps(dir)
	require.Len(t, apps, 1)
	assert.Equal(t, "Notes", apps[0].Name)
	assert.Equal(t, filepath.Join(dir, "Notes.app", "Contents", "MacOS", "NotesBin"), apps[0].Path)
	assert.Equal(t, filepath.Join(dir, "Notes.app", "Contents", "Resources", "AppIcon.icns"), apps[0].Icon)
}

func TestStartMenuApps(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Tools", "Paint.lnk"), "")
	writeFile(t, filepath.Join(dir, "Uninstall Paint.lnk"), "")
	apps := StartMenuApps(dir)
	require.Len(t, apps, 1)
	assert.Equal(t, "Paint", apps[0].Name)
}

func TestUninstallHelpers(t *testing.T) {
	assert.True(t, SkipUninstallEntry(""))
	assert.True(t, SkipUninstallEntry("KB5005565"))
	assert.True(t, SkipUninstallEntry("Security Update for Office"))
	assert.False(t, SkipUninstallEntry("7-Zip"))

	path, idx := SplitIconLocation(`"C:\Program Files\7-Zip\7zFM.exe",0`)
	assert.Equal(t, `C:\Program Files\7-Zip\7zFM.exe`, path)
	assert.Equal(t, 0, idx)

	path, idx = SplitIconLocation(`C:\app.exe,-101`)
	assert.Equal(t, `C:\app.exe`, path)
	assert.Equal(t, -101, idx)

	path, _ = SplitIconLocation(`C:\a,b\app.exe`)
	assert.Equal(t, `C:\a,b\app.exe`, path)
}

func TestBrowserHelpers(t *testing.T) {
	assert.Equal(t, `C:\Program Files\Google\Chrome\Application\chrome.exe`,
		CommandPath(`"C:\Program Files\Google\Chrome\Application\chrome.exe" --single-argument %1`))
	assert.Equal(t, `C:\ff\firefox.exe`, CommandPath(`C:\ff\firefox.exe -osint -url "%1"`))
	assert.Equal(t, "-new-window", NewWindowFlag(`C:\ff\firefox.exe`))
	assert.Equal(t, "--new-window", NewWindowFlag(`C:\edge\msedge.exe`))
}

func TestParseLinkFile(t *testing.T) {
	link, err := ParseLinkFile(".url", []byte("[InternetShortcut]\r\nURL=https://example.com/\r\nIconIndex=0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", link.Path)
	assert.Equal(t, []string{}, link.Args)

	link, err = ParseLinkFile(".webloc", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><dict><key>URL</key><string>https://go.dev</string></dict></plist>`))
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", link.Path)

	link, err = ParseLinkFile(".desktop", []byte("[Desktop Entry]\nType=Application\nExec=code --new-window %F\n"))
	require.NoError(t, err)
	assert.Equal(t, "code", link.Path)
	assert.Equal(t, []string{"--new-window"}, link.Args)

	link, err = ParseLinkFile(".desktop", []byte("[Desktop Entry]\nType=Link\nURL=https://example.org\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", link.Path)

	_, err = ParseLinkFile(".url", []byte("[Other]\nURL=x\n"))
	assert.Error(t, err)
	_, err = ParseLinkFile(".exe", nil)
	assert.Error(t, err)
}

func TestResolveShortcutLink(t *testing.T) {
	h := &Host{GOOS: "linux"}
	dir := t.TempDir()
	path := filepath.Join(dir, "site.url")
	writeFile(t, path, "[InternetShortcut]\nURL=https://example.com\n")

	link, err := h.ResolveShortcutLink(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link.Path)

	_, err = h.ResolveShortcutLink(context.Background(), filepath.Join(dir, "missing.url"))
	assert.Error(t, err)

	_, err = h.ResolveShortcutLink(context.Background(), filepath.Join(dir, "app.lnk"))
	assert.Error(t, err)
}

func TestLauncherFile(t *testing.T) {
	req := model.DesktopShortcutRequest{ShortcutID: "abc", Name: "Work: setup"}

	name, content, mode := LauncherFile("linux", "/usr/bin/advshortcut", req)
	assert.Equal(t, "Work setup.desktop", name)
	assert.Equal(t, os.FileMode(0755), mode)
	assert.Contains(t, string(content), "[Desktop Entry]\n")
	assert.Contains(t, string(content), "Name=Work: setup\n")
	assert.Contains(t, string(content), `Exec="/usr/bin/advshortcut" --execute-shortcut abc --close-after-execution`)
	assert.Contains(t, string(content), "Icon=utilities-terminal\n")

	name, content, _ = LauncherFile("darwin", "/Applications/A.app/Contents/MacOS/a", req)
	assert.Equal(t, "Work setup.command", name)
	assert.Contains(t, string(content), "#!/bin/sh\n")

	name, content, _ = LauncherFile("windows", `C:\adv\advshortcut.exe`, req)
	assert.Equal(t, "Work setup.bat", name)
	assert.Contains(t, string(content), `start "" "C:\adv\advshortcut.exe" --execute-shortcut abc --close-after-execution`+"\r\n")

	name, _, _ = LauncherFile("linux", "x", model.DesktopShortcutRequest{ShortcutID: "id-1", Name: "///"})
	assert.Equal(t, "id-1.desktop", name)
}

func TestDesktopPathAndCreate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	writeFile(t, filepath.Join(home, ".config", "user-dirs.dirs"), "# generated\nXDG_DESKTOP_DIR=\"$HOME/Schreibtisch\"\n")

	h := &Host{GOOS: "linux", Executable: "/usr/bin/advshortcut"}
	dir, err := h.DesktopPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Schreibtisch"), dir)

	path, err := h.CreateDesktopShortcut(context.Background(), model.DesktopShortcutRequest{ShortcutID: "s1", Name: "Morning"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Schreibtisch", "Morning.desktop"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "--execute-shortcut s1")

	_, err = h.CreateDesktopShortcut(context.Background(), model.DesktopShortcutRequest{Name: "x"})
	assert.Error(t, err)
}

func TestDesktopPathFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "none"))
	dir, err := (&Host{GOOS: "linux"}).DesktopPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Desktop"), dir)
}

func TestPendingRequest(t *testing.T) {
	ctx := context.Background()

	empty := NewPendingRequest("  ", true, true)
	req, err := empty.Pending(ctx)
	require.NoError(t, err)
	assert.Nil(t, req)

	p := NewPendingRequest("s1", true, false)
	req, err = p.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.PendingExecutionRequest{ShortcutID: "s1", CloseAfterExecution: true}, req)

	// callers get a copy
	req.ShortcutID = "changed"
	again, _ := p.Pending(ctx)
	assert.Equal(t, "s1", again.ShortcutID)

	p.Clear()
	req, _ = p.Pending(ctx)
	assert.Nil(t, req)
}

func TestExit(t *testing.T) {
	h := &Host{}
	var code = -1
	h.SetExitFunc(func(c int) { code = c })
	h.Exit(3)
	assert.Equal(t, 3, code)
}
