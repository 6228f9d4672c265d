package advshortcut

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/advshortcut/conf"
	"github.com/sjzar/advshortcut/internal/advshortcut/ctx"
	"github.com/sjzar/advshortcut/internal/orchestrator"
	"github.com/sjzar/advshortcut/internal/storage"
)

const testData = `{
  "shortcuts": [
    {"id": "wait", "name": "Wait", "icon": "zap", "groupId": "default",
     "actions": [{"type": "delay", "ms": 1}], "order": 0,
     "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"}
  ],
  "groups": [
    {"id": "default", "name": "Default", "color": "#22d3ee", "icon": "folder", "order": 0, "isExpanded": true}
  ]
}`

// setup returns a config dir and the overrides pointing at a seeded data dir.
func setup(t *testing.T) (string, map[string]any) {
	t.Helper()
	t.Setenv(conf.EnvConfigDir, "")
	configDir := t.TempDir()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, storage.DataFileName), []byte(testData), 0644))
	return configDir, map[string]any{
		"data_dir":          dataDir,
		"watch":             false,
		"update.auto_check": false,
	}
}

func TestCommandRunSuccess(t *testing.T) {
	configDir, cmdConf := setup(t)
	var out bytes.Buffer

	code, err := New().CommandRun(configDir, cmdConf, "wait", &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, out.String())
}

func TestCommandRunUnknownShortcut(t *testing.T) {
	configDir, cmdConf := setup(t)
	var out bytes.Buffer

	code, err := New().CommandRun(configDir, cmdConf, "missing", &out)
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

// stubUI stands in for the terminal UI: Run blocks until Stop.
type stubUI struct {
	stopped  chan struct{}
	once     sync.Once
	mu       sync.Mutex
	navigate int
	statuses []orchestrator.Status
}

func newStubUI() *stubUI { return &stubUI{stopped: make(chan struct{})} }

func (u *stubUI) Run() error           { <-u.stopped; return nil }
func (u *stubUI) Stop()                { u.once.Do(func() { close(u.stopped) }) }
func (u *stubUI) AfterStart(fn func()) { go fn() }

func (u *stubUI) ShowDefault() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.navigate++
}

func (u *stubUI) OnOrchestratorState(s orchestrator.State) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statuses = append(u.statuses, s.Status)
}

func (u *stubUI) navigated() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.navigate
}

func TestRunReturnsRequestExitCode(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want int
	}{
		{"success", "wait", 0},
		{"failure", "missing", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configDir, cmdConf := setup(t)
			writeConfig(t, configDir, cmdConf["data_dir"].(string))

			ui := newStubUI()
			m := New()
			m.newUI = func(*Manager) frontend { return ui }

			code, err := m.Run(configDir, Request{ShortcutID: tt.id, CloseAfterExecution: true, ShowProgress: true})
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
			assert.Zero(t, ui.navigated())
		})
	}
}

func TestRunWithoutCloseKeepsUI(t *testing.T) {
	configDir, cmdConf := setup(t)
	writeConfig(t, configDir, cmdConf["data_dir"].(string))

	ui := newStubUI()
	m := New()
	m.newUI = func(*Manager) frontend { return ui }

	done := make(chan int, 1)
	go func() {
		code, _ := m.Run(configDir, Request{ShortcutID: "missing", ShowProgress: true})
		done <- code
	}()

	require.Eventually(t, func() bool { return ui.navigated() == 1 }, 5*time.Second, 10*time.Millisecond)
	select {
	case <-done:
		t.Fatal("Run returned before the UI was closed")
	default:
	}

	ui.Stop()
	assert.Equal(t, 0, <-done)
}

func TestExportImport(t *testing.T) {
	configDir, cmdConf := setup(t)
	// the data commands read data_dir from the config file
	writeConfig(t, configDir, cmdConf["data_dir"].(string))

	file := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, New().CommandExport(configDir, file, "", nil))
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "name: Wait")

	var stdout bytes.Buffer
	require.NoError(t, New().CommandExport(configDir, "-", storage.FormatJSON, &stdout))
	assert.Contains(t, stdout.String(), `"id": "wait"`)

	require.NoError(t, New().CommandImport(configDir, file, ""))
	assert.Error(t, New().CommandImport(configDir, filepath.Join(t.TempDir(), "none.json"), ""))
}

func TestBackupRestore(t *testing.T) {
	configDir, cmdConf := setup(t)
	writeConfig(t, configDir, cmdConf["data_dir"].(string))

	name, err := New().CommandBackup(configDir)
	require.NoError(t, err)
	assert.NotEmpty(t, name)

	list, err := New().CommandBackups(configDir)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	restored, err := New().CommandRestore(configDir, "")
	require.NoError(t, err)
	assert.Equal(t, list[0].Name, restored)
}

func TestSetHTTPAddr(t *testing.T) {
	m := New()
	c := &conf.Config{DataDir: t.TempDir()}
	m.ctx = ctx.New(c, nil)

	tests := []struct {
		in   string
		want string
	}{
		{"8080", "127.0.0.1:8080"},
		{"http://0.0.0.0:9000", "0.0.0.0:9000"},
		{"https://localhost:443", "localhost:443"},
		{" 127.0.0.1:5030 ", "127.0.0.1:5030"},
	}
	for _, tt := range tests {
		require.NoError(t, m.SetHTTPAddr(tt.in))
		assert.Equal(t, tt.want, m.ctx.GetHTTPAddr())
	}
	assert.Error(t, m.SetHTTPAddr("  "))
}

func writeConfig(t *testing.T, configDir, dataDir string) {
	t.Helper()
	body := `{"data_dir": "` + filepath.ToSlash(dataDir) + `", "watch": false, "update": {"auto_check": false}}`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, conf.AppName+".json"), []byte(body), 0644))
}
