package executor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/model"
)

type move struct {
	Hwnd                int64
	X, Y, Width, Height int32
}

type fakeHost struct {
	mu       sync.Mutex
	started  []string
	folders  []string
	urls     []string
	killed   map[string]int
	startErr error
	pid      int
	lists    [][]model.WindowInfo
	listCall int
	moves    []move
}

func (f *fakeHost) StartProcess(ctx context.Context, path string, args []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return 0, f.startErr
	}
	f.started = append(f.started, path)
	return f.pid, nil
}

func (f *fakeHost) OpenFolder(ctx context.Context, path string) error {
	f.folders = append(f.folders, path)
	return nil
}

func (f *fakeHost) OpenURL(ctx context.Context, url string) error {
	f.urls = append(f.urls, url)
	return nil
}

func (f *fakeHost) KillProcesses(ctx context.Context, name string) (int, error) {
	return f.killed[name], nil
}

func (f *fakeHost) WindowList(ctx context.Context) ([]model.WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.lists) == 0 {
		return nil, nil
	}
	i := f.listCall
	if i >= len(f.lists) {
		i = len(f.lists) - 1
	}
	f.listCall++
	return f.lists[i], nil
}

func (f *fakeHost) MoveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error {
	f.moves = append(f.moves, move{w.Hwnd, x, y, width, height})
	return nil
}

func newTestExecutor(h Host) *Executor {
	e := New(h)
	e.LaunchSettle, e.PollInterval, e.FolderSettle, e.URLSettle = 0, 0, 0, 0
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	e.Now = func() time.Time { return now }
	return e
}

func i32(v int32) *int32 { return &v }

func TestExecuteAllKinds(t *testing.T) {
	h := &fakeHost{pid: 7, killed: map[string]int{"slack": 2}}
	e := newTestExecutor(h)

	var results []model.ExecutionResult
	e.Subscribe(func(r model.ExecutionResult) { results = append(results, r) })

	sc := model.Shortcut{ID: "s1", Name: "Morning", Actions: model.Actions{
		model.Launch{Path: "/usr/bin/editor", Args: []string{"-n"}},
		model.Kill{ProcessName: "slack"},
		model.OpenFolder{Path: "/tmp"},
		model.OpenURL{URL: "https://example.com"},
		model.Delay{Ms: 0},
	}}
	lines, err := e.Execute(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Launched: /usr/bin/editor",
		"Killed 2 instance(s) of slack",
		"Opened folder: /tmp",
		"Opened URL: https://example.com",
		"Delayed for 0ms",
	}, lines)
	assert.Equal(t, []string{"/usr/bin/editor"}, h.started)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, "s1", results[0].ShortcutID)
	assert.Equal(t, lines, results[0].Logs)
	assert.Equal(t, "2024-05-01T08:00:00Z", results[0].StartedAt)
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	h := &fakeHost{}
	e := newTestExecutor(h)
	var result model.ExecutionResult
	e.Subscribe(func(r model.ExecutionResult) { result = r })

	sc := model.Shortcut{ID: "s1", Actions: model.Actions{
		model.Launch{Path: "/usr/bin/editor"},
		model.Kill{ProcessName: "slack"},
		model.OpenURL{URL: "https://example.com"},
	}}
	lines, err := e.Execute(context.Background(), sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "action #2 (kill) failed")
	assert.Equal(t, []string{"Launched: /usr/bin/editor", "Error: process not found: slack"}, lines)
	assert.Empty(t, h.urls)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestExecuteLaunchFailure(t *testing.T) {
	h := &fakeHost{startErr: fmt.Errorf("no such file")}
	_, err := newTestExecutor(h).Execute(context.Background(), model.Shortcut{Actions: model.Actions{
		model.Launch{Path: "/missing"},
	}})
	assert.ErrorContains(t, err, "no such file")
}

func TestLaunchAdjustsRunningWindow(t *testing.T) {
	h := &fakeHost{lists: [][]model.WindowInfo{{
		{Hwnd: 1, ProcessName: "code", X: 10, Y: 20, Width: 300, Height: 400},
		{Hwnd: 2, ProcessName: "bash", X: 0, Y: 0, Width: 100, Height: 100},
	}}}
	e := newTestExecutor(h)
	line, err := e.ExecuteAction(context.Background(), model.Launch{
		Path:         "/usr/bin/code",
		WindowConfig: &model.WindowConfig{X: i32(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Adjusted window for already running: code", line)
	assert.Empty(t, h.started)
	assert.Equal(t, []move{{1, 5, 20, 300, 400}}, h.moves)
}

func TestLaunchPlacesNewWindow(t *testing.T) {
	h := &fakeHost{pid: 42, lists: [][]model.WindowInfo{
		{},
		{},
		{{Hwnd: 9, PID: 42, X: 50, Y: 50, Width: 640, Height: 480}},
	}}
	e := newTestExecutor(h)
	line, err := e.ExecuteAction(context.Background(), model.Launch{
		Path:         "/usr/bin/code",
		WindowConfig: &model.WindowConfig{Width: i32(1000)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Launched: /usr/bin/code", line)
	assert.Equal(t, []string{"/usr/bin/code"}, h.started)
	assert.Equal(t, []move{{9, 0, 0, 1000, 600}}, h.moves)
}

func TestLaunchWindowNeverAppears(t *testing.T) {
	h := &fakeHost{pid: 42}
	e := newTestExecutor(h)
	line, err := e.ExecuteAction(context.Background(), model.Launch{
		Path:         "/usr/bin/code",
		WindowConfig: &model.WindowConfig{X: i32(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Launched: /usr/bin/code", line)
	assert.Empty(t, h.moves)
}

func TestOpenURLPrefersNewBrowserWindow(t *testing.T) {
	h := &fakeHost{lists: [][]model.WindowInfo{
		{{Hwnd: 1, ProcessName: "firefox"}},
		{
			{Hwnd: 1, ProcessName: "firefox"},
			{Hwnd: 2, ProcessName: "gedit", Width: 10, Height: 10},
			{Hwnd: 3, ProcessName: "firefox", X: 1, Y: 2, Width: 3, Height: 4},
		},
	}}
	e := newTestExecutor(h)
	line, err := e.ExecuteAction(context.Background(), model.OpenURL{
		URL:          "https://example.com",
		WindowConfig: &model.WindowConfig{Height: i32(900)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Opened URL: https://example.com", line)
	assert.Equal(t, []move{{3, 1, 2, 3, 900}}, h.moves)
}

func TestOpenFolderFallsBackToTitle(t *testing.T) {
	list := []model.WindowInfo{{Hwnd: 4, Title: "Documents - Files", Width: 100, Height: 100}}
	h := &fakeHost{lists: [][]model.WindowInfo{list, list}}
	e := newTestExecutor(h)
	line, err := e.ExecuteAction(context.Background(), model.OpenFolder{
		Path:         "/home/me/Documents/",
		WindowConfig: &model.WindowConfig{X: i32(0), Y: i32(0)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Opened folder: /home/me/Documents/", line)
	assert.Equal(t, []move{{4, 0, 0, 100, 100}}, h.moves)
}

func TestOpenURLRejectsInvalid(t *testing.T) {
	h := &fakeHost{}
	_, err := newTestExecutor(h).ExecuteAction(context.Background(), model.OpenURL{URL: "example.com"})
	assert.Error(t, err)
	assert.Empty(t, h.urls)
}

func TestValidateURL(t *testing.T) {
	for _, ok := range []string{"https://example.com", "http://localhost:8080/x", "file:///tmp/a.html", "vscode://file/tmp", "mailto:me@example.com"} {
		assert.NoError(t, ValidateURL(ok), ok)
	}
	for _, bad := range []string{"", "example.com", "https://", "http:///path"} {
		assert.Error(t, ValidateURL(bad), bad)
	}
}

func TestInvalidActionFails(t *testing.T) {
	_, err := newTestExecutor(&fakeHost{}).ExecuteAction(context.Background(), model.Launch{Path: " "})
	assert.Error(t, err)
	_, err = newTestExecutor(&fakeHost{}).ExecuteAction(context.Background(), nil)
	assert.Error(t, err)
}

func TestDelayHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	lines, err := newTestExecutor(&fakeHost{}).Execute(ctx, model.Shortcut{Actions: model.Actions{
		model.Delay{Ms: 60000},
		model.Kill{ProcessName: "x"},
	}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, lines, 1)
}

func TestHugeDelayWaitsForCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	h := &fakeHost{}
	lines, err := newTestExecutor(h).Execute(ctx, model.Shortcut{Actions: model.Actions{
		model.Delay{Ms: math.MaxUint64},
		model.OpenURL{URL: "https://example.com"},
	}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, lines, 1)
	assert.Empty(t, h.urls)
}

func TestSubscribeCancel(t *testing.T) {
	e := newTestExecutor(&fakeHost{})
	n := 0
	cancel := e.Subscribe(func(model.ExecutionResult) { n++ })
	_, _ = e.Execute(context.Background(), model.Shortcut{})
	cancel()
	_, _ = e.Execute(context.Background(), model.Shortcut{})
	assert.Equal(t, 1, n)
}

func TestLaunchPlacement(t *testing.T) {
	x, y, w, h := LaunchPlacement(model.WindowConfig{X: i32(100)})
	assert.Equal(t, []int32{100, 0, 800, 600}, []int32{x, y, w, h})
}
