package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/internal/updater"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string { return "127.0.0.1:0" }
func (testConfig) GetDataDir() string  { return "" }

type memBackend struct {
	mu   sync.Mutex
	data *model.AppData
}

func (b *memBackend) Load(ctx context.Context) (*model.AppData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.Clone(), nil
}

func (b *memBackend) SaveShortcuts(ctx context.Context, list []model.Shortcut) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data.Shortcuts = model.CloneShortcuts(list)
	return nil
}

func (b *memBackend) SaveGroups(ctx context.Context, list []model.Group) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data.Groups = model.CloneGroups(list)
	return nil
}

type fakeExecutor struct {
	mu   sync.Mutex
	err  error
	subs []func(model.ExecutionResult)
}

func (f *fakeExecutor) Execute(ctx context.Context, sc model.Shortcut) ([]string, error) {
	f.mu.Lock()
	subs := f.subs
	err := f.err
	f.mu.Unlock()
	logs := []string{"Launched: " + sc.Name}
	for _, fn := range subs {
		fn(model.ExecutionResult{ShortcutID: sc.ID, Name: sc.Name, Success: err == nil, Logs: logs})
	}
	if err != nil {
		return append(logs, "Error: "+err.Error()), err
	}
	return logs, nil
}

func (f *fakeExecutor) Subscribe(fn func(model.ExecutionResult)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

type fakeSystem struct{}

func (fakeSystem) ProcessList(ctx context.Context) ([]model.ProcessInfo, error) {
	return []model.ProcessInfo{{PID: 1, Name: "init"}}, nil
}
func (fakeSystem) WindowList(ctx context.Context) ([]model.WindowInfo, error) {
	return nil, errors.PlatformUnsupported("window list", "test")
}
func (fakeSystem) WindowPosition(ctx context.Context, name string) (model.WindowConfig, error) {
	x := int32(5)
	return model.WindowConfig{X: &x}, nil
}
func (fakeSystem) InstalledApps(ctx context.Context) ([]model.InstalledApp, error) { return nil, nil }
func (fakeSystem) DesktopPath() (string, error)                                    { return "/home/u/Desktop", nil }
func (fakeSystem) ResolveShortcutLink(ctx context.Context, path string) (model.ResolvedLink, error) {
	return model.ResolvedLink{Path: "/usr/bin/" + path, Args: []string{}}, nil
}
func (fakeSystem) CreateDesktopShortcut(ctx context.Context, req model.DesktopShortcutRequest) (string, error) {
	return "/home/u/Desktop/" + req.Name + ".desktop", nil
}

func fixture() *model.AppData {
	return &model.AppData{
		Shortcuts: []model.Shortcut{
			{ID: "a", Name: "Alpha", GroupID: "default", Order: 0, Actions: model.Actions{model.Delay{Ms: 1}}},
			{ID: "b", Name: "Beta", GroupID: "default", Order: 1, Actions: model.Actions{}},
		},
		Groups: []model.Group{
			model.DefaultGroup(),
			{ID: "work", Name: "Work", Order: 1, IsExpanded: true},
		},
	}
}

func newTestService(t *testing.T, load bool) (*Service, *fakeExecutor) {
	t.Helper()
	st := store.New(&memBackend{data: fixture()})
	if load {
		require.NoError(t, st.Load(context.Background()))
	}
	exec := &fakeExecutor{}
	checker := updater.CheckerFunc(func(ctx context.Context) (updater.Candidate, error) { return nil, nil })
	s := NewService(testConfig{}, st, exec, fakeSystem{}, updater.NewManager(checker, "1.0.0"))
	t.Cleanup(func() { _ = s.Close() })
	return s, exec
}

func do(t *testing.T, s *Service, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newTestService(t, false)
	w := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"loading"`)
}

func TestNotReadyIs503(t *testing.T) {
	s, _ := newTestService(t, false)
	w := do(t, s, http.MethodGet, "/api/v1/data", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// host routes do not wait for the store
	w = do(t, s, http.MethodGet, "/api/v1/system/desktop", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShortcutCRUD(t *testing.T) {
	s, _ := newTestService(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/shortcuts", map[string]any{
		"name":    "Gamma",
		"groupId": "default",
		"actions": []map[string]any{{"type": "open_url", "url": "https://example.com"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Shortcut
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.Order)
	assert.Equal(t, model.Actions{model.OpenURL{URL: "https://example.com"}}, created.Actions)

	created.Name = "Gamma 2"
	w = do(t, s, http.MethodPut, "/api/v1/shortcuts/"+created.ID, created)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/v1/groups/default/shortcuts/reorder", map[string]any{"ids": []string{created.ID, "a", "b"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ordered []model.Shortcut
	decode(t, w, &ordered)
	require.Len(t, ordered, 3)
	assert.Equal(t, created.ID, ordered[0].ID)
	assert.Equal(t, "Gamma 2", ordered[0].Name)
	for i, sc := range ordered {
		assert.Equal(t, i, sc.Order)
	}

	w = do(t, s, http.MethodPost, "/api/v1/groups/default/shortcuts/reorder", map[string]any{"ids": []string{"a"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/v1/shortcuts/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, s, http.MethodDelete, "/api/v1/shortcuts/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/data", nil)
	var data model.AppData
	decode(t, w, &data)
	assert.Len(t, data.Shortcuts, 2)
	assert.Len(t, data.Groups, 2)
}

func TestSaveCollections(t *testing.T) {
	s, _ := newTestService(t, true)

	w := do(t, s, http.MethodPut, "/api/v1/shortcuts", []model.Shortcut{{ID: "only", Name: "Only", GroupID: "default"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, s.store.Shortcuts(), 1)

	groups := s.store.Groups()
	groups[1].Name = "Renamed"
	w = do(t, s, http.MethodPut, "/api/v1/groups", groups)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	g, ok := s.store.Group("work")
	require.True(t, ok)
	assert.Equal(t, "Renamed", g.Name)

	w = do(t, s, http.MethodPut, "/api/v1/groups", "not a list")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroupRoutes(t *testing.T) {
	s, _ := newTestService(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/groups", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/groups", map[string]any{"name": "Home", "color": "#fff"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var home model.Group
	decode(t, w, &home)
	assert.Equal(t, 2, home.Order)

	w = do(t, s, http.MethodPost, "/api/v1/groups/work/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var work model.Group
	decode(t, w, &work)
	assert.False(t, work.IsExpanded)

	w = do(t, s, http.MethodPost, "/api/v1/groups/reorder", map[string]any{"ids": []string{home.ID, "work", "default"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, home.ID, s.store.Groups()[0].ID)

	w = do(t, s, http.MethodDelete, "/api/v1/groups/default", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodDelete, "/api/v1/groups/work", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, ok := s.store.Group("work")
	assert.False(t, ok)
}

func TestExecuteShortcut(t *testing.T) {
	s, exec := newTestService(t, true)

	w := do(t, s, http.MethodPost, "/api/v1/shortcuts/a/execute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"logs":["Launched: Alpha"],"success":true}`, w.Body.String())

	exec.err = errors.ActionFailed(0, "launch", errors.FileNotFound("/nope"))
	w = do(t, s, http.MethodPost, "/api/v1/shortcuts/a/execute", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error   string   `json:"error"`
		Logs    []string `json:"logs"`
		Success bool     `json:"success"`
	}
	decode(t, w, &body)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "action #1 (launch) failed")
	assert.Len(t, body.Logs, 2)

	w = do(t, s, http.MethodPost, "/api/v1/shortcuts/zzz/execute", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSystemRoutes(t *testing.T) {
	s, _ := newTestService(t, true)

	w := do(t, s, http.MethodGet, "/api/v1/system/processes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"init"`)

	w = do(t, s, http.MethodGet, "/api/v1/system/windows", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/system/windows/position", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodGet, "/api/v1/system/windows/position?process=code", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"x":5}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/v1/system/apps", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/v1/system/resolve-link", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, s, http.MethodPost, "/api/v1/system/resolve-link", map[string]string{"path": "code"})
	assert.JSONEq(t, `{"path":"/usr/bin/code","args":[]}`, w.Body.String())

	w = do(t, s, http.MethodPost, "/api/v1/system/desktop-shortcut", map[string]string{"shortcutId": "a"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"path":"/home/u/Desktop/Alpha.desktop"}`, w.Body.String())
}

func TestUpdateRoutes(t *testing.T) {
	s, _ := newTestService(t, true)

	w := do(t, s, http.MethodGet, "/api/v1/update", nil)
	assert.Contains(t, w.Body.String(), `"status":"idle"`)

	w = do(t, s, http.MethodPost, "/api/v1/update/install", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodPost, "/api/v1/update/check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"up-to-date"`)

	w = do(t, s, http.MethodPost, "/api/v1/update/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"idle"`)
}

func TestNoRoute(t *testing.T) {
	s, _ := newTestService(t, true)
	w := do(t, s, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventsStream(t *testing.T) {
	s, _ := newTestService(t, true)
	srv := httptest.NewServer(s.GetRouter())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = s.store.ToggleGroup(context.Background(), "work")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Type string      `json:"type"`
		Data store.Event `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventStore, ev.Type)
	assert.Equal(t, store.EventGroupsChanged, ev.Data.Kind)

	s.hub.Close()
	assert.Zero(t, s.hub.Len())
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPTools(t *testing.T) {
	s, exec := newTestService(t, true)
	ctx := context.Background()

	res, err := s.handleMCPListGroups(ctx, callTool("list_groups", nil))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Shortcuts\ndefault,"+model.DefaultGroupName+",2\nwork,Work,0\n", toolText(t, res))

	res, err = s.handleMCPListShortcuts(ctx, callTool("list_shortcuts", map[string]any{"keyword": "alp"}))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Group,Actions\na,Alpha,"+model.DefaultGroupName+",wait 1ms\n", toolText(t, res))

	res, err = s.handleMCPExecuteShortcut(ctx, callTool("execute_shortcut", map[string]any{"shortcut": "beta"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "Launched: Beta", toolText(t, res))

	res, err = s.handleMCPExecuteShortcut(ctx, callTool("execute_shortcut", map[string]any{"shortcut": "zzz"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	exec.err = errors.ProcessNotFound("slack")
	res, err = s.handleMCPExecuteShortcut(ctx, callTool("execute_shortcut", map[string]any{"shortcut": "a"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, toolText(t, res), "process not found: slack")
}
