package advshortcut

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/advshortcut/conf"
	"github.com/sjzar/advshortcut/internal/advshortcut/ctx"
	"github.com/sjzar/advshortcut/internal/advshortcut/http"
	"github.com/sjzar/advshortcut/internal/advshortcut/webhook"
	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/executor"
	"github.com/sjzar/advshortcut/internal/host"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/orchestrator"
	"github.com/sjzar/advshortcut/internal/storage"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/internal/updater"
	"github.com/sjzar/advshortcut/pkg/config"
	"github.com/sjzar/advshortcut/pkg/util"
	"github.com/sjzar/advshortcut/pkg/version"
)

// Manager wires the stores, services and the terminal UI together.
type Manager struct {
	ctx  *ctx.Context
	conf *conf.Config
	cm   *config.Manager

	// Services
	backend   storage.Backend
	store     *store.Store
	watcher   *storage.Watcher
	host      *host.Host
	executor  *executor.Executor
	updater   *updater.Manager
	scheduler *updater.Scheduler
	webhook   *webhook.Service
	http      *http.Service

	pending      *host.PendingRequest
	orchestrator *orchestrator.Orchestrator

	bg        context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// Terminal UI
	ui    frontend
	newUI func(m *Manager) frontend

	exitMu   sync.Mutex
	exitCode int
}

// frontend is the interactive side of Run.
type frontend interface {
	Run() error
	Stop()
	ShowDefault()
	OnOrchestratorState(s orchestrator.State)
	// AfterStart runs fn on its own goroutine once the event loop is live.
	AfterStart(fn func())
}

// Request is the execution request given on the command line.
type Request struct {
	ShortcutID          string
	CloseAfterExecution bool
	ShowProgress        bool
}

func New() *Manager {
	return &Manager{
		newUI: func(m *Manager) frontend { return NewApp(m.ctx, m) },
	}
}

// init loads the config and builds every service without starting any.
func (m *Manager) init(configPath string, cmdConf map[string]any, writeConfig bool) error {
	var err error
	m.conf, m.cm, err = conf.Load(configPath, cmdConf, writeConfig)
	if err != nil {
		return err
	}

	m.backend, err = storage.Open(m.conf.StorageOptions())
	if err != nil {
		return err
	}
	m.store = store.New(m.backend)

	m.host = host.New()
	m.executor = executor.New(m.host)

	m.webhook = webhook.New(m.conf)
	m.executor.Subscribe(m.webhook.Notify)

	checker := &updater.GitHubChecker{
		Repo:           m.conf.Update.Repo,
		Endpoint:       m.conf.Update.Endpoint,
		CurrentVersion: version.Version,
		Install:        updater.Install,
	}
	m.updater = updater.NewManager(checker, version.Version)

	m.ctx = ctx.New(m.conf, m.cm)
	m.ctx.SetStorage(m.backend.Type(), m.backend.Path())
	m.updater.Subscribe(func(s updater.State) {
		m.ctx.SetUpdateStatus(string(s.Status))
	})
	m.executor.Subscribe(func(r model.ExecutionResult) {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		m.ctx.SetLastRun(fmt.Sprintf("%s (%s)", r.Name, status))
	})

	m.http = http.NewService(m.ctx, m.store, m.executor, m.host, m.updater)

	m.bg, m.cancel = context.WithCancel(context.Background())
	return nil
}

// start loads the data and starts the background services.
func (m *Manager) start(autoCheck bool) {
	go func() {
		if err := m.store.Load(m.bg); err != nil {
			log.Err(err).Msg("load data failed")
		}
		m.ctx.Refresh()
	}()

	if m.conf.Watch {
		if file, ok := m.backend.(*storage.JSONFile); ok {
			w, err := storage.NewWatcher(file, func() {
				log.Info().Str("file", file.Path()).Msg("data file changed, reloading")
				if err := m.store.Reload(m.bg); err != nil {
					log.Err(err).Msg("reload data failed")
				}
			})
			if err == nil {
				err = w.Start()
			}
			if err != nil {
				log.Warn().Err(err).Msg("watch data file failed")
			} else {
				m.watcher = w
			}
		}
	}

	m.webhook.Start(m.bg)

	if autoCheck && m.conf.Update.AutoCheck {
		go m.updater.RunAutoCheck(m.bg, m.conf.GetAutoCheckDelay())
	}
	if autoCheck && m.conf.Update.Cron != "" {
		m.scheduler = updater.NewScheduler(m.updater, m.conf.Update.Cron, func(s updater.State) {
			if s.Info != nil {
				log.Info().Str("version", s.Info.Version).Msg("new version available")
			}
		})
		if err := m.scheduler.Start(m.bg); err != nil {
			log.Err(err).Msg("start update scheduler failed")
		}
	}
}

// close stops everything started by init and start.
func (m *Manager) close() {
	m.closeOnce.Do(m.shutdown)
}

func (m *Manager) shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			log.Debug().Err(err).Msg("stop watcher failed")
		}
		m.watcher = nil
	}
	if m.http != nil {
		_ = m.http.Close()
	}
	if m.backend != nil {
		if err := m.backend.Close(); err != nil {
			log.Debug().Err(err).Msg("close storage failed")
		}
	}
}

// Run starts the terminal UI and returns the code the process should exit
// with: the outcome of a closing command line request, otherwise 0.
func (m *Manager) Run(configPath string, req Request) (int, error) {
	defer m.close()
	if err := m.init(configPath, nil, true); err != nil {
		return 1, err
	}
	m.start(true)

	if m.ctx.Snapshot().HTTPEnabled {
		if err := m.StartService(); err != nil {
			log.Err(err).Msg("start HTTP service failed")
			_ = m.StopService()
		}
	}

	m.ui = m.newUI(m)
	m.pending = host.NewPendingRequest(req.ShortcutID, req.CloseAfterExecution, req.ShowProgress)
	m.orchestrator = orchestrator.New(
		m.store,
		m.executor,
		orchestrator.NavigatorFunc(m.ui.ShowDefault),
		orchestrator.ExiterFunc(m.exit),
		m.pending,
	)
	m.orchestrator.Subscribe(m.ui.OnOrchestratorState)
	m.ui.AfterStart(func() {
		if err := m.orchestrator.Run(m.bg); err != nil {
			log.Err(err).Msg("command line request failed")
		}
	})

	if err := m.ui.Run(); err != nil { // blocks
		return 1, err
	}

	m.exitMu.Lock()
	defer m.exitMu.Unlock()
	return m.exitCode, nil
}

// exit records code for Run and stops the UI. Run returns it once the event
// loop is down.
func (m *Manager) exit(code int) {
	m.exitMu.Lock()
	m.exitCode = code
	m.exitMu.Unlock()
	if m.ui != nil {
		m.ui.Stop()
	}
}

func (m *Manager) StartService() error {
	if err := m.http.Start(); err != nil {
		return err
	}
	m.ctx.SetHTTPEnabled(true)
	return nil
}

func (m *Manager) StopService() error {
	if err := m.http.Stop(); err != nil {
		return err
	}
	m.ctx.SetHTTPEnabled(false)
	return nil
}

// SetHTTPAddr accepts a port, an address or a URL.
func (m *Manager) SetHTTPAddr(text string) error {
	text = strings.TrimSpace(text)
	var addr string
	if util.IsNumeric(text) {
		addr = fmt.Sprintf("127.0.0.1:%s", text)
	} else if strings.HasPrefix(text, "http://") {
		addr = strings.TrimPrefix(text, "http://")
	} else if strings.HasPrefix(text, "https://") {
		addr = strings.TrimPrefix(text, "https://")
	} else {
		addr = text
	}
	if addr == "" {
		return errors.RequiredParam("http.addr")
	}
	m.ctx.SetHTTPAddr(addr)
	return nil
}

// ExecuteShortcut runs a shortcut from the UI.
func (m *Manager) ExecuteShortcut(ctx context.Context, id string) ([]string, error) {
	sc, ok := m.store.Shortcut(id)
	if !ok {
		return nil, errors.ErrShortcutNotFound(id)
	}
	return m.executor.Execute(ctx, sc)
}

// CreateDesktopShortcut writes a desktop launcher for shortcut id.
func (m *Manager) CreateDesktopShortcut(id string) (string, error) {
	sc, ok := m.store.Shortcut(id)
	if !ok {
		return "", errors.ErrShortcutNotFound(id)
	}
	return m.host.CreateDesktopShortcut(m.bg, model.DesktopShortcutRequest{ShortcutID: sc.ID, Name: sc.Name, Icon: sc.Icon})
}

// resolveApp turns a picked application into a launch path and arguments.
// Link files are resolved to their target.
func (m *Manager) resolveApp(app model.InstalledApp) (string, []string) {
	switch strings.ToLower(filepath.Ext(app.Path)) {
	case ".lnk", ".desktop", ".url", ".webloc":
		link, err := m.host.ResolveShortcutLink(m.bg, app.Path)
		if err != nil {
			log.Debug().Err(err).Str("path", app.Path).Msg("resolve link failed")
			return app.Path, nil
		}
		return link.Path, link.Args
	}
	return app.Path, nil
}

// BackupNow saves a snapshot of the loaded collections.
func (m *Manager) BackupNow() (string, error) {
	b, err := m.backups()
	if err != nil {
		return "", err
	}
	content, err := json.MarshalIndent(m.store.Snapshot(), "", "  ")
	if err != nil {
		return "", errors.Storage("encode app data", err)
	}
	return b.Save(content)
}

// CommandRun executes one shortcut without the UI and returns the exit code.
func (m *Manager) CommandRun(configPath string, cmdConf map[string]any, id string, out io.Writer) (int, error) {
	defer m.close()
	if err := m.init(configPath, cmdConf, false); err != nil {
		return 1, err
	}
	m.start(false)

	code := -1
	m.pending = host.NewPendingRequest(id, true, false)
	m.orchestrator = orchestrator.New(
		m.store,
		m.executor,
		orchestrator.NavigatorFunc(func() {}),
		orchestrator.ExiterFunc(func(c int) { code = c }),
		m.pending,
	)

	ctx, stop := signal.NotifyContext(m.bg, os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := m.orchestrator.Run(ctx)

	for _, line := range m.orchestrator.Logs() {
		fmt.Fprintln(out, line)
	}
	if code < 0 {
		code = 1
	}
	return code, err
}

// CommandHTTPServer serves the API until interrupted.
func (m *Manager) CommandHTTPServer(configPath string, cmdConf map[string]any) error {
	defer m.close()
	if err := m.init(configPath, cmdConf, false); err != nil {
		return err
	}
	m.start(true)

	log.Info().Str("addr", m.conf.GetHTTPAddr()).Str("data", m.conf.GetDataDir()).Str("storage", m.backend.Type()).Msg("server config")

	ctx, stop := signal.NotifyContext(m.bg, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = m.http.Stop()
	}()

	return m.http.ListenAndServe()
}

// CommandUpdate checks for a new release and installs it when confirmed.
func (m *Manager) CommandUpdate(configPath string, checkOnly bool, confirm func(info *model.UpdateInfo) bool, out io.Writer) error {
	defer m.close()
	if err := m.init(configPath, nil, false); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(m.bg, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := m.updater.CheckForUpdates(ctx, false); err != nil {
		return err
	}
	st := m.updater.Snapshot()
	if st.Info == nil {
		fmt.Fprintf(out, "advshortcut %s is up to date\n", version.Version)
		return nil
	}
	fmt.Fprintf(out, "New version %s available (current %s)\n", st.Info.Version, st.Info.CurrentVersion)
	if st.Info.Body != "" {
		fmt.Fprintf(out, "\n%s\n\n", strings.TrimSpace(st.Info.Body))
	}
	if checkOnly || (confirm != nil && !confirm(st.Info)) {
		return nil
	}

	last := -1
	unsub := m.updater.Subscribe(func(s updater.State) {
		if s.Status != updater.StatusDownloading {
			return
		}
		if p := int(s.Progress.Percent); p/10 != last/10 {
			last = p
			fmt.Fprintf(out, "Downloading... %d%% (%s)\n", p, util.ByteCountSI(int64(s.Progress.Downloaded)))
		}
	})
	defer unsub()

	if err := m.updater.DownloadAndInstall(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Installed %s, restart advshortcut to use it\n", st.Info.Version)
	return nil
}

// loadData opens the configured storage and loads the collections.
func (m *Manager) loadData(configPath string) error {
	if err := m.init(configPath, nil, false); err != nil {
		return err
	}
	return m.store.Load(m.bg)
}

// CommandExport writes the collections to path, or to out when path is "-".
func (m *Manager) CommandExport(configPath, path, format string, out io.Writer) error {
	defer m.close()
	if err := m.loadData(configPath); err != nil {
		return err
	}

	if format == "" {
		format = storage.FormatOf(path)
	}
	if path == "-" || path == "" {
		return storage.Export(out, m.store.Snapshot(), format)
	}
	var buf bytes.Buffer
	if err := storage.Export(&buf, m.store.Snapshot(), format); err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return errors.FileWriteFailed(path, err)
	}
	log.Info().Str("file", path).Str("format", format).Msg("data exported")
	return nil
}

// CommandImport replaces the collections with the content of path.
func (m *Manager) CommandImport(configPath, path, format string) error {
	defer m.close()
	if err := m.loadData(configPath); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound(path)
		}
		return errors.FileReadFailed(path, err)
	}
	defer f.Close()

	if format == "" {
		format = storage.FormatOf(path)
	}
	data, err := storage.Import(f, format)
	if err != nil {
		return err
	}
	if err := m.store.Replace(m.bg, data); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("shortcuts", len(data.Shortcuts)).Int("groups", len(data.Groups)).Msg("data imported")
	return nil
}

func (m *Manager) backups() (*storage.Backups, error) {
	return storage.NewBackups(storage.BackupDir(m.conf.GetDataDir()), m.conf.Storage.Backups, m.conf.Storage.Compression)
}

// CommandBackup takes a snapshot of the current data and returns its name.
func (m *Manager) CommandBackup(configPath string) (string, error) {
	defer m.close()
	if err := m.loadData(configPath); err != nil {
		return "", err
	}

	return m.BackupNow()
}

// CommandBackups lists the available snapshots, newest first.
func (m *Manager) CommandBackups(configPath string) ([]storage.BackupFile, error) {
	defer m.close()
	if err := m.init(configPath, nil, false); err != nil {
		return nil, err
	}

	b, err := m.backups()
	if err != nil {
		return nil, err
	}
	return b.List()
}

// CommandRestore replaces the collections with a snapshot. An empty name
// picks the newest one.
func (m *Manager) CommandRestore(configPath, name string) (string, error) {
	defer m.close()
	if err := m.loadData(configPath); err != nil {
		return "", err
	}

	b, err := m.backups()
	if err != nil {
		return "", err
	}
	if name == "" {
		list, err := b.List()
		if err != nil {
			return "", err
		}
		if len(list) == 0 {
			return "", errors.NotFound("backup", nil)
		}
		name = list[0].Name
	}
	data, err := b.Restore(name)
	if err != nil {
		return "", err
	}
	if err := m.store.Replace(m.bg, data); err != nil {
		return "", err
	}
	log.Info().Str("backup", name).Msg("data restored")
	return name, nil
}
