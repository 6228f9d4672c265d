package advshortcut

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sjzar/advshortcut/internal/advshortcut/ctx"
	"github.com/sjzar/advshortcut/internal/orchestrator"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/internal/ui/footer"
	"github.com/sjzar/advshortcut/internal/ui/form"
	"github.com/sjzar/advshortcut/internal/ui/help"
	"github.com/sjzar/advshortcut/internal/ui/infobar"
	"github.com/sjzar/advshortcut/internal/ui/menu"
	"github.com/sjzar/advshortcut/internal/ui/style"
	"github.com/sjzar/advshortcut/internal/updater"
	"github.com/sjzar/advshortcut/pkg/version"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	RefreshInterval = 1000 * time.Millisecond
)

// Overlay pages, topmost first. Esc closes the first one present.
const (
	pageActionForm = "action"
	pageActions    = "actions"
	pagePicker     = "picker"
	pageEditor     = "editor"
	pageSubmenu2   = "submenu2"
	pageSubmenu    = "submenu"
	pageModal      = "modal"
	pageProgress   = "progress"
)

var escPages = []string{pagePicker, pageActionForm, pageActions, pageEditor, pageSubmenu2, pageSubmenu}

const (
	tabShortcuts = iota
	tabGroups
	tabUpdate
	tabSettings
	tabHelp
	tabCount
)

type App struct {
	*tview.Application

	ctx         *ctx.Context
	m           *Manager
	stopRefresh chan struct{}
	stopOnce    sync.Once

	// page
	mainPages *tview.Pages
	infoBar   *infobar.InfoBar
	tabPages  *tview.Pages
	footer    *footer.Footer
	progress  *tview.TextView

	// tab
	shortcuts  *menu.Menu
	groups     *menu.Menu
	updateMenu *menu.Menu
	updateText *tview.TextView
	settings   *menu.Menu
	help       *help.Help
	activeTab  int

	unsubscribe []func()
}

func NewApp(ctx *ctx.Context, m *Manager) *App {
	app := &App{
		ctx:         ctx,
		m:           m,
		Application: tview.NewApplication(),
		stopRefresh: make(chan struct{}),
		mainPages:   tview.NewPages(),
		infoBar:     infobar.New(),
		tabPages:    tview.NewPages(),
		footer:      footer.New(),
		progress:    tview.NewTextView(),
		shortcuts:   menu.New("Shortcuts").SetHeaders("Shortcut", "Actions"),
		groups:      menu.New("Groups").SetHeaders("Group", "Shortcuts"),
		updateMenu:  menu.New("Update"),
		updateText:  tview.NewTextView(),
		settings:    menu.New("Settings"),
		help:        help.New(),
	}

	app.progress.SetDynamicColors(true).SetWrap(true)
	app.progress.SetBorder(true).SetBorderColor(style.BorderColor).SetTitle("Running")
	app.updateText.SetDynamicColors(true).SetWrap(true)
	app.updateText.SetBorder(true).SetBorderColor(style.BorderColor).SetTitle("Release")

	app.initUpdateMenu()
	app.initSettings()
	app.reloadData()
	app.renderUpdate(m.updater.Snapshot())

	app.unsubscribe = append(app.unsubscribe,
		m.store.Subscribe(func(store.Event) { app.queue(app.reloadData) }),
		m.updater.Subscribe(func(s updater.State) { app.queue(func() { app.renderUpdate(s) }) }),
	)

	return app
}

func (a *App) Run() error {

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.infoBar, infobar.InfoBarViewHeight, 0, false).
		AddItem(a.tabPages, 0, 1, true).
		AddItem(a.footer, 1, 1, false)

	a.mainPages.AddPage("main", flex, true, true)

	update := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.updateMenu, 6, 0, true).
		AddItem(a.updateText, 0, 1, false)

	a.tabPages.
		AddPage(fmt.Sprint(tabShortcuts), a.shortcuts, true, true).
		AddPage(fmt.Sprint(tabGroups), a.groups, true, false).
		AddPage(fmt.Sprint(tabUpdate), update, true, false).
		AddPage(fmt.Sprint(tabSettings), a.settings, true, false).
		AddPage(fmt.Sprint(tabHelp), a.help, true, false)

	a.SetInputCapture(a.inputCapture)

	go a.refresh()

	if err := a.SetRoot(a.mainPages, true).EnableMouse(false).Run(); err != nil {
		return err
	}

	return nil
}

func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopRefresh)
		for _, fn := range a.unsubscribe {
			fn()
		}
		a.Application.Stop()
	})
}

// AfterStart runs fn on its own goroutine once the event loop is live.
func (a *App) AfterStart(fn func()) {
	go func() {
		// returns only after the loop ran the update
		a.QueueUpdate(func() {})
		fn()
	}()
}

// queue runs fn on the UI goroutine without blocking the caller.
func (a *App) queue(fn func()) {
	go a.QueueUpdateDraw(fn)
}

func (a *App) switchTab(step int) {
	index := (a.activeTab + step) % tabCount
	if index < 0 {
		index = tabCount - 1
	}
	a.activeTab = index
	a.tabPages.SwitchToPage(fmt.Sprint(a.activeTab))
}

func (a *App) refresh() {
	tick := time.NewTicker(RefreshInterval)
	defer tick.Stop()

	for {
		select {
		case <-a.stopRefresh:
			return
		case <-tick.C:
			c := a.ctx.Snapshot()
			a.QueueUpdateDraw(func() {
				a.infoBar.UpdateBasicInfo(version.Version, runtime.GOOS+"/"+runtime.GOARCH)
				a.infoBar.UpdateDataUsageDir(c.DataUsage, c.DataDir)
				a.infoBar.UpdateStorage(c.StorageType, c.StoragePath)
				if c.HTTPEnabled {
					a.infoBar.UpdateHTTPServer(fmt.Sprintf("[green][started][white] [%s]", c.HTTPAddr))
				} else {
					a.infoBar.UpdateHTTPServer("[stopped]")
				}
				a.infoBar.UpdateUpdateStatus(c.UpdateStatus)
				a.infoBar.UpdateLastRun(c.LastRun)
			})
		}
	}
}

func (a *App) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}

	// the progress view blocks navigation until the request settles
	if a.mainPages.HasPage(pageProgress) {
		return nil
	}

	if event.Key() == tcell.KeyEscape {
		for _, name := range escPages {
			if a.mainPages.HasPage(name) {
				a.mainPages.RemovePage(name)
				return nil
			}
		}
	}

	if a.tabPages.HasFocus() {
		switch event.Key() {
		case tcell.KeyLeft:
			a.switchTab(-1)
			return nil
		case tcell.KeyRight:
			a.switchTab(1)
			return nil
		case tcell.KeyRune:
			switch a.activeTab {
			case tabShortcuts:
				if a.handleShortcutKey(event.Rune()) {
					return nil
				}
			case tabGroups:
				if a.handleGroupKey(event.Rune()) {
					return nil
				}
			}
		}
	}

	return event
}

// ShowDefault closes every overlay and returns to the shortcuts tab.
func (a *App) ShowDefault() {
	a.queue(func() {
		for _, name := range append(escPages, pageModal, pageProgress) {
			a.mainPages.RemovePage(name)
		}
		a.activeTab = tabShortcuts
		a.tabPages.SwitchToPage(fmt.Sprint(tabShortcuts))
		a.SetFocus(a.shortcuts)
	})
}

// OnOrchestratorState mirrors the command line request in the progress view.
func (a *App) OnOrchestratorState(s orchestrator.State) {
	a.queue(func() {
		if orchestrator.ShouldShowProgress(s.Request, s.Status) {
			a.renderProgress(s)
			if !a.mainPages.HasPage(pageProgress) {
				a.mainPages.AddPage(pageProgress, a.progress, true, true)
			}
			return
		}
		a.mainPages.RemovePage(pageProgress)
		if s.Status == orchestrator.StatusError && s.Request == nil {
			a.showError(fmt.Errorf("%s", s.Message))
		}
	})
}

func (a *App) renderProgress(s orchestrator.State) {
	var b strings.Builder
	switch s.Status {
	case orchestrator.StatusRunning:
		fmt.Fprintf(&b, "[%s]Running[white] %s\n\n", style.GetColorHex(style.RunningColor), tview.Escape(s.Message))
	case orchestrator.StatusError:
		fmt.Fprintf(&b, "[%s]Failed[white] %s\n\n", style.GetColorHex(style.FailedColor), tview.Escape(s.Message))
	}
	for _, line := range s.Logs {
		fmt.Fprintf(&b, "%s\n", tview.Escape(line))
	}
	a.progress.SetText(b.String())
}

func (a *App) initSettings() {
	httpServer := &menu.Item{
		Index:       1,
		Name:        "Start HTTP service",
		Description: "Start the local HTTP & MCP server",
		Selected: func(i *menu.Item) {
			modal := tview.NewModal()

			start := !a.ctx.Snapshot().HTTPEnabled
			if start {
				modal.SetText("Starting HTTP service...")
			} else {
				modal.SetText("Stopping HTTP service...")
			}
			a.mainPages.AddPage(pageModal, modal, true, true)
			a.SetFocus(modal)

			go func() {
				var err error
				if start {
					err = a.m.StartService()
				} else {
					err = a.m.StopService()
				}

				a.QueueUpdateDraw(func() {
					switch {
					case err != nil && start:
						modal.SetText("Start HTTP service failed: " + err.Error())
					case err != nil:
						modal.SetText("Stop HTTP service failed: " + err.Error())
					case start:
						modal.SetText("HTTP service started")
					default:
						modal.SetText("HTTP service stopped")
					}

					a.updateSettingsState()

					modal.AddButtons([]string{"OK"})
					modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
						a.mainPages.RemovePage(pageModal)
					})
					a.SetFocus(modal)
				})
			}()
		},
	}

	a.settings.AddItem(httpServer)
	a.settings.AddItem(&menu.Item{
		Index:       2,
		Name:        "Set HTTP address",
		Description: "Address the HTTP service listens on",
		Selected:    func(*menu.Item) { a.settingHTTPAddr() },
	})
	a.settings.AddItem(&menu.Item{
		Index:       3,
		Name:        "Reload data",
		Description: "Read shortcuts and groups from storage again",
		Selected: func(*menu.Item) {
			a.runTask("Reloading...", func() (string, error) {
				return "Data reloaded", a.m.store.Reload(a.m.bg)
			})
		},
	})
	a.settings.AddItem(&menu.Item{
		Index:       4,
		Name:        "Backup data",
		Description: "Save a snapshot of the current data",
		Selected: func(*menu.Item) {
			a.runTask("Saving backup...", func() (string, error) {
				name, err := a.m.BackupNow()
				return "Backup saved as " + name, err
			})
		},
	})
	a.settings.AddItem(&menu.Item{
		Index:       9,
		Name:        "Quit",
		Description: "Quit the program",
		Selected: func(i *menu.Item) {
			a.Stop()
		},
	})
	a.updateSettingsState()
}

func (a *App) updateSettingsState() {
	for _, item := range a.settings.GetItems() {
		if item.Index == 1 {
			if a.ctx.Snapshot().HTTPEnabled {
				item.Name = "Stop HTTP service"
				item.Description = "Stop the local HTTP & MCP server"
			} else {
				item.Name = "Start HTTP service"
				item.Description = "Start the local HTTP & MCP server"
			}
		}
	}
}

func (a *App) settingHTTPAddr() {
	formView := form.NewForm("Set HTTP address")

	tempHTTPAddr := a.ctx.GetHTTPAddr()

	formView.AddInputField("Address", tempHTTPAddr, 0, nil, func(text string) {
		tempHTTPAddr = text
	})

	formView.AddButton("Save", func() {
		if err := a.m.SetHTTPAddr(tempHTTPAddr); err != nil {
			a.showError(err)
			return
		}
		a.mainPages.RemovePage(pageSubmenu2)
		a.showInfo("HTTP address set to " + a.ctx.GetHTTPAddr() + "\nRestart the HTTP service to apply it")
	})

	formView.AddButton("Cancel", func() {
		a.mainPages.RemovePage(pageSubmenu2)
	})

	a.mainPages.AddPage(pageSubmenu2, formView, true, true)
	a.SetFocus(formView)
}

// runTask shows a modal while fn runs and replaces it with the outcome.
func (a *App) runTask(text string, fn func() (string, error)) {
	modal := tview.NewModal().SetText(text)
	a.mainPages.AddPage(pageModal, modal, true, true)
	a.SetFocus(modal)

	go func() {
		msg, err := fn()
		a.QueueUpdateDraw(func() {
			if err != nil {
				modal.SetText(err.Error())
			} else {
				modal.SetText(msg)
			}
			modal.AddButtons([]string{"OK"})
			modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				a.mainPages.RemovePage(pageModal)
			})
			a.SetFocus(modal)
		})
	}()
}

// confirm asks a yes/no question and runs fn on yes.
func (a *App) confirm(text string, fn func()) {
	a.showModal(text, []string{"Yes", "No"}, func(buttonIndex int, buttonLabel string) {
		a.mainPages.RemovePage(pageModal)
		if buttonLabel == "Yes" {
			fn()
		}
	})
}

func (a *App) showModal(text string, buttons []string, doneFunc func(buttonIndex int, buttonLabel string)) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons(buttons).
		SetDoneFunc(doneFunc)

	a.mainPages.AddPage(pageModal, modal, true, true)
	a.SetFocus(modal)
}

func (a *App) showError(err error) {
	a.showModal(err.Error(), []string{"OK"}, func(buttonIndex int, buttonLabel string) {
		a.mainPages.RemovePage(pageModal)
	})
}

func (a *App) showInfo(text string) {
	a.showModal(text, []string{"OK"}, func(buttonIndex int, buttonLabel string) {
		a.mainPages.RemovePage(pageModal)
	})
}

// reloadData refreshes both collection views from the store.
func (a *App) reloadData() {
	a.reloadShortcuts()
	a.reloadGroups()
}

// progressBar renders percent as a bar of width cells.
func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%s]%s[%s]%s[white]",
		style.GetColorHex(style.PrgBarColor), strings.Repeat(style.ProgressBarCell, filled),
		style.GetColorHex(style.PrgBgColor), strings.Repeat(style.ProgressBarCell, width-filled))
}
