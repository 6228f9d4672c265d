package advshortcut

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/sjzar/advshortcut/internal/ui/menu"
	"github.com/sjzar/advshortcut/internal/updater"
	"github.com/sjzar/advshortcut/pkg/util"
	"github.com/sjzar/advshortcut/pkg/version"
)

const progressBarWidth = 30

const (
	updateCheck = iota + 1
	updateInstall
	updateDismiss
)

func (a *App) initUpdateMenu() {
	a.updateMenu.AddItem(&menu.Item{
		Index:       updateCheck,
		Name:        "Check for updates",
		Description: "Look for a newer release",
		Selected: func(*menu.Item) {
			go func() {
				if err := a.m.updater.CheckForUpdates(a.m.bg, false); err != nil {
					a.queue(func() { a.showError(err) })
				}
			}()
		},
	})
	a.updateMenu.AddItem(&menu.Item{
		Index:       updateInstall,
		Name:        "Install update",
		Description: "Download and install the new release",
		Hidden:      true,
		Selected: func(*menu.Item) {
			info := a.m.updater.Info()
			if info == nil {
				return
			}
			a.confirm(fmt.Sprintf("Install %s now?", info.Version), a.installUpdate)
		},
	})
	a.updateMenu.AddItem(&menu.Item{
		Index:       updateDismiss,
		Name:        "Dismiss",
		Description: "Hide the update notice",
		Hidden:      true,
		Selected: func(*menu.Item) {
			if err := a.m.updater.Dismiss(); err != nil {
				a.showError(err)
			}
		},
	})
}

func (a *App) installUpdate() {
	go func() {
		err := a.m.updater.DownloadAndInstall(a.m.bg)
		a.queue(func() {
			if err != nil {
				a.showError(err)
				return
			}
			a.showModal("Update installed. Restart now?", []string{"Restart", "Later"}, func(buttonIndex int, buttonLabel string) {
				a.mainPages.RemovePage(pageModal)
				if buttonLabel == "Restart" {
					a.restart()
				}
			})
		})
	}()
}

// restart stops the UI and replaces the process with the installed binary.
func (a *App) restart() {
	a.Stop()
	a.m.close()
	if err := updater.Restart(); err != nil {
		a.m.host.Exit(1)
	}
}

// renderUpdate shows s in the update tab and toggles the available actions.
func (a *App) renderUpdate(s updater.State) {
	for _, item := range a.updateMenu.GetItems() {
		switch item.Index {
		case updateCheck:
			item.Hidden = s.Status.Active()
		case updateInstall:
			item.Hidden = s.Status != updater.StatusAvailable
		case updateDismiss:
			item.Hidden = s.Status != updater.StatusAvailable && s.Status != updater.StatusError
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Current version:[white] %s\n", version.Version)
	fmt.Fprintf(&b, "[yellow]Status:[white] %s\n", s.Status)
	if s.Info != nil {
		fmt.Fprintf(&b, "[yellow]Available:[white] %s", s.Info.Version)
		if s.Info.Date != "" {
			fmt.Fprintf(&b, " (%s)", s.Info.Date)
		}
		b.WriteString("\n")
	}
	switch s.Status {
	case updater.StatusDownloading, updater.StatusInstalling:
		fmt.Fprintf(&b, "\n%s %3.0f%%  %s", progressBar(s.Progress.Percent, progressBarWidth), s.Progress.Percent, util.ByteCountSI(int64(s.Progress.Downloaded)))
		if s.Progress.Total > 0 {
			fmt.Fprintf(&b, " / %s", util.ByteCountSI(int64(s.Progress.Total)))
		}
		b.WriteString("\n")
	case updater.StatusError:
		fmt.Fprintf(&b, "\n[red]%s[white]\n", tview.Escape(s.Error))
	}
	if s.Info != nil && s.Info.Body != "" {
		fmt.Fprintf(&b, "\n%s\n", tview.Escape(strings.TrimSpace(s.Info.Body)))
	}
	a.updateText.SetText(b.String())
}
