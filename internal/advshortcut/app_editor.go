package advshortcut

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/sjzar/advshortcut/internal/editor"
	"github.com/sjzar/advshortcut/internal/host"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/ui/form"
	"github.com/sjzar/advshortcut/internal/ui/menu"
)

// openEditor edits sc, or starts a new shortcut in groupID when sc is nil.
func (a *App) openEditor(sc *model.Shortcut, groupID string) {
	d := editor.NewDraft(sc)
	if sc == nil && groupID != "" {
		d.SetGroup(groupID)
	}
	a.showDraft(d)
}

func (a *App) showDraft(d *editor.Draft) {
	title := "Edit shortcut"
	if d.IsNew() {
		title = "New shortcut"
	}
	formView := form.NewForm(title)
	formView.AddInputField("Name", d.Name, 30, nil, d.SetName)
	formView.AddInputField("Icon", d.Icon, 20, nil, d.SetIcon)

	groups := a.m.store.Groups()
	options := make([]string, len(groups))
	initial := 0
	for i, g := range groups {
		options[i] = g.Name
		if g.ID == d.GroupID {
			initial = i
		}
	}
	formView.AddDropDown("Group", options, initial, func(option string, index int) {
		if index >= 0 && index < len(groups) {
			d.SetGroup(groups[index].ID)
		}
	})

	formView.AddButton("Actions", func() { a.showActions(d) })
	formView.AddButton("Save", func() {
		sc, err := d.Build(time.Now())
		if err != nil {
			a.showError(err)
			return
		}
		if d.IsNew() {
			sc, err = a.m.store.AddShortcut(a.m.bg, sc)
		} else {
			sc, err = a.m.store.UpdateShortcut(a.m.bg, sc)
		}
		if err != nil {
			a.showError(err)
			return
		}
		a.mainPages.RemovePage(pageEditor)
		a.shortcuts.SelectKey(shortcutKey(sc.ID))
	})
	formView.AddButton("Cancel", func() {
		a.mainPages.RemovePage(pageEditor)
	})

	a.mainPages.AddPage(pageEditor, formView, true, true)
	a.SetFocus(formView)
}

// showActions lists the draft actions with entries to add each kind.
func (a *App) showActions(d *editor.Draft) {
	subMenu := menu.NewSubMenu(fmt.Sprintf("Actions of %s", strings.TrimSpace(d.Name)))

	var items []*menu.Item
	for i, it := range d.Items() {
		id := it.ID
		items = append(items, &menu.Item{
			Index:       i + 1,
			Key:         id,
			Name:        fmt.Sprintf("%d. %s", i+1, it.Action.Kind()),
			Description: tview.Escape(model.Describe(it.Action)),
			Selected:    func(*menu.Item) { a.showAction(d, id) },
		})
	}
	for _, kind := range model.ActionKinds {
		kind := kind
		items = append(items, &menu.Item{
			Key:         string(kind),
			Name:        "+ " + string(kind),
			Description: "Add a " + strings.ReplaceAll(string(kind), "_", " ") + " action",
			Selected: func(*menu.Item) {
				id, err := d.AddAction(kind)
				if err != nil {
					a.showError(err)
					return
				}
				a.showActions(d)
				a.showAction(d, id)
			},
		})
	}
	items = append(items, &menu.Item{
		Name:        "Done",
		Description: "Back to the shortcut",
		Selected:    func(*menu.Item) { a.mainPages.RemovePage(pageActions) },
	})
	subMenu.SetItems(items)

	a.mainPages.AddPage(pageActions, subMenu, true, true)
	a.SetFocus(subMenu)
}

func (a *App) showAction(d *editor.Draft, id string) {
	for i, it := range d.Items() {
		if it.ID == id {
			a.showActionForm(d, id, i, it.Action)
			return
		}
	}
}

// showActionForm edits act, the working copy of item id at position pos.
func (a *App) showActionForm(d *editor.Draft, id string, pos int, act model.Action) {
	formView := form.NewForm(fmt.Sprintf("Action %d: %s", pos+1, act.Kind()))

	var build func() (model.Action, error)
	switch v := act.(type) {
	case model.Launch:
		args := strings.Join(quoteArgs(v.Args), " ")
		formView.AddInputField("Path", v.Path, 40, nil, func(text string) { v.Path = text })
		formView.AddInputField("Arguments", args, 40, nil, func(text string) { args = text })
		window := addWindowFields(formView, v.WindowConfig)
		build = func() (model.Action, error) {
			v.Args = splitArgs(args)
			wc, err := window()
			v.WindowConfig = wc
			return v, err
		}
		formView.AddButton("Apps", func() {
			a.pickApp(func(app model.InstalledApp) {
				next, err := build()
				if err != nil {
					next = v
				}
				l := next.(model.Launch)
				l.Path, l.Args = a.m.resolveApp(app)
				a.showActionForm(d, id, pos, l)
			})
		})
		formView.AddButton("Capture window", func() {
			next, err := build()
			if err != nil {
				a.showError(err)
				return
			}
			l := next.(model.Launch)
			name := processName(l.Path)
			wc, err := a.m.host.WindowPosition(a.m.bg, name)
			if err != nil {
				a.showError(err)
				return
			}
			l.WindowConfig = &wc
			a.showActionForm(d, id, pos, l)
		})
	case model.Kill:
		formView.AddInputField("Process", v.ProcessName, 30, nil, func(text string) { v.ProcessName = text })
		build = func() (model.Action, error) { return v, nil }
		formView.AddButton("Processes", func() {
			a.pickProcess(func(p model.ProcessInfo) {
				v.ProcessName = p.Name
				a.showActionForm(d, id, pos, v)
			})
		})
	case model.OpenFolder:
		formView.AddInputField("Folder", v.Path, 40, nil, func(text string) { v.Path = text })
		window := addWindowFields(formView, v.WindowConfig)
		build = func() (model.Action, error) {
			wc, err := window()
			v.WindowConfig = wc
			return v, err
		}
	case model.OpenURL:
		formView.AddInputField("URL", v.URL, 40, nil, func(text string) { v.URL = text })
		window := addWindowFields(formView, v.WindowConfig)
		build = func() (model.Action, error) {
			wc, err := window()
			v.WindowConfig = wc
			return v, err
		}
	case model.Delay:
		ms := strconv.FormatUint(v.Ms, 10)
		formView.AddInputField("Milliseconds", ms, 10, tview.InputFieldInteger, func(text string) { ms = text })
		build = func() (model.Action, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(ms), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid delay %q", ms)
			}
			v.Ms = n
			return v, nil
		}
	default:
		a.showError(fmt.Errorf("unsupported action %s", act.Kind()))
		return
	}

	closeForm := func() {
		a.mainPages.RemovePage(pageActionForm)
		a.showActions(d)
	}
	formView.AddButton("Save", func() {
		next, err := build()
		if err == nil {
			err = d.UpdateAction(id, next)
		}
		if err != nil {
			a.showError(err)
			return
		}
		closeForm()
	})
	formView.AddButton("Up", func() {
		if err := d.MoveAction(id, pos-1); err != nil {
			a.showError(err)
			return
		}
		closeForm()
	})
	formView.AddButton("Down", func() {
		if err := d.MoveAction(id, pos+1); err != nil {
			a.showError(err)
			return
		}
		closeForm()
	})
	formView.AddButton("Remove", func() {
		if err := d.RemoveAction(id); err != nil {
			a.showError(err)
			return
		}
		closeForm()
	})
	formView.AddButton("Cancel", func() {
		a.mainPages.RemovePage(pageActionForm)
	})

	a.mainPages.AddPage(pageActionForm, formView, true, true)
	a.SetFocus(formView)
}

// addWindowFields adds the optional placement inputs; empty fields stay
// unset.
func addWindowFields(f *form.Form, wc *model.WindowConfig) func() (*model.WindowConfig, error) {
	fields := []struct {
		label string
		value *int32
	}{{"X", nil}, {"Y", nil}, {"Width", nil}, {"Height", nil}}
	if wc != nil {
		fields[0].value, fields[1].value, fields[2].value, fields[3].value = wc.X, wc.Y, wc.Width, wc.Height
	}
	texts := make([]string, len(fields))
	for i, field := range fields {
		if field.value != nil {
			texts[i] = strconv.FormatInt(int64(*field.value), 10)
		}
		i := i
		f.AddInputField("Window "+field.label, texts[i], 8, tview.InputFieldInteger, func(text string) { texts[i] = text })
	}
	return func() (*model.WindowConfig, error) {
		values := make([]*int32, len(texts))
		for i, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			n, err := strconv.ParseInt(text, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid window %s %q", strings.ToLower(fields[i].label), text)
			}
			v := int32(n)
			values[i] = &v
		}
		out := &model.WindowConfig{X: values[0], Y: values[1], Width: values[2], Height: values[3]}
		if out.IsEmpty() {
			return nil, nil
		}
		return out, nil
	}
}

// splitArgs splits an argument line honoring double quotes.
func splitArgs(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	// SplitExec treats the first field as the program
	_, args := host.SplitExec("x " + line)
	return args
}

func quoteArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t\"") {
			arg = strconv.Quote(arg)
		}
		out[i] = arg
	}
	return out
}

// processName derives the process name of an executable path.
func processName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (a *App) pickApp(pick func(model.InstalledApp)) {
	a.runPicker("Loading applications...", func() ([]*menu.Item, error) {
		apps, err := a.m.host.InstalledApps(a.m.bg)
		if err != nil {
			return nil, err
		}
		items := make([]*menu.Item, len(apps))
		for i, app := range apps {
			app := app
			items[i] = &menu.Item{
				Index:       i,
				Name:        tview.Escape(app.Name),
				Description: tview.Escape(app.Path),
				Selected: func(*menu.Item) {
					a.mainPages.RemovePage(pagePicker)
					pick(app)
				},
			}
		}
		return items, nil
	}, "Applications")
}

func (a *App) pickProcess(pick func(model.ProcessInfo)) {
	a.runPicker("Loading processes...", func() ([]*menu.Item, error) {
		procs, err := a.m.host.ProcessList(a.m.bg)
		if err != nil {
			return nil, err
		}
		items := make([]*menu.Item, len(procs))
		for i, p := range procs {
			p := p
			items[i] = &menu.Item{
				Index:       i,
				Name:        tview.Escape(p.Name),
				Description: fmt.Sprintf("pid %d", p.PID),
				Selected: func(*menu.Item) {
					a.mainPages.RemovePage(pagePicker)
					pick(p)
				},
			}
		}
		return items, nil
	}, "Processes")
}

// runPicker loads items in the background and shows them as a submenu.
func (a *App) runPicker(loading string, load func() ([]*menu.Item, error), title string) {
	modal := tview.NewModal().SetText(loading)
	a.mainPages.AddPage(pageModal, modal, true, true)
	a.SetFocus(modal)

	go func() {
		items, err := load()
		a.QueueUpdateDraw(func() {
			a.mainPages.RemovePage(pageModal)
			if err != nil {
				a.showError(err)
				return
			}
			if len(items) == 0 {
				a.showInfo("Nothing found")
				return
			}
			subMenu := menu.NewSubMenu(title)
			subMenu.SetItems(items)
			a.mainPages.AddPage(pagePicker, subMenu, true, true)
			a.SetFocus(subMenu)
		})
	}()
}
