package advshortcut

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/internal/ui/form"
	"github.com/sjzar/advshortcut/internal/ui/menu"
)

const (
	groupKeyPrefix    = "g:"
	shortcutKeyPrefix = "s:"

	summaryActions = 3
)

func groupKey(id string) string    { return groupKeyPrefix + id }
func shortcutKey(id string) string { return shortcutKeyPrefix + id }

// summarize joins the first actions of sc for the list view.
func summarize(sc model.Shortcut) string {
	if len(sc.Actions) == 0 {
		return "no actions"
	}
	parts := make([]string, 0, summaryActions+1)
	for i, act := range sc.Actions {
		if i == summaryActions {
			parts = append(parts, fmt.Sprintf("+%d", len(sc.Actions)-summaryActions))
			break
		}
		parts = append(parts, model.Describe(act))
	}
	return tview.Escape(strings.Join(parts, " > "))
}

func expandMarker(g model.Group) string {
	if g.IsExpanded {
		return "▾"
	}
	return "▸"
}

func (a *App) reloadShortcuts() {
	switch a.m.store.Status() {
	case store.StatusLoading:
		a.shortcuts.SetItems([]*menu.Item{{Name: "Loading..."}})
		return
	case store.StatusError:
		msg := "load failed"
		if err := a.m.store.Err(); err != nil {
			msg = err.Error()
		}
		a.shortcuts.SetItems([]*menu.Item{{Name: "[red]Error[white]", Description: tview.Escape(msg)}})
		return
	}

	shortcuts := a.m.store.Shortcuts()
	var items []*menu.Item
	for _, g := range a.m.store.Groups() {
		g := g
		members := model.ShortcutsInGroup(shortcuts, g.ID)
		items = append(items, &menu.Item{
			Key:         groupKey(g.ID),
			Name:        fmt.Sprintf("%s [::b]%s[::-]", expandMarker(g), tview.Escape(g.Name)),
			Description: fmt.Sprintf("%d shortcuts", len(members)),
			Selected:    func(*menu.Item) { a.toggleGroup(g.ID) },
		})
		if !g.IsExpanded {
			continue
		}
		for _, sc := range members {
			id := sc.ID
			items = append(items, &menu.Item{
				Key:         shortcutKey(id),
				Name:        "   " + tview.Escape(sc.Name),
				Description: summarize(sc),
				Selected:    func(*menu.Item) { a.runShortcut(id) },
			})
		}
	}
	if len(items) == 0 {
		items = append(items, &menu.Item{Name: "No shortcuts", Description: "press n to create one"})
	}
	a.shortcuts.SetItems(items)
}

func (a *App) reloadGroups() {
	if a.m.store.Status() != store.StatusReady {
		a.groups.SetItems(nil)
		return
	}
	shortcuts := a.m.store.Shortcuts()
	var items []*menu.Item
	for _, g := range a.m.store.Groups() {
		id := g.ID
		desc := fmt.Sprintf("%d shortcuts", len(model.ShortcutsInGroup(shortcuts, id)))
		if id == model.DefaultGroupID {
			desc += " (default)"
		}
		items = append(items, &menu.Item{
			Key:         groupKey(id),
			Name:        fmt.Sprintf("%s %s", expandMarker(g), tview.Escape(g.Name)),
			Description: desc,
			Selected:    func(*menu.Item) { a.toggleGroup(id) },
		})
	}
	a.groups.SetItems(items)
}

// selection returns the id behind the highlighted row of m for prefix.
func selection(m *menu.Menu, prefix string) (string, bool) {
	item := m.Current()
	if item == nil || !strings.HasPrefix(item.Key, prefix) {
		return "", false
	}
	return strings.TrimPrefix(item.Key, prefix), true
}

// currentGroup returns the group of the highlighted shortcuts row.
func (a *App) currentGroup() string {
	if id, ok := selection(a.shortcuts, groupKeyPrefix); ok {
		return id
	}
	if id, ok := selection(a.shortcuts, shortcutKeyPrefix); ok {
		if sc, ok := a.m.store.Shortcut(id); ok {
			return sc.GroupID
		}
	}
	return model.DefaultGroupID
}

func (a *App) handleShortcutKey(r rune) bool {
	switch r {
	case 'n':
		a.openEditor(nil, a.currentGroup())
	case 'e':
		id, ok := selection(a.shortcuts, shortcutKeyPrefix)
		if !ok {
			return true
		}
		if sc, ok := a.m.store.Shortcut(id); ok {
			a.openEditor(&sc, "")
		}
	case 'd':
		id, ok := selection(a.shortcuts, shortcutKeyPrefix)
		if !ok {
			return true
		}
		sc, ok := a.m.store.Shortcut(id)
		if !ok {
			return true
		}
		a.confirm(fmt.Sprintf("Delete shortcut %q?", sc.Name), func() {
			if err := a.m.store.DeleteShortcut(a.m.bg, id); err != nil {
				a.showError(err)
			}
		})
	case 'c':
		id, ok := selection(a.shortcuts, shortcutKeyPrefix)
		if !ok {
			return true
		}
		a.runTask("Creating desktop shortcut...", func() (string, error) {
			path, err := a.m.CreateDesktopShortcut(id)
			return "Created " + path, err
		})
	case '[', ']':
		id, ok := selection(a.shortcuts, shortcutKeyPrefix)
		if !ok {
			return true
		}
		step := 1
		if r == '[' {
			step = -1
		}
		if err := a.moveShortcut(id, step); err != nil {
			a.showError(err)
			return true
		}
		a.shortcuts.SelectKey(shortcutKey(id))
	default:
		return false
	}
	return true
}

// moveShortcut swaps id with its neighbour inside its group.
func (a *App) moveShortcut(id string, step int) error {
	sc, ok := a.m.store.Shortcut(id)
	if !ok {
		return nil
	}
	members := model.ShortcutsInGroup(a.m.store.Shortcuts(), sc.GroupID)
	seq := make([]string, len(members))
	from := -1
	for i, m := range members {
		seq[i] = m.ID
		if m.ID == id {
			from = i
		}
	}
	to := from + step
	if from < 0 || to < 0 || to >= len(seq) {
		return nil
	}
	seq[from], seq[to] = seq[to], seq[from]
	return a.m.store.ReorderShortcuts(a.m.bg, sc.GroupID, seq)
}

func (a *App) runShortcut(id string) {
	sc, ok := a.m.store.Shortcut(id)
	if !ok {
		return
	}
	a.runTask(fmt.Sprintf("Running %s...", sc.Name), func() (string, error) {
		logs, err := a.m.ExecuteShortcut(a.m.bg, id)
		out := strings.Join(logs, "\n")
		if err != nil {
			if out != "" {
				return "", fmt.Errorf("%s\n\n%w", out, err)
			}
			return "", err
		}
		if out == "" {
			out = sc.Name + " done"
		}
		return out, nil
	})
}

func (a *App) toggleGroup(id string) {
	if _, err := a.m.store.ToggleGroup(a.m.bg, id); err != nil {
		a.showError(err)
	}
}

func (a *App) handleGroupKey(r rune) bool {
	switch r {
	case 'n':
		a.groupForm(nil)
	case 'e':
		id, ok := selection(a.groups, groupKeyPrefix)
		if !ok {
			return true
		}
		if g, ok := a.m.store.Group(id); ok {
			a.groupForm(&g)
		}
	case 'd':
		id, ok := selection(a.groups, groupKeyPrefix)
		if !ok {
			return true
		}
		g, _ := a.m.store.Group(id)
		a.confirm(fmt.Sprintf("Delete group %q? Its shortcuts move to the default group.", g.Name), func() {
			if err := a.m.store.DeleteGroup(a.m.bg, id); err != nil {
				a.showError(err)
			}
		})
	case '[', ']':
		id, ok := selection(a.groups, groupKeyPrefix)
		if !ok {
			return true
		}
		groups := a.m.store.Groups()
		seq := make([]string, len(groups))
		from := -1
		for i, g := range groups {
			seq[i] = g.ID
			if g.ID == id {
				from = i
			}
		}
		to := from + 1
		if r == '[' {
			to = from - 1
		}
		if from < 0 || to < 0 || to >= len(seq) {
			return true
		}
		seq[from], seq[to] = seq[to], seq[from]
		if err := a.m.store.ReorderGroups(a.m.bg, seq); err != nil {
			a.showError(err)
			return true
		}
		a.groups.SelectKey(groupKey(id))
	default:
		return false
	}
	return true
}

// groupForm creates a group, or edits g when it is not nil.
func (a *App) groupForm(g *model.Group) {
	title := "New group"
	next := model.Group{Color: model.DefaultGroupColor, Icon: model.DefaultGroupIcon, IsExpanded: true}
	if g != nil {
		title = "Edit group"
		next = *g
	}

	formView := form.NewForm(title)
	formView.AddInputField("Name", next.Name, 30, nil, func(text string) { next.Name = text })
	formView.AddInputField("Color", next.Color, 10, nil, func(text string) { next.Color = text })
	formView.AddInputField("Icon", next.Icon, 20, nil, func(text string) { next.Icon = text })

	formView.AddButton("Save", func() {
		next.Name = strings.TrimSpace(next.Name)
		if next.Name == "" {
			a.showError(fmt.Errorf("group name is required"))
			return
		}
		var err error
		if g == nil {
			_, err = a.m.store.AddGroup(a.m.bg, next)
		} else {
			_, err = a.m.store.UpdateGroup(a.m.bg, next)
		}
		if err != nil {
			a.showError(err)
			return
		}
		a.mainPages.RemovePage(pageSubmenu2)
	})
	formView.AddButton("Cancel", func() {
		a.mainPages.RemovePage(pageSubmenu2)
	})

	a.mainPages.AddPage(pageSubmenu2, formView, true, true)
	a.SetFocus(formView)
}
