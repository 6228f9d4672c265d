package model

import (
	"sort"
	"time"
)

// DefaultGroupID is the group that always exists and receives the shortcuts
// of deleted groups.
const DefaultGroupID = "default"

const (
	DefaultIcon       = "zap"
	DefaultGroupIcon  = "folder"
	DefaultGroupColor = "#22d3ee"
	DefaultGroupName  = "デフォルト"
)

type Shortcut struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon"`
	GroupID   string  `json:"groupId"`
	Actions   Actions `json:"actions"`
	Order     int     `json:"order"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Clone returns a deep copy.
func (s Shortcut) Clone() Shortcut {
	s.Actions = s.Actions.Clone()
	return s
}

type Group struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Icon       string `json:"icon"`
	Order      int    `json:"order"`
	IsExpanded bool   `json:"isExpanded"`
}

// DefaultGroup returns the built-in group.
func DefaultGroup() Group {
	return Group{
		ID:         DefaultGroupID,
		Name:       DefaultGroupName,
		Color:      DefaultGroupColor,
		Icon:       DefaultGroupIcon,
		Order:      0,
		IsExpanded: true,
	}
}

type AppData struct {
	Shortcuts []Shortcut `json:"shortcuts"`
	Groups    []Group    `json:"groups"`
}

// DefaultAppData is the content of a fresh data file.
func DefaultAppData() *AppData {
	return &AppData{
		Shortcuts: []Shortcut{},
		Groups:    []Group{DefaultGroup()},
	}
}

// Normalize makes sure the default group exists and nil slices are empty.
// It reports whether anything changed.
func (d *AppData) Normalize() bool {
	changed := false
	if d.Shortcuts == nil {
		d.Shortcuts = []Shortcut{}
	}
	if d.Groups == nil {
		d.Groups = []Group{}
	}
	for _, g := range d.Groups {
		if g.ID == DefaultGroupID {
			return changed
		}
	}
	def := DefaultGroup()
	def.Order = len(d.Groups)
	d.Groups = append(d.Groups, def)
	return true
}

// Clone returns a deep copy.
func (d *AppData) Clone() *AppData {
	if d == nil {
		return nil
	}
	return &AppData{
		Shortcuts: CloneShortcuts(d.Shortcuts),
		Groups:    CloneGroups(d.Groups),
	}
}

func CloneShortcuts(list []Shortcut) []Shortcut {
	if list == nil {
		return nil
	}
	out := make([]Shortcut, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

func CloneGroups(list []Group) []Group {
	if list == nil {
		return nil
	}
	return append([]Group(nil), list...)
}

// SortShortcuts sorts by order, keeping insertion order for ties.
func SortShortcuts(list []Shortcut) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
}

// SortGroups sorts by order, keeping insertion order for ties.
func SortGroups(list []Group) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
}

// ShortcutsInGroup returns copies of the members of groupID sorted by order.
func ShortcutsInGroup(list []Shortcut, groupID string) []Shortcut {
	out := make([]Shortcut, 0)
	for _, s := range list {
		if s.GroupID == groupID {
			out = append(out, s.Clone())
		}
	}
	SortShortcuts(out)
	return out
}

// FindShortcut returns the index of id in list, or -1.
func FindShortcut(list []Shortcut, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// FindGroup returns the index of id in list, or -1.
func FindGroup(list []Group, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Timestamp formats t the way createdAt/updatedAt are stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
