// Package editor holds the in-memory draft of a shortcut being edited.
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// Item is an action with a stable key used for selection and reordering.
type Item struct {
	ID     string
	Action model.Action
}

// Draft is not persisted; pass the result of Build to the store.
type Draft struct {
	original *model.Shortcut

	Name    string
	Icon    string
	GroupID string
	items   []Item

	// NewID is replaceable for tests.
	NewID func() string
}

// NewDraft starts editing s, or a new shortcut when s is nil.
func NewDraft(s *model.Shortcut) *Draft {
	d := &Draft{
		Icon:    model.DefaultIcon,
		GroupID: model.DefaultGroupID,
		NewID:   func() string { return uuid.New().String() },
	}
	if s == nil {
		return d
	}
	orig := s.Clone()
	d.original = &orig
	d.Name = s.Name
	if s.Icon != "" {
		d.Icon = s.Icon
	}
	if s.GroupID != "" {
		d.GroupID = s.GroupID
	}
	for _, a := range s.Actions {
		d.items = append(d.items, Item{ID: d.NewID(), Action: model.CloneAction(a)})
	}
	return d
}

// IsNew reports whether the draft creates a shortcut.
func (d *Draft) IsNew() bool {
	return d.original == nil
}

func (d *Draft) SetName(name string)   { d.Name = name }
func (d *Draft) SetIcon(icon string)   { d.Icon = icon }
func (d *Draft) SetGroup(group string) { d.GroupID = group }

// Items returns a copy of the action list.
func (d *Draft) Items() []Item {
	out := make([]Item, len(d.items))
	for i, it := range d.items {
		out[i] = Item{ID: it.ID, Action: model.CloneAction(it.Action)}
	}
	return out
}

func (d *Draft) Len() int {
	return len(d.items)
}

func (d *Draft) index(id string) int {
	for i, it := range d.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// AddAction appends the default action of kind and returns its item id.
func (d *Draft) AddAction(kind model.ActionKind) (string, error) {
	a, err := model.NewAction(kind)
	if err != nil {
		return "", err
	}
	id := d.NewID()
	d.items = append(d.items, Item{ID: id, Action: a})
	return id, nil
}

// UpdateAction replaces the action of item id; the variant may change.
func (d *Draft) UpdateAction(id string, a model.Action) error {
	i := d.index(id)
	if i < 0 {
		return errors.NotFound("action "+id, nil)
	}
	if a == nil {
		return errors.RequiredParam("action")
	}
	d.items[i].Action = model.CloneAction(a)
	return nil
}

// RemoveAction deletes item id.
func (d *Draft) RemoveAction(id string) error {
	i := d.index(id)
	if i < 0 {
		return errors.NotFound("action "+id, nil)
	}
	d.items = append(d.items[:i], d.items[i+1:]...)
	return nil
}

// MoveAction moves item id to position to, clamped to the list bounds.
func (d *Draft) MoveAction(id string, to int) error {
	from := d.index(id)
	if from < 0 {
		return errors.NotFound("action "+id, nil)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(d.items) {
		to = len(d.items) - 1
	}
	if from == to {
		return nil
	}
	it := d.items[from]
	d.items = append(d.items[:from], d.items[from+1:]...)
	d.items = append(d.items[:to], append([]Item{it}, d.items[to:]...)...)
	return nil
}

// Reorder puts the items in the order of ids, a permutation of the current
// item ids.
func (d *Draft) Reorder(ids []string) error {
	if len(ids) != len(d.items) {
		return errors.InvalidOrder("actions", fmt.Sprintf("expected %d ids, got %d", len(d.items), len(ids)))
	}
	next := make([]Item, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i := d.index(id)
		if i < 0 || seen[id] {
			return errors.InvalidOrder("actions", "unknown or duplicate id "+id)
		}
		seen[id] = true
		next = append(next, d.items[i])
	}
	d.items = next
	return nil
}

// Validate checks the name, that there is at least one action and that every
// action has its required fields.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.Validation("name is required", nil)
	}
	if len(d.items) == 0 {
		return errors.Validation("at least one action is required", nil)
	}
	for i, it := range d.items {
		if err := it.Action.Validate(); err != nil {
			return errors.Validation(fmt.Sprintf("action #%d (%s) is incomplete", i+1, it.Action.Kind()), err)
		}
	}
	return nil
}

// Build validates the draft and returns the shortcut to save. Id, order and
// createdAt of an edited shortcut are kept.
func (d *Draft) Build(now time.Time) (model.Shortcut, error) {
	if err := d.Validate(); err != nil {
		return model.Shortcut{}, err
	}
	actions := make(model.Actions, len(d.items))
	for i, it := range d.items {
		actions[i] = model.CloneAction(it.Action)
	}
	ts := model.Timestamp(now)
	s := model.Shortcut{
		Name:      strings.TrimSpace(d.Name),
		Icon:      d.Icon,
		GroupID:   d.GroupID,
		Actions:   actions,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if d.original != nil {
		s.ID = d.original.ID
		s.Order = d.original.Order
		s.CreatedAt = d.original.CreatedAt
	}
	return s, nil
}
