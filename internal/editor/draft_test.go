package editor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/model"
)

func counterIDs(d *Draft) {
	n := 0
	d.NewID = func() string { n++; return fmt.Sprintf("item-%d", n) }
}

func kinds(d *Draft) []model.ActionKind {
	var out []model.ActionKind
	for _, it := range d.Items() {
		out = append(out, it.Action.Kind())
	}
	return out
}

func TestNewDraftDefaults(t *testing.T) {
	d := NewDraft(nil)
	assert.True(t, d.IsNew())
	assert.Equal(t, "zap", d.Icon)
	assert.Equal(t, model.DefaultGroupID, d.GroupID)
	assert.Zero(t, d.Len())
}

func TestAddActionDefaults(t *testing.T) {
	d := NewDraft(nil)
	counterIDs(d)
	for _, k := range model.ActionKinds {
		_, err := d.AddAction(k)
		require.NoError(t, err)
	}
	items := d.Items()
	assert.Equal(t, model.Launch{}, items[0].Action)
	assert.Equal(t, model.Kill{}, items[1].Action)
	assert.Equal(t, model.OpenFolder{}, items[2].Action)
	assert.Equal(t, model.OpenURL{}, items[3].Action)
	assert.Equal(t, model.Delay{Ms: 1000}, items[4].Action)
	assert.Equal(t, "item-1", items[0].ID)

	_, err := d.AddAction("format_disk")
	assert.Error(t, err)
}

func TestMoveAndRemove(t *testing.T) {
	d := NewDraft(nil)
	counterIDs(d)
	a, _ := d.AddAction(model.KindLaunch)
	_, _ = d.AddAction(model.KindKill)
	c, _ := d.AddAction(model.KindDelay)

	require.NoError(t, d.MoveAction(c, 0))
	assert.Equal(t, []model.ActionKind{model.KindDelay, model.KindLaunch, model.KindKill}, kinds(d))

	require.NoError(t, d.MoveAction(a, 99))
	assert.Equal(t, []model.ActionKind{model.KindDelay, model.KindKill, model.KindLaunch}, kinds(d))

	require.NoError(t, d.RemoveAction(a))
	assert.Equal(t, []model.ActionKind{model.KindDelay, model.KindKill}, kinds(d))
	assert.Error(t, d.RemoveAction(a))
}

func TestReorder(t *testing.T) {
	d := NewDraft(nil)
	counterIDs(d)
	a, _ := d.AddAction(model.KindLaunch)
	b, _ := d.AddAction(model.KindKill)

	require.NoError(t, d.Reorder([]string{b, a}))
	assert.Equal(t, []model.ActionKind{model.KindKill, model.KindLaunch}, kinds(d))
	assert.Error(t, d.Reorder([]string{a}))
	assert.Error(t, d.Reorder([]string{a, a}))
}

func TestUpdateActionChangesVariant(t *testing.T) {
	d := NewDraft(nil)
	counterIDs(d)
	id, _ := d.AddAction(model.KindLaunch)
	require.NoError(t, d.UpdateAction(id, model.OpenURL{URL: "https://example.com"}))
	assert.Equal(t, model.KindOpenURL, d.Items()[0].Action.Kind())
	assert.Error(t, d.UpdateAction("missing", model.Delay{}))
}

func TestValidate(t *testing.T) {
	d := NewDraft(nil)
	counterIDs(d)
	d.SetName("   ")
	assert.Error(t, d.Validate())

	d.SetName("Morning")
	assert.Error(t, d.Validate(), "no actions")

	id, _ := d.AddAction(model.KindLaunch)
	assert.Error(t, d.Validate(), "empty launch path")

	require.NoError(t, d.UpdateAction(id, model.Launch{Path: "/usr/bin/firefox"}))
	assert.NoError(t, d.Validate())
}

func TestBuildKeepsIdentity(t *testing.T) {
	orig := &model.Shortcut{
		ID:        "s1",
		Name:      "Old",
		Icon:      "globe",
		GroupID:   "work",
		Order:     4,
		CreatedAt: "2023-01-01T00:00:00Z",
		Actions:   model.Actions{model.Kill{ProcessName: "slack"}},
	}
	d := NewDraft(orig)
	assert.False(t, d.IsNew())
	d.SetName("  New name ")

	now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	s, err := d.Build(now)
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "New name", s.Name)
	assert.Equal(t, 4, s.Order)
	assert.Equal(t, "2023-01-01T00:00:00Z", s.CreatedAt)
	assert.Equal(t, "2024-02-03T04:05:06Z", s.UpdatedAt)
	assert.Equal(t, model.Actions{model.Kill{ProcessName: "slack"}}, s.Actions)

	// the original is untouched
	assert.Equal(t, "Old", orig.Name)
}
