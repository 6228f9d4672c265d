package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

type memBackend struct {
	mu            sync.Mutex
	data          *model.AppData
	loadErr       error
	shortcutsErr  error
	groupsErr     error
	shortcutSaves int
	groupSaves    int
}

func (b *memBackend) Load(ctx context.Context) (*model.AppData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return b.data.Clone(), nil
}

func (b *memBackend) SaveShortcuts(ctx context.Context, list []model.Shortcut) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.shortcutsErr != nil {
		return b.shortcutsErr
	}
	b.shortcutSaves++
	b.data.Shortcuts = model.CloneShortcuts(list)
	return nil
}

func (b *memBackend) SaveGroups(ctx context.Context, list []model.Group) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.groupsErr != nil {
		return b.groupsErr
	}
	b.groupSaves++
	b.data.Groups = model.CloneGroups(list)
	return nil
}

func fixture() *model.AppData {
	return &model.AppData{
		Shortcuts: []model.Shortcut{
			{ID: "a", Name: "A", GroupID: "default", Order: 0},
			{ID: "b", Name: "B", GroupID: "default", Order: 1},
			{ID: "c", Name: "C", GroupID: "default", Order: 2},
			{ID: "w1", Name: "W1", GroupID: "work", Order: 0},
			{ID: "w2", Name: "W2", GroupID: "work", Order: 1},
		},
		Groups: []model.Group{
			model.DefaultGroup(),
			{ID: "work", Name: "Work", Order: 1, IsExpanded: true},
			{ID: "games", Name: "Games", Order: 2},
		},
	}
}

func newLoaded(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	b := &memBackend{data: fixture()}
	s := New(b)
	s.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	n := 0
	s.NewID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	require.NoError(t, s.Load(context.Background()))
	return s, b
}

func orders(list []model.Shortcut, groupID string) map[string]int {
	out := map[string]int{}
	for _, sc := range list {
		if sc.GroupID == groupID {
			out[sc.ID] = sc.Order
		}
	}
	return out
}

func assertDense(t *testing.T, values []int) {
	t.Helper()
	sort.Ints(values)
	for i, v := range values {
		assert.Equal(t, i, v)
	}
}

func TestLoadStatus(t *testing.T) {
	b := &memBackend{data: &model.AppData{}}
	s := New(b)
	assert.Equal(t, StatusLoading, s.Status())

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, StatusReady, s.Status())
	require.NoError(t, s.WaitLoaded(context.Background()))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, model.DefaultGroupID, groups[0].ID)
}

func TestLoadError(t *testing.T) {
	s := New(&memBackend{loadErr: fmt.Errorf("disk gone")})
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusError, s.Status())
	assert.NoError(t, s.WaitLoaded(context.Background()))

	_, err = s.AddShortcut(context.Background(), model.Shortcut{Name: "x"})
	assert.True(t, errors.Is(err, errors.ErrTypeStorage))
}

func TestWaitLoadedHonorsContext(t *testing.T) {
	s := New(&memBackend{data: fixture()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.WaitLoaded(ctx), context.Canceled)
}

func TestReorderShortcuts(t *testing.T) {
	s, b := newLoaded(t)

	require.NoError(t, s.ReorderShortcuts(context.Background(), "default", []string{"c", "a", "b"}))

	got := orders(s.Shortcuts(), "default")
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, got)
	// other groups untouched
	assert.Equal(t, map[string]int{"w1": 0, "w2": 1}, orders(s.Shortcuts(), "work"))
	assert.Equal(t, got, orders(b.data.Shortcuts, "default"))
}

func TestReorderShortcutsRejectsNonPermutation(t *testing.T) {
	s, b := newLoaded(t)
	ctx := context.Background()

	assert.Error(t, s.ReorderShortcuts(ctx, "default", []string{"a", "b"}))
	assert.Error(t, s.ReorderShortcuts(ctx, "default", []string{"a", "b", "w1"}))
	assert.Error(t, s.ReorderShortcuts(ctx, "default", []string{"a", "a", "b"}))
	assert.Zero(t, b.shortcutSaves)
}

func TestReorderGroups(t *testing.T) {
	s, _ := newLoaded(t)
	require.NoError(t, s.ReorderGroups(context.Background(), []string{"games", "default", "work"}))

	groups := s.Groups()
	ids := []string{groups[0].ID, groups[1].ID, groups[2].ID}
	assert.Equal(t, []string{"games", "default", "work"}, ids)
	var values []int
	for _, g := range groups {
		values = append(values, g.Order)
	}
	assertDense(t, values)
}

func TestAddShortcutAppendsWithinGroup(t *testing.T) {
	s, _ := newLoaded(t)
	ctx := context.Background()

	sc, err := s.AddShortcut(ctx, model.Shortcut{Name: "New", GroupID: "work"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", sc.ID)
	assert.Equal(t, 2, sc.Order)
	assert.Equal(t, model.DefaultIcon, sc.Icon)
	assert.Equal(t, "2024-01-02T03:04:05Z", sc.CreatedAt)

	sc, err = s.AddShortcut(ctx, model.Shortcut{Name: "Empty group"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGroupID, sc.GroupID)
	assert.Equal(t, 3, sc.Order)

	sc, err = s.AddShortcut(ctx, model.Shortcut{Name: "First game", GroupID: "games"})
	require.NoError(t, err)
	assert.Equal(t, 0, sc.Order)
}

func TestAddGroupAppends(t *testing.T) {
	s, _ := newLoaded(t)
	g, err := s.AddGroup(context.Background(), model.Group{Name: "Tools"})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Order)
	assert.True(t, g.IsExpanded)
	assert.Equal(t, model.DefaultGroupColor, g.Color)
	assert.Len(t, s.Groups(), 4)
}

func TestUpdateShortcutMovesGroup(t *testing.T) {
	s, _ := newLoaded(t)
	sc, ok := s.Shortcut("a")
	require.True(t, ok)
	sc.GroupID = "work"
	sc.Name = "A moved"

	got, err := s.UpdateShortcut(context.Background(), sc)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Order)
	assert.Equal(t, map[string]int{"b": 0, "c": 1}, orders(s.Shortcuts(), "default"))

	_, err = s.UpdateShortcut(context.Background(), model.Shortcut{ID: "missing"})
	assert.True(t, errors.Is(err, errors.ErrTypeNotFound))
}

func TestDeleteShortcutCompactsGroup(t *testing.T) {
	s, _ := newLoaded(t)
	require.NoError(t, s.DeleteShortcut(context.Background(), "a"))
	assert.Equal(t, map[string]int{"b": 0, "c": 1}, orders(s.Shortcuts(), "default"))
	assert.Error(t, s.DeleteShortcut(context.Background(), "a"))
}

func TestDeleteDefaultGroupRejected(t *testing.T) {
	s, b := newLoaded(t)
	err := s.DeleteGroup(context.Background(), model.DefaultGroupID)
	assert.ErrorIs(t, err, errors.ErrDefaultGroupProtected)
	_, ok := s.Group(model.DefaultGroupID)
	assert.True(t, ok)
	assert.Zero(t, b.groupSaves)
	assert.Zero(t, b.shortcutSaves)
}

func TestDeleteGroupReassignsShortcuts(t *testing.T) {
	s, _ := newLoaded(t)
	before := len(s.Shortcuts())

	require.NoError(t, s.DeleteGroup(context.Background(), "work"))

	after := s.Shortcuts()
	assert.Len(t, after, before)
	for _, sc := range after {
		assert.Equal(t, model.DefaultGroupID, sc.GroupID)
	}
	// moved shortcuts keep their order
	w1, _ := s.Shortcut("w1")
	w2, _ := s.Shortcut("w2")
	assert.Equal(t, 0, w1.Order)
	assert.Equal(t, 1, w2.Order)

	_, ok := s.Group("work")
	assert.False(t, ok)
	var values []int
	for _, g := range s.Groups() {
		values = append(values, g.Order)
	}
	assertDense(t, values)
}

func TestDeleteGroupStopsWhenShortcutSaveFails(t *testing.T) {
	s, b := newLoaded(t)
	b.shortcutsErr = fmt.Errorf("read-only")

	err := s.DeleteGroup(context.Background(), "work")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeStorage))

	_, ok := s.Group("work")
	assert.True(t, ok)
	assert.Zero(t, b.groupSaves)
	assert.Equal(t, map[string]int{"w1": 0, "w2": 1}, orders(s.Shortcuts(), "work"))
}

func TestSaveErrorKeepsState(t *testing.T) {
	s, b := newLoaded(t)
	b.shortcutsErr = fmt.Errorf("boom")

	err := s.ReorderShortcuts(context.Background(), "default", []string{"c", "b", "a"})
	require.Error(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, orders(s.Shortcuts(), "default"))
}

func TestToggleGroup(t *testing.T) {
	s, _ := newLoaded(t)
	g, err := s.ToggleGroup(context.Background(), "work")
	require.NoError(t, err)
	assert.False(t, g.IsExpanded)
	assert.Equal(t, 1, g.Order)

	_, err = s.ToggleGroup(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	s, _ := newLoaded(t)
	var events []EventKind
	cancel := s.Subscribe(func(ev Event) { events = append(events, ev.Kind) })

	_, err := s.ToggleGroup(context.Background(), "work")
	require.NoError(t, err)
	require.NoError(t, s.DeleteShortcut(context.Background(), "a"))
	cancel()
	require.NoError(t, s.DeleteShortcut(context.Background(), "b"))

	assert.Equal(t, []EventKind{EventGroupsChanged, EventShortcutsChanged}, events)
}

func TestSnapshotIsCopy(t *testing.T) {
	s, _ := newLoaded(t)
	snap := s.Snapshot()
	snap.Shortcuts[0].Name = "mutated"
	sc, _ := s.Shortcut(snap.Shortcuts[0].ID)
	assert.NotEqual(t, "mutated", sc.Name)
}

func TestApplyShortcutOrderDense(t *testing.T) {
	list := []model.Shortcut{
		{ID: "x", GroupID: "g", Order: 7},
		{ID: "y", GroupID: "g", Order: 7},
		{ID: "z", GroupID: "g", Order: 3},
	}
	out, err := ApplyShortcutOrder(list, "g", []string{"y", "z", "x"})
	require.NoError(t, err)
	assertDense(t, []int{out[0].Order, out[1].Order, out[2].Order})
	assert.Equal(t, 7, list[0].Order)
}

func TestReplace(t *testing.T) {
	s, b := newLoaded(t)
	next := &model.AppData{
		Shortcuts: []model.Shortcut{
			{ID: "x", Name: "X", GroupID: "gone", Order: 0},
			{ID: "y", Name: "Y", GroupID: "tools", Order: 0},
		},
		Groups: []model.Group{{ID: "tools", Name: "Tools", Order: 0}},
	}
	require.NoError(t, s.Replace(context.Background(), next))

	x, ok := s.Shortcut("x")
	require.True(t, ok)
	assert.Equal(t, model.DefaultGroupID, x.GroupID)
	_, ok = s.Group(model.DefaultGroupID)
	assert.True(t, ok)
	assert.Len(t, b.data.Shortcuts, 2)
	assert.Len(t, b.data.Groups, 2)

	assert.Error(t, s.Replace(context.Background(), nil))
}

func TestReplaceFailureKeepsCollectionsConsistent(t *testing.T) {
	next := &model.AppData{
		Shortcuts: []model.Shortcut{{ID: "y", Name: "Y", GroupID: "tools", Order: 0}},
		Groups:    []model.Group{model.DefaultGroup(), {ID: "tools", Name: "Tools", Order: 1}},
	}

	t.Run("shortcut save fails", func(t *testing.T) {
		s, b := newLoaded(t)
		b.shortcutsErr = fmt.Errorf("disk full")
		assert.Error(t, s.Replace(context.Background(), next))
		assert.Len(t, s.Shortcuts(), 5)
		assert.Len(t, s.Groups(), 3)
		assert.Zero(t, b.groupSaves)
	})

	t.Run("group save fails", func(t *testing.T) {
		s, b := newLoaded(t)
		b.groupsErr = fmt.Errorf("disk full")
		assert.Error(t, s.Replace(context.Background(), next))

		assert.Len(t, s.Groups(), 3)
		assert.Len(t, s.Shortcuts(), 5)
		assert.Len(t, b.data.Shortcuts, 5)
		for _, sc := range s.Shortcuts() {
			_, ok := s.Group(sc.GroupID)
			assert.True(t, ok, "shortcut %s points at missing group %s", sc.ID, sc.GroupID)
		}
	})
}

func TestUpdateGroupsReplacesCollection(t *testing.T) {
	s, b := newLoaded(t)
	groups := s.Groups()
	groups[0].Name = "Renamed"
	require.NoError(t, s.UpdateGroups(context.Background(), groups))
	assert.Equal(t, "Renamed", s.Groups()[0].Name)
	assert.Equal(t, "Renamed", b.data.Groups[0].Name)

	b.groupsErr = assert.AnError
	groups[0].Name = "Lost"
	assert.Error(t, s.UpdateGroups(context.Background(), groups))
	assert.Equal(t, "Renamed", s.Groups()[0].Name)
}
