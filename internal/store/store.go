package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// Backend persists the two collections. Saves are authoritative: the store
// only commits a change after the matching save returned nil.
type Backend interface {
	Load(ctx context.Context) (*model.AppData, error)
	SaveShortcuts(ctx context.Context, shortcuts []model.Shortcut) error
	SaveGroups(ctx context.Context, groups []model.Group) error
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

type EventKind string

const (
	EventLoaded           EventKind = "loaded"
	EventShortcutsChanged EventKind = "shortcuts_changed"
	EventGroupsChanged    EventKind = "groups_changed"
)

// Event is delivered to subscribers after every committed change.
type Event struct {
	Kind EventKind      `json:"kind"`
	Data *model.AppData `json:"data"`
}

// Store owns the shortcut and group collections.
type Store struct {
	backend Backend

	// Now and NewID are replaceable for tests.
	Now   func() time.Time
	NewID func() string

	mu        sync.RWMutex
	shortcuts []model.Shortcut
	groups    []model.Group
	status    Status
	err       error
	loaded    chan struct{}
	loadOnce  sync.Once

	// per-collection write locks, always taken shortcuts before groups
	shortcutsMu sync.Mutex
	groupsMu    sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		Now:     time.Now,
		NewID:   func() string { return uuid.New().String() },
		status:  StatusLoading,
		loaded:  make(chan struct{}),
		subs:    make(map[int]func(Event)),
	}
}

// Load reads both collections from the backend. It may be called again to
// reload; the status only leaves loading once.
func (s *Store) Load(ctx context.Context) error {
	s.shortcutsMu.Lock()
	s.groupsMu.Lock()
	data, err := s.backend.Load(ctx)
	if err != nil {
		err = errors.StorageLoadFailed(err)
		s.mu.Lock()
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		s.groupsMu.Unlock()
		s.shortcutsMu.Unlock()
		s.markLoaded()
		log.Err(err).Msg("load app data failed")
		return err
	}
	data.Normalize()

	s.mu.Lock()
	s.shortcuts = model.CloneShortcuts(data.Shortcuts)
	s.groups = model.CloneGroups(data.Groups)
	s.status = StatusReady
	s.err = nil
	s.mu.Unlock()
	s.groupsMu.Unlock()
	s.shortcutsMu.Unlock()

	s.markLoaded()
	log.Debug().Int("shortcuts", len(data.Shortcuts)).Int("groups", len(data.Groups)).Msg("app data loaded")
	s.notify(EventLoaded)
	return nil
}

// Reload is Load for an already loaded store.
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *Store) markLoaded() {
	s.loadOnce.Do(func() { close(s.loaded) })
}

// WaitLoaded blocks until the first load finished, successfully or not.
func (s *Store) WaitLoaded(ctx context.Context) error {
	select {
	case <-s.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Err is the last load error.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Shortcuts returns a copy of all shortcuts.
func (s *Store) Shortcuts() []model.Shortcut {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneShortcuts(s.shortcuts)
}

// Groups returns a copy of all groups sorted by order.
func (s *Store) Groups() []model.Group {
	s.mu.RLock()
	out := model.CloneGroups(s.groups)
	s.mu.RUnlock()
	model.SortGroups(out)
	return out
}

// Snapshot returns a copy of both collections.
func (s *Store) Snapshot() *model.AppData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &model.AppData{
		Shortcuts: model.CloneShortcuts(s.shortcuts),
		Groups:    model.CloneGroups(s.groups),
	}
}

// Shortcut looks up a shortcut by id.
func (s *Store) Shortcut(id string) (model.Shortcut, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := model.FindShortcut(s.shortcuts, id); i >= 0 {
		return s.shortcuts[i].Clone(), true
	}
	return model.Shortcut{}, false
}

// Subscribe registers fn for change events and returns its cancel function.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(kind EventKind) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	if len(fns) == 0 {
		return
	}
	ev := Event{Kind: kind, Data: s.Snapshot()}
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) ready() error {
	if st := s.Status(); st != StatusReady {
		return errors.Storage("app data not loaded ("+string(st)+")", s.Err())
	}
	return nil
}

// commitShortcuts saves next and replaces the in-memory list on success.
// The caller holds shortcutsMu.
func (s *Store) commitShortcuts(ctx context.Context, next []model.Shortcut) error {
	if err := s.backend.SaveShortcuts(ctx, model.CloneShortcuts(next)); err != nil {
		err = errors.StorageSaveFailed("shortcuts", err)
		log.Err(err).Msg("save shortcuts failed")
		return err
	}
	s.mu.Lock()
	s.shortcuts = next
	s.mu.Unlock()
	s.notify(EventShortcutsChanged)
	return nil
}

// commitGroups saves next and replaces the in-memory list on success.
// The caller holds groupsMu.
func (s *Store) commitGroups(ctx context.Context, next []model.Group) error {
	if err := s.backend.SaveGroups(ctx, model.CloneGroups(next)); err != nil {
		err = errors.StorageSaveFailed("groups", err)
		log.Err(err).Msg("save groups failed")
		return err
	}
	s.mu.Lock()
	s.groups = next
	s.mu.Unlock()
	s.notify(EventGroupsChanged)
	return nil
}

// AddShortcut appends sc to the end of its group. An empty id is generated
// and an empty group falls back to the default group.
func (s *Store) AddShortcut(ctx context.Context, sc model.Shortcut) (model.Shortcut, error) {
	if err := s.ready(); err != nil {
		return model.Shortcut{}, err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()

	current := s.Shortcuts()
	sc = sc.Clone()
	if sc.ID == "" {
		sc.ID = s.NewID()
	} else if model.FindShortcut(current, sc.ID) >= 0 {
		return model.Shortcut{}, errors.InvalidParam("id", "duplicate shortcut id "+sc.ID)
	}
	if strings.TrimSpace(sc.GroupID) == "" || !s.hasGroup(sc.GroupID) {
		sc.GroupID = model.DefaultGroupID
	}
	if sc.Icon == "" {
		sc.Icon = model.DefaultIcon
	}
	if sc.Actions == nil {
		sc.Actions = model.Actions{}
	}
	now := model.Timestamp(s.Now())
	if sc.CreatedAt == "" {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now
	sc.Order = countInGroup(current, sc.GroupID)

	next := append(current, sc)
	if err := s.commitShortcuts(ctx, next); err != nil {
		return model.Shortcut{}, err
	}
	log.Info().Str("shortcut", sc.ID).Str("name", sc.Name).Msg("shortcut created")
	return sc.Clone(), nil
}

// UpdateShortcut replaces the stored shortcut with the same id. Moving a
// shortcut to another group appends it there and closes the gap it left.
func (s *Store) UpdateShortcut(ctx context.Context, sc model.Shortcut) (model.Shortcut, error) {
	if err := s.ready(); err != nil {
		return model.Shortcut{}, err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()

	next := s.Shortcuts()
	i := model.FindShortcut(next, sc.ID)
	if i < 0 {
		return model.Shortcut{}, errors.ErrShortcutNotFound(sc.ID)
	}
	prev := next[i]
	sc = sc.Clone()
	if strings.TrimSpace(sc.GroupID) == "" || !s.hasGroup(sc.GroupID) {
		sc.GroupID = model.DefaultGroupID
	}
	if sc.Actions == nil {
		sc.Actions = model.Actions{}
	}
	sc.CreatedAt = prev.CreatedAt
	sc.UpdatedAt = model.Timestamp(s.Now())
	if sc.GroupID != prev.GroupID {
		sc.Order = countInGroup(next, sc.GroupID)
	} else {
		sc.Order = prev.Order
	}
	next[i] = sc
	if sc.GroupID != prev.GroupID {
		compactShortcuts(next, prev.GroupID)
	}

	if err := s.commitShortcuts(ctx, next); err != nil {
		return model.Shortcut{}, err
	}
	return sc.Clone(), nil
}

// DeleteShortcut removes id and renumbers the rest of its group.
func (s *Store) DeleteShortcut(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()

	current := s.Shortcuts()
	i := model.FindShortcut(current, id)
	if i < 0 {
		return errors.ErrShortcutNotFound(id)
	}
	groupID := current[i].GroupID
	next := append(current[:i:i], current[i+1:]...)
	compactShortcuts(next, groupID)

	if err := s.commitShortcuts(ctx, next); err != nil {
		return err
	}
	log.Info().Str("shortcut", id).Msg("shortcut deleted")
	return nil
}

// UpdateShortcuts replaces the whole shortcut collection.
func (s *Store) UpdateShortcuts(ctx context.Context, list []model.Shortcut) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()
	return s.commitShortcuts(ctx, model.CloneShortcuts(list))
}

// ReorderShortcuts sets order = index for each id in seq, which must list
// exactly the current members of groupID.
func (s *Store) ReorderShortcuts(ctx context.Context, groupID string, seq []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()

	next, err := ApplyShortcutOrder(s.Shortcuts(), groupID, seq)
	if err != nil {
		return err
	}
	return s.commitShortcuts(ctx, next)
}

func (s *Store) hasGroup(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindGroup(s.groups, id) >= 0
}

// Group looks up a group by id.
func (s *Store) Group(id string) (model.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := model.FindGroup(s.groups, id); i >= 0 {
		return s.groups[i], true
	}
	return model.Group{}, false
}

// AddGroup appends g after all existing groups.
func (s *Store) AddGroup(ctx context.Context, g model.Group) (model.Group, error) {
	if err := s.ready(); err != nil {
		return model.Group{}, err
	}
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	current := s.Groups()
	if g.ID == "" {
		g.ID = s.NewID()
	} else if model.FindGroup(current, g.ID) >= 0 {
		return model.Group{}, errors.InvalidParam("id", "duplicate group id "+g.ID)
	}
	if g.Color == "" {
		g.Color = model.DefaultGroupColor
	}
	if g.Icon == "" {
		g.Icon = model.DefaultGroupIcon
	}
	g.Order = len(current)
	g.IsExpanded = true

	if err := s.commitGroups(ctx, append(current, g)); err != nil {
		return model.Group{}, err
	}
	log.Info().Str("group", g.ID).Str("name", g.Name).Msg("group created")
	return g, nil
}

// UpdateGroup replaces the fields of an existing group. Order is kept; use
// ReorderGroups to move groups.
func (s *Store) UpdateGroup(ctx context.Context, g model.Group) (model.Group, error) {
	return s.mutateGroup(ctx, g.ID, func(current *model.Group) {
		order := current.Order
		*current = g
		current.Order = order
	})
}

// ToggleGroup flips isExpanded.
func (s *Store) ToggleGroup(ctx context.Context, id string) (model.Group, error) {
	return s.mutateGroup(ctx, id, func(current *model.Group) {
		current.IsExpanded = !current.IsExpanded
	})
}

func (s *Store) mutateGroup(ctx context.Context, id string, fn func(*model.Group)) (model.Group, error) {
	if err := s.ready(); err != nil {
		return model.Group{}, err
	}
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	next := s.Groups()
	i := model.FindGroup(next, id)
	if i < 0 {
		return model.Group{}, errors.ErrGroupNotFound(id)
	}
	fn(&next[i])
	if err := s.commitGroups(ctx, next); err != nil {
		return model.Group{}, err
	}
	return next[i], nil
}

// ReorderGroups sets order = index for each id in seq, which must list
// every group exactly once.
func (s *Store) ReorderGroups(ctx context.Context, seq []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	next, err := ApplyGroupOrder(s.Groups(), seq)
	if err != nil {
		return err
	}
	return s.commitGroups(ctx, next)
}

// UpdateGroups replaces the whole group collection.
func (s *Store) UpdateGroups(ctx context.Context, list []model.Group) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()
	return s.commitGroups(ctx, model.CloneGroups(list))
}

// DeleteGroup moves the members of id to the default group, keeping their
// order, and removes the group. The group list is only saved once the
// shortcut reassignment has been saved.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	if id == model.DefaultGroupID {
		return errors.ErrDefaultGroupProtected
	}
	if err := s.ready(); err != nil {
		return err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	groups := s.Groups()
	gi := model.FindGroup(groups, id)
	if gi < 0 {
		return errors.ErrGroupNotFound(id)
	}

	shortcuts := s.Shortcuts()
	moved := 0
	for i := range shortcuts {
		if shortcuts[i].GroupID == id {
			shortcuts[i].GroupID = model.DefaultGroupID
			moved++
		}
	}
	if moved > 0 {
		if err := s.commitShortcuts(ctx, shortcuts); err != nil {
			return err
		}
	}

	next := append(groups[:gi:gi], groups[gi+1:]...)
	compactGroups(next)
	if err := s.commitGroups(ctx, next); err != nil {
		return err
	}
	log.Info().Str("group", id).Int("moved", moved).Msg("group deleted")
	return nil
}

// Replace swaps both collections for data, used by import and restore.
// Shortcuts are saved first; when the group save then fails the previous
// shortcuts are written back so no shortcut points at a missing group.
func (s *Store) Replace(ctx context.Context, data *model.AppData) error {
	if data == nil {
		return errors.RequiredParam("data")
	}
	if err := s.ready(); err != nil {
		return err
	}
	s.shortcutsMu.Lock()
	defer s.shortcutsMu.Unlock()
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	next := data.Clone()
	next.Normalize()
	for i := range next.Shortcuts {
		if model.FindGroup(next.Groups, next.Shortcuts[i].GroupID) < 0 {
			next.Shortcuts[i].GroupID = model.DefaultGroupID
		}
	}
	s.mu.RLock()
	prev := model.CloneShortcuts(s.shortcuts)
	s.mu.RUnlock()

	if err := s.commitShortcuts(ctx, next.Shortcuts); err != nil {
		return err
	}
	if err := s.commitGroups(ctx, next.Groups); err != nil {
		if rerr := s.commitShortcuts(ctx, prev); rerr != nil {
			log.Err(rerr).Msg("restore shortcuts failed")
		}
		return err
	}
	log.Info().Int("shortcuts", len(next.Shortcuts)).Int("groups", len(next.Groups)).Msg("app data replaced")
	return nil
}
