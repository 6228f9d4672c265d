package updater

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// DefaultAutoCheckDelay is the wait before the silent startup check.
const DefaultAutoCheckDelay = 3 * time.Second

// State is a copy of the manager's observable fields.
type State struct {
	Status   Status               `json:"status"`
	Info     *model.UpdateInfo    `json:"info,omitempty"`
	Progress model.UpdateProgress `json:"progress"`
	Error    string               `json:"error,omitempty"`
}

// Manager is the update state machine:
//
//	idle -> checking -> available | up-to-date | error
//	available -> downloading -> installing
//	downloading | installing -> error
//	any settled state -> idle (Dismiss)
type Manager struct {
	checker        Checker
	currentVersion string

	mu        sync.Mutex
	state     State
	candidate Candidate
	gen       uint64

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func NewManager(checker Checker, currentVersion string) *Manager {
	return &Manager{
		checker:        checker,
		currentVersion: currentVersion,
		state:          State{Status: StatusIdle},
		subs:           make(map[int]func(State)),
	}
}

func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	s := m.state
	if s.Info != nil {
		info := *s.Info
		s.Info = &info
	}
	return s
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Status
}

func (m *Manager) Info() *model.UpdateInfo {
	return m.Snapshot().Info
}

func (m *Manager) Progress() model.UpdateProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Progress
}

func (m *Manager) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Error
}

// Subscribe registers fn for state changes and returns its cancel function.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subsMu.Lock()
		defer m.subsMu.Unlock()
		delete(m.subs, id)
	}
}

// update applies fn under the lock and notifies subscribers.
func (m *Manager) update(fn func(s *State)) State {
	m.mu.Lock()
	fn(&m.state)
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
	return snap
}

func (m *Manager) publish(s State) {
	m.subsMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// CheckForUpdates looks up the latest release. A silent check, or one that
// failed because no release channel exists, falls back to idle instead of
// error. When checks overlap the most recently started one wins.
func (m *Manager) CheckForUpdates(ctx context.Context, silent bool) error {
	m.mu.Lock()
	if m.state.Status.Active() {
		m.mu.Unlock()
		return errors.ErrUpdateInProgress
	}
	m.gen++
	gen := m.gen
	m.state.Status = StatusChecking
	m.state.Error = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	cand, err := m.checker.Check(ctx)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		log.Debug().Msg("update check superseded")
		return nil
	}
	switch {
	case err != nil:
		m.candidate = nil
		m.state.Info = nil
		if silent || IsNoReleaseChannel(err) {
			m.state.Status = StatusIdle
			m.state.Error = ""
			log.Debug().Err(err).Bool("silent", silent).Msg("update check failed quietly")
			err = nil
		} else {
			m.state.Status = StatusError
			m.state.Error = err.Error()
			log.Err(err).Msg("update check failed")
		}
	case cand == nil:
		m.candidate = nil
		m.state.Info = nil
		m.state.Status = StatusUpToDate
	default:
		m.candidate = cand
		m.state.Info = &model.UpdateInfo{
			Version:        cand.Version(),
			CurrentVersion: m.currentVersion,
			Body:           cand.Body(),
			Date:           cand.Date(),
		}
		m.state.Status = StatusAvailable
		log.Info().Str("version", cand.Version()).Str("current", m.currentVersion).Msg("update available")
	}
	snap = m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
	return err
}

// DownloadAndInstall consumes the candidate's event stream. Without a
// candidate it records "No update available" and leaves the status alone.
func (m *Manager) DownloadAndInstall(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Status.Active() {
		m.mu.Unlock()
		return errors.ErrUpdateInProgress
	}
	cand := m.candidate
	if cand == nil {
		m.state.Error = errors.ErrNoUpdateAvailable.Error()
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.publish(snap)
		return errors.ErrNoUpdateAvailable
	}
	m.gen++
	m.state.Status = StatusDownloading
	m.state.Progress = model.UpdateProgress{}
	m.state.Error = ""
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)

	log.Info().Str("version", cand.Version()).Msg("downloading update")
	events := cand.DownloadAndInstall(ctx)

	var downloaded, total uint64
	finished := false
	for {
		select {
		case <-ctx.Done():
			return m.fail(errors.UpdateDownloadFailed(ctx.Err()))
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return m.fail(errors.UpdateDownloadFailed(ctx.Err()))
				}
				if !finished {
					return m.fail(errors.UpdateDownloadFailed(fmt.Errorf("download ended after %d of %d bytes", downloaded, total)))
				}
				log.Info().Str("version", cand.Version()).Msg("update installed")
				return nil
			}
			switch e := ev.(type) {
			case Started:
				total = e.ContentLength
				m.update(func(s *State) {
					s.Progress = advance(s.Progress, downloaded, total)
				})
			case Progress:
				downloaded += e.ChunkLength
				m.update(func(s *State) {
					s.Progress = advance(s.Progress, downloaded, total)
				})
			case Finished:
				finished = true
				m.update(func(s *State) {
					s.Progress = finishedProgress(s.Progress, total)
					s.Status = StatusInstalling
				})
			case Failed:
				return m.fail(e.Err)
			default:
				log.Warn().Msgf("unknown download event %T", ev)
			}
		}
	}
}

func (m *Manager) fail(err error) error {
	if err == nil {
		err = errors.UpdateDownloadFailed(nil)
	}
	log.Err(err).Msg("update failed")
	m.update(func(s *State) {
		s.Status = StatusError
		s.Error = err.Error()
	})
	return err
}

// advance recomputes progress without letting percent go backwards.
func advance(prev model.UpdateProgress, downloaded, total uint64) model.UpdateProgress {
	next := model.NewUpdateProgress(downloaded, total)
	if next.Percent < prev.Percent {
		next.Percent = prev.Percent
	}
	return next
}

func finishedProgress(prev model.UpdateProgress, total uint64) model.UpdateProgress {
	if total == 0 {
		total = prev.Downloaded
	}
	return model.UpdateProgress{Downloaded: total, Total: total, Percent: 100}
}

// Dismiss resets the manager to idle. It is refused while a download or
// install is running.
func (m *Manager) Dismiss() error {
	m.mu.Lock()
	if m.state.Status.Active() {
		m.mu.Unlock()
		return errors.ErrUpdateInProgress
	}
	m.gen++
	m.candidate = nil
	m.state = State{Status: StatusIdle}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(snap)
	return nil
}

// RunAutoCheck performs a silent check after delay unless ctx ends first.
func (m *Manager) RunAutoCheck(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		delay = DefaultAutoCheckDelay
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}
	_ = m.CheckForUpdates(ctx, true)
}
