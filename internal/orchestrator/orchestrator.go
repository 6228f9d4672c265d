// Package orchestrator runs the shortcut requested on the command line once
// per process and reports the outcome.
package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/store"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Source is the read side of the shortcut store.
type Source interface {
	WaitLoaded(ctx context.Context) error
	Status() store.Status
	Shortcuts() []model.Shortcut
	Reload(ctx context.Context) error
}

type Executor interface {
	Execute(ctx context.Context, shortcut model.Shortcut) ([]string, error)
}

// Navigator returns the UI to its default view.
type Navigator interface {
	ShowDefault()
}

// Exiter terminates the process.
type Exiter interface {
	Exit(code int)
}

// RequestSource hands out the pending request.
type RequestSource interface {
	Pending(ctx context.Context) (*model.PendingExecutionRequest, error)
	Clear()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ShowDefault() { f() }

// ExiterFunc adapts a function to Exiter.
type ExiterFunc func(code int)

func (f ExiterFunc) Exit(code int) { f(code) }

// State is a copy of the orchestrator's observable fields.
type State struct {
	Status  Status                         `json:"status"`
	Message string                         `json:"message,omitempty"`
	Logs    []string                       `json:"logs,omitempty"`
	Request *model.PendingExecutionRequest `json:"request,omitempty"`
}

type Orchestrator struct {
	source    Source
	executor  Executor
	navigator Navigator
	exiter    Exiter
	requests  RequestSource

	mu    sync.Mutex
	state State
	ran   bool

	subsMu  sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

func New(source Source, executor Executor, navigator Navigator, exiter Exiter, requests RequestSource) *Orchestrator {
	return &Orchestrator{
		source:    source,
		executor:  executor,
		navigator: navigator,
		exiter:    exiter,
		requests:  requests,
		state:     State{Status: StatusIdle},
		subs:      make(map[int]func(State)),
	}
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.state
	s.Logs = append([]string(nil), s.Logs...)
	if s.Request != nil {
		req := *s.Request
		s.Request = &req
	}
	return s
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Status
}

func (o *Orchestrator) Message() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Message
}

func (o *Orchestrator) Logs() []string {
	return o.Snapshot().Logs
}

func (o *Orchestrator) Request() *model.PendingExecutionRequest {
	return o.Snapshot().Request
}

// ShowProgress reports whether the blocking progress view is due.
func (o *Orchestrator) ShowProgress() bool {
	s := o.Snapshot()
	return ShouldShowProgress(s.Request, s.Status)
}

// Subscribe registers fn for state changes and returns its cancel function.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	return func() {
		o.subsMu.Lock()
		defer o.subsMu.Unlock()
		delete(o.subs, id)
	}
}

// set applies fn unless ctx is done; it reports whether the write happened.
func (o *Orchestrator) set(ctx context.Context, fn func(s *State)) bool {
	o.mu.Lock()
	if ctx.Err() != nil {
		o.mu.Unlock()
		return false
	}
	fn(&o.state)
	o.mu.Unlock()

	snap := o.Snapshot()
	o.subsMu.Lock()
	fns := make([]func(State), 0, len(o.subs))
	for _, f := range o.subs {
		fns = append(fns, f)
	}
	o.subsMu.Unlock()
	for _, f := range fns {
		f(snap)
	}
	return true
}

// Run drives the pending request to a terminal state. It does nothing when
// there is no request or when it already ran. Once ctx is cancelled no state
// is written and neither exit nor navigation is requested.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.ran {
		o.mu.Unlock()
		return nil
	}
	o.ran = true
	o.mu.Unlock()

	req, err := o.requests.Pending(ctx)
	if err != nil {
		return errors.IPC("get_cli_shortcut_request", err)
	}
	if req == nil || ctx.Err() != nil {
		return ctx.Err()
	}
	if !o.set(ctx, func(s *State) { s.Request = req }) {
		return ctx.Err()
	}
	log.Info().Str("shortcut", req.ShortcutID).Bool("close", req.CloseAfterExecution).Msg("pending execution request")

	shortcuts, err := o.waitForShortcuts(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Warn().Err(err).Msg("shortcut data unavailable")
	}

	var target *model.Shortcut
	for i := range shortcuts {
		if shortcuts[i].ID == req.ShortcutID {
			target = &shortcuts[i]
			break
		}
	}

	if target == nil {
		notFound := errors.ErrShortcutNotFound(req.ShortcutID)
		if !o.set(ctx, func(s *State) {
			s.Status = StatusError
			s.Message = notFound.Error()
		}) {
			return ctx.Err()
		}
		log.Error().Str("shortcut", req.ShortcutID).Msg("shortcut not found")
		o.finish(ctx, req, 1)
		return notFound
	}

	if !o.set(ctx, func(s *State) {
		s.Status = StatusRunning
		s.Message = target.Name
		s.Logs = nil
	}) {
		return ctx.Err()
	}

	logs, execErr := o.executor.Execute(ctx, *target)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if execErr != nil {
		if !o.set(ctx, func(s *State) {
			s.Status = StatusError
			s.Message = execErr.Error()
			s.Logs = logs
		}) {
			return ctx.Err()
		}
		log.Err(execErr).Str("shortcut", target.ID).Msg("shortcut execution failed")
		o.finish(ctx, req, 1)
		return execErr
	}

	if !o.set(ctx, func(s *State) {
		s.Status = StatusSuccess
		s.Message = target.Name
		s.Logs = logs
	}) {
		return ctx.Err()
	}
	log.Info().Str("shortcut", target.ID).Int("actions", len(target.Actions)).Msg("shortcut executed")
	o.finish(ctx, req, 0)
	return nil
}

// waitForShortcuts waits for the initial load and reloads once when the
// collection came back empty.
func (o *Orchestrator) waitForShortcuts(ctx context.Context) ([]model.Shortcut, error) {
	if err := o.source.WaitLoaded(ctx); err != nil {
		return nil, err
	}
	shortcuts := o.source.Shortcuts()
	if len(shortcuts) > 0 {
		return shortcuts, nil
	}
	log.Debug().Str("status", string(o.source.Status())).Msg("no shortcuts loaded, reloading once")
	if err := o.source.Reload(ctx); err != nil {
		return nil, err
	}
	return o.source.Shortcuts(), nil
}

// finish exits with code when requested, otherwise falls back to the default
// view and clears the request.
func (o *Orchestrator) finish(ctx context.Context, req *model.PendingExecutionRequest, code int) {
	if ctx.Err() != nil {
		return
	}
	if req.CloseAfterExecution {
		o.exiter.Exit(code)
		return
	}
	o.navigator.ShowDefault()
	o.requests.Clear()
	o.set(ctx, func(s *State) { s.Request = nil })
}

// ShouldShowProgress reports whether the blocking progress view replaces
// normal navigation.
func ShouldShowProgress(req *model.PendingExecutionRequest, status Status) bool {
	if req == nil || !req.ShowProgressWindow {
		return false
	}
	return status == StatusRunning || status == StatusError
}
