// Package executor runs the actions of a shortcut against the host.
package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// Host is the part of the operating system the actions need.
type Host interface {
	StartProcess(ctx context.Context, path string, args []string) (int, error)
	OpenFolder(ctx context.Context, path string) error
	OpenURL(ctx context.Context, url string) error
	KillProcesses(ctx context.Context, name string) (int, error)
	WindowList(ctx context.Context) ([]model.WindowInfo, error)
	MoveWindow(ctx context.Context, w model.WindowInfo, x, y, width, height int32) error
}

const (
	DefaultLaunchSettle = time.Second
	DefaultPollInterval = 200 * time.Millisecond
	DefaultPollAttempts = 10
	DefaultFolderSettle = 800 * time.Millisecond
	DefaultURLSettle    = 1500 * time.Millisecond
)

type Executor struct {
	host Host

	Now func() time.Time

	// Window placement timings. A launched process gets LaunchSettle and
	// then up to PollAttempts looks for its window.
	LaunchSettle time.Duration
	PollInterval time.Duration
	PollAttempts int
	FolderSettle time.Duration
	URLSettle    time.Duration

	mu        sync.Mutex
	observers map[int]func(model.ExecutionResult)
	nextObs   int
}

func New(host Host) *Executor {
	return &Executor{
		host:         host,
		Now:          time.Now,
		LaunchSettle: DefaultLaunchSettle,
		PollInterval: DefaultPollInterval,
		PollAttempts: DefaultPollAttempts,
		FolderSettle: DefaultFolderSettle,
		URLSettle:    DefaultURLSettle,
		observers:    make(map[int]func(model.ExecutionResult)),
	}
}

// Subscribe registers fn for finished runs and returns its cancel function.
func (e *Executor) Subscribe(fn func(model.ExecutionResult)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// Execute runs the actions in order and returns one line per action. The
// first failing action ends the run; the lines so far are returned with the
// error.
func (e *Executor) Execute(ctx context.Context, sc model.Shortcut) ([]string, error) {
	started := e.Now()
	lines := make([]string, 0, len(sc.Actions))
	var runErr error

	for i, a := range sc.Actions {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		line, err := e.ExecuteAction(ctx, a)
		if err != nil {
			lines = append(lines, "Error: "+errors.Message(err))
			if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
				runErr = ctxErr
			} else {
				runErr = errors.ActionFailed(i, string(a.Kind()), err)
			}
			break
		}
		log.Debug().Str("shortcut", sc.ID).Int("action", i+1).Msg(line)
		lines = append(lines, line)
	}

	result := model.ExecutionResult{
		ShortcutID: sc.ID,
		Name:       sc.Name,
		Success:    runErr == nil,
		Logs:       append([]string(nil), lines...),
		StartedAt:  model.Timestamp(started),
		FinishedAt: model.Timestamp(e.Now()),
	}
	if runErr != nil {
		result.Error = runErr.Error()
		log.Warn().Err(runErr).Str("shortcut", sc.ID).Msg("shortcut failed")
	} else {
		log.Info().Str("shortcut", sc.ID).Int("actions", len(lines)).Msg("shortcut executed")
	}
	e.publish(result)
	return lines, runErr
}

func (e *Executor) publish(r model.ExecutionResult) {
	e.mu.Lock()
	fns := make([]func(model.ExecutionResult), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(r)
	}
}

// ExecuteAction runs a single action and returns its result line.
func (e *Executor) ExecuteAction(ctx context.Context, a model.Action) (string, error) {
	if a == nil {
		return "", errors.RequiredParam("action")
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	switch v := a.(type) {
	case model.Launch:
		return e.launch(ctx, v)
	case model.Kill:
		return e.kill(ctx, v)
	case model.OpenFolder:
		return e.openFolder(ctx, v)
	case model.OpenURL:
		return e.openURL(ctx, v)
	case model.Delay:
		if err := sleep(ctx, v.Duration()); err != nil {
			return "", err
		}
		return fmt.Sprintf("Delayed for %dms", v.Ms), nil
	default:
		return "", errors.UnsupportedAction(fmt.Sprintf("%T", a))
	}
}

func (e *Executor) kill(ctx context.Context, a model.Kill) (string, error) {
	n, err := e.host.KillProcesses(ctx, a.ProcessName)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", errors.ProcessNotFound(a.ProcessName)
	}
	return fmt.Sprintf("Killed %d instance(s) of %s", n, a.ProcessName), nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
