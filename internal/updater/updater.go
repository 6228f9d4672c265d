// Package updater drives the check, download and install lifecycle of
// application updates.
package updater

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/sjzar/advshortcut/internal/errors"
)

type Status string

const (
	StatusIdle        Status = "idle"
	StatusChecking    Status = "checking"
	StatusAvailable   Status = "available"
	StatusUpToDate    Status = "up-to-date"
	StatusError       Status = "error"
	StatusDownloading Status = "downloading"
	StatusInstalling  Status = "installing"
)

// Active reports whether a download or install is running.
func (s Status) Active() bool {
	return s == StatusDownloading || s == StatusInstalling
}

// DownloadEvent is one item of the stream returned by
// Candidate.DownloadAndInstall.
type DownloadEvent interface {
	downloadEvent()
}

// Started announces the size of the download; 0 means unknown.
type Started struct {
	ContentLength uint64
}

// Progress reports a received chunk.
type Progress struct {
	ChunkLength uint64
}

// Finished marks the end of the download; installation follows.
type Finished struct{}

// Failed aborts the stream.
type Failed struct {
	Err error
}

func (Started) downloadEvent()  {}
func (Progress) downloadEvent() {}
func (Finished) downloadEvent() {}
func (Failed) downloadEvent()   {}

// Candidate is a release newer than the running build.
type Candidate interface {
	Version() string
	Body() string
	Date() string
	// DownloadAndInstall starts the download and returns its event stream.
	// The channel is closed once installation completed or failed.
	DownloadAndInstall(ctx context.Context) <-chan DownloadEvent
}

// Checker looks up the latest release. A nil Candidate means up to date.
type Checker interface {
	Check(ctx context.Context) (Candidate, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) (Candidate, error)

func (f CheckerFunc) Check(ctx context.Context) (Candidate, error) { return f(ctx) }

const noReleaseMessage = "Could not fetch a valid release"

// IsNoReleaseChannel reports the benign failure of a build that has no
// release channel configured.
func IsNoReleaseChannel(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, errors.ErrNoReleaseChannel) {
		return true
	}
	return strings.Contains(err.Error(), noReleaseMessage)
}
