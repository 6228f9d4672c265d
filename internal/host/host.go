// Package host talks to the operating system: processes, windows, installed
// applications, shortcut files and the desktop.
package host

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

// Host bundles the OS operations. The zero value is not usable; use New.
type Host struct {
	// Executable is the binary desktop shortcuts point at.
	Executable string
	// GOOS selects the platform behavior of the pure helpers, for tests.
	GOOS string

	exit func(int)
}

func New() *Host {
	exe, err := os.Executable()
	if err != nil {
		log.Debug().Err(err).Msg("resolve executable path failed")
		exe = os.Args[0]
	}
	return &Host{
		Executable: exe,
		GOOS:       runtime.GOOS,
		exit:       os.Exit,
	}
}

// SetExitFunc replaces the process exit, for tests.
func (h *Host) SetExitFunc(fn func(int)) {
	h.exit = fn
}

// Exit gives log writers a moment to flush and ends the process.
func (h *Host) Exit(code int) {
	log.Info().Int("code", code).Msg("exit")
	time.Sleep(50 * time.Millisecond)
	h.exit(code)
}
