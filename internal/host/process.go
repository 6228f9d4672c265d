package host

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// ProcessList returns the running processes, one entry per name
// (case-insensitive), sorted by name.
func (h *Host) ProcessList(ctx context.Context) ([]model.ProcessInfo, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.IPC("list processes", err)
	}

	list := make([]model.ProcessInfo, 0, len(processes))
	for _, p := range processes {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		info := model.ProcessInfo{PID: uint32(p.Pid), Name: name}
		if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
			info.MemoryUsage = mem.RSS
		}
		if exe, err := p.ExeWithContext(ctx); err == nil {
			info.Exe = exe
		}
		list = append(list, info)
	}
	return DedupProcesses(list), nil
}

// DedupProcesses sorts by lowercase name and keeps the first entry per name.
func DedupProcesses(list []model.ProcessInfo) []model.ProcessInfo {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
	out := list[:0]
	for i, p := range list {
		if i > 0 && strings.EqualFold(p.Name, out[len(out)-1].Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// KillProcesses kills every process named name, ignoring case, and returns
// how many were killed.
func (h *Host) KillProcesses(ctx context.Context, name string) (int, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, errors.IPC("list processes", err)
	}
	killed := 0
	var errs []error
	for _, p := range processes {
		pname, err := p.NameWithContext(ctx)
		if err != nil || !MatchProcessName(pname, name) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Debug().Err(err).Int32("pid", p.Pid).Str("name", pname).Msg("kill failed")
			errs = append(errs, err)
			continue
		}
		killed++
	}
	if killed == 0 && len(errs) > 0 {
		return 0, errors.IPC("kill "+name, errors.JoinErrors(errs...))
	}
	return killed, nil
}

// MatchProcessName compares process names case-insensitively. A missing
// ".exe" suffix on either side is tolerated.
func MatchProcessName(actual, want string) bool {
	if strings.EqualFold(actual, want) {
		return true
	}
	trim := func(s string) string {
		if strings.HasSuffix(strings.ToLower(s), ".exe") {
			return s[:len(s)-4]
		}
		return s
	}
	return strings.EqualFold(trim(actual), trim(want))
}
