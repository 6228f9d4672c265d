package model

type WindowInfo struct {
	Hwnd        int64  `json:"hwnd"`
	Title       string `json:"title"`
	ProcessName string `json:"processName"`
	PID         uint32 `json:"pid"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	Width       int32  `json:"width"`
	Height      int32  `json:"height"`
}

type ProcessInfo struct {
	PID         uint32 `json:"pid"`
	Name        string `json:"name"`
	Exe         string `json:"exe,omitempty"`
	MemoryUsage uint64 `json:"memoryUsage"`
}

type InstalledApp struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Icon string `json:"icon,omitempty"`
}

// ResolvedLink is the target of a shortcut file (.desktop, .url, .webloc).
type ResolvedLink struct {
	Path string   `json:"path"`
	Args []string `json:"args"`
}

type DesktopShortcutRequest struct {
	ShortcutID string `json:"shortcutId"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
}

// ExecutionResult is published after every shortcut run.
type ExecutionResult struct {
	ShortcutID string   `json:"shortcutId"`
	Name       string   `json:"name"`
	Success    bool     `json:"success"`
	Logs       []string `json:"logs"`
	Error      string   `json:"error,omitempty"`
	StartedAt  string   `json:"startedAt"`
	FinishedAt string   `json:"finishedAt"`
}
