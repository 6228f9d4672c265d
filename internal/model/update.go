package model

// UpdateInfo describes an available release.
type UpdateInfo struct {
	Version        string `json:"version"`
	CurrentVersion string `json:"currentVersion"`
	Body           string `json:"body,omitempty"`
	Date           string `json:"date,omitempty"`
}

// UpdateProgress is the byte progress of a download.
type UpdateProgress struct {
	Downloaded uint64  `json:"downloaded"`
	Total      uint64  `json:"total"`
	Percent    float64 `json:"percent"`
}

// NewUpdateProgress computes percent as 100*downloaded/total clamped to
// [0,100]; an unknown total yields 0.
func NewUpdateProgress(downloaded, total uint64) UpdateProgress {
	p := UpdateProgress{Downloaded: downloaded, Total: total}
	if total > 0 {
		p.Percent = 100 * float64(downloaded) / float64(total)
	}
	if p.Percent > 100 {
		p.Percent = 100
	}
	if p.Percent < 0 {
		p.Percent = 0
	}
	return p
}

// PendingExecutionRequest is the one-shot request passed on the command line.
type PendingExecutionRequest struct {
	ShortcutID          string `json:"shortcutId"`
	CloseAfterExecution bool   `json:"closeAfterExecution"`
	ShowProgressWindow  bool   `json:"showProgressWindow"`
}
