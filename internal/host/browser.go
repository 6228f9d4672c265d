package host

import (
	"path/filepath"
	"strings"
)

// NewWindowFlag is the browser's command line switch for a new window.
func NewWindowFlag(browserPath string) string {
	if strings.Contains(strings.ToLower(filepath.Base(browserPath)), "firefox") {
		return "-new-window"
	}
	return "--new-window"
}

// CommandPath extracts the executable from a registry command line such as
// `"C:\...\chrome.exe" --single-argument %1`.
func CommandPath(command string) string {
	command = strings.TrimSpace(command)
	if strings.HasPrefix(command, `"`) {
		if end := strings.Index(command[1:], `"`); end >= 0 {
			return command[1 : end+1]
		}
		return strings.Trim(command, `"`)
	}
	if i := strings.IndexByte(command, ' '); i >= 0 {
		return command[:i]
	}
	return command
}
