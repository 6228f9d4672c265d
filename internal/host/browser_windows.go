//go:build windows

package host

import (
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows/registry"
)

const urlAssociationKey = `Software\Microsoft\Windows\Shell\Associations\UrlAssociations\http\UserChoice`

var fallbackBrowsers = []string{
	`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files\Mozilla Firefox\firefox.exe`,
	`C:\Program Files\BraveSoftware\Brave-Browser\Application\brave.exe`,
}

// openInNewBrowserWindow starts the default browser with its new-window flag.
func openInNewBrowserWindow(url string) bool {
	if path := defaultBrowser(); path != "" {
		if startBrowser(path, url) {
			return true
		}
	}
	for _, path := range fallbackBrowsers {
		if _, err := os.Stat(path); err == nil && startBrowser(path, url) {
			return true
		}
	}
	return false
}

func startBrowser(path, url string) bool {
	cmd := exec.Command(path, NewWindowFlag(path), url)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		log.Debug().Err(err).Str("browser", path).Msg("start browser failed")
		return false
	}
	go cmd.Wait()
	return true
}

func defaultBrowser() string {
	k, err := registry.OpenKey(registry.CURRENT_USER, urlAssociationKey, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	progID, _, err := k.GetStringValue("ProgId")
	k.Close()
	if err != nil || progID == "" {
		return ""
	}

	ck, err := registry.OpenKey(registry.CLASSES_ROOT, progID+`\shell\open\command`, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer ck.Close()
	command, _, err := ck.GetStringValue("")
	if err != nil {
		return ""
	}
	return CommandPath(command)
}
