//go:build !windows

package host

func openInNewBrowserWindow(string) bool { return false }
