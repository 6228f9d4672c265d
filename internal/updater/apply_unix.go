//go:build !windows

package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve symlinks: %w", err)
	}
	return resolved, nil
}

// Install replaces the running binary with newBinaryPath, keeping the
// previous one as <exe>.old.
func Install(newBinaryPath string) error {
	realPath, err := executablePath()
	if err != nil {
		return err
	}
	if err := healthCheck(newBinaryPath); err != nil {
		return err
	}

	backupPath := realPath + ".old"
	if err := copyFile(realPath, backupPath); err != nil {
		return fmt.Errorf("backup current binary: %w", err)
	}
	if err := copyFile(newBinaryPath, realPath); err != nil {
		_ = copyFile(backupPath, realPath)
		return fmt.Errorf("replace binary: %w", err)
	}
	return nil
}

// Restart execs the installed binary in place of this process.
func Restart() error {
	realPath, err := executablePath()
	if err != nil {
		return err
	}
	return syscall.Exec(realPath, os.Args, os.Environ())
}
