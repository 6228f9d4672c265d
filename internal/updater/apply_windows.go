//go:build windows

package updater

import (
	"fmt"
	"os"
	"os/exec"
)

// Install renames the running .exe to .old and copies the new binary into
// place; a running executable can be renamed but not overwritten.
func Install(newBinaryPath string) error {
	currentExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := healthCheck(newBinaryPath); err != nil {
		return err
	}

	backupPath := currentExe + ".old"
	os.Remove(backupPath)
	if err := os.Rename(currentExe, backupPath); err != nil {
		return fmt.Errorf("rename current exe: %w", err)
	}
	if err := copyFile(newBinaryPath, currentExe); err != nil {
		_ = os.Rename(backupPath, currentExe)
		return fmt.Errorf("copy new binary: %w", err)
	}
	return nil
}

// Restart spawns the installed binary with the same arguments and exits.
func Restart() error {
	currentExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	cmd := exec.Command(currentExe, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start new process: %w", err)
	}
	os.Exit(0)
	return nil
}
