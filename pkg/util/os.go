package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/rs/zerolog/log"
)

// AppDirName is the directory holding the data file under the local data dir
const AppDirName = "advanced-shortcut"

// FindFilesWithPatterns returns the files under directory whose base name
// matches pattern. Unreadable subdirectories are skipped.
func FindFilesWithPatterns(directory string, pattern string, recursive bool) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	dirInfo, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory '%s': %w", directory, err)
	}
	if !dirInfo.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory", directory)
	}

	var matchedFiles []string
	fsys := os.DirFS(directory)
	err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != "." {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if !recursive && path != "." {
				return fs.SkipDir
			}
			return nil
		}
		if re.MatchString(d.Name()) {
			matchedFiles = append(matchedFiles, filepath.Join(directory, path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory '%s': %w", directory, err)
	}
	return matchedFiles, nil
}

// LocalDataDir is the per-user local application data directory:
// %LOCALAPPDATA% on Windows, ~/Library/Application Support on macOS and
// $XDG_DATA_HOME (default ~/.local/share) elsewhere.
func LocalDataDir() string {
	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir
		}
		return filepath.Join(os.ExpandEnv("${USERPROFILE}"), "AppData", "Local")
	case "darwin":
		return filepath.Join(os.ExpandEnv("${HOME}"), "Library", "Application Support")
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir
		}
		return filepath.Join(os.ExpandEnv("${HOME}"), ".local", "share")
	}
}

// DefaultDataDir is where data.json lives unless configured otherwise
func DefaultDataDir() string {
	return filepath.Join(LocalDataDir(), AppDirName)
}

func GetDirSize(dir string) string {
	var size int64
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil {
			size += info.Size()
		}
		return nil
	})
	return ByteCountSI(size)
}

func ByteCountSI(b int64) string {
	const unit = 1000
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(b)/float64(div), "kMGTPE"[exp])
}

// PrepareDir ensures that the specified directory path exists.
// If the directory does not exist, it attempts to create it.
func PrepareDir(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		} else {
			return err
		}
	} else if !stat.IsDir() {
		log.Debug().Msgf("%s is not a directory", path)
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it
// over path, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := PrepareDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
