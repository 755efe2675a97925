package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when the screenshot directory does not exist or is
// not a directory. It is the only error that aborts a whole run.
var ErrNotFound = errors.New("screenshot directory not found")

// Screenshot is an image file discovered in the screenshot directory.
type Screenshot struct {
	Path    string
	Name    string
	Ext     string
	ModTime time.Time
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// organizedName matches names the renamer produces: category, timestamp and
// an optional collision suffix, e.g. code_editor_20240101_093000_1.
var organizedName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*_\d{8}_\d{6}(_\d+)?$`)

// IsOrganizedName reports whether a file name already follows the organized
// naming scheme. Such files are skipped on re-runs instead of being
// classified again.
func IsOrganizedName(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return organizedName.MatchString(base)
}

// Scan lists the image files directly inside dir, sorted by name. It does not
// descend into subdirectories.
func Scan(dir string) ([]Screenshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: '%s' is not a directory", ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}

	var shots []Screenshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExts[ext] {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		shots = append(shots, Screenshot{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Ext:     ext,
			ModTime: fi.ModTime(),
		})
	}

	sort.Slice(shots, func(i, j int) bool { return shots[i].Name < shots[j].Name })
	return shots, nil
}
