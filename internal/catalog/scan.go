package catalog

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/pathutil"
)

// Config controls which parts of the models directory are scanned and how
// many files are loaded concurrently.
type Config struct {
	IgnoredFolders []string
	Workers        int
}

const defaultWorkers = 8

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}

// IsModelFile reports whether name carries the model extension.
func IsModelFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), constants.ModelExt)
}

// Scan walks root and returns every model file below it, sorted. Hidden
// directories and configured ignored folders are skipped.
func Scan(root string, cfg Config) ([]string, error) {
	paths, _, err := scan(root, cfg)
	return paths, err
}

// scan also returns the file names of every directory holding a model so
// that associated files can be resolved without listing directories again.
func scan(root string, cfg Config) ([]string, map[string][]string, error) {
	root = pathutil.NormalizePath(root)
	if root == "" {
		return nil, nil, errors.New("models directory cannot be empty")
	}

	ignored := make(map[string]struct{}, len(cfg.IgnoredFolders))
	for _, dir := range cfg.IgnoredFolders {
		ignored[strings.ToLower(strings.TrimSpace(dir))] = struct{}{}
	}

	var paths []string
	siblings := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := strings.ToLower(d.Name())
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if _, skip := ignored[name]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		dir := filepath.Dir(path)
		siblings[dir] = append(siblings[dir], d.Name())
		if IsModelFile(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Strings(paths)
	return paths, siblings, nil
}
