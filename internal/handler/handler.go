package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/pathutil"
	"github.com/Paintersrp/loradex/internal/record"
)

var (
	// ErrExists is returned when an operation would overwrite a file.
	ErrExists = errors.New("file already exists")
	// ErrNotFound is returned when the model file is missing on disk.
	ErrNotFound = errors.New("model file not found")
	// ErrInvalidName rejects names that are empty or contain path elements.
	ErrInvalidName = errors.New("invalid model name")
)

type FileHandler struct {
	root string
}

func NewFileHandler(root string) *FileHandler {
	return &FileHandler{root: pathutil.NormalizePath(root)}
}

// Root returns the models directory the handler operates on.
func (h *FileHandler) Root() string {
	return h.root
}

// companion is one existing file belonging to a model together with the
// suffix that follows the model name.
type companion struct {
	path   string
	suffix string
}

// companions lists the model file and every known sidecar that exists next
// to it. The model file is always first.
func (h *FileHandler) companions(rec *record.Record) ([]companion, error) {
	if rec == nil || rec.Path == "" {
		return nil, ErrNotFound
	}
	if _, err := os.Stat(rec.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", rec.Filename, ErrNotFound)
		}
		return nil, err
	}

	dir := filepath.Dir(rec.Path)
	name := rec.Name
	modelSuffix := constants.ModelExt
	if base := filepath.Base(rec.Path); strings.HasPrefix(base, name) {
		modelSuffix = base[len(name):]
	}
	files := []companion{{path: rec.Path, suffix: modelSuffix}}

	suffixes := append([]string{constants.SidecarExt, constants.CivitaiInfoExt}, constants.PreviewSuffixes...)
	for _, suffix := range suffixes {
		p := filepath.Join(dir, name+suffix)
		if _, err := os.Stat(p); err == nil {
			files = append(files, companion{path: p, suffix: suffix})
		}
	}
	return files, nil
}

// Rename gives the model and its sidecars a new base name in place and
// returns the new model path. Nothing is renamed if any target exists.
func (h *FileHandler) Rename(rec *record.Record, newName string) (string, error) {
	newName = strings.TrimSpace(newName)
	if strings.HasSuffix(strings.ToLower(newName), constants.ModelExt) {
		newName = newName[:len(newName)-len(constants.ModelExt)]
	}
	if newName == "" || newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
		return "", fmt.Errorf("%q: %w", newName, ErrInvalidName)
	}

	files, err := h.companions(rec)
	if err != nil {
		return "", err
	}
	if newName == rec.Name {
		return rec.Path, nil
	}

	dir := filepath.Dir(rec.Path)
	targets := make([]string, len(files))
	for i, f := range files {
		targets[i] = filepath.Join(dir, newName+f.suffix)
		if _, err := os.Stat(targets[i]); err == nil {
			// Case-only renames resolve to the same file on some filesystems.
			if !strings.EqualFold(targets[i], f.path) {
				return "", fmt.Errorf("%s: %w", filepath.Base(targets[i]), ErrExists)
			}
		}
	}

	for i, f := range files {
		if err := os.Rename(f.path, targets[i]); err != nil {
			return "", fmt.Errorf("rename %s: %w", filepath.Base(f.path), err)
		}
	}
	return targets[0], nil
}

// Move relocates the model and its sidecars into targetFolder, a path
// relative to the models directory ("" is the root). It returns the number
// of files moved.
func (h *FileHandler) Move(rec *record.Record, targetFolder string) (int, error) {
	files, err := h.companions(rec)
	if err != nil {
		return 0, err
	}

	targetDir, err := pathutil.Within(h.root, strings.Trim(targetFolder, `/\`))
	if err != nil {
		return 0, err
	}
	if targetDir == filepath.Dir(rec.Path) {
		return 0, nil
	}

	for _, f := range files {
		dest := filepath.Join(targetDir, filepath.Base(f.path))
		if _, err := os.Stat(dest); err == nil {
			return 0, fmt.Errorf("%s: %w", filepath.Base(f.path), ErrExists)
		}
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return 0, fmt.Errorf("create target directory: %w", err)
	}

	moved := 0
	for _, f := range files {
		dest := filepath.Join(targetDir, filepath.Base(f.path))
		if err := os.Rename(f.path, dest); err != nil {
			return moved, fmt.Errorf("move %s: %w", filepath.Base(f.path), err)
		}
		moved++
	}
	return moved, nil
}

// Folders lists every directory below the models directory relative to it,
// sorted, with "" standing for the root. Hidden directories are skipped.
func (h *FileHandler) Folders() ([]string, error) {
	folders := []string{""}
	err := filepath.WalkDir(h.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == h.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		rel, err := pathutil.LibraryRelative(h.root, path)
		if err != nil {
			return err
		}
		folders = append(folders, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(folders)
	return folders, nil
}

// SaveAttributes replaces the JSON sidecar of rec with attrs. The file is
// written to a temporary name first and renamed into place.
func (h *FileHandler) SaveAttributes(rec *record.Record, attrs map[string]any) error {
	if rec == nil || rec.Path == "" {
		return ErrNotFound
	}
	if attrs == nil {
		attrs = map[string]any{}
	}

	data, err := json.MarshalIndent(attrs, "", "    ")
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}

	target := filepath.Join(filepath.Dir(rec.Path), rec.Name+constants.SidecarExt)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+rec.Name+"-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
