package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/cache"
	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/pathutil"
	"github.com/Paintersrp/loradex/internal/record"
)

const sidecarCacheSize = 4096

type fileKey struct {
	path    string
	modTime int64
	size    int64
}

// Loader builds records from model files and their sidecars. Decoded
// sidecars are memoised by path, modification time and size.
type Loader struct {
	root   string
	logger *zap.Logger
	cache  *cache.LRUCache[fileKey, record.Attributes]
}

func NewLoader(root string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		root:   pathutil.NormalizePath(root),
		logger: logger,
		cache:  cache.NewLRUCache[fileKey, record.Attributes](sidecarCacheSize),
	}
}

// Load builds the record for the model file at path.
func Load(root, path string) (*record.Record, error) {
	return NewLoader(root, nil).Load(path)
}

func (l *Loader) Load(path string) (*record.Record, error) {
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return l.load(path, names)
}

func (l *Loader) load(path string, siblings []string) (*record.Record, error) {
	path = pathutil.NormalizePath(path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	name := ModelName(filename)

	rel, err := pathutil.LibraryRelative(l.root, path)
	if err != nil {
		return nil, err
	}

	rec := &record.Record{
		ID:         name,
		Name:       name,
		Filename:   filename,
		Path:       path,
		RelPath:    rel,
		Category:   filepath.Base(dir),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}

	for _, suffix := range constants.PreviewSuffixes {
		preview := filepath.Join(dir, name+suffix)
		if _, err := os.Stat(preview); err == nil {
			if relPreview, err := pathutil.LibraryRelative(l.root, preview); err == nil {
				rec.PreviewImages = append(rec.PreviewImages, "/"+relPreview)
			}
		}
	}

	prefix := name + "."
	for _, sibling := range siblings {
		if strings.HasPrefix(sibling, prefix) {
			rec.AssociatedFiles = append(rec.AssociatedFiles, sibling)
		}
	}
	sort.Strings(rec.AssociatedFiles)

	attrs, found := l.sidecar(filepath.Join(dir, name+constants.SidecarExt))
	if found {
		rec.Attributes = attrs
		if _, ok := attrs.Extra["category"]; ok {
			rec.Category = attrs.Category
		}
	}

	civitai, civitaiFound := l.sidecar(filepath.Join(dir, name+constants.CivitaiInfoExt))
	if civitaiFound {
		rec.CivitaiInfo = civitai.Extra
	}

	switch {
	case attrs.BaseModel != "":
		rec.BaseModel = attrs.BaseModel
	case civitai.BaseModel != "":
		rec.BaseModel = civitai.BaseModel
	default:
		rec.BaseModel = constants.UnknownBaseModel
	}

	return rec, nil
}

// sidecar decodes a JSON sidecar. Missing files report found=false; files
// that cannot be decoded are logged and treated as empty.
func (l *Loader) sidecar(path string) (record.Attributes, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("stat sidecar", zap.String("path", path), zap.Error(err))
		}
		return record.Attributes{}, false
	}

	key := fileKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}
	if attrs, ok := l.cache.Get(key); ok {
		return attrs, true
	}

	var attrs record.Attributes
	data, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(data, &attrs)
	}
	if err != nil {
		l.logger.Warn("invalid sidecar", zap.String("path", path), zap.Error(err))
		attrs = record.Attributes{Extra: map[string]any{}}
	}

	l.cache.Put(key, attrs)
	return attrs, true
}

// ModelName strips the model extension from a file name.
func ModelName(filename string) string {
	if IsModelFile(filename) {
		return filename[:len(filename)-len(constants.ModelExt)]
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// ModelPathFor maps a model file or any of its sidecars to the model file
// path. ok is false for unrelated files.
func ModelPathFor(path string) (string, bool) {
	lower := strings.ToLower(path)
	if IsModelFile(lower) {
		return path, true
	}

	suffixes := append([]string{constants.SidecarExt, constants.CivitaiInfoExt}, constants.PreviewSuffixes...)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			return path[:len(path)-len(suffix)] + constants.ModelExt, true
		}
	}
	return "", false
}
