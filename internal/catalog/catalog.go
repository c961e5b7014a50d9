package catalog

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/pathutil"
	"github.com/Paintersrp/loradex/internal/record"
)

// Catalog is an ordered, indexed set of records for one models directory.
// Records are shared between snapshots and must be treated as read-only.
type Catalog struct {
	root    string
	records []*record.Record
	byID    map[string]*record.Record
}

// TagCount pairs a tag with the number of records carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func newCatalog(root string, records []*record.Record) *Catalog {
	c := &Catalog{root: root, records: records}
	c.reindex()
	return c
}

var submitTask = func(pool *ants.Pool, task func()) error {
	return pool.Submit(task)
}

// Build scans root and loads every model with a bounded worker pool. Files
// that disappear or fail to load are logged and skipped.
func Build(root string, cfg Config, loader *Loader) (*Catalog, error) {
	root = pathutil.NormalizePath(root)
	paths, siblings, err := scan(root, cfg)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if loader == nil {
		loader = NewLoader(root, nil)
	}

	pool, err := ants.NewPool(cfg.workers(), ants.WithPanicHandler(func(v any) {
		loader.logger.Error("record loader panic", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create loader pool: %w", err)
	}
	defer pool.Release()

	loaded := make([]*record.Record, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		submitErr := submitTask(pool, func() {
			defer wg.Done()
			rec, err := loader.load(p, siblings[filepath.Dir(p)])
			if err != nil {
				loader.logger.Warn("skip model", zap.String("path", p), zap.Error(err))
				return
			}
			loaded[i] = rec
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit %s: %w", p, submitErr)
		}
	}
	wg.Wait()

	records := make([]*record.Record, 0, len(loaded))
	for _, rec := range loaded {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return newCatalog(root, records), nil
}

// New wraps already loaded records, keeping them in path order.
func New(root string, records []*record.Record) *Catalog {
	sorted := append([]*record.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return newCatalog(pathutil.NormalizePath(root), sorted)
}

func (c *Catalog) reindex() {
	c.byID = make(map[string]*record.Record, len(c.records))
	for _, rec := range c.records {
		key := strings.ToLower(rec.ID)
		if _, exists := c.byID[key]; !exists {
			c.byID[key] = rec
		}
	}
}

// Root returns the models directory the catalog was built from.
func (c *Catalog) Root() string { return c.root }

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Records returns the records in path order. The slice is a copy.
func (c *Catalog) Records() []*record.Record {
	return append([]*record.Record(nil), c.records...)
}

// Get looks a record up by ID, ignoring case. When two models share a name
// the one with the lexically first path wins.
func (c *Catalog) Get(id string) (*record.Record, bool) {
	rec, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return rec, ok
}

// BaseModels returns the distinct base models, sorted.
func (c *Catalog) BaseModels() []string {
	seen := make(map[string]struct{})
	for _, rec := range c.records {
		seen[rec.BaseModel] = struct{}{}
	}
	return sortedKeys(seen)
}

// Folders returns the distinct library-relative directories holding models.
// Models in the root are reported as "".
func (c *Catalog) Folders() []string {
	seen := make(map[string]struct{})
	for _, rec := range c.records {
		dir := path.Dir(rec.RelPath)
		if dir == "." {
			dir = ""
		}
		seen[dir] = struct{}{}
	}
	return sortedKeys(seen)
}

// Tags counts every tag across records, sorted by tag.
func (c *Catalog) Tags() []TagCount {
	counts := make(map[string]int)
	for _, rec := range c.records {
		for _, tag := range rec.TagList() {
			counts[tag]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Clone returns a catalog that can be mutated without affecting c.
func (c *Catalog) Clone() *Catalog {
	return newCatalog(c.root, c.Records())
}

// upsert replaces the record with the same path or inserts it in path order.
func (c *Catalog) upsert(rec *record.Record) {
	i := sort.Search(len(c.records), func(i int) bool { return c.records[i].Path >= rec.Path })
	if i < len(c.records) && c.records[i].Path == rec.Path {
		c.records[i] = rec
	} else {
		c.records = append(c.records, nil)
		copy(c.records[i+1:], c.records[i:])
		c.records[i] = rec
	}
	c.reindex()
}

// remove drops the record stored at path, reporting whether one existed.
func (c *Catalog) remove(p string) bool {
	for i, rec := range c.records {
		if rec.Path == p {
			c.records = append(c.records[:i], c.records[i+1:]...)
			c.reindex()
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// removeUnder drops every record stored below dir.
func (c *Catalog) removeUnder(dir string) {
	prefix := dir + string(filepath.Separator)
	kept := c.records[:0]
	for _, rec := range c.records {
		if !strings.HasPrefix(rec.Path, prefix) {
			kept = append(kept, rec)
		}
	}
	if len(kept) != len(c.records) {
		c.records = kept
		c.reindex()
	}
}
