package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/logger"
	"github.com/Paintersrp/loradex/internal/pathutil"
	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/views"
)

const maxBodyBytes = 1 << 20

type modelGroup struct {
	Name   string           `json:"name"`
	Models []*record.Record `json:"models"`
}

type modelsResponse struct {
	Total  int              `json:"total"`
	Shown  int              `json:"shown"`
	Models []*record.Record `json:"models,omitempty"`
	Groups []modelGroup     `json:"groups,omitempty"`
}

type folder struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (s *Server) snapshot(w http.ResponseWriter) (*catalog.Catalog, bool) {
	cat, _ := s.deps()
	if cat == nil {
		writeError(w, http.StatusServiceUnavailable, "models directory not set")
		return nil, false
	}
	c, err := cat.AcquireSnapshot()
	if err != nil {
		s.logger.Error("catalog unavailable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return nil, false
	}
	catalogRecords.Set(float64(c.Len()))
	return c, true
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	cat, _ := s.deps()
	resp := map[string]any{"status": "ok"}
	if cat != nil {
		stats := cat.Stats()
		resp["models"] = stats.Records
		resp["pending"] = stats.Pending
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := s.viewOptions(q.Get)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if refresh, _ := strconv.ParseBool(q.Get("refresh")); refresh {
		if cat, _ := s.deps(); cat != nil {
			cat.Invalidate()
		}
	}

	c, ok := s.snapshot(w)
	if !ok {
		return
	}

	records := c.Records()
	shown := views.Apply(records, opts)
	resp := modelsResponse{Total: len(records), Shown: len(shown)}

	if opts.GroupBy == "" || opts.GroupBy == views.GroupNone {
		resp.Models = shown
		if resp.Models == nil {
			resp.Models = []*record.Record{}
		}
	} else {
		for _, g := range views.GroupRecords(shown, opts.GroupBy) {
			resp.Groups = append(resp.Groups, modelGroup{Name: g.Name, Models: g.Records})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// viewOptions reads list parameters, falling back to the library defaults.
func (s *Server) viewOptions(get func(string) string) (views.Options, error) {
	opts := views.Options{
		Query:     get("q"),
		BaseModel: get("base_model"),
		Sort:      get("sort"),
		GroupBy:   get("group_by"),
	}

	var lib *config.Library
	if s.settings != nil {
		lib, _ = s.settings.ActiveLibrary()
	}
	if lib != nil {
		opts.HideNSFW = lib.HideNSFW
		if opts.Sort == "" {
			opts.Sort = lib.DefaultSort
		}
		if opts.GroupBy == "" {
			opts.GroupBy = lib.GroupBy
		}
	}

	if raw := get("hide_nsfw"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid hide_nsfw: %q", raw)
		}
		opts.HideNSFW = hide
	}
	if opts.Sort != "" && !views.ValidSort(opts.Sort) {
		return opts, fmt.Errorf("invalid sort: %q", opts.Sort)
	}
	if opts.GroupBy != "" && !views.ValidGroupBy(opts.GroupBy) {
		return opts, fmt.Errorf("invalid group_by: %q", opts.GroupBy)
	}
	if raw := get("since"); raw != "" {
		since, err := dateparse.ParseLocal(raw)
		if err != nil {
			return opts, fmt.Errorf("invalid since: %q", raw)
		}
		opts.ModifiedAfter = since
	}

	return opts, nil
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*record.Record, bool) {
	c, ok := s.snapshot(w)
	if !ok {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	rec, found := c.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("model %q not found", id))
		return nil, false
	}
	return rec, true
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) renameModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewName string `json:"newName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.NewName) == "" {
		writeError(w, http.StatusBadRequest, "missing newName")
		return
	}

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	cat, files := s.deps()
	newPath, err := files.Rename(rec, req.NewName)
	recordOperation("rename", err)
	if err != nil {
		s.fileError(w, r, err)
		return
	}

	cat.Invalidate()
	id := catalog.ModelName(filepath.Base(newPath))
	logger.FromContext(r.Context()).Info("model renamed", zap.String("from", rec.ID), zap.String("to", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "id": id})
}

func (s *Server) moveModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetFolder string `json:"targetFolder"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	cat, files := s.deps()
	moved, err := files.Move(rec, req.TargetFolder)
	recordOperation("move", err)
	if err != nil {
		s.fileError(w, r, err)
		return
	}

	if moved > 0 {
		cat.Invalidate()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    fmt.Sprintf("Moved %d file(s) successfully", moved),
		"filesMoved": moved,
	})
}

func (s *Server) saveAttributes(w http.ResponseWriter, r *http.Request) {
	var attrs map[string]any
	if !decodeBody(w, r, &attrs) {
		return
	}

	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	cat, files := s.deps()
	err := files.SaveAttributes(rec, attrs)
	recordOperation("save_json", err)
	if err != nil {
		s.fileError(w, r, err)
		return
	}

	cat.QueueUpdate(rec.RelPath)
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) convertCivitai(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	cat, files := s.deps()
	attrs, err := files.ConvertCivitaiInfo(rec)
	recordOperation("civitai_convert", err)
	if err != nil {
		s.fileError(w, r, err)
		return
	}

	cat.QueueUpdate(rec.RelPath)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"message":    "Converted to JSON successfully",
		"attributes": attrs,
	})
}

func (s *Server) fixThumbnail(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	cat, files := s.deps()
	renamed, err := files.FixThumbnail(rec)
	switch {
	case errors.Is(err, handler.ErrExists):
		writeJSON(w, http.StatusOK, statusResponse{Status: "skipped", Message: "Already has .preview.png"})
		return
	case errors.Is(err, handler.ErrNoImage):
		writeJSON(w, http.StatusOK, statusResponse{Status: "skipped", Message: "No image file found"})
		return
	}
	recordOperation("fix_thumbnail", err)
	if err != nil {
		s.fileError(w, r, err)
		return
	}

	cat.QueueUpdate(rec.RelPath)
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "success",
		Message: fmt.Sprintf("Renamed %s to %s.preview.png", renamed, rec.Name),
	})
}

func (s *Server) baseModels(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.snapshot(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"baseModels": nonNil(c.BaseModels())})
}

func (s *Server) tags(w http.ResponseWriter, _ *http.Request) {
	c, ok := s.snapshot(w)
	if !ok {
		return
	}
	tags := c.Tags()
	if tags == nil {
		tags = []catalog.TagCount{}
	}
	writeJSON(w, http.StatusOK, map[string][]catalog.TagCount{"tags": tags})
}

func (s *Server) folders(w http.ResponseWriter, _ *http.Request) {
	_, files := s.deps()
	if files == nil || files.Root() == "" {
		writeError(w, http.StatusBadRequest, "models directory not set")
		return
	}

	rels, err := files.Folders()
	if err != nil {
		writeError(w, http.StatusBadRequest, "models directory not set or does not exist")
		return
	}

	out := make([]folder, 0, len(rels))
	for _, rel := range rels {
		name := rel
		if rel == "" {
			name = "Root"
		}
		out = append(out, folder{Path: rel, Name: name})
	}
	writeJSON(w, http.StatusOK, map[string][]folder{"folders": out})
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusServiceUnavailable, "settings unavailable")
		return
	}
	lib, err := s.settings.ActiveLibrary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

// saveSettings merges the posted keys into the active library.
func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusServiceUnavailable, "settings unavailable")
		return
	}
	lib, err := s.settings.ActiveLibrary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated := *lib
	updated.VisibleColumns = slices.Clone(lib.VisibleColumns)
	updated.IgnoredFolders = slices.Clone(lib.IgnoredFolders)
	if !decodeBody(w, r, &updated) {
		return
	}

	rescan := updated.ModelsDir != lib.ModelsDir || !slices.Equal(updated.IgnoredFolders, lib.IgnoredFolders)
	if err := s.settings.UpdateLibrary(updated); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if rescan {
		if err := s.rebind(); err != nil {
			s.logger.Error("reload after settings change", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "settings saved but reload failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

func (s *Server) rebind() error {
	if s.reload == nil {
		if cat, _ := s.deps(); cat != nil {
			cat.Invalidate()
		}
		return nil
	}
	cat, files, err := s.reload()
	if err != nil {
		return err
	}
	s.swap(cat, files)
	return nil
}

// preview serves preview images from the models directory.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	_, files := s.deps()
	if files == nil || files.Root() == "" {
		writeError(w, http.StatusNotFound, "models directory not set")
		return
	}

	rel := chi.URLParam(r, "*")
	if !strings.EqualFold(path.Ext(rel), ".png") {
		writeError(w, http.StatusNotFound, "not a preview image")
		return
	}

	full, err := pathutil.Within(files.Root(), rel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Cache-Control", "max-age="+strconv.Itoa(int(time.Hour.Seconds())))
	http.ServeFile(w, r, full)
}

func (s *Server) fileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, handler.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, handler.ErrNotFound), errors.Is(err, handler.ErrNoCivitaiInfo):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, handler.ErrInvalidName), errors.Is(err, pathutil.ErrOutsideLibrary):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.FromContext(r.Context()).Error("file operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
