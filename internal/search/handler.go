// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/searchgate/internal/logging"
)

// maxUpdateBytes bounds update request bodies.
const maxUpdateBytes = 32 << 20

// Handler serves the engine's HTTP surface. Paths are relative to the
// mount point.
type Handler struct {
	container *CoreContainer
	service   *IndexService
	router    chi.Router
}

// NewHandler builds the engine router over container.
func NewHandler(container *CoreContainer, service *IndexService) *Handler {
	h := &Handler{container: container, service: service}

	r := chi.NewRouter()
	r.Get("/admin/cores", h.adminCores)

	r.Route("/{core}", func(r chi.Router) {
		r.Get("/select", h.selectDocs)
		r.Post("/select", h.selectDocs)

		r.Post("/update", h.updateJSON)
		r.Post("/update/json", h.updateJSON)
		r.Post("/update/csv", h.updateCSV)
		r.Post("/update/extract", h.updateExtract)

		r.Get("/replication", h.replication)

		r.Get("/admin/file", h.adminFile)
		r.Get("/admin/file/", h.adminFile)
		r.Get("/admin/ping", h.ping)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, time.Now(), http.StatusNotFound, "no handler for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, time.Now(), http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// core resolves the {core} URL parameter, writing 404 when unknown.
func (h *Handler) core(w http.ResponseWriter, r *http.Request, start time.Time) (*Core, bool) {
	name := chi.URLParam(r, "core")
	core, err := h.container.Core(name)
	if err != nil {
		writeError(w, r, start, http.StatusNotFound, "core "+name+" not found")
		return nil, false
	}
	return core, true
}

// serviceError maps IndexService errors onto HTTP statuses.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	switch {
	case errors.Is(err, ErrCoreNotFound):
		writeError(w, r, start, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBadQuery), errors.Is(err, ErrMissingID):
		writeError(w, r, start, http.StatusBadRequest, err.Error())
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Engine request failed")
		writeError(w, r, start, http.StatusInternalServerError, err.Error())
	}
}

type coresResponse struct {
	ResponseHeader ResponseHeader        `json:"responseHeader"`
	InitFailures   map[string]string     `json:"initFailures"`
	Status         map[string]CoreStatus `json:"status"`
}

func (h *Handler) adminCores(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	action := strings.ToUpper(r.URL.Query().Get("action"))
	if action != "" && action != "STATUS" {
		writeError(w, r, start, http.StatusBadRequest, "unsupported action: "+action)
		return
	}

	status := make(map[string]CoreStatus)
	only := r.URL.Query().Get("core")
	for _, name := range h.container.CoreNames() {
		if only != "" && name != only {
			continue
		}
		if core, err := h.container.Core(name); err == nil {
			status[name] = core.Status()
		}
	}

	writeJSON(w, r, http.StatusOK, coresResponse{
		ResponseHeader: header(start),
		InitFailures:   h.container.InitFailures(),
		Status:         status,
	})
}

type selectResponse struct {
	ResponseHeader ResponseHeader `json:"responseHeader"`
	Response       *SearchResult  `json:"response"`
}

func (h *Handler) selectDocs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, start, http.StatusBadRequest, err.Error())
		return
	}

	q := Query{
		Text:    r.Form.Get("q"),
		Filters: r.Form["fq"],
	}
	var err error
	if q.Start, err = intParam(r, "start"); err != nil {
		writeError(w, r, start, http.StatusBadRequest, err.Error())
		return
	}
	if q.Rows, err = intParam(r, "rows"); err != nil {
		writeError(w, r, start, http.StatusBadRequest, err.Error())
		return
	}
	if fl := r.Form.Get("fl"); fl != "" {
		for _, f := range strings.Split(fl, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	res, err := h.service.Search(r.Context(), core.Name(), q)
	if err != nil {
		h.serviceError(w, r, start, err)
		return
	}

	hdr := header(start)
	hdr.Params = echoParams(r, "q", "start", "rows", "fl")
	writeJSON(w, r, http.StatusOK, selectResponse{ResponseHeader: hdr, Response: res})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.Form.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func echoParams(r *http.Request, names ...string) map[string]string {
	out := make(map[string]string)
	for _, n := range names {
		if v := r.Form.Get(n); v != "" {
			out[n] = v
		}
	}
	return out
}

type updateResponse struct {
	ResponseHeader ResponseHeader `json:"responseHeader"`
	IndexReport
}

// updateCommands is the command form of an update body.
type updateCommands struct {
	Add    json.RawMessage `json:"add"`
	Delete json.RawMessage `json:"delete"`
	Commit json.RawMessage `json:"commit"`
}

func (h *Handler) updateJSON(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err != nil {
		writeError(w, r, start, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	docs, deletes, err := parseUpdateBody(body)
	if err != nil {
		writeError(w, r, start, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, r, start, core, docs, deletes)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, start time.Time, core *Core, docs []Document, deletes []string) {
	report, err := h.service.Apply(r.Context(), core.Name(), docs, deletes)
	if err != nil {
		h.serviceError(w, r, start, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updateResponse{ResponseHeader: header(start), IndexReport: report})
}

// parseUpdateBody accepts a document array, a single document, or an
// object of add/delete/commit commands.
func parseUpdateBody(body []byte) ([]Document, []string, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil, errors.New("empty update body")
	}

	if trimmed[0] == '[' {
		var docs []Document
		if err := json.Unmarshal(body, &docs); err != nil {
			return nil, nil, fmt.Errorf("parse documents: %w", err)
		}
		return docs, nil, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, nil, fmt.Errorf("parse update: %w", err)
	}
	_, hasAdd := probe["add"]
	_, hasDelete := probe["delete"]
	_, hasCommit := probe["commit"]
	if !hasAdd && !hasDelete && !hasCommit {
		var doc Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, nil, fmt.Errorf("parse document: %w", err)
		}
		return []Document{doc}, nil, nil
	}

	var cmds updateCommands
	if err := json.Unmarshal(body, &cmds); err != nil {
		return nil, nil, fmt.Errorf("parse commands: %w", err)
	}
	docs, err := parseAdds(cmds.Add)
	if err != nil {
		return nil, nil, err
	}
	deletes, err := parseDeletes(cmds.Delete)
	if err != nil {
		return nil, nil, err
	}
	return docs, deletes, nil
}

type addCommand struct {
	Doc Document `json:"doc"`
}

func parseAdds(raw json.RawMessage) ([]Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var many []addCommand
	if err := json.Unmarshal(raw, &many); err == nil {
		docs := make([]Document, 0, len(many))
		for _, a := range many {
			docs = append(docs, a.Doc)
		}
		return docs, nil
	}
	var one addCommand
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("parse add command: %w", err)
	}
	return []Document{one.Doc}, nil
}

func parseDeletes(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}
	var one struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("parse delete command: %w", err)
	}
	return []string{one.ID}, nil
}

func (h *Handler) updateCSV(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}

	// URL.Query drops pairs holding an unescaped ';', so "separator=;" would
	// fall back to a comma.
	params, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		writeError(w, r, start, http.StatusBadRequest, "invalid query string: "+err.Error())
		return
	}

	reader := csv.NewReader(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if sep := params.Get("separator"); sep != "" {
		runes := []rune(sep)
		if len(runes) != 1 {
			writeError(w, r, start, http.StatusBadRequest, "separator must be a single character")
			return
		}
		reader.Comma = runes[0]
	}

	docs, err := readCSVDocuments(reader)
	if err != nil {
		writeError(w, r, start, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, r, start, core, docs, nil)
}

// readCSVDocuments maps each record onto the header row. Empty cells are
// omitted.
func readCSVDocuments(reader *csv.Reader) ([]Document, error) {
	headerRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv body has no header row")
		}
		return nil, fmt.Errorf("parse csv header: %w", err)
	}
	for i := range headerRow {
		headerRow[i] = strings.TrimSpace(headerRow[i])
	}

	var docs []Document
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		doc := make(Document, len(headerRow))
		for i, value := range record {
			if i < len(headerRow) && headerRow[i] != "" && value != "" {
				doc[headerRow[i]] = value
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (h *Handler) updateExtract(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}

	query := r.URL.Query()
	if strings.TrimSpace(query.Get("literal.id")) == "" {
		writeError(w, r, start, http.StatusBadRequest, "literal.id is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpdateBytes))
	if err != nil {
		writeError(w, r, start, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	doc := Document{"content": string(body)}
	for key, values := range query {
		if field, ok := strings.CutPrefix(key, "literal."); ok && field != "" && len(values) > 0 {
			doc[field] = values[0]
		}
	}
	h.apply(w, r, start, core, []Document{doc}, nil)
}

func (h *Handler) replication(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}

	st := core.Status()
	resp := map[string]any{"responseHeader": header(start)}
	switch cmd := r.URL.Query().Get("command"); cmd {
	case "indexversion":
		resp["indexversion"] = st.Version
		resp["generation"] = st.Version
	case "details":
		resp["details"] = map[string]any{
			"indexVersion":       st.Version,
			"generation":         st.Version,
			"numDocs":            st.NumDocs,
			"isLeader":           true,
			"replicationEnabled": false,
		}
	default:
		writeError(w, r, start, http.StatusBadRequest, "unsupported replication command: "+cmd)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type confFile struct {
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

func (h *Handler) adminFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}
	confDir := core.ConfDir()

	name := r.URL.Query().Get("file")
	if name == "" {
		files, err := listConfFiles(confDir)
		if err != nil {
			h.serviceError(w, r, start, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"responseHeader": header(start),
			"files":          files,
		})
		return
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(clean) {
		writeError(w, r, start, http.StatusForbidden, "can not access: "+name)
		return
	}
	path := filepath.Join(confDir, clean)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, r, start, http.StatusNotFound, "can not find: "+name)
			return
		}
		h.serviceError(w, r, start, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(clean))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Str("file", clean).Msg("Failed to write conf file")
	}
}

func listConfFiles(confDir string) (map[string]confFile, error) {
	files := make(map[string]confFile)
	err := filepath.WalkDir(confDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == confDir {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(confDir, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = confFile{Size: info.Size(), Modified: info.ModTime().UTC()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list conf files: %w", err)
	}
	return files, nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json; charset=utf-8"
	case ".xml":
		return "application/xml; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	core, ok := h.core(w, r, start)
	if !ok {
		return
	}
	if _, err := core.Index(); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("core", core.Name()).Msg("Core ping failed")
		writeError(w, r, start, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"responseHeader": header(start),
		"status":         "OK",
	})
}
