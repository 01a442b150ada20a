// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package search

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func newTestHandler(t *testing.T, cores ...string) (*Handler, *CoreContainer) {
	t.Helper()
	cc := newContainer(t, cores...)
	return NewHandler(cc, NewIndexService(cc)), cc
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, out
}

func numFound(t *testing.T, body map[string]any) float64 {
	t.Helper()
	resp, ok := body["response"].(map[string]any)
	if !ok {
		t.Fatalf("no response member: %v", body)
	}
	return resp["numFound"].(float64)
}

func TestHandler_UpdateAndSelect(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	rec, body := do(t, h, http.MethodPost, "/mycore/update?commit=true",
		`[{"id":"1","name":"red apple"},{"id":"2","name":"green pear"},{"name":"no id"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["indexed"] != float64(2) || body["skipped"] != float64(1) {
		t.Errorf("update body = %v", body)
	}

	rec, body = do(t, h, http.MethodGet, "/mycore/select?q=*:*", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("select status = %d", rec.Code)
	}
	if got := numFound(t, body); got != 2 {
		t.Errorf("numFound = %v, want 2", got)
	}
	hdr := body["responseHeader"].(map[string]any)
	if hdr["status"] != float64(0) {
		t.Errorf("responseHeader.status = %v", hdr["status"])
	}

	_, body = do(t, h, http.MethodGet, "/mycore/select?q=apple&fl=name", "")
	if got := numFound(t, body); got != 1 {
		t.Errorf("numFound for apple = %v, want 1", got)
	}
}

func TestHandler_SelectPostForm(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")
	do(t, h, http.MethodPost, "/mycore/update/json", `{"id":"1","name":"single doc"}`)

	req := httptest.NewRequest(http.MethodPost, "/mycore/select", strings.NewReader("q=single&rows=5"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := numFound(t, body); got != 1 {
		t.Errorf("numFound = %v, want 1", got)
	}
}

func TestHandler_SelectBadParams(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	for _, target := range []string{
		"/mycore/select?rows=abc",
		"/mycore/select?start=-1",
		"/mycore/select?q=name:>",
		"/mycore/select?fq=nocolon",
	} {
		rec, body := do(t, h, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
		if _, ok := body["error"]; !ok {
			t.Errorf("%s: missing error member", target)
		}
	}
}

func TestHandler_UpdateCommands(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")
	do(t, h, http.MethodPost, "/mycore/update", `[{"id":"a"},{"id":"b"},{"id":"c"}]`)

	rec, body := do(t, h, http.MethodPost, "/mycore/update/json",
		`{"add":{"doc":{"id":"d","name":"added"}},"delete":{"id":"a"},"commit":{}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["indexed"] != float64(1) || body["deleted"] != float64(1) {
		t.Errorf("body = %v", body)
	}

	do(t, h, http.MethodPost, "/mycore/update", `{"delete":["b","c"]}`)
	_, body = do(t, h, http.MethodGet, "/mycore/select", "")
	if got := numFound(t, body); got != 1 {
		t.Errorf("numFound = %v, want 1", got)
	}
}

func TestHandler_UpdateBadBodies(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	for _, body := range []string{"", "not json", `[1,2]`, `{"add":"nope"}`} {
		rec, _ := do(t, h, http.MethodPost, "/mycore/update", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestHandler_UpdateCSV(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	csvBody := "id,name,category\n1,apple,fruit\n2,brick,\n,orphan,none\n"
	rec, body := do(t, h, http.MethodPost, "/mycore/update/csv", csvBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["indexed"] != float64(2) || body["skipped"] != float64(1) {
		t.Errorf("body = %v", body)
	}

	rec, _ = do(t, h, http.MethodPost, "/mycore/update/csv?separator=;;", "id\n1\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad separator status = %d, want 400", rec.Code)
	}

	rec, body = do(t, h, http.MethodPost, "/mycore/update/csv?separator=%3B", "id;name\n3;semi\n")
	if rec.Code != http.StatusOK || body["indexed"] != float64(1) || body["skipped"] != float64(0) {
		t.Errorf("semicolon csv: status %d body %v", rec.Code, body)
	}

	// An unescaped ';' must be rejected, not parsed with the default comma.
	rec, _ = do(t, h, http.MethodPost, "/mycore/update/csv?separator=;", "id;name\n4;bare\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bare semicolon status = %d, want 400", rec.Code)
	}
}

func TestHandler_UpdateExtract(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	rec, _ := do(t, h, http.MethodPost, "/mycore/update/extract", "plain text")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing literal.id status = %d, want 400", rec.Code)
	}

	rec, body := do(t, h, http.MethodPost, "/mycore/update/extract?literal.id=doc1&literal.author=ann", "the quick brown fox")
	if rec.Code != http.StatusOK || body["indexed"] != float64(1) {
		t.Fatalf("extract: status %d body %v", rec.Code, body)
	}

	_, body = do(t, h, http.MethodGet, "/mycore/select?q=content:fox", "")
	if got := numFound(t, body); got != 1 {
		t.Errorf("numFound = %v, want 1", got)
	}
}

func TestHandler_AdminCores(t *testing.T) {
	h, _ := newTestHandler(t, "core1", "core2")

	rec, body := do(t, h, http.MethodGet, "/admin/cores?action=STATUS", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := body["status"].(map[string]any)
	if len(status) != 2 {
		t.Errorf("status entries = %d, want 2", len(status))
	}
	core1 := status["core1"].(map[string]any)
	if core1["loaded"] != true {
		t.Errorf("core1 = %v", core1)
	}

	_, body = do(t, h, http.MethodGet, "/admin/cores?core=core2", "")
	if status := body["status"].(map[string]any); len(status) != 1 {
		t.Errorf("filtered status = %v", status)
	}

	rec, _ = do(t, h, http.MethodGet, "/admin/cores?action=RELOAD", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("RELOAD status = %d, want 400", rec.Code)
	}
}

func TestHandler_Replication(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")
	do(t, h, http.MethodPost, "/mycore/update", `{"id":"1"}`)

	rec, body := do(t, h, http.MethodGet, "/mycore/replication?command=indexversion", "")
	if rec.Code != http.StatusOK || body["indexversion"] != float64(1) {
		t.Errorf("indexversion: status %d body %v", rec.Code, body)
	}

	_, body = do(t, h, http.MethodGet, "/mycore/replication?command=details", "")
	details := body["details"].(map[string]any)
	if details["numDocs"] != float64(1) || details["replicationEnabled"] != false {
		t.Errorf("details = %v", details)
	}

	for _, cmd := range []string{"", "fetchindex", "backup"} {
		rec, _ := do(t, h, http.MethodGet, "/mycore/replication?command="+cmd, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("command %q status = %d, want 400", cmd, rec.Code)
		}
	}
}

func TestHandler_AdminFile(t *testing.T) {
	h, cc := newTestHandler(t, "mycore")
	core, _ := cc.Core("mycore")
	writeFile(t, filepath.Join(core.ConfDir(), "schema.json"), `{"fields":[]}`)
	writeFile(t, filepath.Join(core.ConfDir(), "lang", "stopwords.txt"), "a\nthe\n")
	writeFile(t, filepath.Join(core.InstanceDir(), "secret.txt"), "hidden")

	for _, target := range []string{"/mycore/admin/file", "/mycore/admin/file/"} {
		rec, body := do(t, h, http.MethodGet, target, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", target, rec.Code)
		}
		files := body["files"].(map[string]any)
		if _, ok := files["schema.json"]; !ok {
			t.Errorf("%s: files = %v", target, files)
		}
		if _, ok := files["lang/stopwords.txt"]; !ok {
			t.Errorf("%s: nested file missing: %v", target, files)
		}
	}

	rec, _ := do(t, h, http.MethodGet, "/mycore/admin/file?file=lang/stopwords.txt", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "a\nthe\n" {
		t.Errorf("file fetch: status %d body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	for _, name := range []string{"../secret.txt", "/etc/passwd", "lang/../../secret.txt"} {
		rec, _ := do(t, h, http.MethodGet, "/mycore/admin/file?file="+name, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("file=%s status = %d, want 403", name, rec.Code)
		}
	}

	rec, _ = do(t, h, http.MethodGet, "/mycore/admin/file?file=missing.txt", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", rec.Code)
	}
}

func TestHandler_AdminFileWithoutConfDir(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")
	rec, body := do(t, h, http.MethodGet, "/mycore/admin/file", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if files := body["files"].(map[string]any); len(files) != 0 {
		t.Errorf("files = %v, want empty", files)
	}
}

func TestHandler_PingAndUnknownCore(t *testing.T) {
	h, _ := newTestHandler(t, "mycore")

	rec, body := do(t, h, http.MethodGet, "/mycore/admin/ping", "")
	if rec.Code != http.StatusOK || body["status"] != "OK" {
		t.Errorf("ping: status %d body %v", rec.Code, body)
	}

	for _, target := range []string{"/ghost/select", "/ghost/admin/ping", "/ghost/replication?command=details"} {
		rec, body := do(t, h, http.MethodGet, target, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, rec.Code)
		}
		errBody, ok := body["error"].(map[string]any)
		if !ok || errBody["code"] != float64(404) {
			t.Errorf("%s body = %v", target, body)
		}
	}

	rec, _ = do(t, h, http.MethodGet, "/mycore/unknown/handler", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
}
