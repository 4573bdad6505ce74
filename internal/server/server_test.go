package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edumate/internal/app"
	"edumate/pkg/ai"
	"edumate/pkg/domain"
	"edumate/pkg/export"
	"edumate/pkg/store"
)

const sampleText = "Photosynthesis converts light energy into chemical energy. Plants absorb carbon dioxide through their leaves. Water arrives through the roots. Oxygen is released as a byproduct."

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a, err := app.New(app.Config{
		Store:   store.NewMemoryStore(),
		Gateway: ai.NewGateway(ai.NewHeuristicBackend()),
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	s, err := New(Config{App: a})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func processOne(t *testing.T, h http.Handler, operation string) domain.ContentRecord {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/content", map[string]any{
		"text":      sampleText,
		"operation": operation,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("process status %d: %s", rec.Code, rec.Body.String())
	}
	var record domain.ContentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return record
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestProcessCreatesContent(t *testing.T) {
	s := newTestServer(t)
	record := processOne(t, s.Router(), "summarize")
	if record.ID == 0 || record.Type != domain.OpSummarize {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Title != "Direct text input" {
		t.Fatalf("unexpected title %q", record.Title)
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/api/content", map[string]any{
		"text":      "too short",
		"operation": "summarize",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short text, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/content", map[string]any{
		"text":      sampleText,
		"operation": "translate",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown operation, got %d", rec.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/content", strings.NewReader("not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rr.Code)
	}
}

func TestUploadProcessesFile(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(sampleText)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("operation", "questions"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/content/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, r)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var record domain.ContentRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Title != "notes.txt" || record.FileType != "text/plain" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestListFiltersByType(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	processOne(t, h, "summarize")
	processOne(t, h, "proofread")

	rec := doJSON(t, h, http.MethodGet, "/api/content?type=summarize", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Items []domain.ContentRecord `json:"items"`
		Count int                    `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 1 || resp.Items[0].Type != domain.OpSummarize {
		t.Fatalf("unexpected list: %+v", resp)
	}
}

func TestGetAndDeleteByID(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	record := processOne(t, h, "simplify")

	path := fmt.Sprintf("/api/content/%d", record.ID)
	rec := doJSON(t, h, http.MethodGet, path, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, path, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, path, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}

	// Deleting again stays 204.
	rec = doJSON(t, h, http.MethodDelete, path, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("second delete status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content/not-a-number", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestClearAllNeedsDoubleConfirmation(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	processOne(t, h, "summarize")

	rec := doJSON(t, h, http.MethodDelete, "/api/content", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/content?confirm=all", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without header, got %d", rec.Code)
	}

	r := httptest.NewRequest(http.MethodDelete, "/api/content?confirm=all", nil)
	r.Header.Set("X-Confirm-Clear", "yes")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status %d: %s", rr.Code, rr.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content", nil)
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 0 {
		t.Fatalf("expected empty library, got %d records", resp.Count)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	for i := 0; i < 3; i++ {
		processOne(t, h, "summarize")
	}
	processOne(t, h, "questions")

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var overview app.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if overview.Stats.Total != 4 || overview.Stats.Summaries != 3 || overview.Stats.Questions != 1 {
		t.Fatalf("unexpected stats: %+v", overview.Stats)
	}
	if len(overview.Recent) != 4 {
		t.Fatalf("expected 4 recent records, got %d", len(overview.Recent))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/stats?recent=2", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if len(overview.Recent) != 2 {
		t.Fatalf("expected 2 recent records, got %d", len(overview.Recent))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()
	processOne(t, h, "summarize")
	processOne(t, h, "proofread")

	rec := doJSON(t, h, http.MethodGet, "/api/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "edumate-export.json") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.TotalItems != 2 || doc.Version != export.Version {
		t.Fatalf("unexpected document: %+v", doc)
	}

	r := httptest.NewRequest(http.MethodDelete, "/api/content?confirm=all", nil)
	r.Header.Set("X-Confirm-Clear", "yes")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status %d", rr.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/api/import", bytes.NewReader(rec.Body.Bytes()))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status %d: %s", rr.Code, rr.Body.String())
	}
	var imported struct {
		Imported int `json:"imported"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &imported); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if imported.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", imported.Imported)
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	r := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(`{"totalItems":9,"content":[]}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for count mismatch, got %d", rr.Code)
	}
}

func TestArchiveWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPost, "/api/export/archive", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without object storage, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s.Router(), http.MethodPut, "/api/content", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
