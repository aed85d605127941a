package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/draftvista/draftvista/internal/analysis"
	"github.com/draftvista/draftvista/internal/pipeline"
)

type fakeRunner struct {
	req        pipeline.Request
	fileOnDisk bool
	resp       *pipeline.Response
	err        error
}

func (f *fakeRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Response, error) {
	f.req = req
	_, statErr := os.Stat(req.FilePath)
	f.fileOnDisk = statErr == nil
	return f.resp, f.err
}

func sampleResponse() *pipeline.Response {
	return &pipeline.Response{
		Success:      true,
		AnalysisType: analysis.PreSubmission,
		Manuscript:   pipeline.ManuscriptMeta{Filename: "paper.docx", Size: 100},
		Journal:      pipeline.JournalMeta{URL: "https://www.nature.com/nature/", Name: "Nature"},
		Analysis: &analysis.Result{
			Sections: []analysis.Section{{
				Title:   "Executive Summary",
				Content: "A **promising** manuscript.\n",
				Subsections: []analysis.Subsection{
					{Title: "Title and Abstract", Content: "Clear enough.\n"},
				},
			}},
			AnalysisType: analysis.PreSubmission,
			Timestamp:    time.Now().UTC(),
		},
		Timestamp: time.Now().UTC(),
	}
}

func newTestServer(t *testing.T, runner Runner) *Server {
	t.Helper()
	srv, err := New(runner, t.TempDir(), 10<<20, "http://localhost:3000")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

// docxBytes builds a minimal OOXML document body.
func docxBytes(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document part: %v", err)
	}
	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`
	w.Write([]byte(doc))
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// multipartBody assembles a manuscript upload with extra form fields.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("manuscript", filename)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		fw.Write(content)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postMultipart(t *testing.T, srv *Server, url, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filename, content, fields)
	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return body
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["status"] != "OK" {
		t.Errorf("expected status OK, got %v", body["status"])
	}
}

func TestAPITestRoute(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/api/test", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Manuscript Reviewer API is working!") {
		t.Error("expected API banner in response")
	}
}

func TestAnalyzePreSubmissionSuccess(t *testing.T) {
	runner := &fakeRunner{resp: sampleResponse()}
	srv := newTestServer(t, runner)

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "paper.docx", docxBytes(t, "Body text."),
		map[string]string{"journalUrl": "https://www.nature.com/nature/"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp pipeline.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Journal.Name != "Nature" {
		t.Errorf("unexpected envelope: %+v", resp)
	}

	if runner.req.Type != analysis.PreSubmission {
		t.Errorf("runner got type %q", runner.req.Type)
	}
	if runner.req.Filename != "paper.docx" {
		t.Errorf("runner got filename %q", runner.req.Filename)
	}
	if runner.req.JournalURL != "https://www.nature.com/nature/" {
		t.Errorf("runner got journal url %q", runner.req.JournalURL)
	}
	if !runner.fileOnDisk {
		t.Error("stored upload must exist while the pipeline runs")
	}
	if _, err := os.Stat(runner.req.FilePath); !os.IsNotExist(err) {
		t.Error("upload must be deleted after the request")
	}
	// uuid prefix keeps concurrent uploads of the same name apart
	base := runner.req.FilePath[strings.LastIndex(runner.req.FilePath, "/")+1:]
	if base == "paper.docx" || !strings.HasSuffix(base, "-paper.docx") {
		t.Errorf("expected unique-prefixed stored name, got %q", base)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "", nil,
		map[string]string{"journalUrl": "https://example.org"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["error"] != "No manuscript file provided" {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestAnalyzeMissingJournalURL(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "paper.docx", docxBytes(t, "x"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["error"] != "Journal URL is required" {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestAnalyzePostRejectionRequiresComments(t *testing.T) {
	runner := &fakeRunner{resp: sampleResponse()}
	srv := newTestServer(t, runner)

	rec := postMultipart(t, srv, "/api/analyze-post-rejection", "paper.docx", docxBytes(t, "x"),
		map[string]string{"journalUrl": "https://example.org"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "Reviewer comments are required for post-rejection analysis" {
		t.Errorf("unexpected error %v", body["error"])
	}

	// With comments the request goes through.
	rec = postMultipart(t, srv, "/api/analyze-post-rejection", "paper.docx", docxBytes(t, "x"),
		map[string]string{"journalUrl": "https://example.org", "reviewerComments": "Reviewer 2 objects."})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if runner.req.Type != analysis.PostRejection {
		t.Errorf("runner got type %q", runner.req.Type)
	}
	if runner.req.ReviewerComments != "Reviewer 2 objects." {
		t.Errorf("runner got comments %q", runner.req.ReviewerComments)
	}
}

func TestAnalyzeRejectsUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "notes.txt", []byte("text"),
		map[string]string{"journalUrl": "https://example.org"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "Invalid file type. Only PDF, DOCX, and DOC files are allowed." {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestAnalyzePipelineFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("analysis: Analysis failed: boom")}
	srv := newTestServer(t, runner)

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "paper.docx", docxBytes(t, "x"),
		map[string]string{"journalUrl": "https://example.org"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "Analysis failed" {
		t.Errorf("unexpected error %v", body["error"])
	}
	if !strings.Contains(body["message"].(string), "boom") {
		t.Errorf("expected cause in message, got %v", body["message"])
	}
	// File removal is guaranteed on the error path too.
	if _, err := os.Stat(runner.req.FilePath); !os.IsNotExist(err) {
		t.Error("upload must be deleted after a failed request")
	}
}

func TestAnalyzeStorageFailureIsServerError(t *testing.T) {
	// An uploads dir nested under a regular file cannot be created, so
	// storing the manuscript fails even though the request itself is valid.
	blocker := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing blocker file: %v", err)
	}

	runner := &fakeRunner{resp: sampleResponse()}
	srv, err := New(runner, filepath.Join(blocker, "uploads"), 10<<20, "http://localhost:3000")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := postMultipart(t, srv, "/api/analyze-pre-submission", "paper.docx", docxBytes(t, "x"),
		map[string]string{"journalUrl": "https://example.org"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for storage failure, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "Internal server error" {
		t.Errorf("unexpected error %v", body["error"])
	}
	if runner.req.FilePath != "" {
		t.Error("pipeline must not run when storage fails")
	}
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/api/analyze-pre-submission", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("OPTIONS", "/api/analyze-pre-submission", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("unexpected allowed origin %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Error("expected POST in allowed methods")
	}
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="manuscript"`) {
		t.Error("expected upload form in index page")
	}
	if !strings.Contains(body, `name="journalUrl"`) {
		t.Error("expected journal url field in index page")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body["error"] != "Route not found" {
		t.Errorf("unexpected error %v", body["error"])
	}
}

func TestAnalyzePageRendersSections(t *testing.T) {
	runner := &fakeRunner{resp: sampleResponse()}
	srv := newTestServer(t, runner)

	rec := postMultipart(t, srv, "/analyze", "paper.docx", docxBytes(t, "Body."),
		map[string]string{"journalUrl": "https://www.nature.com/nature/", "analysisType": "pre-submission"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Executive Summary") {
		t.Error("expected section title in rendered page")
	}
	if !strings.Contains(body, "<strong>promising</strong>") {
		t.Error("expected markdown rendered to HTML")
	}
	if !strings.Contains(body, "Title and Abstract") {
		t.Error("expected subsection title in rendered page")
	}
}

func TestAnalyzePageShowsInputError(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	rec := postMultipart(t, srv, "/analyze", "paper.docx", docxBytes(t, "Body."), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with inline error, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Journal URL is required") {
		t.Error("expected inline validation message")
	}
}

func TestStaticRoute(t *testing.T) {
	srv := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-family") {
		t.Error("expected CSS content")
	}
}
