package server

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/draftvista/draftvista/internal/analysis"
	"github.com/draftvista/draftvista/internal/cleanup"
	"github.com/draftvista/draftvista/internal/pipeline"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

var errNoFile = errors.New("No manuscript file provided")

// errStoreFailed marks server-side upload storage problems. The request was
// valid, so callers map it to a 500, not a 400.
var errStoreFailed = errors.New("Failed to store uploaded file")

func (s *Server) handleAnalyzePreSubmission(w http.ResponseWriter, r *http.Request) {
	s.handleAnalyzeAPI(w, r, analysis.PreSubmission)
}

func (s *Server) handleAnalyzePostRejection(w http.ResponseWriter, r *http.Request) {
	s.handleAnalyzeAPI(w, r, analysis.PostRejection)
}

func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request, analysisType analysis.Type) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		inputError(w, "Method not allowed")
		return
	}

	if err := s.parseUploadForm(r); err != nil {
		inputError(w, err.Error())
		return
	}

	req, err := s.receiveUpload(r, analysisType)
	if err != nil {
		if errors.Is(err, errStoreFailed) {
			internalError(w, err)
		} else {
			inputError(w, err.Error())
		}
		return
	}
	// The stored upload never outlives the request.
	defer cleanup.Delete(req.FilePath)

	log.Printf("Processing %s analysis for: %s", analysisType, req.Filename)

	resp, err := s.pipe.Run(r.Context(), req)
	if err != nil {
		analysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAnalyzePage is the server-rendered flavor of the analyze endpoints.
func (s *Server) handleAnalyzePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	if err := s.parseUploadForm(r); err != nil {
		s.render(w, "index.html", map[string]any{"Error": err.Error()})
		return
	}

	analysisType := analysis.PreSubmission
	if r.FormValue("analysisType") == string(analysis.PostRejection) {
		analysisType = analysis.PostRejection
	}

	req, err := s.receiveUpload(r, analysisType)
	if err != nil {
		s.render(w, "index.html", map[string]any{"Error": err.Error()})
		return
	}
	defer cleanup.Delete(req.FilePath)

	resp, runErr := s.pipe.Run(r.Context(), req)
	if runErr != nil {
		s.render(w, "index.html", map[string]any{"Error": runErr.Error()})
		return
	}
	s.render(w, "results.html", map[string]any{"Response": resp})
}

// parseUploadForm parses the multipart body under the configured size cap.
// It must run before any form field is read so the cap actually applies.
func (s *Server) parseUploadForm(r *http.Request) error {
	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			return errors.New("Uploaded file is too large")
		}
		return errNoFile
	}
	return nil
}

// receiveUpload validates the parsed multipart request, stores the manuscript
// under a unique name, and assembles the pipeline request. Validation failures
// come back with user-facing messages; the caller maps them to 400s.
func (s *Server) receiveUpload(r *http.Request, analysisType analysis.Type) (pipeline.Request, error) {
	file, header, err := r.FormFile("manuscript")
	if err != nil {
		return pipeline.Request{}, errNoFile
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return pipeline.Request{}, errors.New("Invalid file type. Only PDF, DOCX, and DOC files are allowed.")
	}

	journalURL := strings.TrimSpace(r.FormValue("journalUrl"))
	if journalURL == "" {
		return pipeline.Request{}, errors.New("Journal URL is required")
	}

	reviewerComments := strings.TrimSpace(r.FormValue("reviewerComments"))
	if analysisType == analysis.PostRejection && reviewerComments == "" {
		return pipeline.Request{}, errors.New("Reviewer comments are required for post-rejection analysis")
	}

	path, size, err := s.storeUpload(file, header.Filename)
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		FilePath:         path,
		Filename:         header.Filename,
		Size:             size,
		JournalURL:       journalURL,
		ReviewerComments: reviewerComments,
		Type:             analysisType,
	}, nil
}

// storeUpload writes the manuscript to the uploads directory under a
// uuid-prefixed name so concurrent uploads of the same file never collide.
func (s *Server) storeUpload(file io.Reader, originalName string) (string, int64, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		log.Printf("Failed to create uploads directory %s: %v", s.uploadDir, err)
		return "", 0, errStoreFailed
	}

	name := uuid.New().String() + "-" + filepath.Base(originalName)
	path := filepath.Join(s.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		log.Printf("Failed to create upload file %s: %v", path, err)
		return "", 0, errStoreFailed
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		log.Printf("Failed to write upload file %s: %v", path, err)
		cleanup.Delete(path)
		return "", 0, errStoreFailed
	}
	return path, size, nil
}
