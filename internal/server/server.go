// Package server serves the screening pipeline over HTTP: an upload form for
// people and a JSON endpoint for programs.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/inputs"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/screening"
)

const (
	// DefaultMaxUploadBytes bounds the size of an uploaded resume.
	DefaultMaxUploadBytes int64 = 10 << 20

	missingInputsWarning = "Please upload a resume and paste a Job Description to begin analysis."
	emptyResumeWarning   = "No text could be extracted from the resume. Scanned documents are not supported."
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}).ParseFS(templatesFS, "templates/*.html"))

// Analyzer runs a single screening.
type Analyzer interface {
	Analyze(resumeText, jobDescription string) screening.MatchResult
}

// Server wires HTTP routes for the screening API.
type Server struct {
	analyzer       Analyzer
	metrics        *metrics.Manager
	logger         *zap.Logger
	maxUploadBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes overrides the upload size limit.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithMetrics records request and analysis metrics on m and exposes them on /metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server around analyzer.
func New(analyzer Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer:       analyzer,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.instrument("index", s.handleIndex))
	mux.HandleFunc("POST /analyze", s.instrument("analyze_form", s.handleAnalyzeForm))
	mux.HandleFunc("POST /api/v1/analyze", s.instrument("analyze_api", s.handleAnalyzeAPI))
	mux.HandleFunc("GET /healthz", s.instrument("healthz", s.handleHealth))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type indexPage struct {
	Warning        string
	JobDescription string
}

type resultPage struct {
	*screening.Report
	Warning string
}

// analyzeRequest is the body of POST /api/v1/analyze.
type analyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", indexPage{})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	const op = "server.analyze_form"

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderPage(w, http.StatusRequestEntityTooLarge, "index.html", indexPage{
				Warning: fmt.Sprintf("The uploaded resume exceeds %d bytes.", s.maxUploadBytes),
			})
			return
		}
		s.logger.Debug("parsing form", zap.Error(wrapKind(op, ErrBadRequest, err)))
		s.renderPage(w, http.StatusBadRequest, "index.html", indexPage{Warning: missingInputsWarning})
		return
	}

	jobDescription, jdErr := inputs.Load(inputs.Source{Name: "job description", Value: r.FormValue("job_description")})
	file, header, fileErr := r.FormFile("resume")
	if fileErr != nil || jdErr != nil {
		if file != nil {
			file.Close()
		}
		s.renderPage(w, http.StatusBadRequest, "index.html", indexPage{
			Warning:        missingInputsWarning,
			JobDescription: r.FormValue("job_description"),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Warn("reading uploaded resume", zap.Error(err))
		s.renderPage(w, http.StatusBadRequest, "index.html", indexPage{Warning: missingInputsWarning})
		return
	}

	mimeType := extract.DetectType(header.Filename, data)
	resumeText, err := extract.FromBytes(mimeType, data)
	if err != nil {
		s.logger.Warn("extracting resume text", zap.String("filename", header.Filename), zap.Error(err))
		s.renderPage(w, http.StatusBadRequest, "index.html", indexPage{
			Warning:        fmt.Sprintf("Could not read the uploaded resume: %v", err),
			JobDescription: jobDescription,
		})
		return
	}
	if s.metrics != nil {
		s.metrics.RecordDocument(mimeType)
	}

	warning := ""
	if strings.TrimSpace(resumeText) == "" {
		warning = emptyResumeWarning
		if s.metrics != nil {
			s.metrics.RecordExtractionFailure()
		}
		s.logger.Warn("no text extracted from resume", zap.String("filename", header.Filename), zap.String("type", mimeType))
	}

	report := s.analyze(resumeText, jobDescription, "upload:"+header.Filename, "form")
	s.renderPage(w, http.StatusOK, "result.html", resultPage{Report: report, Warning: warning})
}

func (s *Server) handleAnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	const op = "server.analyze_api"

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", wrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	resumeText, err := inputs.Load(inputs.Source{Name: "resume_text", Value: req.ResumeText})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	jobDescription, err := inputs.Load(inputs.Source{Name: "job_description", Value: req.JobDescription})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	writeJSON(w, http.StatusOK, s.analyze(resumeText, jobDescription, "api", "api"))
}

func (s *Server) analyze(resumeText, jobDescription, resumeSource, jobSource string) *screening.Report {
	start := time.Now()
	result := s.analyzer.Analyze(resumeText, jobDescription)
	took := time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordAnalysis(string(result.Decision), result.Score, took)
	}

	report := screening.NewReport(result, resumeSource, jobSource)

	fields := append(logger.SourceFields(resumeSource, jobSource), logger.ResultFields(result)...)
	fields = append(fields, zap.String("report_id", report.ID.String()), zap.Duration("took", took))
	s.logger.Info("analysis completed", fields...)

	return report
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("rendering page", zap.String("page", name), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
