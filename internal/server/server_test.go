package server_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/metrics"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/server"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/skills"
)

const (
	jobDescription = "We are hiring a Python developer with Django, SQL and AWS experience."
	resumeText     = "Python developer. Built Django services on AWS. Familiar with SQL and Git."
)

type recordingAnalyzer struct {
	calls  int
	resume string
	jd     string
	result screening.MatchResult
}

func (a *recordingAnalyzer) Analyze(resume, jd string) screening.MatchResult {
	a.calls++
	a.resume = resume
	a.jd = jd
	return a.result
}

func newRealAnalyzer(t *testing.T) *screening.Analyzer {
	t.Helper()

	scorer, err := similarity.NewTFIDF()
	if err != nil {
		t.Fatalf("creating scorer: %v", err)
	}
	analyzer, err := screening.NewAnalyzer(scorer, skills.Default(), screening.DefaultThresholds(), zap.NewNop())
	if err != nil {
		t.Fatalf("creating analyzer: %v", err)
	}
	return analyzer
}

func multipartBody(t *testing.T, filename, content, jd string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := w.WriteField("job_description", jd); err != nil {
		t.Fatalf("writing field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a server with metrics", t, func() {
		m := metrics.NewManager()
		srv := server.New(newRealAnalyzer(t), server.WithMetrics(m))
		handler := srv.Handler()

		Convey("When requesting the health endpoint", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then it should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["status"], ShouldEqual, "ok")
			})
		})

		Convey("When requesting the index page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then the upload form should be rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `name="resume"`)
				So(w.Body.String(), ShouldContainSubstring, `name="job_description"`)
			})
		})

		Convey("When requesting an unknown path", func() {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then it should not be found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When scraping metrics after a request", func() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then the request counter should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "resume_screener_http_requests_total")
			})
		})
	})
}

func TestServer_AnalyzeAPI(t *testing.T) {
	Convey("Given a server with a real analyzer", t, func() {
		m := metrics.NewManager()
		handler := server.New(newRealAnalyzer(t), server.WithMetrics(m)).Handler()

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w
		}

		Convey("When both texts are provided", func() {
			payload, _ := json.Marshal(map[string]string{
				"resume_text":     resumeText,
				"job_description": jobDescription,
			})
			w := post(string(payload))

			Convey("Then a report should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var report screening.Report
				So(json.Unmarshal(w.Body.Bytes(), &report), ShouldBeNil)
				So(report.ID.String(), ShouldNotBeEmpty)
				So(report.Result.Score, ShouldBeBetweenOrEqual, 0, 100)
				So(report.Result.Decision, ShouldEqual, screening.Decide(report.Result.Score, screening.DefaultThresholds()))
				So(report.Result.JDSkills, ShouldContain, "python")
				So(report.Result.Strengths, ShouldContain, "django")
				So(report.Result.Summary, ShouldContainSubstring, "Overall Fit:")
			})

			Convey("And the analysis should be counted", func() {
				count, err := testutil.GatherAndCount(m.Registry(), "resume_screener_screening_analyses_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When the job description is blank", func() {
			w := post(`{"resume_text":"python","job_description":"   "}`)

			Convey("Then it should be rejected as a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var resp map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["code"], ShouldEqual, "bad_request")
				So(resp["message"], ShouldContainSubstring, "job_description")
			})
		})

		Convey("When the resume is missing", func() {
			w := post(`{"job_description":"python"}`)

			Convey("Then it should be rejected as a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := post(`not json`)

			Convey("Then it should be rejected as a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})

	Convey("Given a server with a tiny upload limit", t, func() {
		handler := server.New(&recordingAnalyzer{}, server.WithMaxUploadBytes(16)).Handler()

		Convey("When posting a large body", func() {
			body := `{"resume_text":"` + strings.Repeat("python ", 20) + `","job_description":"python"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then it should be refused", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})
}

func TestServer_AnalyzeForm(t *testing.T) {
	Convey("Given a server with a stub analyzer", t, func() {
		analyzer := &recordingAnalyzer{result: screening.MatchResult{
			Score:        80,
			Decision:     screening.Shortlist,
			Strengths:    []string{"django", "python"},
			Gaps:         []string{"aws"},
			JDSkills:     []string{"aws", "django", "python"},
			ResumeSkills: []string{"django", "python"},
			Summary:      "Strong match.",
		}}
		handler := server.New(analyzer).Handler()

		send := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			return w
		}

		Convey("When a text resume and a job description are submitted", func() {
			body, ct := multipartBody(t, "resume.txt", resumeText, jobDescription)
			w := send(body, ct)

			Convey("Then the result page should be rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(analyzer.calls, ShouldEqual, 1)
				So(analyzer.resume, ShouldEqual, resumeText)
				So(analyzer.jd, ShouldEqual, jobDescription)

				page := w.Body.String()
				So(page, ShouldContainSubstring, "Match Score: 80 / 100")
				So(page, ShouldContainSubstring, "Shortlist")
				So(page, ShouldContainSubstring, "django, python")
				So(page, ShouldContainSubstring, "Strong match.")
			})
		})

		Convey("When the resume file is missing", func() {
			body, ct := multipartBody(t, "", "", jobDescription)
			w := send(body, ct)

			Convey("Then the form should be shown again with a warning", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(analyzer.calls, ShouldEqual, 0)
				So(w.Body.String(), ShouldContainSubstring, "Please upload a resume and paste a Job Description to begin analysis.")
				So(w.Body.String(), ShouldContainSubstring, "Django")
			})
		})

		Convey("When the job description is blank", func() {
			body, ct := multipartBody(t, "resume.txt", resumeText, "  \n ")
			w := send(body, ct)

			Convey("Then no analysis should run", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(analyzer.calls, ShouldEqual, 0)
				So(w.Body.String(), ShouldContainSubstring, "Please upload a resume")
			})
		})

		Convey("When an unsupported file is uploaded", func() {
			body, ct := multipartBody(t, "resume.png", "\x89PNG\r\n\x1a\n", jobDescription)
			w := send(body, ct)

			Convey("Then the upload should be refused", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(analyzer.calls, ShouldEqual, 0)
				So(w.Body.String(), ShouldContainSubstring, "Could not read the uploaded resume")
			})
		})

		Convey("When the uploaded resume has no text", func() {
			body, ct := multipartBody(t, "resume.txt", "   ", jobDescription)
			w := send(body, ct)

			Convey("Then the analysis should run with a warning", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(analyzer.calls, ShouldEqual, 1)
				So(w.Body.String(), ShouldContainSubstring, "No text could be extracted")
			})
		})
	})
}
