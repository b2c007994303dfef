package headhunter

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const vacancyJSON = `{
  "id": "12345",
  "name": "Python Developer",
  "alternate_url": "https://hh.ru/vacancy/12345",
  "employer": {"id": "emp1", "name": "Acme"},
  "description": "<p>We need a <strong>Python</strong> developer.</p><ul><li>SQL</li><li>AWS &amp; Docker</li></ul><script>var x = 1;</script>",
  "key_skills": [{"name": "Python"}, {"name": " "}, {"name": "Git"}]
}`

func TestHTMLToText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "empty", input: "", expect: ""},
		{name: "plain text", input: "just text", expect: "just text"},
		{name: "blocks become lines", input: "<p>One</p><p>Two <em>words</em></p>", expect: "One\nTwo words"},
		{name: "list and entities", input: "<ul><li>SQL</li><li>AWS &amp; GCP</li></ul>", expect: "SQL\nAWS & GCP"},
		{name: "script dropped", input: "<p>Keep</p><script>drop()</script><style>p{}</style>", expect: "Keep"},
		{name: "line breaks", input: "a<br/>b", expect: "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTMLToText(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestGetVacancy(t *testing.T) {
	t.Parallel()

	var gotAuth, gotAgent, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotPath = r.URL.Path

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = gz.Write([]byte(vacancyJSON))
	}))
	defer server.Close()

	client := New(zap.NewNop(), " secret ")
	client.APIURL = server.URL + "/"

	vacancy, err := client.GetVacancy(context.Background(), "12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/vacancies/12345" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotAgent != userAgent {
		t.Fatalf("unexpected user agent: %q", gotAgent)
	}

	if vacancy.Name != "Python Developer" || vacancy.Employer.Name != "Acme" {
		t.Fatalf("unexpected vacancy: %+v", vacancy)
	}
	if vacancy.Source() != "https://hh.ru/vacancy/12345" {
		t.Fatalf("unexpected source: %s", vacancy.Source())
	}

	expect := "Python Developer\n\nWe need a Python developer.\nSQL\nAWS & Docker\n\nKey skills: Python, Git"
	if got := vacancy.JobDescription(); got != expect {
		t.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestGetVacancyAnonymous(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("expected no authorization header, got %q", auth)
		}
		_, _ = w.Write([]byte(`{"id": "7", "name": "Go Developer"}`))
	}))
	defer server.Close()

	client := New(nil, "")
	client.APIURL = server.URL

	vacancy, err := client.GetVacancy(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vacancy.Source() != "vacancy:7" {
		t.Fatalf("unexpected source: %s", vacancy.Source())
	}
	if vacancy.JobDescription() != "Go Developer" {
		t.Fatalf("unexpected description: %q", vacancy.JobDescription())
	}
}

func TestGetVacancyErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"type":"not_found"}]}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := New(zap.NewNop(), "")
	client.APIURL = server.URL

	_, err := client.GetVacancy(context.Background(), "404")
	if err == nil || !strings.Contains(err.Error(), "bad status") {
		t.Fatalf("expected bad status error, got %v", err)
	}

	if _, err := client.GetVacancy(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty id")
	}
}
