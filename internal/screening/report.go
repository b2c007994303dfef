package screening

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Report wraps a MatchResult with the details of where its inputs came from.
type Report struct {
	ID           uuid.UUID   `json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	ResumeSource string      `json:"resume_source,omitempty"`
	JobSource    string      `json:"job_source,omitempty"`
	Result       MatchResult `json:"result"`
}

// NewReport stamps result with a fresh ID and the current time.
func NewReport(result MatchResult, resumeSource, jobSource string) *Report {
	return &Report{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		ResumeSource: resumeSource,
		JobSource:    jobSource,
		Result:       result,
	}
}

// DumpToTmpFile writes the report as indented JSON into a new temporary file.
func (r *Report) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "screening_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := r.WriteJSON(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Render writes a plain text report of r.
func Render(w io.Writer, r MatchResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Match Score: %d / 100\n", r.Score)
	fmt.Fprintf(&b, "Final Decision: %s\n\n", r.Decision)

	b.WriteString("Summary\n")
	fmt.Fprintf(&b, "  %s\n\n", r.Summary)

	b.WriteString("Strengths (Skills Present)\n")
	fmt.Fprintf(&b, "  %s\n\n", joinOr(r.Strengths, "No major strengths detected."))

	b.WriteString("Skill Gaps (Missing from Resume)\n")
	fmt.Fprintf(&b, "  %s\n", joinOr(r.Gaps, "No major gaps found."))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderBreakdown writes the raw skill sets found in each document.
func RenderBreakdown(w io.Writer, r MatchResult) error {
	_, err := fmt.Fprintf(w,
		"Skills in Job Description:\n  %s\nSkills found in Resume:\n  %s\n",
		joinOr(r.JDSkills, "None"),
		joinOr(r.ResumeSkills, "None"),
	)
	if err != nil {
		return fmt.Errorf("write breakdown: %w", err)
	}
	return nil
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
