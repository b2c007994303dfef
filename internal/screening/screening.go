// Package screening matches a resume against a job description.
//
// An Analyzer combines a lexical similarity score with keyword skill
// extraction and turns both into a MatchResult with a decision and a summary.
package screening

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/normalize"
	"github.com/spigell/resume-screener/internal/similarity"
	"github.com/spigell/resume-screener/internal/skills"
)

const (
	fallbackStrengths = "relevant areas"
	fallbackGaps      = "a few important skills"
)

// MatchResult is the outcome of a single analysis.
type MatchResult struct {
	Score        int      `json:"score"`
	Decision     Decision `json:"decision"`
	Strengths    []string `json:"strengths"`
	Gaps         []string `json:"gaps"`
	JDSkills     []string `json:"jd_skills"`
	ResumeSkills []string `json:"resume_skills"`
	Summary      string   `json:"summary"`
}

// Analyzer runs the screening pipeline. It holds no mutable state and
// is safe for concurrent use.
type Analyzer struct {
	scorer     similarity.Scorer
	vocabulary *skills.Vocabulary
	thresholds Thresholds
	logger     *zap.Logger
}

// NewAnalyzer wires the pipeline stages together. A nil logger disables logging.
func NewAnalyzer(scorer similarity.Scorer, vocabulary *skills.Vocabulary, thresholds Thresholds, logger *zap.Logger) (*Analyzer, error) {
	if scorer == nil {
		return nil, fmt.Errorf("similarity scorer is required")
	}
	if vocabulary == nil {
		return nil, fmt.Errorf("skill vocabulary is required")
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyzer{
		scorer:     scorer,
		vocabulary: vocabulary,
		thresholds: thresholds,
		logger:     logger,
	}, nil
}

// Thresholds returns the decision thresholds in use.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze scores resumeText against jobDescription. Any pair of strings,
// including empty ones, yields a valid result.
func (a *Analyzer) Analyze(resumeText, jobDescription string) MatchResult {
	resumeClean := normalize.Text(resumeText)
	jdClean := normalize.Text(jobDescription)

	score := similarity.Score(a.scorer, jdClean, resumeClean)

	// Skills are matched on raw text so phrases like "c++" survive.
	jdSkills := a.vocabulary.Extract(jobDescription)
	resumeSkills := a.vocabulary.Extract(resumeText)

	strengths := skills.Intersect(jdSkills, resumeSkills)
	gaps := skills.Difference(jdSkills, resumeSkills)
	decision := Decide(score, a.thresholds)

	a.logger.Debug("screening finished",
		zap.Int("resume_length", len(resumeClean)),
		zap.Int("job_description_length", len(jdClean)),
		zap.Int("score", score),
		zap.String("decision", string(decision)),
		zap.Int("strengths", len(strengths)),
		zap.Int("gaps", len(gaps)),
	)

	return MatchResult{
		Score:        score,
		Decision:     decision,
		Strengths:    strengths,
		Gaps:         gaps,
		JDSkills:     jdSkills,
		ResumeSkills: resumeSkills,
		Summary:      Summarize(strengths, gaps, decision, score),
	}
}

// Summarize renders the one paragraph verdict shown next to the score.
func Summarize(strengths, gaps []string, decision Decision, score int) string {
	shown := strings.Join(strengths, ", ")
	if shown == "" {
		shown = fallbackStrengths
	}

	missing := strings.Join(gaps, ", ")
	if missing == "" {
		missing = fallbackGaps
	}

	return fmt.Sprintf(
		"The resume shows ability in %s but lacks clear proof of %s. Overall Fit: %s (%d/100)",
		shown, missing, decision, score,
	)
}
