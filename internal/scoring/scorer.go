// Package scoring rates a candidate's resume against a job posting with an LLM.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logging"
	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/prompts"
	"github.com/jonathan/hiring-pipeline/internal/schemas"
)

const (
	promptFile = "scoring.json"

	// minResumeChars is the shortest text worth sending to the model.
	minResumeChars = 50
	// maxResumeChars bounds prompt size for very long documents.
	maxResumeChars = 20000

	defaultTimeout = 60 * time.Second
)

// NotAResumeReasoning is returned when the document is not recognizable as a resume.
const NotAResumeReasoning = "The provided document does not appear to be a valid resume. Please upload a resume or CV describing your experience and skills."

const failurePrefix = "Automatic scoring failed: "

// Requirements describes the job a resume is scored against.
type Requirements struct {
	Title        string
	Description  string
	Requirements []string
	Skills       []string
}

// Result is the outcome of scoring a resume.
type Result struct {
	Score           int      `json:"score"`
	Reasoning       string   `json:"reasoning"`
	MissingKeywords []string `json:"missing_keywords"`
}

// verdict is the JSON contract the model answers with.
type verdict struct {
	IsResume        bool     `json:"is_resume"`
	Score           float64  `json:"score"`
	Reasoning       string   `json:"reasoning"`
	MissingKeywords []string `json:"missing_keywords"`
}

// Scorer scores resumes. Score never fails: every problem degrades to a zero score
// with an explanatory reasoning.
type Scorer struct {
	client  llm.Client
	tier    llm.ModelTier
	timeout time.Duration
	log     *logging.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithTier selects the model tier used for scoring.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Scorer) { s.tier = tier }
}

// WithTimeout bounds a single scoring call.
func WithTimeout(d time.Duration) Option {
	return func(s *Scorer) { s.timeout = d }
}

// NewScorer creates a scorer. A nil client yields a scorer that reports scoring as unavailable.
func NewScorer(client llm.Client, log *logging.Logger, opts ...Option) *Scorer {
	if log == nil {
		log = logging.NewNop()
	}
	s := &Scorer{
		client:  client,
		tier:    llm.TierLite,
		timeout: defaultTimeout,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates resumeText (and the optional cover letter) against the job.
func (s *Scorer) Score(ctx context.Context, job Requirements, resumeText, coverLetter string) Result {
	resumeText = strings.TrimSpace(resumeText)
	if utf8.RuneCountInString(resumeText) < minResumeChars {
		return notAResume()
	}

	result, err := s.score(ctx, job, resumeText, strings.TrimSpace(coverLetter))
	if err != nil {
		s.log.Warn("resume scoring failed", "job_title", job.Title, "error", err)
		return Result{Score: 0, Reasoning: failurePrefix + err.Error(), MissingKeywords: []string{}}
	}

	observability.ResumeScores.Observe(float64(result.Score))
	return result
}

func (s *Scorer) score(ctx context.Context, job Requirements, resumeText, coverLetter string) (Result, error) {
	if s.client == nil {
		return Result{}, errors.New("no language model is configured")
	}

	prompt, err := BuildPrompt(job, resumeText, coverLetter)
	if err != nil {
		return Result{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return Result{}, fmt.Errorf("language model request failed: %w", err)
	}

	return ParseVerdict(raw)
}

// BuildPrompt renders the scoring prompt for a job and candidate documents.
func BuildPrompt(job Requirements, resumeText, coverLetter string) (string, error) {
	template, err := prompts.Get(promptFile, "score-resume")
	if err != nil {
		return "", err
	}
	instructions := prompts.Format(template, map[string]string{
		"Title":        job.Title,
		"Description":  orNone(job.Description),
		"Requirements": bulletList(job.Requirements),
		"Skills":       bulletList(job.Skills),
	})

	input := truncate(resumeText, maxResumeChars)
	if coverLetter != "" {
		section, err := prompts.Get(promptFile, "cover-letter-section")
		if err != nil {
			return "", err
		}
		input += prompts.Format(section, map[string]string{"CoverLetter": coverLetter})
	}

	return llm.ResumeVerdict(instructions).Prompt(input), nil
}

// ParseVerdict validates the model output and converts it into a Result.
func ParseVerdict(raw string) (Result, error) {
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.ResumeScore, raw); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return Result{}, fmt.Errorf("invalid model response: %s", verr.Summary())
		}
		return Result{}, fmt.Errorf("invalid model response: %w", err)
	}

	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Result{}, fmt.Errorf("invalid model response: %w", err)
	}
	if !v.IsResume {
		return notAResume(), nil
	}

	missing := make([]string, 0, len(v.MissingKeywords))
	seen := make(map[string]bool, len(v.MissingKeywords))
	for _, kw := range v.MissingKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		missing = append(missing, kw)
	}

	return Result{
		Score:           clamp(v.Score),
		Reasoning:       strings.TrimSpace(v.Reasoning),
		MissingKeywords: missing,
	}, nil
}

func notAResume() Result {
	return Result{Score: 0, Reasoning: NotAResumeReasoning, MissingKeywords: []string{}}
}

func clamp(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func bulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "(none listed)"
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none provided)"
	}
	return s
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
