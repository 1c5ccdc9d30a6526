package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Status tags how an analysis finished.
type Status string

const (
	StatusOK              Status = "ok"
	StatusParseFailure    Status = "parse_failure"
	StatusProviderFailure Status = "provider_failure"
)

const (
	defaultScore = 50

	parseFailureSummary    = "Unable to generate a detailed analysis. Please try again."
	providerFailureSummary = "An error occurred during analysis. Please try again."
)

// ErrMalformedReply marks a model reply that could not be decoded into a Result.
var ErrMalformedReply = errors.New("malformed model reply")

// KeywordAnalysis splits job description keywords by presence in the resume.
type KeywordAnalysis struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

// Result is the structured match report.
type Result struct {
	MatchScore      int             `json:"matchScore"`
	Summary         string          `json:"summary"`
	MatchingSkills  []string        `json:"matchingSkills"`
	MissingSkills   []string        `json:"missingSkills"`
	Suggestions     []string        `json:"suggestions"`
	KeywordAnalysis KeywordAnalysis `json:"keywordAnalysis"`
}

// Outcome is what Analyze returns. Err is kept for logs and never serialized.
type Outcome struct {
	Status Status
	Result Result
	Err    error
}

// OK reports whether the result came from the model.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

// DefaultResult is the placeholder returned when no usable reply exists.
func DefaultResult(status Status) Result {
	summary := parseFailureSummary
	if status == StatusProviderFailure {
		summary = providerFailureSummary
	}
	return Result{
		MatchScore: defaultScore,
		Summary:    summary,
	}.normalized()
}

func (r Result) normalized() Result {
	if r.MatchingSkills == nil {
		r.MatchingSkills = []string{}
	}
	if r.MissingSkills == nil {
		r.MissingSkills = []string{}
	}
	if r.Suggestions == nil {
		r.Suggestions = []string{}
	}
	if r.KeywordAnalysis.Found == nil {
		r.KeywordAnalysis.Found = []string{}
	}
	if r.KeywordAnalysis.Missing == nil {
		r.KeywordAnalysis.Missing = []string{}
	}
	return r
}

type rawResult struct {
	MatchScore      json.RawMessage  `json:"matchScore"`
	Summary         string           `json:"summary"`
	MatchingSkills  []string         `json:"matchingSkills"`
	MissingSkills   []string         `json:"missingSkills"`
	Suggestions     []string         `json:"suggestions"`
	KeywordAnalysis *KeywordAnalysis `json:"keywordAnalysis"`
}

// ParseResult decodes a JSON object into a Result.
// matchScore is required and may be any JSON number; it is rounded to the nearest integer.
// Missing lists become empty.
func ParseResult(candidate string) (Result, error) {
	data := bytes.TrimSpace([]byte(candidate))
	if len(data) == 0 || data[0] != '{' {
		return Result{}, fmt.Errorf("%w: not a JSON object", ErrMalformedReply)
	}
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if len(raw.MatchScore) == 0 || string(raw.MatchScore) == "null" {
		return Result{}, fmt.Errorf("%w: matchScore missing", ErrMalformedReply)
	}
	var score float64
	if err := json.Unmarshal(raw.MatchScore, &score); err != nil {
		return Result{}, fmt.Errorf("%w: matchScore is not a number", ErrMalformedReply)
	}
	rounded := math.Round(score)
	if rounded > math.MaxInt32 || rounded < math.MinInt32 {
		return Result{}, fmt.Errorf("%w: matchScore %v out of integer range", ErrMalformedReply, score)
	}

	out := Result{
		MatchScore:     int(rounded),
		Summary:        raw.Summary,
		MatchingSkills: raw.MatchingSkills,
		MissingSkills:  raw.MissingSkills,
		Suggestions:    raw.Suggestions,
	}
	if raw.KeywordAnalysis != nil {
		out.KeywordAnalysis = *raw.KeywordAnalysis
	}
	return out.normalized(), nil
}

func scoreInRange(score int) bool {
	return score >= 0 && score <= 100
}
