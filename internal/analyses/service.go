package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/cache"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/shared/util"
)

const (
	defaultTTL           = time.Hour
	defaultMinTextLength = 50
)

// Analyzer produces an outcome for one resume and job description.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescriptionText string) analyzer.Outcome
}

// Service validates submissions, runs the analyzer and persists records.
type Service struct {
	Analyzer      Analyzer
	Store         cache.Store
	TTL           time.Duration
	MinTextLength int
	Now           func() time.Time
	NewID         func() string
}

// Create analyzes a submission and stores the record under analysis:{id}.
// Invalid submissions fail with ErrInvalidInput before any model call.
// Analysis failures are reported through Record.Status, not as errors.
func (s *Service) Create(ctx context.Context, sub Submission) (Record, error) {
	metrics.IncAnalysisRequests()
	if err := s.validate(sub); err != nil {
		metrics.IncAnalysisRejected()
		return Record{}, err
	}

	rec := Record{
		ID:              s.newID(),
		Timestamp:       s.now().UTC(),
		ResumeFilename:  cleanFileName(sub.ResumeFilename, "resume.txt"),
		JobDescFilename: cleanFileName(sub.JobDescFilename, "job-description.txt"),
		ResumeText:      sub.ResumeText,
		JobDescText:     sub.JobDescText,
	}

	outcome := s.Analyzer.Analyze(ctx, sub.ResumeText, sub.JobDescText)
	rec.Analysis = outcome.Result
	rec.Status = outcome.Status

	payload, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("marshal analysis %s: %w", rec.ID, err)
	}
	if err := s.Store.Set(ctx, recordKey(rec.ID), payload, s.ttl()); err != nil {
		telemetry.Error("analysis.store_failed", map[string]any{
			"analysis_id": rec.ID,
			"err":         err,
		})
		return Record{}, fmt.Errorf("store analysis %s: %w", rec.ID, err)
	}

	telemetry.Info("analysis.created", map[string]any{
		"analysis_id": rec.ID,
		"status":      string(rec.Status),
		"match_score": rec.Analysis.MatchScore,
	})
	return rec, nil
}

// Get loads a stored record. Absent and expired records return ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	payload, err := s.Store.Get(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load analysis %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return rec, nil
}

func (s *Service) validate(sub Submission) error {
	return Validate(sub, s.minTextLength())
}

// Validate rejects a submission whose texts are empty or shorter than minLen
// runes after trimming. Errors wrap ErrInvalidInput. A minLen <= 0 means the
// default of 50.
func Validate(sub Submission, minLen int) error {
	if minLen <= 0 {
		minLen = defaultMinTextLength
	}
	resume := strings.TrimSpace(sub.ResumeText)
	jd := strings.TrimSpace(sub.JobDescText)
	if resume == "" || jd == "" {
		return fmt.Errorf("%w: %s", ErrInvalidInput, MsgExtractFailed)
	}
	if utf8.RuneCountInString(resume) < minLen || utf8.RuneCountInString(jd) < minLen {
		return fmt.Errorf("%w: %s", ErrInvalidInput, MsgTooLittleText)
	}
	return nil
}

// InvalidInputMessage returns the user-facing part of an ErrInvalidInput error.
func InvalidInputMessage(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

func (s *Service) minTextLength() int {
	if s.MinTextLength > 0 {
		return s.MinTextLength
	}
	return defaultMinTextLength
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func cleanFileName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	clean, err := util.SanitizeFileName(name)
	if err != nil {
		return fallback
	}
	return clean
}
