package analyzer

import (
	"context"
	"time"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// Defaults applied by New for zero-valued options.
const (
	DefaultModel            = "gpt-4o"
	DefaultTemperature      = 0.5
	DefaultMaxTokens        = 2000
	DefaultMaxInputChars    = 4000
	DefaultTruncationMarker = "..."

	previewChars = 200
)

// Options configures a single model call and input truncation.
type Options struct {
	Model            string
	Temperature      float32
	MaxTokens        int
	MaxInputChars    int
	TruncationMarker string
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		Model:            DefaultModel,
		Temperature:      DefaultTemperature,
		MaxTokens:        DefaultMaxTokens,
		MaxInputChars:    DefaultMaxInputChars,
		TruncationMarker: DefaultTruncationMarker,
	}
}

// Temperature zero is a legitimate setting and is kept as given.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Model == "" {
		o.Model = d.Model
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.MaxInputChars <= 0 {
		o.MaxInputChars = d.MaxInputChars
	}
	if o.TruncationMarker == "" {
		o.TruncationMarker = d.TruncationMarker
	}
	return o
}

// Analyzer turns a resume and a job description into a match Result.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	client llm.Client
	opts   Options
	now    func() time.Time
}

// New returns an Analyzer calling client with opts. A nil client behaves like
// llm.PlaceholderClient.
func New(client llm.Client, opts Options) *Analyzer {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Analyzer{
		client: client,
		opts:   opts.withDefaults(),
		now:    time.Now,
	}
}

// Options returns the effective settings.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze runs one model call. Failures never surface as errors: the Outcome
// carries a default Result and the failure status instead.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobDescriptionText string) Outcome {
	resume := Truncate(resumeText, a.opts.MaxInputChars, a.opts.TruncationMarker)
	jd := Truncate(jobDescriptionText, a.opts.MaxInputChars, a.opts.TruncationMarker)
	prompt := BuildPrompt(resume, jd)
	hash := promptHash(prompt)

	telemetry.Debug("analysis.prompt", map[string]any{
		"prompt_version":   PromptVersion,
		"prompt_hash":      hash,
		"prompt_chars":     len([]rune(prompt)),
		"resume_truncated": resume != resumeText,
		"jd_truncated":     jd != jobDescriptionText,
	})

	start := a.now()
	reply, err := a.client.Complete(ctx, llm.Request{
		Model:       a.opts.Model,
		Prompt:      prompt,
		Temperature: a.opts.Temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	elapsed := a.now().Sub(start)
	metrics.ObserveLLMDurationMs(float64(elapsed.Milliseconds()))

	base := map[string]any{
		"model":          a.opts.Model,
		"prompt_version": PromptVersion,
		"prompt_hash":    hash,
		"duration_ms":    elapsed.Milliseconds(),
		"resume_chars":   len([]rune(resumeText)),
		"jd_chars":       len([]rune(jobDescriptionText)),
	}

	if err != nil {
		fields := with(base, map[string]any{"err": err})
		telemetry.Error("analysis.provider_failure", fields)
		return finish(Outcome{Status: StatusProviderFailure, Result: DefaultResult(StatusProviderFailure), Err: err})
	}

	telemetry.Info("analysis.reply", with(base, map[string]any{
		"reply_chars":   len(reply),
		"reply_preview": preview(reply),
	}))

	candidate := ExtractJSON(reply)
	result, err := ParseResult(candidate)
	if err != nil {
		telemetry.Warn("analysis.parse_failure", with(base, map[string]any{
			"candidate_preview": preview(candidate),
			"err":               err,
		}))
		return finish(Outcome{Status: StatusParseFailure, Result: DefaultResult(StatusParseFailure), Err: err})
	}
	if !scoreInRange(result.MatchScore) {
		telemetry.Warn("analysis.score_out_of_range", with(base, map[string]any{
			"match_score": result.MatchScore,
		}))
	}
	return finish(Outcome{Status: StatusOK, Result: result})
}

func finish(o Outcome) Outcome {
	metrics.IncAnalysisOutcome(string(o.Status))
	return o
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewChars {
		return s
	}
	return string(r[:previewChars])
}

func with(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
