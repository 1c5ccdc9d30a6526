package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/telemetry"
)

type stubClient struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	last  llm.Request
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = req
	return s.reply, s.err
}

const canonicalReply = `{"matchScore":72,"summary":"Solid backend fit.","matchingSkills":["Go","PostgreSQL"],"missingSkills":["Kubernetes"],"suggestions":["Mention container orchestration experience."],"keywordAnalysis":{"found":["Go","REST"],"missing":["Kubernetes"]}}`

func canonicalResult(t *testing.T) Result {
	t.Helper()
	var r Result
	require.NoError(t, json.Unmarshal([]byte(canonicalReply), &r))
	return r
}

func TestAnalyzeEndToEndCanonicalReply(t *testing.T) {
	client := &stubClient{reply: canonicalReply}
	a := New(client, DefaultOptions())

	resume := strings.Repeat("r", 60)
	jd := strings.Repeat("j", 60)
	out := a.Analyze(context.Background(), resume, jd)

	require.Equal(t, StatusOK, out.Status)
	require.NoError(t, out.Err)
	require.Equal(t, canonicalResult(t), out.Result)

	require.Equal(t, 1, client.calls)
	require.Equal(t, "gpt-4o", client.last.Model)
	require.InDelta(t, 0.5, float64(client.last.Temperature), 1e-6)
	require.Equal(t, 2000, client.last.MaxTokens)
	require.Contains(t, client.last.Prompt, resume)
	require.Contains(t, client.last.Prompt, jd)
}

func TestAnalyzeProseReplyFallsBackToDefault(t *testing.T) {
	client := &stubClient{reply: "I'm sorry, I can't produce a structured analysis for these documents."}
	out := New(client, DefaultOptions()).Analyze(context.Background(), strings.Repeat("r", 60), strings.Repeat("j", 60))

	require.Equal(t, StatusParseFailure, out.Status)
	require.ErrorIs(t, out.Err, ErrMalformedReply)
	require.Equal(t, 50, out.Result.MatchScore)
	require.Equal(t, DefaultResult(StatusParseFailure), out.Result)
	require.Empty(t, out.Result.MatchingSkills)
	require.NotNil(t, out.Result.MatchingSkills)
}

func TestAnalyzeProviderFailure(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	out := New(client, DefaultOptions()).Analyze(context.Background(), "resume", "jd")

	require.Equal(t, StatusProviderFailure, out.Status)
	require.EqualError(t, out.Err, "connection refused")
	require.Equal(t, DefaultResult(StatusProviderFailure), out.Result)
	require.Equal(t, "An error occurred during analysis. Please try again.", out.Result.Summary)
}

func TestAnalyzeNilClientIsProviderFailure(t *testing.T) {
	out := New(nil, Options{}).Analyze(context.Background(), "resume", "jd")
	require.Equal(t, StatusProviderFailure, out.Status)
	require.ErrorIs(t, out.Err, llm.ErrNotConfigured)
}

func TestAnalyzeFencedReply(t *testing.T) {
	client := &stubClient{reply: "Here you go:\n```json\n" + canonicalReply + "\n```\nGood luck!"}
	out := New(client, DefaultOptions()).Analyze(context.Background(), "resume", "jd")

	require.Equal(t, StatusOK, out.Status)
	require.Equal(t, canonicalResult(t), out.Result)
}

func TestAnalyzeOutOfRangeScorePassesThrough(t *testing.T) {
	client := &stubClient{reply: `{"matchScore": 140, "summary": "over"}`}
	out := New(client, DefaultOptions()).Analyze(context.Background(), "resume", "jd")

	require.Equal(t, StatusOK, out.Status)
	require.Equal(t, 140, out.Result.MatchScore)
	require.Equal(t, []string{}, out.Result.Suggestions)
}

func TestAnalyzeTruncatesLongInputs(t *testing.T) {
	client := &stubClient{reply: canonicalReply}
	opts := DefaultOptions()
	opts.MaxInputChars = 10
	opts.TruncationMarker = "[cut]"

	resume := "0123456789SUFFIX-RESUME"
	jd := "abcdefghijSUFFIX-JD"
	New(client, opts).Analyze(context.Background(), resume, jd)

	require.Contains(t, client.last.Prompt, "0123456789[cut]")
	require.Contains(t, client.last.Prompt, "abcdefghij[cut]")
	require.NotContains(t, client.last.Prompt, "SUFFIX")
}

func TestNewAppliesDefaults(t *testing.T) {
	a := New(&stubClient{}, Options{Temperature: 0.2})
	opts := a.Options()
	require.Equal(t, DefaultModel, opts.Model)
	require.Equal(t, DefaultMaxTokens, opts.MaxTokens)
	require.Equal(t, DefaultMaxInputChars, opts.MaxInputChars)
	require.Equal(t, DefaultTruncationMarker, opts.TruncationMarker)
	require.InDelta(t, 0.2, float64(opts.Temperature), 1e-6)
}

func TestAnalyzeLogsPromptAtDebug(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	telemetry.SetLevel("debug")
	t.Cleanup(func() {
		telemetry.SetOutput(nil)
		telemetry.SetLevel("info")
	})

	opts := DefaultOptions()
	opts.MaxInputChars = 10
	New(&stubClient{reply: canonicalReply}, opts).Analyze(context.Background(), "0123456789-overflow", "short jd")

	var line map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &entry))
		if entry["msg"] == "analysis.prompt" {
			line = entry
		}
	}
	require.NotNil(t, line, "expected analysis.prompt line in %q", buf.String())
	require.Equal(t, "debug", line["level"])
	require.Equal(t, true, line["resume_truncated"])
	require.Equal(t, false, line["jd_truncated"])
	require.Equal(t, PromptVersion, line["prompt_version"])
}
